package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const testPath = "/home/u/.config/commando/config.json"

func TestLoadWritesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := Load(fs, testPath, zerolog.Nop())

	assert.Equal(t, "system", cfg.GetString(KeyTheme, ""))
	assert.Equal(t, "INFO", cfg.GetString(KeyLogLevel, "WARN"))
	assert.Equal(t, 10000, cfg.GetInt("terminal.scrollback_lines", 0))
	assert.True(t, cfg.GetBool(KeySortAscending, false))

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	assert.Equal(t, "number", gjson.GetBytes(data, "main_view.sort_by").String())
	assert.Contains(t, string(data), "\n  \"theme\"")
}

func TestGetFallsBackToCallerDefault(t *testing.T) {
	cfg := Load(afero.NewMemMapFs(), testPath, zerolog.Nop())

	assert.Equal(t, "default_value", cfg.Get("nonexistent.key", "default_value"))
	assert.Equal(t, "", cfg.GetString(KeyExternalTerminal, ""))
}

func TestSetNestedKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := Load(fs, testPath, zerolog.Nop())

	require.NoError(t, cfg.Set("section.subsection.key", "value"))
	assert.Equal(t, "value", cfg.Get("section.subsection.key", nil))

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	assert.True(t, gjson.GetBytes(data, "section.subsection").IsObject())
}

func TestPersistence(t *testing.T) {
	fs := afero.NewMemMapFs()
	first := Load(fs, testPath, zerolog.Nop())
	require.NoError(t, first.Set(KeyExternalTerminal, "kitty"))

	second := Load(fs, testPath, zerolog.Nop())
	assert.Equal(t, "kitty", second.GetString(KeyExternalTerminal, ""))
}

func TestMalformedFileUsesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testPath, []byte("{not json"), 0o644))

	cfg := Load(fs, testPath, zerolog.Nop())
	assert.Equal(t, "number", cfg.GetString(KeySortBy, ""))

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestCommentsAreTolerated(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `{
  // picked by hand
  "terminal": {"external_terminal": "xterm"}
}`
	require.NoError(t, afero.WriteFile(fs, testPath, []byte(doc), 0o644))

	cfg := Load(fs, testPath, zerolog.Nop())
	assert.Equal(t, "xterm", cfg.GetString(KeyExternalTerminal, ""))
	// keys missing from the file still resolve to defaults
	assert.Equal(t, "cards", cfg.GetString("main_view.layout", ""))
}

func TestUnset(t *testing.T) {
	cfg := Load(afero.NewMemMapFs(), testPath, zerolog.Nop())
	require.NoError(t, cfg.Set(KeySortBy, "title"))
	require.NoError(t, cfg.Unset(KeySortBy))
	assert.Equal(t, "number", cfg.GetString(KeySortBy, ""))
}

func TestPathsEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/x/config")
	t.Setenv("XDG_DATA_HOME", "/x/data")
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "/home/u")

	p := DefaultPaths()
	assert.Equal(t, "/x/config/commando", p.Config)
	assert.Equal(t, "/x/data/commando", p.Data)
	assert.Equal(t, "/x/data/commando/commands.json", p.CommandsFile())
	assert.Equal(t, "/x/config/commando/config.json", p.ConfigFile())
	assert.Contains(t, p.Cache, ".cache/commando")

	fs := afero.NewMemMapFs()
	require.NoError(t, p.Ensure(fs))
	ok, err := afero.DirExists(fs, p.State)
	require.NoError(t, err)
	assert.True(t, ok)
}
