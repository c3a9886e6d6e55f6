package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const appName = "commando"

// Paths holds the per-user directories. Each one already includes the
// application subdirectory.
type Paths struct {
	Config string // ~/.config/commando
	Data   string // ~/.local/share/commando
	Cache  string // ~/.cache/commando
	State  string // ~/.local/state/commando
}

// DefaultPaths resolves directories from the XDG variables, falling back
// to the usual locations under home.
func DefaultPaths() Paths {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return Paths{
		Config: filepath.Join(envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config")), appName),
		Data:   filepath.Join(envOr("XDG_DATA_HOME", filepath.Join(home, ".local", "share")), appName),
		Cache:  filepath.Join(envOr("XDG_CACHE_HOME", filepath.Join(home, ".cache")), appName),
		State:  filepath.Join(envOr("XDG_STATE_HOME", filepath.Join(home, ".local", "state")), appName),
	}
}

// Ensure creates every directory that does not exist yet.
func (p Paths) Ensure(fs afero.Fs) error {
	for _, dir := range []string{p.Config, p.Data, p.Cache, p.State} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func (p Paths) ConfigFile() string   { return filepath.Join(p.Config, "config.json") }
func (p Paths) CommandsFile() string { return filepath.Join(p.Data, "commands.json") }
func (p Paths) HistoryFile() string  { return filepath.Join(p.State, "history.db") }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
