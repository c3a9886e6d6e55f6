package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"commando/model"
	"commando/platform"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commandsPath = "/data/commando/commands.json"

// emptyStore returns a store seeded from an empty catalog.
func emptyStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return New(fs, commandsPath, nil, zerolog.Nop()), fs
}

func sampleCommands() []model.Command {
	return []model.Command{
		model.New(1, "Command 1", "cmd1"),
		model.New(2, "Command 2", "cmd2"),
		model.New(3, "Command 3", "cmd3"),
	}
}

func mockCommand() model.Command {
	c := model.New(1, "Test Command", "echo 'test'")
	c.Tag = "test"
	c.Category = "testing"
	c.Description = "A test command"
	return c
}

func readFile(t *testing.T, fs afero.Fs) []model.Command {
	t.Helper()
	data, err := afero.ReadFile(fs, commandsPath)
	require.NoError(t, err)
	var cmds []model.Command
	require.NoError(t, json.Unmarshal(data, &cmds))
	return cmds
}

func TestFirstRunSeedsCatalog(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, commandsPath, DefaultCommands(), zerolog.Nop())

	all := s.All()
	require.Len(t, all, 32)
	assert.Equal(t, DefaultCommands(), all)
	assert.Equal(t, all, readFile(t, fs))
}

func TestSavedFileIsIndented(t *testing.T) {
	s, fs := emptyStore(t)
	require.NoError(t, s.Add(mockCommand()))

	data, err := afero.ReadFile(fs, commandsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[\n  {\n    \"number\": 1,")
}

func TestAddThenGet(t *testing.T) {
	s, _ := emptyStore(t)
	c := mockCommand()

	require.NoError(t, s.Add(c))
	got, ok := s.Get(c.Number)
	require.True(t, ok)
	assert.Equal(t, c, got)
}

func TestAddDuplicateNumber(t *testing.T) {
	s, fs := emptyStore(t)
	require.NoError(t, s.Add(mockCommand()))

	err := s.Add(model.New(1, "Duplicate", "cmd"))
	assert.ErrorIs(t, err, ErrDuplicateNumber)
	assert.Len(t, s.All(), 1)

	got, _ := s.Get(1)
	assert.Equal(t, "Test Command", got.Title)
	assert.Len(t, readFile(t, fs), 1)
}

func TestAllIsSnapshot(t *testing.T) {
	s, _ := emptyStore(t)
	for _, c := range sampleCommands() {
		require.NoError(t, s.Add(c))
	}

	all := s.All()
	all[0].Title = "mutated"
	all = append(all[:1], all[2:]...)

	got, _ := s.Get(1)
	assert.Equal(t, "Command 1", got.Title)
	assert.Len(t, s.All(), 3)
}

func TestGetNotFound(t *testing.T) {
	s, _ := emptyStore(t)
	_, ok := s.Get(999)
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	s, fs := emptyStore(t)
	for _, c := range sampleCommands() {
		require.NoError(t, s.Add(c))
	}

	c, _ := s.Get(2)
	c.Title = "Updated Title"
	c.RunMode = model.RunTypeOnly
	require.NoError(t, s.Update(c))

	got, _ := s.Get(2)
	assert.Equal(t, c, got)
	other, _ := s.Get(1)
	assert.Equal(t, "Command 1", other.Title)
	assert.Equal(t, "Updated Title", readFile(t, fs)[1].Title)
}

func TestUpdateNotFound(t *testing.T) {
	s, _ := emptyStore(t)
	require.NoError(t, s.Add(mockCommand()))
	before := s.All()

	err := s.Update(model.New(999, "Test", "cmd"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, s.All())
}

func TestDelete(t *testing.T) {
	s, fs := emptyStore(t)
	for _, c := range sampleCommands() {
		require.NoError(t, s.Add(c))
	}

	require.NoError(t, s.Delete(2))
	_, ok := s.Get(2)
	assert.False(t, ok)
	assert.Len(t, s.All(), 2)
	assert.Len(t, readFile(t, fs), 2)
}

func TestDeleteNotFound(t *testing.T) {
	s, _ := emptyStore(t)
	require.NoError(t, s.Add(mockCommand()))

	assert.ErrorIs(t, s.Delete(999), ErrNotFound)
	assert.Len(t, s.All(), 1)
}

func TestNextNumber(t *testing.T) {
	tests := []struct {
		name    string
		numbers []int
		want    int
	}{
		{"empty", nil, 1},
		{"contiguous", []int{1, 2, 3}, 4},
		{"gaps", []int{1, 3, 7}, 8},
		{"unordered", []int{7, 1, 3}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := emptyStore(t)
			for _, n := range tt.numbers {
				require.NoError(t, s.Add(model.New(n, "t", "c")))
			}
			assert.Equal(t, tt.want, s.NextNumber())
		})
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	fs := afero.NewMemMapFs()
	first := New(fs, commandsPath, nil, zerolog.Nop())
	require.NoError(t, first.Add(model.New(1, "Test", "cmd")))

	second := New(fs, commandsPath, DefaultCommands(), zerolog.Nop())
	got, ok := second.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Test", got.Title)
	assert.Len(t, second.All(), 1)
}

func TestMalformedFileReseeds(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, commandsPath, []byte("{broken"), 0o644))

	s := New(fs, commandsPath, DefaultCommands(), zerolog.Nop())
	assert.Len(t, s.All(), 32)
	assert.Len(t, readFile(t, fs), 32)

	backup, err := afero.ReadFile(fs, commandsPath+".bak")
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(backup))
}

func TestOlderRecordsGetDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, commandsPath,
		[]byte(`[{"number": 4, "title": "Old", "command": "ls"}]`), 0o644))

	s := New(fs, commandsPath, nil, zerolog.Nop())
	got, ok := s.Get(4)
	require.True(t, ok)
	assert.Equal(t, model.New(4, "Old", "ls"), got)
}

func TestStoredFormMatchesDecoded(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, commandsPath, nil, zerolog.Nop())

	c := model.New(7, "Zero mode", "true")
	c.RunMode = 0
	require.NoError(t, s.Add(c))

	inMemory, ok := s.Get(7)
	require.True(t, ok)
	assert.Equal(t, model.RunExecute, inMemory.RunMode)

	reopened, ok := New(fs, commandsPath, nil, zerolog.Nop()).Get(7)
	require.True(t, ok)
	assert.Equal(t, inMemory, reopened)

	c.RunMode = 42
	require.NoError(t, s.Update(c))
	updated, _ := s.Get(7)
	assert.Equal(t, model.RunExecute, updated.RunMode)
}

func TestNullAndZeroNumberedEntriesSkipped(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, commandsPath,
		[]byte(`[null, {"number": 3, "title": "Kept", "command": "ls"}, {"number": -2, "title": "Bad", "command": "x"}]`), 0o644))

	s := New(fs, commandsPath, nil, zerolog.Nop())
	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].Number)
	_, ok := s.Get(0)
	assert.False(t, ok)

	require.NoError(t, afero.WriteFile(fs, commandsPath,
		[]byte(`[{"number": 0, "title": "Zero"}, {"number": 5, "title": "Five", "command": "pwd"}]`), 0o644))
	require.True(t, s.Reload())
	all = s.All()
	require.Len(t, all, 1)
	assert.Equal(t, 5, all[0].Number)
}

func TestRestoreDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, commandsPath, DefaultCommands(), zerolog.Nop())
	require.NoError(t, s.Delete(1))
	require.NoError(t, s.Add(model.New(100, "Mine", "whoami")))

	s.RestoreDefaults()
	assert.Equal(t, DefaultCommands(), s.All())
	assert.Len(t, readFile(t, fs), 32)
}

func TestAddDefaultsIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, commandsPath, DefaultCommands(), zerolog.Nop())
	require.NoError(t, s.Delete(3))
	require.NoError(t, s.Delete(10))
	custom := model.New(5, "Custom five", "echo five")
	require.NoError(t, s.Delete(5))
	require.NoError(t, s.Add(custom))

	assert.Equal(t, 2, s.AddDefaults())
	assert.Equal(t, 0, s.AddDefaults())
	assert.Len(t, s.All(), 32)

	got, _ := s.Get(5)
	assert.Equal(t, custom, got)
}

func TestIsDefault(t *testing.T) {
	s := New(afero.NewMemMapFs(), commandsPath, DefaultCommands(), zerolog.Nop())

	c, _ := s.Get(1)
	assert.True(t, s.IsDefault(c))

	c.Description = "only the description changed"
	assert.True(t, s.IsDefault(c))

	c.Command = "df -hT"
	assert.False(t, s.IsDefault(c))

	assert.False(t, s.IsDefault(model.New(500, "x", "y")))
}

func TestHasCommandText(t *testing.T) {
	s, _ := emptyStore(t)
	for _, c := range sampleCommands() {
		require.NoError(t, s.Add(c))
	}
	assert.True(t, s.HasCommandText("  cmd2 ", 0))
	assert.False(t, s.HasCommandText("cmd2", 2))
	assert.False(t, s.HasCommandText("cmd9", 0))
}

func TestReload(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, commandsPath, nil, zerolog.Nop())

	other := New(fs, commandsPath, nil, zerolog.Nop())
	require.NoError(t, other.Add(model.New(9, "From elsewhere", "true")))

	assert.True(t, s.Reload())
	_, ok := s.Get(9)
	assert.True(t, ok)

	require.NoError(t, afero.WriteFile(fs, commandsPath, []byte("nope"), 0o644))
	assert.False(t, s.Reload())
	_, ok = s.Get(9)
	assert.True(t, ok)
}

func TestCatalog(t *testing.T) {
	base := Catalog(platform.Unknown)
	assert.Equal(t, DefaultCommands(), base)
	assert.Equal(t, DefaultCommands(), Catalog(platform.Fedora))

	deb := Catalog(platform.Ubuntu)
	require.Len(t, deb, 32)
	assert.Equal(t, "apt search ", deb[7].Command)
	assert.Equal(t, 8, deb[7].Number)

	numbers := make(map[int]bool)
	for _, c := range Catalog(platform.Arch) {
		require.NoError(t, c.Validate())
		assert.False(t, numbers[c.Number], "duplicate number %d", c.Number)
		numbers[c.Number] = true
	}
}

func TestExportImport(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			src, _ := emptyStore(t)
			for _, c := range sampleCommands() {
				require.NoError(t, src.Add(c))
			}
			var buf bytes.Buffer
			require.NoError(t, src.Export(&buf, format))

			dst, _ := emptyStore(t)
			require.NoError(t, dst.Add(model.New(2, "Mine", "keep")))

			res, err := dst.Import(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, []int{1, 3}, res.Added)
			assert.Equal(t, []int{2}, res.Skipped)

			kept, _ := dst.Get(2)
			assert.Equal(t, "keep", kept.Command)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("toml")
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.json")
	s := New(afero.NewOsFs(), path, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	require.NoError(t, Watch(ctx, path, zerolog.Nop(), func() { changed <- struct{}{} }))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	require.NoError(t, s.Add(model.New(1, "t", "c")))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}
