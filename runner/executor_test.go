package runner

import (
	"errors"
	"os/exec"
	"testing"

	"commando/config"
	"commando/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings map[string]string

func (f fakeSettings) GetString(key, def string) string {
	if v, ok := f[key]; ok {
		return v
	}
	return def
}

type fakeSpawner struct {
	specs []SpawnSpec
	err   error
}

func (f *fakeSpawner) Spawn(spec SpawnSpec) error {
	f.specs = append(f.specs, spec)
	return f.err
}

type fakeSurface struct {
	texts   []string
	newTabs []bool
	focused int
	err     error
}

func (f *fakeSurface) ExecuteCommand(text string, newTab bool) error {
	f.texts = append(f.texts, text)
	f.newTabs = append(f.newTabs, newTab)
	return f.err
}

func (f *fakeSurface) FocusCurrentTerminal() { f.focused++ }

func noPath(string) (string, error) { return "", exec.ErrNotFound }

func noEnv(string) string { return "" }

func newTestExecutor(settings fakeSettings, spawner *fakeSpawner, opts ...Option) *Executor {
	opts = append([]Option{WithSpawner(spawner), WithLookPath(noPath), WithGetenv(noEnv)}, opts...)
	return New(settings, zerolog.Nop(), opts...)
}

func TestNoTerminalSpawnsDirectly(t *testing.T) {
	spawner := &fakeSpawner{}
	surface := &fakeSurface{}
	e := newTestExecutor(fakeSettings{config.KeyExternalTerminal: "xterm"}, spawner)
	e.SetSurface(surface)

	c := model.New(1, "Notify", "notify-send hi")
	c.NoTerminal = true

	assert.Equal(t, StrategyDirect, e.Execute(c))
	require.Len(t, spawner.specs, 1)
	assert.Equal(t, []string{"/bin/sh", "-c", "notify-send hi"}, spawner.specs[0].Argv)
	assert.Empty(t, surface.texts)
	assert.Zero(t, surface.focused)
}

func TestConfiguredTerminalWins(t *testing.T) {
	spawner := &fakeSpawner{}
	surface := &fakeSurface{}
	e := newTestExecutor(fakeSettings{config.KeyExternalTerminal: "gnome-terminal"}, spawner)
	e.SetSurface(surface)

	assert.Equal(t, StrategyExternal, e.Execute(model.New(1, "T", "echo test")))
	require.Len(t, spawner.specs, 1)
	assert.Equal(t,
		[]string{"gnome-terminal", "--", "bash", "-c", "echo test\nexec bash"},
		spawner.specs[0].Argv)
	assert.Empty(t, surface.texts)
}

func TestEmbeddedSurface(t *testing.T) {
	spawner := &fakeSpawner{}
	surface := &fakeSurface{}
	e := newTestExecutor(fakeSettings{}, spawner)
	e.SetSurface(surface)

	assert.Equal(t, StrategyEmbedded, e.Execute(model.New(1, "T", "echo test")))
	assert.Equal(t, []string{"echo test\n"}, surface.texts)
	assert.Equal(t, []bool{true}, surface.newTabs)
	assert.Equal(t, 1, surface.focused)
	assert.Empty(t, spawner.specs)
}

func TestEmbeddedTypeOnlyDoesNotSubmit(t *testing.T) {
	surface := &fakeSurface{}
	e := newTestExecutor(fakeSettings{}, &fakeSpawner{})
	e.SetSurface(surface)

	c := model.New(1, "T", "dnf search ")
	c.RunMode = model.RunTypeOnly
	e.Execute(c)
	assert.Equal(t, []string{"dnf search "}, surface.texts)
}

func TestEmbeddedFailureFallsBack(t *testing.T) {
	spawner := &fakeSpawner{}
	surface := &fakeSurface{err: errors.New("no pty")}
	e := newTestExecutor(fakeSettings{}, spawner, WithGetenv(func(string) string { return "xterm" }))
	e.SetSurface(surface)

	assert.Equal(t, StrategyExternal, e.Execute(model.New(1, "T", "ls")))
	assert.Zero(t, surface.focused)
	require.Len(t, spawner.specs, 1)
	assert.Equal(t, "xterm", spawner.specs[0].Argv[0])
}

func TestNoSurfaceFallsBackToExternalGeneric(t *testing.T) {
	spawner := &fakeSpawner{}
	lookPath := func(name string) (string, error) {
		if name == "x-terminal-emulator" {
			return "/usr/bin/x-terminal-emulator", nil
		}
		return "", exec.ErrNotFound
	}
	e := newTestExecutor(fakeSettings{}, spawner, WithLookPath(lookPath))

	assert.Equal(t, StrategyExternal, e.Execute(model.New(1, "T", "uptime")))
	require.Len(t, spawner.specs, 1)
	assert.Equal(t,
		[]string{"x-terminal-emulator", "-e", "bash", "-c", "uptime\nexec bash"},
		spawner.specs[0].Argv)
}

func TestNoSurfacePrefersTerminalEnv(t *testing.T) {
	spawner := &fakeSpawner{}
	e := newTestExecutor(fakeSettings{}, spawner, WithGetenv(func(k string) string {
		if k == "TERMINAL" {
			return "my-custom-term"
		}
		return ""
	}))

	e.Execute(model.New(1, "T", "uptime"))
	require.Len(t, spawner.specs, 1)
	assert.Equal(t, []string{"my-custom-term", "-e", "bash", "-c", "uptime\nexec bash"}, spawner.specs[0].Argv)
}

func TestNothingAvailableSpawnsNothing(t *testing.T) {
	spawner := &fakeSpawner{}
	e := newTestExecutor(fakeSettings{}, spawner)

	assert.Equal(t, StrategyExternal, e.Execute(model.New(1, "T", "uptime")))
	assert.Empty(t, spawner.specs)
}

func TestSpawnErrorIsSwallowed(t *testing.T) {
	spawner := &fakeSpawner{err: errors.New("boom")}
	e := newTestExecutor(fakeSettings{}, spawner)

	c := model.New(1, "T", "true")
	c.NoTerminal = true
	assert.NotPanics(t, func() { e.Execute(c) })
	assert.Len(t, spawner.specs, 1)
}

func TestTerminalOverride(t *testing.T) {
	spawner := &fakeSpawner{}
	e := newTestExecutor(fakeSettings{config.KeyExternalTerminal: "xterm"}, spawner, WithTerminal("kitty"))

	assert.Equal(t, "kitty", e.ConfiguredTerminal())
	e.Execute(model.New(1, "T", "htop"))
	require.Len(t, spawner.specs, 1)
	assert.Equal(t, []string{"kitty", "bash", "-c", "htop\nexec bash"}, spawner.specs[0].Argv)
}

func TestExternalTypeOnlyPrefills(t *testing.T) {
	spawner := &fakeSpawner{}
	e := newTestExecutor(fakeSettings{config.KeyExternalTerminal: "konsole"}, spawner)

	c := model.New(1, "T", "ping -c 4 ")
	c.RunMode = model.RunTypeOnly
	e.Execute(c)

	require.Len(t, spawner.specs, 1)
	argv := spawner.specs[0].Argv
	require.Len(t, argv, 5)
	assert.Equal(t, []string{"konsole", "-e", "bash", "-c"}, argv[:4])
	assert.Contains(t, argv[4], "read -r -e -i 'ping -c 4 '")
	assert.Contains(t, argv[4], "exec bash")
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "direct", StrategyDirect.String())
	assert.Equal(t, "external", StrategyExternal.String())
	assert.Equal(t, "embedded", StrategyEmbedded.String())
	assert.Equal(t, "unknown", Strategy(0).String())
}
