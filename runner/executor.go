// Package runner turns a command card into a running process.
package runner

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"commando/config"
	"commando/model"

	"github.com/rs/zerolog"
)

type Strategy int

const (
	StrategyDirect Strategy = iota + 1
	StrategyExternal
	StrategyEmbedded
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyExternal:
		return "external"
	case StrategyEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

// Surface is a terminal hosted inside the application window.
type Surface interface {
	// ExecuteCommand feeds text to a shell session as if typed.
	ExecuteCommand(text string, newTab bool) error
	FocusCurrentTerminal()
}

// Settings is the part of the configuration the executor reads.
type Settings interface {
	GetString(key, def string) string
}

var ErrNoTerminal = errors.New("no external terminal configured or found on PATH")

type Executor struct {
	settings Settings
	spawner  Spawner
	surface  Surface
	terminal string
	lookPath func(string) (string, error)
	getenv   func(string) string
	log      zerolog.Logger
}

type Option func(*Executor)

func WithSpawner(s Spawner) Option {
	return func(e *Executor) { e.spawner = s }
}

// WithTerminal overrides the configured external terminal.
func WithTerminal(program string) Option {
	return func(e *Executor) { e.terminal = program }
}

func WithLookPath(fn func(string) (string, error)) Option {
	return func(e *Executor) { e.lookPath = fn }
}

func WithGetenv(fn func(string) string) Option {
	return func(e *Executor) { e.getenv = fn }
}

func New(settings Settings, log zerolog.Logger, opts ...Option) *Executor {
	log = log.With().Str("component", "executor").Logger()
	e := &Executor{
		settings: settings,
		spawner:  OSSpawner{Log: log},
		lookPath: exec.LookPath,
		getenv:   os.Getenv,
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetSurface registers the embedded terminal. Nil unregisters it.
func (e *Executor) SetSurface(s Surface) {
	e.surface = s
}

// ConfiguredTerminal returns the external terminal program, if any.
func (e *Executor) ConfiguredTerminal() string {
	if t := strings.TrimSpace(e.terminal); t != "" {
		return t
	}
	if e.settings == nil {
		return ""
	}
	return strings.TrimSpace(e.settings.GetString(config.KeyExternalTerminal, ""))
}

// Execute launches c and returns the strategy it used. Launch failures are
// logged, not returned: the caller never waits on the child.
func (e *Executor) Execute(c model.Command) Strategy {
	log := e.log.With().Int("number", c.Number).Str("command", c.Command).Logger()

	if c.NoTerminal {
		e.executeDirect(c, log)
		return StrategyDirect
	}
	if e.ConfiguredTerminal() != "" {
		e.executeExternal(c, log)
		return StrategyExternal
	}
	if e.surface != nil {
		if err := e.executeEmbedded(c, log); err == nil {
			return StrategyEmbedded
		}
		log.Warn().Msg("embedded terminal failed, falling back to external")
	} else {
		log.Debug().Msg("no embedded terminal registered, falling back to external")
	}
	e.executeExternal(c, log)
	return StrategyExternal
}

func (e *Executor) executeDirect(c model.Command, log zerolog.Logger) {
	log.Info().Msg("executing command directly (no terminal)")
	if err := e.spawner.Spawn(SpawnSpec{Argv: []string{"/bin/sh", "-c", c.Command}}); err != nil {
		log.Error().Err(err).Msg("failed to execute command directly")
	}
}

func (e *Executor) executeEmbedded(c model.Command, log zerolog.Logger) error {
	text := c.Command
	if c.RunMode != model.RunTypeOnly {
		text += "\n"
	}
	log.Info().Str("mode", c.RunMode.String()).Msg("executing command in embedded terminal")
	if err := e.surface.ExecuteCommand(text, true); err != nil {
		log.Error().Err(err).Msg("failed to feed embedded terminal")
		return err
	}
	e.surface.FocusCurrentTerminal()
	return nil
}

func (e *Executor) executeExternal(c model.Command, log zerolog.Logger) {
	program, err := e.resolveTerminal()
	if err != nil {
		log.Error().Err(err).Msg("external terminal not available")
		return
	}

	script := keepOpenScript(c.Command)
	if c.RunMode == model.RunTypeOnly {
		if script, err = prefillScript(c.Command); err != nil {
			log.Warn().Err(err).Msg("cannot prefill command, opening an empty shell")
			script = "exec bash"
		}
	}

	argv := TerminalArgv(program, script)
	log.Info().
		Str("terminal", program).
		Stringer("emulator", ClassifyEmulator(program)).
		Msg("executing in external terminal")
	if err := e.spawner.Spawn(SpawnSpec{Argv: argv}); err != nil {
		log.Error().Err(err).Msg("failed to execute in external terminal")
	}
}

// resolveTerminal prefers the configured program, then $TERMINAL, then
// the first known emulator on PATH.
func (e *Executor) resolveTerminal() (string, error) {
	if t := e.ConfiguredTerminal(); t != "" {
		return t, nil
	}
	if t := strings.TrimSpace(e.getenv("TERMINAL")); t != "" {
		return t, nil
	}
	for _, name := range knownTerminals {
		if _, err := e.lookPath(name); err == nil {
			return name, nil
		}
	}
	return "", ErrNoTerminal
}
