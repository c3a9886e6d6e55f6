// Package cli wires the application together behind a cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"commando/config"
	"commando/db"
	"commando/logging"
	"commando/platform"
	"commando/runner"
	"commando/storage"
	"commando/terminal"
	"commando/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time.
var Version = "dev"

// env holds everything a subcommand needs. It is built once per process
// in the root command's PersistentPreRunE.
type env struct {
	v        *viper.Viper
	fs       afero.Fs
	paths    config.Paths
	log      zerolog.Logger
	closeLog io.Closer
	cfg      *config.Config
	store    *storage.Store
	detector *platform.Detector
	executor *runner.Executor

	spawner runner.Spawner
}

// Option customizes the command tree, mostly for tests.
type Option func(*env)

// WithSpawner replaces the process spawner used by run.
func WithSpawner(s runner.Spawner) Option {
	return func(e *env) { e.spawner = s }
}

// WithDetector replaces platform detection.
func WithDetector(d *platform.Detector) Option {
	return func(e *env) { e.detector = d }
}

// NewRootCmd builds the command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	e := &env{
		v:        viper.New(),
		fs:       afero.NewOsFs(),
		detector: platform.NewDetector(),
	}
	for _, opt := range opts {
		opt(e)
	}

	cmd := &cobra.Command{
		Use:   "commando",
		Short: "A launcher for the shell commands you keep retyping",
		Long: `commando keeps a numbered deck of command cards and runs them in the
embedded terminal, an external terminal emulator, or in the background.

Run without arguments to open the interactive launcher.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.closeLog.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runTUI(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config-dir", "", "configuration directory (default $XDG_CONFIG_HOME/commando)")
	flags.String("data-dir", "", "data directory holding commands.json (default $XDG_DATA_HOME/commando)")
	flags.String("log-level", "", "console log level: DEBUG, INFO, WARN, ERROR")
	flags.String("terminal", "", "external terminal program, overrides terminal.external_terminal")
	for _, name := range []string{"config-dir", "data-dir", "log-level", "terminal"} {
		_ = e.v.BindPFlag(name, flags.Lookup(name))
	}
	e.v.SetEnvPrefix("COMMANDO")
	e.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	e.v.AutomaticEnv()

	cmd.AddCommand(
		newListCmd(e),
		newShowCmd(e),
		newAddCmd(e),
		newEditCmd(e),
		newRmCmd(e),
		newRunCmd(e),
		newDefaultsCmd(e),
		newConfigCmd(e),
		newPlatformCmd(e),
		newHistoryCmd(e),
		newExportCmd(e),
		newImportCmd(e),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("Error: ")+err.Error())
		return 1
	}
	return 0
}

func (e *env) setup(cmd *cobra.Command) error {
	e.paths = config.DefaultPaths()
	if dir := e.v.GetString("config-dir"); dir != "" {
		e.paths.Config = dir
	}
	if dir := e.v.GetString("data-dir"); dir != "" {
		e.paths.Data = dir
	}
	if err := e.paths.Ensure(e.fs); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	level := e.v.GetString("log-level")
	if level == "" {
		level = config.Load(e.fs, e.paths.ConfigFile(), zerolog.Nop()).GetString(config.KeyLogLevel, "INFO")
	}

	// The TUI owns the screen, so only subcommands log to the console.
	logCfg := logging.Config{Level: logging.ParseLevel(level), File: logging.FilePath(e.paths.Cache)}
	if cmd.HasParent() {
		logCfg.Console = cmd.ErrOrStderr()
	}
	log, closer, err := logging.Init(logCfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	e.log, e.closeLog = log, closer

	e.cfg = config.Load(e.fs, e.paths.ConfigFile(), e.log)

	dist := e.detector.Distribution()
	e.store = storage.New(e.fs, e.paths.CommandsFile(), storage.Catalog(dist), e.log)

	execOpts := []runner.Option{}
	if e.spawner != nil {
		execOpts = append(execOpts, runner.WithSpawner(e.spawner))
	}
	if t := e.v.GetString("terminal"); t != "" {
		execOpts = append(execOpts, runner.WithTerminal(t))
	}
	e.executor = runner.New(e.cfg, e.log, execOpts...)
	return nil
}

// openHistory opens the run history. History is optional: failures are
// logged and nil is returned.
func (e *env) openHistory() *db.History {
	h, err := db.New(e.paths.HistoryFile())
	if err != nil {
		e.log.Warn().Err(err).Msg("run history unavailable")
		return nil
	}
	return h
}

func (e *env) runTUI(ctx context.Context) error {
	history := e.openHistory()
	if history != nil {
		defer history.Close()
	}

	terminals := terminal.NewManager(e.cfg.GetInt("terminal.scrollback_lines", terminal.DefaultScrollback), e.log)
	defer terminals.CloseAll()
	e.executor.SetSurface(terminals)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	changes := make(chan struct{}, 1)
	err := storage.Watch(ctx, e.store.Path(), e.log, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("not watching commands file")
		changes = nil
	}

	app := ui.NewApp(ui.Deps{
		Store:     e.store,
		Executor:  e.executor,
		Config:    e.cfg,
		Terminals: terminals,
		History:   history,
		Changes:   changes,
		Log:       e.log,
	})

	e.log.Info().Str("version", Version).Msg("starting launcher")
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run launcher: %w", err)
	}
	return nil
}
