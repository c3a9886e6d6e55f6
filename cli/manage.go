package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"commando/storage"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newDefaultsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Restore or add the default command cards",
	}

	var yes bool
	restore := &cobra.Command{
		Use:   "restore",
		Short: "Replace all cards with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("this replaces all %d cards; pass --yes to confirm", e.store.Len())
			}
			e.store.RestoreDefaults()
			success(cmd.OutOrStdout(), "Restored %d default commands", e.store.Len())
			return nil
		},
	}
	restore.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	add := &cobra.Command{
		Use:   "add",
		Short: "Add the default cards whose numbers are free",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := e.store.AddDefaults()
			success(cmd.OutOrStdout(), "Added %d default commands", n)
			return nil
		},
	}

	cmd.AddCommand(restore, add)
	return cmd
}

// parseValue turns command line text into the JSON type it looks like.
func parseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Settings live in config.json under the config directory. Keys are
dotted paths such as terminal.external_terminal or main_view.sort_by.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(e.cfg.Raw())
			return err
		},
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := e.cfg.Get(args[0], nil)
			if v == nil {
				return fmt.Errorf("%s is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}

	set := &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Change one setting",
		Example: `  commando config set terminal.external_terminal kitty
  commando config set main_view.sort_ascending false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.cfg.Set(args[0], parseValue(args[1])); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s = %s", args[0], args[1])
			return nil
		},
	}

	unset := &cobra.Command{
		Use:   "unset <key>",
		Short: "Reset one setting to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cfg.Unset(args[0])
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config, data, cache and state locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			printField(out, "Config", e.cfg.Path())
			printField(out, "Commands", e.store.Path())
			printField(out, "Cache", e.paths.Cache)
			printField(out, "History", e.paths.HistoryFile())
			return nil
		},
	}

	cmd.AddCommand(get, set, unset, path)
	return cmd
}

func newPlatformCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Show the detected distribution and package manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := e.detector.Info()
			out := cmd.OutOrStdout()
			printField(out, "OS", info.OS)
			printField(out, "Distribution", string(info.Distribution))
			printField(out, "Family", string(info.Distribution.Family()))
			pm := info.PackageManager
			if pm == "" {
				pm = "none found"
			}
			printField(out, "Packages", pm)
			printField(out, "Terminal", e.executor.ConfiguredTerminal())
			return nil
		},
	}
}

func newHistoryCmd(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently run commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := e.openHistory()
			if h == nil {
				return fmt.Errorf("run history is unavailable (see %s)", e.paths.HistoryFile())
			}
			defer h.Close()

			runs, err := h.Recent(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "Nothing run yet.")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %-14s  %-8s  %s\n",
					numberColor.Sprintf("%4d", r.Number),
					humanize.Time(r.RanAt),
					r.Strategy,
					commandColor.Sprint(r.Command))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of runs to show")
	return cmd
}

// formatFor picks the format from the flag, else from the file extension.
func formatFor(flag, path string) (storage.Format, error) {
	if flag != "" {
		return storage.ParseFormat(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return storage.FormatYAML, nil
	}
	return storage.FormatJSON, nil
}

func newExportCmd(e *env) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all cards as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatFor(format, output)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := e.fs.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if err := e.store.Export(w, f); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if output != "" && output != "-" {
				success(cmd.ErrOrStderr(), "Exported %d commands to %s", e.store.Len(), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default: from the file extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

func newImportCmd(e *env) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add cards from a JSON or YAML file",
		Long: `Add cards from a file written by export. Cards whose numbers are already
taken are skipped; existing cards are never changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatFor(format, args[0])
			if err != nil {
				return err
			}
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				file, err := e.fs.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				r = file
			}
			res, err := e.store.Import(r, f)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			success(cmd.OutOrStdout(), "Imported %d commands", len(res.Added))
			if len(res.Skipped) > 0 {
				warn(cmd.ErrOrStderr(), "skipped numbers already in use: %s", joinInts(res.Skipped))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default: from the file extension, else json)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "commando", Version)
		},
	}
}
