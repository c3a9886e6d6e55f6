package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"commando/model"
	"commando/runner"
	"commando/storage"
	"commando/ui"

	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

func parseNumber(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid command number %q", arg)
	}
	return n, nil
}

func (e *env) lookup(arg string) (model.Command, error) {
	n, err := parseNumber(arg)
	if err != nil {
		return model.Command{}, err
	}
	c, ok := e.store.Get(n)
	if !ok {
		return model.Command{}, fmt.Errorf("command #%d: %w", n, storage.ErrNotFound)
	}
	return c, nil
}

func newListCmd(e *env) *cobra.Command {
	var tag, category, sortBy, query string
	var desc bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List command cards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds := e.store.All()

			var filtered []model.Command
			for _, c := range cmds {
				if tag != "" && !strings.EqualFold(c.Tag, tag) {
					continue
				}
				if category != "" && !strings.EqualFold(c.Category, category) {
					continue
				}
				filtered = append(filtered, c)
			}

			key := ui.ParseSortKey(sortBy)
			if key == ui.SortRecent {
				if h := e.openHistory(); h != nil {
					last, err := h.LastUsed()
					h.Close()
					if err != nil {
						return err
					}
					ui.SortCommands(filtered, key, !desc, last)
				}
			} else {
				ui.SortCommands(filtered, key, !desc, nil)
			}

			if query != "" {
				targets := make([]string, len(filtered))
				for i, c := range filtered {
					targets[i] = c.Title + " " + c.Command + " " + c.Tag + " " + c.Category
				}
				var matched []model.Command
				for _, m := range fuzzy.Find(query, targets) {
					matched = append(matched, filtered[m.Index])
				}
				filtered = matched
			}

			out := cmd.OutOrStdout()
			if len(filtered) == 0 {
				fmt.Fprintln(out, "No commands.")
				return nil
			}
			width := titleWidth(filtered)
			for _, c := range filtered {
				printCommandRow(out, c, width)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "only cards with this tag")
	cmd.Flags().StringVar(&category, "category", "", "only cards in this category")
	cmd.Flags().StringVar(&sortBy, "sort", "number", "sort by number, title, tag, category or recent")
	cmd.Flags().BoolVar(&desc, "desc", false, "reverse the sort order")
	cmd.Flags().StringVarP(&query, "query", "q", "", "fuzzy search over title, command, tag and category")
	return cmd
}

func newShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <number>",
		Short: "Show one command card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.lookup(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printCommand(out, c)
			if params := runner.ExtractParams(c.Command); len(params) > 0 {
				printField(out, "Parameters", strings.Join(params, ", "))
			}
			if e.store.IsDefault(c) {
				printField(out, "Default", "yes")
			}
			if h := e.openHistory(); h != nil {
				defer h.Close()
				if last, err := h.LastUsed(); err == nil {
					if t, ok := last[c.Number]; ok {
						printField(out, "Last used", humanize.Time(t))
					}
				}
			}
			return nil
		},
	}
}

// cardFlags are the editable fields shared by add and edit.
type cardFlags struct {
	number      int
	title       string
	command     string
	description string
	tag         string
	category    string
	icon        string
	color       string
	noTerminal  bool
	runMode     string
}

func (f *cardFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.title, "title", "t", "", "card title")
	fl.StringVarP(&f.command, "command", "c", "", "shell command; {{name}} placeholders are asked for at run time")
	fl.StringVarP(&f.description, "description", "d", "", "longer description")
	fl.StringVar(&f.tag, "tag", "", "short tag shown on the card")
	fl.StringVar(&f.category, "category", "", "category")
	fl.StringVar(&f.icon, "icon", model.DefaultIcon, "icon name")
	fl.StringVar(&f.color, "color", model.DefaultColor, "card color")
	fl.BoolVar(&f.noTerminal, "no-terminal", false, "run in the background without a terminal")
	fl.StringVar(&f.runMode, "run-mode", "execute", "execute, or type to leave the command at the prompt")
}

// apply copies the flags the user set onto c.
func (f *cardFlags) apply(cmd *cobra.Command, c *model.Command) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		c.Title = strings.TrimSpace(f.title)
	}
	if changed("command") {
		c.Command = strings.TrimSpace(f.command)
	}
	if changed("description") {
		c.Description = f.description
	}
	if changed("tag") {
		c.Tag = f.tag
	}
	if changed("category") {
		c.Category = f.category
	}
	if changed("icon") {
		c.Icon = f.icon
	}
	if changed("color") {
		c.Color = f.color
	}
	if changed("no-terminal") {
		c.NoTerminal = f.noTerminal
	}
	if changed("run-mode") {
		mode, err := model.ParseRunMode(f.runMode)
		if err != nil {
			return err
		}
		c.RunMode = mode
	}
	return nil
}

func (e *env) warnAbout(cmd *cobra.Command, c model.Command, except int) {
	if err := runner.CheckSyntax(c.Command); err != nil {
		warn(cmd.ErrOrStderr(), "shell syntax: %v", err)
	}
	if e.store.HasCommandText(c.Command, except) {
		warn(cmd.ErrOrStderr(), "another card already runs %q", c.Command)
	}
}

func newAddCmd(e *env) *cobra.Command {
	var f cardFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a command card",
		Example: `  commando add -t "Disk usage" -c "df -h"
  commando add -n 40 -t "Ping" -c "ping -c 4 {{host}}" --category Network`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			number := f.number
			if !cmd.Flags().Changed("number") {
				number = e.store.NextNumber()
			}
			if number < 1 || number > model.MaxNumber {
				return fmt.Errorf("number must be between 1 and %d", model.MaxNumber)
			}

			c := model.New(number, "", "")
			if err := f.apply(cmd, &c); err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}
			e.warnAbout(cmd, c, 0)

			if err := e.store.Add(c); err != nil {
				if errors.Is(err, storage.ErrDuplicateNumber) {
					return fmt.Errorf("number %d is already used (next free: %d)", number, e.store.NextNumber())
				}
				return err
			}
			success(cmd.OutOrStdout(), "Added #%d %s", c.Number, c.Title)
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().IntVarP(&f.number, "number", "n", 0, "card number (default: next free number)")
	return cmd
}

func newEditCmd(e *env) *cobra.Command {
	var f cardFlags

	cmd := &cobra.Command{
		Use:     "edit <number>",
		Short:   "Change fields of a command card",
		Example: `  commando edit 3 --title "Free memory" --run-mode type`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.lookup(args[0])
			if err != nil {
				return err
			}
			if err := f.apply(cmd, &c); err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}
			if cmd.Flags().Changed("command") {
				e.warnAbout(cmd, c, c.Number)
			}
			if err := e.store.Update(c); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Updated #%d %s", c.Number, c.Title)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func newRmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <number>...",
		Aliases: []string{"delete"},
		Short:   "Delete command cards",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var numbers []int
			for _, arg := range args {
				c, err := e.lookup(arg)
				if err != nil {
					return err
				}
				numbers = append(numbers, c.Number)
			}

			h := e.openHistory()
			if h != nil {
				defer h.Close()
			}
			for _, n := range numbers {
				if err := e.store.Delete(n); err != nil {
					return err
				}
				if h != nil {
					if err := h.Forget(n); err != nil {
						e.log.Warn().Err(err).Int("number", n).Msg("failed to forget run history")
					}
				}
			}
			success(cmd.OutOrStdout(), "Deleted #%s", joinInts(numbers))
			return nil
		},
	}
}

func newRunCmd(e *env) *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "run <number>",
		Short: "Run a command card",
		Long: `Run a command card the same way the launcher does. Without the launcher
there is no embedded terminal, so cards open in an external terminal
unless they are marked --no-terminal.`,
		Example: `  commando run 3
  commando run 40 -p host=example.org`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.lookup(args[0])
			if err != nil {
				return err
			}

			var missing []string
			for _, name := range runner.ExtractParams(c.Command) {
				if _, ok := params[name]; !ok {
					missing = append(missing, name)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("missing parameters: %s (use -p name=value)", strings.Join(missing, ", "))
			}

			final := c
			final.Command = runner.SubstituteParams(c.Command, params)
			strategy := e.executor.Execute(final)

			if h := e.openHistory(); h != nil {
				if err := h.RecordRun(c.Number, final.Command, strategy.String()); err != nil {
					e.log.Warn().Err(err).Msg("failed to record run")
				}
				h.Close()
			}
			success(cmd.OutOrStdout(), "Ran #%d %s (%s)", c.Number, c.Title, strategy)
			return nil
		},
	}

	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "value for a {{name}} placeholder")
	return cmd
}
