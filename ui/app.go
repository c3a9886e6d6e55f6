// Package ui is the interactive card launcher.
package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"commando/config"
	"commando/db"
	"commando/model"
	"commando/runner"
	"commando/storage"
	"commando/terminal"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeAdd
	modeEdit
	modeDelete
	modeParam
	modeSpeedDial
	modeRestore
)

// Deps are the collaborators the app drives. Terminals, History and
// Changes are optional.
type Deps struct {
	Store     *storage.Store
	Executor  *runner.Executor
	Config    *config.Config
	Terminals *terminal.Manager
	History   *db.History
	// Changes receives a value whenever the commands file changes on disk.
	Changes <-chan struct{}
	Log     zerolog.Logger
}

type App struct {
	store     *storage.Store
	executor  *runner.Executor
	cfg       *config.Config
	terminals *terminal.Manager
	history   *db.History
	changes   <-chan struct{}
	log       zerolog.Logger

	commands []model.Command
	filtered []model.Command
	lastUsed map[int]time.Time
	sortKey  SortKey
	sortAsc  bool

	// UI state
	mode   mode
	cursor int
	width  int
	height int
	err    string
	status string

	searchInput textinput.Model
	detail      viewport.Model

	form *form

	// Param input
	paramNames  []string
	paramValues map[string]string
	paramIndex  int
	paramInput  textinput.Model
	pendingCmd  *model.Command

	dialInput textinput.Model
}

func NewApp(d Deps) *App {
	search := textinput.New()
	search.Placeholder = "Search commands... (/)"

	dial := textinput.New()
	dial.Placeholder = "number"
	dial.CharLimit = 4

	a := &App{
		store:       d.Store,
		executor:    d.Executor,
		cfg:         d.Config,
		terminals:   d.Terminals,
		history:     d.History,
		changes:     d.Changes,
		log:         d.Log.With().Str("component", "ui").Logger(),
		lastUsed:    make(map[int]time.Time),
		sortKey:     ParseSortKey(d.Config.GetString(config.KeySortBy, string(SortNumber))),
		sortAsc:     d.Config.GetBool(config.KeySortAscending, true),
		searchInput: search,
		detail:      viewport.New(80, 6),
		paramValues: make(map[string]string),
		dialInput:   dial,
	}

	if a.history != nil {
		if last, err := a.history.LastUsed(); err != nil {
			a.log.Warn().Err(err).Msg("failed to read run history")
		} else {
			a.lastUsed = last
		}
	}

	a.refreshCommands()
	return a
}

func (a *App) Init() tea.Cmd {
	return waitForChange(a.changes)
}

type commandsChangedMsg struct{}

type terminalDetachedMsg struct{ err error }

type terminalClosedMsg struct{ err error }

// closeTerminal ends the current session off the UI goroutine; a shell
// that ignores its hangup holds Close for the kill grace period.
func closeTerminal(m *terminal.Manager) tea.Cmd {
	return func() tea.Msg {
		return terminalClosedMsg{err: m.CloseCurrent()}
	}
}

// waitForChange turns the next file change into a message.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return commandsChangedMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width - 4   // account for app padding
		a.height = msg.Height - 2 // account for app padding
		a.detail.Width = a.width - 4
		a.detail.Height = max(4, a.height/4)
		a.updateDetail()
		return a, nil

	case commandsChangedMsg:
		if a.store.Reload() {
			a.refreshCommands()
		}
		return a, waitForChange(a.changes)

	case terminalDetachedMsg:
		if msg.err != nil && !errors.Is(msg.err, terminal.ErrSessionClosed) {
			a.err = msg.err.Error()
		} else {
			a.status = "Back from terminal"
		}
		return a, nil

	case terminalClosedMsg:
		if msg.err != nil {
			a.err = msg.err.Error()
		} else {
			a.status = "Terminal closed"
		}
		return a, nil

	case tea.KeyMsg:
		a.err = ""
		a.status = ""

		switch a.mode {
		case modeNormal:
			return a.updateNormal(msg)
		case modeSearch:
			return a.updateSearch(msg)
		case modeAdd, modeEdit:
			return a.updateForm(msg)
		case modeDelete, modeRestore:
			return a.updateConfirm(msg)
		case modeParam:
			return a.updateParam(msg)
		case modeSpeedDial:
			return a.updateSpeedDial(msg)
		}
	}

	return a, nil
}

func (a *App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit

	case "up", "k":
		a.moveCursor(-1)

	case "down", "j":
		a.moveCursor(1)

	case "home", "g":
		a.moveCursor(-len(a.filtered))

	case "end", "G":
		a.moveCursor(len(a.filtered))

	case "pgup":
		a.detail.ViewUp()

	case "pgdown":
		a.detail.ViewDown()

	case "enter":
		if c, ok := a.selected(); ok {
			return a.runCommand(c)
		}

	case "/":
		a.mode = modeSearch
		return a, a.searchInput.Focus()

	case "esc":
		a.searchInput.SetValue("")
		a.filterCommands()

	case "a":
		a.mode = modeAdd
		a.form = newForm(nil, a.store.NextNumber())
		return a, textinput.Blink

	case "e":
		if c, ok := a.selected(); ok {
			a.mode = modeEdit
			a.form = newForm(&c, 0)
			return a, textinput.Blink
		}

	case "d":
		if len(a.filtered) > 0 {
			a.mode = modeDelete
		}

	case "s":
		a.sortKey = a.sortKey.Next()
		a.persist(config.KeySortBy, string(a.sortKey))
		a.refreshCommands()
		a.status = "Sorted by " + string(a.sortKey)

	case "S":
		a.sortAsc = !a.sortAsc
		a.persist(config.KeySortAscending, a.sortAsc)
		a.refreshCommands()

	case ":":
		a.mode = modeSpeedDial
		a.dialInput.SetValue("")
		return a, a.dialInput.Focus()

	case "y":
		if c, ok := a.selected(); ok {
			if err := clipboard.WriteAll(c.Command); err != nil {
				a.err = "Clipboard unavailable: " + err.Error()
			} else {
				a.status = "Copied!"
			}
		}

	case "t":
		return a, a.attach()

	case "x":
		if a.terminals == nil || a.terminals.Current() == nil {
			a.err = "No terminal session"
			return a, nil
		}
		a.status = "Closing terminal..."
		return a, closeTerminal(a.terminals)

	case "R":
		a.mode = modeRestore

	case "D":
		n := a.store.AddDefaults()
		a.refreshCommands()
		a.status = fmt.Sprintf("Added %d default commands", n)
	}

	return a, nil
}

func (a *App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.searchInput.SetValue("")
		a.filterCommands()
		a.searchInput.Blur()
		a.mode = modeNormal

	case "enter":
		a.searchInput.Blur()
		a.mode = modeNormal

	case "up":
		a.moveCursor(-1)

	case "down":
		a.moveCursor(1)

	default:
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		a.filterCommands()
		return a, cmd
	}
	return a, nil
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.form = nil
		return a, nil

	case "tab", "down":
		return a, a.form.move(1)

	case "shift+tab", "up":
		return a, a.form.move(-1)

	case "enter":
		return a.submitForm()

	default:
		return a, a.form.update(msg)
	}
}

func (a *App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if a.mode == modeDelete {
			a.deleteSelected()
		} else {
			a.store.RestoreDefaults()
			a.refreshCommands()
			a.status = "Default commands restored"
		}
		a.mode = modeNormal

	case "n", "N", "esc":
		a.mode = modeNormal
	}
	return a, nil
}

func (a *App) updateParam(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.pendingCmd = nil
		return a, nil

	case "enter":
		a.paramValues[a.paramNames[a.paramIndex]] = a.paramInput.Value()
		a.paramIndex++

		if a.paramIndex >= len(a.paramNames) {
			a.mode = modeNormal
			return a.executeCommand(*a.pendingCmd)
		}

		a.paramInput.SetValue("")
		a.paramInput.Placeholder = a.paramNames[a.paramIndex]
		return a, nil

	default:
		var cmd tea.Cmd
		a.paramInput, cmd = a.paramInput.Update(msg)
		return a, cmd
	}
}

func (a *App) updateSpeedDial(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.dialInput.Blur()
		a.mode = modeNormal
		return a, nil

	case "enter":
		a.dialInput.Blur()
		a.mode = modeNormal
		c, ok := a.dialTarget()
		if !ok {
			a.err = fmt.Sprintf("No command #%s", strings.TrimSpace(a.dialInput.Value()))
			return a, nil
		}
		a.selectNumber(c.Number)
		return a.runCommand(c)

	default:
		if msg.Type == tea.KeyRunes {
			for _, r := range msg.Runes {
				if r < '0' || r > '9' {
					return a, nil
				}
			}
		}
		var cmd tea.Cmd
		a.dialInput, cmd = a.dialInput.Update(msg)
		return a, cmd
	}
}

// dialTarget is the card the speed dial input currently names.
func (a *App) dialTarget() (model.Command, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(a.dialInput.Value()))
	if err != nil {
		return model.Command{}, false
	}
	return a.store.Get(n)
}

func (a *App) runCommand(c model.Command) (tea.Model, tea.Cmd) {
	params := runner.ExtractParams(c.Command)
	a.paramValues = make(map[string]string)

	if len(params) > 0 {
		a.mode = modeParam
		a.paramNames = params
		a.paramIndex = 0
		a.pendingCmd = &c
		a.paramInput = textinput.New()
		a.paramInput.Placeholder = params[0]
		return a, a.paramInput.Focus()
	}

	return a.executeCommand(c)
}

func (a *App) executeCommand(c model.Command) (tea.Model, tea.Cmd) {
	a.pendingCmd = nil
	final := c
	final.Command = runner.SubstituteParams(c.Command, a.paramValues)

	strategy := a.executor.Execute(final)
	a.lastUsed[c.Number] = time.Now()
	if a.history != nil {
		if err := a.history.RecordRun(c.Number, final.Command, strategy.String()); err != nil {
			a.log.Warn().Err(err).Msg("failed to record run")
		}
	}
	a.status = fmt.Sprintf("Ran #%d %s (%s)", c.Number, c.Title, strategy)

	if a.sortKey == SortRecent {
		a.refreshCommands()
		a.selectNumber(c.Number)
	}
	a.updateDetail()

	if strategy == runner.StrategyEmbedded && a.terminals != nil && a.terminals.TakeFocusRequest() {
		return a, a.attach()
	}
	return a, nil
}

// attach hands the screen to the current terminal session.
func (a *App) attach() tea.Cmd {
	if a.terminals == nil {
		a.err = "Embedded terminal disabled"
		return nil
	}
	s := a.terminals.Current()
	if s == nil {
		a.err = "No terminal session"
		return nil
	}
	return tea.Exec(s.Attach(), func(err error) tea.Msg {
		return terminalDetachedMsg{err: err}
	})
}

func (a *App) submitForm() (tea.Model, tea.Cmd) {
	c, err := a.form.command()
	if err != nil {
		a.err = err.Error()
		return a, nil
	}

	except := 0
	if a.form.editing {
		except = c.Number
	}
	warnings := commandWarnings(c.Command, a.store.HasCommandText(c.Command, except))
	if !a.form.confirm(warnings) {
		return a, nil
	}

	if a.mode == modeAdd {
		if err := a.store.Add(c); err != nil {
			if errors.Is(err, storage.ErrDuplicateNumber) {
				a.err = fmt.Sprintf("Number %d is already used", c.Number)
			} else {
				a.err = err.Error()
			}
			return a, nil
		}
		a.status = "Added!"
	} else {
		if err := a.store.Update(c); err != nil {
			a.err = err.Error()
			return a, nil
		}
		a.status = "Updated!"
	}

	a.form = nil
	a.mode = modeNormal
	a.refreshCommands()
	a.selectNumber(c.Number)
	return a, nil
}

func (a *App) deleteSelected() {
	c, ok := a.selected()
	if !ok {
		return
	}
	if err := a.store.Delete(c.Number); err != nil {
		a.err = err.Error()
		return
	}
	if a.history != nil {
		if err := a.history.Forget(c.Number); err != nil {
			a.log.Warn().Err(err).Msg("failed to forget run history")
		}
	}
	delete(a.lastUsed, c.Number)
	a.status = "Deleted!"
	a.refreshCommands()
}

func (a *App) persist(key string, value any) {
	if err := a.cfg.Set(key, value); err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("failed to save setting")
	}
}

func (a *App) selected() (model.Command, bool) {
	if a.cursor < 0 || a.cursor >= len(a.filtered) {
		return model.Command{}, false
	}
	return a.filtered[a.cursor], true
}

func (a *App) moveCursor(delta int) {
	a.cursor = min(max(a.cursor+delta, 0), max(len(a.filtered)-1, 0))
	a.updateDetail()
}

func (a *App) selectNumber(n int) {
	for i, c := range a.filtered {
		if c.Number == n {
			a.cursor = i
			break
		}
	}
	a.updateDetail()
}

func (a *App) refreshCommands() {
	a.commands = a.store.All()
	SortCommands(a.commands, a.sortKey, a.sortAsc, a.lastUsed)
	a.filterCommands()
}

func (a *App) filterCommands() {
	query := a.searchInput.Value()
	if query == "" {
		a.filtered = a.commands
	} else {
		var targets []string
		for _, c := range a.commands {
			targets = append(targets, strings.Join([]string{c.Title, c.Command, c.Tag, c.Category}, " "))
		}

		matches := fuzzy.Find(query, targets)
		a.filtered = make([]model.Command, len(matches))
		for i, m := range matches {
			a.filtered[i] = a.commands[m.Index]
		}
	}

	if a.cursor >= len(a.filtered) {
		a.cursor = max(0, len(a.filtered)-1)
	}
	a.updateDetail()
}

func (a *App) updateDetail() {
	c, ok := a.selected()
	if !ok {
		a.detail.SetContent(mutedStyle.Render("Nothing selected"))
		return
	}
	a.detail.SetContent(a.renderDetail(c))
	a.detail.GotoTop()
}

func (a *App) renderDetail(c model.Command) string {
	row := func(k, v string) string {
		return detailKeyStyle.Render(k) + v
	}

	lastUsed := "never"
	if t, ok := a.lastUsed[c.Number]; ok {
		lastUsed = humanize.Time(t)
	}
	where := "terminal"
	if c.NoTerminal {
		where = "background (no terminal)"
	}

	lines := []string{
		row("Command", c.Command),
		row("Run mode", c.RunMode.String()),
		row("Runs in", where),
		row("Last used", lastUsed),
	}
	if c.Tag != "" || c.Category != "" {
		lines = append(lines, row("Tag", strings.TrimSpace(c.Tag+"  "+mutedStyle.Render(c.Category))))
	}
	if params := runner.ExtractParams(c.Command); len(params) > 0 {
		lines = append(lines, row("Asks for", strings.Join(params, ", ")))
	}
	if a.store.IsDefault(c) {
		lines = append(lines, row("", mutedStyle.Render("default card")))
	}
	if c.Description != "" {
		lines = append(lines, "", c.Description)
	}
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	header := titleStyle.Render("commando")
	order := "↑"
	if !a.sortAsc {
		order = "↓"
	}
	header += mutedStyle.Render(fmt.Sprintf(" %d commands • sort: %s %s", len(a.commands), a.sortKey, order))
	if a.terminals != nil {
		if n := len(a.terminals.Sessions()); n > 0 {
			header += mutedStyle.Render(fmt.Sprintf(" • %d terminal(s)", n))
		}
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	b.WriteString(a.searchInput.View())
	b.WriteString("\n\n")

	listHeight := (a.height - a.detail.Height - 12) / 2
	if listHeight < 3 {
		listHeight = 3
	}

	if a.form != nil {
		b.WriteString(a.form.view(a.width))
	} else {
		b.WriteString(a.renderList(listHeight))
	}

	switch a.mode {
	case modeDelete:
		if c, ok := a.selected(); ok {
			b.WriteString("\n")
			b.WriteString(warningStyle.Render(fmt.Sprintf("Delete #%d '%s'? (y/n)", c.Number, c.Title)))
			b.WriteString("\n")
		}

	case modeRestore:
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("Replace all commands with the defaults? (y/n)"))
		b.WriteString("\n")

	case modeParam:
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("Enter value for {{%s}}: ", a.paramNames[a.paramIndex])))
		b.WriteString(a.paramInput.View())
		b.WriteString("\n")

	case modeSpeedDial:
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Run #"))
		b.WriteString(a.dialInput.View())
		if c, ok := a.dialTarget(); ok {
			b.WriteString(" " + normalStyle.Render(c.Title) + " " + cmdPreviewStyle.Render(truncate(c.Command, a.width/2)))
		}
		b.WriteString("\n")
	}

	if a.form == nil {
		b.WriteString("\n")
		b.WriteString(detailTitleStyle.Render("DETAILS"))
		b.WriteString("\n")
		b.WriteString(borderStyle.Width(a.width - 4).Render(a.detail.View()))
		b.WriteString("\n")
	}

	if a.err != "" {
		b.WriteString(errorStyle.Render("Error: " + a.err))
		b.WriteString("\n")
	}
	if a.status != "" {
		b.WriteString(successStyle.Render(a.status))
		b.WriteString("\n")
	}

	b.WriteString(a.renderHelp())

	return appStyle.Render(b.String())
}

func (a *App) renderList(height int) string {
	if len(a.filtered) == 0 {
		return mutedStyle.Render("No commands found. Press 'a' to add one.\n")
	}

	var lines []string
	start := 0
	if a.cursor >= height {
		start = a.cursor - height + 1
	}
	end := min(start+height, len(a.filtered))

	for i := start; i < end; i++ {
		c := a.filtered[i]
		prefix := "  "
		style := normalStyle
		if i == a.cursor {
			prefix = "▸ "
			style = selectedStyle
		}

		num := numberStyle.Foreground(cardColor(c.Color)).Render(strconv.Itoa(c.Number))
		name := style.Render(prefix) + num + " " + style.Render(c.Title)
		if c.Tag != "" {
			name += " " + tagStyle.Background(cardColor(c.Color)).Render(c.Tag)
		}
		preview := cmdPreviewStyle.Render("    " + truncate(c.Command, a.width-10))
		lines = append(lines, name, preview)
	}

	return strings.Join(lines, "\n") + "\n"
}

func (a *App) renderHelp() string {
	if a.mode != modeNormal {
		return ""
	}

	keys := []struct{ key, desc string }{
		{"enter", "run"},
		{":", "dial"},
		{"/", "search"},
		{"a", "add"},
		{"e", "edit"},
		{"d", "delete"},
		{"y", "copy"},
		{"s", "sort"},
		{"t", "terminal"},
		{"R/D", "defaults"},
		{"q", "quit"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc))
	}

	return strings.Join(parts, "  ")
}

// truncate shortens s to max terminal cells.
func truncate(s string, max int) string {
	if max < 4 {
		return s
	}
	return runewidth.Truncate(s, max, "...")
}
