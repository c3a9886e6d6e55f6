package runner

import (
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Emulator identifies an external terminal program.
type Emulator int

const (
	EmulatorGeneric Emulator = iota
	EmulatorGnomeTerminal
	EmulatorXterm
	EmulatorKonsole
	EmulatorAlacritty
	EmulatorKitty
)

func (e Emulator) String() string {
	switch e {
	case EmulatorGnomeTerminal:
		return "gnome-terminal"
	case EmulatorXterm:
		return "xterm"
	case EmulatorKonsole:
		return "konsole"
	case EmulatorAlacritty:
		return "alacritty"
	case EmulatorKitty:
		return "kitty"
	default:
		return "generic"
	}
}

// emulatorNames is matched in order against the program's base name.
var emulatorNames = []struct {
	name string
	emu  Emulator
}{
	{"gnome-terminal", EmulatorGnomeTerminal},
	{"konsole", EmulatorKonsole},
	{"alacritty", EmulatorAlacritty},
	{"kitty", EmulatorKitty},
	{"xterm", EmulatorXterm},
}

// runFlags is the argument that separates the terminal's own flags from
// the program it should run. Kitty takes the program directly.
var runFlags = map[Emulator][]string{
	EmulatorGnomeTerminal: {"--"},
	EmulatorXterm:         {"-e"},
	EmulatorKonsole:       {"-e"},
	EmulatorAlacritty:     {"-e"},
	EmulatorKitty:         nil,
	EmulatorGeneric:       {"-e"},
}

// knownTerminals are tried on PATH when nothing is configured.
var knownTerminals = []string{
	"x-terminal-emulator",
	"gnome-terminal",
	"konsole",
	"kitty",
	"alacritty",
	"xterm",
}

// ClassifyEmulator maps a configured program ("kitty", "/usr/bin/xterm",
// "gnome-terminal --maximize") to an Emulator.
func ClassifyEmulator(program string) Emulator {
	fields := strings.Fields(program)
	if len(fields) == 0 {
		return EmulatorGeneric
	}
	base := filepath.Base(fields[0])
	for _, n := range emulatorNames {
		if strings.Contains(base, n.name) {
			return n.emu
		}
	}
	return EmulatorGeneric
}

// TerminalArgv builds the argv that opens program running script in bash
// and leaves an interactive shell behind.
func TerminalArgv(program, script string) []string {
	argv := strings.Fields(program)
	argv = append(argv, runFlags[ClassifyEmulator(program)]...)
	return append(argv, "bash", "-c", script)
}

// keepOpenScript runs text and then replaces itself with an interactive
// bash. A newline separates the two so a trailing comment in text cannot
// swallow the exec.
func keepOpenScript(text string) string {
	return text + "\nexec bash"
}

// prefillScript puts text in the readline buffer so the user can edit it
// before pressing enter.
func prefillScript(text string) (string, error) {
	quoted, err := syntax.Quote(text, syntax.LangBash)
	if err != nil {
		return "", err
	}
	return `read -r -e -i ` + quoted + ` -p '$ ' line && eval "$line"` + "\nexec bash", nil
}
