package cli

import (
	"fmt"
	"io"
	"strings"

	"commando/model"

	"github.com/fatih/color"
)

var (
	numberColor  = color.New(color.FgCyan, color.Bold)
	titleColor   = color.New(color.Bold)
	commandColor = color.New(color.FgHiBlack)
	keyColor     = color.New(color.FgMagenta)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successColor.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnColor.Sprintf("warning: "+format, args...))
}

func printCommandRow(w io.Writer, c model.Command, width int) {
	title := c.Title
	if c.Tag != "" {
		title += " [" + c.Tag + "]"
	}
	fmt.Fprintf(w, "%s  %s  %s\n",
		numberColor.Sprintf("%4d", c.Number),
		titleColor.Sprintf("%-*s", width, title),
		commandColor.Sprint(c.Command))
}

func printField(w io.Writer, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%s %s\n", keyColor.Sprintf("%-12s", key+":"), value)
}

func printCommand(w io.Writer, c model.Command) {
	fmt.Fprintf(w, "%s %s\n", numberColor.Sprintf("#%d", c.Number), titleColor.Sprint(c.Title))
	printField(w, "Command", c.Command)
	printField(w, "Description", c.Description)
	printField(w, "Tag", c.Tag)
	printField(w, "Category", c.Category)
	printField(w, "Icon", c.Icon)
	printField(w, "Color", c.Color)
	printField(w, "Run mode", c.RunMode.String())
	if c.NoTerminal {
		printField(w, "Terminal", "none (runs in background)")
	}
}

func titleWidth(cmds []model.Command) int {
	width := 0
	for _, c := range cmds {
		n := len(c.Title)
		if c.Tag != "" {
			n += len(c.Tag) + 3
		}
		width = max(width, n)
	}
	return min(width, 40)
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
