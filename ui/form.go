package ui

import (
	"fmt"
	"strconv"
	"strings"

	"commando/model"
	"commando/runner"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldNumber = iota
	fieldTitle
	fieldCommand
	fieldDescription
	fieldTag
	fieldCategory
	fieldIcon
	fieldColor
	numInputs
)

const (
	focusNoTerminal = numInputs + iota
	focusRunMode
	numFocus
)

var fieldLabels = [numInputs]string{
	"Number", "Title", "Command", "Description", "Tag", "Category", "Icon", "Color",
}

var errNumberRange = fmt.Errorf("number must be between 1 and %d", model.MaxNumber)

// form edits every field of a card. The number is fixed when editing.
type form struct {
	editing    bool
	inputs     []textinput.Model
	noTerminal bool
	runMode    model.RunMode
	focus      int

	// warned holds the warnings already shown for the current values; a
	// second submit with the same warnings saves anyway.
	warned []string
}

func newForm(c *model.Command, nextNumber int) *form {
	f := &form{inputs: make([]textinput.Model, numInputs), runMode: model.RunExecute}

	placeholders := [numInputs]string{
		"1", "e.g. Disk usage", "e.g. df -h (use {{param}} for values asked at run time)",
		"optional", "optional", "optional", model.DefaultIcon, model.DefaultColor,
	}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		f.inputs[i] = in
	}
	f.inputs[fieldNumber].CharLimit = 4

	if c != nil {
		f.editing = true
		f.inputs[fieldNumber].SetValue(strconv.Itoa(c.Number))
		f.inputs[fieldTitle].SetValue(c.Title)
		f.inputs[fieldCommand].SetValue(c.Command)
		f.inputs[fieldDescription].SetValue(c.Description)
		f.inputs[fieldTag].SetValue(c.Tag)
		f.inputs[fieldCategory].SetValue(c.Category)
		f.inputs[fieldIcon].SetValue(c.Icon)
		f.inputs[fieldColor].SetValue(c.Color)
		f.noTerminal = c.NoTerminal
		f.runMode = c.RunMode
		f.focus = fieldTitle
	} else {
		f.inputs[fieldNumber].SetValue(strconv.Itoa(nextNumber))
		f.focus = fieldTitle
	}
	f.inputs[f.focus].Focus()
	return f
}

func (f *form) move(delta int) tea.Cmd {
	for {
		f.focus = (f.focus + delta + numFocus) % numFocus
		if !(f.editing && f.focus == fieldNumber) {
			break
		}
	}
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *form) update(msg tea.KeyMsg) tea.Cmd {
	switch f.focus {
	case focusNoTerminal:
		if msg.String() == " " || msg.String() == "x" {
			f.noTerminal = !f.noTerminal
		}
		return nil
	case focusRunMode:
		if msg.String() == " " || msg.String() == "x" {
			if f.runMode == model.RunTypeOnly {
				f.runMode = model.RunExecute
			} else {
				f.runMode = model.RunTypeOnly
			}
		}
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.warned = nil
	return cmd
}

func (f *form) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// command builds and validates the card described by the form.
func (f *form) command() (model.Command, error) {
	n, err := strconv.Atoi(f.value(fieldNumber))
	if err != nil || n < 1 || n > model.MaxNumber {
		return model.Command{}, errNumberRange
	}
	c := model.New(n, f.value(fieldTitle), f.value(fieldCommand))
	c.Description = f.value(fieldDescription)
	c.Tag = f.value(fieldTag)
	c.Category = f.value(fieldCategory)
	if v := f.value(fieldIcon); v != "" {
		c.Icon = v
	}
	if v := f.value(fieldColor); v != "" {
		c.Color = v
	}
	c.NoTerminal = f.noTerminal
	c.RunMode = f.runMode
	if err := c.Validate(); err != nil {
		return model.Command{}, err
	}
	return c, nil
}

// commandWarnings lists problems that do not block saving.
func commandWarnings(text string, duplicate bool) []string {
	var warnings []string
	if err := runner.CheckSyntax(text); err != nil {
		warnings = append(warnings, "shell syntax: "+err.Error())
	}
	if duplicate {
		warnings = append(warnings, "another card already runs this command")
	}
	return warnings
}

// confirm records warnings and reports whether they were already shown
// for the current values.
func (f *form) confirm(warnings []string) bool {
	if len(warnings) == 0 {
		return true
	}
	if strings.Join(warnings, "\n") == strings.Join(f.warned, "\n") {
		return true
	}
	f.warned = warnings
	return false
}

func (f *form) view(width int) string {
	var b strings.Builder

	title := "Add Command"
	if f.editing {
		title = "Edit Command"
	}
	b.WriteString(labelStyle.Render(title))
	b.WriteString("\n\n")

	inputWidth := max(20, width-22)
	for i, in := range f.inputs {
		style := inputStyle
		if i == f.focus {
			style = focusedInputStyle
		}
		view := in.View()
		if i == fieldNumber && f.editing {
			view = mutedStyle.Render(in.Value() + " (fixed)")
		}
		b.WriteString(fieldLabelStyle.Render(fieldLabels[i]))
		b.WriteString(style.Width(inputWidth).Render(view))
		b.WriteString("\n")
	}

	b.WriteString(f.toggle(focusNoTerminal, "No terminal", f.noTerminal))
	b.WriteString(f.toggle(focusRunMode, "Type only", f.runMode == model.RunTypeOnly))

	for _, w := range f.warned {
		b.WriteString(warningStyle.Render("! " + w))
		b.WriteString("\n")
	}
	if len(f.warned) > 0 {
		b.WriteString(mutedStyle.Render("press enter again to save anyway"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • space: toggle • enter: save • esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

func (f *form) toggle(focus int, label string, on bool) string {
	box := "[ ]"
	if on {
		box = "[x]"
	}
	line := fieldLabelStyle.Render(label) + box
	if f.focus == focus {
		line = fieldLabelStyle.Render(label) + selectedStyle.Render(box)
	}
	return line + "\n"
}
