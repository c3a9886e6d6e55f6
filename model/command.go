package model

import (
	"encoding/json"
	"errors"
	"strings"
)

type RunMode int

const (
	// RunExecute submits the command text immediately.
	RunExecute RunMode = 1
	// RunTypeOnly leaves the command text at the prompt for the user to edit.
	RunTypeOnly RunMode = 2
)

const (
	DefaultIcon  = "terminal-symbolic"
	DefaultColor = "blue"

	// MaxNumber is the largest number the editors offer.
	MaxNumber = 9999
)

func (m RunMode) String() string {
	switch m {
	case RunTypeOnly:
		return "type"
	default:
		return "execute"
	}
}

// ParseRunMode accepts the numeric form and the names shown in the UI.
func ParseRunMode(s string) (RunMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1", "execute", "exec", "run":
		return RunExecute, nil
	case "2", "type", "type-only", "type_only":
		return RunTypeOnly, nil
	}
	return 0, errors.New("run mode must be 1 (execute) or 2 (type)")
}

type Command struct {
	Number      int     `json:"number" yaml:"number"`
	Title       string  `json:"title" yaml:"title"`
	Command     string  `json:"command" yaml:"command"`
	Icon        string  `json:"icon" yaml:"icon"`
	Color       string  `json:"color" yaml:"color"`
	Tag         string  `json:"tag" yaml:"tag"`
	Category    string  `json:"category" yaml:"category"`
	Description string  `json:"description" yaml:"description"`
	NoTerminal  bool    `json:"no_terminal" yaml:"no_terminal"`
	RunMode     RunMode `json:"run_mode" yaml:"run_mode"`
}

// New returns a command with the presentation defaults filled in.
func New(number int, title, command string) Command {
	return Command{
		Number:  number,
		Title:   title,
		Command: command,
		Icon:    DefaultIcon,
		Color:   DefaultColor,
		RunMode: RunExecute,
	}
}

// UnmarshalJSON applies defaults for fields missing from older records.
func (c *Command) UnmarshalJSON(data []byte) error {
	type plain Command
	p := plain(New(0, "", ""))
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Command(p)
	c.Normalize()
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for exported catalogs.
func (c *Command) UnmarshalYAML(unmarshal func(any) error) error {
	type plain Command
	p := plain(New(0, "", ""))
	if err := unmarshal(&p); err != nil {
		return err
	}
	*c = Command(p)
	c.Normalize()
	return nil
}

// Normalize maps an unknown run mode to RunExecute, so the stored form
// matches what a decode returns.
func (c *Command) Normalize() {
	if c.RunMode != RunExecute && c.RunMode != RunTypeOnly {
		c.RunMode = RunExecute
	}
}

var (
	ErrInvalidNumber = errors.New("number must be a positive integer")
	ErrEmptyTitle    = errors.New("title is required")
	ErrEmptyCommand  = errors.New("command is required")
)

func (c Command) Validate() error {
	if c.Number < 1 {
		return ErrInvalidNumber
	}
	if strings.TrimSpace(c.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(c.Command) == "" {
		return ErrEmptyCommand
	}
	return nil
}
