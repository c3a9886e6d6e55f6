package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewAppliesDefaults(t *testing.T) {
	c := New(1, "Test", "cmd")
	assert.Equal(t, DefaultIcon, c.Icon)
	assert.Equal(t, DefaultColor, c.Color)
	assert.Equal(t, RunExecute, c.RunMode)
	assert.False(t, c.NoTerminal)
	assert.Empty(t, c.Tag)
	assert.Empty(t, c.Category)
	assert.Empty(t, c.Description)
}

func TestRoundTrip(t *testing.T) {
	cases := []Command{
		New(1, "Test", "cmd"),
		{
			Number:      7,
			Title:       "Ping",
			Command:     `ping -c 4 "$HOST"`,
			Icon:        "network-symbolic",
			Color:       "purple",
			Tag:         "net",
			Category:    "Network",
			Description: "ping a host",
			NoTerminal:  true,
			RunMode:     RunTypeOnly,
		},
		{Number: 3, Title: "Bare", Command: "ls", RunMode: RunExecute},
	}
	for _, want := range cases {
		data, err := json.Marshal(want)
		require.NoError(t, err)

		var got Command
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, want, got)
	}
}

func TestUnmarshalOlderRecord(t *testing.T) {
	var c Command
	require.NoError(t, json.Unmarshal([]byte(`{"number": 1, "title": "Test", "command": "cmd"}`), &c))

	assert.Equal(t, 1, c.Number)
	assert.Equal(t, DefaultIcon, c.Icon)
	assert.Equal(t, DefaultColor, c.Color)
	assert.False(t, c.NoTerminal)
	assert.Equal(t, RunExecute, c.RunMode)
}

func TestUnmarshalUnknownRunMode(t *testing.T) {
	var c Command
	require.NoError(t, json.Unmarshal([]byte(`{"number": 1, "title": "T", "command": "c", "run_mode": 9}`), &c))
	assert.Equal(t, RunExecute, c.RunMode)
}

func TestPersistedFieldNames(t *testing.T) {
	data, err := json.Marshal(New(4, "T", "c"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"number", "title", "command", "icon", "color", "tag", "category", "description", "no_terminal", "run_mode"} {
		assert.Contains(t, raw, key)
	}
	assert.Len(t, raw, 10)
}

func TestYAMLDefaults(t *testing.T) {
	var c Command
	require.NoError(t, yaml.Unmarshal([]byte("number: 2\ntitle: Up\ncommand: uptime\n"), &c))
	assert.Equal(t, New(2, "Up", "uptime"), c)
}

func TestParseRunMode(t *testing.T) {
	tests := []struct {
		in      string
		want    RunMode
		wantErr bool
	}{
		{"1", RunExecute, false},
		{"", RunExecute, false},
		{"execute", RunExecute, false},
		{"2", RunTypeOnly, false},
		{"Type", RunTypeOnly, false},
		{"3", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRunMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, New(1, "T", "c").Validate())
	assert.ErrorIs(t, New(0, "T", "c").Validate(), ErrInvalidNumber)
	assert.ErrorIs(t, New(1, " ", "c").Validate(), ErrEmptyTitle)
	assert.ErrorIs(t, New(1, "T", "").Validate(), ErrEmptyCommand)
}

func TestNormalize(t *testing.T) {
	c := New(1, "T", "c")
	c.RunMode = 0
	c.Normalize()
	assert.Equal(t, RunExecute, c.RunMode)

	c.RunMode = RunTypeOnly
	c.Normalize()
	assert.Equal(t, RunTypeOnly, c.RunMode)
}
