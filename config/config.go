// Package config stores application settings in a JSON document.
//
// Keys are dotted paths: "terminal.font" reads and writes the "font"
// member of the "terminal" object, creating objects as needed.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const (
	KeyTheme            = "theme"
	KeyLogLevel         = "logging.level"
	KeyExternalTerminal = "terminal.external_terminal"
	KeySortBy           = "main_view.sort_by"
	KeySortAscending    = "main_view.sort_ascending"
)

// defaults is the document written when no config file exists.
const defaults = `{
  "theme": "system",
  "logging": {
    "level": "INFO"
  },
  "terminal": {
    "font": "Monospace 12",
    "scrollback_lines": 10000,
    "cursor_blink": true,
    "cursor_shape": "block",
    "background_color": null,
    "foreground_color": null,
    "palette": null,
    "external_terminal": null,
    "show_in_main_window": false
  },
  "main_view": {
    "layout": "cards",
    "sort_by": "number",
    "sort_ascending": true
  }
}
`

var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

type Config struct {
	fs   afero.Fs
	path string
	doc  []byte
	log  zerolog.Logger
}

// Load reads the config file at path. A missing file is created with the
// defaults. A malformed file is logged and the defaults are used in memory.
func Load(fs afero.Fs, path string, log zerolog.Logger) *Config {
	c := &Config{
		fs:   fs,
		path: path,
		doc:  []byte(defaults),
		log:  log.With().Str("component", "config").Logger(),
	}

	data, err := afero.ReadFile(fs, path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := c.save(); err != nil {
			c.log.Error().Err(err).Str("path", path).Msg("failed to write default config")
		}
	case err != nil:
		c.log.Error().Err(err).Str("path", path).Msg("failed to read config")
	default:
		data = jsonc.ToJSON(data)
		if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
			c.log.Error().Str("path", path).Msg("config is not a JSON object, using defaults")
			break
		}
		c.doc = data
		c.log.Debug().Str("path", path).Msg("loaded configuration")
	}
	return c
}

// Path returns the config file location.
func (c *Config) Path() string { return c.path }

func (c *Config) lookup(key string) gjson.Result {
	if r := gjson.GetBytes(c.doc, key); r.Exists() && r.Type != gjson.Null {
		return r
	}
	return gjson.Get(defaults, key)
}

// Get returns the value at key, the built-in default when the file does
// not set it, or def when neither does.
func (c *Config) Get(key string, def any) any {
	r := c.lookup(key)
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.Value()
}

func (c *Config) GetString(key, def string) string {
	r := c.lookup(key)
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.String()
}

func (c *Config) GetBool(key string, def bool) bool {
	r := c.lookup(key)
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.Bool()
}

func (c *Config) GetInt(key string, def int) int {
	r := c.lookup(key)
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return int(r.Int())
}

// Set stores value at key and writes the file.
func (c *Config) Set(key string, value any) error {
	doc, err := sjson.SetBytes(c.doc, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	c.doc = doc
	if err := c.save(); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("failed to save config")
		return err
	}
	c.log.Debug().Str("key", key).Interface("value", value).Msg("set config")
	return nil
}

// Unset removes key so the built-in default applies again.
func (c *Config) Unset(key string) error {
	doc, err := sjson.DeleteBytes(c.doc, key)
	if err != nil {
		return fmt.Errorf("unset %s: %w", key, err)
	}
	c.doc = doc
	return c.save()
}

// Raw returns the pretty-printed document.
func (c *Config) Raw() []byte {
	return pretty.PrettyOptions(c.doc, prettyOptions)
}

func (c *Config) save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(c.fs, c.path, c.Raw(), 0o644)
}
