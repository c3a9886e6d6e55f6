// Package storage keeps the command cards in a JSON file.
//
// The whole collection is rewritten on every mutation. Read and write
// failures are logged and never returned to callers: a broken file must
// not take the UI down with it.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"commando/model"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

var (
	ErrDuplicateNumber = errors.New("command number already exists")
	ErrNotFound        = errors.New("command not found")
)

// Store is not safe for concurrent use.
type Store struct {
	fs       afero.Fs
	path     string
	catalog  []model.Command
	commands []model.Command
	log      zerolog.Logger
}

// New loads the store at path. A missing file is seeded from catalog; an
// unreadable one is backed up, treated as empty and reseeded.
func New(fs afero.Fs, path string, catalog []model.Command, log zerolog.Logger) *Store {
	s := &Store{
		fs:      fs,
		path:    path,
		catalog: cloneAll(catalog),
		log:     log.With().Str("component", "storage").Logger(),
	}
	s.load()
	return s
}

func (s *Store) Path() string { return s.path }

func (s *Store) load() {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Info().Str("path", s.path).Int("count", len(s.catalog)).Msg("no commands file, seeding defaults")
		s.commands = cloneAll(s.catalog)
		s.save()
		return
	}
	if err == nil {
		var cmds []model.Command
		if err = json.Unmarshal(data, &cmds); err == nil {
			s.commands = s.valid(cmds)
			s.log.Info().Int("count", len(cmds)).Msg("loaded commands from storage")
			return
		}
	}

	s.log.Error().Err(err).Str("path", s.path).Msg("failed to load commands")
	if len(data) > 0 {
		backup := s.path + ".bak"
		if werr := afero.WriteFile(s.fs, backup, data, 0o644); werr != nil {
			s.log.Error().Err(werr).Str("path", backup).Msg("failed to back up unreadable commands file")
		} else {
			s.log.Warn().Str("path", backup).Msg("unreadable commands file backed up")
		}
	}
	s.commands = cloneAll(s.catalog)
	s.save()
}

// Reload re-reads the file, e.g. after another process changed it.
// Unlike New, a missing or unreadable file leaves the current state alone.
func (s *Store) Reload() bool {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		s.log.Warn().Err(err).Msg("reload skipped")
		return false
	}
	var cmds []model.Command
	if err := json.Unmarshal(data, &cmds); err != nil {
		s.log.Warn().Err(err).Msg("reload skipped")
		return false
	}
	s.commands = s.valid(cmds)
	s.log.Debug().Int("count", len(s.commands)).Msg("reloaded commands")
	return true
}

// valid drops entries that cannot be addressed, such as a null element
// decoding to number 0.
func (s *Store) valid(cmds []model.Command) []model.Command {
	out := cmds[:0]
	for _, c := range cmds {
		if c.Number < 1 {
			s.log.Warn().Int("number", c.Number).Str("title", c.Title).Msg("skipping command with invalid number")
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *Store) save() {
	data, err := json.MarshalIndent(s.commands, "", "  ")
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode commands")
		return
	}
	if err := writeFileAtomic(s.fs, s.path, append(data, '\n')); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("failed to save commands")
		return
	}
	s.log.Debug().Int("count", len(s.commands)).Msg("saved commands to storage")
}

func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := afero.TempFile(fs, dir, "commands-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmp.Name())
		return err
	}
	if err := fs.Rename(tmp.Name(), path); err != nil {
		_ = fs.Remove(tmp.Name())
		return err
	}
	return nil
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []model.Command {
	return cloneAll(s.commands)
}

func (s *Store) Len() int { return len(s.commands) }

func (s *Store) Get(number int) (model.Command, bool) {
	if i := s.index(number); i >= 0 {
		return s.commands[i], true
	}
	return model.Command{}, false
}

func (s *Store) index(number int) int {
	for i, c := range s.commands {
		if c.Number == number {
			return i
		}
	}
	return -1
}

// Add appends c. It never overwrites: a colliding number is rejected.
func (s *Store) Add(c model.Command) error {
	if s.index(c.Number) >= 0 {
		s.log.Warn().Int("number", c.Number).Msg("command number already exists")
		return ErrDuplicateNumber
	}
	c.Normalize()
	s.commands = append(s.commands, c)
	s.save()
	s.log.Info().Int("number", c.Number).Str("title", c.Title).Msg("added command")
	return nil
}

// Update replaces the command with the same number.
func (s *Store) Update(c model.Command) error {
	i := s.index(c.Number)
	if i < 0 {
		s.log.Warn().Int("number", c.Number).Msg("command not found for update")
		return ErrNotFound
	}
	c.Normalize()
	s.commands[i] = c
	s.save()
	s.log.Info().Int("number", c.Number).Str("title", c.Title).Msg("updated command")
	return nil
}

func (s *Store) Delete(number int) error {
	i := s.index(number)
	if i < 0 {
		s.log.Warn().Int("number", number).Msg("command not found for deletion")
		return ErrNotFound
	}
	deleted := s.commands[i]
	s.commands = append(s.commands[:i], s.commands[i+1:]...)
	s.save()
	s.log.Info().Int("number", number).Str("title", deleted.Title).Msg("deleted command")
	return nil
}

// NextNumber is one past the highest number in use, not the first gap.
func (s *Store) NextNumber() int {
	next := 1
	for _, c := range s.commands {
		if c.Number >= next {
			next = c.Number + 1
		}
	}
	return next
}

// RestoreDefaults throws the collection away and replaces it with the catalog.
func (s *Store) RestoreDefaults() {
	s.commands = cloneAll(s.catalog)
	s.save()
	s.log.Info().Int("count", len(s.commands)).Msg("restored default commands")
}

// AddDefaults inserts the catalog entries whose numbers are free and
// returns how many were added.
func (s *Store) AddDefaults() int {
	added := 0
	for _, c := range s.catalog {
		if s.index(c.Number) >= 0 {
			continue
		}
		s.commands = append(s.commands, c)
		added++
	}
	if added > 0 {
		s.save()
	}
	s.log.Info().Int("added", added).Msg("added missing default commands")
	return added
}

// IsDefault reports whether c still matches the catalog entry with the
// same number. Only title, command, icon, color and category are compared,
// so an edited default stops counting as one.
func (s *Store) IsDefault(c model.Command) bool {
	for _, d := range s.catalog {
		if d.Number != c.Number {
			continue
		}
		return d.Title == c.Title &&
			d.Command == c.Command &&
			d.Icon == c.Icon &&
			d.Color == c.Color &&
			d.Category == c.Category
	}
	return false
}

// HasCommandText checks if another card already runs the same text.
func (s *Store) HasCommandText(text string, exceptNumber int) bool {
	normalized := strings.TrimSpace(text)
	for _, c := range s.commands {
		if c.Number != exceptNumber && strings.TrimSpace(c.Command) == normalized {
			return true
		}
	}
	return false
}

func cloneAll(cmds []model.Command) []model.Command {
	if cmds == nil {
		return []model.Command{}
	}
	out := make([]model.Command, len(cmds))
	copy(out, cmds)
	return out
}
