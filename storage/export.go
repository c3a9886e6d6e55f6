package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"commando/model"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
}

// Export writes the whole collection to w.
func (s *Store) Export(w io.Writer, format Format) error {
	cmds := s.All()
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cmds); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cmds)
	}
}

// ImportResult reports what Import did.
type ImportResult struct {
	Added   []int
	Skipped []int
}

// Import adds every command from r whose number is free. Colliding and
// invalid entries are skipped, never overwritten.
func (s *Store) Import(r io.Reader, format Format) (ImportResult, error) {
	var cmds []model.Command
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&cmds)
	default:
		err = json.NewDecoder(r).Decode(&cmds)
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("decode %s: %w", format, err)
	}

	var res ImportResult
	for _, c := range cmds {
		if c.Validate() != nil || s.Add(c) != nil {
			res.Skipped = append(res.Skipped, c.Number)
			continue
		}
		res.Added = append(res.Added, c.Number)
	}
	return res, nil
}
