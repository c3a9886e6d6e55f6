// Package db keeps the run history in sqlite.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded launch of a command card.
type Run struct {
	ID       int64
	Number   int
	Command  string
	Strategy string
	RanAt    time.Time
}

type History struct {
	conn *sql.DB
}

// New opens (or creates) the history database at path.
func New(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	h := &History{conn: conn}
	if err := h.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}

	return h, nil
}

func (h *History) migrate() error {
	_, err := h.conn.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			number INTEGER NOT NULL,
			command TEXT NOT NULL,
			strategy TEXT NOT NULL DEFAULT '',
			ran_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_number ON runs(number);
		CREATE INDEX IF NOT EXISTS idx_runs_ran_at ON runs(ran_at);
	`)
	return err
}

func (h *History) Close() error {
	return h.conn.Close()
}

// RecordRun stores a launch of card number with the final command text.
func (h *History) RecordRun(number int, command, strategy string) error {
	return h.recordAt(number, command, strategy, time.Now())
}

func (h *History) recordAt(number int, command, strategy string, at time.Time) error {
	_, err := h.conn.Exec(
		`INSERT INTO runs (number, command, strategy, ran_at) VALUES (?, ?, ?, ?)`,
		number, command, strategy, at.UTC(),
	)
	return err
}

// LastUsed maps each card number to its most recent run.
func (h *History) LastUsed() (map[int]time.Time, error) {
	rows, err := h.conn.Query(`
		SELECT number, ran_at
		FROM runs
		ORDER BY ran_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	last := make(map[int]time.Time)
	for rows.Next() {
		var n int
		var at time.Time
		if err := rows.Scan(&n, &at); err != nil {
			return nil, err
		}
		last[n] = at
	}
	return last, rows.Err()
}

// Recent returns up to limit runs, newest first.
func (h *History) Recent(limit int) ([]Run, error) {
	rows, err := h.conn.Query(`
		SELECT id, number, command, strategy, ran_at
		FROM runs
		ORDER BY ran_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Number, &r.Command, &r.Strategy, &r.RanAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Forget drops every run of card number, e.g. after the card is deleted.
func (h *History) Forget(number int) error {
	_, err := h.conn.Exec(`DELETE FROM runs WHERE number = ?`, number)
	return err
}
