// Package logging sets up zerolog for the application and its subcommands.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level for the console writer. The log file
	// always receives debug and above.
	Level Level
	// Console is where human-readable output goes. Nil disables it,
	// which is what the TUI wants.
	Console io.Writer
	// File is the log file path. Empty disables file logging.
	File string
}

// FilePath returns the log file location under the cache directory.
func FilePath(cacheDir string) string {
	return filepath.Join(cacheDir, "logs", "commando.log")
}

// Init builds a logger from cfg. The returned closer releases the log file.
func Init(cfg Config) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if cfg.Console != nil {
		console := zerolog.ConsoleWriter{Out: cfg.Console, TimeFormat: time.Kitchen}
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: console},
			Level:  cfg.Level,
		})
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), closer, err
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		writers = append(writers, f)
		closer = f
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(DebugLevel).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

// ParseLevel parses a log level name (case-insensitive).
// Unrecognized names map to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DebugLevel
	case "INFO":
		return InfoLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	case "CRITICAL", "FATAL":
		return FatalLevel
	default:
		return InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
