package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.Mutex
	global = zerolog.Nop()
	closer io.Closer
)

// ParseLevel maps "debug", "info", "warn" and "error" to zerolog levels,
// defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Init configures the process logger. file may be empty. console adds a
// human-readable writer on stderr; the TUI runs without it so the screen
// is not disturbed.
func Init(level, file string, console bool) error {
	var writers []io.Writer
	var fc io.Closer
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		writers = append(writers, f)
		fc = f
	}
	if console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	var l zerolog.Logger
	if len(writers) == 0 {
		l = zerolog.Nop()
	} else {
		l = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger().Level(ParseLevel(level))
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	global, closer = l, fc
	return nil
}

// Get returns the process logger; it discards everything until Init is called.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return global
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	global = zerolog.Nop()
	return err
}
