// ABOUTME: Leveled logging wrapper around zerolog for hosts and scripts
// ABOUTME: Writes to stderr so stdout stays free for frames and command output

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level constants matching zerolog levels.
const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

var (
	mu     sync.RWMutex
	logger zerolog.Logger
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	logger = newLogger(os.Stderr, LevelInfo)
}

func newLogger(w io.Writer, l zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    true,
	}).Level(l).With().Timestamp().Logger()
}

// SetLevel sets the global log level.
func SetLevel(l zerolog.Level) {
	mu.Lock()
	logger = logger.Level(l)
	mu.Unlock()
}

// GetLevel returns the current log level.
func GetLevel() zerolog.Level {
	mu.RLock()
	defer mu.RUnlock()
	return logger.GetLevel()
}

// SetOutput redirects log output, keeping the current level.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = newLogger(w, logger.GetLevel())
	mu.Unlock()
}

// SetJSON switches to raw JSON lines on w.
func SetJSON(w io.Writer) {
	mu.Lock()
	logger = zerolog.New(w).Level(logger.GetLevel()).With().Timestamp().Logger()
	mu.Unlock()
}

// ParseLevel accepts debug, info, warn or error (case-insensitive).
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger returns the underlying logger for structured fields.
func Logger() *zerolog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	return &l
}

// Debug logs a debug message if the level allows it.
func Debug(format string, args ...any) {
	Logger().Debug().Msgf(format, args...)
}

// Info logs an info message if the level allows it.
func Info(format string, args ...any) {
	Logger().Info().Msgf(format, args...)
}

// Warn logs a warning message if the level allows it.
func Warn(format string, args ...any) {
	Logger().Warn().Msgf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...any) {
	Logger().Error().Msgf(format, args...)
}
