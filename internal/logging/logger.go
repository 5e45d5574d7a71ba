package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is the global logger instance. It writes to stderr until Init
// replaces it, so packages can log from tests without setup.
var Logger = newLogger(os.Stderr, log.InfoLevel)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
}

// Init points the global logger at w with the given level name
// ("debug", "info", "warn", "error"). Unknown names fall back to info.
func Init(level string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	Logger = newLogger(w, ParseLevel(level))
}

// ParseLevel maps a level name to a log.Level.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) { Logger.Info(msg, keyvals...) }

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) { Logger.Debug(msg, keyvals...) }

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) { Logger.Warn(msg, keyvals...) }

// Error logs an error message
func Error(msg string, keyvals ...interface{}) { Logger.Error(msg, keyvals...) }

// WithPrefix returns a logger with a prefix
func WithPrefix(prefix string) *log.Logger {
	return Logger.WithPrefix(prefix)
}
