// Package logging builds the leveled diagnostic logger. Diagnostics go to
// stderr so they never mix with command output.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Options holds configuration for the logger.
type Options struct {
	Level  string
	Format string
	Prefix string
}

// DefaultOptions logs warnings and above as text. Callers override the
// level and format from config.
func DefaultOptions() Options {
	return Options{
		Level:  "warn",
		Format: "text",
		Prefix: "todo",
	}
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:     ParseLevel(opts.Level),
		Formatter: ParseFormatter(opts.Format),
		Prefix:    opts.Prefix,
	})
}

// ParseLevel maps a level name to a log.Level. Unknown names mean info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter maps json and logfmt to their formatters; anything else is text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
