// Package logger builds the slog loggers used across figsearch.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type settings struct {
	level  slog.Level
	format Format
	source bool
	writer io.Writer
}

// New returns a logger for opts. Without options it writes Info and above as
// text to os.Stdout.
func New(opts ...Option) *slog.Logger {
	s := &settings{
		level:  slog.LevelInfo,
		format: FormatText,
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.writer == nil {
		s.writer = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: s.level, AddSource: s.source}

	switch s.format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(s.writer, handlerOpts))
	case FormatPretty:
		level := charmlog.InfoLevel
		if s.level <= slog.LevelDebug {
			level = charmlog.DebugLevel
		}
		return slog.New(charmlog.NewWithOptions(s.writer, charmlog.Options{
			ReportTimestamp: true,
			ReportCaller:    s.source,
			Level:           level,
		}))
	default:
		return slog.New(slog.NewTextHandler(s.writer, handlerOpts))
	}
}

// Nop returns a logger that drops every record.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
