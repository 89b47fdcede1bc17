package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format selects the handler New builds.
type Format string

const (
	// FormatText is slog's key=value text handler.
	FormatText Format = "text"

	// FormatPretty is the colored charmbracelet/log handler for terminals.
	FormatPretty Format = "pretty"

	// FormatJSON is slog's JSON handler, one object per line.
	FormatJSON Format = "json"
)

// ParseFormat parses a --log-format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatPretty, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want text, pretty or json)", s)
	}
}

// Option configures New.
type Option func(*settings)

// WithDebug lowers the level to Debug.
func WithDebug(debug bool) Option {
	return func(s *settings) {
		s.level = slog.LevelInfo
		if debug {
			s.level = slog.LevelDebug
		}
	}
}

// WithFormat picks the handler. The default is FormatText.
func WithFormat(f Format) Option {
	return func(s *settings) {
		s.format = f
	}
}

// WithPretty is WithFormat(FormatPretty) when pretty is true and a no-op
// otherwise.
func WithPretty(pretty bool) Option {
	return func(s *settings) {
		if pretty {
			s.format = FormatPretty
		}
	}
}

// WithWriter sets the destination. The default is os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		s.writer = w
	}
}

// WithSource adds the calling file and line to every record.
func WithSource(source bool) Option {
	return func(s *settings) {
		s.source = source
	}
}
