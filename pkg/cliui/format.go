package cliui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
)

// FormatDuration prints whole milliseconds under a second, tenths of a
// second under a minute, and whole seconds beyond.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

// FormatScore renders a fused or channel score with four decimals.
func FormatScore(s float64) string {
	return ScoreStyle.Render(fmt.Sprintf("%.4f", s))
}

// KeyValue renders an indented line with the label padded to a fixed column.
func KeyValue(label, value string) string {
	return "  " + LabelStyle.Render(fmt.Sprintf("%-12s", label+":")) + " " + ValueStyle.Render(value)
}

// RenderMarkdown renders content for the terminal at 80 columns. When
// rendering fails the raw content comes back with the error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return content, err
	}
	out, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return out, nil
}
