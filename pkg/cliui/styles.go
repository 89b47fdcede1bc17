// Package cliui holds the terminal helpers shared by figsearch commands:
// colored marks, a spinner for long steps, aligned key/value lines and
// markdown rendering.
package cliui

import "charm.land/lipgloss/v2"

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

var (
	SuccessMark = fg("82").Render("✓")
	FailMark    = fg("196").Render("✗")
	WarnMark    = fg("214").Render("!")

	HeaderStyle = fg("86").Bold(true)
	ScoreStyle  = fg("220").Bold(true)
	LabelStyle  = fg("245")
	StepStyle   = LabelStyle
	ValueStyle  = fg("252")
)

// Mark is SuccessMark for a nil error and FailMark otherwise.
func Mark(err error) string {
	if err == nil {
		return SuccessMark
	}
	return FailMark
}
