// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the dialog.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// DIALOG
	// ==========================================================================

	DialogBox   lipgloss.Style
	DialogTitle lipgloss.Style
	Banner      lipgloss.Style

	// ==========================================================================
	// FORM FIELDS
	// ==========================================================================

	Label        lipgloss.Style
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	InputInvalid lipgloss.Style
	FieldError   lipgloss.Style

	// ==========================================================================
	// BUTTONS
	// ==========================================================================

	Button         lipgloss.Style
	ButtonActive   lipgloss.Style
	ButtonDisabled lipgloss.Style

	// ==========================================================================
	// PROGRESS & HINTS
	// ==========================================================================

	Progress lipgloss.Style
	Hint     lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.DialogBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(1, 2)

	t.DialogTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Banner = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	input := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)

	t.Input = input.BorderForeground(InputBorder)
	t.InputFocused = input.BorderForeground(Indigo)
	t.InputInvalid = input.BorderForeground(RoseBorder)

	t.FieldError = lipgloss.NewStyle().
		Foreground(Rose)

	t.Button = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 2).
		MarginRight(1)

	t.ButtonActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo).
		Bold(true).
		Padding(0, 2).
		MarginRight(1)

	t.ButtonDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 2).
		MarginRight(1)

	t.Progress = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
}
