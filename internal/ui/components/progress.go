// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/pwchange-tui/internal/ui/styles"
)

// =============================================================================
// PROGRESS INDICATOR
// =============================================================================

// ProgressLabel is shown next to the spinner while a request is in flight.
const ProgressLabel = "送信しています…"

// Progress is a loading indicator driven by a single boolean.
// It renders nothing while idle.
type Progress struct {
	spinner    spinner.Model
	theme      *styles.Theme
	label      string
	processing bool
}

// NewProgress creates an idle progress indicator. With ascii set, the
// spinner uses line frames that render on any terminal.
func NewProgress(theme *styles.Theme, ascii bool) *Progress {
	s := spinner.New()
	if ascii {
		s.Spinner = spinner.Spinner{
			Frames: []string{"|", "/", "-", "\\"},
			FPS:    time.Second / 10,
		}
	} else {
		s.Spinner = spinner.MiniDot
	}
	if theme != nil {
		s.Style = theme.Progress
	}

	return &Progress{
		spinner: s,
		theme:   theme,
		label:   ProgressLabel,
	}
}

// SetProcessing turns the indicator on or off. Turning it on returns the
// first spinner tick.
func (p *Progress) SetProcessing(on bool) tea.Cmd {
	wasOn := p.processing
	p.processing = on
	if on && !wasOn {
		return p.spinner.Tick
	}
	return nil
}

// Processing reports whether the indicator is on.
func (p *Progress) Processing() bool {
	return p.processing
}

// Update advances the spinner. Ticks received while idle are dropped, which
// stops the animation loop.
func (p *Progress) Update(msg tea.Msg) tea.Cmd {
	if !p.processing {
		return nil
	}
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return nil
	}

	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(tick)
	return cmd
}

// View renders the spinner and its label.
func (p *Progress) View() string {
	if !p.processing {
		return ""
	}
	label := p.label
	if p.theme != nil {
		label = p.theme.Progress.Render(label)
	}
	return p.spinner.View() + " " + label
}
