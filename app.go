// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/pwchange-tui/internal/auth"
	"github.com/jeranaias/pwchange-tui/internal/cli"
	"github.com/jeranaias/pwchange-tui/internal/config"
	"github.com/jeranaias/pwchange-tui/internal/form"
	"github.com/jeranaias/pwchange-tui/internal/ui/components"
	"github.com/jeranaias/pwchange-tui/internal/ui/styles"
)

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// outcome is how the dialog ended.
type outcome int

const (
	outcomeNone outcome = iota
	outcomeChanged
	outcomeCanceled
	outcomeClosed
)

func (o outcome) String() string {
	switch o {
	case outcomeChanged:
		return "changed"
	case outcomeCanceled:
		return "canceled"
	case outcomeClosed:
		return "closed"
	default:
		return "none"
	}
}

// appModel hosts the password dialog and quits once it closes.
type appModel struct {
	dialog  *components.PasswordDialog
	outcome outcome

	width    int
	height   int
	quitting bool

	logger zerolog.Logger
}

func newAppModel(ctx context.Context, theme *styles.Theme, client auth.Doer, cfg *config.Config, logger zerolog.Logger) *appModel {
	m := &appModel{logger: logger}

	opts := []components.DialogOption{
		components.WithContext(ctx),
		components.WithLogger(logger),
		components.WithASCIISpinner(cfg.UI.ASCIISpinner),
	}
	if cfg.UI.ValidateOnChange {
		opts = append(opts, components.WithMode(form.ValidateOnChange))
	}
	if cfg.UI.Prefill {
		opts = append(opts, components.WithInitialValues(form.SampleValues))
	}

	m.dialog = components.NewPasswordDialog(theme, client, components.Callbacks{
		OnSubmit: func() {
			m.outcome = outcomeChanged
		},
		OnClose: func(ev components.Event) {
			if m.outcome == outcomeNone && ev.Trigger != components.TriggerSubmitted {
				m.outcome = outcomeClosed
			}
		},
		OnCancel: func(components.Event) {
			m.outcome = outcomeCanceled
		},
	}, opts...)

	return m
}

// Init opens the dialog.
func (m *appModel) Init() tea.Cmd {
	return m.dialog.Show()
}

// Update routes messages to the dialog and quits once it is gone.
func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dialog.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.outcome == outcomeNone {
				m.outcome = outcomeClosed
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	cmd, _ := m.dialog.Update(msg)
	if !m.dialog.IsVisible() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

// View renders the dialog.
func (m *appModel) View() string {
	if m.quitting {
		return ""
	}
	return m.dialog.View()
}

// exitCode maps the outcome to the process exit status.
func (m *appModel) exitCode() int {
	if m.outcome == outcomeChanged {
		return cli.ExitOK
	}
	return cli.ExitCanceled
}
