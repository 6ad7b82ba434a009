// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the UI components of the password-change TUI.

Components follow one pattern: a pointer type with Show/Hide/IsVisible and
SetSize, an Update method that returns (tea.Cmd, bool) where the bool reports
whether the message was consumed, and a View that centers itself with
lipgloss.Place once a size is known.

# Components

Progress (progress.go) - Spinner overlay driven by a single processing flag.

Confirm (confirm.go) - Modal template with title, body, error banner and an
OK / Cancel footer. Buttons are disabled while processing.

PasswordDialog (password_dialog.go) - Two masked inputs, inline field errors,
single-flight submission through an auth.Doer.

# Usage

	dialog := components.NewPasswordDialog(theme, client, components.Callbacks{
		OnSubmit: func() { done = true },
		OnClose:  func(ev components.Event) { closed = ev.Trigger },
	})
	cmd := dialog.Show()

	// In the parent Update:
	if cmd, handled := dialog.Update(msg); handled {
		return m, cmd
	}
*/
package components
