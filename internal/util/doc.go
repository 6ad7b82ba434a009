// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides display-width helpers for the pwchange TUI.
//
// Labels and messages in the dialog are Japanese, so every width
// calculation is done in terminal cells (via go-runewidth), never in bytes
// or runes.
//
// # Usage
//
//	label := util.PadWidth("新しいパスワード", 20)
//	msg := util.TruncateWidth(longMessage, 40)
package util
