// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the pwchange TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. Inputs have gray borders, an indigo focus ring, and red borders
plus red inline text when invalid.

# Theme

NewTheme detects the color profile with termenv and builds the dialog,
field, button and progress styles once:

	theme := styles.NewTheme()
	box := theme.DialogBox.Render(content)

Status text always pairs color with an ASCII indicator ([OK], [X]) so
state stays readable on monochrome terminals.
*/
package styles
