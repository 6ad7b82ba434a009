// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// StringWidth returns the number of terminal cells s occupies.
// CJK characters count as two cells.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth truncates s to at most maxWidth cells, appending "..."
// when something was cut and there is room for it.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadWidth right-pads s with spaces to exactly width cells.
// Strings already wider than width are returned unchanged.
func PadWidth(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// WrapWidth breaks s into lines no wider than width cells. Words are not
// respected: Japanese text has no spaces to break on.
func WrapWidth(s string, width int) []string {
	if width <= 0 || s == "" {
		return []string{s}
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if lineWidth+rw > width && lineWidth > 0 {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		line.WriteRune(r)
		lineWidth += rw
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
