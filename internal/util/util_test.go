// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringWidth(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"abc", 3},
		{"パスワード", 10},
		{"新しいパスワード(確認用)", 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StringWidth(tt.input), "StringWidth(%q)", tt.input)
	}
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "", TruncateWidth("abc", 0))
	assert.Equal(t, "abc", TruncateWidth("abc", 3))
	assert.Equal(t, "ab", TruncateWidth("abcdef", 2))
	assert.Equal(t, "abc...", TruncateWidth("abcdefgh", 6))

	// A double-width rune is never split in half.
	got := TruncateWidth("パスワード変更", 9)
	assert.LessOrEqual(t, StringWidth(got), 9)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestPadWidth(t *testing.T) {
	assert.Equal(t, "ab  ", PadWidth("ab", 4))
	assert.Equal(t, "パス", PadWidth("パス", 3))
	assert.Equal(t, 10, StringWidth(PadWidth("パス", 10)))
}

func TestWrapWidth(t *testing.T) {
	lines := WrapWidth("確認用パスワードが一致していません", 10)
	for _, l := range lines {
		assert.LessOrEqual(t, StringWidth(l), 10)
	}
	assert.Equal(t, "確認用パスワードが一致していません", strings.Join(lines, ""))

	assert.Equal(t, []string{""}, WrapWidth("", 10))
	assert.Equal(t, []string{"abc"}, WrapWidth("abc", 0))
}
