// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog logger used by pwchange.
//
// The TUI owns stdout, so log output goes to a file. Passwords and bearer
// tokens must never be passed to a logger; callers log request metadata only.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/pwchange-tui/internal/config"
)

// NewWithWriter returns a logger writing to w at the given level and format.
// Unknown levels fall back to info; any format other than "json" is console.
func NewWithWriter(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if strings.EqualFold(format, "json") {
		return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}).With().Timestamp().Logger().Level(lvl)
}

// New opens the configured log file and returns a logger plus the closer for
// that file. If the file cannot be opened the logger discards everything;
// failing to log is never a reason to refuse to run.
func New(cfg config.LogConfig) (zerolog.Logger, io.Closer) {
	path := cfg.File
	if path == "" {
		p, err := config.DefaultLogPath()
		if err != nil {
			return zerolog.Nop(), io.NopCloser(nil)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return zerolog.Nop(), io.NopCloser(nil)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop(), io.NopCloser(nil)
	}
	return NewWithWriter(f, cfg.Level, cfg.Format), f
}
