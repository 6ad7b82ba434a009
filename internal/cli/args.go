// args.go - Argument parsing for pwchange.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"sort"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits raw arguments into flags and positionals.
// It handles:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: arguments without flags
type ArgParser struct {
	flags      map[string]string // String flags (--key=value)
	boolFlags  map[string]bool   // Boolean flags (--plain)
	positional []string
	raw        []string
}

// NewArgParser parses raw. Names listed in boolNames never take a value, so
// "--plain tui" leaves "tui" as a positional.
//
// Example:
//
//	args := NewArgParser([]string{"--plain", "tui", "--config", "x.toml"}, "plain")
//	args.Positional(0)     // "tui"
//	args.Flag("config")    // "x.toml"
//	args.BoolFlag("plain") // true
func NewArgParser(raw []string, boolNames ...string) *ArgParser {
	parser := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0),
		raw:        raw,
	}

	isBool := make(map[string]bool, len(boolNames))
	for _, name := range boolNames {
		isBool[name] = true
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		// "--" ends flag parsing
		if arg == "--" {
			parser.positional = append(parser.positional, raw[i+1:]...)
			break
		}

		if strings.HasPrefix(arg, "-") && arg != "-" {
			// Handle --flag=value format
			if name, value, ok := strings.Cut(arg, "="); ok {
				flagName := strings.TrimLeft(name, "-")
				if isBool[flagName] && (value == "true" || value == "false") {
					parser.boolFlags[flagName] = value == "true"
				} else {
					parser.flags[flagName] = value
				}
				i++
				continue
			}

			flagName := strings.TrimLeft(arg, "-")

			if !isBool[flagName] && i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
				parser.flags[flagName] = raw[i+1]
				i += 2
			} else {
				parser.boolFlags[flagName] = true
				i++
			}
		} else {
			parser.positional = append(parser.positional, arg)
			i++
		}
	}

	return parser
}

// Flag returns the value of a string flag, or "" if absent.
// Any of names may match, so a long and a short form can be passed together.
func (p *ArgParser) Flag(names ...string) string {
	for _, name := range names {
		if val, ok := p.flags[strings.TrimLeft(name, "-")]; ok {
			return val
		}
	}
	return ""
}

// BoolFlag reports whether any of names was given as a boolean flag.
func (p *ArgParser) BoolFlag(names ...string) bool {
	for _, name := range names {
		if p.boolFlags[strings.TrimLeft(name, "-")] {
			return true
		}
	}
	return false
}

// HasFlag returns true if the flag exists (either as string or bool flag).
func (p *ArgParser) HasFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	_, hasString := p.flags[name]
	_, hasBool := p.boolFlags[name]
	return hasString || hasBool
}

// Positional returns the positional argument at index, or "".
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// Unknown returns flags that are not in known. Used to reject typos.
func (p *ArgParser) Unknown(known ...string) []string {
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}
	var out []string
	for name := range p.flags {
		if !allowed[name] {
			out = append(out, name)
		}
	}
	for name := range p.boolFlags {
		if !allowed[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Raw returns the original raw arguments.
func (p *ArgParser) Raw() []string {
	return p.raw
}
