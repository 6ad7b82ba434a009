// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command line parsing for pwchange.
package cli

import (
	"fmt"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitCanceled = 2
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdPlain
	CmdVersion
	CmdHelp
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdPlain:
		return "plain"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	ConfigPath string
	APIURL     string
	Token      string
	Plain      bool
	Verbose    bool
	Prefill    bool

	// Unknown lists unrecognized flags and commands. Non-empty means the
	// command line was rejected and Parse returned CmdHelp.
	Unknown []string
}

var (
	valueFlags = []string{"config", "c", "api-url", "token"}
	boolFlags  = []string{"plain", "verbose", "v", "prefill", "help", "h", "version"}
)

const usageText = `pwchange - change your account password from the terminal

Usage:
  pwchange [flags]           Open the password dialog (default)
  pwchange tui [flags]       Same as above
  pwchange plain [flags]     Line-mode prompts, no full-screen UI
  pwchange version           Show version information
  pwchange help              Show this help

Flags:
  -c, --config PATH   Config file (default ~/.pwchange/config.toml)
      --api-url URL   Account API base URL
      --token TOKEN   Bearer token for the account API
      --plain         Same as the plain command
  -v, --verbose       Debug logging
      --prefill       Pre-fill both fields with a sample password

Environment:
  PWCHANGE_API_URL, PWCHANGE_TOKEN, PWCHANGE_LOG_LEVEL, PWCHANGE_LOG_FORMAT

Exit status:
  0  password changed
  1  error
  2  canceled or closed
`

// Usage returns the help text.
func Usage() string {
	return usageText
}

// VersionString returns a one-line version description.
func VersionString() string {
	return fmt.Sprintf("pwchange %s (commit %s, built %s, %s/%s)",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// Parse parses the command line, without the program name.
func Parse(raw []string) (Command, Args) {
	p := NewArgParser(raw, boolFlags...)

	args := Args{
		ConfigPath: p.Flag("config", "c"),
		APIURL:     p.Flag("api-url"),
		Token:      p.Flag("token"),
		Plain:      p.BoolFlag("plain"),
		Verbose:    p.BoolFlag("verbose", "v"),
		Prefill:    p.BoolFlag("prefill"),
	}

	known := append(append([]string{}, valueFlags...), boolFlags...)
	if unknown := p.Unknown(known...); len(unknown) > 0 {
		for _, u := range unknown {
			args.Unknown = append(args.Unknown, "--"+u)
		}
		return CmdHelp, args
	}

	if p.BoolFlag("help", "h") {
		return CmdHelp, args
	}
	if p.BoolFlag("version") {
		return CmdVersion, args
	}

	if p.PositionalCount() > 1 {
		args.Unknown = append(args.Unknown, p.Positional(1))
		return CmdHelp, args
	}

	switch cmd := strings.ToLower(p.Positional(0)); cmd {
	case "":
		if args.Plain {
			return CmdPlain, args
		}
		return CmdTUI, args
	case "tui":
		if args.Plain {
			return CmdPlain, args
		}
		return CmdTUI, args
	case "plain":
		args.Plain = true
		return CmdPlain, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	default:
		args.Unknown = append(args.Unknown, cmd)
		return CmdHelp, args
	}
}
