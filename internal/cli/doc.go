// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the line-mode front end for
// pwchange.
//
// # Key Types
//
//   - Command: tui, plain, version or help
//   - Args: parsed flags
//   - Prompter: masked line input, backed by peterh/liner
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdPlain:
//	    err := cli.RunPlain(ctx, cli.PlainOptions{...})
//	// ...
//	}
package cli
