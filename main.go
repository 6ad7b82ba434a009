// pwchange - change your account password from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/jeranaias/pwchange-tui/internal/auth"
	"github.com/jeranaias/pwchange-tui/internal/cli"
	"github.com/jeranaias/pwchange-tui/internal/config"
	"github.com/jeranaias/pwchange-tui/internal/logging"
	"github.com/jeranaias/pwchange-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	cmd, args := cli.Parse(argv)

	switch cmd {
	case cli.CmdVersion:
		fmt.Fprintln(stdout, cli.VersionString())
		return cli.ExitOK

	case cli.CmdHelp:
		if len(args.Unknown) > 0 {
			fmt.Fprintf(stderr, "Error: unknown argument(s): %s\n\n", strings.Join(args.Unknown, ", "))
			fmt.Fprint(stderr, cli.Usage())
			return cli.ExitError
		}
		fmt.Fprint(stdout, cli.Usage())
		return cli.ExitOK
	}

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.ExitError
	}

	logger, closer := logging.New(cfg.Log)
	defer closer.Close()
	logger.Info().
		Str("command", cmd.String()).
		Str("version", Version).
		Str("api", cfg.Auth.BaseURL).
		Msg("pwchange starting")

	client := auth.NewClient(cfg.Auth, logger)
	if !client.IsConfigured() {
		fmt.Fprintln(stderr, "Error: no API token configured. Set PWCHANGE_TOKEN, pass --token, or add [auth] token to the config file.")
		return cli.ExitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd == cli.CmdPlain {
		return runPlain(ctx, client, logger, stdout, stderr)
	}
	return runTUI(ctx, cfg, client, logger, stdout, stderr)
}

// loadConfig loads the config file, then applies CLI flags on top of the file
// and environment values.
func loadConfig(args cli.Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.APIURL != "" {
		cfg.Auth.BaseURL = args.APIURL
	}
	if args.Token != "" {
		cfg.Auth.Token = args.Token
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	if args.Prefill {
		cfg.UI.Prefill = true
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runTUI(ctx context.Context, cfg *config.Config, client auth.Doer, logger zerolog.Logger, stdout, stderr io.Writer) int {
	if err := cli.RequiresTTY("open the password dialog"); err != nil {
		fmt.Fprintf(stderr, "Error: %v (try 'pwchange plain')\n", err)
		return cli.ExitError
	}

	m := newAppModel(ctx, styles.NewTheme(), client, cfg, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error().Err(err).Msg("tui exited with error")
		fmt.Fprintf(stderr, "Error running pwchange: %v\n", err)
		return cli.ExitError
	}

	app, ok := final.(*appModel)
	if !ok {
		return cli.ExitCanceled
	}
	if app.outcome == outcomeChanged {
		fmt.Fprintln(stdout, styles.RenderSuccess(cli.MsgPasswordChanged))
	}
	logger.Info().Stringer("outcome", app.outcome).Msg("pwchange finished")
	return app.exitCode()
}

func runPlain(ctx context.Context, client auth.Doer, logger zerolog.Logger, stdout, stderr io.Writer) int {
	if err := cli.RequiresTTY("read a password"); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.ExitError
	}
	lipgloss.SetColorProfile(cli.ColorProfile())

	prompter := cli.NewLinerPrompter()
	defer prompter.Close()

	err := cli.RunPlain(ctx, cli.PlainOptions{
		Prompter: prompter,
		Out:      stdout,
		Client:   client,
		Logger:   logger,
	})
	switch {
	case err == nil:
		return cli.ExitOK
	case errors.Is(err, cli.ErrCanceled):
		return cli.ExitCanceled
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.ExitError
	}
}
