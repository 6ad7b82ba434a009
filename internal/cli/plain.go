// plain.go - Line-mode password change.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/jeranaias/pwchange-tui/internal/auth"
	"github.com/jeranaias/pwchange-tui/internal/form"
	"github.com/jeranaias/pwchange-tui/internal/mutation"
	"github.com/jeranaias/pwchange-tui/internal/ui/components"
	"github.com/jeranaias/pwchange-tui/internal/ui/styles"
)

// DefaultMaxAttempts bounds how many times plain mode re-asks after a
// validation failure.
const DefaultMaxAttempts = 3

// MsgPasswordChanged is printed after a successful change.
const MsgPasswordChanged = "パスワードを変更しました"

var (
	// ErrCanceled is returned when the user aborts a prompt.
	ErrCanceled = errors.New("canceled")

	// ErrTooManyAttempts is returned when every attempt failed validation.
	ErrTooManyAttempts = errors.New("too many invalid attempts")
)

// Prompter reads a line without echo. *liner.State implements it.
type Prompter interface {
	PasswordPrompt(prompt string) (string, error)
	Close() error
}

// NewLinerPrompter returns a liner-backed prompter where Ctrl+C aborts.
func NewLinerPrompter() Prompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

// PlainOptions configures RunPlain.
type PlainOptions struct {
	Prompter    Prompter
	Out         io.Writer
	Client      auth.Doer
	Logger      zerolog.Logger
	MaxAttempts int
}

// RunPlain asks for the new password twice on the terminal, validates it with
// the same rules as the dialog and submits it once. It returns ErrCanceled if
// the user aborts a prompt.
func RunPlain(ctx context.Context, opts PlainOptions) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	fmt.Fprintln(out, components.DialogTitle)

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		values, err := readValues(opts.Prompter)
		if err != nil {
			return err
		}

		state := form.NewState(form.ValidateOnSubmit, form.Values{})
		state = form.Reduce(state, form.SetField{Field: form.FieldPassword, Value: values.Password})
		state = form.Reduce(state, form.SetField{Field: form.FieldConfirmPassword, Value: values.ConfirmPassword})
		state = form.Reduce(state, form.Submit{})

		if !state.Valid() {
			opts.Logger.Debug().Int("attempt", attempt).Msg("password form rejected")
			printFieldErrors(out, state.Errors)
			continue
		}

		m := mutation.New[auth.ChangePasswordRequest, *auth.BaseResponse](opts.Client.ChangePassword)
		if _, err := m.Do(ctx, auth.ChangePasswordRequest{Password: state.Values.NewPassword()}); err != nil {
			opts.Logger.Warn().Err(err).Msg("change password failed")
			fmt.Fprintln(out, styles.RenderError(components.BannerRequestFailed))
			return err
		}

		opts.Logger.Info().Msg("password changed")
		fmt.Fprintln(out, styles.RenderSuccess(MsgPasswordChanged))
		return nil
	}

	return ErrTooManyAttempts
}

func readValues(p Prompter) (form.Values, error) {
	password, err := p.PasswordPrompt(components.LabelPassword + ": ")
	if err != nil {
		return form.Values{}, promptErr(err)
	}
	confirm, err := p.PasswordPrompt(components.LabelConfirmPassword + ": ")
	if err != nil {
		return form.Values{}, promptErr(err)
	}
	return form.Values{Password: password, ConfirmPassword: confirm}, nil
}

func promptErr(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return ErrCanceled
	}
	return fmt.Errorf("read password: %w", err)
}

func printFieldErrors(out io.Writer, errs form.FieldErrors) {
	labels := map[form.Field]string{
		form.FieldPassword:        components.LabelPassword,
		form.FieldConfirmPassword: components.LabelConfirmPassword,
	}
	for _, f := range form.Fields {
		if msg := errs.Message(f); msg != "" {
			fmt.Fprintln(out, styles.RenderError(labels[f]+": "+msg))
		}
	}
}
