// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/pwchange-tui/internal/auth"
	"github.com/jeranaias/pwchange-tui/internal/form"
	"github.com/jeranaias/pwchange-tui/internal/mutation"
	"github.com/jeranaias/pwchange-tui/internal/ui/styles"
	"github.com/jeranaias/pwchange-tui/internal/util"
)

// =============================================================================
// PASSWORD DIALOG
// =============================================================================

// Display strings.
const (
	DialogTitle          = "パスワード変更"
	LabelPassword        = "新しいパスワード"
	LabelConfirmPassword = "新しいパスワード(確認用)"
	BannerRequestFailed  = "パスワードの変更に失敗しました。時間をおいて再度お試しください。"
)

// Focus positions: the two inputs, then the two buttons.
const (
	focusPassword = iota
	focusConfirm
	focusOK
	focusCancel
	focusCount
)

// Trigger identifies why the dialog closed.
type Trigger int

const (
	TriggerSubmitted Trigger = iota
	TriggerCancel
	TriggerEscape
)

// String returns the trigger name.
func (t Trigger) String() string {
	switch t {
	case TriggerSubmitted:
		return "submitted"
	case TriggerCancel:
		return "cancel"
	case TriggerEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// Event is passed to the close and cancel callbacks.
type Event struct {
	Trigger  Trigger
	DialogID string
}

// Callbacks are the dialog's outbound notifications. Any of them may be nil.
//
// On a successful change OnClose runs before OnSubmit. Cancel runs OnCancel
// and then OnClose.
type Callbacks struct {
	OnSubmit func()
	OnClose  func(Event)
	OnCancel func(Event)
}

// ChangePasswordResultMsg carries the outcome of a change-password request
// back into the update loop.
type ChangePasswordResultMsg struct {
	DialogID string
	Result   mutation.Result[*auth.BaseResponse]
}

type dialogKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Enter key.Binding
}

func defaultDialogKeys() dialogKeyMap {
	return dialogKeyMap{
		Next:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("Tab", "次へ")),
		Prev:  key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("Shift+Tab", "前へ")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "次へ")),
	}
}

// DialogOption configures a PasswordDialog.
type DialogOption func(*PasswordDialog)

// WithMode selects when field errors are recomputed.
func WithMode(mode form.Mode) DialogOption {
	return func(d *PasswordDialog) { d.mode = mode }
}

// WithInitialValues seeds both inputs each time the dialog is shown.
func WithInitialValues(v form.Values) DialogOption {
	return func(d *PasswordDialog) { d.initial = v }
}

// WithASCIISpinner uses line frames for the progress spinner.
func WithASCIISpinner(ascii bool) DialogOption {
	return func(d *PasswordDialog) { d.asciiSpinner = ascii }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) DialogOption {
	return func(d *PasswordDialog) { d.logger = logger }
}

// WithContext sets the context passed to the change-password call.
func WithContext(ctx context.Context) DialogOption {
	return func(d *PasswordDialog) { d.ctx = ctx }
}

type changeMutation = mutation.Mutation[auth.ChangePasswordRequest, *auth.BaseResponse]

// PasswordDialog asks for a new password twice, validates it, and submits it
// through an auth.Doer. Each Show starts a fresh instance with its own form
// and mutation state.
type PasswordDialog struct {
	id        string
	client    auth.Doer
	callbacks Callbacks
	mutation  *changeMutation

	// Form state
	state   form.State
	mode    form.Mode
	initial form.Values
	inputs  [2]textinput.Model
	focus   int
	pending bool
	lastErr error

	// UI state
	visible      bool
	asciiSpinner bool
	confirm      *Confirm
	progress     *Progress
	keys         dialogKeyMap
	theme        *styles.Theme

	ctx    context.Context
	logger zerolog.Logger
}

// NewPasswordDialog creates a hidden dialog. Call Show to open it.
func NewPasswordDialog(theme *styles.Theme, client auth.Doer, cb Callbacks, opts ...DialogOption) *PasswordDialog {
	if theme == nil {
		theme = styles.NewTheme()
	}
	d := &PasswordDialog{
		client:    client,
		callbacks: cb,
		keys:      defaultDialogKeys(),
		theme:     theme,
		ctx:       context.Background(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.confirm = NewConfirm(theme, DialogTitle)
	d.progress = NewProgress(theme, d.asciiSpinner)
	d.inputs[0] = newPasswordInput()
	d.inputs[1] = newPasswordInput()
	d.state = form.NewState(d.mode, d.initial)
	return d
}

func newPasswordInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 0 // unlimited; length rules belong to the server
	return ti
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Show opens the dialog with a fresh form and mutation.
func (d *PasswordDialog) Show() tea.Cmd {
	d.id = uuid.NewString()
	d.mutation = mutation.New[auth.ChangePasswordRequest, *auth.BaseResponse](d.client.ChangePassword)
	d.state = form.NewState(d.mode, d.initial)
	d.pending = false
	d.lastErr = nil
	d.visible = true

	d.inputs[0].SetValue(d.initial.Password)
	d.inputs[1].SetValue(d.initial.ConfirmPassword)
	d.confirm.SetBanner("")
	d.confirm.SetProcessing(false)
	d.progress.SetProcessing(false)

	d.logger.Debug().Str("dialog_id", d.id).Msg("password dialog opened")
	return d.setFocus(focusPassword)
}

// Hide closes the dialog without firing callbacks. A request still in flight
// completes in the background and its result is discarded.
func (d *PasswordDialog) Hide() {
	d.visible = false
	d.pending = false
	d.inputs[0].Blur()
	d.inputs[1].Blur()
	d.confirm.SetProcessing(false)
	d.progress.SetProcessing(false)
}

// IsVisible returns whether the dialog is open.
func (d *PasswordDialog) IsVisible() bool {
	return d.visible
}

// IsProcessing reports whether a change-password request is in flight.
func (d *PasswordDialog) IsProcessing() bool {
	return d.pending
}

// ID returns the identifier of the current instance.
func (d *PasswordDialog) ID() string {
	return d.id
}

// State returns the current form state.
func (d *PasswordDialog) State() form.State {
	return d.state
}

// Status returns the mutation status of the current instance.
func (d *PasswordDialog) Status() mutation.Status {
	if d.mutation == nil {
		return mutation.Idle
	}
	return d.mutation.Status()
}

// LastError returns the error from the last failed request, if any.
func (d *PasswordDialog) LastError() error {
	return d.lastErr
}

// SetSize updates the dialog dimensions.
func (d *PasswordDialog) SetSize(width, height int) {
	d.confirm.SetSize(width, height)
	inputWidth := d.confirm.ContentWidth() - d.theme.Input.GetHorizontalFrameSize() - 1
	for i := range d.inputs {
		d.inputs[i].Width = inputWidth
	}
}

// =============================================================================
// BUBBLE TEA METHODS
// =============================================================================

// Update handles messages for the dialog. The bool reports whether the
// message was consumed.
func (d *PasswordDialog) Update(msg tea.Msg) (tea.Cmd, bool) {
	if result, ok := msg.(ChangePasswordResultMsg); ok {
		return d.handleResult(result), true
	}
	if !d.visible {
		return nil, false
	}

	switch msg := msg.(type) {
	case spinner.TickMsg:
		return d.progress.Update(msg), true

	case tea.KeyMsg:
		return d.handleKey(msg), true
	}

	if d.focus < focusOK {
		var cmd tea.Cmd
		d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
		return cmd, false
	}
	return nil, false
}

func (d *PasswordDialog) handleKey(msg tea.KeyMsg) tea.Cmd {
	action, handled := d.confirm.Update(msg)
	switch action {
	case ConfirmClose:
		d.close(TriggerEscape)
		return nil
	case ConfirmSubmit:
		return d.submit()
	case ConfirmCancel:
		d.cancel()
		return nil
	}
	if handled {
		if f := d.confirm.Focus(); f != FocusBody {
			d.focus = focusOK + f
		}
		return nil
	}

	if d.pending {
		return nil
	}

	switch {
	case key.Matches(msg, d.keys.Next):
		return d.setFocus((d.focus + 1) % focusCount)

	case key.Matches(msg, d.keys.Prev):
		return d.setFocus((d.focus - 1 + focusCount) % focusCount)

	case key.Matches(msg, d.keys.Enter) && d.focus < focusOK:
		if d.focus == focusConfirm {
			return d.submit()
		}
		return d.setFocus(d.focus + 1)
	}

	if d.focus >= focusOK {
		return nil
	}

	field := form.Fields[d.focus]
	before := d.inputs[d.focus].Value()
	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	if after := d.inputs[d.focus].Value(); after != before {
		d.state = form.Reduce(d.state, form.SetField{Field: field, Value: after})
	}
	return cmd
}

func (d *PasswordDialog) setFocus(focus int) tea.Cmd {
	d.focus = focus
	var cmd tea.Cmd
	for i := range d.inputs {
		if i == focus {
			cmd = d.inputs[i].Focus()
		} else {
			d.inputs[i].Blur()
		}
	}
	if focus >= focusOK {
		d.confirm.SetFocus(focus - focusOK)
	} else {
		d.confirm.SetFocus(FocusBody)
	}
	return cmd
}

// submit validates and, if the form is valid, starts the request.
func (d *PasswordDialog) submit() tea.Cmd {
	if d.pending || d.mutation == nil {
		return nil
	}

	d.state = form.Reduce(d.state, form.Submit{})
	if !d.state.Valid() {
		d.logger.Debug().
			Str("dialog_id", d.id).
			Int("errors", len(d.state.Errors)).
			Msg("password form rejected")
		for i, f := range form.Fields {
			if d.state.Errors.Get(f) != nil {
				return d.setFocus(i)
			}
		}
		return nil
	}

	req := auth.ChangePasswordRequest{Password: d.state.Values.NewPassword()}
	run, ok := d.mutation.Start(d.ctx, req)
	if !ok {
		return nil
	}

	d.pending = true
	d.lastErr = nil
	d.confirm.SetBanner("")
	d.confirm.SetProcessing(true)
	d.inputs[0].Blur()
	d.inputs[1].Blur()

	id := d.id
	d.logger.Info().Str("dialog_id", id).Msg("change password submitted")

	return tea.Batch(
		d.progress.SetProcessing(true),
		func() tea.Msg {
			return ChangePasswordResultMsg{DialogID: id, Result: run()}
		},
	)
}

func (d *PasswordDialog) handleResult(msg ChangePasswordResultMsg) tea.Cmd {
	if !d.visible || msg.DialogID != d.id || !d.pending {
		d.logger.Debug().
			Str("dialog_id", msg.DialogID).
			Bool("ok", msg.Result.OK()).
			Msg("discarding change password result")
		return nil
	}

	d.pending = false
	d.confirm.SetProcessing(false)
	d.progress.SetProcessing(false)

	if msg.Result.OK() {
		d.logger.Info().Str("dialog_id", d.id).Msg("password changed")
		d.finish(TriggerSubmitted)
		if d.callbacks.OnSubmit != nil {
			d.callbacks.OnSubmit()
		}
		return nil
	}

	d.lastErr = msg.Result.Err
	d.confirm.SetBanner(BannerRequestFailed)
	d.logger.Warn().Err(msg.Result.Err).Str("dialog_id", d.id).Msg("change password failed")

	focus := d.focus
	if focus >= focusOK {
		focus = focusOK
	}
	return d.setFocus(focus)
}

func (d *PasswordDialog) cancel() {
	if d.pending {
		return
	}
	d.logger.Debug().Str("dialog_id", d.id).Msg("password dialog canceled")
	ev := Event{Trigger: TriggerCancel, DialogID: d.id}
	d.Hide()
	if d.callbacks.OnCancel != nil {
		d.callbacks.OnCancel(ev)
	}
	if d.callbacks.OnClose != nil {
		d.callbacks.OnClose(ev)
	}
}

func (d *PasswordDialog) close(trigger Trigger) {
	d.logger.Debug().Str("dialog_id", d.id).Stringer("trigger", trigger).Msg("password dialog closed")
	d.finish(trigger)
}

// finish hides the dialog and fires OnClose.
func (d *PasswordDialog) finish(trigger Trigger) {
	ev := Event{Trigger: trigger, DialogID: d.id}
	d.Hide()
	if d.callbacks.OnClose != nil {
		d.callbacks.OnClose(ev)
	}
}

// =============================================================================
// VIEW RENDERING
// =============================================================================

// View renders the dialog.
func (d *PasswordDialog) View() string {
	if !d.visible {
		return ""
	}

	inner := d.confirm.ContentWidth()
	labels := [2]string{LabelPassword, LabelConfirmPassword}

	var body strings.Builder
	for i, f := range form.Fields {
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(d.theme.Label.Render(util.TruncateWidth(labels[i], inner)))
		body.WriteString("\n")

		style := d.theme.Input
		switch {
		case d.state.Errors.Get(f) != nil:
			style = d.theme.InputInvalid
		case d.focus == i:
			style = d.theme.InputFocused
		}
		body.WriteString(style.
			Width(inner - style.GetHorizontalBorderSize()).
			Render(d.inputs[i].View()))
		body.WriteString("\n")

		if msg := d.state.Errors.Message(f); msg != "" {
			for _, line := range util.WrapWidth(msg, inner) {
				body.WriteString(d.theme.FieldError.Render(line))
				body.WriteString("\n")
			}
		}
	}

	if d.progress.Processing() {
		body.WriteString("\n")
		body.WriteString(d.progress.View())
	}

	return d.confirm.View(strings.TrimSuffix(body.String(), "\n"))
}
