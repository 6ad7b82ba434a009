// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/pwchange-tui/internal/auth"
	"github.com/jeranaias/pwchange-tui/internal/form"
	"github.com/jeranaias/pwchange-tui/internal/mutation"
	"github.com/jeranaias/pwchange-tui/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fakeDoer struct {
	mu    sync.Mutex
	calls []auth.ChangePasswordRequest
	err   error
}

func (f *fakeDoer) ChangePassword(_ context.Context, req auth.ChangePasswordRequest) (*auth.BaseResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &auth.BaseResponse{Success: true}, nil
}

func (f *fakeDoer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recorder captures callback invocations in order.
type recorder struct {
	events []string
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnSubmit: func() { r.events = append(r.events, "submit") },
		OnClose:  func(ev Event) { r.events = append(r.events, "close:"+ev.Trigger.String()) },
		OnCancel: func(ev Event) { r.events = append(r.events, "cancel:"+ev.Trigger.String()) },
	}
}

func newTestDialog(t *testing.T, doer auth.Doer, opts ...DialogOption) (*PasswordDialog, *recorder) {
	t.Helper()
	rec := &recorder{}
	d := NewPasswordDialog(styles.NewTheme(), doer, rec.callbacks(), opts...)
	d.Show()
	require.True(t, d.IsVisible())
	return d, rec
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyCtrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyRight    = tea.KeyMsg{Type: tea.KeyRight}
)

func press(d *PasswordDialog, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		cmd, _ = d.Update(msg)
	}
	return cmd
}

func typeText(d *PasswordDialog, s string) {
	for _, r := range s {
		d.Update(runeKey(string(r)))
	}
}

func fill(d *PasswordDialog, password, confirm string) {
	typeText(d, password)
	press(d, keyTab)
	typeText(d, confirm)
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func resultOf(t *testing.T, cmd tea.Cmd) ChangePasswordResultMsg {
	t.Helper()
	require.NotNil(t, cmd)
	for _, msg := range collect(cmd) {
		if res, ok := msg.(ChangePasswordResultMsg); ok {
			return res
		}
	}
	t.Fatal("command produced no ChangePasswordResultMsg")
	return ChangePasswordResultMsg{}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestPasswordDialog_ShowStartsEmpty(t *testing.T) {
	d, rec := newTestDialog(t, &fakeDoer{})

	assert.NotEmpty(t, d.ID())
	assert.Equal(t, form.Values{}, d.State().Values)
	assert.True(t, d.State().Errors.Empty())
	assert.False(t, d.IsProcessing())
	assert.Equal(t, mutation.Idle, d.Status())
	assert.Empty(t, rec.events)
}

func TestPasswordDialog_HiddenIgnoresKeys(t *testing.T) {
	d := NewPasswordDialog(styles.NewTheme(), &fakeDoer{}, Callbacks{})

	cmd, handled := d.Update(keyCtrlS)
	assert.Nil(t, cmd)
	assert.False(t, handled)
	assert.Empty(t, d.View())
}

func TestPasswordDialog_ShowCreatesFreshInstance(t *testing.T) {
	d, _ := newTestDialog(t, &fakeDoer{})
	typeText(d, "abc")
	first := d.ID()

	press(d, keyEsc)
	require.False(t, d.IsVisible())

	d.Show()
	assert.NotEqual(t, first, d.ID())
	assert.Empty(t, d.State().Values.Password)
}

func TestPasswordDialog_InitialValues(t *testing.T) {
	d, _ := newTestDialog(t, &fakeDoer{}, WithInitialValues(form.SampleValues))
	assert.Equal(t, form.SampleValues, d.State().Values)
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestPasswordDialog_SuccessClosesBeforeSubmit(t *testing.T) {
	doer := &fakeDoer{}
	d, rec := newTestDialog(t, doer)

	fill(d, "Password1?", "Password1?")
	cmd := press(d, keyCtrlS)

	assert.True(t, d.IsProcessing())
	assert.Equal(t, 0, doer.count(), "request runs inside the command")

	res := resultOf(t, cmd)
	assert.Equal(t, d.ID(), res.DialogID)
	press(d, res)

	assert.Equal(t, []string{"close:submitted", "submit"}, rec.events)
	assert.False(t, d.IsVisible())
	require.Len(t, doer.calls, 1)
	assert.Equal(t, auth.ChangePasswordRequest{Password: "Password1?"}, doer.calls[0])
}

func TestPasswordDialog_LongPasswordSentInFull(t *testing.T) {
	doer := &fakeDoer{}
	d, rec := newTestDialog(t, doer)

	long := strings.Repeat("Aa1?", 40)
	fill(d, long, long)
	assert.Equal(t, long, d.State().Values.Password)
	assert.Equal(t, long, d.State().Values.ConfirmPassword)

	cmd := press(d, keyCtrlS)
	press(d, resultOf(t, cmd))

	assert.Equal(t, []string{"close:submitted", "submit"}, rec.events)
	require.Len(t, doer.calls, 1)
	assert.Len(t, doer.calls[0].Password, 160)
	assert.Equal(t, long, doer.calls[0].Password)
}

func TestPasswordDialog_EnterOnConfirmFieldSubmits(t *testing.T) {
	doer := &fakeDoer{}
	d, _ := newTestDialog(t, doer)

	typeText(d, "Password1?")
	press(d, keyEnter) // advances to the confirmation field
	typeText(d, "Password1?")
	cmd := press(d, keyEnter)

	resultOf(t, cmd)
	assert.Equal(t, 1, doer.count())
}

func TestPasswordDialog_OKButtonSubmits(t *testing.T) {
	doer := &fakeDoer{}
	d, _ := newTestDialog(t, doer)

	fill(d, "Password1?", "Password1?")
	cmd := press(d, keyTab, keyEnter)

	resultOf(t, cmd)
	assert.Equal(t, 1, doer.count())
}

func TestPasswordDialog_MismatchBlocksRequest(t *testing.T) {
	doer := &fakeDoer{}
	d, rec := newTestDialog(t, doer)

	fill(d, "Password1?", "Password2?")
	press(d, keyCtrlS)

	assert.False(t, d.IsProcessing())
	assert.Equal(t, mutation.Idle, d.Status())
	assert.Equal(t, 0, doer.count())
	assert.Empty(t, rec.events)

	errs := d.State().Errors
	assert.Nil(t, errs.Get(form.FieldPassword))
	require.NotNil(t, errs.Get(form.FieldConfirmPassword))
	assert.Equal(t, form.PasswordMismatch, errs.Get(form.FieldConfirmPassword).Code)
	assert.Contains(t, d.View(), form.MsgPasswordMismatch)
}

func TestPasswordDialog_EmptyPasswordRejected(t *testing.T) {
	doer := &fakeDoer{}
	d, _ := newTestDialog(t, doer)

	press(d, keyTab)
	typeText(d, "Password1?")
	press(d, keyCtrlS)

	errs := d.State().Errors
	require.NotNil(t, errs.Get(form.FieldPassword))
	assert.Equal(t, form.EmptyField, errs.Get(form.FieldPassword).Code)
	assert.Equal(t, 0, doer.count())
}

func TestPasswordDialog_ErrorsClearOnEditAfterSubmit(t *testing.T) {
	d, _ := newTestDialog(t, &fakeDoer{})

	fill(d, "Password1?", "Password1")
	press(d, keyCtrlS)
	require.NotNil(t, d.State().Errors.Get(form.FieldConfirmPassword))

	typeText(d, "?")
	assert.True(t, d.State().Errors.Empty())
}

func TestPasswordDialog_SecondSubmitWhilePendingIsNoop(t *testing.T) {
	doer := &fakeDoer{}
	d, _ := newTestDialog(t, doer)

	fill(d, "Password1?", "Password1?")
	first := press(d, keyCtrlS)
	require.True(t, d.IsProcessing())

	assert.Nil(t, press(d, keyCtrlS))
	assert.Nil(t, press(d, keyEnter))
	assert.Nil(t, press(d, keyTab, keyEnter))

	resultOf(t, first)
	assert.Equal(t, 1, doer.count())
}

func TestPasswordDialog_EditingIgnoredWhilePending(t *testing.T) {
	d, _ := newTestDialog(t, &fakeDoer{})

	fill(d, "Password1?", "Password1?")
	press(d, keyCtrlS)
	typeText(d, "xyz")

	assert.Equal(t, "Password1?", d.State().Values.ConfirmPassword)
}

func TestPasswordDialog_FailureReturnsToIdle(t *testing.T) {
	boom := errors.New("boom")
	doer := &fakeDoer{err: boom}
	d, rec := newTestDialog(t, doer)

	fill(d, "Password1?", "Password1?")
	cmd := press(d, keyCtrlS)
	press(d, resultOf(t, cmd))

	assert.True(t, d.IsVisible())
	assert.False(t, d.IsProcessing())
	assert.ErrorIs(t, d.LastError(), boom)
	assert.Equal(t, mutation.Failed, d.Status())
	assert.True(t, d.State().Errors.Empty(), "request failures are not field errors")
	assert.Empty(t, rec.events)
	assert.Equal(t, BannerRequestFailed, d.confirm.Banner())
	assert.Contains(t, d.View(), "パスワードの変更に失敗しました", "banner wraps inside the box")

	// A retry is allowed and clears the banner.
	doer.err = nil
	cmd = press(d, keyCtrlS)
	require.NotNil(t, cmd)
	assert.Nil(t, d.LastError())
	press(d, resultOf(t, cmd))
	assert.Equal(t, []string{"close:submitted", "submit"}, rec.events)
}

// =============================================================================
// DISMISSAL
// =============================================================================

func TestPasswordDialog_Escape(t *testing.T) {
	d, rec := newTestDialog(t, &fakeDoer{})

	press(d, keyEsc)

	assert.False(t, d.IsVisible())
	assert.Equal(t, []string{"close:escape"}, rec.events)
}

func TestPasswordDialog_CancelButton(t *testing.T) {
	d, rec := newTestDialog(t, &fakeDoer{})

	press(d, keyTab, keyTab, keyTab)
	assert.Equal(t, FocusCancel, d.confirm.Focus())
	press(d, keyEnter)

	assert.False(t, d.IsVisible())
	assert.Equal(t, []string{"cancel:cancel", "close:cancel"}, rec.events)
}

func TestPasswordDialog_ShiftTabWrapsToCancel(t *testing.T) {
	d, _ := newTestDialog(t, &fakeDoer{})

	press(d, keyShiftTab)
	assert.Equal(t, FocusCancel, d.confirm.Focus())
}

func TestPasswordDialog_CancelIgnoredWhilePending(t *testing.T) {
	d, rec := newTestDialog(t, &fakeDoer{})

	fill(d, "Password1?", "Password1?")
	press(d, keyTab, keyEnter) // OK button
	require.True(t, d.IsProcessing())

	press(d, keyRight, keyEnter) // Cancel button, disabled
	assert.True(t, d.IsVisible())
	assert.Empty(t, rec.events)
}

func TestPasswordDialog_EscapeWhilePendingDiscardsResult(t *testing.T) {
	doer := &fakeDoer{}
	d, rec := newTestDialog(t, doer)

	fill(d, "Password1?", "Password1?")
	cmd := press(d, keyCtrlS)
	press(d, keyEsc)
	require.Equal(t, []string{"close:escape"}, rec.events)

	cmd2, handled := d.Update(resultOf(t, cmd))
	assert.Nil(t, cmd2)
	assert.True(t, handled)
	assert.Equal(t, []string{"close:escape"}, rec.events, "late result fires no callback")
	assert.Equal(t, 1, doer.count())
}

func TestPasswordDialog_ForeignResultIgnored(t *testing.T) {
	d, rec := newTestDialog(t, &fakeDoer{})

	fill(d, "Password1?", "Password1?")
	press(d, keyCtrlS)

	press(d, ChangePasswordResultMsg{
		DialogID: "another-dialog",
		Result:   mutation.Result[*auth.BaseResponse]{Data: &auth.BaseResponse{Success: true}},
	})

	assert.True(t, d.IsProcessing())
	assert.True(t, d.IsVisible())
	assert.Empty(t, rec.events)
}

// =============================================================================
// VIEW
// =============================================================================

func TestPasswordDialog_ViewMasksInput(t *testing.T) {
	d, _ := newTestDialog(t, &fakeDoer{})
	d.SetSize(80, 24)
	fill(d, "Password1?", "Password1?")

	view := d.View()
	assert.Contains(t, view, DialogTitle)
	assert.Contains(t, view, LabelPassword)
	assert.Contains(t, view, LabelConfirmPassword)
	assert.Contains(t, view, LabelOK)
	assert.Contains(t, view, LabelCancel)
	assert.NotContains(t, view, "Password1?")
	assert.Contains(t, view, strings.Repeat("•", len("Password1?")))
}

func TestPasswordDialog_ViewWhileProcessing(t *testing.T) {
	d, _ := newTestDialog(t, &fakeDoer{})
	fill(d, "Password1?", "Password1?")
	press(d, keyCtrlS)

	view := d.View()
	assert.Contains(t, view, LabelProcessing)
	assert.Contains(t, view, ProgressLabel)
}

// lineIndex returns the first line of lines containing substr, or -1.
func lineIndex(lines []string, substr string) int {
	for i, line := range lines {
		if strings.Contains(line, substr) {
			return i
		}
	}
	return -1
}

func TestPasswordDialog_ViewFieldSpacing(t *testing.T) {
	d, _ := newTestDialog(t, &fakeDoer{})
	d.SetSize(80, 24)

	// One blank line separates the first input from the next label.
	lines := strings.Split(d.View(), "\n")
	bottom := lineIndex(lines, "╰")
	label := lineIndex(lines, LabelConfirmPassword)
	require.NotEqual(t, -1, bottom)
	require.NotEqual(t, -1, label)
	assert.Equal(t, 2, label-bottom)

	// An error line sits between them without adding more space.
	fill(d, "", "Password1?")
	press(d, keyCtrlS)
	require.NotNil(t, d.State().Errors.Get(form.FieldPassword))

	lines = strings.Split(d.View(), "\n")
	bottom = lineIndex(lines, "╰")
	label = lineIndex(lines, LabelConfirmPassword)
	assert.Equal(t, 3, label-bottom)
	assert.Contains(t, lines[bottom+1], form.MsgEmptyField)
}
