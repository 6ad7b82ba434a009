// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/pwchange-tui/internal/ui/styles"
	"github.com/jeranaias/pwchange-tui/internal/util"
)

// =============================================================================
// CONFIRM TEMPLATE
// =============================================================================

// Button labels.
const (
	LabelOK         = "OK"
	LabelCancel     = "キャンセル"
	LabelProcessing = "処理中…"
)

// ConfirmAction is what the user asked the template to do.
type ConfirmAction int

const (
	ConfirmNone ConfirmAction = iota
	ConfirmSubmit
	ConfirmCancel
	ConfirmClose
)

// Button focus positions. FocusBody means focus is inside the caller's
// content and the buttons are inactive.
const (
	FocusBody   = -1
	FocusOK     = 0
	FocusCancel = 1
)

const (
	defaultBoxWidth = 56
	minBoxWidth     = 36
)

type confirmKeyMap struct {
	Submit key.Binding
	Close  key.Binding
	Select key.Binding
	Left   key.Binding
	Right  key.Binding
}

func defaultConfirmKeys() confirmKeyMap {
	return confirmKeyMap{
		Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("Ctrl+S", "送信")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "閉じる")),
		Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("Enter", "決定")),
		Left:   key.NewBinding(key.WithKeys("left", "h")),
		Right:  key.NewBinding(key.WithKeys("right", "l")),
	}
}

// Confirm is a modal with a title, arbitrary body content and an OK / Cancel
// footer. It owns no business state: the caller reacts to the returned
// ConfirmAction.
type Confirm struct {
	title      string
	banner     string
	hint       string
	focus      int
	processing bool

	width  int
	height int

	keys  confirmKeyMap
	theme *styles.Theme
}

// NewConfirm creates a confirm template with the given title.
func NewConfirm(theme *styles.Theme, title string) *Confirm {
	if theme == nil {
		theme = styles.NewTheme()
	}
	return &Confirm{
		title: title,
		focus: FocusBody,
		keys:  defaultConfirmKeys(),
		theme: theme,
		hint:  "Tab=移動  Enter=決定  Ctrl+S=送信  Esc=閉じる",
	}
}

// SetProcessing disables the buttons and swaps the OK label.
func (c *Confirm) SetProcessing(on bool) {
	c.processing = on
}

// Processing reports whether the buttons are disabled.
func (c *Confirm) Processing() bool {
	return c.processing
}

// SetBanner sets a message shown above the buttons. An empty string hides it.
func (c *Confirm) SetBanner(msg string) {
	c.banner = msg
}

// Banner returns the current banner text.
func (c *Confirm) Banner() string {
	return c.banner
}

// SetFocus moves focus to a button, or to the body with FocusBody.
func (c *Confirm) SetFocus(focus int) {
	switch focus {
	case FocusOK, FocusCancel:
		c.focus = focus
	default:
		c.focus = FocusBody
	}
}

// Focus returns the focused button, or FocusBody.
func (c *Confirm) Focus() int {
	return c.focus
}

// SetSize updates the terminal dimensions used for centering.
func (c *Confirm) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// BoxWidth is the outer width of the modal for the current terminal.
func (c *Confirm) BoxWidth() int {
	w := defaultBoxWidth
	if c.width > 0 && c.width < defaultBoxWidth+4 {
		w = c.width - 4
	}
	if w < minBoxWidth {
		w = minBoxWidth
	}
	return w
}

// ContentWidth is the width available to the body.
func (c *Confirm) ContentWidth() int {
	return c.BoxWidth() - c.theme.DialogBox.GetHorizontalFrameSize()
}

// =============================================================================
// BUBBLE TEA METHODS
// =============================================================================

// Update handles the template's own keys. The bool reports whether the key
// was consumed; unconsumed keys belong to the body.
func (c *Confirm) Update(msg tea.Msg) (ConfirmAction, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return ConfirmNone, false
	}

	switch {
	case key.Matches(keyMsg, c.keys.Close):
		return ConfirmClose, true

	case key.Matches(keyMsg, c.keys.Submit):
		if c.processing {
			return ConfirmNone, true
		}
		return ConfirmSubmit, true
	}

	if c.focus == FocusBody {
		return ConfirmNone, false
	}

	switch {
	case key.Matches(keyMsg, c.keys.Left), key.Matches(keyMsg, c.keys.Right):
		if c.focus == FocusOK {
			c.focus = FocusCancel
		} else {
			c.focus = FocusOK
		}
		return ConfirmNone, true

	case key.Matches(keyMsg, c.keys.Select):
		if c.processing {
			return ConfirmNone, true
		}
		if c.focus == FocusOK {
			return ConfirmSubmit, true
		}
		return ConfirmCancel, true
	}

	return ConfirmNone, false
}

// =============================================================================
// VIEW RENDERING
// =============================================================================

// View renders the modal around body, centered when a size is known.
func (c *Confirm) View(body string) string {
	inner := c.ContentWidth()

	var content strings.Builder
	content.WriteString(c.theme.DialogTitle.Render(util.TruncateWidth(c.title, inner)))
	content.WriteString("\n\n")
	content.WriteString(body)

	if c.banner != "" {
		content.WriteString("\n")
		for _, line := range util.WrapWidth(c.banner, inner) {
			content.WriteString("\n")
			content.WriteString(c.theme.Banner.Render(line))
		}
	}

	content.WriteString("\n\n")
	content.WriteString(c.renderButtons())
	content.WriteString("\n\n")
	content.WriteString(c.theme.Hint.Render(util.TruncateWidth(c.hint, inner)))

	box := c.theme.DialogBox.
		Width(c.BoxWidth() - c.theme.DialogBox.GetHorizontalBorderSize()).
		Render(content.String())

	if c.width > 0 && c.height > 0 {
		return lipgloss.Place(
			c.width, c.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}
	return box
}

func (c *Confirm) renderButtons() string {
	okLabel := LabelOK
	if c.processing {
		okLabel = LabelProcessing
	}
	width := util.StringWidth(LabelCancel)
	if w := util.StringWidth(okLabel); w > width {
		width = w
	}

	render := func(label string, focus int) string {
		label = util.PadWidth(label, width)
		switch {
		case c.processing:
			return c.theme.ButtonDisabled.Render(label)
		case c.focus == focus:
			return c.theme.ButtonActive.Render(label)
		default:
			return c.theme.Button.Render(label)
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		render(okLabel, FocusOK),
		render(LabelCancel, FocusCancel),
	)
}
