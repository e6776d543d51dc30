// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	exchange "github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/chat"
)

// =============================================================================
// CHAT PAGE KEYS
// =============================================================================

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NewConversation):
		m.convs.Create()
		m.syncTranscript(true)
		return m.setStatus("New conversation")

	case key.Matches(msg, m.keys.Conversations):
		m.picking = true
		m.pickIndex = m.currentIndex()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}
	return m.updateInputs(msg)
}

// submit sends the input text. While a send is in flight further submits
// are refused and the text stays in the input.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if m.sending {
		return m.setStatus("Waiting for the previous reply")
	}

	m.sending = true
	m.notice = ""
	m.exchange.ClearNotice()
	m.input.Reset()
	return m, tea.Batch(m.submitCmd(text), m.spinner.Tick)
}

// submitCmd runs one exchange off the update loop.
func (m Model) submitCmd(text string) tea.Cmd {
	ex, ctx := m.exchange, m.ctx
	return func() tea.Msg {
		return SubmitResultMsg{Text: text, Err: ex.Submit(ctx, text)}
	}
}

func (m Model) handleSubmitResult(msg SubmitResultMsg) (tea.Model, tea.Cmd) {
	m.sending = false
	if msg.Err == nil {
		m.notice = ""
		m.syncTranscript(true)
		return m, nil
	}

	notice := "Could not send: " + msg.Err.Error()
	if errors.Is(msg.Err, exchange.ErrExchangeFailed) {
		notice = m.exchange.Notice()
		if notice == "" {
			notice = exchange.FailureNotice
		}
		m.exchange.ClearNotice()
	}
	m.notice = notice
	m.noticeSeq++

	// Give the text back so the user can retry, unless they already typed
	// something new.
	if strings.TrimSpace(m.input.Value()) == "" {
		m.input.SetValue(msg.Text)
		m.input.CursorEnd()
	}
	m.syncTranscript(true)

	seq := m.noticeSeq
	return m, tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// =============================================================================
// CONVERSATION PICKER
// =============================================================================

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.convs.List()
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Conversations):
		m.picking = false
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.pickIndex > 0 {
			m.pickIndex--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.pickIndex < len(list)-1 {
			m.pickIndex++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.pickIndex < len(list) {
			m.convs.Select(list[m.pickIndex].ID)
		}
		m.picking = false
		m.syncTranscript(true)
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if m.pickIndex >= len(list) {
			return m, nil
		}
		title := list[m.pickIndex].Title
		m.convs.Delete(list[m.pickIndex].ID)
		if n := m.convs.Count(); m.pickIndex >= n {
			m.pickIndex = n - 1
		}
		m.syncTranscript(true)
		return m.setStatus("Deleted " + title)
	}
	return m, nil
}

// currentIndex is the position of the current conversation in List order.
func (m Model) currentIndex() int {
	id := m.convs.CurrentID()
	for i, c := range m.convs.List() {
		if c.ID == id {
			return i
		}
	}
	return 0
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// syncTranscript re-renders the current conversation into the viewport.
// The view follows new messages when it was already at the bottom.
func (m *Model) syncTranscript(toBottom bool) {
	if m.convs == nil {
		return
	}
	follow := toBottom || m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if follow {
		m.viewport.GotoBottom()
	}
}
