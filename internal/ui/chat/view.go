// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/ui/components"
)

// =============================================================================
// MAIN VIEW
// =============================================================================

// render lays out header, page body and status bar to fill the terminal.
func (m Model) render() string {
	m.refreshChrome()

	bodyHeight := max(1, m.height-2)
	var body string
	if m.page == components.PageFavorites {
		body = m.renderFavorites(bodyHeight)
	} else {
		body = m.renderChatPage(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		body,
		m.status.View(),
	)
}

// fit pads or cuts s to exactly height lines.
func fit(s string, height int) string {
	return lipgloss.NewStyle().Height(height).MaxHeight(height).Render(s)
}

// =============================================================================
// CHAT PAGE
// =============================================================================

func (m Model) renderChatPage(height int) string {
	if m.picking {
		return fit(m.renderPicker(height), height)
	}

	notice := ""
	if m.notice != "" {
		notice = m.theme.Notice.Render("! " + m.notice)
	}
	input := m.theme.InputContainer.Width(m.width).Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		fit(m.viewport.View(), m.viewport.Height),
		notice,
		input,
	)
}

// renderTranscript draws every message of the current conversation, plus
// the thinking indicator while a reply is pending.
func (m Model) renderTranscript() string {
	conv, ok := m.convs.Current()
	if !ok || (len(conv.Messages) == 0 && !m.sending) {
		return m.renderEmptyState()
	}

	parts := make([]string, 0, len(conv.Messages)+1)
	for _, msg := range conv.Messages {
		parts = append(parts, m.renderMessage(msg))
	}
	if m.sending {
		parts = append(parts, m.spinner.View()+" "+m.theme.Thinking.Render("Markyt is thinking..."))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg model.Message) string {
	w := m.bubbleWidth()
	if msg.Role == model.RoleUser {
		label := m.theme.UserLabel.Render(msg.Role.DisplayName())
		bubble := m.theme.UserBubble.Width(w).Render(msg.Content)
		return lipgloss.JoinVertical(lipgloss.Left, "    "+label, bubble)
	}
	label := m.theme.AssistantLabel.Render(msg.Role.DisplayName())
	bubble := m.theme.AssistantBubble.Width(w).Render(m.renderMarkdown(msg.Content))
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

// renderMarkdown renders assistant text with glamour, caching by content.
// Plain text is returned when markdown is off or rendering fails.
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	if out, ok := m.rendered[content]; ok {
		return out
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	out = strings.Trim(out, "\n")
	m.rendered[content] = out
	return out
}

func (m Model) renderEmptyState() string {
	lines := []string{
		m.theme.HeaderBrand.Render("Welcome to markyt"),
		"",
		m.theme.Muted.Render("Ask about companies, prices and market news."),
		m.theme.Muted.Render("Try: \"Compare AAPL and MSFT\" or \"What moved Coca Cola today?\""),
		"",
		m.theme.Muted.Render("tab favorites  ctrl+n new chat  ctrl+o history"),
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

// renderPicker lists conversations, newest first, around the cursor.
func (m Model) renderPicker(height int) string {
	list := m.convs.List()
	currentID := m.convs.CurrentID()

	lines := []string{m.theme.HeaderBrand.Render("  Conversations"), ""}
	start, end := window(len(list), m.pickIndex, height-len(lines))
	now := time.Now()
	for i := start; i < end; i++ {
		c := list[i]
		marker := "  "
		if c.ID == currentID {
			marker = "* "
		}
		meta := m.theme.ListMeta.Render(fmt.Sprintf("  %d msgs, %s", len(c.Messages), formatAge(now.Sub(c.UpdatedAt))))
		style := m.theme.ListItem
		if i == m.pickIndex {
			style = m.theme.ListItemSelected
		}
		// ListItem styles pad two cells on the left.
		row := ansi.Truncate(marker+c.Title+meta, max(1, m.width-2), "...")
		lines = append(lines, style.Width(m.width).Render(row))
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// FAVORITES PAGE
// =============================================================================

func (m Model) renderFavorites(height int) string {
	if m.chartSymbol != "" {
		return fit(m.renderChart(), height)
	}

	var lines []string
	if m.adding {
		lines = append(lines, m.theme.InputContainer.Width(m.width).Render(m.favInput.View()))
	}

	symbols := m.favorites.Symbols()
	if len(symbols) == 0 {
		lines = append(lines, "",
			m.theme.Muted.Render("  No favorites yet. Press a to add a symbol or company name."))
		return fit(strings.Join(lines, "\n"), height)
	}

	lines = append(lines, "")
	start, end := window(len(symbols), m.favIndex, height-len(lines))
	for i := start; i < end; i++ {
		sym := symbols[i]
		lines = append(lines, components.RenderQuoteRow(m.theme, sym, m.quoteStates[sym], i == m.favIndex, m.width))
	}
	return fit(strings.Join(lines, "\n"), height)
}

func (m Model) renderChart() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.renderPeriods())
	b.WriteString("\n\n")

	switch {
	case m.chartLoading:
		b.WriteString("  " + m.spinner.View() + " " + m.theme.Thinking.Render("Loading "+m.chartSymbol+"..."))
	case m.chartErr != "":
		b.WriteString("  " + m.theme.ErrorText.Render(m.chartErr))
	case m.chart != nil:
		chart := components.RenderChart(m.theme, *m.chart, m.width-4)
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(chart))
	}
	return b.String()
}

func (m Model) renderPeriods() string {
	parts := make([]string, 0, len(model.ChartPeriods))
	for _, p := range model.ChartPeriods {
		if p == m.chartPeriod {
			parts = append(parts, m.theme.TabActive.Render(p))
		} else {
			parts = append(parts, m.theme.Tab.Render(p))
		}
	}
	return "  " + strings.Join(parts, "")
}

// =============================================================================
// HELPERS
// =============================================================================

// window returns the [start, end) slice of n rows that shows cursor within
// room rows.
func window(n, cursor, room int) (int, int) {
	if room < 1 {
		room = 1
	}
	if n <= room {
		return 0, n
	}
	start := cursor - room/2
	start = max(0, min(start, n-room))
	return start, start + room
}

// formatAge renders a duration as a short relative time.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
