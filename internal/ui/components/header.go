// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT - Title bar with markyt branding and page tabs
// =============================================================================

// Page identifies the top-level view.
type Page int

const (
	PageChat Page = iota
	PageFavorites
)

// Pages lists the tabs in display order.
var Pages = []Page{PageChat, PageFavorites}

// String returns the tab label for the page.
func (p Page) String() string {
	switch p {
	case PageChat:
		return "Chat"
	case PageFavorites:
		return "Favorites"
	default:
		return "Unknown"
	}
}

// Header represents the title bar component.
type Header struct {
	Title        string // Brand (default: "markyt")
	Page         Page   // Active tab
	Conversation string // Current conversation title, shown on the chat page
	Favorites    int    // Favorite count, shown on the favorites page
	Width        int    // Available width
	theme        *styles.Theme
}

// NewHeader creates a new Header component with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "markyt",
		Page:  PageChat,
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetPage updates the active tab.
func (h *Header) SetPage(p Page) {
	h.Page = p
}

// SetConversation updates the conversation title.
func (h *Header) SetConversation(title string) {
	h.Conversation = title
}

// SetFavorites updates the favorite count.
func (h *Header) SetFavorites(n int) {
	h.Favorites = n
}

// SetTheme swaps the theme after a dark/light toggle.
func (h *Header) SetTheme(theme *styles.Theme) {
	h.theme = theme
}

// View renders the header on a single line: brand, tabs, then page info
// right-aligned in whatever room is left.
func (h *Header) View() string {
	t := h.theme
	width := h.Width
	if width < 20 {
		width = 20
	}

	left := t.HeaderBrand.Render("< "+h.Title+" >") + " " + h.renderTabs()
	info := h.info()

	// Header has one cell of padding on each side.
	room := width - 2 - lipgloss.Width(left) - 1
	var right string
	if room > 3 && info != "" {
		right = t.HeaderInfo.Render(runewidth.Truncate(info, room, "..."))
	}

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	return t.Header.Width(width).MaxHeight(1).Render(line)
}

func (h *Header) renderTabs() string {
	tabs := make([]string, 0, len(Pages))
	for _, p := range Pages {
		if p == h.Page {
			tabs = append(tabs, h.theme.TabActive.Render(p.String()))
		} else {
			tabs = append(tabs, h.theme.Tab.Render(p.String()))
		}
	}
	return strings.Join(tabs, "")
}

func (h *Header) info() string {
	switch h.Page {
	case PageChat:
		return h.Conversation
	case PageFavorites:
		switch h.Favorites {
		case 0:
			return "no favorites"
		case 1:
			return "1 favorite"
		default:
			return itoa(h.Favorites) + " favorites"
		}
	}
	return ""
}
