// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names. They match the ui.theme config values.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Name is ThemeDark or ThemeLight, never ThemeAuto.
	Name   string
	IsDark bool

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND TABS
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderInfo  lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style

	// ==========================================================================
	// CHAT
	// ==========================================================================

	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Notice          lipgloss.Style
	Thinking        lipgloss.Style
	Spinner         lipgloss.Style
	InputContainer  lipgloss.Style
	InputPrompt     lipgloss.Style

	// ==========================================================================
	// LISTS (conversations, favorites)
	// ==========================================================================

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	ListMeta         lipgloss.Style
	Symbol           lipgloss.Style
	Price            lipgloss.Style
	Up               lipgloss.Style
	Down             lipgloss.Style
	ErrorText        lipgloss.Style
	Muted            lipgloss.Style

	// ==========================================================================
	// STATUS BAR
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// ResolveDark reports whether name selects the dark palette. Unknown names
// and ThemeAuto ask the terminal.
func ResolveDark(name string) bool {
	switch strings.ToLower(name) {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	default:
		return termenv.HasDarkBackground()
	}
}

// NewTheme creates a theme for name ("auto", "dark" or "light").
func NewTheme(name string) *Theme {
	return newTheme(ResolveDark(name))
}

func newTheme(dark bool) *Theme {
	t := &Theme{Name: ThemeLight, IsDark: dark}
	if dark {
		t.Name = ThemeDark
	}
	t.initStyles()
	return t
}

// Toggled returns the opposite theme with the same size.
func (t *Theme) Toggled() *Theme {
	n := newTheme(!t.IsDark)
	n.SetSize(t.Width, t.Height)
	return n
}

// Color resolves an adaptive color to this theme's side.
func (t *Theme) Color(c lipgloss.AdaptiveColor) lipgloss.Color {
	if t.IsDark {
		return lipgloss.Color(c.Dark)
	}
	return lipgloss.Color(c.Light)
}

// GlamourStyle names the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// SetSize records the terminal size.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	c := t.Color

	// Header
	t.Header = lipgloss.NewStyle().
		Background(c(SurfaceDim)).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(c(Cyan))

	t.HeaderInfo = lipgloss.NewStyle().
		Foreground(c(TextSecondary)).
		Italic(true)

	t.Tab = lipgloss.NewStyle().
		Foreground(c(TextMuted)).
		Padding(0, 1)

	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(c(TextInverse)).
		Background(c(Purple)).
		Padding(0, 1)

	// Chat
	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(c(Cyan))

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(c(Purple))

	t.UserBubble = lipgloss.NewStyle().
		Foreground(c(UserBubbleFg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(c(UserBubbleBorder)).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(c(AssistantBubbleFg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(c(AssistantBubbleBorder)).
		Padding(0, 1).
		MarginRight(4)

	t.Notice = lipgloss.NewStyle().
		Foreground(c(Amber)).
		Bold(true)

	t.Thinking = lipgloss.NewStyle().
		Foreground(c(TextSecondary)).
		Italic(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(c(Purple))

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(c(Overlay)).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(c(Cyan)).
		Bold(true)

	// Lists
	t.ListItem = lipgloss.NewStyle().
		Foreground(c(TextPrimary)).
		PaddingLeft(2)

	t.ListItemSelected = lipgloss.NewStyle().
		Foreground(c(TextPrimary)).
		Background(c(SelectionBg)).
		Bold(true).
		PaddingLeft(2)

	t.ListMeta = lipgloss.NewStyle().
		Foreground(c(TextMuted))

	t.Symbol = lipgloss.NewStyle().
		Bold(true).
		Foreground(c(Cyan))

	t.Price = lipgloss.NewStyle().
		Foreground(c(TextPrimary))

	t.Up = lipgloss.NewStyle().
		Foreground(c(Emerald))

	t.Down = lipgloss.NewStyle().
		Foreground(c(Rose))

	t.ErrorText = lipgloss.NewStyle().
		Foreground(c(Rose))

	t.Muted = lipgloss.NewStyle().
		Foreground(c(TextMuted))

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(c(SurfaceDim)).
		Foreground(c(TextSecondary)).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(c(Cyan)).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(c(TextMuted))
}

// Change picks the style for a price move.
func (t *Theme) Change(up bool) lipgloss.Style {
	if up {
		return t.Up
	}
	return t.Down
}
