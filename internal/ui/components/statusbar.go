// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusSending
	StatusLoading
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSending:
		return "Sending..."
	case StatusLoading:
		return "Loading..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape for the status so it reads without color.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return "o"
	case StatusSending, StatusLoading:
		return "~"
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar represents the bottom status bar.
type StatusBar struct {
	Status    Status
	Message   string // Transient text, e.g. "Added AAPL"
	Right     string // Right-aligned info, e.g. "refresh 60s"
	Shortcuts []Shortcut
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status: StatusReady,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the status indicator.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetMessage sets the transient message. Empty clears it.
func (s *StatusBar) SetMessage(msg string) {
	s.Message = msg
}

// SetRight sets the right-aligned info text.
func (s *StatusBar) SetRight(text string) {
	s.Right = text
}

// SetShortcuts replaces the key hints.
func (s *StatusBar) SetShortcuts(shortcuts []Shortcut) {
	s.Shortcuts = shortcuts
}

// SetTheme swaps the theme after a dark/light toggle.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// View renders the status bar. Narrow terminals drop the shortcuts first,
// then the right-aligned info.
func (s *StatusBar) View() string {
	t := s.theme
	inner := s.Width - 2
	if inner < 10 {
		inner = 10
	}

	left := s.getStatusStyle().Render(s.Status.Icon() + " " + s.label())
	right := t.Muted.Render(s.Right)

	if shortcuts := s.renderShortcuts(); shortcuts != "" {
		candidate := shortcuts
		if right != "" {
			candidate += "  " + right
		}
		if lipgloss.Width(left)+1+lipgloss.Width(candidate) <= inner {
			right = candidate
		}
	}
	if lipgloss.Width(left)+1+lipgloss.Width(right) > inner {
		right = ""
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	return t.StatusBar.Width(s.Width).MaxHeight(1).Render(line)
}

func (s *StatusBar) label() string {
	if s.Message != "" {
		return s.Message
	}
	return s.Status.String()
}

func (s *StatusBar) renderShortcuts() string {
	parts := make([]string, 0, len(s.Shortcuts))
	for _, sc := range s.Shortcuts {
		parts = append(parts, s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}
	return strings.Join(parts, "  ")
}

// getStatusStyle returns the style for the current status.
func (s *StatusBar) getStatusStyle() lipgloss.Style {
	switch s.Status {
	case StatusError:
		return s.theme.ErrorText.Bold(true)
	case StatusSending, StatusLoading:
		return s.theme.Notice
	default:
		return s.theme.Up
	}
}
