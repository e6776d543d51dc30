// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewTheme_Explicit(t *testing.T) {
	dark := NewTheme(ThemeDark)
	if !dark.IsDark || dark.Name != ThemeDark {
		t.Errorf("NewTheme(dark) = %s/%v, want dark/true", dark.Name, dark.IsDark)
	}

	light := NewTheme("LIGHT")
	if light.IsDark || light.Name != ThemeLight {
		t.Errorf("NewTheme(LIGHT) = %s/%v, want light/false", light.Name, light.IsDark)
	}
}

func TestNewTheme_AutoNeverNamedAuto(t *testing.T) {
	theme := NewTheme(ThemeAuto)
	if theme.Name != ThemeDark && theme.Name != ThemeLight {
		t.Errorf("NewTheme(auto).Name = %q, want dark or light", theme.Name)
	}
}

func TestTheme_Toggled(t *testing.T) {
	theme := NewTheme(ThemeDark)
	theme.SetSize(100, 30)

	flipped := theme.Toggled()
	if flipped.IsDark {
		t.Error("Toggled() of dark should be light")
	}
	if flipped.Width != 100 || flipped.Height != 30 {
		t.Errorf("Toggled() size = %dx%d, want 100x30", flipped.Width, flipped.Height)
	}
	if !flipped.Toggled().IsDark {
		t.Error("Toggled twice should be dark again")
	}
}

func TestTheme_Color(t *testing.T) {
	c := lipgloss.AdaptiveColor{Light: "#111111", Dark: "#EEEEEE"}

	if got := NewTheme(ThemeDark).Color(c); got != lipgloss.Color("#EEEEEE") {
		t.Errorf("dark Color() = %v, want #EEEEEE", got)
	}
	if got := NewTheme(ThemeLight).Color(c); got != lipgloss.Color("#111111") {
		t.Errorf("light Color() = %v, want #111111", got)
	}
}

func TestTheme_GlamourStyle(t *testing.T) {
	if got := NewTheme(ThemeDark).GlamourStyle(); got != "dark" {
		t.Errorf("GlamourStyle() = %q, want dark", got)
	}
	if got := NewTheme(ThemeLight).GlamourStyle(); got != "light" {
		t.Errorf("GlamourStyle() = %q, want light", got)
	}
}

func TestTheme_StylesRender(t *testing.T) {
	theme := NewTheme(ThemeDark)
	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
		{"ListItemSelected", theme.ListItemSelected},
		{"StatusBar", theme.StatusBar},
	}
	for _, s := range styles {
		if s.style.Render("test") == "" {
			t.Errorf("%s style rendered empty output", s.name)
		}
	}
}
