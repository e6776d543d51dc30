// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the markyt TUI.
//
// Colors are declared once as lipgloss.AdaptiveColor pairs. A Theme picks
// the dark or light side explicitly, so a theme chosen by the user wins over
// the terminal's background:
//
//	theme := styles.NewTheme(styles.ThemeAuto) // asks the terminal
//	theme = theme.Toggled()                    // flips dark <-> light
//	theme.Change(q.IsUp()).Render(q.FormatChange())
package styles
