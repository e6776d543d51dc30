// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the markyt TUI.
//
// Components are plain structs with a View method, or pure render functions
// for rows that are drawn many times per frame. They hold a *styles.Theme and
// take a new one through SetTheme when the user toggles dark/light mode.
//
// # Header
//
//	h := components.NewHeader(theme)
//	h.SetPage(components.PageFavorites)
//	h.SetConversation("AAPL outlook")
//	h.View()
//
// # Status Bar
//
//	sb := components.NewStatusBar(theme)
//	sb.SetStatus(components.StatusSending)
//	sb.SetShortcuts([]components.Shortcut{{Key: "tab", Desc: "favorites"}})
//
// # Quotes and Charts
//
// RenderQuoteRow draws one favorite with its loading, error or price state.
// RenderChart draws a ChartSeries as a sparkline with summary figures.
package components
