// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the markyt TUI: a Bubble Tea model with a chat page
// and a favorites page.
//
// # Architecture
//
// The model owns no domain state. Conversations, favorites and live quotes
// live in their stores and are read on every render:
//
//   - Chat page: transcript of the current conversation, an input line and a
//     conversation picker. Sends run as tea.Cmds through chat.Exchange, so the
//     optimistic user message shows while the request is in flight.
//   - Favorites page: the watchlist with per-symbol quote state from the
//     quotes.Scheduler, symbol entry, manual refresh and a price chart.
//
// The scheduler ticks only while the favorites page is shown. Its updates
// reach the program through a channel read by a waiting command.
//
// # Key Bindings
//
//	Tab        switch page          Ctrl+T   toggle dark/light
//	Ctrl+N     new conversation     Ctrl+O   conversation picker
//	a / d      add / remove fav     r / R    refresh one / all
//	Enter      send or open chart   p        next chart period
//	Ctrl+C     quit
package chat
