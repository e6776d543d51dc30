// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, favorites and quotes.
//
// # Key Types
//
//   - Conversation: one chat transcript with title and timestamps
//   - Message: a single user or assistant turn
//   - Favorite: a watched ticker symbol
//   - Quote, QuoteState: live price data for a favorite
//   - ChartSeries: price history for the chart view
//
// Types are plain values. Stores hand out clones so nothing outside the
// owning store can mutate persisted state.
package model
