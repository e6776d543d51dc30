// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage holds the client-side state for Markyt: the conversation
// history and the favorites watchlist.
//
// Both stores sit on a kvstore.Store and rewrite their whole collection on
// every mutation. Loading never fails: missing or corrupt data is logged and
// replaced with a fresh state.
//
// # Key Types
//
//   - ConversationStore: ordered conversations plus the current selection
//   - FavoritesStore: at most model.MaxFavorites unique, normalized symbols
//   - Result: outcome of a favorites Add or Toggle
//
// # Usage
//
//	kv, _ := kvstore.Open(kvstore.BackendFile, dataDir)
//	convs := storage.NewConversationStore(kv)
//	favs := storage.NewFavoritesStore(kv)
//
//	if res := favs.Add("aapl "); !res.OK {
//		fmt.Println(res.Reason)
//	}
package storage
