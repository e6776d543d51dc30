// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kvstore is the persistent key-value store behind the conversation
// and favorites stores.
//
// A Store maps a fixed string key to a serialized blob. Every Set replaces the
// whole value; there are no partial updates. Stores are local to one client
// and are not meant to be shared between running instances.
//
// # Backends
//
//   - file: one JSON file per key, written atomically (default)
//   - bolt: a single bbolt database file
//   - sqlite: a single SQLite database with a kv table
//   - memory: process-local map, for tests and --ephemeral runs
//
// # Usage
//
//	store, err := kvstore.Open(kvstore.BackendFile, dataDir)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	raw, ok, err := store.Get(kvstore.KeyFavorites)
package kvstore
