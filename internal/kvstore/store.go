// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kvstore

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Keys used by markyt.
const (
	KeyConversations = "markyt_conversations"
	KeyFavorites     = "markyt_favorites"
	KeyTheme         = "markyt_theme"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists every backend name, for validation and help text.
var Backends = []string{BackendFile, BackendBolt, BackendSQLite, BackendMemory}

var (
	// ErrInvalidKey is returned for keys that cannot be stored safely.
	ErrInvalidKey = errors.New("invalid key")

	// ErrUnknownBackend is returned by Open for unsupported backend names.
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")
)

// Store is a durable string-to-string map.
type Store interface {
	// Get returns the value stored under key. ok is false when nothing was
	// ever stored there; that is not an error.
	Get(key string) (value string, ok bool, err error)

	// Set replaces the value stored under key.
	Set(key, value string) error

	// Close releases the underlying resources.
	Close() error
}

// Open creates the store for backend, rooted in dir.
func Open(backend, dir string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendFile:
		return NewFileStore(dir)
	case BackendBolt:
		return NewBoltStore(filepath.Join(dir, "markyt.bolt"))
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "markyt.db"))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// validateKey rejects keys that are empty or could escape a directory.
func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
