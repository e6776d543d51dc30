// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kvstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openAll returns one opener per backend; each store gets its own temp dir.
func openAll() map[string]func(t *testing.T) Store {
	factories := make(map[string]func(t *testing.T) Store)
	for _, backend := range Backends {
		backend := backend
		factories[backend] = func(t *testing.T) Store {
			t.Helper()
			s, err := Open(backend, t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		}
	}
	return factories
}

func TestStore_GetMissing(t *testing.T) {
	for name, open := range openAll() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			v, ok, err := s.Get(KeyFavorites)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, v)
		})
	}
}

func TestStore_SetGetOverwrite(t *testing.T) {
	for name, open := range openAll() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, s.Set(KeyConversations, `[{"id":"a"}]`))
			require.NoError(t, s.Set(KeyConversations, `[]`))
			require.NoError(t, s.Set(KeyTheme, "dark"))

			v, ok, err := s.Get(KeyConversations)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[]`, v)

			v, _, _ = s.Get(KeyTheme)
			assert.Equal(t, "dark", v)
		})
	}
}

func TestStore_InvalidKey(t *testing.T) {
	for name, open := range openAll() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			for _, key := range []string{"", "../escape", `a\b`} {
				err := s.Set(key, "x")
				assert.True(t, errors.Is(err, ErrInvalidKey), "Set(%q) err = %v", key, err)
			}
		})
	}
}

func TestStore_DurableAcrossReopen(t *testing.T) {
	for _, backend := range []string{BackendFile, BackendBolt, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()

			s, err := Open(backend, dir)
			require.NoError(t, err)
			require.NoError(t, s.Set(KeyFavorites, `[{"symbol":"AAPL"}]`))
			require.NoError(t, s.Close())

			s, err = Open(backend, dir)
			require.NoError(t, err)
			defer s.Close()

			v, ok, err := s.Get(KeyFavorites)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"symbol":"AAPL"}]`, v)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Set(KeyTheme, "light"), ErrClosed)
}
