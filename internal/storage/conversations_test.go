// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/kvstore"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeClock returns increasing timestamps one second apart.
func fakeClock() func() time.Time {
	t := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// failingStore accepts reads and rejects every write.
type failingStore struct {
	kvstore.Store
}

func (failingStore) Set(key, value string) error {
	return errors.New("disk full")
}

// unreadableStore fails every read and passes writes through.
type unreadableStore struct {
	kvstore.Store
}

func (unreadableStore) Get(key string) (string, bool, error) {
	return "", false, errors.New("input/output error")
}

func newConversationStore(t *testing.T) (*ConversationStore, kvstore.Store) {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	return NewConversationStore(kv, WithClock(fakeClock())), kv
}

func storedConversations(t *testing.T, kv kvstore.Store) []model.Conversation {
	t.Helper()
	raw, ok, err := kv.Get(kvstore.KeyConversations)
	require.NoError(t, err)
	require.True(t, ok, "conversations not persisted")

	var convs []model.Conversation
	require.NoError(t, json.Unmarshal([]byte(raw), &convs))
	return convs
}

// =============================================================================
// LOAD
// =============================================================================

func TestNewConversationStore_Empty(t *testing.T) {
	store, kv := newConversationStore(t)

	if got := store.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
	cur, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, model.PlaceholderTitle, cur.Title)
	assert.Empty(t, cur.Messages)
	assert.Equal(t, cur.ID, store.CurrentID())

	persisted := storedConversations(t, kv)
	require.Len(t, persisted, 1)
	assert.Equal(t, cur.ID, persisted[0].ID)
}

func TestNewConversationStore_RecoversFromBadData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", "{not json"},
		{"empty list", "[]"},
		{"wrong shape", `{"id":"x"}`},
		{"entries without ids", `[{"title":"orphan"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := kvstore.NewMemoryStore()
			require.NoError(t, kv.Set(kvstore.KeyConversations, tt.raw))

			store := NewConversationStore(kv)

			if got := store.Count(); got != 1 {
				t.Errorf("Count() = %d, want 1", got)
			}
			cur, ok := store.Current()
			require.True(t, ok)
			assert.Equal(t, model.PlaceholderTitle, cur.Title)
			assert.Empty(t, cur.Messages)
		})
	}
}

func TestNewConversationStore_Reload(t *testing.T) {
	store, kv := newConversationStore(t)
	first := store.CurrentID()
	second := store.Create()
	store.ReplaceMessages([]model.Message{model.NewUserMessage("What is AAPL?")})
	store.Select(first)

	reloaded := NewConversationStore(kv)

	list := reloaded.List()
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
	assert.Equal(t, "What is AAPL?", list[0].Title)

	// The selection is not persisted; the most recent conversation wins.
	assert.Equal(t, second, reloaded.CurrentID())
}

func TestNewConversationStore_DropsDuplicateIDs(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(kvstore.KeyConversations,
		`[{"id":"a","title":"one","messages":null},{"id":"a","title":"two"},{"id":"b","title":"three"}]`))

	store := NewConversationStore(kv)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Title)
	assert.NotNil(t, list[0].Messages)
	assert.Equal(t, "b", list[1].ID)
}

// =============================================================================
// CREATE / SELECT / DELETE
// =============================================================================

func TestConversationStore_Create(t *testing.T) {
	store, kv := newConversationStore(t)
	initial := store.CurrentID()

	id := store.Create()

	assert.NotEmpty(t, id)
	assert.NotEqual(t, initial, id)
	assert.Equal(t, id, store.CurrentID())

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, id, list[0].ID, "new conversation should be first")
	assert.Equal(t, model.PlaceholderTitle, list[0].Title)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	assert.Len(t, storedConversations(t, kv), 2)
}

func TestConversationStore_Select(t *testing.T) {
	store, _ := newConversationStore(t)
	first := store.CurrentID()
	second := store.Create()

	store.Select(first)
	assert.Equal(t, first, store.CurrentID())

	store.Select("does-not-exist")
	assert.Equal(t, first, store.CurrentID(), "unknown id must be ignored")

	store.Select(second)
	assert.Equal(t, second, store.CurrentID())
}

func TestConversationStore_DeleteCurrentSelectsMostRecent(t *testing.T) {
	store, _ := newConversationStore(t)
	a := store.CurrentID()
	b := store.Create()
	c := store.Create()

	// List order is c, b, a.
	store.Select(b)
	require.True(t, store.Delete(b))

	assert.Equal(t, c, store.CurrentID())
	ids := []string{}
	for _, conv := range store.List() {
		ids = append(ids, conv.ID)
	}
	assert.Equal(t, []string{c, a}, ids)
}

func TestConversationStore_DeleteOtherKeepsCurrent(t *testing.T) {
	store, _ := newConversationStore(t)
	a := store.CurrentID()
	b := store.Create()

	require.True(t, store.Delete(a))
	assert.Equal(t, b, store.CurrentID())
	assert.Equal(t, 1, store.Count())
}

func TestConversationStore_DeleteLastSynthesizesOne(t *testing.T) {
	store, kv := newConversationStore(t)
	only := store.CurrentID()

	require.True(t, store.Delete(only))

	if got := store.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
	cur, ok := store.Current()
	require.True(t, ok)
	assert.NotEqual(t, only, cur.ID)
	assert.Empty(t, cur.Messages)
	assert.Equal(t, model.PlaceholderTitle, cur.Title)

	persisted := storedConversations(t, kv)
	require.Len(t, persisted, 1)
	assert.Equal(t, cur.ID, persisted[0].ID)
}

func TestConversationStore_DeleteUnknown(t *testing.T) {
	store, _ := newConversationStore(t)
	before := store.List()

	assert.False(t, store.Delete("nope"))
	assert.Equal(t, before, store.List())
}

func TestConversationStore_Clear(t *testing.T) {
	store, kv := newConversationStore(t)
	store.Create()
	store.Create()

	id := store.Clear()

	assert.Equal(t, 1, store.Count())
	assert.Equal(t, id, store.CurrentID())
	assert.Len(t, storedConversations(t, kv), 1)
}

// =============================================================================
// MESSAGES AND TITLES
// =============================================================================

func TestConversationStore_ReplaceMessagesDerivesTitle(t *testing.T) {
	store, _ := newConversationStore(t)
	before, _ := store.Current()

	store.ReplaceMessages([]model.Message{
		model.NewUserMessage("How is Tesla doing?"),
		model.NewAssistantMessage("Up 3% today."),
	})

	cur, _ := store.Current()
	assert.Equal(t, "How is Tesla doing?", cur.Title)
	assert.Len(t, cur.Messages, 2)
	assert.True(t, cur.UpdatedAt.After(before.CreatedAt))
}

func TestConversationStore_TitleTruncation(t *testing.T) {
	store, _ := newConversationStore(t)
	long := strings.Repeat("á", 60)

	store.ReplaceMessages([]model.Message{model.NewUserMessage(long)})

	cur, _ := store.Current()
	want := strings.Repeat("á", 50) + "..."
	if cur.Title != want {
		t.Errorf("Title = %q, want %q", cur.Title, want)
	}
	assert.Equal(t, 53, len([]rune(cur.Title)))
}

func TestConversationStore_TitleDerivedOnce(t *testing.T) {
	store, _ := newConversationStore(t)
	first := []model.Message{model.NewUserMessage("first question")}
	store.ReplaceMessages(first)

	store.ReplaceMessages(append(first,
		model.NewAssistantMessage("answer"),
		model.NewUserMessage("second question"),
	))
	cur, _ := store.Current()
	assert.Equal(t, "first question", cur.Title)

	// Removing every message keeps the derived title.
	store.ReplaceMessages([]model.Message{})
	cur, _ = store.Current()
	assert.Equal(t, "first question", cur.Title)
	assert.Empty(t, cur.Messages)
}

func TestConversationStore_NoTitleWithoutUserMessage(t *testing.T) {
	store, _ := newConversationStore(t)

	store.ReplaceMessages([]model.Message{model.NewAssistantMessage("hello")})

	cur, _ := store.Current()
	assert.Equal(t, model.PlaceholderTitle, cur.Title)
}

func TestConversationStore_LegacyPlaceholderIsReplaced(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(kvstore.KeyConversations,
		`[{"id":"old","title":"Nueva conversación","messages":[],"createdAt":"2024-05-01T00:00:00Z"}]`))
	store := NewConversationStore(kv)

	store.ReplaceMessages([]model.Message{model.NewUserMessage("precio de AAPL")})

	cur, _ := store.Current()
	assert.Equal(t, "precio de AAPL", cur.Title)
}

func TestConversationStore_ReplaceMessagesFor(t *testing.T) {
	store, _ := newConversationStore(t)
	background := store.CurrentID()
	foreground := store.Create()

	ok := store.ReplaceMessagesFor(background, []model.Message{model.NewUserMessage("late reply")})
	require.True(t, ok)

	assert.Equal(t, foreground, store.CurrentID(), "selection must not move")
	bg, found := store.Get(background)
	require.True(t, found)
	assert.Equal(t, "late reply", bg.Title)

	fg, _ := store.Get(foreground)
	assert.Empty(t, fg.Messages)

	assert.False(t, store.ReplaceMessagesFor("gone", nil))
}

func TestConversationStore_SnapshotsAreCopies(t *testing.T) {
	store, _ := newConversationStore(t)
	msgs := []model.Message{model.NewUserMessage("original")}
	store.ReplaceMessages(msgs)

	msgs[0].Content = "mutated by caller"
	list := store.List()
	list[0].Messages[0].Content = "mutated snapshot"

	cur, _ := store.Current()
	assert.Equal(t, "original", cur.Messages[0].Content)
}

// =============================================================================
// PERSISTENCE FAILURES
// =============================================================================

func TestNewConversationStore_ReadFailureKeepsSavedHistory(t *testing.T) {
	store, kv := newConversationStore(t)
	store.ReplaceMessages([]model.Message{model.NewUserMessage("first")})
	store.Create()
	store.ReplaceMessages([]model.Message{model.NewUserMessage("second")})
	store.Create()
	saved, ok, err := kv.Get(kvstore.KeyConversations)
	require.NoError(t, err)
	require.True(t, ok)

	reopened := NewConversationStore(unreadableStore{kv})
	assert.True(t, reopened.ReadOnly())
	assert.Equal(t, 1, reopened.Count())

	reopened.Create()
	reopened.ReplaceMessages([]model.Message{model.NewUserMessage("unsaved")})
	reopened.Clear()

	after, ok, err := kv.Get(kvstore.KeyConversations)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, saved, after)
	assert.Len(t, storedConversations(t, kv), 3)
	assert.False(t, store.ReadOnly())
}

func TestConversationStore_WriteFailureKeepsMemoryState(t *testing.T) {
	store := NewConversationStore(failingStore{kvstore.NewMemoryStore()})

	id := store.Create()
	store.ReplaceMessages([]model.Message{model.NewUserMessage("still here")})

	assert.Equal(t, 2, store.Count())
	cur, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, id, cur.ID)
	assert.Equal(t, "still here", cur.Title)
}
