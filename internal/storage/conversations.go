// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/kvstore"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore owns every conversation and the current selection.
//
// Conversations are kept most-recently-created first. Once the store has been
// constructed there is always exactly one current conversation. Every
// mutation rewrites the whole collection to the key-value store.
//
// ConversationStore is safe for concurrent use.
type ConversationStore struct {
	mu            sync.Mutex
	kv            kvstore.Store
	now           func() time.Time
	conversations []model.Conversation
	currentID     string

	// readOnly is set when the saved collection could not be read. Nothing
	// is written back, so the saved history survives the session.
	readOnly bool
}

// NewConversationStore loads the collection from kv. Missing, empty or
// undecodable data yields a single fresh conversation; decode failures are
// logged, never returned. When kv cannot be read at all the store starts
// with a fresh conversation and never persists.
func NewConversationStore(kv kvstore.Store, opts ...Option) *ConversationStore {
	o := buildOptions(opts)
	s := &ConversationStore{kv: kv, now: o.now}
	s.load()
	return s
}

func (s *ConversationStore) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(kvstore.KeyConversations)
	if err != nil {
		log.Printf("WARNING: failed to read conversations: %v; changes will not be saved", err)
		s.readOnly = true
		ok = false
	}

	var stored []model.Conversation
	if ok {
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			log.Printf("WARNING: %v (%s): %v; starting with a new conversation", ErrCorrupt, kvstore.KeyConversations, err)
			stored = nil
		}
	}

	s.conversations = sanitizeConversations(stored)
	if len(s.conversations) == 0 {
		s.conversations = []model.Conversation{model.NewConversation(s.now())}
		s.persistLocked()
	}
	s.currentID = s.conversations[0].ID
}

// sanitizeConversations drops entries without an ID and repeated IDs, and
// normalizes nil message lists.
func sanitizeConversations(in []model.Conversation) []model.Conversation {
	out := make([]model.Conversation, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		if c.Messages == nil {
			c.Messages = []model.Message{}
		}
		out = append(out, c)
	}
	return out
}

// =============================================================================
// QUERIES
// =============================================================================

// List returns a snapshot of all conversations, most recently created first.
func (s *ConversationStore) List() []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = c.Clone()
	}
	return out
}

// Count returns the number of conversations.
func (s *ConversationStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// Current returns the selected conversation. ok is false only when the
// collection is empty, which callers should render as "no conversation".
func (s *ConversationStore) Current() (model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(s.currentID); i >= 0 {
		return s.conversations[i].Clone(), true
	}
	return model.Conversation{}, false
}

// ReadOnly reports whether the saved collection was unreadable, in which
// case changes are kept in memory only.
func (s *ConversationStore) ReadOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readOnly
}

// CurrentID returns the ID of the selected conversation.
func (s *ConversationStore) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Get returns the conversation with the given ID.
func (s *ConversationStore) Get(id string) (model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.conversations[i].Clone(), true
	}
	return model.Conversation{}, false
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create inserts a new empty conversation at the front, selects it and
// returns its ID.
func (s *ConversationStore) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *ConversationStore) createLocked() string {
	conv := model.NewConversation(s.now())
	s.conversations = append([]model.Conversation{conv}, s.conversations...)
	s.currentID = conv.ID
	s.persistLocked()
	return conv.ID
}

// Select makes id the current conversation. Unknown IDs are ignored.
func (s *ConversationStore) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) >= 0 {
		s.currentID = id
	}
}

// ReplaceMessages overwrites the current conversation's messages.
// See ReplaceMessagesFor.
func (s *ConversationStore) ReplaceMessages(messages []model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(s.currentID, messages)
}

// ReplaceMessagesFor overwrites the messages of conversation id wholesale.
// While the conversation still has its placeholder title, the title is
// derived from the first user message. UpdatedAt is refreshed. It reports
// false, changing nothing, when id does not exist.
func (s *ConversationStore) ReplaceMessagesFor(id string, messages []model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(id, messages)
}

func (s *ConversationStore) replaceLocked(id string, messages []model.Message) bool {
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	conv := &s.conversations[i]
	conv.Title = conv.DeriveTitle(messages)
	conv.Messages = model.CloneMessages(messages)
	conv.UpdatedAt = s.now()
	s.persistLocked()
	return true
}

// Delete removes conversation id. If it was current, the most recent
// remaining conversation becomes current, or a new empty one is created when
// none remain. Unknown IDs are ignored and reported as false.
func (s *ConversationStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.conversations = append(s.conversations[:i:i], s.conversations[i+1:]...)

	if id == s.currentID {
		if len(s.conversations) > 0 {
			s.currentID = s.conversations[0].ID
		} else {
			// createLocked persists.
			s.createLocked()
			return true
		}
	}
	s.persistLocked()
	return true
}

// Clear deletes every conversation and starts over with one empty one.
func (s *ConversationStore) Clear() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = nil
	return s.createLocked()
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *ConversationStore) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the whole collection. Failures are logged; the
// in-memory state stays authoritative and the next mutation retries.
func (s *ConversationStore) persistLocked() {
	if s.readOnly {
		return
	}
	data, err := json.Marshal(s.conversations)
	if err != nil {
		log.Printf("ERROR: failed to encode conversations: %v", err)
		return
	}
	if err := s.kv.Set(kvstore.KeyConversations, string(data)); err != nil {
		log.Printf("ERROR: %v", fmt.Errorf("failed to save conversations: %w", err))
	}
}
