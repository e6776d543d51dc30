// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/util"
)

const (
	// PlaceholderTitle is the title of a conversation until its first user
	// message is known.
	PlaceholderTitle = "New conversation"

	// TitleMaxRunes is how much of the first user message becomes the title.
	TitleMaxRunes = 50
)

// legacyPlaceholders are placeholder titles written by earlier clients that
// share the same storage format.
var legacyPlaceholders = map[string]bool{
	"Nueva":              true,
	"Nueva conversación": true,
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds one chat transcript and its metadata.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// NewConversation creates an empty conversation with a fresh ID and the
// placeholder title.
func NewConversation(now time.Time) Conversation {
	return Conversation{
		ID:        uuid.NewString(),
		Title:     PlaceholderTitle,
		Messages:  []Message{},
		CreatedAt: now,
	}
}

// HasPlaceholderTitle reports whether the title is still waiting to be derived.
func (c Conversation) HasPlaceholderTitle() bool {
	return c.Title == "" || c.Title == PlaceholderTitle || legacyPlaceholders[c.Title]
}

// FirstUserMessage returns the first user-authored message, if any.
func (c Conversation) FirstUserMessage() (Message, bool) {
	return firstUserMessage(c.Messages)
}

// DeriveTitle returns the title a conversation with the given messages should
// carry: the current title once it has been set, otherwise the first user
// message cut to TitleMaxRunes.
func (c Conversation) DeriveTitle(messages []Message) string {
	if !c.HasPlaceholderTitle() || len(messages) == 0 {
		return c.Title
	}
	first, ok := firstUserMessage(messages)
	if !ok {
		return c.Title
	}
	return util.Ellipsize(first.Content, TitleMaxRunes)
}

// Clone returns a deep copy so callers can never alias store-owned messages.
func (c Conversation) Clone() Conversation {
	c.Messages = CloneMessages(c.Messages)
	return c
}

// Preview is a one-line summary for list views.
func (c Conversation) Preview(maxRunes int) string {
	if len(c.Messages) == 0 {
		return "Empty conversation"
	}
	msg, ok := c.FirstUserMessage()
	if !ok {
		msg = c.Messages[0]
	}
	return util.TruncateRunes(util.SingleLine(msg.Content), maxRunes)
}

func firstUserMessage(msgs []Message) (Message, bool) {
	for _, m := range msgs {
		if m.Role == RoleUser {
			return m, true
		}
	}
	return Message{}, false
}
