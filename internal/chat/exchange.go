// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat runs one user turn against a completion service: the user
// message is shown immediately and either joined by the reply or rolled back
// when the request fails.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/storage"
)

// FailureNotice is shown to the user after a failed exchange.
const FailureNotice = "We could not process your request. Please try again."

var (
	// ErrEmptyMessage is returned for blank input. Nothing is sent.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNoConversation is returned when no conversation is selected.
	ErrNoConversation = errors.New("no conversation selected")

	// ErrExchangeFailed wraps the completion error after a rollback.
	ErrExchangeFailed = errors.New("message could not be sent")
)

// Completer produces the assistant reply for message given the prior
// transcript. history never includes message itself.
type Completer interface {
	Complete(ctx context.Context, message string, history []model.Message) (string, error)
}

// State is the phase of the current turn.
type State int

const (
	StateIdle State = iota
	StateSending
	StateSuccess
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSending:
		return "sending"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Conversations is the part of storage.ConversationStore the exchange uses.
type Conversations interface {
	Current() (model.Conversation, bool)
	ReplaceMessagesFor(id string, messages []model.Message) bool
}

var _ Conversations = (*storage.ConversationStore)(nil)

// =============================================================================
// EXCHANGE
// =============================================================================

// Exchange sends user messages and writes the outcome back to the
// conversation they were typed into. It is safe for concurrent use;
// overlapping submits are not serialized and the last one to finish wins.
type Exchange struct {
	convs     Conversations
	completer Completer

	mu       sync.Mutex
	state    State
	notice   string
	inFlight int
}

// NewExchange creates an exchange over convs using completer for replies.
func NewExchange(convs Conversations, completer Completer) *Exchange {
	return &Exchange{convs: convs, completer: completer}
}

// Submit runs one turn. The user message is appended to the current
// conversation before the request is made. On success the reply is appended
// after it; on failure the conversation is restored to its prior messages, a
// notice is recorded and an error wrapping ErrExchangeFailed is returned so
// the caller can keep the input text.
func (e *Exchange) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	conv, ok := e.convs.Current()
	if !ok {
		return ErrNoConversation
	}

	e.begin()

	snapshot := conv.Messages
	optimistic := append(model.CloneMessages(snapshot), model.NewUserMessage(text))
	e.convs.ReplaceMessagesFor(conv.ID, optimistic)

	reply, err := e.completer.Complete(ctx, text, model.CloneMessages(snapshot))
	if err != nil {
		log.Printf("WARNING: chat exchange failed for conversation %s: %v", conv.ID, err)
		e.convs.ReplaceMessagesFor(conv.ID, snapshot)
		e.finish(StateFailed, FailureNotice)
		return fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	e.convs.ReplaceMessagesFor(conv.ID, append(optimistic, model.NewAssistantMessage(reply)))
	e.finish(StateSuccess, "")
	return nil
}

func (e *Exchange) begin() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight++
	e.state = StateSending
	e.notice = ""
}

func (e *Exchange) finish(state State, notice string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight--
	if e.inFlight > 0 {
		state = StateSending
	}
	e.state = state
	if notice != "" {
		e.notice = notice
	}
}

// State returns the phase of the most recent turn.
func (e *Exchange) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Sending reports whether a request is in flight.
func (e *Exchange) Sending() bool {
	return e.State() == StateSending
}

// Notice returns the transient failure notice, if any.
func (e *Exchange) Notice() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notice
}

// ClearNotice dismisses the notice and returns a finished exchange to idle.
func (e *Exchange) ClearNotice() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notice = ""
	if e.state != StateSending {
		e.state = StateIdle
	}
}
