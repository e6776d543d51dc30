// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/kvstore"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/symbol"
)

// =============================================================================
// RESULTS
// =============================================================================

// Action is what a favorites mutation did.
type Action int

const (
	ActionNone Action = iota
	ActionAdded
	ActionRemoved
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionAdded:
		return "added"
	case ActionRemoved:
		return "removed"
	default:
		return "none"
	}
}

// Reason explains why a favorites mutation was refused.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonInvalidSymbol
	ReasonDuplicate
	ReasonCapacity
)

// Err returns the sentinel error for the reason, or nil.
func (r Reason) Err() error {
	switch r {
	case ReasonInvalidSymbol:
		return ErrInvalidSymbol
	case ReasonDuplicate:
		return ErrDuplicate
	case ReasonCapacity:
		return ErrCapacity
	default:
		return nil
	}
}

// String returns a user-facing description of the reason.
func (r Reason) String() string {
	if err := r.Err(); err != nil {
		return err.Error()
	}
	return ""
}

// Result is the outcome of Add or Toggle.
type Result struct {
	OK     bool
	Action Action
	Symbol string // normalized symbol
	Reason Reason
}

// Err returns nil on success and the reason's sentinel error otherwise.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return r.Reason.Err()
}

// =============================================================================
// FAVORITES STORE
// =============================================================================

// FavoritesStore is the bounded, deduplicated watchlist of ticker symbols.
// Symbols are kept in insertion order. FavoritesStore is safe for
// concurrent use.
type FavoritesStore struct {
	mu        sync.Mutex
	kv        kvstore.Store
	now       func() time.Time
	favorites []model.Favorite
	listeners []func(symbols []string)
	readOnly  bool

	// notifyMu orders notifications so listeners see sets in mutation order.
	notifyMu sync.Mutex
}

// NewFavoritesStore loads the watchlist from kv. Missing or undecodable data
// yields an empty list; decode failures are logged, never returned. When kv
// cannot be read at all the list starts empty and is never persisted.
func NewFavoritesStore(kv kvstore.Store, opts ...Option) *FavoritesStore {
	o := buildOptions(opts)
	s := &FavoritesStore{kv: kv, now: o.now}
	s.load()
	return s
}

func (s *FavoritesStore) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(kvstore.KeyFavorites)
	if err != nil {
		log.Printf("WARNING: failed to read favorites: %v; changes will not be saved", err)
		s.readOnly = true
		return
	}
	if !ok {
		return
	}

	var stored []model.Favorite
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Printf("WARNING: %v (%s): %v; starting with no favorites", ErrCorrupt, kvstore.KeyFavorites, err)
		return
	}

	seen := make(map[string]bool, len(stored))
	for _, f := range stored {
		f.Symbol = symbol.Canonical(f.Symbol)
		if f.Symbol == "" || seen[f.Symbol] {
			continue
		}
		if len(s.favorites) == model.MaxFavorites {
			log.Printf("WARNING: favorites beyond %d ignored", model.MaxFavorites)
			break
		}
		seen[f.Symbol] = true
		s.favorites = append(s.favorites, f)
	}
}

// OnChange registers fn to be called with the current symbols after every
// change to the set. fn runs on the mutating goroutine, outside the store
// lock, and may read the store but must not mutate it.
func (s *FavoritesStore) OnChange(fn func(symbols []string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// =============================================================================
// QUERIES
// =============================================================================

// List returns a snapshot of the favorites in insertion order.
func (s *FavoritesStore) List() []model.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Favorite, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// Symbols returns the favorite symbols in insertion order.
func (s *FavoritesStore) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbolsLocked()
}

// ReadOnly reports whether the saved list was unreadable, in which case
// changes are kept in memory only.
func (s *FavoritesStore) ReadOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readOnly
}

// Count returns the number of favorites.
func (s *FavoritesStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.favorites)
}

// Contains reports whether the normalized input is a favorite.
func (s *FavoritesStore) Contains(input string) bool {
	sym := symbol.Canonical(input)
	if sym == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(sym) >= 0
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Add normalizes input and appends it. It fails with ReasonInvalidSymbol
// when nothing is left after normalization, ReasonDuplicate when the symbol
// is already present and ReasonCapacity when the list holds MaxFavorites.
func (s *FavoritesStore) Add(input string) Result {
	s.mu.Lock()
	res := s.addLocked(symbol.Canonical(input))
	s.mu.Unlock()

	if res.OK {
		s.notify()
	}
	return res
}

func (s *FavoritesStore) addLocked(sym string) Result {
	switch {
	case sym == "":
		return Result{Reason: ReasonInvalidSymbol}
	case s.indexLocked(sym) >= 0:
		return Result{Symbol: sym, Reason: ReasonDuplicate}
	case len(s.favorites) >= model.MaxFavorites:
		return Result{Symbol: sym, Reason: ReasonCapacity}
	}

	s.favorites = append(s.favorites, model.Favorite{Symbol: sym, AddedAt: s.now()})
	s.persistLocked()
	return Result{OK: true, Action: ActionAdded, Symbol: sym}
}

// Remove deletes the normalized input from the list. It reports whether a
// favorite was removed; a missing symbol is a no-op.
func (s *FavoritesStore) Remove(input string) bool {
	s.mu.Lock()
	removed := s.removeLocked(symbol.Canonical(input))
	s.mu.Unlock()

	if removed {
		s.notify()
	}
	return removed
}

func (s *FavoritesStore) removeLocked(sym string) bool {
	i := s.indexLocked(sym)
	if i < 0 {
		return false
	}
	s.favorites = append(s.favorites[:i:i], s.favorites[i+1:]...)
	s.persistLocked()
	return true
}

// Toggle removes the symbol when present and adds it otherwise, under the
// same rules as Add.
func (s *FavoritesStore) Toggle(input string) Result {
	sym := symbol.Canonical(input)

	s.mu.Lock()
	var res Result
	if s.removeLocked(sym) {
		res = Result{OK: true, Action: ActionRemoved, Symbol: sym}
	} else {
		res = s.addLocked(sym)
	}
	s.mu.Unlock()

	if res.OK {
		s.notify()
	}
	return res
}

// Clear removes every favorite.
func (s *FavoritesStore) Clear() {
	s.mu.Lock()
	changed := len(s.favorites) > 0
	s.favorites = nil
	if changed {
		s.persistLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *FavoritesStore) indexLocked(sym string) int {
	for i := range s.favorites {
		if s.favorites[i].Symbol == sym {
			return i
		}
	}
	return -1
}

func (s *FavoritesStore) symbolsLocked() []string {
	out := make([]string, len(s.favorites))
	for i, f := range s.favorites {
		out[i] = f.Symbol
	}
	return out
}

// notify reads the symbols at call time so the last notification always
// carries the latest set. Concurrent notifications are delivered one at a
// time.
func (s *FavoritesStore) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	listeners := make([]func([]string), len(s.listeners))
	copy(listeners, s.listeners)
	symbols := s.symbolsLocked()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(symbols)
	}
}

func (s *FavoritesStore) persistLocked() {
	if s.readOnly {
		return
	}
	favorites := s.favorites
	if favorites == nil {
		favorites = []model.Favorite{}
	}
	data, err := json.Marshal(favorites)
	if err != nil {
		log.Printf("ERROR: failed to encode favorites: %v", err)
		return
	}
	if err := s.kv.Set(kvstore.KeyFavorites, string(data)); err != nil {
		log.Printf("ERROR: failed to save favorites: %v", err)
	}
}
