// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quotes keeps live quotes for the favorites watchlist.
//
// The Scheduler tracks one QuoteState per watched symbol. New symbols are
// fetched as soon as they appear; every symbol is refetched on a fixed
// interval while the scheduler is started. A failed refresh keeps the last
// good quote and records an error message next to it.
package quotes

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
)

const (
	// DefaultInterval is how often every watched symbol is refetched.
	DefaultInterval = 60 * time.Second

	// DefaultMaxConcurrent caps in-flight quote requests.
	DefaultMaxConcurrent = 4

	// DefaultFetchTimeout bounds a single quote request.
	DefaultFetchTimeout = 30 * time.Second
)

// QuoteFetcher returns the latest quote for a symbol.
type QuoteFetcher interface {
	Quote(ctx context.Context, symbol string) (model.Quote, error)
}

// Config configures a Scheduler. Zero values take the defaults.
type Config struct {
	Interval      time.Duration
	MaxConcurrent int
	FetchTimeout  time.Duration
}

// entry is the state of one watched symbol. gen identifies this incarnation
// of the symbol so responses for a removed and re-added symbol are dropped.
type entry struct {
	state model.QuoteState
	gen   uint64
}

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler polls quotes for a set of symbols. It is safe for concurrent use.
type Scheduler struct {
	fetcher      QuoteFetcher
	fetchTimeout time.Duration
	semaphore    chan struct{} // limits in-flight fetches

	// ctx is cancelled by Close and aborts in-flight fetches.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup // in-flight fetches

	mu        sync.Mutex
	entries   map[string]*entry
	symbols   []string
	nextGen   uint64
	interval  time.Duration
	listeners []func()

	// Ticker loop lifecycle; stop is nil when not started.
	stop  chan struct{}
	done  chan struct{}
	reset chan time.Duration
}

// NewScheduler creates a stopped scheduler with no symbols.
func NewScheduler(fetcher QuoteFetcher, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		fetcher:      fetcher,
		fetchTimeout: cfg.FetchTimeout,
		semaphore:    make(chan struct{}, cfg.MaxConcurrent),
		ctx:          ctx,
		cancel:       cancel,
		entries:      make(map[string]*entry),
		interval:     cfg.Interval,
	}
}

// OnUpdate registers fn to be called after any quote state changes. fn runs
// outside the scheduler's lock, possibly on a fetch goroutine.
func (s *Scheduler) OnUpdate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// =============================================================================
// SYMBOL SET
// =============================================================================

// Sync makes symbols the watched set. State for symbols no longer present is
// dropped; symbols without state get a fresh entry and an immediate fetch.
// Sync has the signature of storage.FavoritesStore.OnChange callbacks.
func (s *Scheduler) Sync(symbols []string) {
	s.mu.Lock()
	want := make(map[string]bool, len(symbols))
	ordered := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if sym == "" || want[sym] {
			continue
		}
		want[sym] = true
		ordered = append(ordered, sym)
	}

	changed := false
	for sym := range s.entries {
		if !want[sym] {
			delete(s.entries, sym)
			changed = true
		}
	}
	for _, sym := range ordered {
		if _, ok := s.entries[sym]; ok {
			continue
		}
		s.nextGen++
		s.entries[sym] = &entry{gen: s.nextGen}
		s.startFetchLocked(sym)
		changed = true
	}
	s.symbols = ordered
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Symbols returns the watched symbols in the order last given to Sync.
func (s *Scheduler) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// =============================================================================
// REFRESH
// =============================================================================

// Refresh refetches one watched symbol. It reports false for symbols that
// are not watched.
func (s *Scheduler) Refresh(symbol string) bool {
	s.mu.Lock()
	_, ok := s.entries[symbol]
	if ok {
		s.startFetchLocked(symbol)
	}
	s.mu.Unlock()

	if ok {
		s.notify()
	}
	return ok
}

// RefreshAll refetches every watched symbol.
func (s *Scheduler) RefreshAll() {
	s.mu.Lock()
	n := len(s.symbols)
	for _, sym := range s.symbols {
		s.startFetchLocked(sym)
	}
	s.mu.Unlock()

	if n > 0 {
		s.notify()
	}
}

// startFetchLocked marks sym loading and fetches it in the background.
func (s *Scheduler) startFetchLocked(sym string) {
	e := s.entries[sym]
	e.state.Loading = true
	e.state.Error = ""

	s.wg.Add(1)
	go s.fetch(sym, e.gen)
}

func (s *Scheduler) fetch(sym string, gen uint64) {
	defer s.wg.Done()

	// Acquire semaphore (blocks if at max concurrency)
	select {
	case s.semaphore <- struct{}{}:
	case <-s.ctx.Done():
		return
	}
	defer func() { <-s.semaphore }()

	ctx, cancel := context.WithTimeout(s.ctx, s.fetchTimeout)
	quote, err := s.fetcher.Quote(ctx, sym)
	cancel()

	s.mu.Lock()
	e, ok := s.entries[sym]
	if !ok || e.gen != gen {
		// Symbol was removed (and maybe re-added) while in flight.
		s.mu.Unlock()
		return
	}
	e.state.Loading = false
	if err != nil {
		log.Printf("WARNING: quote refresh for %s failed: %v", sym, err)
		e.state.Error = model.QuoteErrorMessage
	} else {
		q := quote
		e.state.Error = ""
		e.state.Quote = &q
	}
	s.mu.Unlock()

	s.notify()
}

// =============================================================================
// STATE
// =============================================================================

// State returns a copy of the state for symbol.
func (s *Scheduler) State(symbol string) (model.QuoteState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[symbol]
	if !ok {
		return model.QuoteState{}, false
	}
	return e.state.Clone(), true
}

// Snapshot returns a copy of every watched symbol's state.
func (s *Scheduler) Snapshot() map[string]model.QuoteState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]model.QuoteState, len(s.entries))
	for sym, e := range s.entries {
		out[sym] = e.state.Clone()
	}
	return out
}

func (s *Scheduler) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Interval returns the refresh period.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the refresh period. A running ticker picks it up
// immediately; non-positive values are ignored.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}

	s.mu.Lock()
	s.interval = d
	reset := s.reset
	s.mu.Unlock()

	if reset == nil {
		return
	}
	// Keep only the newest pending value.
	select {
	case <-reset:
	default:
	}
	select {
	case reset <- d:
	default:
	}
}

// Running reports whether the ticker is started.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Start refreshes every watched symbol now and then on every interval until
// Stop is called or ctx is done. Starting a running scheduler does nothing.
// Ticks missed while a refresh is slow are dropped, not queued.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	reset := make(chan time.Duration, 1)
	s.stop, s.done, s.reset = stop, done, reset
	interval := s.interval
	s.mu.Unlock()

	s.RefreshAll()
	go s.loop(ctx, interval, stop, done, reset)
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, stop, done chan struct{}, reset chan time.Duration) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			s.mu.Lock()
			if s.stop == stop {
				s.stop, s.done, s.reset = nil, nil, nil
			}
			s.mu.Unlock()
			return
		case d := <-reset:
			ticker.Reset(d)
		case <-ticker.C:
			s.RefreshAll()
		}
	}
}

// Stop halts the ticker. In-flight fetches still complete and update state.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done, s.reset = nil, nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Close stops the ticker, aborts in-flight fetches and waits for them.
func (s *Scheduler) Close() {
	s.Stop()
	s.cancel()
	s.wg.Wait()
}
