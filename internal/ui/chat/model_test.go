// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exchange "github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/chat"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/config"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/kvstore"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/quotes"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/storage"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/ui/components"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
}

func (f *fakeCompleter) Complete(ctx context.Context, message string, history []model.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reply, f.err
}

type fakeFetcher struct{}

func (fakeFetcher) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	return model.Quote{
		Symbol:        symbol,
		Price:         decimal.RequireFromString("189.84"),
		Change:        decimal.RequireFromString("1.25"),
		ChangePercent: decimal.RequireFromString("0.66"),
		Currency:      "USD",
	}, nil
}

type fakeCharts struct {
	err error
}

func (f fakeCharts) Chart(ctx context.Context, symbol, period, interval string) (model.ChartSeries, error) {
	if f.err != nil {
		return model.ChartSeries{}, f.err
	}
	return model.ChartSeries{
		Symbol: symbol,
		Period: period,
		Points: []model.ChartPoint{
			{Date: "2024-01-02", Price: decimal.NewFromInt(100), Volume: 10},
			{Date: "2024-01-03", Price: decimal.NewFromInt(110), Volume: 20},
		},
		CurrentPrice:  decimal.NewFromInt(110),
		ChangePercent: decimal.NewFromInt(10),
	}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

type testEnv struct {
	kv        *kvstore.MemoryStore
	convs     *storage.ConversationStore
	favorites *storage.FavoritesStore
	completer *fakeCompleter
	exchange  *exchange.Exchange
	scheduler *quotes.Scheduler
	cfg       *config.Config
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	convs := storage.NewConversationStore(kv)
	favorites := storage.NewFavoritesStore(kv)
	completer := &fakeCompleter{reply: "Apple is up today."}
	scheduler := quotes.NewScheduler(fakeFetcher{}, quotes.Config{Interval: time.Hour})
	t.Cleanup(scheduler.Close)
	favorites.OnChange(scheduler.Sync)

	cfg := config.Default()
	cfg.UI.Theme = styles.ThemeDark
	cfg.UI.RenderMarkdown = false

	return &testEnv{
		kv:        kv,
		convs:     convs,
		favorites: favorites,
		completer: completer,
		exchange:  exchange.NewExchange(convs, completer),
		scheduler: scheduler,
		cfg:       cfg,
	}
}

func (e *testEnv) model(t *testing.T) Model {
	t.Helper()
	m := New(Options{
		Config:        e.cfg,
		Conversations: e.convs,
		Favorites:     e.favorites,
		Exchange:      e.exchange,
		Scheduler:     e.scheduler,
		Charts:        fakeCharts{},
		Prefs:         e.kv,
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return nm, cmd
}

func keyMsg(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and any batched commands, returning the messages of the
// given type. Only call it on commands that do not sleep.
func collect[T tea.Msg](cmd tea.Cmd) []T {
	if cmd == nil {
		return nil
	}
	var out []T
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect[T](c)...)
		}
	case T:
		out = append(out, msg)
	}
	return out
}

func plainView(m Model) string {
	return ansi.Strip(m.View())
}

// =============================================================================
// LAYOUT
// =============================================================================

func TestView_NotReady(t *testing.T) {
	env := newEnv(t)
	m := New(Options{Config: env.cfg, Conversations: env.convs, Favorites: env.favorites, Exchange: env.exchange})
	assert.Equal(t, "Loading markyt...", m.View())
}

func TestView_FillsTerminal(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)

	assert.Equal(t, 30, lipgloss.Height(m.View()))
	assert.Contains(t, plainView(m), "Welcome to markyt")

	m, _ = update(t, m, keyMsg(tea.KeyTab))
	assert.Equal(t, 30, lipgloss.Height(m.View()))
	assert.Contains(t, plainView(m), "No favorites yet")
}

// =============================================================================
// CHAT EXCHANGE
// =============================================================================

func TestSubmit_Success(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)
	m.input.SetValue("How is AAPL doing?")

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	assert.True(t, m.sending)
	assert.Empty(t, m.input.Value())

	results := collect[SubmitResultMsg](cmd)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	m, _ = update(t, m, results[0])
	assert.False(t, m.sending)

	conv, ok := env.convs.Current()
	require.True(t, ok)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "How is AAPL doing?", conv.Title)

	view := plainView(m)
	assert.Contains(t, view, "How is AAPL doing?")
	assert.Contains(t, view, "Apple is up today.")
}

func TestSubmit_FailureRollsBackAndKeepsText(t *testing.T) {
	env := newEnv(t)
	env.completer.err = errors.New("service unavailable")
	m := env.model(t)
	m.input.SetValue("hello")

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	results := collect[SubmitResultMsg](cmd)
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, exchange.ErrExchangeFailed)

	m, _ = update(t, m, results[0])
	assert.False(t, m.sending)
	assert.Equal(t, exchange.FailureNotice, m.notice)
	assert.Equal(t, "hello", m.input.Value())
	assert.Empty(t, env.exchange.Notice(), "notice is moved to the view")

	conv, _ := env.convs.Current()
	assert.Empty(t, conv.Messages)
	assert.Contains(t, plainView(m), exchange.FailureNotice)
}

func TestSubmit_NoticeExpires(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)
	m.notice = exchange.FailureNotice
	m.noticeSeq = 2

	m, _ = update(t, m, clearNoticeMsg{seq: 1})
	assert.NotEmpty(t, m.notice, "stale clear is ignored")

	m, _ = update(t, m, clearNoticeMsg{seq: 2})
	assert.Empty(t, m.notice)
}

func TestSubmit_RefusedWhileSending(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)
	m.input.SetValue("first")
	m, _ = update(t, m, keyMsg(tea.KeyEnter))
	require.True(t, m.sending)

	m.input.SetValue("second")
	m, _ = update(t, m, keyMsg(tea.KeyEnter))
	assert.Equal(t, "second", m.input.Value())
	assert.Contains(t, plainView(m), "Waiting for the previous reply")
}

func TestSubmit_IgnoresBlank(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)
	m.input.SetValue("   ")

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	assert.False(t, m.sending)
	assert.Nil(t, cmd)
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

func TestNewConversationAndPicker(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)
	firstID := env.convs.CurrentID()

	m, _ = update(t, m, keyMsg(tea.KeyCtrlN))
	require.Equal(t, 2, env.convs.Count())
	secondID := env.convs.CurrentID()
	assert.NotEqual(t, firstID, secondID)

	m, _ = update(t, m, keyMsg(tea.KeyCtrlO))
	require.True(t, m.picking)
	assert.Equal(t, 0, m.pickIndex, "newest conversation is current")
	assert.Contains(t, plainView(m), "Conversations")

	m, _ = update(t, m, keyMsg(tea.KeyDown))
	m, _ = update(t, m, keyMsg(tea.KeyEnter))
	assert.False(t, m.picking)
	assert.Equal(t, firstID, env.convs.CurrentID())
}

func TestPicker_Delete(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)
	m, _ = update(t, m, keyMsg(tea.KeyCtrlN))
	require.Equal(t, 2, env.convs.Count())

	m, _ = update(t, m, keyMsg(tea.KeyCtrlO))
	m, _ = update(t, m, runes("d"))
	assert.Equal(t, 1, env.convs.Count())
	assert.Equal(t, 0, m.pickIndex)

	// Deleting the last one leaves a fresh conversation.
	m, _ = update(t, m, runes("d"))
	assert.Equal(t, 1, env.convs.Count())

	m, _ = update(t, m, keyMsg(tea.KeyEsc))
	assert.False(t, m.picking)
}

// =============================================================================
// PAGES AND SCHEDULER LIFECYCLE
// =============================================================================

func TestSwitchPage_StartsAndStopsScheduler(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)
	require.False(t, env.scheduler.Running())

	m, _ = update(t, m, keyMsg(tea.KeyTab))
	assert.Equal(t, components.PageFavorites, m.page)
	assert.True(t, env.scheduler.Running())

	m, _ = update(t, m, keyMsg(tea.KeyTab))
	assert.Equal(t, components.PageChat, m.page)
	assert.False(t, env.scheduler.Running())
}

func TestQuit_StopsScheduler(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)
	m, _ = update(t, m, keyMsg(tea.KeyTab))
	require.True(t, env.scheduler.Running())

	_, cmd := update(t, m, keyMsg(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, env.scheduler.Running())
}

// =============================================================================
// FAVORITES
// =============================================================================

func TestFavorites_AddResolvesCompanyName(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)
	m, _ = update(t, m, keyMsg(tea.KeyTab))

	m, _ = update(t, m, runes("a"))
	require.True(t, m.adding)
	m.favInput.SetValue("apple")
	m, _ = update(t, m, keyMsg(tea.KeyEnter))

	assert.False(t, m.adding)
	assert.Equal(t, []string{"AAPL"}, env.favorites.Symbols())
	assert.Contains(t, plainView(m), "Added AAPL")
}

func TestFavorites_DuplicateKeepsEntryOpen(t *testing.T) {
	env := newEnv(t)
	env.favorites.Add("AAPL")
	m := env.model(t)
	m, _ = update(t, m, keyMsg(tea.KeyTab))

	m, _ = update(t, m, runes("a"))
	m.favInput.SetValue(" aapl ")
	m, _ = update(t, m, keyMsg(tea.KeyEnter))

	assert.True(t, m.adding)
	assert.Equal(t, []string{"AAPL"}, env.favorites.Symbols())
	assert.Contains(t, plainView(m), "Cannot add AAPL")

	m, _ = update(t, m, keyMsg(tea.KeyEsc))
	assert.False(t, m.adding)
}

func TestFavorites_Remove(t *testing.T) {
	env := newEnv(t)
	env.favorites.Add("AAPL")
	env.favorites.Add("MSFT")
	m := env.model(t)
	m, _ = update(t, m, keyMsg(tea.KeyTab))

	m, _ = update(t, m, runes("j"))
	require.Equal(t, 1, m.favIndex)
	m, _ = update(t, m, runes("d"))

	assert.Equal(t, []string{"AAPL"}, env.favorites.Symbols())
	assert.Equal(t, 0, m.favIndex)
	_, watched := m.quoteStates["MSFT"]
	assert.False(t, watched, "removed symbol has no quote state")
}

func TestFavorites_QuotesRendered(t *testing.T) {
	env := newEnv(t)
	env.favorites.Add("AAPL")
	require.Eventually(t, func() bool {
		st, ok := env.scheduler.State("AAPL")
		return ok && st.HasQuote() && !st.Loading
	}, 2*time.Second, 5*time.Millisecond)

	m := env.model(t)
	m, _ = update(t, m, keyMsg(tea.KeyTab))
	m, cmd := update(t, m, QuotesUpdatedMsg{})
	assert.NotNil(t, cmd, "listener is re-armed")

	view := plainView(m)
	assert.Contains(t, view, "AAPL")
	assert.Contains(t, view, "$189.84")
	assert.Contains(t, view, "+1.25 (+0.66%)")
}

// =============================================================================
// CHARTS
// =============================================================================

func TestChart_LoadAndPeriod(t *testing.T) {
	env := newEnv(t)
	env.favorites.Add("AAPL")
	m := env.model(t)
	m, _ = update(t, m, keyMsg(tea.KeyTab))

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	require.Equal(t, "AAPL", m.chartSymbol)
	require.True(t, m.chartLoading)
	assert.Equal(t, model.DefaultChartPeriod, m.chartPeriod)

	loaded := collect[ChartLoadedMsg](cmd)
	require.Len(t, loaded, 1)

	// A response for another period is dropped.
	stale := loaded[0]
	stale.Period = "5y"
	m, _ = update(t, m, stale)
	assert.True(t, m.chartLoading)

	m, _ = update(t, m, loaded[0])
	assert.False(t, m.chartLoading)
	require.NotNil(t, m.chart)
	view := plainView(m)
	assert.Contains(t, view, "AAPL  3mo")
	assert.Contains(t, view, "+10.00%")

	m, _ = update(t, m, runes("p"))
	assert.Equal(t, "6mo", m.chartPeriod)
	assert.True(t, m.chartLoading)

	m, _ = update(t, m, keyMsg(tea.KeyEsc))
	assert.Empty(t, m.chartSymbol)
}

func TestChart_Error(t *testing.T) {
	env := newEnv(t)
	env.favorites.Add("KO")
	m := New(Options{
		Config:        env.cfg,
		Conversations: env.convs,
		Favorites:     env.favorites,
		Exchange:      env.exchange,
		Charts:        fakeCharts{err: errors.New("boom")},
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = update(t, m, keyMsg(tea.KeyTab))

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	loaded := collect[ChartLoadedMsg](cmd)
	require.Len(t, loaded, 1)
	m, _ = update(t, m, loaded[0])

	assert.Equal(t, "Error loading chart", m.chartErr)
	assert.Contains(t, plainView(m), "Error loading chart")
}

func TestNextPeriod(t *testing.T) {
	assert.Equal(t, "3mo", nextPeriod("1mo"))
	assert.Equal(t, "1mo", nextPeriod("5y"))
	assert.Equal(t, "1mo", nextPeriod("bogus"))
}

// =============================================================================
// THEME AND CONFIG
// =============================================================================

func TestToggleTheme_Persists(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)
	require.True(t, m.theme.IsDark)

	m, _ = update(t, m, keyMsg(tea.KeyCtrlT))
	assert.False(t, m.theme.IsDark)

	stored, ok, err := env.kv.Get(kvstore.KeyTheme)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, styles.ThemeLight, stored)

	// The remembered theme wins over the configured one.
	again := env.model(t)
	assert.False(t, again.theme.IsDark)
}

func TestConfigReloaded_AppliesLiveSettings(t *testing.T) {
	env := newEnv(t)
	m := env.model(t)

	cfg := env.cfg.Clone()
	cfg.Quotes.RefreshIntervalSecs = 5
	cfg.UI.Theme = styles.ThemeLight
	cfg.UI.ChartPeriod = "1y"

	m, _ = update(t, m, ConfigReloadedMsg{Config: cfg})
	assert.Equal(t, 5*time.Second, env.scheduler.Interval())
	assert.False(t, m.theme.IsDark)
	assert.Equal(t, "1y", m.chartPeriod)
	assert.Contains(t, plainView(m), "Config reloaded")
}

// =============================================================================
// HELPERS
// =============================================================================

func TestWindow(t *testing.T) {
	tests := []struct {
		n, cursor, room int
		start, end      int
	}{
		{3, 0, 10, 0, 3},
		{20, 0, 5, 0, 5},
		{20, 10, 5, 8, 13},
		{20, 19, 5, 15, 20},
		{20, 3, 0, 3, 4},
	}
	for _, tc := range tests {
		start, end := window(tc.n, tc.cursor, tc.room)
		if start != tc.start || end != tc.end {
			t.Errorf("window(%d, %d, %d) = %d, %d; want %d, %d",
				tc.n, tc.cursor, tc.room, start, end, tc.start, tc.end)
		}
	}
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "just now", formatAge(10*time.Second))
	assert.Equal(t, "5m ago", formatAge(5*time.Minute))
	assert.Equal(t, "3h ago", formatAge(3*time.Hour))
	assert.Equal(t, "2d ago", formatAge(49*time.Hour))
}

func TestShortcuts(t *testing.T) {
	k := DefaultKeyMap()
	got := shortcuts(k.Quit, k.NextPage)
	require.Len(t, got, 2)
	assert.Equal(t, components.Shortcut{Key: "ctrl+c", Desc: "quit"}, got[0])
	assert.True(t, strings.HasPrefix(got[1].Key, "tab"))
}
