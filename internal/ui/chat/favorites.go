// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/storage"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/symbol"
)

// =============================================================================
// FAVORITES PAGE KEYS
// =============================================================================

func (m Model) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		return m.handleAddKey(msg)
	}
	if m.chartSymbol != "" {
		return m.handleChartKey(msg)
	}

	symbols := m.favorites.Symbols()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.favIndex > 0 {
			m.favIndex--
		}

	case key.Matches(msg, m.keys.Down):
		if m.favIndex < len(symbols)-1 {
			m.favIndex++
		}

	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.favInput.Reset()
		m.favInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		if m.favIndex >= len(symbols) {
			return m, nil
		}
		sym := symbols[m.favIndex]
		m.favorites.Remove(sym)
		m.clampFavIndex()
		m.snapshotQuotes()
		return m.setStatus("Removed " + sym)

	case key.Matches(msg, m.keys.Refresh):
		if m.favIndex < len(symbols) && m.scheduler != nil {
			m.scheduler.Refresh(symbols[m.favIndex])
			m.snapshotQuotes()
		}

	case key.Matches(msg, m.keys.RefreshAll):
		if m.scheduler != nil {
			m.scheduler.RefreshAll()
			m.snapshotQuotes()
		}
		return m.setStatus("Refreshing all quotes")

	case key.Matches(msg, m.keys.Select):
		if m.favIndex < len(symbols) {
			return m.openChart(symbols[m.favIndex])
		}
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.adding = false
		m.favInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Select):
		return m.addFavorite(m.favInput.Value())
	}
	return m.updateInputs(msg)
}

// addFavorite resolves company names to tickers before adding. Refused
// adds keep the entry open with the reason in the status bar.
func (m Model) addFavorite(text string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(text) == "" {
		m.adding = false
		m.favInput.Blur()
		return m, nil
	}

	res := m.favorites.Add(symbol.Resolve(text))
	if !res.OK {
		reason := res.Reason.String()
		if res.Reason == storage.ReasonCapacity {
			reason = "watchlist is full"
		}
		if res.Symbol != "" {
			return m.setStatus("Cannot add " + res.Symbol + ": " + reason)
		}
		return m.setStatus("Cannot add: " + reason)
	}

	m.adding = false
	m.favInput.Blur()
	if i := slices.Index(m.favorites.Symbols(), res.Symbol); i >= 0 {
		m.favIndex = i
	}
	m.snapshotQuotes()
	return m.setStatus("Added " + res.Symbol)
}

func (m *Model) clampFavIndex() {
	n := m.favorites.Count()
	if m.favIndex >= n {
		m.favIndex = n - 1
	}
	if m.favIndex < 0 {
		m.favIndex = 0
	}
}

func (m *Model) snapshotQuotes() {
	if m.scheduler != nil {
		m.quoteStates = m.scheduler.Snapshot()
	}
}

// waitForQuotes blocks until the scheduler reports a change. Update re-arms
// it after every QuotesUpdatedMsg.
func (m Model) waitForQuotes() tea.Cmd {
	if m.scheduler == nil {
		return nil
	}
	ch := m.quoteUpdates
	return func() tea.Msg {
		<-ch
		return QuotesUpdatedMsg{}
	}
}

// =============================================================================
// CHARTS
// =============================================================================

func (m Model) handleChartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.chartSymbol = ""
		m.chart = nil
		m.chartErr = ""
		m.chartLoading = false
		return m, nil

	case key.Matches(msg, m.keys.Period):
		m.chartPeriod = nextPeriod(m.chartPeriod)
		return m.openChart(m.chartSymbol)

	case key.Matches(msg, m.keys.Refresh):
		return m.openChart(m.chartSymbol)
	}
	return m, nil
}

// openChart starts loading sym's history for the current period.
func (m Model) openChart(sym string) (tea.Model, tea.Cmd) {
	m.chartSymbol = sym
	m.chart = nil
	m.chartErr = ""
	if m.charts == nil {
		m.chartErr = "Charts are not available"
		return m, nil
	}
	m.chartLoading = true
	return m, tea.Batch(m.chartCmd(sym, m.chartPeriod), m.spinner.Tick)
}

func (m Model) chartCmd(sym, period string) tea.Cmd {
	src, ctx := m.charts, m.ctx
	return func() tea.Msg {
		series, err := src.Chart(ctx, sym, period, model.DefaultChartInterval)
		return ChartLoadedMsg{Symbol: sym, Period: period, Series: series, Err: err}
	}
}

// handleChartLoaded drops responses for a chart that is no longer shown.
func (m Model) handleChartLoaded(msg ChartLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Symbol != m.chartSymbol || msg.Period != m.chartPeriod {
		return m, nil
	}
	m.chartLoading = false
	if msg.Err != nil {
		log.Printf("WARNING: chart %s %s: %v", msg.Symbol, msg.Period, msg.Err)
		m.chartErr = "Error loading chart"
		return m, nil
	}
	series := msg.Series
	m.chart = &series
	return m, nil
}

// nextPeriod cycles through model.ChartPeriods.
func nextPeriod(p string) string {
	i := slices.Index(model.ChartPeriods, p)
	return model.ChartPeriods[(i+1)%len(model.ChartPeriods)]
}
