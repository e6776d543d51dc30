// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed when the quote service omits one.
const DefaultCurrency = "USD"

// Quote is a price snapshot for one symbol.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	PreviousClose decimal.Decimal `json:"previousClose,omitzero"`
	Currency      string          `json:"currency,omitempty"`
	FetchedAt     time.Time       `json:"fetchedAt,omitzero"`
}

// IsUp reports whether the symbol is flat or up on the day.
func (q Quote) IsUp() bool {
	return !q.ChangePercent.IsNegative()
}

// FormatPrice renders the price in the quote's currency, e.g. "$189.84".
func (q Quote) FormatPrice() string {
	return FormatAmount(q.Price, q.Currency)
}

// FormatChange renders change and percent change, e.g. "+1.25 (+0.66%)".
func (q Quote) FormatChange() string {
	return signed(q.Change) + " (" + signed(q.ChangePercent) + "%)"
}

// FormatAmount renders an amount with the currency's symbol and separators.
// Unknown currency codes fall back to "<amount> <CODE>".
func FormatAmount(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = DefaultCurrency
	}
	if money.GetCurrency(code) == nil {
		return amount.StringFixed(2) + " " + code
	}
	return money.NewFromFloat(amount.InexactFloat64(), code).Display()
}

func signed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if !d.IsNegative() {
		return "+" + s
	}
	return s
}

// =============================================================================
// QUOTE STATE
// =============================================================================

// QuoteErrorMessage is shown for a symbol whose latest fetch failed.
const QuoteErrorMessage = "Error loading quote"

// QuoteState is the live view of one favorite's price. It is derived data,
// never persisted.
type QuoteState struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Quote   *Quote `json:"quote,omitempty"`
}

// HasQuote reports whether a price (possibly stale) is available.
func (s QuoteState) HasQuote() bool {
	return s.Quote != nil
}

// Clone returns a copy that does not share the quote pointer.
func (s QuoteState) Clone() QuoteState {
	if s.Quote != nil {
		q := *s.Quote
		s.Quote = &q
	}
	return s
}
