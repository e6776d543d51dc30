// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package symbol normalizes user input into ticker symbols.
//
// Canonical is the watchlist key rule: Unicode-fold, uppercase, drop all
// whitespace. Resolve additionally maps well-known company names to their
// exchange tickers ("Tesla" -> "TSLA"); anything it does not know passes
// through canonicalized.
package symbol

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// names maps canonicalized company names to tickers.
var names = map[string]string{
	"APPLE":     "AAPL",
	"MICROSOFT": "MSFT",
	"GOOGLE":    "GOOGL",
	"ALPHABET":  "GOOGL",
	"AMAZON":    "AMZN",
	"META":      "META",
	"FACEBOOK":  "META",
	"TESLA":     "TSLA",
	"NVIDIA":    "NVDA",
	"AMD":       "AMD",
	"INTEL":     "INTC",
	"NETFLIX":   "NFLX",

	"JPMORGAN":      "JPM",
	"BANKOFAMERICA": "BAC",
	"WELLSFARGO":    "WFC",
	"GOLDMANSACHS":  "GS",
	"VISA":          "V",
	"MASTERCARD":    "MA",

	"WALMART":   "WMT",
	"TARGET":    "TGT",
	"COSTCO":    "COST",
	"HOMEDEPOT": "HD",

	"COCACOLA":  "KO",
	"PEPSI":     "PEP",
	"DISNEY":    "DIS",
	"NIKE":      "NKE",
	"MCDONALDS": "MCD",
	"STARBUCKS": "SBUX",
	"BOEING":    "BA",
}

// Canonical folds compatibility characters (full-width letters and the
// like), uppercases, and removes every whitespace rune. An input made only of
// whitespace yields "".
func Canonical(input string) string {
	s := norm.NFKC.String(input)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	// A Caser is stateful; one per call keeps Canonical safe for concurrent use.
	return cases.Upper(language.Und).String(s)
}

// Resolve turns free text into a ticker: known company names map to their
// symbol, everything else is returned as Canonical(input).
func Resolve(input string) string {
	s := Canonical(input)
	if ticker, ok := names[s]; ok {
		return ticker
	}
	return s
}

// Known reports whether name is in the company-name table.
func Known(name string) bool {
	_, ok := names[Canonical(name)]
	return ok
}
