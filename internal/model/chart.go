// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Chart periods offered by the UI. DefaultChartPeriod is used when none is given.
const (
	DefaultChartPeriod   = "3mo"
	DefaultChartInterval = "1d"
)

// ChartPeriods lists the selectable history windows.
var ChartPeriods = []string{"1mo", "3mo", "6mo", "1y", "5y"}

// ValidChartPeriod reports whether p is one of ChartPeriods.
func ValidChartPeriod(p string) bool {
	return slices.Contains(ChartPeriods, p)
}

// ChartPoint is one bar of price history.
type ChartPoint struct {
	Date   string          `json:"date"`
	Price  decimal.Decimal `json:"price"`
	Volume int64           `json:"volume"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
}

// ChartSeries is the price history of a symbol over a period.
type ChartSeries struct {
	Symbol        string          `json:"symbol"`
	Period        string          `json:"period"`
	Points        []ChartPoint    `json:"points"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	ChangePercent decimal.Decimal `json:"changePercent"`
}

// Prices returns the closing prices in order, for plotting.
func (s ChartSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price.InexactFloat64()
	}
	return out
}

// High returns the highest high of the period, falling back to the close
// when the service sent no high.
func (s ChartSeries) High() decimal.Decimal {
	var hi decimal.Decimal
	for i, p := range s.Points {
		v := p.High
		if v.IsZero() {
			v = p.Price
		}
		if i == 0 || v.GreaterThan(hi) {
			hi = v
		}
	}
	return hi
}

// Low returns the lowest low of the period, falling back to the close.
func (s ChartSeries) Low() decimal.Decimal {
	var lo decimal.Decimal
	for i, p := range s.Points {
		v := p.Low
		if v.IsZero() {
			v = p.Price
		}
		if i == 0 || v.LessThan(lo) {
			lo = v
		}
	}
	return lo
}

// AverageVolume returns the mean daily volume, or 0 for an empty series.
func (s ChartSeries) AverageVolume() int64 {
	if len(s.Points) == 0 {
		return 0
	}
	var total int64
	for _, p := range s.Points {
		total += p.Volume
	}
	return total / int64(len(s.Points))
}
