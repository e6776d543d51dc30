// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// quote.go - Quote and chart commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/symbol"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/ui/components"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/util"
)

// maxSparkWidth caps sparkline width on wide terminals.
const maxSparkWidth = 72

// Quote prints quotes for the given symbols, or for every favorite.
func (a *App) Quote(ctx context.Context, args Args) error {
	var symbols []string
	for _, in := range symbolInputs(args.Symbols) {
		if sym := symbol.Resolve(in); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		symbols = a.Favorites.Symbols()
	}
	if len(symbols) == 0 {
		if a.JSON {
			return a.printJSON("quote", []QuoteData{})
		}
		fmt.Fprintln(a.out(), DimStyle.Render("No favorites yet. Add one with: markyt fav add AAPL"))
		return nil
	}

	results := a.Market.Quotes(ctx, symbols)

	if a.JSON {
		rows := make([]QuoteData, 0, len(results))
		for _, r := range results {
			row := QuoteData{Symbol: r.Symbol}
			if r.Err != nil {
				row.Error = r.Err.Error()
			} else {
				q := r.Quote
				row.Quote = &q
			}
			rows = append(rows, row)
		}
		return a.printJSON("quote", rows)
	}

	failed := 0
	t := newTable("SYMBOL", "PRICE", "CHANGE", "NAME").alignRight(1, 2)
	for _, r := range results {
		if r.Err != nil {
			failed++
			t.addRow(r.Symbol, "", model.QuoteErrorMessage, "")
			continue
		}
		t.addRow(r.Symbol, r.Quote.FormatPrice(), r.Quote.FormatChange(), util.Ellipsize(r.Quote.Name, 32))
	}
	t.withStyle(func(row, col int, cell string) string {
		res := results[row]
		switch {
		case col == 0:
			return TitleStyle.Render(cell)
		case col == 2 && res.Err != nil:
			return ErrorStyle.Render(cell)
		case col == 2:
			return changeStyle(res.Quote.IsUp()).Render(cell)
		case col == 3:
			return DimStyle.Render(cell)
		}
		return cell
	})
	t.render(a.out())

	if failed == len(results) {
		return results[0].Err
	}
	return nil
}

// Chart prints price history for one symbol.
func (a *App) Chart(ctx context.Context, args Args) error {
	inputs := symbolInputs(args.Symbols)
	if len(inputs) == 0 {
		return ErrMissingArgument("symbol", "markyt chart AAPL --period 6mo")
	}
	sym := symbol.Resolve(inputs[0])
	if sym == "" {
		return &UsageError{Message: "invalid symbol: " + inputs[0]}
	}

	period := args.Period
	if period == "" {
		period = a.Config.UI.ChartPeriod
	}
	if !model.ValidChartPeriod(period) {
		return &UsageError{
			Message: fmt.Sprintf("invalid period %q (valid: %s)", period, strings.Join(model.ChartPeriods, ", ")),
			Usage:   "markyt chart AAPL --period 6mo",
		}
	}
	interval := args.Interval
	if interval == "" {
		interval = model.DefaultChartInterval
	}

	series, err := a.Market.Chart(ctx, sym, period, interval)
	if err != nil {
		return err
	}
	if a.JSON {
		return a.printJSON("chart", series)
	}
	renderChart(a.out(), series, min(a.width()-2, maxSparkWidth))
	return nil
}

func renderChart(w io.Writer, s model.ChartSeries, width int) {
	up := !s.ChangePercent.IsNegative()
	header := fmt.Sprintf("%s  %s", s.Symbol, s.Period)
	fmt.Fprintln(w, TitleStyle.Render(header))

	if len(s.Points) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No price history for this period"))
		return
	}

	fmt.Fprintln(w, changeStyle(up).Render(components.Sparkline(s.Prices(), width)))
	first, last := s.Points[0].Date, s.Points[len(s.Points)-1].Date
	fmt.Fprintln(w, DimStyle.Render(first+" .. "+last))
	fmt.Fprintln(w)

	label := func(name string) string {
		return LabelStyle.Render(fmt.Sprintf("%-12s", name))
	}
	fmt.Fprintln(w, label("Last")+ValueStyle.Render(model.FormatAmount(s.CurrentPrice, "")))
	pct := s.ChangePercent.StringFixed(2) + "%"
	if up {
		pct = "+" + pct
	}
	fmt.Fprintln(w, label("Change")+changeStyle(up).Render(pct))
	fmt.Fprintln(w, label("High")+ValueStyle.Render(model.FormatAmount(s.High(), "")))
	fmt.Fprintln(w, label("Low")+ValueStyle.Render(model.FormatAmount(s.Low(), "")))
	fmt.Fprintln(w, label("Avg volume")+ValueStyle.Render(components.FormatVolume(s.AverageVolume())))
}
