// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/ui/styles"
)

// =============================================================================
// CHART VIEW
// =============================================================================

// MaxChartWidth caps the sparkline on wide terminals.
const MaxChartWidth = 72

// RenderChart draws a price history as a sparkline followed by a summary.
func RenderChart(t *styles.Theme, s model.ChartSeries, width int) string {
	if width > MaxChartWidth {
		width = MaxChartWidth
	}
	if width < 10 {
		width = 10
	}

	up := !s.ChangePercent.IsNegative()
	var b strings.Builder
	b.WriteString(t.Symbol.Render(s.Symbol) + "  " + t.Muted.Render(s.Period))
	b.WriteString("\n")

	if len(s.Points) == 0 {
		b.WriteString(t.Muted.Render("No price history for this period"))
		return b.String()
	}

	b.WriteString(t.Change(up).Render(Sparkline(s.Prices(), width)))
	b.WriteString("\n")
	first, last := s.Points[0].Date, s.Points[len(s.Points)-1].Date
	b.WriteString(t.Muted.Render(first + " .. " + last))
	b.WriteString("\n\n")

	pct := s.ChangePercent.StringFixed(2) + "%"
	if up {
		pct = "+" + pct
	}
	rows := []struct {
		label string
		value string
		style func(...string) string
	}{
		{"Last", model.FormatAmount(s.CurrentPrice, ""), t.Price.Render},
		{"Change", pct, t.Change(up).Render},
		{"High", model.FormatAmount(s.High(), ""), t.Price.Render},
		{"Low", model.FormatAmount(s.Low(), ""), t.Price.Render},
		{"Avg volume", FormatVolume(s.AverageVolume()), t.Price.Render},
	}
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.ListMeta.Render(padRight(r.label, 12)) + r.style(r.value))
	}
	return b.String()
}
