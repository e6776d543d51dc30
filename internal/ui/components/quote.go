// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/ui/styles"
)

// =============================================================================
// QUOTE ROWS
// =============================================================================

// Column widths for RenderQuoteRow.
const (
	symbolCol = 8
	priceCol  = 12
	changeCol = 22
)

// RenderQuoteRow draws one favorite: symbol, then price and change when a
// quote is known. A loading state without a quote shows the loading marker;
// a failed fetch shows the error message, after the stale price if any.
func RenderQuoteRow(t *styles.Theme, sym string, st model.QuoteState, selected bool, width int) string {
	cells := padRight(t.Symbol.Render(sym), symbolCol)

	switch {
	case st.Quote != nil:
		q := st.Quote
		arrow := styles.StatusIndicators.Down
		if q.IsUp() {
			arrow = styles.StatusIndicators.Up
		}
		cells += padLeft(t.Price.Render(q.FormatPrice()), priceCol)
		cells += padLeft(t.Change(q.IsUp()).Render(arrow+" "+q.FormatChange()), changeCol)
		if st.Error != "" {
			cells += "  " + t.ErrorText.Render(styles.StatusIndicators.Error)
		} else if st.Loading {
			cells += "  " + t.Muted.Render(styles.StatusIndicators.Loading)
		} else if q.Name != "" {
			cells += "  " + t.Muted.Render(q.Name)
		}
	case st.Error != "":
		cells += "  " + t.ErrorText.Render(styles.StatusIndicators.Error+" "+st.Error)
	default:
		cells += "  " + t.Muted.Render("Loading"+styles.StatusIndicators.Loading)
	}

	style := t.ListItem
	if selected {
		style = t.ListItemSelected
	}
	if width > 0 {
		// ListItem styles pad two cells on the left.
		if lipgloss.Width(cells) > width-2 {
			cells = ansi.Truncate(cells, width-2, "...")
		}
		style = style.Width(width)
	}
	return style.Render(cells)
}
