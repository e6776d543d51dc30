// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// output.go - Tables and markdown for CLI output.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
)

// =============================================================================
// TABLES
// =============================================================================

// cellStyler decorates an already padded cell.
type cellStyler func(row, col int, padded string) string

// table renders left-aligned columns padded by display width, so wide
// characters in titles line up.
type table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
	style   cellStyler
}

func newTable(headers ...string) *table {
	return &table{headers: headers, right: make(map[int]bool)}
}

// alignRight right-aligns the given columns.
func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *table) withStyle(fn cellStyler) *table {
	t.style = fn
	return t
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (t *table) pad(cell string, col, width int) string {
	if t.right[col] {
		return runewidth.FillLeft(cell, width)
	}
	return runewidth.FillRight(cell, width)
}

func (t *table) render(w io.Writer) {
	widths := t.widths()
	last := len(widths) - 1

	var header []string
	for i, h := range t.headers {
		header = append(header, t.pad(h, i, widths[i]))
	}
	fmt.Fprintln(w, LabelStyle.Render(strings.TrimRight(strings.Join(header, "  "), " ")))

	for r, row := range t.rows {
		var line []string
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			padded := cell
			if i < last || t.right[i] {
				padded = t.pad(cell, i, widths[i])
			}
			if t.style != nil {
				padded = t.style(r, i, padded)
			}
			line = append(line, padded)
		}
		fmt.Fprintln(w, strings.Join(line, "  "))
	}
}

// =============================================================================
// SPARKLINES
// =============================================================================

// =============================================================================
// MARKDOWN
// =============================================================================

// renderMarkdown renders an assistant reply for the terminal. Plain text is
// returned when rendering fails.
func renderMarkdown(text string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
