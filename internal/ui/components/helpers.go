// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

func itoa(n int) string {
	return strconv.Itoa(n)
}

// FormatVolume abbreviates share counts: 1234567 -> "1.23M".
func FormatVolume(v int64) string {
	switch {
	case v >= 1_000_000_000:
		return strconv.FormatFloat(float64(v)/1e9, 'f', 2, 64) + "B"
	case v >= 1_000_000:
		return strconv.FormatFloat(float64(v)/1e6, 'f', 2, 64) + "M"
	case v >= 1_000:
		return strconv.FormatFloat(float64(v)/1e3, 'f', 1, 64) + "K"
	default:
		return strconv.FormatInt(v, 10)
	}
}

// padRight pads s with spaces to width display columns.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// padLeft pads s with leading spaces to width display columns.
func padLeft(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}
