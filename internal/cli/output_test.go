// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_PadsByDisplayWidth(t *testing.T) {
	tbl := newTable("NAME", "N")
	tbl.addRow("日本", "1")
	tbl.addRow("ab", "22")

	var buf bytes.Buffer
	tbl.render(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	// "日本" is four columns wide, same as "NAME"
	assert.Equal(t, "日本  1", lines[1])
	assert.Equal(t, "ab    22", lines[2])
}

func TestTable_AlignRight(t *testing.T) {
	tbl := newTable("#", "X").alignRight(0)
	tbl.addRow("1", "a")
	tbl.addRow("10", "b")

	var buf bytes.Buffer
	tbl.render(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, " 1  a", lines[1])
	assert.Equal(t, "10  b", lines[2])
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "just now", formatAge(10*time.Second))
	assert.Equal(t, "5m ago", formatAge(5*time.Minute))
	assert.Equal(t, "3h ago", formatAge(3*time.Hour))
	assert.Equal(t, "2d ago", formatAge(49*time.Hour))
}

func TestSymbolInputs(t *testing.T) {
	assert.Equal(t, []string{"coca cola"}, symbolInputs([]string{"coca", "cola"}))
	assert.Equal(t, []string{"aapl", "msft"}, symbolInputs([]string{"aapl", "msft"}))
	assert.Nil(t, symbolInputs(nil))
}

func TestCompleteSlash(t *testing.T) {
	assert.Equal(t, []string{"/fav", "/favs"}, completeSlash("/fa"))
	assert.Nil(t, completeSlash("hello"))
	assert.Nil(t, completeSlash("/fav AAPL"))
}
