// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package symbol

import (
	"sync"
	"testing"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"aapl ", "AAPL"},
		{" Aapl", "AAPL"},
		{"AAPL", "AAPL"},
		{"brk b", "BRKB"},
		{"\tmsft\n", "MSFT"},
		{"ａａｐｌ", "AAPL"},
		{"   ", ""},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := Canonical(tc.input); got != tc.want {
				t.Errorf("Canonical(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCanonical_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := Canonical(" straße "); got != "STRASSE" {
					t.Errorf("Canonical() = %q, want STRASSE", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestResolve(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Tesla", "TSLA"},
		{"coca cola", "KO"},
		{"Bank of America", "BAC"},
		{"nvda", "NVDA"},
		{"unknownco", "UNKNOWNCO"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := Resolve(tc.input); got != tc.want {
				t.Errorf("Resolve(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	if !Known("home depot") {
		t.Error("Known(\"home depot\") = false, want true")
	}
	if Known("AAPL") {
		t.Error("Known(\"AAPL\") = true, want false")
	}
}
