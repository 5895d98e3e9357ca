package entity

import (
	"math"
	"strings"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{a: "arsenal", b: "arsenal", want: 1},
		{a: "", b: "", want: 1},
		{a: "abcd", b: "abce", want: 0.75},
		{a: "abc", b: "", want: 0},
		{a: "manchester city", b: "manchester united", want: 1 - 4.0/17.0},
	}

	for _, tc := range tests {
		if got := Ratio(tc.a, tc.b); !approxEqual(got, tc.want) {
			t.Fatalf("Ratio(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestTokenSortRatioIgnoresOrder(t *testing.T) {
	if got := TokenSortRatio("united manchester", "manchester united"); got != 1 {
		t.Fatalf("expected reordered tokens to score 1, got %v", got)
	}
}

func TestTokenSetRatioSubset(t *testing.T) {
	if got := TokenSetRatio("manchester united", "manchester united reserves"); got != 1 {
		t.Fatalf("expected subset to score 1, got %v", got)
	}
	if got := TokenSetRatio("psg", "paris saint germain"); got >= 0.6 {
		t.Fatalf("expected disjoint names to score low, got %v", got)
	}
}

func TestParseScorer(t *testing.T) {
	tests := []struct {
		in      string
		want    Scorer
		wantErr bool
	}{
		{in: "", want: ScorerTokenSort},
		{in: "ratio", want: ScorerRatio},
		{in: " TOKEN_SET ", want: ScorerTokenSet},
		{in: "token_sort", want: ScorerTokenSort},
		{in: "jaro", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseScorer(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseScorer(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseScorer(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseScorer(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// editedPair returns two single-token names of n runes that differ by d substitutions.
func editedPair(n, d int) (string, string) {
	base := "abcdefghijklmnopqrstuvwxy"[:n]
	return base, strings.Repeat("z", d) + base[d:]
}

func TestRatioHitsDecimalThresholdsExactly(t *testing.T) {
	tests := []struct {
		n, d int
		want float64
	}{
		{n: 25, d: 8, want: 0.68},
		{n: 20, d: 11, want: 0.45},
		{n: 20, d: 3, want: 0.85},
	}

	for _, tc := range tests {
		a, b := editedPair(tc.n, tc.d)
		if got := Ratio(a, b); got != tc.want {
			t.Fatalf("Ratio(%d runes, %d edits) = %.20f, want %v", tc.n, tc.d, got, tc.want)
		}
	}
}
