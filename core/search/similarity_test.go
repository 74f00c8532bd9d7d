package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"abcd", "bcde", 0.75},
		{"abcd", "abcd", 1.0},
		{"abcd", "wxyz", 0.0},
		{"", "", 0.0},
		{"abc", "", 0.0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Ratio(tc.a, tc.b), 1e-9, "Ratio(%q, %q)", tc.a, tc.b)
	}
}

func TestRatioSymmetricOnEqualLengths(t *testing.T) {
	assert.InDelta(t, Ratio("abcd", "bcde"), Ratio("bcde", "abcd"), 1e-9)
}

func TestRatioCJKRunes(t *testing.T) {
	// 3 of 4 runes match: 2*3/(4+4).
	assert.InDelta(t, 0.75, Ratio("有功功率", "无功功率"), 1e-9)

	// Rune-based, not byte-based: a one-rune difference in a two-rune
	// string scores 0.5, which byte comparison would miss.
	assert.InDelta(t, 0.5, Ratio("电压", "电流"), 1e-9)
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("储能PCS, 三相有功功率! (15min)")
	assert.Contains(t, got, "储能pcs")
	assert.Contains(t, got, "三相有功功率")
	assert.Contains(t, got, "15min")
}

func TestExtractKeywordsDropsShortTokens(t *testing.T) {
	got := ExtractKeywords("a 电 power 电压")
	assert.NotContains(t, got, "a")
	assert.NotContains(t, got, "电")
	assert.Equal(t, []string{"power", "电压"}, got)
}

func TestExtractKeywordsDeduplicatesAndSorts(t *testing.T) {
	got := ExtractKeywords("power Power POWER energy")
	assert.Equal(t, []string{"energy", "power"}, got)
}
