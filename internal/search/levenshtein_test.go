package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"ld bulb", "led bulb", 1},
		{"gumball", "gumbo", 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b), "dist(%q, %q)", tt.a, tt.b)
	}
}

func TestLevenshtein_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"led-bulbs", "ld-bulb"},
		{"pumps", "punps"},
		{"", "anything"},
	}
	for _, p := range pairs {
		assert.Equal(t, Levenshtein(p[0], p[1]), Levenshtein(p[1], p[0]),
			"dist must be symmetric for %q / %q", p[0], p[1])
	}
}

func TestLevenshtein_ZeroOnlyForIdentical(t *testing.T) {
	assert.Zero(t, Levenshtein("valves", "valves"))
	assert.NotZero(t, Levenshtein("valves", "valve"))
}
