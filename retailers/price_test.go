package retailers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		ok   bool
	}{
		{"plain", "18.99", 18.99, true},
		{"rand prefix", "R 18.99", 18.99, true},
		{"rand no space", "R18.99", 18.99, true},
		{"thousands separator", "R 1,299.99", 1299.99, true},
		{"whitespace", "  R 45.00 ", 45.00, true},
		{"integer", "R 45", 45.00, true},
		{"per kg suffix", "R 89.99/kg", 89.99, true},
		{"three decimals rounds", "10.005", 10.01, true},
		{"zero", "R 0.00", 0, true},
		{"empty", "", 0, false},
		{"words only", "price on request", 0, false},
		{"double dot", "1.299.99", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 20.01, Round2(20.005))
	assert.Equal(t, 20.0, Round2(20.004))
	assert.Equal(t, 0.0, Round2(0))
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t,
		"https://www.checkers.co.za/medias/milk.png",
		AbsoluteURL("https://www.checkers.co.za", "/medias/milk.png"))
	assert.Equal(t,
		"https://cdn.example.com/a.png",
		AbsoluteURL("https://www.checkers.co.za", "https://cdn.example.com/a.png"))
	assert.Equal(t, "", AbsoluteURL("https://www.checkers.co.za", ""))
}
