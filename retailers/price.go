package retailers

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ParsePrice normalizes a scraped price string: everything except digits
// and the decimal point is stripped (currency symbol, thousands separators,
// whitespace), then the remainder is parsed as a non-negative 2-decimal
// amount. "R 1,299.99" parses to 1299.99. An unparseable or negative value
// returns ok=false and the record is dropped by the caller.
func ParsePrice(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return Round2(v), true
}

// Round2 rounds to 2 decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AbsoluteURL resolves a possibly-relative scraped URL against the
// retailer's base. Unresolvable input comes back unchanged.
func AbsoluteURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
