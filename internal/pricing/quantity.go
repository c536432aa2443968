// Package pricing holds the pure helpers that make prices from different
// pharmacies comparable: pack quantity extraction, per-unit derivation and
// INR formatting.
package pricing

import (
	"regexp"
	"strconv"
	"strings"
)

// Compiled quantity patterns, tried in declaration order
var (
	// "2x10", "2 x 10", "Pack of 2 X 10"
	multipliedQuantityPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)[\s\p{Zs}]*[xX][\s\p{Zs}]*(\d+(?:\.\d+)?)`)

	// "10 tablets", "60 ml"
	leadingQuantityPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)`)

	// "strip of 15 tablets", "bottle of 60 ml"
	ofQuantityPattern = regexp.MustCompile(`(?i)of[\s\p{Zs}]+(\d+(?:\.\d+)?)`)

	anyNumberPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

// ExtractQuantity reads the pack magnitude out of free text such as
// "strip of 15 tablets" or "2 x 10 tablets". It returns nil when the text is
// absent, empty or carries no number. Units are never reconciled: "60 ml"
// and "60 tablets" both yield 60.
func ExtractQuantity(unitText *string) *float64 {
	if unitText == nil {
		return nil
	}
	return ExtractQuantityString(*unitText)
}

// ExtractQuantityString is ExtractQuantity for a plain string; "" is absent
func ExtractQuantityString(unitText string) *float64 {
	s := strings.TrimSpace(unitText)
	if s == "" {
		return nil
	}

	if m := multipliedQuantityPattern.FindStringSubmatch(s); m != nil {
		a, errA := strconv.ParseFloat(m[1], 64)
		b, errB := strconv.ParseFloat(m[2], 64)
		if errA == nil && errB == nil {
			product := a * b
			return &product
		}
	}

	for _, pattern := range []*regexp.Regexp{leadingQuantityPattern, ofQuantityPattern, anyNumberPattern} {
		if m := pattern.FindStringSubmatch(s); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return &v
			}
		}
	}

	return nil
}
