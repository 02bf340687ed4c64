package entity

import (
	"math"
	"strconv"
	"strings"
)

const currencySymbol = "€"

// FormatEuro renders a number with the euro prefix and no trailing zeros.
func FormatEuro(amount float64) string {
	return currencySymbol + strconv.FormatFloat(amount, 'f', -1, 64)
}

// NormalizeOfferPrice turns free-form offer input into the display string stored
// on a card: "50" and "€50" both become "€50", unparsable input is kept
// verbatim (trimmed) and empty input stays empty.
func NormalizeOfferPrice(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	clean := strings.NewReplacer("$", "", currencySymbol, "").Replace(trimmed)
	clean = strings.TrimSpace(clean)

	amount, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return trimmed
	}
	return FormatEuro(amount)
}

// ParseListingPrice extracts the numeric price from listing input. Everything
// except digits and dots is dropped and the longest leading decimal is parsed,
// so "€1,250.50" yields 1250.5. It returns nil when no number is present.
func ParseListingPrice(raw string) *float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	end := 0
	seenDot := false
	seenDigit := false
	for end < len(digits) {
		ch := digits[end]
		if ch == '.' {
			if seenDot {
				break
			}
			seenDot = true
		} else {
			seenDigit = true
		}
		end++
	}
	if !seenDigit {
		return nil
	}

	amount, err := strconv.ParseFloat(strings.TrimSuffix(digits[:end], "."), 64)
	if err != nil {
		return nil
	}
	return &amount
}
