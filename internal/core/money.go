// Package core holds the domain value types shared by storage, services
// and the HTTP layer.
//
// This file contains money parsing and handling. Amounts are whole tomans
// held as int64; user input may arrive with Persian or Arabic numerals and
// assorted separator characters.
package core

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Money is a whole-toman amount. It marshals as a bare JSON number so the
// API payloads stay shaped like the records the frontend stores.
type Money struct {
	Tomans int64
}

func (m Money) Validate() error {
	if m.Tomans <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Tomans, 10)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseInt(strings.Trim(string(data), `"`), 10, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Tomans = v
	return nil
}

var digitFold = map[rune]rune{
	// Persian numerals
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
	// Arabic-Indic numerals
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
}

// NormalizeDigits rewrites Persian and Arabic-Indic numerals to ASCII and
// strips grouping separators (commas, Persian comma, thousands mark, spaces).
func NormalizeDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if folded, ok := digitFold[r]; ok {
			b.WriteRune(folded)
			continue
		}
		switch r {
		case ',', '،', '٬', ' ', '‌':
			// grouping characters, dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseAmount converts a user-entered amount to Money.
//
// Accepted forms: ASCII, Persian or Arabic digits with optional grouping
// separators. Fractional parts are rounded half-up to the nearest toman.
// Returns an error for empty, signed, non-numeric or non-positive input.
//
// Examples:
//
//	ParseAmount("125000")     -> 125000
//	ParseAmount("۱۲۵٬۰۰۰")    -> 125000
//	ParseAmount("1,250.5")    -> 1251 (rounds up)
func ParseAmount(s string) (Money, error) {
	s = NormalizeDigits(strings.TrimSpace(s))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return Money{}, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Half-up rounding on the first fractional digit.
	if len(fracPart) > 0 && fracPart[0] >= '5' {
		v++
	}
	if v <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Tomans: v}, nil
}

var (
	_ json.Marshaler   = Money{}
	_ json.Unmarshaler = (*Money)(nil)
)
