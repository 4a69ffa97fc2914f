package core

import (
	"strconv"
	"strings"
)

var persianDigits = [10]rune{'۰', '۱', '۲', '۳', '۴', '۵', '۶', '۷', '۸', '۹'}

// FormatNumber renders n with Persian digits and Persian thousands marks,
// e.g. 1250000 -> "۱٬۲۵۰٬۰۰۰".
func FormatNumber(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune('٬')
		}
		b.WriteRune(persianDigits[r-'0'])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatCurrency renders an amount with the toman unit suffix.
func FormatCurrency(m Money) string {
	return FormatNumber(m.Tomans) + " تومان"
}

// FormatCompactCurrency collapses large amounts to the nearest named unit
// (هزار / میلیون / میلیارد), matching the dashboard's compact labels.
func FormatCompactCurrency(m Money) string {
	n := m.Tomans
	switch {
	case n >= 1_000_000_000:
		return FormatNumber(roundDiv(n, 1_000_000_000)) + " میلیارد"
	case n >= 1_000_000:
		return FormatNumber(roundDiv(n, 1_000_000)) + " میلیون"
	case n >= 1_000:
		return FormatNumber(roundDiv(n, 1_000)) + " هزار"
	default:
		return FormatNumber(n)
	}
}

func roundDiv(n, unit int64) int64 {
	return (n + unit/2) / unit
}
