// Package core provides amount parsing and display helpers.
//
// Amounts are whole currency units (yen) held in int64. There is no
// fractional part anywhere in the domain.
package core

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

const yenSign = "¥"

// ParseAmount converts user input to a whole amount in [0, MaxAmount].
//
// Input mirrors a numbers-only text field: surrounding spaces, a leading
// yen sign and thousands separators are tolerated, anything else is rejected.
//
// Examples:
//
//	ParseAmount("1200")    -> 1200, nil
//	ParseAmount("¥1,200")  -> 1200, nil
//	ParseAmount("12.5")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, yenSign)
	s = strings.TrimPrefix(s, "￥")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if v > MaxAmount {
		return 0, ErrAmountTooLarge
	}
	return v, nil
}

// FormatYen renders an amount with decimal grouping, e.g. "¥40,000" or "-¥500".
func FormatYen(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(yenSign)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpenseDate renders the date the way expense lists show it; the time
// of day is only shown when the expense was recorded with one.
func FormatExpenseDate(t time.Time, includeTime bool) string {
	if includeTime {
		return t.Format("2006年1月2日 15:04")
	}
	return t.Format("2006年1月2日")
}
