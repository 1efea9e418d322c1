// Package core holds the shop's records and the number handling shared by
// storage, analytics and the HTTP layer.
package core

import (
	"strconv"
	"strings"
)

// Money is an amount in cents of a shilling.
type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to cents with half-up rounding on
// the third fractional digit. Comma thousands separators are ignored, so
// "1,500.50" is 150050. Zero is accepted; negative and malformed input is
// rejected with ErrInvalidAmount.
//
//	ParseAmount("500")     -> 50000
//	ParseAmount("12.345")  -> 1235
//	ParseAmount("1,200")   -> 120000
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.TrimPrefix(s, "+")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Shillings returns the value in whole shillings for display.
// Sums should stay in cents.
func (m Money) Shillings() float64 {
	return float64(m.Cents) / 100.0
}

// MarshalJSON renders the amount as a plain number of shillings.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Shillings(), 'f', -1, 64)), nil
}
