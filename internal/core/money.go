// Package core provides money parsing and handling utilities.
//
// Money is stored as integer cents so that sums and differences are exact.
// Ratios (budget utilization) go through shopspring/decimal.
package core

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountCents is the largest amount representable with ten digits, two of them fractional.
const MaxAmountCents int64 = 99_999_999_99

type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and at most
// two fractional digits. Zero, negative and out-of-range values are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 1234 cents
//	ParseAmount("12,3")  -> 1230 cents
//	ParseAmount("12.345") -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") || len(fracPart) > 2 {
		return Money{}, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return Money{}, ErrInvalidAmount
	}
	if len(strings.TrimLeft(intPart, "0")) > 8 {
		return Money{}, ErrInvalidAmount
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	fv, _ := strconv.ParseInt(fracPart, 10, 64)

	m := Money{Cents: iv*100 + fv}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Validate checks the stored-amount constraints: at least 0.01 and at most ten digits.
func (m Money) Validate() error {
	if m.Cents < 1 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders m with exactly two fractional digits, e.g. "-100.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts "12.34" or 12.34. Signed values are allowed so
// that computed amounts such as a negative remaining budget round-trip.
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.Equal(d.Round(2)) {
		return ErrInvalidAmount
	}
	m.Cents = d.Shift(2).IntPart()
	return nil
}
