package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount. It is emitted as a bare JSON number in
// its original scale and accepts either a number or a numeric string on
// input, so repeated read-modify-write cycles never drift.
type Money struct {
	decimal.Decimal
}

// Amounts are bounded like a 128-bit decimal: at most maxScale fractional
// digits and maxIntegerDigits before the point.
const (
	maxScale         = 28
	maxIntegerDigits = 29
)

// ParseMoney parses a decimal string such as "1200.50". Amounts outside the
// supported precision are rejected.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	exp := int64(d.Exponent())
	if -exp > maxScale {
		return Money{}, fmt.Errorf("invalid amount %q: more than %d decimal places", s, maxScale)
	}
	if d.IsZero() {
		if exp > 0 {
			d = decimal.Zero
		}
		return Money{Decimal: d}, nil
	}
	if int64(d.NumDigits())+exp > maxIntegerDigits {
		return Money{}, fmt.Errorf("invalid amount %q: more than %d integer digits", s, maxIntegerDigits)
	}
	return Money{Decimal: d}, nil
}

// MustMoney is ParseMoney for literals known to be valid.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Equal compares amounts numerically, so 1200 equals 1200.00.
func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// MarshalJSON keeps the scale the amount was written with, so 1200.00 stays
// 1200.00.
func (m Money) MarshalJSON() ([]byte, error) {
	if exp := m.Exponent(); exp < 0 {
		return []byte(m.StringFixed(-exp)), nil
	}
	return []byte(m.Decimal.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number: %w", err)
	}
	parsed, err := ParseMoney(n.String())
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
