package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor units (paise). JSON carries it as decimal rupees.
type Money int64

// MoneyFromDecimal converts a rupee amount with at most two fractional digits.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, Invalid("amount", "amount supports at most two decimal places")
	}
	if !minor.BigInt().IsInt64() {
		return 0, Invalid("amount", "amount is too large")
	}
	return Money(minor.IntPart()), nil
}

// ParseMoney parses a rupee amount such as "1000" or "99.50".
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, Invalid("amount", "amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, Invalid("amount", "amount must be a number")
	}
	return MoneyFromDecimal(d)
}

// Decimal returns the amount in rupees.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Paise returns the minor-unit amount sent to the payment gateway.
func (m Money) Paise() int64 { return int64(m) }

func (m Money) String() string { return m.Decimal().StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return Invalid("amount", "amount must be a number")
	}
	v, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
