package entity

import (
	"github.com/shopspring/decimal"
)

// Money is a fixed-point amount rendered with exactly two fractional digits.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{Decimal: d.Round(2)} }

// ParseMoney parses a decimal string such as "9.99".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Decimal: d}, nil
}

func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Times(qty int) Money {
	return NewMoney(m.Mul(decimal.NewFromInt(int64(qty))))
}

func (m Money) Plus(o Money) Money {
	return NewMoney(m.Add(o.Decimal))
}

func (m Money) String() string { return m.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
