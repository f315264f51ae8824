package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotAnAmount = errors.New("not an amount of money")
	ErrNotPositive = errors.New("amount must be greater than zero")
	ErrTooPrecise  = errors.New("amount has more than two decimal places")
)

// Format renderiza um valor como "$30.00" ou "-$5.00".
func Format(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// FormatSigned renderiza ganhos/perdas: "+$10.00", "-$5.00" e "$0" para zero.
func FormatSigned(d decimal.Decimal) string {
	switch {
	case d.IsZero():
		return "$0"
	case d.IsPositive():
		return "+$" + d.StringFixed(2)
	default:
		return "-$" + d.Neg().StringFixed(2)
	}
}

// ParseWager interpreta o valor digitado pelo jogador ("30", "$12.50").
func ParseWager(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "$"))
	if s == "" {
		return decimal.Zero, ErrNotAnAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNotAnAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}
	if !d.Round(2).Equal(d) {
		return decimal.Zero, ErrTooPrecise
	}
	return d, nil
}
