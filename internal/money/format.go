package money

import (
	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Format renders amount in the display convention of the given ISO currency
// code, e.g. "€1,234.50" or "D1,234.00".
func Format(amount float64, code string) string {
	cur := *gomoney.New(0, code).Currency()
	minor := decimal.NewFromFloat(finite(amount, 0)).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
