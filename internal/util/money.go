// internal/util/money.go
package util

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits stored for every amount.
const MoneyScale = 2

// MaxMoney is the first value that no longer fits NUMERIC(18,2).
var MaxMoney = decimal.New(1, 16)

// HasMoneyScale reports whether d has at most MoneyScale fractional digits.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

// FitsMoney reports whether |d| is below MaxMoney.
func FitsMoney(d decimal.Decimal) bool {
	return d.Abs().LessThan(MaxMoney)
}
