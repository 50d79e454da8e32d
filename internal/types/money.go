// README: Common money value object used across modules (amounts in minor units).
package types

import (
	"fmt"
	"math"
)

const CurrencyGBP = "GBP"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Pounds builds a GBP amount from a float, rounding half away from zero to the nearest penny.
func Pounds(v float64) Money {
	return Money{Amount: int64(math.Round(v * 100)), Currency: CurrencyGBP}
}

func (m Money) Float() float64 {
	return float64(m.Amount) / 100
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) String() string {
	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, m.Currency)
}
