package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Amount is a count of minor currency units (cents, fen). All arithmetic on
// it is integer arithmetic.
type Amount int64

func (a Amount) Add(b Amount) Amount {
	return a + b
}

func (a Amount) Sub(b Amount) Amount {
	return a - b
}

func (a Amount) IsNegative() bool {
	return a < 0
}

// Decimal returns the amount in major units, given the number of minor-unit
// digits of the currency (2 for CNY and USD, 7 for Stellar assets).
func (a Amount) Decimal(exp int32) decimal.Decimal {
	return decimal.New(int64(a), -exp)
}

func (a Amount) String() string {
	return strconv.FormatInt(int64(a), 10)
}
