package service

import "github.com/shopspring/decimal"

var whPerKWh = decimal.NewFromInt(1000)

// CalculateDeltaEnergy returns the Wh consumed between two meter readings, never negative.
func CalculateDeltaEnergy(start, current int64) int64 {
	if current < start {
		return 0
	}
	return current - start
}

// CalculatePrice converts Wh to kWh, applies the per-kWh rate and rounds half to even
// to cents.
func CalculatePrice(energyWh int64, pricePerKWh decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(energyWh).Div(whPerKWh).Mul(pricePerKWh).RoundBank(2)
}
