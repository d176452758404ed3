package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateDeltaEnergy(t *testing.T) {
	assert.Equal(t, int64(5000), CalculateDeltaEnergy(0, 5000))
	assert.Equal(t, int64(0), CalculateDeltaEnergy(1200, 1200))
	assert.Equal(t, int64(0), CalculateDeltaEnergy(1200, 900), "meter rollback clamps to zero")
}

func TestCalculatePrice(t *testing.T) {
	cases := []struct {
		name   string
		wh     int64
		rate   string
		expect string
	}{
		{"whole kWh", 5000, "10.00", "50"},
		{"fractional", 1234, "0.35", "0.43"},
		{"half to even down", 5, "1", "0"},
		{"half to even up", 15, "1", "0.02"},
		{"unset rate", 9000, "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculatePrice(tc.wh, decimal.RequireFromString(tc.rate))
			assert.True(t, got.Equal(decimal.RequireFromString(tc.expect)), "got %s", got)
		})
	}
}
