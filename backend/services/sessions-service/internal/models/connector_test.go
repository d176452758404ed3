package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectorUpdateAppliesOnlyPresentFields(t *testing.T) {
	power := 22000
	ct := ConnectorType2
	c := &Connector{ID: 4, Number: 1, MaxPowerW: &power}

	price := decimal.RequireFromString("7.50")
	active := true
	ConnectorUpdate{Type: &ct, PricePerKWh: &price, IsActive: &active}.Apply(c)

	require.NotNil(t, c.Type)
	assert.Equal(t, ConnectorType2, *c.Type)
	assert.Nil(t, c.CurrentType)
	require.NotNil(t, c.MaxPowerW)
	assert.Equal(t, 22000, *c.MaxPowerW)
	require.True(t, c.PricePerKWh.Valid)
	assert.True(t, c.PricePerKWh.Decimal.Equal(price))
	assert.True(t, c.IsActive)

	// the connector must not alias the update's pointers
	ct = ConnectorCCS
	assert.Equal(t, ConnectorType2, *c.Type)
}

func TestConnectorUpdateValidate(t *testing.T) {
	negative := -1
	assert.Error(t, ConnectorUpdate{MaxPowerW: &negative}.Validate())

	price := decimal.NewFromInt(-2)
	assert.Error(t, ConnectorUpdate{PricePerKWh: &price}.Validate())

	bogus := CurrentType("XX")
	assert.Error(t, ConnectorUpdate{CurrentType: &bogus}.Validate())

	dc := CurrentDC
	assert.NoError(t, ConnectorUpdate{CurrentType: &dc}.Validate())
	assert.True(t, ConnectorUpdate{}.Empty())
}

func TestAccessTagStatus(t *testing.T) {
	cases := []struct {
		name string
		tag  AccessTag
		want AuthorizationStatus
	}{
		{"active enabled", AccessTag{IsActive: true, IsEnabled: true}, AuthorizationAccepted},
		{"active disabled", AccessTag{IsActive: true}, AuthorizationBlocked},
		{"soft deleted", AccessTag{IsActive: false, IsEnabled: true}, AuthorizationInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.tag.Status())
		})
	}
}

func TestAccessTagNormalize(t *testing.T) {
	tag := AccessTag{IsActive: false, IsEnabled: true}
	tag.Normalize()
	assert.False(t, tag.IsEnabled)
}

func TestTechnicalInfoMergeKeepsStoredValues(t *testing.T) {
	c := &Charger{Vendor: "ABB", FirmwareVersion: "1.0"}
	changed := TechnicalInfo{Model: "Terra AC", FirmwareVersion: ""}.MergeInto(c)

	assert.True(t, changed)
	assert.Equal(t, "ABB", c.Vendor)
	assert.Equal(t, "Terra AC", c.Model)
	assert.Equal(t, "1.0", c.FirmwareVersion)

	assert.False(t, TechnicalInfo{Vendor: "ABB"}.MergeInto(c))
}
