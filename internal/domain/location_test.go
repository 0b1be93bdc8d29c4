package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTargetLocations_Unset(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(""), []byte("  "), []byte("null")} {
		tl := DecodeTargetLocations(raw)
		assert.Equal(t, TargetUnset, tl.Kind, "raw %q", raw)
	}
}

func TestDecodeTargetLocations_Structured(t *testing.T) {
	tl := DecodeTargetLocations([]byte(`{"pan_india": false, "states": [{"id": 3}], "cities": [{"id": 7}, {"id": 9}]}`))

	assert.Equal(t, TargetStructured, tl.Kind)
	assert.False(t, tl.PanIndia)
	assert.Equal(t, []int64{3}, tl.StateIDs)
	assert.Equal(t, []int64{7, 9}, tl.CityIDs)
	assert.True(t, tl.HasCity(7))
	assert.False(t, tl.HasCity(8))
	assert.True(t, tl.HasState(3))
}

func TestDecodeTargetLocations_PanIndia(t *testing.T) {
	tl := DecodeTargetLocations([]byte(`{"pan_india": true}`))
	assert.Equal(t, TargetStructured, tl.Kind)
	assert.True(t, tl.PanIndia)
}

func TestDecodeTargetLocations_ToleratesIDShapes(t *testing.T) {
	tl := DecodeTargetLocations([]byte(`{"cities": [4, "5", {"id": "6"}]}`))
	assert.Equal(t, TargetStructured, tl.Kind)
	assert.Equal(t, []int64{4, 5, 6}, tl.CityIDs)
}

func TestDecodeTargetLocations_DoubleEncoded(t *testing.T) {
	tl := DecodeTargetLocations([]byte(`"{\"pan_india\": true}"`))
	assert.Equal(t, TargetStructured, tl.Kind)
	assert.True(t, tl.PanIndia)
}

func TestDecodeTargetLocations_LegacyString(t *testing.T) {
	tl := DecodeTargetLocations([]byte(`"only mumbai, 100% genuine"`))
	assert.Equal(t, TargetLegacyText, tl.Kind)
	assert.Equal(t, "only mumbai, 100% genuine", tl.Raw)
}

func TestDecodeTargetLocations_GarbageDegrades(t *testing.T) {
	tl := DecodeTargetLocations([]byte(`[{"broken": ]`))
	assert.Equal(t, TargetLegacyText, tl.Kind)
	assert.Equal(t, `[{"broken": ]`, tl.Raw)
}

func TestProduct_PriceValue(t *testing.T) {
	tests := []struct {
		price    string
		expected float64
	}{
		{"499", 499},
		{"1,200.50", 1200.50},
		{" 35 ", 35},
		{"call for price", 0},
		{"", 0},
	}
	for _, tt := range tests {
		p := Product{Price: tt.price}
		assert.Equal(t, tt.expected, p.PriceValue(), "price %q", tt.price)
	}
}
