package sector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
)

func TestColorForRadiusEndpoints(t *testing.T) {
	low := ColorForRadius(100, 100, 500)
	high := ColorForRadius(500, 100, 500)

	assert.Equal(t, "#2b83ba", low)
	assert.Equal(t, "#d7191c", high)
	assert.NotEqual(t, low, high)
}

func TestColorForRadiusSingleValueDomain(t *testing.T) {
	assert.Equal(t, "#2b83ba", ColorForRadius(300, 300, 300))
	assert.Equal(t, "#2b83ba", ColorForRadius(0, 0, 0))
}

func TestGradientAt(t *testing.T) {
	g, err := ParseGradient("#000000", "#ffffff")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		t        float64
		expected string
	}{
		{"below range", -1, "#000000"},
		{"start", 0, "#000000"},
		{"middle", 0.5, "#808080"},
		{"end", 1, "#ffffff"},
		{"above range", 2, "#ffffff"},
		{"nan", math.NaN(), "#000000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, g.At(tc.t))
		})
	}
}

func TestGradientIsLinear(t *testing.T) {
	g, err := ParseGradient("#000000", "#ff0000")
	require.NoError(t, err)

	assert.Equal(t, "#400000", g.ColorForRadius(250, 0, 1000))
	assert.Equal(t, "#bf0000", g.ColorForRadius(750, 0, 1000))
}

func TestParseGradientInvalid(t *testing.T) {
	_, err := ParseGradient("blue", "#ffffff")
	assert.Error(t, err)
	_, err = ParseGradient("#000000", "#12")
	assert.Error(t, err)
}

func TestDomainOf(t *testing.T) {
	_, ok := DomainOf(nil)
	assert.False(t, ok)

	records := []models.PingRecord{
		{CoverageRadius: 300},
		{CoverageRadius: 100},
		{CoverageRadius: 500},
	}
	d, ok := DomainOf(records)
	require.True(t, ok)
	assert.Equal(t, Domain{Min: 100, Max: 500}, d)
	assert.Equal(t, ColorForRadius(100, 100, 500), d.Color(DefaultGradient, 100))
	assert.Equal(t, ColorForRadius(500, 100, 500), d.Color(DefaultGradient, 500))
}
