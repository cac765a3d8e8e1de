package render

import (
	"encoding/json"
	"io"
	"log"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
	"github.com/1F47E/antenna-coverage-map/pkg/sector"
)

func quietRenderer() *Renderer {
	r := NewRenderer()
	r.Steps = 4
	r.Logger = log.New(io.Discard, "", 0)
	return r
}

func TestFeatures(t *testing.T) {
	records := []models.PingRecord{
		{AntennaID: "A", Caller: "1", Datetime: "01-01-2024 00:00", Latitude: 0, Longitude: 0, Azimuth: 90, HorizontalAperture: 90, CoverageRadius: 100},
		{AntennaID: "B", Caller: "2", Datetime: "01-01-2024 00:00", Latitude: 1, Longitude: 1, Azimuth: 0, HorizontalAperture: 60, CoverageRadius: 500},
	}

	features, errs := quietRenderer().Features(records)
	assert.Empty(t, errs)
	require.Len(t, features, 2)

	assert.Equal(t, models.Location{Lat: 0, Lon: 0}, features[0].Point)
	assert.Len(t, features[0].Polygon, 6)
	assert.Equal(t, sector.DefaultGradient.Low.Hex(), features[0].Color)
	assert.Equal(t, sector.DefaultGradient.High.Hex(), features[1].Color)
}

func TestFeaturesDegradeOnInvalidGeometry(t *testing.T) {
	records := []models.PingRecord{
		{AntennaID: "BAD", Latitude: 95, Longitude: 0, HorizontalAperture: 90, CoverageRadius: 100},
	}

	features, errs := quietRenderer().Features(records)
	require.Len(t, errs, 1)
	require.Len(t, features, 1)
	assert.Equal(t, []models.Location{{Lat: 95, Lon: 0}}, features[0].Polygon)
}

func TestFeatureCollection(t *testing.T) {
	rec := models.PingRecord{AntennaID: "A", Caller: "600111222", Datetime: "31-01-2024 23:59:59", Latitude: 40, Longitude: -3, Azimuth: 45, HorizontalAperture: 120, CoverageRadius: 800}
	features, errs := quietRenderer().Features([]models.PingRecord{rec})
	require.Empty(t, errs)

	fc := FeatureCollection(features)
	require.Len(t, fc.Features, 2)

	marker := fc.Features[0]
	assert.Equal(t, orb.Point{-3, 40}, marker.Geometry)
	assert.Equal(t, "antenna", marker.Properties["kind"])
	assert.Contains(t, marker.Properties["popup"], "600111222")

	coverage := fc.Features[1]
	poly, ok := coverage.Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)
	ring := poly[0]
	assert.Equal(t, ring[0], ring[len(ring)-1])
	assert.Len(t, ring, 7) // 5 arc samples, antenna, closing vertex
	assert.Equal(t, features[0].Color, coverage.Properties["fill"])

	data, err := fc.MarshalJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "FeatureCollection", decoded["type"])
}

func TestFeatureCollectionTrivialPolygon(t *testing.T) {
	records := []models.PingRecord{
		{AntennaID: "BAD", Latitude: 95, Longitude: 2, HorizontalAperture: 90, CoverageRadius: 100},
		{AntennaID: "OK", Latitude: 1, Longitude: 2, HorizontalAperture: 90, CoverageRadius: 100},
	}
	features, errs := quietRenderer().Features(records)
	require.Len(t, errs, 1)

	fc := FeatureCollection(features)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "0-antenna", fc.Features[0].ID)
	assert.Equal(t, "1-antenna", fc.Features[1].ID)
	assert.Equal(t, "1-coverage", fc.Features[2].ID)

	for _, f := range fc.Features {
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok {
			continue
		}
		for _, ring := range poly {
			assert.GreaterOrEqual(t, len(ring), 4)
			assert.Equal(t, ring[0], ring[len(ring)-1])
		}
	}
}

func TestFeatureCollectionMinimalSector(t *testing.T) {
	r := quietRenderer()
	r.Steps = 1
	features, errs := r.Features([]models.PingRecord{{AntennaID: "A", HorizontalAperture: 60, CoverageRadius: 100}})
	require.Empty(t, errs)
	require.Len(t, features[0].Polygon, 3)

	fc := FeatureCollection(features)
	require.Len(t, fc.Features, 2)
	assert.Len(t, fc.Features[1].Geometry.(orb.Polygon)[0], 4)
}

func TestPopup(t *testing.T) {
	text := Popup(models.PingRecord{Caller: "600", Datetime: "01-01-2024 00:00", Latitude: 1.5, Longitude: -2.25})
	assert.Contains(t, text, "Phone: 600")
	assert.Contains(t, text, "01-01-2024 00:00")
	assert.Contains(t, text, "Lat: 1.5, Lng: -2.25")
}
