package rtree

import "github.com/1F47E/antenna-coverage-map/pkg/models"

// DefaultCenter is the map centre used when there is nothing to show
var DefaultCenter = models.Location{Lat: 51.505, Lon: -0.09}

// Bounds returns the smallest box containing every antenna, for fitting a map
// view to the visible records. It reports false for an empty set.
func Bounds(records []models.PingRecord) (models.BoundingBox, bool) {
	if len(records) == 0 {
		return models.BoundingBox{}, false
	}

	first := records[0].Location()
	box := models.BoundingBox{BottomLeft: first, TopRight: first}
	for _, r := range records[1:] {
		if r.Latitude < box.BottomLeft.Lat {
			box.BottomLeft.Lat = r.Latitude
		}
		if r.Latitude > box.TopRight.Lat {
			box.TopRight.Lat = r.Latitude
		}
		if r.Longitude < box.BottomLeft.Lon {
			box.BottomLeft.Lon = r.Longitude
		}
		if r.Longitude > box.TopRight.Lon {
			box.TopRight.Lon = r.Longitude
		}
	}
	return box, true
}

// Center returns the position a map should open on: the first record, or
// DefaultCenter when there are none
func Center(records []models.PingRecord) models.Location {
	if len(records) == 0 {
		return DefaultCenter
	}
	return records[0].Location()
}
