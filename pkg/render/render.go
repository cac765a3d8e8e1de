// Package render turns visible ping records into what a map draws: an antenna
// marker, a coverage sector and a colour per record, plus a GeoJSON export.
package render

import (
	"fmt"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
	"github.com/1F47E/antenna-coverage-map/pkg/sector"
)

// minPolygonVertices is the smallest vertex count that closes into a valid
// GeoJSON ring
const minPolygonVertices = 3

// Feature is the rendering output for one record
type Feature struct {
	Record  models.PingRecord
	Point   models.Location
	Polygon []models.Location
	Color   string
}

// Renderer computes features for a record set
type Renderer struct {
	Steps    int
	Geodesic bool
	Gradient sector.Gradient
	Logger   *log.Logger
}

// NewRenderer returns a renderer with the default resolution and gradient
func NewRenderer() *Renderer {
	return &Renderer{Steps: sector.DefaultSteps, Gradient: sector.DefaultGradient}
}

// Features renders records in order. Colours are relative to the radius
// domain of records itself, so pass the visible set. A record whose geometry
// is invalid gets the trivial polygon made of its own location; its error is
// logged and returned.
func (r *Renderer) Features(records []models.PingRecord) ([]Feature, []error) {
	domain, _ := sector.DomainOf(records)

	var errs []error
	features := make([]Feature, 0, len(records))
	for _, rec := range records {
		point := rec.Location()
		polygon, err := sector.ForPing(rec, r.Steps, r.Geodesic)
		if err != nil {
			r.logf("render: %v", err)
			errs = append(errs, err)
			polygon = []models.Location{point}
		}
		features = append(features, Feature{
			Record:  rec,
			Point:   point,
			Polygon: polygon,
			Color:   domain.Color(r.Gradient, rec.CoverageRadius),
		})
	}
	return features, errs
}

// FeatureCollection converts features into GeoJSON: a Point feature for the
// antenna and a Polygon feature for the sector of every record. A record left
// with the trivial polygon only gets its marker, as a ring needs at least
// four positions.
func FeatureCollection(features []Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, f := range features {
		marker := geojson.NewFeature(orb.Point{f.Point.Lon, f.Point.Lat})
		setProperties(marker, f, i, "antenna")
		marker.Properties["popup"] = Popup(f.Record)
		fc.Append(marker)

		if len(f.Polygon) < minPolygonVertices {
			continue
		}
		coverage := geojson.NewFeature(polygon(f.Polygon))
		setProperties(coverage, f, i, "coverage")
		coverage.Properties["fill"] = f.Color
		coverage.Properties["stroke"] = f.Color
		coverage.Properties["fill-opacity"] = 0.5
		fc.Append(coverage)
	}
	return fc
}

// Popup is the marker text shown for a record
func Popup(rec models.PingRecord) string {
	return fmt.Sprintf("Phone: %s\nDate and time: %s\nLat: %v, Lng: %v",
		rec.Caller, rec.Datetime, rec.Latitude, rec.Longitude)
}

func setProperties(f *geojson.Feature, src Feature, index int, kind string) {
	f.ID = fmt.Sprintf("%d-%s", index, kind)
	f.Properties["kind"] = kind
	f.Properties["color"] = src.Color
	f.Properties[models.FieldAntennaID] = src.Record.AntennaID
	f.Properties[models.FieldCaller] = src.Record.Caller
	f.Properties[models.FieldDatetime] = src.Record.Datetime
	f.Properties[models.FieldAzimuth] = src.Record.Azimuth
	f.Properties[models.FieldHorizontalAperture] = src.Record.HorizontalAperture
	f.Properties[models.FieldCoverageRadius] = src.Record.CoverageRadius
}

// polygon builds a closed GeoJSON ring from the sector vertices
func polygon(vertices []models.Location) orb.Polygon {
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, orb.Point{v.Lon, v.Lat})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

func (r *Renderer) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
