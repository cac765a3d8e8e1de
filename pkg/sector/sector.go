// Package sector computes the pie-slice polygons that approximate an
// antenna's directional coverage and maps coverage radii onto a colour
// gradient.
package sector

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
)

const (
	// MetersPerDegreeLat is the equirectangular scale used for sector offsets.
	// Valid only for small areas away from the poles.
	MetersPerDegreeLat = 111320.0
	// DefaultSteps is the arc resolution used when steps <= 0
	DefaultSteps = 36

	earthRadiusMeters = 6371000.0
	poleEpsilon       = 1e-12
)

// ErrInvalidGeometry is returned for inputs that cannot describe a sector
var ErrInvalidGeometry = errors.New("invalid sector geometry")

// ComputeSectorPolygon returns steps+1 arc vertices from azimuth-aperture/2 to
// azimuth+aperture/2 followed by the antenna location itself. Angles are
// compass bearings: 0 points north, 90 east.
//
// A zero radius or zero aperture yields a degenerate but valid polygon.
func ComputeSectorPolygon(lat, lon, azimuthDeg, apertureDeg, radiusMeters float64, steps int) ([]models.Location, error) {
	if err := validate(lat, lon, azimuthDeg, apertureDeg, radiusMeters); err != nil {
		return nil, err
	}

	cosLat := math.Cos((s1.Angle(lat) * s1.Degree).Radians())
	return sweep(lat, lon, azimuthDeg, apertureDeg, steps, func(theta s1.Angle) models.Location {
		dLat := radiusMeters * math.Cos(theta.Radians()) / MetersPerDegreeLat
		dLon := 0.0
		if math.Abs(cosLat) > poleEpsilon {
			dLon = radiusMeters * math.Sin(theta.Radians()) / (MetersPerDegreeLat * cosLat)
		}
		return models.Location{Lat: lat + dLat, Lon: lon + dLon}
	}), nil
}

// ComputeGeodesicSector has the same contract as ComputeSectorPolygon but
// places each arc vertex at the spherical destination point, which stays
// accurate for large radii and high latitudes.
func ComputeGeodesicSector(lat, lon, azimuthDeg, apertureDeg, radiusMeters float64, steps int) ([]models.Location, error) {
	if err := validate(lat, lon, azimuthDeg, apertureDeg, radiusMeters); err != nil {
		return nil, err
	}

	origin := s2.LatLngFromDegrees(lat, lon)
	distance := s1.Angle(radiusMeters / earthRadiusMeters)
	return sweep(lat, lon, azimuthDeg, apertureDeg, steps, func(theta s1.Angle) models.Location {
		ll := destination(origin, theta, distance)
		return models.Location{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
	}), nil
}

// ForPing computes the sector of a ping record
func ForPing(p models.PingRecord, steps int, geodesic bool) ([]models.Location, error) {
	compute := ComputeSectorPolygon
	if geodesic {
		compute = ComputeGeodesicSector
	}
	polygon, err := compute(p.Latitude, p.Longitude, p.Azimuth, p.HorizontalAperture, p.CoverageRadius, steps)
	if err != nil {
		return nil, fmt.Errorf("antenna %s: %w", p.AntennaID, err)
	}
	return polygon, nil
}

// Bearing returns the compass bearing in degrees [0, 360) of the planar
// offset from origin to p
func Bearing(origin, p models.Location) float64 {
	cosLat := math.Cos(origin.Lat * math.Pi / 180)
	b := math.Atan2((p.Lon-origin.Lon)*cosLat, p.Lat-origin.Lat) * 180 / math.Pi
	return math.Mod(b+360, 360)
}

func sweep(lat, lon, azimuthDeg, apertureDeg float64, steps int, vertex func(s1.Angle) models.Location) []models.Location {
	if steps <= 0 {
		steps = DefaultSteps
	}

	start := azimuthDeg - apertureDeg/2
	step := apertureDeg / float64(steps)

	points := make([]models.Location, 0, steps+2)
	for i := 0; i <= steps; i++ {
		theta := s1.Angle(start+float64(i)*step) * s1.Degree
		points = append(points, vertex(theta))
	}

	// close the pie slice on the antenna
	return append(points, models.Location{Lat: lat, Lon: lon})
}

func destination(origin s2.LatLng, bearing, distance s1.Angle) s2.LatLng {
	lat1 := origin.Lat.Radians()
	lon1 := origin.Lng.Radians()
	b := bearing.Radians()
	d := distance.Radians()

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(b))
	lon2 := lon1 + math.Atan2(math.Sin(b)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	return s2.LatLng{Lat: s1.Angle(lat2), Lng: s1.Angle(lon2)}.Normalized()
}

func validate(lat, lon, azimuthDeg, apertureDeg, radiusMeters float64) error {
	for _, v := range []float64{lat, lon, azimuthDeg, apertureDeg, radiusMeters} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite input", ErrInvalidGeometry)
		}
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: location (%g, %g) out of range", ErrInvalidGeometry, lat, lon)
	}
	if apertureDeg < 0 || apertureDeg > 360 {
		return fmt.Errorf("%w: aperture %g outside [0, 360]", ErrInvalidGeometry, apertureDeg)
	}
	if radiusMeters < 0 {
		return fmt.Errorf("%w: negative radius %g", ErrInvalidGeometry, radiusMeters)
	}
	return nil
}
