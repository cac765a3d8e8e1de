package models

// Wire names of the ping record fields. They are case-sensitive and shared by
// the spreadsheet header row and the JSON documents.
const (
	FieldAntennaID          = "antennaId"
	FieldCaller             = "caller"
	FieldDatetime           = "datetime"
	FieldLatitude           = "latitude"
	FieldLongitude          = "longitude"
	FieldAzimuth            = "azimuth"
	FieldHorizontalAperture = "horizontalAperture"
	FieldCoverageRadius     = "coverageRadius"
)

// Fields lists every ping record field in wire order
var Fields = []string{
	FieldAntennaID,
	FieldCaller,
	FieldDatetime,
	FieldLatitude,
	FieldLongitude,
	FieldAzimuth,
	FieldHorizontalAperture,
	FieldCoverageRadius,
}

// Location represents a geographic location with latitude and longitude
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft Location `json:"bottomLeft"`
	TopRight   Location `json:"topRight"`
}

// Contains reports whether the location lies inside the box, edges included
func (b BoundingBox) Contains(l Location) bool {
	return l.Lat >= b.BottomLeft.Lat && l.Lat <= b.TopRight.Lat &&
		l.Lon >= b.BottomLeft.Lon && l.Lon <= b.TopRight.Lon
}

// PingRecord is a single antenna/caller association. Records are read-only
// once ingested.
type PingRecord struct {
	AntennaID          string  `json:"antennaId"`
	Caller             string  `json:"caller"`
	Datetime           string  `json:"datetime"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	Azimuth            float64 `json:"azimuth"`
	HorizontalAperture float64 `json:"horizontalAperture"`
	CoverageRadius     float64 `json:"coverageRadius"`
}

// Location returns the antenna position of the ping
func (p PingRecord) Location() Location {
	return Location{Lat: p.Latitude, Lon: p.Longitude}
}
