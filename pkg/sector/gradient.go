package sector

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
)

// DefaultGradient runs from blue for the smallest visible radius to red for
// the largest
var DefaultGradient = Gradient{
	Low:  colorful.Color{R: 0x2b / 255.0, G: 0x83 / 255.0, B: 0xba / 255.0},
	High: colorful.Color{R: 0xd7 / 255.0, G: 0x19 / 255.0, B: 0x1c / 255.0},
}

// Gradient is a two-stop linear colour ramp
type Gradient struct {
	Low  colorful.Color
	High colorful.Color
}

// ParseGradient builds a gradient from two hex colours such as "#2b83ba"
func ParseGradient(low, high string) (Gradient, error) {
	lo, err := colorful.Hex(low)
	if err != nil {
		return Gradient{}, fmt.Errorf("invalid low colour %q: %w", low, err)
	}
	hi, err := colorful.Hex(high)
	if err != nil {
		return Gradient{}, fmt.Errorf("invalid high colour %q: %w", high, err)
	}
	return Gradient{Low: lo, High: hi}, nil
}

// At returns the hex colour at position t of the ramp. t is clamped to [0, 1]
// and the endpoints are returned exactly.
func (g Gradient) At(t float64) string {
	switch {
	case math.IsNaN(t) || t <= 0:
		return g.Low.Hex()
	case t >= 1:
		return g.High.Hex()
	}
	return g.Low.BlendRgb(g.High, t).Clamped().Hex()
}

// ColorForRadius maps radius linearly from [min, max] onto the gradient.
// An empty domain (min == max) returns the low endpoint.
func (g Gradient) ColorForRadius(radius, min, max float64) string {
	if max <= min {
		return g.Low.Hex()
	}
	return g.At((radius - min) / (max - min))
}

// ColorForRadius maps radius onto DefaultGradient
func ColorForRadius(radius, min, max float64) string {
	return DefaultGradient.ColorForRadius(radius, min, max)
}

// Domain is the coverage radius range of a record set
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Color maps radius onto g within the domain
func (d Domain) Color(g Gradient, radius float64) string {
	return g.ColorForRadius(radius, d.Min, d.Max)
}

// DomainOf returns the coverage radius range of records. It reports false
// for an empty set.
func DomainOf(records []models.PingRecord) (Domain, bool) {
	if len(records) == 0 {
		return Domain{}, false
	}

	d := Domain{Min: records[0].CoverageRadius, Max: records[0].CoverageRadius}
	for _, r := range records[1:] {
		d.Min = math.Min(d.Min, r.CoverageRadius)
		d.Max = math.Max(d.Max, r.CoverageRadius)
	}
	return d, true
}
