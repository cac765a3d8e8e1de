// Package state holds the map view as an immutable value: the loaded record
// set, the applied criteria and viewport, and the derived visible subset and
// colour domain. Every update returns a new View.
package state

import (
	"github.com/1F47E/antenna-coverage-map/pkg/models"
	"github.com/1F47E/antenna-coverage-map/pkg/rtree"
	"github.com/1F47E/antenna-coverage-map/pkg/sector"
	"github.com/1F47E/antenna-coverage-map/pkg/temporal"
)

// View is safe to share between readers; none of its methods mutate it
type View struct {
	loaded   bool
	records  []models.PingRecord
	index    *rtree.PingIndex
	engine   *temporal.Engine
	criteria temporal.Criteria
	viewport *models.BoundingBox

	visible   []models.PingRecord
	domain    sector.Domain
	hasDomain bool
	issues    []error
}

// Empty is the view before any data has been loaded
func Empty() View {
	return View{}
}

// Load returns a view over records with no criteria applied. records must not
// be modified afterwards.
func Load(records []models.PingRecord, engine *temporal.Engine) View {
	if records == nil {
		records = []models.PingRecord{}
	}
	if engine == nil {
		engine = &temporal.Engine{}
	}
	v := View{
		loaded:  true,
		records: records,
		index:   rtree.NewPingIndex(records),
		engine:  engine,
	}
	return v.recompute()
}

// WithCriteria returns a view with c applied
func (v View) WithCriteria(c temporal.Criteria) View {
	v.criteria = c
	return v.recompute()
}

// WithViewport restricts the visible set to antennas inside box
func (v View) WithViewport(box models.BoundingBox) View {
	v.viewport = &box
	return v.recompute()
}

// ClearViewport removes the viewport restriction
func (v View) ClearViewport() View {
	v.viewport = nil
	return v.recompute()
}

// Loaded reports whether a data set has been loaded, as opposed to a loaded
// but empty one
func (v View) Loaded() bool { return v.loaded }

// Records returns the full loaded set
func (v View) Records() []models.PingRecord { return v.records }

// Visible returns the records passing the criteria and viewport, in source order
func (v View) Visible() []models.PingRecord { return v.visible }

// Criteria returns the applied criteria
func (v View) Criteria() temporal.Criteria { return v.criteria }

// Viewport returns the applied viewport, if any
func (v View) Viewport() (models.BoundingBox, bool) {
	if v.viewport == nil {
		return models.BoundingBox{}, false
	}
	return *v.viewport, true
}

// Domain returns the coverage radius range of the visible set
func (v View) Domain() (sector.Domain, bool) { return v.domain, v.hasDomain }

// Issues returns the date parse errors met while computing the visible set
func (v View) Issues() []error { return v.issues }

// Index exposes the spatial index of the loaded set
func (v View) Index() *rtree.PingIndex { return v.index }

func (v View) recompute() View {
	if !v.loaded {
		return v
	}

	candidates := v.records
	if v.viewport != nil {
		inBox, err := v.index.QueryBox(*v.viewport)
		if err != nil {
			v.issues = []error{err}
			v.visible = []models.PingRecord{}
			v.domain, v.hasDomain = sector.Domain{}, false
			return v
		}
		candidates = inBox
	}

	res := v.engine.Filter(candidates, v.criteria)
	v.visible = res.Records
	v.issues = res.Errors
	v.domain, v.hasDomain = sector.DomainOf(v.visible)
	return v
}
