// Package rtree indexes ping records by antenna location so the visible set
// can be restricted to a map viewport, a radius around a point or the nearest
// antennas. Queries fan out over longitude-band partitions in parallel.
package rtree

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
)

const (
	tolerance   = 1e-9
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0 // km
)

// spatialPing wraps a record and its position in the source sequence to
// implement rtreego.Spatial
type spatialPing struct {
	ordinal int
	record  models.PingRecord
	rect    *rtreego.Rect
}

func (sp *spatialPing) Bounds() *rtreego.Rect {
	return sp.rect
}

// PingIndex is a read-mostly R-Tree over ping records. Results always come
// back in source order unless stated otherwise.
type PingIndex struct {
	partitions []*rtreego.Rtree
	numParts   int
	mu         sync.RWMutex
	itemCount  atomic.Int64

	partitionBounds []models.BoundingBox
}

// NewPingIndex indexes records using one partition per CPU
func NewPingIndex(records []models.PingRecord) *PingIndex {
	return NewPingIndexWithWorkers(records, runtime.NumCPU())
}

// NewPingIndexWithWorkers indexes records using numPartitions longitude bands
func NewPingIndexWithWorkers(records []models.PingRecord, numPartitions int) *PingIndex {
	if numPartitions <= 0 {
		numPartitions = runtime.NumCPU()
	}

	idx := &PingIndex{
		partitions:      make([]*rtreego.Rtree, numPartitions),
		numParts:        numPartitions,
		partitionBounds: make([]models.BoundingBox, numPartitions),
	}

	lonRange := 360.0 / float64(numPartitions)
	for i := 0; i < numPartitions; i++ {
		idx.partitions[i] = rtreego.NewTree(dimensions, minChildren, maxChildren)

		minLon := -180.0 + float64(i)*lonRange
		maxLon := minLon + lonRange
		if i == numPartitions-1 {
			maxLon = 180.0
		}
		idx.partitionBounds[i] = models.BoundingBox{
			BottomLeft: models.Location{Lat: -90, Lon: minLon},
			TopRight:   models.Location{Lat: 90, Lon: maxLon},
		}
	}

	idx.insert(records)
	return idx
}

func (g *PingIndex) insert(records []models.PingRecord) {
	if len(records) == 0 {
		return
	}

	partitioned := make([][]*spatialPing, g.numParts)
	for ordinal, rec := range records {
		if math.IsNaN(rec.Latitude) || math.IsNaN(rec.Longitude) {
			continue
		}
		p := rtreego.Point{rec.Latitude, rec.Longitude}
		sp := &spatialPing{ordinal: ordinal, record: rec, rect: p.ToRect(tolerance)}
		i := g.partitionFor(rec.Longitude)
		partitioned[i] = append(partitioned[i], sp)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var wg sync.WaitGroup
	var inserted atomic.Int64
	for i, items := range partitioned {
		if len(items) == 0 {
			continue
		}
		wg.Add(1)
		go func(tree *rtreego.Rtree, items []*spatialPing) {
			defer wg.Done()
			for _, item := range items {
				tree.Insert(item)
			}
			inserted.Add(int64(len(items)))
		}(g.partitions[i], items)
	}
	wg.Wait()
	g.itemCount.Add(inserted.Load())
}

// QueryBox returns the records whose antenna lies inside box
func (g *PingIndex) QueryBox(box models.BoundingBox) ([]models.PingRecord, error) {
	height := box.TopRight.Lat - box.BottomLeft.Lat
	width := box.TopRight.Lon - box.BottomLeft.Lon
	if height < 0 || width < 0 {
		return nil, fmt.Errorf("invalid bounding box: top-right below or left of bottom-left")
	}

	// rtreego rejects zero-length sides
	bounds, err := rtreego.NewRect(
		rtreego.Point{box.BottomLeft.Lat - tolerance, box.BottomLeft.Lon - tolerance},
		[]float64{height + 2*tolerance, width + 2*tolerance},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	return g.search(g.relevantPartitions(box), func(tree *rtreego.Rtree) []*spatialPing {
		var hits []*spatialPing
		for _, s := range tree.SearchIntersect(bounds) {
			sp, ok := s.(*spatialPing)
			if ok && box.Contains(sp.record.Location()) {
				hits = append(hits, sp)
			}
		}
		return hits
	}), nil
}

// QueryRadius returns the records within radiusKm of center
func (g *PingIndex) QueryRadius(center models.Location, radiusKm float64) ([]models.PingRecord, error) {
	if radiusKm < 0 || math.IsNaN(radiusKm) {
		return nil, fmt.Errorf("invalid radius search: radius %g", radiusKm)
	}

	latDeg := (radiusKm / earthRadius) * (180 / math.Pi)
	lonDeg := 360.0
	if c := math.Cos(center.Lat * math.Pi / 180); c > 1e-9 {
		lonDeg = math.Min(latDeg/c, 360)
	}

	bounds, err := rtreego.NewRect(
		rtreego.Point{center.Lat - latDeg - tolerance, center.Lon - lonDeg - tolerance},
		[]float64{2*latDeg + 2*tolerance, 2*lonDeg + 2*tolerance},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid radius search: %w", err)
	}

	queryBox := models.BoundingBox{
		BottomLeft: models.Location{Lat: center.Lat - latDeg, Lon: center.Lon - lonDeg},
		TopRight:   models.Location{Lat: center.Lat + latDeg, Lon: center.Lon + lonDeg},
	}

	return g.search(g.relevantPartitions(queryBox), func(tree *rtreego.Rtree) []*spatialPing {
		var hits []*spatialPing
		for _, s := range tree.SearchIntersect(bounds) {
			sp, ok := s.(*spatialPing)
			if !ok {
				continue
			}
			if Distance(center.Lat, center.Lon, sp.record.Latitude, sp.record.Longitude) <= radiusKm {
				hits = append(hits, sp)
			}
		}
		return hits
	}), nil
}

// NearestNeighbors returns up to n records closest to center, nearest first
func (g *PingIndex) NearestNeighbors(center models.Location, n int) []models.PingRecord {
	if n <= 0 {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	type candidate struct {
		sp       *spatialPing
		distance float64
	}

	resultsChan := make(chan []candidate, g.numParts)
	for i := 0; i < g.numParts; i++ {
		go func(tree *rtreego.Rtree) {
			query := rtreego.Point{center.Lat, center.Lon}
			// over-fetch, planar order is only an approximation of great-circle order
			found := tree.NearestNeighbors(n*2, query)

			cands := make([]candidate, 0, len(found))
			for _, s := range found {
				sp, ok := s.(*spatialPing)
				if !ok || sp == nil {
					continue
				}
				cands = append(cands, candidate{
					sp:       sp,
					distance: Distance(center.Lat, center.Lon, sp.record.Latitude, sp.record.Longitude),
				})
			}
			resultsChan <- cands
		}(g.partitions[i])
	}

	var all []candidate
	for i := 0; i < g.numParts; i++ {
		all = append(all, <-resultsChan...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].distance == all[j].distance {
			return all[i].sp.ordinal < all[j].sp.ordinal
		}
		return all[i].distance < all[j].distance
	})

	if len(all) > n {
		all = all[:n]
	}
	out := make([]models.PingRecord, len(all))
	for i, c := range all {
		out[i] = c.sp.record
	}
	return out
}

// Count returns the number of indexed records
func (g *PingIndex) Count() int64 {
	return g.itemCount.Load()
}

// search runs query on each partition in parallel and merges the hits back
// into source order
func (g *PingIndex) search(partitions []int, query func(*rtreego.Rtree) []*spatialPing) []models.PingRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()

	resultsChan := make(chan []*spatialPing, len(partitions))
	for _, idx := range partitions {
		go func(tree *rtreego.Rtree) {
			resultsChan <- query(tree)
		}(g.partitions[idx])
	}

	var hits []*spatialPing
	for range partitions {
		hits = append(hits, <-resultsChan...)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].ordinal < hits[j].ordinal })

	out := make([]models.PingRecord, len(hits))
	for i, sp := range hits {
		out[i] = sp.record
	}
	return out
}

func (g *PingIndex) partitionFor(lon float64) int {
	lonRange := 360.0 / float64(g.numParts)
	i := int((lon + 180.0) / lonRange)
	if i >= g.numParts {
		i = g.numParts - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// relevantPartitions returns the partitions whose longitude band intersects box
func (g *PingIndex) relevantPartitions(box models.BoundingBox) []int {
	var relevant []int
	for i, bounds := range g.partitionBounds {
		if box.BottomLeft.Lon <= bounds.TopRight.Lon &&
			box.TopRight.Lon >= bounds.BottomLeft.Lon {
			relevant = append(relevant, i)
		}
	}
	return relevant
}

// Distance calculates the Haversine distance between two points in kilometers
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
