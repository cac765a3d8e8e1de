package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
	"github.com/1F47E/antenna-coverage-map/pkg/rtree"
	"github.com/1F47E/antenna-coverage-map/pkg/sector"
	"github.com/1F47E/antenna-coverage-map/pkg/temporal"
)

type BenchmarkResult struct {
	QueryType     string
	TotalQueries  int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	QueriesPerSec float64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	TotalResults  int64
	AvgResults    float64
}

type bounds struct {
	minLat, maxLat, minLon, maxLon float64
}

// query runs one operation and reports how many results it produced
type query func(r *rand.Rand) int

func main() {
	var (
		numPings   = flag.Int("p", 100000, "Number of synthetic pings")
		callers    = flag.Int("callers", 500, "Number of distinct callers")
		queryType  = flag.String("t", "mixed", "Query type: filter, sector, box, radius, nearest, mixed")
		numQueries = flag.Int("n", 1000, "Number of queries to run")
		workers    = flag.Int("w", runtime.NumCPU(), "Number of concurrent workers")
		// Geographic bounds for pings and queries (default: roughly Madrid)
		minLat = flag.Float64("min-lat", 40.2, "Minimum latitude")
		maxLat = flag.Float64("max-lat", 40.6, "Maximum latitude")
		minLon = flag.Float64("min-lon", -3.9, "Minimum longitude")
		maxLon = flag.Float64("max-lon", -3.5, "Maximum longitude")
		// Query-specific parameters
		boxSize = flag.Float64("box-size", 0.05, "Box size in degrees (for box queries)")
		radius  = flag.Float64("radius", 2.0, "Radius in km (for radius queries)")
		k       = flag.Int("k", 20, "Number of nearest neighbors")
		steps   = flag.Int("steps", sector.DefaultSteps, "Sector arc resolution")
	)
	flag.Parse()

	b := bounds{*minLat, *maxLat, *minLon, *maxLon}

	log.Printf("Generating %d pings from %d callers...\n", *numPings, *callers)
	pings := generatePings(*numPings, *callers, b)

	start := time.Now()
	index := rtree.NewPingIndex(pings)
	log.Printf("Index built with %d pings in %v\n", index.Count(), time.Since(start))

	engine := temporal.NewEngine(false, log.New(io.Discard, "", 0))

	queries := map[string]query{
		"filter": func(r *rand.Rand) int {
			c := temporal.NewCriteria(
				[]string{fmt.Sprintf("6%08d", r.Intn(*callers))},
				fmt.Sprintf("%02d-05-2025", 1+r.Intn(28)),
				"",
			)
			return len(engine.Filter(pings, c).Records)
		},
		"sector": func(r *rand.Rand) int {
			p := pings[r.Intn(len(pings))]
			polygon, err := sector.ForPing(p, *steps, false)
			if err != nil {
				return 0
			}
			return len(polygon)
		},
		"box": func(r *rand.Rand) int {
			lat := b.minLat + r.Float64()*(b.maxLat-b.minLat-*boxSize)
			lon := b.minLon + r.Float64()*(b.maxLon-b.minLon-*boxSize)
			results, err := index.QueryBox(models.BoundingBox{
				BottomLeft: models.Location{Lat: lat, Lon: lon},
				TopRight:   models.Location{Lat: lat + *boxSize, Lon: lon + *boxSize},
			})
			if err != nil {
				return 0
			}
			return len(results)
		},
		"radius": func(r *rand.Rand) int {
			results, err := index.QueryRadius(b.random(r), *radius)
			if err != nil {
				return 0
			}
			return len(results)
		},
		"nearest": func(r *rand.Rand) int {
			return len(index.NearestNeighbors(b.random(r), *k))
		},
	}

	log.Printf("Running %d %s queries with %d workers...\n", *numQueries, *queryType, *workers)

	var result BenchmarkResult
	switch *queryType {
	case "mixed":
		result = benchmarkMixed(queries, *numQueries, *workers)
	default:
		q, ok := queries[*queryType]
		if !ok {
			log.Fatalf("Unknown query type: %s", *queryType)
		}
		result = benchmark(*queryType, q, *numQueries, *workers)
	}

	// Print results
	fmt.Println("\n=== Benchmark Results ===")
	fmt.Printf("Query Type: %s\n", result.QueryType)
	fmt.Printf("Total Queries: %d\n", result.TotalQueries)
	fmt.Printf("Total Duration: %v\n", result.TotalDuration)
	fmt.Printf("Average Duration: %v\n", result.AvgDuration)
	fmt.Printf("Queries/Second: %.2f\n", result.QueriesPerSec)
	fmt.Printf("Min Duration: %v\n", result.MinDuration)
	fmt.Printf("Max Duration: %v\n", result.MaxDuration)
	fmt.Printf("Total Results: %d\n", result.TotalResults)
	fmt.Printf("Avg Results/Query: %.2f\n", result.AvgResults)
	fmt.Printf("Workers Used: %d\n", *workers)
	fmt.Printf("CPU Cores: %d\n", runtime.NumCPU())
}

func (b bounds) random(r *rand.Rand) models.Location {
	return models.Location{
		Lat: b.minLat + r.Float64()*(b.maxLat-b.minLat),
		Lon: b.minLon + r.Float64()*(b.maxLon-b.minLon),
	}
}

// generatePings spreads pings over May 2025 within b
func generatePings(n, callers int, b bounds) []models.PingRecord {
	r := rand.New(rand.NewSource(42))
	pings := make([]models.PingRecord, n)
	for i := range pings {
		loc := b.random(r)
		pings[i] = models.PingRecord{
			AntennaID:          fmt.Sprintf("ANT-%05d", r.Intn(n/10+1)),
			Caller:             fmt.Sprintf("6%08d", r.Intn(callers)),
			Datetime:           fmt.Sprintf("%02d-05-2025 %02d:%02d", 1+r.Intn(28), r.Intn(24), r.Intn(60)),
			Latitude:           loc.Lat,
			Longitude:          loc.Lon,
			Azimuth:            float64(r.Intn(360)),
			HorizontalAperture: float64(30 + r.Intn(91)),
			CoverageRadius:     float64(200 + r.Intn(4800)),
		}
	}
	return pings
}

func benchmark(name string, q query, numQueries, workers int) BenchmarkResult {
	var (
		totalResults int64
		minDuration  = time.Hour
		maxDuration  time.Duration
		totalDur     time.Duration
		mu           sync.Mutex
	)

	startTime := time.Now()

	// Worker pool
	queryCh := make(chan int, numQueries)
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewSource(rand.Int63()))

			for range queryCh {
				queryStart := time.Now()
				n := q(r)
				queryDuration := time.Since(queryStart)

				atomic.AddInt64(&totalResults, int64(n))

				mu.Lock()
				totalDur += queryDuration
				minDuration = min(minDuration, queryDuration)
				maxDuration = max(maxDuration, queryDuration)
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < numQueries; i++ {
		queryCh <- i
	}
	close(queryCh)

	wg.Wait()
	totalDuration := time.Since(startTime)

	if numQueries == 0 {
		return BenchmarkResult{QueryType: name}
	}
	return BenchmarkResult{
		QueryType:     name,
		TotalQueries:  numQueries,
		TotalDuration: totalDuration,
		AvgDuration:   totalDur / time.Duration(numQueries),
		QueriesPerSec: float64(numQueries) / totalDuration.Seconds(),
		MinDuration:   minDuration,
		MaxDuration:   maxDuration,
		TotalResults:  totalResults,
		AvgResults:    float64(totalResults) / float64(numQueries),
	}
}

func benchmarkMixed(queries map[string]query, numQueries, workers int) BenchmarkResult {
	order := []string{"filter", "sector", "box", "radius", "nearest"}
	perType := numQueries / len(order)

	log.Printf("Running mixed benchmark (%d queries of each type)...\n", perType)

	combined := BenchmarkResult{QueryType: "mixed", MinDuration: time.Hour}
	for _, name := range order {
		res := benchmark(name, queries[name], perType, workers)
		log.Printf("  %-8s avg %v, %.0f q/s\n", name, res.AvgDuration, res.QueriesPerSec)

		combined.TotalQueries += res.TotalQueries
		combined.TotalDuration += res.TotalDuration
		combined.TotalResults += res.TotalResults
		combined.MinDuration = min(combined.MinDuration, res.MinDuration)
		combined.MaxDuration = max(combined.MaxDuration, res.MaxDuration)
	}

	if combined.TotalQueries > 0 {
		combined.AvgDuration = combined.TotalDuration / time.Duration(combined.TotalQueries)
		combined.QueriesPerSec = float64(combined.TotalQueries) / combined.TotalDuration.Seconds()
		combined.AvgResults = float64(combined.TotalResults) / float64(combined.TotalQueries)
	}
	return combined
}
