package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/1F47E/antenna-coverage-map/pkg/ingest"
	"github.com/1F47E/antenna-coverage-map/pkg/models"
	"github.com/1F47E/antenna-coverage-map/pkg/render"
	"github.com/1F47E/antenna-coverage-map/pkg/rtree"
	"github.com/1F47E/antenna-coverage-map/pkg/state"
	"github.com/1F47E/antenna-coverage-map/pkg/temporal"
)

// Sample pings around Madrid
const pingsJSON = `[
  {"antennaId": "MAD-001", "caller": "600111222", "datetime": "14-05-2025 09:15", "latitude": 40.4168, "longitude": -3.7038, "azimuth": 45, "horizontalAperture": 120, "coverageRadius": 800},
  {"antennaId": "MAD-002", "caller": "600111222", "datetime": "14-05-2025 13:40", "latitude": 40.4530, "longitude": -3.6883, "azimuth": 180, "horizontalAperture": 65, "coverageRadius": 1500},
  {"antennaId": "MAD-003", "caller": "600333444", "datetime": "14-05-2025 13:40", "latitude": 40.3839, "longitude": -3.7170, "azimuth": 300, "horizontalAperture": 90, "coverageRadius": 2500},
  {"antennaId": "MAD-004", "caller": "600333444", "datetime": "15-05-2025 08:05", "latitude": 40.4893, "longitude": -3.5676, "azimuth": 90, "horizontalAperture": 60, "coverageRadius": 5000},
  {"antennaId": "MAD-001", "caller": "600555666", "datetime": "15-05-2025 21:30", "latitude": 40.4168, "longitude": -3.7038, "azimuth": 45, "horizontalAperture": 120, "coverageRadius": 800}
]`

func main() {
	dir, err := os.MkdirTemp("", "pingmap-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "pings.json")
	if err := os.WriteFile(path, []byte(pingsJSON), 0644); err != nil {
		log.Fatal(err)
	}

	// Load and normalize the pings
	n := &ingest.Normalizer{Source: ingest.FileSource{Path: path}}
	records, err := n.Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Loaded %d pings\n\n", len(records))

	view := state.Load(records, temporal.NewEngine(false, nil))

	// Example 1: one caller on one day
	fmt.Println("=== Caller 600111222 on 14-05-2025 ===")
	view = view.WithCriteria(temporal.NewCriteria([]string{"600111222"}, "14-05-2025", ""))
	printPings(view.Visible())

	// Example 2: everyone active at 13:40
	fmt.Println("\n=== Pings at 13:40 ===")
	view = view.WithCriteria(temporal.NewCriteria(nil, "", "13:40"))
	printPings(view.Visible())

	// Example 3: restrict to the city centre
	fmt.Println("\n=== City centre, no filter ===")
	view = view.WithCriteria(temporal.Criteria{}).WithViewport(models.BoundingBox{
		BottomLeft: models.Location{Lat: 40.38, Lon: -3.75},
		TopRight:   models.Location{Lat: 40.46, Lon: -3.65},
	})
	printPings(view.Visible())

	// Example 4: antennas within 5km of Puerta del Sol
	fmt.Println("\n=== Within 5km of Puerta del Sol ===")
	sol := models.Location{Lat: 40.4169, Lon: -3.7035}
	near, err := view.Index().QueryRadius(sol, 5)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range near {
		fmt.Printf("  - %s: %.2f km away\n", p.AntennaID, rtree.Distance(sol.Lat, sol.Lon, p.Latitude, p.Longitude))
	}

	// Example 5: coverage sectors
	fmt.Println("\n=== Coverage sectors ===")
	r := render.NewRenderer()
	r.Steps = 6
	features, _ := r.Features(view.ClearViewport().Visible())
	for _, f := range features {
		fmt.Printf("  - %s %s: %d vertices, colour %s\n", f.Record.AntennaID, f.Record.Caller, len(f.Polygon), f.Color)
	}

	data, err := render.FeatureCollection(features).MarshalJSON()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nGeoJSON export: %d bytes\n", len(data))
}

func printPings(pings []models.PingRecord) {
	fmt.Printf("Found %d pings:\n", len(pings))
	for _, p := range pings {
		fmt.Printf("  - %s %s at %s (%.4f, %.4f)\n", p.Caller, p.Datetime, p.AntennaID, p.Latitude, p.Longitude)
	}
}
