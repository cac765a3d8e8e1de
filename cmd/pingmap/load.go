package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
	"github.com/1F47E/antenna-coverage-map/pkg/rtree"
	"github.com/1F47E/antenna-coverage-map/pkg/sector"
	"github.com/1F47E/antenna-coverage-map/pkg/temporal"
)

func runLoad(cmd *cobra.Command, args []string) error {
	start := time.Now()
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	records := view.Records()
	s := summarize(records)

	fmt.Println(paint(titleStyle, "Data set"))
	printStat("Source", cfg.Source.Location)
	printStat("Pings", len(records))
	printStat("Callers", s.callers)
	printStat("Antennas", s.antennas)
	if s.hasSpan {
		printStat("First ping", s.first.Format(temporal.DateLayout+" "+temporal.ClockLayout))
		printStat("Last ping", s.last.Format(temporal.DateLayout+" "+temporal.ClockLayout))
	}
	if box, ok := rtree.Bounds(records); ok {
		printStat("Bounds", fmt.Sprintf("(%.5f, %.5f) - (%.5f, %.5f)",
			box.BottomLeft.Lat, box.BottomLeft.Lon, box.TopRight.Lat, box.TopRight.Lon))
	}
	center := rtree.Center(records)
	printStat("Center", fmt.Sprintf("%.5f, %.5f", center.Lat, center.Lon))
	if d, ok := sector.DomainOf(records); ok {
		printStat("Radius", fmt.Sprintf("%.0f - %.0f m", d.Min, d.Max))
	}
	printStat("Load time", elapsed.Round(time.Millisecond))
	return nil
}

type summary struct {
	callers  int
	antennas int
	first    time.Time
	last     time.Time
	hasSpan  bool
}

func summarize(records []models.PingRecord) summary {
	callers := make(map[string]struct{})
	antennas := make(map[string]struct{})
	var s summary
	for _, r := range records {
		callers[r.Caller] = struct{}{}
		antennas[r.AntennaID] = struct{}{}

		t, err := temporal.ParseInstant(r.Datetime)
		if err != nil {
			continue
		}
		if !s.hasSpan || t.Before(s.first) {
			s.first = t
		}
		if !s.hasSpan || t.After(s.last) {
			s.last = t
		}
		s.hasSpan = true
	}
	s.callers = len(callers)
	s.antennas = len(antennas)
	return s
}
