package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1F47E/antenna-coverage-map/pkg/render"
	"github.com/1F47E/antenna-coverage-map/pkg/rtree"
)

var (
	outFile  string
	steps    int
	geodesic bool
)

func runRender(cmd *cobra.Command, args []string) error {
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}

	r, err := newRenderer()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("steps") {
		r.Steps = steps
	}
	if cmd.Flags().Changed("geodesic") {
		r.Geodesic = geodesic
	}

	features, errs := r.Features(view.Visible())
	fc := render.FeatureCollection(features)
	if box, ok := rtree.Bounds(view.Visible()); ok {
		fc.BBox = []float64{box.BottomLeft.Lon, box.BottomLeft.Lat, box.TopRight.Lon, box.TopRight.Lat}
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}

	if outFile == "" {
		if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(outFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outFile, err)
		}
		logger.Printf("wrote %d features to %s", len(fc.Features), outFile)
	}

	if len(errs) > 0 {
		logger.Printf("%d ping(s) had invalid sector geometry and were drawn as points", len(errs))
	}
	return nil
}
