package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
)

var (
	outputJSON bool
	limit      int
)

type filterOutput struct {
	Criteria string              `json:"criteria"`
	Total    int                 `json:"total"`
	Visible  int                 `json:"visible"`
	Results  []filterOutputEntry `json:"results"`
}

type filterOutputEntry struct {
	models.PingRecord
	Color string `json:"color"`
}

func runFilter(cmd *cobra.Command, args []string) error {
	start := time.Now()
	view, err := loadView(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	visible := view.Visible()
	gradient, err := cfg.Gradient()
	if err != nil {
		return err
	}
	domain, _ := view.Domain()

	shown := visible
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	if outputJSON {
		out := filterOutput{
			Criteria: view.Criteria().String(),
			Total:    len(view.Records()),
			Visible:  len(visible),
			Results:  make([]filterOutputEntry, 0, len(shown)),
		}
		for _, r := range shown {
			out.Results = append(out.Results, filterOutputEntry{PingRecord: r, Color: domain.Color(gradient, r.CoverageRadius)})
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	fmt.Printf("%s %d of %d pings match %s\n",
		paint(titleStyle, "Filter:"), len(visible), len(view.Records()), paint(dimStyle, view.Criteria().String()))
	if len(visible) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(shown))
	for i, r := range shown {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			r.AntennaID,
			r.Caller,
			r.Datetime,
			fmt.Sprintf("%.6f", r.Latitude),
			fmt.Sprintf("%.6f", r.Longitude),
			fmt.Sprintf("%.0f", r.Azimuth),
			fmt.Sprintf("%.0f", r.HorizontalAperture),
			fmt.Sprintf("%.0f", r.CoverageRadius),
			swatch(domain.Color(gradient, r.CoverageRadius)),
		})
	}

	t := table.New().
		Headers("#", "Antenna", "Caller", "Date/time", "Lat", "Lon", "Az", "Aperture", "Radius", "Colour").
		Rows(rows...)
	if colorEnabled {
		t = t.Border(lipgloss.RoundedBorder()).
			BorderStyle(dimStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return labelStyle.Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			})
	} else {
		t = t.Border(lipgloss.HiddenBorder())
	}
	fmt.Println(t)

	if len(shown) < len(visible) {
		fmt.Println(paint(dimStyle, fmt.Sprintf("... %d more (raise --limit)", len(visible)-len(shown))))
	}
	fmt.Println(paint(dimStyle, fmt.Sprintf("Completed in %v", elapsed.Round(time.Millisecond))))
	return nil
}
