package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/1F47E/antenna-coverage-map/pkg/config"
	"github.com/1F47E/antenna-coverage-map/pkg/ingest"
	"github.com/1F47E/antenna-coverage-map/pkg/models"
	"github.com/1F47E/antenna-coverage-map/pkg/render"
	"github.com/1F47E/antenna-coverage-map/pkg/state"
	"github.com/1F47E/antenna-coverage-map/pkg/temporal"
)

var (
	configFile  string
	source      string
	format      string
	sheet       string
	lenient     bool
	skipInvalid bool
	verbose     bool

	phones string
	date   string
	clock  string
	bbox   string

	cfg    config.Config
	logger = log.New(os.Stderr, "pingmap: ", log.LstdFlags)
	debug  = log.New(io.Discard, "", 0)
)

var rootCmd = &cobra.Command{
	Use:   "pingmap",
	Short: "Antenna ping coverage explorer",
	Long: `Load antenna pings from a spreadsheet or JSON document, filter them by
phone number, date and time, and render each ping's directional coverage sector.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the data set and print a summary",
	RunE:  runLoad,
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "List the pings matching the filter",
	RunE:  runFilter,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Export markers and coverage sectors of matching pings as GeoJSON",
	RunE:  runRender,
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively filter pings in the terminal",
	RunE:  runBrowse,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default pingmap.yaml)")
	rootCmd.PersistentFlags().StringVarP(&source, "source", "s", "", "Data file path or http(s) URL")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "Source format: auto, xlsx, json")
	rootCmd.PersistentFlags().StringVar(&sheet, "sheet", "", "Spreadsheet sheet name (default first sheet)")
	rootCmd.PersistentFlags().BoolVar(&lenient, "lenient", false, "Treat unparseable ping dates as the current time instead of excluding them")
	rootCmd.PersistentFlags().BoolVar(&skipInvalid, "skip-invalid", false, "Drop invalid rows instead of failing the load")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	for _, cmd := range []*cobra.Command{filterCmd, renderCmd, browseCmd} {
		cmd.Flags().StringVarP(&phones, "phones", "p", "", "Comma separated phone numbers")
		cmd.Flags().StringVarP(&date, "date", "d", "", "Date, yyyy-mm-dd or dd-mm-yyyy")
		cmd.Flags().StringVarP(&clock, "time", "t", "", "Time of day, hh:mm")
		cmd.Flags().StringVar(&bbox, "bbox", "", "Viewport as minLat,minLon,maxLat,maxLon")
	}

	filterCmd.Flags().BoolVar(&outputJSON, "json", false, "Output results as JSON")
	filterCmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of results to display")

	renderCmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default stdout)")
	renderCmd.Flags().IntVar(&steps, "steps", 0, "Arc resolution (default from config)")
	renderCmd.Flags().BoolVar(&geodesic, "geodesic", false, "Use spherical destination points for sector vertices")

	rootCmd.AddCommand(loadCmd, filterCmd, renderCmd, browseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup merges the config file with the command line
func setup(cmd *cobra.Command, args []string) error {
	var err error
	var used string
	cfg, used, err = config.Load(configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source.Location = source
	}
	if flags.Changed("format") {
		cfg.Source.Format = format
	}
	if flags.Changed("sheet") {
		cfg.Source.Sheet = sheet
	}
	if flags.Changed("lenient") {
		cfg.Filter.LenientDates = lenient
	}
	if flags.Changed("skip-invalid") {
		cfg.Source.SkipInvalid = skipInvalid
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if verbose {
		debug = log.New(os.Stderr, "pingmap: ", log.LstdFlags)
		if used != "" {
			debug.Printf("using config %s", used)
		}
	}
	return nil
}

func newEngine() *temporal.Engine {
	return temporal.NewEngine(cfg.Filter.LenientDates, debug)
}

func newRenderer() (*render.Renderer, error) {
	gradient, err := cfg.Gradient()
	if err != nil {
		return nil, err
	}
	return &render.Renderer{
		Steps:    cfg.Sector.Steps,
		Geodesic: cfg.Sector.Geodesic,
		Gradient: gradient,
		Logger:   debug,
	}, nil
}

func newNormalizer() (*ingest.Normalizer, error) {
	f, err := ingest.ParseFormat(cfg.Source.Format)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: cfg.Source.Timeout}
	return &ingest.Normalizer{
		Source:      ingest.NewSource(cfg.Source.Location, client),
		Format:      f,
		Sheet:       cfg.Source.Sheet,
		SkipInvalid: cfg.Source.SkipInvalid,
		Logger:      logger,
	}, nil
}

// loadView ingests the configured source and applies the filter flags
func loadView(ctx context.Context) (state.View, error) {
	n, err := newNormalizer()
	if err != nil {
		return state.Empty(), err
	}
	records, err := n.Load(ctx)
	if err != nil {
		return state.Empty(), err
	}

	view := state.Load(records, newEngine())

	criteria, err := temporal.ParseCriteria(phones, date, clock)
	if err != nil {
		return view, err
	}
	view = view.WithCriteria(criteria)

	if bbox != "" {
		box, err := parseBBox(bbox)
		if err != nil {
			return view, err
		}
		view = view.WithViewport(box)
	}

	if n := len(view.Issues()); n > 0 {
		logger.Printf("%d ping(s) had unusable dates or viewport (use -v for details)", n)
	}
	return view, nil
}

func parseBBox(s string) (models.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return models.BoundingBox{}, fmt.Errorf("invalid --bbox %q: want minLat,minLon,maxLat,maxLon", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.BoundingBox{}, fmt.Errorf("invalid --bbox %q: %w", s, err)
		}
		v[i] = f
	}
	return models.BoundingBox{
		BottomLeft: models.Location{Lat: v[0], Lon: v[1]},
		TopRight:   models.Location{Lat: v[2], Lon: v[3]},
	}, nil
}

var (
	colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6"))

	labelStyle = lipgloss.NewStyle().
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))
)

// paint renders text with style only when stdout is a terminal
func paint(style lipgloss.Style, text string) string {
	if !colorEnabled {
		return text
	}
	return style.Render(text)
}

// swatch is a coloured block for a hex colour
func swatch(hex string) string {
	if !colorEnabled {
		return hex
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██") + " " + hex
}

func printStat(label string, value interface{}) {
	fmt.Printf("  %s %s\n", paint(labelStyle, label+":"), paint(valueStyle, fmt.Sprint(value)))
}
