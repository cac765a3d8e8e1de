// Package config reads the pingmap YAML configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1F47E/antenna-coverage-map/pkg/ingest"
	"github.com/1F47E/antenna-coverage-map/pkg/sector"
)

// DefaultFiles are tried in order when no config path is given
var DefaultFiles = []string{"pingmap.yaml", "pingmap.yaml.example"}

// Config structure for YAML configuration
type Config struct {
	Source struct {
		Location    string        `yaml:"location"` // file path or http(s) URL
		Format      string        `yaml:"format"`   // auto, xlsx, json
		Sheet       string        `yaml:"sheet"`
		Timeout     time.Duration `yaml:"timeout"`
		SkipInvalid bool          `yaml:"skip_invalid"`
	} `yaml:"source"`
	Filter struct {
		LenientDates bool `yaml:"lenient_dates"`
	} `yaml:"filter"`
	Sector struct {
		Steps    int  `yaml:"steps"`
		Geodesic bool `yaml:"geodesic"`
		Gradient struct {
			Low  string `yaml:"low"`
			High string `yaml:"high"`
		} `yaml:"gradient"`
	} `yaml:"sector"`
}

// Default returns the built-in configuration
func Default() Config {
	var c Config
	c.Source.Location = "data/pings.xlsx"
	c.Source.Format = "auto"
	c.Source.Timeout = 30 * time.Second
	c.Sector.Steps = sector.DefaultSteps
	c.Sector.Gradient.Low = sector.DefaultGradient.Low.Hex()
	c.Sector.Gradient.High = sector.DefaultGradient.High.Hex()
	return c
}

// Load reads path over the defaults. With an empty path the DefaultFiles are
// tried and the defaults are used when none exists. The returned string names
// the file actually read, empty when none was.
func Load(path string) (Config, string, error) {
	cfg := Default()

	candidates := DefaultFiles
	if path != "" {
		candidates = []string{path}
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path == "" {
				continue
			}
			return Config{}, "", fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, "", fmt.Errorf("failed to parse config %s: %w", candidate, err)
		}
		if err := cfg.Validate(); err != nil {
			return Config{}, "", fmt.Errorf("invalid config %s: %w", candidate, err)
		}
		return cfg, candidate, nil
	}

	return cfg, "", nil
}

// Validate checks value ranges and formats
func (c Config) Validate() error {
	if _, err := ingest.ParseFormat(c.Source.Format); err != nil {
		return err
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}
	if c.Sector.Steps < 0 {
		return fmt.Errorf("sector.steps must not be negative")
	}
	if _, err := c.Gradient(); err != nil {
		return err
	}
	return nil
}

// Gradient parses the configured colour ramp
func (c Config) Gradient() (sector.Gradient, error) {
	return sector.ParseGradient(c.Sector.Gradient.Low, c.Sector.Gradient.High)
}
