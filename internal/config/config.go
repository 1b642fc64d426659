// Package config holds the dashboard settings: defaults, an optional YAML
// file, and validation. Flags are bound in main on top of these values.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/ingest"
)

type Config struct {
	// input
	Source         string        `yaml:"source"`
	InputPath      string        `yaml:"in"`
	Timeout        time.Duration `yaml:"timeout"`
	OpenDateBounds bool          `yaml:"open_date_bounds"`

	// leaderboard sketch
	TopK         int     `yaml:"top_k"`
	WindowDays   int     `yaml:"window_days"`
	Width        int     `yaml:"sketch_width"`
	Depth        int     `yaml:"sketch_depth"`
	Decay        float64 `yaml:"sketch_decay"`
	DecayLUTSize int     `yaml:"sketch_decay_lut_size"`

	// render
	LogScale     bool `yaml:"log_scale"`
	ViewSplit    int  `yaml:"view_split"`
	AltScreen    bool `yaml:"alt_screen"`
	StatsEnabled bool `yaml:"stats"`
	StatsWindow  int  `yaml:"stats_window"`
	Once         bool `yaml:"once"`

	// logging
	LogFile string `yaml:"log_file"`
	Verbose bool   `yaml:"verbose"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Source:  ingest.DefaultURL,
		Timeout: ingest.DefaultTimeout,

		TopK:         20,
		WindowDays:   14,
		Width:        3000,
		Depth:        3,
		Decay:        0.9,
		DecayLUTSize: 8192,

		ViewSplit:    30,
		AltScreen:    true,
		StatsEnabled: true,
		StatsWindow:  256,

		LogFile: "covid-dash.log",
	}
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current values; unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting, named by its flag.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		u, err := url.Parse(c.Source)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("-source must be an http(s) URL (got %q)", c.Source)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("-timeout must be >= 0")
	}
	if c.TopK < 1 {
		return fmt.Errorf("-k must be >= 1")
	}
	if c.WindowDays < 1 {
		return fmt.Errorf("-window-days must be >= 1")
	}
	if c.Width < 1 {
		return fmt.Errorf("-width must be >= 1")
	}
	if c.Depth < 1 {
		return fmt.Errorf("-depth must be >= 1")
	}
	if c.Decay < 0 || c.Decay > 1 {
		return fmt.Errorf("-decay must be in [0,1]")
	}
	if c.DecayLUTSize < 1 {
		return fmt.Errorf("-decay-lut-size must be >= 1")
	}
	if c.StatsWindow < 0 {
		return fmt.Errorf("-stats-window must be >= 0")
	}
	return nil
}

// Normalize clamps soft settings into their usable ranges.
func (c *Config) Normalize() {
	c.ViewSplit = max(20, c.ViewSplit)
	c.ViewSplit = min(80, c.ViewSplit)
	if c.StatsWindow < 16 {
		c.StatsWindow = 16
	}
}
