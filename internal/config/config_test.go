package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
source: https://example.org/feed.json
timeout: 5s
open_date_bounds: true
top_k: 5
window_days: 7
verbose: true
`)
	c := Default()
	require.NoError(t, c.LoadFile(path))

	assert.Equal(t, "https://example.org/feed.json", c.Source)
	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.True(t, c.OpenDateBounds)
	assert.Equal(t, 5, c.TopK)
	assert.Equal(t, 7, c.WindowDays)
	assert.True(t, c.Verbose)
	// untouched keys keep their defaults
	assert.Equal(t, 3000, c.Width)
	assert.Equal(t, "covid-dash.log", c.LogFile)
}

func TestLoadFile_Errors(t *testing.T) {
	c := Default()
	err := c.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = c.LoadFile(writeFile(t, "no_such_key: 1\n"))
	assert.Error(t, err)

	err = c.LoadFile(writeFile(t, "top_k: [1, 2]\n"))
	assert.Error(t, err)

	require.NoError(t, c.LoadFile(writeFile(t, "")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad source", func(c *Config) { c.Source = "ftp://x" }, "-source must be an http(s) URL"},
		{"empty source", func(c *Config) { c.Source = "" }, "-source must be an http(s) URL"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "-timeout must be >= 0"},
		{"k", func(c *Config) { c.TopK = 0 }, "-k must be >= 1"},
		{"window", func(c *Config) { c.WindowDays = 0 }, "-window-days must be >= 1"},
		{"width", func(c *Config) { c.Width = 0 }, "-width must be >= 1"},
		{"depth", func(c *Config) { c.Depth = 0 }, "-depth must be >= 1"},
		{"decay", func(c *Config) { c.Decay = 1.5 }, "-decay must be in [0,1]"},
		{"lut", func(c *Config) { c.DecayLUTSize = 0 }, "-decay-lut-size must be >= 1"},
		{"stats window", func(c *Config) { c.StatsWindow = -1 }, "-stats-window must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_FileInputSkipsSourceCheck(t *testing.T) {
	c := Default()
	c.Source = ""
	c.InputPath = "feed.json"
	assert.NoError(t, c.Validate())
}

func TestNormalize(t *testing.T) {
	c := Default()
	c.ViewSplit = 5
	c.StatsWindow = 2
	c.Normalize()
	assert.Equal(t, 20, c.ViewSplit)
	assert.Equal(t, 16, c.StatsWindow)

	c.ViewSplit = 95
	c.Normalize()
	assert.Equal(t, 80, c.ViewSplit)
}
