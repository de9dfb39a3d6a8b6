// Package config loads application configuration from a TOML file.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const configFile = "config.toml"

// Config holds the tunable settings of the annotator.
type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	Import   ImportConfig   `toml:"import"`
	Storage  StorageConfig  `toml:"storage"`
}

// ViewportConfig bounds the viewport transform parameters.
type ViewportConfig struct {
	MinZoom      float64 `toml:"min_zoom"`
	MaxZoom      float64 `toml:"max_zoom"`
	ZoomStep     float64 `toml:"zoom_step"`
	RotationStep int     `toml:"rotation_step"`
}

// ImportConfig controls how imported files are pre-processed.
type ImportConfig struct {
	// MaxEmbedBytes is the size above which a sourceRef is considered
	// oversized; bigger rasters are downscaled before embedding and
	// excluded from persisted snapshots.
	MaxEmbedBytes int `toml:"max_embed_bytes"`
	// MaxEdgePixels is the longest-edge limit applied when downscaling.
	MaxEdgePixels int `toml:"max_edge_pixels"`
}

// StorageConfig selects and locates the durable store.
type StorageConfig struct {
	// Backend is "sqlite" or "file".
	Backend string `toml:"backend"`
	// DataDir overrides the default data directory when non-empty.
	DataDir string `toml:"data_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Viewport: ViewportConfig{
			MinZoom:      0.1,
			MaxZoom:      3.0,
			ZoomStep:     1.25,
			RotationStep: 90,
		},
		Import: ImportConfig{
			MaxEmbedBytes: 2 << 20, // 2 MiB
			MaxEdgePixels: 2048,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
	}
}

// Load reads config.toml from ~/.config/plan-annotator, falling back to
// defaults when the file is missing or unreadable. A malformed file is an
// error so typos do not silently revert settings.
func Load() (Config, error) {
	cfg := Default()

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	path := filepath.Join(configDir, "plan-annotator", configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, nil
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), err
	}
	cfg.sanitize()
	return cfg, nil
}

// Parse decodes a TOML document over the defaults. Used by tests and by
// Load once the file contents are read.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), err
	}
	cfg.sanitize()
	return cfg, nil
}

// sanitize rejects values that would break the viewport math.
func (c *Config) sanitize() {
	d := Default()
	if c.Viewport.MinZoom <= 0 {
		c.Viewport.MinZoom = d.Viewport.MinZoom
	}
	if c.Viewport.MaxZoom < c.Viewport.MinZoom {
		c.Viewport.MaxZoom = d.Viewport.MaxZoom
	}
	if c.Viewport.ZoomStep <= 1 {
		c.Viewport.ZoomStep = d.Viewport.ZoomStep
	}
	if c.Viewport.RotationStep != 90 {
		// Only quarter-turn rotation is supported by the transform.
		c.Viewport.RotationStep = 90
	}
	if c.Import.MaxEmbedBytes <= 0 {
		c.Import.MaxEmbedBytes = d.Import.MaxEmbedBytes
	}
	if c.Import.MaxEdgePixels <= 0 {
		c.Import.MaxEdgePixels = d.Import.MaxEdgePixels
	}
	if c.Storage.Backend != "sqlite" && c.Storage.Backend != "file" {
		c.Storage.Backend = d.Storage.Backend
	}
}

// DataDir resolves the directory used for durable storage.
func (c Config) DataDir() string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "plan-annotator", "data")
}
