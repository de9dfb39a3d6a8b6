package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.1, cfg.Viewport.MinZoom)
	assert.Equal(t, 3.0, cfg.Viewport.MaxZoom)
	assert.Equal(t, 1.25, cfg.Viewport.ZoomStep)
	assert.Equal(t, 90, cfg.Viewport.RotationStep)
	assert.Equal(t, 2<<20, cfg.Import.MaxEmbedBytes)
	assert.Equal(t, 2048, cfg.Import.MaxEdgePixels)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[viewport]
min_zoom = 0.25
max_zoom = 8.0
zoom_step = 1.5

[import]
max_edge_pixels = 4096

[storage]
backend = "file"
data_dir = "/tmp/annotator"
`))
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Viewport.MinZoom)
	assert.Equal(t, 8.0, cfg.Viewport.MaxZoom)
	assert.Equal(t, 1.5, cfg.Viewport.ZoomStep)
	assert.Equal(t, 4096, cfg.Import.MaxEdgePixels)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/annotator", cfg.DataDir())

	// Untouched sections keep their defaults.
	assert.Equal(t, 2<<20, cfg.Import.MaxEmbedBytes)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`viewport = "oops`))
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	cfg, err := Parse([]byte(`
[viewport]
min_zoom = -1.0
max_zoom = 0.05
zoom_step = 0.5
rotation_step = 45

[import]
max_embed_bytes = -5
max_edge_pixels = 0

[storage]
backend = "postgres"
`))
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Viewport.MinZoom, cfg.Viewport.MinZoom)
	assert.Equal(t, d.Viewport.MaxZoom, cfg.Viewport.MaxZoom)
	assert.Equal(t, d.Viewport.ZoomStep, cfg.Viewport.ZoomStep)
	assert.Equal(t, 90, cfg.Viewport.RotationStep)
	assert.Equal(t, d.Import.MaxEmbedBytes, cfg.Import.MaxEmbedBytes)
	assert.Equal(t, d.Import.MaxEdgePixels, cfg.Import.MaxEdgePixels)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestDataDirFallback(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.DataDir())
	assert.Contains(t, cfg.DataDir(), "plan-annotator")
}
