package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "dicomviewer/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 40*time.Millisecond, cfg.Navigation.RepeatInterval)
	assert.Equal(t, 0.1, cfg.Navigation.DragDeadband)
	assert.Equal(t, 1.2, cfg.Viewport.ZoomStep)
	assert.Equal(t, 10, cfg.Viewport.ContrastStep)
	assert.Equal(t, 2.0, cfg.Viewport.PanSpeed)
	assert.GreaterOrEqual(t, cfg.Loading.Workers, 1)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Viewport, cfg.Viewport)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `
navigation:
  repeatInterval: 25ms
viewport:
  maxZoom: 8
  panSpeed: 3.5
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 25*time.Millisecond, cfg.Navigation.RepeatInterval)
	assert.Equal(t, 8.0, cfg.Viewport.MaxZoom)
	assert.Equal(t, 3.5, cfg.Viewport.PanSpeed)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched values keep their defaults
	assert.Equal(t, 0.1, cfg.Viewport.MinZoom)
	assert.Equal(t, 0.1, cfg.Navigation.DragDeadband)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewport:\n  zoomStep: 0.5\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, verrors.Is(err, verrors.ErrCodeConfig))
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewport: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no workers", func(c *Config) { c.Loading.Workers = 0 }},
		{"zero repeat interval", func(c *Config) { c.Navigation.RepeatInterval = 0 }},
		{"negative deadband", func(c *Config) { c.Navigation.DragDeadband = -1 }},
		{"inverted zoom range", func(c *Config) { c.Viewport.MinZoom, c.Viewport.MaxZoom = 5, 2 }},
		{"zoom range excludes 1", func(c *Config) { c.Viewport.MinZoom = 2 }},
		{"inverted contrast range", func(c *Config) { c.Viewport.MinContrast, c.Viewport.MaxContrast = 300, 200 }},
		{"zero pan speed", func(c *Config) { c.Viewport.PanSpeed = 0 }},
		{"jpeg quality too high", func(c *Config) { c.Render.JPEGQuality = 101 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, verrors.ErrCodeConfig, verrors.GetCode(err))
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Navigation, cfg.Navigation)
}
