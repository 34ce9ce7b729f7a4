// Package config provides configuration loading and management for dicomviewer.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	verrors "dicomviewer/pkg/errors"
)

// Config represents the engine configuration loaded from YAML
type Config struct {
	// Loading parameters
	Loading struct {
		// Workers bounds how many files are decoded concurrently
		Workers int `yaml:"workers"`
	} `yaml:"loading"`

	// Navigation parameters
	Navigation struct {
		// RepeatInterval is the period of the press-and-hold step repeat
		RepeatInterval time.Duration `yaml:"repeatInterval"`

		// DragDeadband is the vertical distance in screen pixels a drag must
		// exceed before it steps one frame
		DragDeadband float64 `yaml:"dragDeadband"`
	} `yaml:"navigation"`

	// Viewport parameters
	Viewport struct {
		// ZoomStep is the multiplicative factor of one zoom in/out action
		ZoomStep float64 `yaml:"zoomStep"`

		// MinZoom and MaxZoom bound the zoom factor
		MinZoom float64 `yaml:"minZoom"`
		MaxZoom float64 `yaml:"maxZoom"`

		// ContrastStep is the percentage change of one contrast action
		ContrastStep int `yaml:"contrastStep"`

		// MinContrast and MaxContrast bound the contrast percentage
		MinContrast int `yaml:"minContrast"`
		MaxContrast int `yaml:"maxContrast"`

		// PanSpeed scales the joystick vector into screen pixels per sample
		PanSpeed float64 `yaml:"panSpeed"`
	} `yaml:"viewport"`

	// Render parameters
	Render struct {
		// JPEGQuality is used for exported and transferable images
		JPEGQuality int `yaml:"jpegQuality"`
	} `yaml:"render"`

	// Logging parameters
	Logging struct {
		// Level is one of debug, info, warn, error
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Loading.Workers = runtime.NumCPU()

	cfg.Navigation.RepeatInterval = 40 * time.Millisecond
	cfg.Navigation.DragDeadband = 0.1

	cfg.Viewport.ZoomStep = 1.2
	cfg.Viewport.MinZoom = 0.1
	cfg.Viewport.MaxZoom = 20
	cfg.Viewport.ContrastStep = 10
	cfg.Viewport.MinContrast = 0
	cfg.Viewport.MaxContrast = 400
	cfg.Viewport.PanSpeed = 2

	cfg.Render.JPEGQuality = 90

	cfg.Logging.Level = "info"

	return cfg
}

// Validate checks that every value is usable by the engine
func (c *Config) Validate() error {
	switch {
	case c.Loading.Workers < 1:
		return verrors.New(verrors.ErrCodeConfig, "loading.workers must be at least 1, got %d", c.Loading.Workers)
	case c.Navigation.RepeatInterval <= 0:
		return verrors.New(verrors.ErrCodeConfig, "navigation.repeatInterval must be positive")
	case c.Navigation.DragDeadband < 0:
		return verrors.New(verrors.ErrCodeConfig, "navigation.dragDeadband must not be negative")
	case c.Viewport.ZoomStep <= 1:
		return verrors.New(verrors.ErrCodeConfig, "viewport.zoomStep must be greater than 1, got %v", c.Viewport.ZoomStep)
	case c.Viewport.MinZoom <= 0 || c.Viewport.MaxZoom < c.Viewport.MinZoom:
		return verrors.New(verrors.ErrCodeConfig, "viewport zoom range [%v, %v] is invalid", c.Viewport.MinZoom, c.Viewport.MaxZoom)
	case c.Viewport.MinZoom > 1 || c.Viewport.MaxZoom < 1:
		return verrors.New(verrors.ErrCodeConfig, "viewport zoom range must include 1")
	case c.Viewport.ContrastStep <= 0:
		return verrors.New(verrors.ErrCodeConfig, "viewport.contrastStep must be positive")
	case c.Viewport.MaxContrast < c.Viewport.MinContrast:
		return verrors.New(verrors.ErrCodeConfig, "viewport contrast range [%d, %d] is invalid", c.Viewport.MinContrast, c.Viewport.MaxContrast)
	case c.Viewport.PanSpeed <= 0:
		return verrors.New(verrors.ErrCodeConfig, "viewport.panSpeed must be positive")
	case c.Render.JPEGQuality < 1 || c.Render.JPEGQuality > 100:
		return verrors.New(verrors.ErrCodeConfig, "render.jpegQuality must be in [1, 100], got %d", c.Render.JPEGQuality)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
