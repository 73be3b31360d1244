// Package config handles meshkit configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all meshkit settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Export  ExportConfig  `yaml:"export"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig controls how meshes are indexed on import.
type ImportConfig struct {
	IndexWidth       int    `yaml:"index_width"`       // 8, 16 or 32 bits
	Dedup            string `yaml:"dedup"`             // scan or hashed
	PrimitiveRestart bool   `yaml:"primitive_restart"` // polygons as restart-delimited fans
}

// ExportConfig holds export settings.
type ExportConfig struct {
	Binary bool `yaml:"binary"` // GLB instead of glTF JSON
}

// ViewerConfig holds display and rendering settings.
type ViewerConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	FOV        float32    `yaml:"fov"`
	ClearColor [4]float32 `yaml:"clear_color"`
	Wireframe  bool       `yaml:"wireframe"`

	// Sun position in degrees.
	SunLongitude float32 `yaml:"sun_longitude"`
	SunLatitude  float32 `yaml:"sun_latitude"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			IndexWidth: 32,
			Dedup:      mesh.DedupHashed.String(),
		},
		Export: ExportConfig{
			Binary: true,
		},
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			VSync:      true,
			FOV:        45,
			ClearColor: [4]float32{0.12, 0.12, 0.14, 1},

			SunLongitude: 35,
			SunLatitude:  50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks settings that cannot be corrected silently.
func (c *Config) Validate() error {
	switch c.Import.IndexWidth {
	case 8, 16, 32:
	default:
		return fmt.Errorf("%w: index_width %d, want 8, 16 or 32", ErrInvalidConfig, c.Import.IndexWidth)
	}
	if _, err := mesh.ParseStrategy(c.Import.Dedup); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("%w: viewer size %dx%d", ErrInvalidConfig, c.Viewer.Width, c.Viewer.Height)
	}
	if c.Viewer.FOV <= 0 || c.Viewer.FOV >= 180 {
		return fmt.Errorf("%w: fov %g", ErrInvalidConfig, c.Viewer.FOV)
	}
	if c.Viewer.SunLatitude < -90 || c.Viewer.SunLatitude > 90 {
		return fmt.Errorf("%w: sun_latitude %g", ErrInvalidConfig, c.Viewer.SunLatitude)
	}
	return nil
}

// Strategy returns the configured dedup strategy.
func (c *Config) Strategy() mesh.Strategy {
	s, err := mesh.ParseStrategy(c.Import.Dedup)
	if err != nil {
		return mesh.DedupHashed
	}
	return s
}
