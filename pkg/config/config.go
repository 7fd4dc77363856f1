// Package config loads the render presets used by the ctl render command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Render selects how a stored image becomes display values
type Render struct {
	// OutBits is the depth of the final display values (1-16)
	OutBits int `yaml:"outBits"`

	// VOI selection; the window wins over a VOI LUT when PreferWindow is set
	WindowIndex  int  `yaml:"windowIndex"`
	LUTIndex     int  `yaml:"lutIndex"`
	PreferWindow bool `yaml:"preferWindow"`

	// Window overrides the stored window when Width is not 0
	Window struct {
		Center float64 `yaml:"center"`
		Width  float64 `yaml:"width"`
	} `yaml:"window"`

	// AutoWindow derives a window from the pixel range when nothing else applies
	AutoWindow bool `yaml:"autoWindow"`

	Output struct {
		// Format is png or tiff
		Format string `yaml:"format"`
		// Scale resizes the rendered frame; 1 keeps the stored size
		Scale float64 `yaml:"scale"`
	} `yaml:"output"`
}

// DefaultRender returns the presets used when no file is given
func DefaultRender() *Render {
	cfg := &Render{
		OutBits:      8,
		PreferWindow: true,
		AutoWindow:   true,
	}
	cfg.Output.Format = "png"
	cfg.Output.Scale = 1
	return cfg
}

// Validate reports presets the render pipeline cannot honor
func (r *Render) Validate() error {
	if r.OutBits < 1 || r.OutBits > 16 {
		return fmt.Errorf("outBits %d outside 1..16", r.OutBits)
	}
	if r.WindowIndex < 0 || r.LUTIndex < 0 {
		return fmt.Errorf("negative window (%d) or lut (%d) index", r.WindowIndex, r.LUTIndex)
	}
	if r.Window.Center != 0 && r.Window.Width == 0 {
		return fmt.Errorf("window center %g given without a width", r.Window.Center)
	}
	switch r.Output.Format {
	case "png", "tiff":
	default:
		return fmt.Errorf("unknown output format %q", r.Output.Format)
	}
	if r.Output.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", r.Output.Scale)
	}
	return nil
}

// LoadRender reads presets from a YAML file on top of the defaults.
// A missing file yields the defaults.
func LoadRender(path string) (*Render, error) {
	cfg := DefaultRender()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading render config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing render config: %w", err)
	}
	return cfg, nil
}

// SaveRender writes presets as YAML, creating the directory if needed
func SaveRender(cfg *Render, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling render config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing render config: %w", err)
	}
	return nil
}
