// Package config holds the visual configuration consumed by the layout engine.
//
// A [Config] is read-only during a layout pass. It is usually obtained from
// [Default] or [Load], which reads a TOML file, expands environment variables,
// applies the selected density preset and validates the result:
//
//	density = "spacious"
//	canvas_width = 1024
//	abbrevs = true
//	text_backgrounds = "striped"
//
//	[margin]
//	x = 3
//
//	[constants]
//	arc_slant = 12
//
// Keys present in the file always win over the density preset.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Text background modes.
const (
	BackgroundsStriped = "striped"
	BackgroundsPlain   = "plain"
)

// DefaultCanvasWidth is the canvas width used when no override is given.
const DefaultCanvasWidth = 800

// Margin is the padding around span boxes and the canvas.
type Margin struct {
	X float64 `toml:"x" json:"x"`
	Y float64 `toml:"y" json:"y"`
}

// Config is the visual configuration of a layout pass.
type Config struct {
	Density          string    `toml:"density" json:"density"`
	Margin           Margin    `toml:"margin" json:"margin"`
	BoxSpacing       float64   `toml:"box_spacing" json:"box_spacing"`
	CurlyHeight      float64   `toml:"curly_height" json:"curly_height"`
	ArcSpacing       float64   `toml:"arc_spacing" json:"arc_spacing"`
	ArcStartHeight   float64   `toml:"arc_start_height" json:"arc_start_height"`
	CanvasWidth      float64   `toml:"canvas_width" json:"canvas_width"`
	Abbrevs          bool      `toml:"abbrevs" json:"abbrevs"`
	TextBackgrounds  string    `toml:"text_backgrounds" json:"text_backgrounds"`
	RoundCoordinates bool      `toml:"round_coordinates" json:"round_coordinates"`
	Constants        Constants `toml:"constants" json:"constants"`
}

// Default returns the standard configuration.
func Default() Config {
	cfg := Config{
		CanvasWidth:     DefaultCanvasWidth,
		Abbrevs:         true,
		TextBackgrounds: BackgroundsStriped,
		Constants:       DefaultConstants(),
	}
	cfg.ApplyDensity(DensityStandard)
	return cfg
}

// Striped reports whether alternating sentence backgrounds are drawn.
func (c Config) Striped() bool {
	return c.TextBackgrounds == BackgroundsStriped
}

// Validate checks value ranges. It is called by [Load] and by session construction.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Density, validation.In(DensityDense, DensityStandard, DensitySpacious)),
		validation.Field(&c.BoxSpacing, validation.Min(0.0)),
		validation.Field(&c.CurlyHeight, validation.Min(0.0)),
		validation.Field(&c.ArcSpacing, validation.Min(0.0)),
		validation.Field(&c.ArcStartHeight, validation.Min(0.0)),
		validation.Field(&c.CanvasWidth, validation.Required, validation.Min(1.0)),
		validation.Field(&c.TextBackgrounds, validation.Required, validation.In(BackgroundsStriped, BackgroundsPlain)),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Margin,
		validation.Field(&c.Margin.X, validation.Min(0.0)),
		validation.Field(&c.Margin.Y, validation.Min(0.0)),
	); err != nil {
		return fmt.Errorf("margin: %w", err)
	}
	if err := c.Constants.Validate(); err != nil {
		return fmt.Errorf("constants: %w", err)
	}
	return nil
}

// Load reads a TOML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML configuration data. Environment variables in the data
// are expanded first. Missing keys keep the values of the selected density.
func Parse(data []byte) (Config, error) {
	expanded := os.ExpandEnv(string(data))

	var preset struct {
		Density string `toml:"density"`
	}
	if _, err := toml.Decode(expanded, &preset); err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}

	cfg := Default()
	if preset.Density != "" {
		if !cfg.ApplyDensity(preset.Density) {
			return Config{}, fmt.Errorf("unknown density %q", preset.Density)
		}
	}
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate: %w", err)
	}
	return cfg, nil
}
