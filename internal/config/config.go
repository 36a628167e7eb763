// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Faultbox/inkreveal/internal/engine/edges"
	"github.com/Faultbox/inkreveal/internal/engine/material"
	"github.com/Faultbox/inkreveal/internal/engine/outline"
	"github.com/Faultbox/inkreveal/internal/engine/reveal"
	"github.com/Faultbox/inkreveal/internal/engine/theme"
	"github.com/Faultbox/inkreveal/pkg/math"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Outline  OutlineConfig  `yaml:"outline"`
	Ink      InkConfig      `yaml:"ink"`
	Toon     ToonConfig     `yaml:"toon"`
	Reveal   RevealConfig   `yaml:"reveal"`
	Theme    ThemeConfig    `yaml:"theme"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	MSAA       int     `yaml:"msaa"`
	FOVDegrees float32 `yaml:"fov_degrees"`

	// ScreenshotDir receives F12 captures.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// OutlineConfig holds edge extraction settings.
type OutlineConfig struct {
	ThresholdAngle float64 `yaml:"threshold_angle"`
	CreaseOffset   float32 `yaml:"crease_offset"`
	// LineWidth is clamped to what the driver supports; core profiles
	// (macOS included) only draw width 1.
	LineWidth float32 `yaml:"line_width"`
}

// InkConfig holds the ink line look.
type InkConfig struct {
	Seed         float32 `yaml:"seed"`
	GapFrequency float32 `yaml:"gap_frequency"`
	GapThreshold float32 `yaml:"gap_threshold"`
	Wobble       float32 `yaml:"wobble"`
	Opacity      float32 `yaml:"opacity"`
	Solid        bool    `yaml:"solid"`
}

// ToonConfig holds the toon surface look.
type ToonConfig struct {
	LitThreshold float32    `yaml:"lit_threshold"`
	MidThreshold float32    `yaml:"mid_threshold"`
	LightDir     [3]float32 `yaml:"light_dir"`
	DoubleSided  bool       `yaml:"double_sided"`
	ColourReveal bool       `yaml:"colour_reveal"`
	Texture      string     `yaml:"texture"`
}

// RevealConfig holds the reveal timings.
type RevealConfig struct {
	FadeDuration   time.Duration `yaml:"fade_duration"`
	EdgeDuration   time.Duration `yaml:"edge_duration"`
	ColourDelay    time.Duration `yaml:"colour_delay"`
	ColourDuration time.Duration `yaml:"colour_duration"`
	Immediate      bool          `yaml:"immediate"`
}

// ThemeConfig holds the initial mode and both palettes.
type ThemeConfig struct {
	Mode  string        `yaml:"mode"`
	Light PaletteConfig `yaml:"light"`
	Dark  PaletteConfig `yaml:"dark"`
}

// PaletteConfig is one palette as RGB triples.
type PaletteConfig struct {
	Background  [3]float32 `yaml:"background"`
	Base        [3]float32 `yaml:"base"`
	Shadow      [3]float32 `yaml:"shadow"`
	Line        [3]float32 `yaml:"line"`
	Placeholder [3]float32 `yaml:"placeholder"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	ink := material.DefaultInkOptions()
	toon := material.DefaultToonOptions()
	palettes := theme.DefaultPalettes()
	return &Config{
		Graphics: GraphicsConfig{
			Width:         1280,
			Height:        720,
			Fullscreen:    false,
			VSync:         true,
			MSAA:          4,
			FOVDegrees:    45,
			ScreenshotDir: "screenshots",
		},
		Outline: OutlineConfig{
			ThresholdAngle: edges.DefaultOptions().ThresholdAngle,
			CreaseOffset:   0,
			LineWidth:      1,
		},
		Ink: InkConfig{
			Seed:         ink.Seed,
			GapFrequency: ink.GapFrequency,
			GapThreshold: ink.GapThreshold,
			Wobble:       ink.Wobble,
			Opacity:      ink.Opacity,
		},
		Toon: ToonConfig{
			LitThreshold: toon.LitThreshold,
			MidThreshold: toon.MidThreshold,
			LightDir:     toon.LightDir.Array(),
			DoubleSided:  true,
			ColourReveal: toon.ColourReveal,
		},
		Reveal: RevealConfig{
			FadeDuration:   150 * time.Millisecond,
			EdgeDuration:   1200 * time.Millisecond,
			ColourDelay:    100 * time.Millisecond,
			ColourDuration: 800 * time.Millisecond,
		},
		Theme: ThemeConfig{
			Mode:  theme.Light.String(),
			Light: paletteConfig(palettes.Light),
			Dark:  paletteConfig(palettes.Dark),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot produce a working viewer.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: window size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.FOVDegrees <= 0 || c.Graphics.FOVDegrees >= 180 {
		errs = append(errs, fmt.Errorf("graphics: fov_degrees %v outside (0, 180)", c.Graphics.FOVDegrees))
	}
	if c.Outline.ThresholdAngle < 0 || c.Outline.ThresholdAngle > 180 {
		errs = append(errs, fmt.Errorf("outline: threshold_angle %v outside [0, 180]", c.Outline.ThresholdAngle))
	}
	if c.Ink.Opacity < 0 || c.Ink.Opacity > 1 {
		errs = append(errs, fmt.Errorf("ink: opacity %v outside [0, 1]", c.Ink.Opacity))
	}
	if c.Toon.LitThreshold <= c.Toon.MidThreshold {
		errs = append(errs, fmt.Errorf("toon: lit_threshold %v must exceed mid_threshold %v",
			c.Toon.LitThreshold, c.Toon.MidThreshold))
	}
	if math.V3(c.Toon.LightDir).IsZero() {
		errs = append(errs, errors.New("toon: light_dir is zero"))
	}
	for name, d := range map[string]time.Duration{
		"fade_duration":   c.Reveal.FadeDuration,
		"edge_duration":   c.Reveal.EdgeDuration,
		"colour_delay":    c.Reveal.ColourDelay,
		"colour_duration": c.Reveal.ColourDuration,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("reveal: negative %s %v", name, d))
		}
	}
	if _, err := theme.ParseMode(c.Theme.Mode); err != nil {
		errs = append(errs, fmt.Errorf("theme: %w", err))
	}
	return multierr.Combine(errs...)
}

// EdgeOptions converts the outline section.
func (c *Config) EdgeOptions() edges.Options {
	return edges.Options{
		ThresholdAngle: c.Outline.ThresholdAngle,
		CreaseOffset:   c.Outline.CreaseOffset,
	}
}

// OutlineOptions converts the outline, ink, toon and reveal sections.
func (c *Config) OutlineOptions() outline.Options {
	side := material.FrontSide
	if c.Toon.DoubleSided {
		side = material.DoubleSide
	}
	return outline.Options{
		Edges: c.EdgeOptions(),
		Toon: material.ToonOptions{
			LitThreshold: c.Toon.LitThreshold,
			MidThreshold: c.Toon.MidThreshold,
			LightDir:     math.V3(c.Toon.LightDir),
			Side:         side,
			ColourReveal: c.Toon.ColourReveal,
		},
		Ink: material.InkOptions{
			Seed:         c.Ink.Seed,
			GapFrequency: c.Ink.GapFrequency,
			GapThreshold: c.Ink.GapThreshold,
			Wobble:       c.Ink.Wobble,
			Opacity:      c.Ink.Opacity,
			LineWidth:    c.Outline.LineWidth,
			Solid:        c.Ink.Solid,
		},
		Reveal: reveal.Config{
			FadeDuration:   float32(c.Reveal.FadeDuration.Seconds()),
			EdgeDuration:   float32(c.Reveal.EdgeDuration.Seconds()),
			ColourDelay:    float32(c.Reveal.ColourDelay.Seconds()),
			ColourDuration: float32(c.Reveal.ColourDuration.Seconds()),
			Immediate:      c.Reveal.Immediate,
		},
	}
}

// ThemeMode returns the configured initial mode, falling back to light.
func (c *Config) ThemeMode() theme.Mode {
	m, err := theme.ParseMode(c.Theme.Mode)
	if err != nil {
		return theme.Light
	}
	return m
}

// Palettes converts the theme section.
func (c *Config) Palettes() theme.Palettes {
	return theme.Palettes{
		Light: c.Theme.Light.palette(),
		Dark:  c.Theme.Dark.palette(),
	}
}

func (p PaletteConfig) palette() theme.Palette {
	return theme.Palette{
		Background:  math.V3(p.Background),
		Base:        math.V3(p.Base),
		Shadow:      math.V3(p.Shadow),
		Line:        math.V3(p.Line),
		Placeholder: math.V3(p.Placeholder),
	}
}

func paletteConfig(p theme.Palette) PaletteConfig {
	return PaletteConfig{
		Background:  p.Background.Array(),
		Base:        p.Base.Array(),
		Shadow:      p.Shadow.Array(),
		Line:        p.Line.Array(),
		Placeholder: p.Placeholder.Array(),
	}
}
