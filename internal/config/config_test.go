package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/inkreveal/internal/engine/material"
	"github.com/Faultbox/inkreveal/internal/engine/theme"
	"github.com/Faultbox/inkreveal/pkg/math"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Test outline defaults
	if cfg.Outline.ThresholdAngle != 30 {
		t.Errorf("expected threshold angle 30, got %v", cfg.Outline.ThresholdAngle)
	}
	if cfg.Outline.CreaseOffset != 0 {
		t.Errorf("expected crease offset 0, got %v", cfg.Outline.CreaseOffset)
	}

	// Test ink defaults
	if cfg.Ink.GapFrequency != 4 || cfg.Ink.GapThreshold != 0.35 || cfg.Ink.Wobble != 0.08 {
		t.Errorf("unexpected ink defaults %+v", cfg.Ink)
	}

	// Test toon defaults
	if cfg.Toon.LitThreshold != 0.5 || cfg.Toon.MidThreshold != 0 {
		t.Errorf("expected thresholds 0.5/0, got %v/%v", cfg.Toon.LitThreshold, cfg.Toon.MidThreshold)
	}
	if cfg.Toon.LightDir != [3]float32{0.4, 1, 0.6} {
		t.Errorf("expected light dir [0.4 1 0.6], got %v", cfg.Toon.LightDir)
	}

	// Test reveal defaults
	if cfg.Reveal.FadeDuration != 150*time.Millisecond {
		t.Errorf("expected fade 150ms, got %v", cfg.Reveal.FadeDuration)
	}
	if cfg.Reveal.EdgeDuration != 1200*time.Millisecond {
		t.Errorf("expected edge duration 1.2s, got %v", cfg.Reveal.EdgeDuration)
	}
	if cfg.Reveal.Immediate {
		t.Error("expected immediate to be false by default")
	}

	// Test theme defaults
	if cfg.Theme.Mode != "light" {
		t.Errorf("expected theme mode 'light', got %s", cfg.Theme.Mode)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

outline:
  threshold_angle: 45
  crease_offset: 0.01
  line_width: 2

ink:
  seed: 7
  gap_threshold: 0.5
  solid: true

toon:
  lit_threshold: 0.6
  light_dir: [0, 1, 0]

reveal:
  fade_duration: 300ms
  edge_duration: 2s
  immediate: true

theme:
  mode: dark
  dark:
    line: [1, 0, 0]

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Outline.ThresholdAngle != 45 {
		t.Errorf("expected threshold 45, got %v", cfg.Outline.ThresholdAngle)
	}
	if cfg.Outline.LineWidth != 2 {
		t.Errorf("expected line width 2, got %v", cfg.Outline.LineWidth)
	}

	if cfg.Ink.Seed != 7 || cfg.Ink.GapThreshold != 0.5 || !cfg.Ink.Solid {
		t.Errorf("unexpected ink section %+v", cfg.Ink)
	}
	// Untouched keys keep their defaults.
	if cfg.Ink.GapFrequency != 4 {
		t.Errorf("expected gap frequency to stay 4, got %v", cfg.Ink.GapFrequency)
	}

	if cfg.Toon.LitThreshold != 0.6 || cfg.Toon.LightDir != [3]float32{0, 1, 0} {
		t.Errorf("unexpected toon section %+v", cfg.Toon)
	}

	if cfg.Reveal.FadeDuration != 300*time.Millisecond {
		t.Errorf("expected fade 300ms, got %v", cfg.Reveal.FadeDuration)
	}
	if cfg.Reveal.EdgeDuration != 2*time.Second {
		t.Errorf("expected edge 2s, got %v", cfg.Reveal.EdgeDuration)
	}
	if !cfg.Reveal.Immediate {
		t.Error("expected immediate to be true")
	}

	if cfg.ThemeMode() != theme.Dark {
		t.Errorf("expected dark mode, got %v", cfg.ThemeMode())
	}
	if got := cfg.Palettes().Dark.Line; got != (math.Vec3{X: 1}) {
		t.Errorf("expected dark line colour (1,0,0), got %v", got)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }, "window size"},
		{"bad fov", func(c *Config) { c.Graphics.FOVDegrees = 180 }, "fov_degrees"},
		{"threshold too large", func(c *Config) { c.Outline.ThresholdAngle = 200 }, "threshold_angle"},
		{"negative threshold", func(c *Config) { c.Outline.ThresholdAngle = -1 }, "threshold_angle"},
		{"ink opacity", func(c *Config) { c.Ink.Opacity = 1.5 }, "opacity"},
		{"lit below mid", func(c *Config) { c.Toon.LitThreshold = -0.2 }, "lit_threshold"},
		{"lit equals mid", func(c *Config) { c.Toon.MidThreshold = 0.5 }, "lit_threshold"},
		{"zero light", func(c *Config) { c.Toon.LightDir = [3]float32{} }, "light_dir"},
		{"negative delay", func(c *Config) { c.Reveal.ColourDelay = -time.Second }, "colour_delay"},
		{"unknown mode", func(c *Config) { c.Theme.Mode = "sepia" }, "sepia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}

	t.Run("zero durations", func(t *testing.T) {
		cfg := Default()
		cfg.Reveal = RevealConfig{}
		if err := cfg.Validate(); err != nil {
			t.Errorf("zero durations rejected: %v", err)
		}
	})
}

func TestOutlineOptions(t *testing.T) {
	cfg := Default()
	cfg.Outline.ThresholdAngle = 50
	cfg.Outline.LineWidth = 3
	cfg.Toon.DoubleSided = false
	cfg.Reveal.EdgeDuration = 2 * time.Second

	opts := cfg.OutlineOptions()
	if opts.Edges.ThresholdAngle != 50 {
		t.Errorf("threshold = %v, want 50", opts.Edges.ThresholdAngle)
	}
	if opts.Ink.LineWidth != 3 {
		t.Errorf("line width = %v, want 3", opts.Ink.LineWidth)
	}
	if opts.Toon.Side != material.FrontSide {
		t.Errorf("side = %v, want front", opts.Toon.Side)
	}
	if opts.Reveal.EdgeDuration != 2 || opts.Reveal.FadeDuration != 0.15 {
		t.Errorf("reveal = %+v", opts.Reveal)
	}
	if opts.Toon.LightDir != (math.Vec3{X: 0.4, Y: 1, Z: 0.6}) {
		t.Errorf("light dir = %v", opts.Toon.LightDir)
	}
}

func TestPalettesRoundTrip(t *testing.T) {
	if got, want := Default().Palettes(), theme.DefaultPalettes(); got != want {
		t.Errorf("Palettes() = %+v, want %+v", got, want)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "dark flag",
			setup: func() { *flagDark = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.ThemeMode() != theme.Dark {
					t.Errorf("expected dark mode, got %s", cfg.Theme.Mode)
				}
			},
			teardown: func() { *flagDark = false },
		},
		{
			name:  "immediate flag",
			setup: func() { *flagImmediate = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Reveal.Immediate {
					t.Error("expected immediate reveal with immediate flag")
				}
			},
			teardown: func() { *flagImmediate = false },
		},
		{
			name:  "threshold flag",
			setup: func() { *flagThreshold = 0 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Outline.ThresholdAngle != 0 {
					t.Errorf("expected threshold 0, got %v", cfg.Outline.ThresholdAngle)
				}
			},
			teardown: func() { *flagThreshold = -1 },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
outline:
  threshold_angle: 60
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flags to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	*flagThreshold = 15
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
		*flagThreshold = -1
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
	if cfg.Outline.ThresholdAngle != 15 {
		t.Errorf("expected threshold 15 from flag, got %v", cfg.Outline.ThresholdAngle)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("toon:\n  lit_threshold: -1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject lit_threshold below mid_threshold")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Outline.ThresholdAngle = 42
	cfg.Reveal.ColourDelay = 250 * time.Millisecond

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Outline.ThresholdAngle != 42 {
		t.Errorf("expected threshold 42 after reload, got %v", loaded.Outline.ThresholdAngle)
	}
	if loaded.Reveal.ColourDelay != 250*time.Millisecond {
		t.Errorf("expected colour delay 250ms after reload, got %v", loaded.Reveal.ColourDelay)
	}
}
