// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package config loads runtime settings from an optional TOML file and
// GRAPHENE_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/YindSoft/graphene-ebitengine/engine"
	"github.com/YindSoft/graphene-ebitengine/internal/logging"
	"github.com/YindSoft/graphene-ebitengine/surface"
)

// Config is the full set of settings.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine" toml:"engine"`
	Logging LoggingConfig `mapstructure:"logging" toml:"logging"`
	Bridge  BridgeConfig  `mapstructure:"bridge" toml:"bridge"`
	Widget  WidgetConfig  `mapstructure:"widget" toml:"widget"`
}

// EngineConfig locates and configures the native engine.
type EngineConfig struct {
	// LibraryDir holds the bridge library. Empty means the working
	// directory, then the executable's directory.
	LibraryDir string `mapstructure:"library_dir" toml:"library_dir"`
	Debug      bool   `mapstructure:"debug" toml:"debug"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
}

// BridgeConfig configures bridge channels.
type BridgeConfig struct {
	// Timeout bounds host requests to page script. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout" toml:"timeout"`
}

// WidgetConfig is the default widget size.
type WidgetConfig struct {
	Width          int     `mapstructure:"width" toml:"width"`
	Height         int     `mapstructure:"height" toml:"height"`
	RelativeWidth  float64 `mapstructure:"relative_width" toml:"relative_width"`
	RelativeHeight float64 `mapstructure:"relative_height" toml:"relative_height"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Bridge:  BridgeConfig{Timeout: 30 * time.Second},
		Widget:  WidgetConfig{Width: 800, Height: 600},
	}
}

func normalizeConfig(cfg *Config) {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	switch strings.ToLower(cfg.Logging.Format) {
	case "json":
		cfg.Logging.Format = "json"
	default:
		cfg.Logging.Format = "console"
	}
}

func validateConfig(cfg *Config) error {
	var errs []string
	if cfg.Bridge.Timeout < 0 {
		errs = append(errs, "bridge.timeout must not be negative")
	}
	if cfg.Widget.Width < 0 || cfg.Widget.Height < 0 {
		errs = append(errs, "widget size must not be negative")
	}
	if cfg.Widget.RelativeWidth < 0 || cfg.Widget.RelativeWidth > 1 {
		errs = append(errs, "widget.relative_width must be between 0 and 1")
	}
	if cfg.Widget.RelativeHeight < 0 || cfg.Widget.RelativeHeight > 1 {
		errs = append(errs, "widget.relative_height must be between 0 and 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// RuntimeOptions maps the settings to engine runtime options. Textures and
// assets are left for the caller.
func (c *Config) RuntimeOptions() engine.Options {
	return engine.Options{
		Engine:        engine.Config{BaseDir: c.Engine.LibraryDir, Debug: c.Engine.Debug},
		BridgeTimeout: c.Bridge.Timeout,
	}
}

// WidgetOptions returns widget options for url using the default size.
func (c *Config) WidgetOptions(url string) engine.WidgetOptions {
	return engine.WidgetOptions{
		URL: url,
		Size: surface.SizeHints{
			Width:          c.Widget.Width,
			Height:         c.Widget.Height,
			RelativeWidth:  c.Widget.RelativeWidth,
			RelativeHeight: c.Widget.RelativeHeight,
		},
	}
}

// LoggerConfig returns the logging settings in logging.New terms.
func (c *Config) LoggerConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(c.Logging.Level)
	lc.Format = c.Logging.Format
	return lc
}
