// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. GRAPHENE_ENGINE_DEBUG.
const EnvPrefix = "GRAPHENE"

// Load reads path (TOML, optional when empty) over the defaults, then applies
// GRAPHENE_* environment variables.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults registers every key, which also makes AutomaticEnv see them
// during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("engine.library_dir", d.Engine.LibraryDir)
	v.SetDefault("engine.debug", d.Engine.Debug)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("bridge.timeout", d.Bridge.Timeout)
	v.SetDefault("widget.width", d.Widget.Width)
	v.SetDefault("widget.height", d.Widget.Height)
	v.SetDefault("widget.relative_width", d.Widget.RelativeWidth)
	v.SetDefault("widget.relative_height", d.Widget.RelativeHeight)
}
