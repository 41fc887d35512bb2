// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 30*time.Second, cfg.RuntimeOptions().BridgeTimeout)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphene.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[engine]
library_dir = "/opt/graphene"

[logging]
level = "DEBUG"
format = "json"

[bridge]
timeout = "5s"

[widget]
relative_width = 0.5
height = 240
`), 0o600))
	t.Setenv("GRAPHENE_ENGINE_DEBUG", "true")
	t.Setenv("GRAPHENE_WIDGET_WIDTH", "320")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/graphene", cfg.Engine.LibraryDir)
	assert.True(t, cfg.Engine.Debug)
	assert.Equal(t, 5*time.Second, cfg.Bridge.Timeout)

	opts := cfg.RuntimeOptions()
	assert.Equal(t, "/opt/graphene", opts.Engine.BaseDir)
	assert.True(t, opts.Engine.Debug)

	w := cfg.WidgetOptions("classpath:///ui/index.html")
	assert.Equal(t, 320, w.Size.Width)
	assert.Equal(t, 240, w.Size.Height)
	assert.InDelta(t, 0.5, w.Size.RelativeWidth, 1e-9)
	assert.Equal(t, "classpath:///ui/index.html", w.URL)

	lc := cfg.LoggerConfig()
	assert.Equal(t, zerolog.DebugLevel, lc.Level)
	assert.Equal(t, "json", lc.Format)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[widget]\nrelative_width = 2.0\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relative_width")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestNormalizeConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Format = "pretty"
	cfg.Logging.Level = " WARN "

	normalizeConfig(cfg)

	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)
}
