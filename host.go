// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package graphene

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/YindSoft/graphene-ebitengine/config"
	"github.com/YindSoft/graphene-ebitengine/engine"
	"github.com/YindSoft/graphene-ebitengine/engine/native"
	"github.com/YindSoft/graphene-ebitengine/internal/logging"
	"github.com/hajimehoshi/ebiten/v2"
)

// Host connects a Runtime to an Ebiten game: call Update from the game's
// Update, Draw from its Draw and Layout from its Layout.
type Host struct {
	rt    *engine.Runtime
	views []*View

	hostW, hostH int
}

// NewHost wraps a runtime built on e. Textures default to Ebiten images.
func NewHost(ctx context.Context, e engine.Engine, opts engine.Options) *Host {
	if opts.Textures == nil {
		opts.Textures = TextureAllocator()
	}
	return &Host{rt: engine.NewRuntime(ctx, e, opts)}
}

// Open loads the native engine described by cfg, serving assets under the
// classpath: scheme, and initializes it.
func Open(ctx context.Context, cfg *config.Config, assets fs.FS) (*Host, error) {
	logger := logging.New(cfg.LoggerConfig())
	ctx = logging.WithContext(ctx, logger)

	opts := cfg.RuntimeOptions()
	opts.Engine.BaseDir = ResolveBaseDir(opts.Engine.BaseDir)
	opts.Assets = assets

	h := NewHost(ctx, native.New(), opts)
	if err := h.rt.Initialize(ctx); err != nil {
		h.rt.Shutdown()
		return nil, fmt.Errorf("graphene: %w", err)
	}
	return h, nil
}

// ResolveBaseDir returns dir, or when it is empty the working directory if
// it holds the bridge library and the executable's directory otherwise.
func ResolveBaseDir(dir string) string {
	if dir != "" {
		return dir
	}
	dir, _ = os.Getwd()
	if _, err := os.Stat(filepath.Join(dir, native.LibraryName())); err != nil {
		if exe, _ := os.Executable(); exe != "" {
			dir = filepath.Dir(exe)
		}
	}
	return dir
}

// Runtime returns the runtime behind the host.
func (h *Host) Runtime() *engine.Runtime { return h.rt }

// Initialize starts the engine if Open did not.
func (h *Host) Initialize(ctx context.Context) error { return h.rt.Initialize(ctx) }

// NewView creates a widget drawn into bounds. An empty bounds uses the
// widget's own size at the origin.
func (h *Host) NewView(ctx context.Context, opts engine.WidgetOptions, bounds image.Rectangle) (*View, error) {
	w, err := h.rt.NewWidget(ctx, opts)
	if err != nil {
		return nil, err
	}
	if bounds.Empty() {
		vw, vh := w.Surface().ViewSize()
		bounds = image.Rect(0, 0, vw, vh)
	}
	v := newView(w, bounds)
	h.views = append(h.views, v)
	return v, nil
}

// Views returns the open views in creation order.
func (h *Host) Views() []*View {
	h.prune()
	return slices.Clone(h.views)
}

func (h *Host) prune() {
	h.views = slices.DeleteFunc(h.views, func(v *View) bool { return v.widget.Closed() })
}

// Update ticks the engine and forwards input to the views.
func (h *Host) Update() error {
	h.rt.Tick()
	h.prune()
	for _, v := range h.views {
		v.update()
	}
	return nil
}

// Draw draws every view in creation order.
func (h *Host) Draw(screen *ebiten.Image) {
	for _, v := range h.views {
		v.Draw(screen)
	}
}

// Layout reports a new screen size so widgets with relative size hints are
// resized.
func (h *Host) Layout(width, height int) {
	if width == h.hostW && height == h.hostH {
		return
	}
	h.hostW, h.hostH = width, height
	h.rt.ResizeHost(width, height)
}

// Close shuts the runtime down.
func (h *Host) Close() {
	h.rt.Shutdown()
	h.views = nil
}
