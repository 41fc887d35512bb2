// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YindSoft/graphene-ebitengine/assets"
	"github.com/YindSoft/graphene-ebitengine/events"
	"github.com/YindSoft/graphene-ebitengine/internal/logging"
	"github.com/YindSoft/graphene-ebitengine/surface"
	"github.com/rs/zerolog"
)

// Options configure a Runtime.
type Options struct {
	// Engine is passed to Engine.Init.
	Engine Config
	// Textures creates the GPU textures surfaces upload frames to.
	Textures surface.TextureAllocator
	// Assets, when set, is served to pages under the classpath: scheme.
	Assets fs.FS
	// BridgeTimeout is the default deadline of bridge requests sent by the
	// host. Zero means no deadline.
	BridgeTimeout time.Duration
}

// WidgetOptions describe a browser widget.
type WidgetOptions struct {
	Size surface.SizeHints
	URL  string
}

// Runtime owns the engine, the surface registry and the event buses.
type Runtime struct {
	ctx    context.Context
	engine Engine
	opts   Options
	logger zerolog.Logger

	ui       *taskQueue
	dispatch *taskQueue

	registry     *surface.Registry
	resolver     *assets.Resolver
	loadEvents   *events.Bus[events.LoadEvent]
	bridgeEvents *events.Bus[events.BridgeEvent]

	initMu      sync.Mutex
	initialized atomic.Bool
	shutdown    atomic.Bool

	mu      sync.RWMutex
	widgets map[surface.ID]*Widget
	nextID  atomic.Int32
	focused atomic.Int32
}

// NewRuntime creates a runtime around e. Nothing is started in the engine
// until Initialize.
func NewRuntime(ctx context.Context, e Engine, opts Options) *Runtime {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Component(ctx, "runtime")
	r := &Runtime{
		ctx:          ctx,
		engine:       e,
		opts:         opts,
		logger:       logger,
		ui:           newTaskQueue("ui", true, logger),
		dispatch:     newTaskQueue("dispatch", false, logger),
		loadEvents:   events.NewBus[events.LoadEvent](ctx, "load"),
		bridgeEvents: events.NewBus[events.BridgeEvent](ctx, "bridge"),
		widgets:      make(map[surface.ID]*Widget),
	}
	r.registry = surface.NewRegistry(ctx, opts.Textures, surface.ResizerFunc(r.resizeBrowser))
	if opts.Assets != nil {
		r.resolver = assets.NewResolver(opts.Assets)
	}
	return r
}

// Initialize starts the engine. Calling it again after a success logs a
// warning and does nothing. A failure leaves the runtime uninitialized, so
// the call may be retried.
func (r *Runtime) Initialize(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r.initMu.Lock()
	defer r.initMu.Unlock()

	if r.shutdown.Load() {
		return ErrRuntimeShutdown
	}
	if r.initialized.Load() {
		r.logger.Warn().Msg("runtime already initialized")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	h := &callbacks{rt: r}
	if err := r.ui.call(func() error { return r.engine.Init(r.opts.Engine, h) }); err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	if err := r.registerAssets(); err != nil {
		_ = r.ui.call(func() error { r.engine.Shutdown(); return nil })
		return fmt.Errorf("registering assets: %w", err)
	}

	r.initialized.Store(true)
	r.logger.Info().Str("base_dir", r.opts.Engine.BaseDir).Msg("engine initialized")
	return nil
}

func (r *Runtime) registerAssets() error {
	if r.resolver == nil {
		return nil
	}
	var count int
	err := r.ui.call(func() error {
		return r.resolver.Walk(func(res *assets.Resource) error {
			if err := r.engine.RegisterResource(res.Path, res.MimeType, res.Data); err != nil {
				return fmt.Errorf("%s: %w", res.Path, err)
			}
			count++
			return nil
		})
	})
	if err != nil {
		return err
	}
	r.logger.Debug().Int("count", count).Msg("assets registered")
	return nil
}

// IsInitialized reports whether Initialize has succeeded and Shutdown has not
// run.
func (r *Runtime) IsInitialized() bool {
	return r.initialized.Load() && !r.shutdown.Load()
}

// Shutdown closes every widget in creation order, shuts the engine down and
// stops the runtime's threads. It is idempotent. It must not be called from
// an event listener or a bridge handler running on the dispatch queue.
func (r *Runtime) Shutdown() {
	if !r.shutdown.CompareAndSwap(false, true) {
		return
	}

	var closed int
	r.registry.Each(func(s *surface.Surface) {
		if w := r.widget(s.ID()); w != nil {
			w.Close()
			closed++
		}
	})

	if r.initialized.Load() {
		if err := r.ui.call(func() error { r.engine.Shutdown(); return nil }); err != nil {
			r.logger.Error().Err(err).Msg("engine shutdown failed")
		}
	}
	r.ui.stop()
	r.dispatch.stop()
	r.logger.Info().Int("widgets", closed).Msg("runtime shut down")
}

// NewWidget creates a surface and its browser and starts loading opts.URL.
func (r *Runtime) NewWidget(ctx context.Context, opts WidgetOptions) (*Widget, error) {
	if r.shutdown.Load() {
		return nil, ErrRuntimeShutdown
	}
	if !r.initialized.Load() {
		return nil, ErrEngineNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := surface.ID(r.nextID.Add(1))
	s, err := r.registry.Create(id, opts.Size)
	if err != nil {
		return nil, err
	}
	w := newWidget(r, s)

	r.mu.Lock()
	r.widgets[id] = w
	r.mu.Unlock()

	width, height := s.ViewSize()
	err = r.ui.call(func() error { return r.engine.CreateBrowser(id, width, height, opts.URL) })
	if err != nil {
		r.forget(w)
		w.channel.Close()
		r.registry.Destroy(id)
		return nil, fmt.Errorf("creating browser %d: %w", id, err)
	}

	r.logger.Debug().Int32("browser", int32(id)).Str("url", opts.URL).Msg("widget created")
	return w, nil
}

func (r *Runtime) widget(id surface.ID) *Widget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.widgets[id]
}

func (r *Runtime) forget(w *Widget) {
	r.mu.Lock()
	delete(r.widgets, w.id)
	r.mu.Unlock()
	r.focused.CompareAndSwap(int32(w.id), 0)
}

// Widgets returns the open widgets in creation order.
func (r *Runtime) Widgets() []*Widget {
	var out []*Widget
	r.registry.Each(func(s *surface.Surface) {
		if w := r.widget(s.ID()); w != nil {
			out = append(out, w)
		}
	})
	return out
}

// Tick lets the engine run pending work. The host calls it once per frame.
func (r *Runtime) Tick() {
	if !r.IsInitialized() {
		return
	}
	r.ui.post(r.engine.Tick)
}

// ResizeHost records a new host extent and resizes every widget against it
// on the dispatch queue. It returns without waiting for the engine; a widget
// keeps its previous size until its resize succeeds.
func (r *Runtime) ResizeHost(width, height int) {
	r.registry.SetHostExtent(width, height)
	if !r.dispatch.post(func() { r.registry.Relayout(width, height) }) {
		r.logger.Debug().Int("width", width).Int("height", height).Msg("resize dropped after shutdown")
	}
}

func (r *Runtime) resizeBrowser(id surface.ID, width, height int) error {
	if !r.IsInitialized() {
		return ErrEngineNotInitialized
	}
	return r.ui.call(func() error { return r.engine.ResizeBrowser(id, width, height) })
}

// Focus moves keyboard focus to the widget with id. Zero clears focus.
func (r *Runtime) Focus(id surface.ID) {
	prev := surface.ID(r.focused.Swap(int32(id)))
	if prev == id {
		return
	}
	r.ui.post(func() {
		if prev != 0 {
			r.engine.SetFocus(prev, false)
		}
		if id != 0 {
			r.engine.SetFocus(id, true)
		}
	})
}

// Focused returns the widget holding keyboard focus.
func (r *Runtime) Focused() (surface.ID, bool) {
	id := surface.ID(r.focused.Load())
	return id, id != 0
}

// LoadEvents returns the bus that receives page load events of every widget.
func (r *Runtime) LoadEvents() *events.Bus[events.LoadEvent] { return r.loadEvents }

// BridgeEvents returns the bus that receives fire-and-forget bridge messages
// from page script.
func (r *Runtime) BridgeEvents() *events.Bus[events.BridgeEvent] { return r.bridgeEvents }

// Registry returns the surface registry.
func (r *Runtime) Registry() *surface.Registry { return r.registry }

// Resolve serves a classpath: URI from the runtime's assets.
func (r *Runtime) Resolve(uri string) (*assets.Resource, error) {
	if r.resolver == nil {
		return nil, fmt.Errorf("%s: %w", uri, assets.ErrNotFound)
	}
	return r.resolver.Resolve(uri)
}
