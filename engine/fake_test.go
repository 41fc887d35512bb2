// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"testing"

	"github.com/YindSoft/graphene-ebitengine/input"
	"github.com/YindSoft/graphene-ebitengine/surface"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu        sync.Mutex
	handler   Handler
	cfg       Config
	calls     []string
	scripts   map[surface.ID][]string
	resources map[string]string

	initErr   error
	createErr error
	resizeErr error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		scripts:   make(map[surface.ID][]string),
		resources: make(map[string]string),
	}
}

func (e *fakeEngine) record(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, fmt.Sprintf(format, args...))
}

func (e *fakeEngine) log() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *fakeEngine) count(prefix string) int {
	n := 0
	for _, c := range e.log() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (e *fakeEngine) scriptsFor(id surface.ID) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.scripts[id]...)
}

func (e *fakeEngine) Init(cfg Config, h Handler) error {
	e.record("init %s", cfg.BaseDir)
	if e.initErr != nil {
		return e.initErr
	}
	e.mu.Lock()
	e.handler, e.cfg = h, cfg
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) Shutdown() { e.record("shutdown") }
func (e *fakeEngine) Tick()     { e.record("tick") }

func (e *fakeEngine) RegisterResource(path, mimeType string, data []byte) error {
	e.record("resource %s", path)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resources[path] = mimeType + " " + string(data)
	return nil
}

func (e *fakeEngine) CreateBrowser(id surface.ID, width, height int, url string) error {
	e.record("create %d %dx%d %s", id, width, height, url)
	return e.createErr
}

func (e *fakeEngine) DestroyBrowser(id surface.ID) { e.record("destroy %d", id) }

func (e *fakeEngine) ResizeBrowser(id surface.ID, width, height int) error {
	e.record("resize %d %dx%d", id, width, height)
	return e.resizeErr
}

func (e *fakeEngine) LoadURL(id surface.ID, url string) { e.record("load %d %s", id, url) }

func (e *fakeEngine) ExecuteScript(id surface.ID, script string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scripts[id] = append(e.scripts[id], script)
}

func (e *fakeEngine) SetFocus(id surface.ID, focused bool) { e.record("focus %d %t", id, focused) }

func (e *fakeEngine) SendMouseMove(id surface.ID, x, y int) { e.record("move %d %d,%d", id, x, y) }

func (e *fakeEngine) SendMouseButton(id surface.ID, x, y int, button input.MouseButton, down bool) {
	e.record("button %d %d,%d %d %t", id, x, y, button, down)
}

func (e *fakeEngine) SendMouseWheel(id surface.ID, x, y, dx, dy int) {
	e.record("wheel %d %d,%d %d,%d", id, x, y, dx, dy)
}

func (e *fakeEngine) SendKey(id surface.ID, ev input.KeyEvent) {
	e.record("key %d %d %d %q", id, ev.Kind, ev.VirtualKey, ev.Text)
}

func (e *fakeEngine) callbacks() Handler {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handler
}

type fakeTexture struct {
	w, h     int
	released bool
}

func (t *fakeTexture) Size() (int, int) { return t.w, t.h }

func (t *fakeTexture) WritePixels(image.Rectangle, []byte) {}

func (t *fakeTexture) Release() { t.released = true }

var textures = surface.TextureAllocatorFunc(func(w, h int) surface.Texture {
	return &fakeTexture{w: w, h: h}
})

func newTestRuntime(t *testing.T, e *fakeEngine, opts Options) *Runtime {
	t.Helper()
	if opts.Textures == nil {
		opts.Textures = textures
	}
	rt := NewRuntime(context.Background(), e, opts)
	t.Cleanup(rt.Shutdown)
	return rt
}

func initializedRuntime(t *testing.T, e *fakeEngine) *Runtime {
	t.Helper()
	rt := newTestRuntime(t, e, Options{})
	rt.ResizeHost(800, 600)
	require.NoError(t, rt.Initialize(context.Background()))
	return rt
}

// drain waits until every task posted to the UI and dispatch queues so far
// has run.
func drain(t *testing.T, rt *Runtime) {
	t.Helper()
	require.NoError(t, rt.dispatch.call(func() error { return nil }))
	require.NoError(t, rt.ui.call(func() error { return nil }))
}
