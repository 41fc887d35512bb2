// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package native implements engine.Engine on top of the graphene bridge
// shared library, loaded at runtime with purego. No cgo is required.
package native

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/YindSoft/graphene-ebitengine/engine"
	"github.com/YindSoft/graphene-ebitengine/events"
	"github.com/YindSoft/graphene-ebitengine/input"
	"github.com/YindSoft/graphene-ebitengine/surface"
	"github.com/ebitengine/purego"
)

// ErrAlreadyLoaded is returned when a second Engine is initialized while
// another one is live. The bridge library holds process-wide state.
var ErrAlreadyLoaded = errors.New("native: bridge library already in use")

var (
	grInit             func(baseDir string, debug int32) int32
	grSetCallbacks     func(paint, popupSize, popupClosed, loadingState, loadStart, loadEnd, loadError, message, resource uintptr)
	grShutdown         func()
	grTick             func()
	grRegisterResource func(path, mime string, data uintptr, size int32) int32
	grResourceRespond  func(request uintptr, data uintptr, size int32, mime string)
	grCreateBrowser    func(id, width, height int32, url string) int32
	grDestroyBrowser   func(id int32)
	grResizeBrowser    func(id, width, height int32) int32
	grLoadURL          func(id int32, url string)
	grExecuteScript    func(id int32, script string)
	grSetFocus         func(id int32, focused int32)
	grMouseMove        func(id, x, y int32)
	grMouseButton      func(id, x, y, button, down int32)
	grMouseWheel       func(id, x, y, dx, dy int32)
	grKey              func(id, kind, vk int32, mods uint32, text string)
)

var (
	loadMu sync.Mutex
	loaded bool

	callbacksOnce sync.Once
	callbackPtrs  [9]uintptr

	// active receives every callback the library fires.
	active atomic.Pointer[Engine]
)

// symbols lists every export the bridge library must provide.
func symbols() []struct {
	fptr any
	name string
} {
	return []struct {
		fptr any
		name string
	}{
		{&grInit, "gr_init"},
		{&grSetCallbacks, "gr_set_callbacks"},
		{&grShutdown, "gr_shutdown"},
		{&grTick, "gr_tick"},
		{&grRegisterResource, "gr_register_resource"},
		{&grResourceRespond, "gr_resource_respond"},
		{&grCreateBrowser, "gr_create_browser"},
		{&grDestroyBrowser, "gr_destroy_browser"},
		{&grResizeBrowser, "gr_resize_browser"},
		{&grLoadURL, "gr_load_url"},
		{&grExecuteScript, "gr_execute_script"},
		{&grSetFocus, "gr_set_focus"},
		{&grMouseMove, "gr_mouse_move"},
		{&grMouseButton, "gr_mouse_button"},
		{&grMouseWheel, "gr_mouse_wheel"},
		{&grKey, "gr_key"},
	}
}

// loadBridge opens the library and resolves its symbols. A failed load is
// not remembered, so a later Init can pick up a library that was missing.
func loadBridge(baseDir string) error {
	loadMu.Lock()
	defer loadMu.Unlock()
	if loaded {
		return nil
	}
	handle, err := openLibrary(baseDir)
	if err != nil {
		return err
	}
	if err := resolveAllSymbols(handle); err != nil {
		return err
	}
	loaded = true
	return nil
}

func resolveAllSymbols(handle uintptr) error {
	for _, reg := range symbols() {
		sym, err := symbolAddr(handle, reg.name)
		if err != nil {
			return fmt.Errorf("%s: %w (rebuild %s)", reg.name, err, LibraryName())
		}
		purego.RegisterFunc(reg.fptr, sym)
	}
	return nil
}

// Engine drives the bridge library. All methods except Init's library load
// must run on the thread that called Init, which engine.Runtime guarantees.
type Engine struct {
	handler engine.Handler
	live    atomic.Bool
}

// New returns an engine that loads the bridge library on Init.
func New() *Engine {
	return &Engine{}
}

var _ engine.Engine = (*Engine)(nil)

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Init loads the library from cfg.BaseDir and starts the engine.
func (e *Engine) Init(cfg engine.Config, h engine.Handler) error {
	if err := loadBridge(cfg.BaseDir); err != nil {
		return err
	}
	if !active.CompareAndSwap(nil, e) {
		return ErrAlreadyLoaded
	}
	e.handler = h
	installCallbacks()
	if rc := grInit(cfg.BaseDir, boolInt(cfg.Debug)); rc != 0 {
		active.Store(nil)
		return fmt.Errorf("gr_init failed with code %d", rc)
	}
	e.live.Store(true)
	return nil
}

func (e *Engine) Shutdown() {
	if !e.live.CompareAndSwap(true, false) {
		return
	}
	grShutdown()
	active.CompareAndSwap(e, nil)
}

func (e *Engine) Tick() { grTick() }

func (e *Engine) RegisterResource(path, mimeType string, data []byte) error {
	var ptr uintptr
	if len(data) > 0 {
		ptr = uintptr(unsafe.Pointer(&data[0]))
	}
	if rc := grRegisterResource(path, mimeType, ptr, int32(len(data))); rc != 0 {
		return fmt.Errorf("gr_register_resource %s failed with code %d", path, rc)
	}
	return nil
}

func (e *Engine) CreateBrowser(id surface.ID, width, height int, url string) error {
	if rc := grCreateBrowser(int32(id), int32(width), int32(height), url); rc != 0 {
		return fmt.Errorf("gr_create_browser failed with code %d", rc)
	}
	return nil
}

func (e *Engine) DestroyBrowser(id surface.ID) { grDestroyBrowser(int32(id)) }

func (e *Engine) ResizeBrowser(id surface.ID, width, height int) error {
	if rc := grResizeBrowser(int32(id), int32(width), int32(height)); rc != 0 {
		return fmt.Errorf("gr_resize_browser failed with code %d", rc)
	}
	return nil
}

func (e *Engine) LoadURL(id surface.ID, url string) { grLoadURL(int32(id), url) }

func (e *Engine) ExecuteScript(id surface.ID, script string) { grExecuteScript(int32(id), script) }

func (e *Engine) SetFocus(id surface.ID, focused bool) { grSetFocus(int32(id), boolInt(focused)) }

func (e *Engine) SendMouseMove(id surface.ID, x, y int) {
	grMouseMove(int32(id), int32(x), int32(y))
}

func (e *Engine) SendMouseButton(id surface.ID, x, y int, button input.MouseButton, down bool) {
	grMouseButton(int32(id), int32(x), int32(y), int32(button), boolInt(down))
}

func (e *Engine) SendMouseWheel(id surface.ID, x, y, deltaX, deltaY int) {
	grMouseWheel(int32(id), int32(x), int32(y), int32(deltaX), int32(deltaY))
}

func (e *Engine) SendKey(id surface.ID, ev input.KeyEvent) {
	grKey(int32(id), int32(ev.Kind), ev.VirtualKey, uint32(ev.Modifiers), ev.Text)
}

// installCallbacks hands the library one trampoline per callback. purego
// callbacks are never freed, so they are created once per process.
func installCallbacks() {
	callbacksOnce.Do(func() {
		callbackPtrs = [9]uintptr{
			purego.NewCallback(onPaint),
			purego.NewCallback(onPopupSize),
			purego.NewCallback(onPopupClosed),
			purego.NewCallback(onLoadingState),
			purego.NewCallback(onLoadStart),
			purego.NewCallback(onLoadEnd),
			purego.NewCallback(onLoadError),
			purego.NewCallback(onMessage),
			purego.NewCallback(onResource),
		}
	})
	p := callbackPtrs
	grSetCallbacks(p[0], p[1], p[2], p[3], p[4], p[5], p[6], p[7], p[8])
}

func handler() engine.Handler {
	if e := active.Load(); e != nil {
		return e.handler
	}
	return nil
}

func onPaint(id, popup, pixels, width, height, rects, rectCount, full uintptr) uintptr {
	h := handler()
	if h == nil || pixels == 0 {
		return 0
	}
	w, ht := int(int32(width)), int(int32(height))
	buf := unsafe.Slice((*byte)(unsafe.Pointer(pixels)), w*ht*4)
	h.OnPaint(surface.ID(int32(id)), popup != 0, decodeRects(rects, int(int32(rectCount))), buf, w, ht, full != 0)
	return 0
}

func onPopupSize(id, x, y, width, height uintptr) uintptr {
	if h := handler(); h != nil {
		r := image.Rect(int(int32(x)), int(int32(y)), int(int32(x))+int(int32(width)), int(int32(y))+int(int32(height)))
		h.OnPopupSize(surface.ID(int32(id)), &r)
	}
	return 0
}

func onPopupClosed(id uintptr) uintptr {
	if h := handler(); h != nil {
		h.OnPopupClosed(surface.ID(int32(id)))
	}
	return 0
}

func onLoadingState(id, loading, back, forward uintptr) uintptr {
	if h := handler(); h != nil {
		h.OnLoadingStateChange(surface.ID(int32(id)), loading != 0, back != 0, forward != 0)
	}
	return 0
}

func frameOf(frameID, main, url uintptr) events.Frame {
	return events.Frame{ID: int64(frameID), Main: main != 0, URL: goString(url)}
}

func onLoadStart(id, frameID, main, url, transition uintptr) uintptr {
	if h := handler(); h != nil {
		h.OnLoadStart(surface.ID(int32(id)), frameOf(frameID, main, url), int(int32(transition)))
	}
	return 0
}

func onLoadEnd(id, frameID, main, url, status uintptr) uintptr {
	if h := handler(); h != nil {
		h.OnLoadEnd(surface.ID(int32(id)), frameOf(frameID, main, url), int(int32(status)))
	}
	return 0
}

func onLoadError(id, frameID, main, url, code, text uintptr) uintptr {
	if h := handler(); h != nil {
		frame := frameOf(frameID, main, url)
		h.OnLoadError(surface.ID(int32(id)), frame, int(int32(code)), goString(text), frame.URL)
	}
	return 0
}

func onMessage(id, data, size uintptr) uintptr {
	if h := handler(); h != nil && data != 0 {
		h.OnScriptMessage(surface.ID(int32(id)), unsafe.Slice((*byte)(unsafe.Pointer(data)), int(int32(size))))
	}
	return 0
}

// onResource answers a classpath: request by calling gr_resource_respond
// before returning. The library copies the data.
func onResource(request, uri uintptr) uintptr {
	h := handler()
	if h == nil {
		return 0
	}
	data, mimeType, err := h.OnResourceRequest(goString(uri))
	if err != nil {
		return 0
	}
	var ptr uintptr
	if len(data) > 0 {
		ptr = uintptr(unsafe.Pointer(&data[0]))
	}
	grResourceRespond(request, ptr, int32(len(data)), mimeType)
	return 1
}
