// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"

	"github.com/YindSoft/graphene-ebitengine/bridge"
	"github.com/YindSoft/graphene-ebitengine/events"
	"github.com/YindSoft/graphene-ebitengine/input"
	"github.com/YindSoft/graphene-ebitengine/internal/logging"
	"github.com/YindSoft/graphene-ebitengine/pending"
	"github.com/YindSoft/graphene-ebitengine/surface"
	"github.com/rs/zerolog"
)

// Widget is one browser: its surface, its bridge channel and the engine view
// behind them. Input coordinates are in browser pixels.
type Widget struct {
	rt      *Runtime
	id      surface.ID
	surface *surface.Surface
	channel *bridge.Channel
	logger  zerolog.Logger
	closed  atomic.Bool
}

func newWidget(rt *Runtime, s *surface.Surface) *Widget {
	w := &Widget{
		rt:      rt,
		id:      s.ID(),
		surface: s,
	}
	ctx := logging.WithComponent(rt.ctx, "widget")
	w.logger = logging.FromContext(ctx).With().Int32("browser", int32(w.id)).Logger()
	w.channel = bridge.NewChannel(ctx, bridge.TransportFunc(w.deliver), bridge.Options{
		IDPrefix: "host",
		Timeout:  rt.opts.BridgeTimeout,
		OnEvent: func(channel string, payload json.RawMessage) {
			rt.bridgeEvents.Dispatch(events.BridgeEvent{Browser: w.id, Channel: channel, Payload: payload})
		},
	})
	return w
}

// ID returns the browser id.
func (w *Widget) ID() surface.ID { return w.id }

// Surface returns the widget's paint surface.
func (w *Widget) Surface() *surface.Surface { return w.surface }

// Bridge returns the widget's bridge channel. Handlers registered on it serve
// requests from page script.
func (w *Widget) Bridge() *bridge.Channel { return w.channel }

// Closed reports whether Close has been called.
func (w *Widget) Closed() bool { return w.closed.Load() }

// Send issues a bridge request to page script.
func (w *Widget) Send(ctx context.Context, channel string, payload any) *pending.Result[json.RawMessage] {
	return w.channel.Send(ctx, channel, payload)
}

// Emit sends a fire-and-forget bridge event to page script.
func (w *Widget) Emit(channel string, payload any) error {
	return w.channel.Emit(channel, payload)
}

var scriptEscaper = strings.NewReplacer("\u2028", `\u2028`, "\u2029", `\u2029`)

// deliver hands an encoded frame to the page's bridge shim. JSON is a valid
// script expression once the two line separators are escaped.
func (w *Widget) deliver(frame []byte) error {
	return w.ExecuteScript("window.graphene&&window.graphene.__receive(" + scriptEscaper.Replace(string(frame)) + ")")
}

// do posts fn to the UI thread unless the widget is closed.
func (w *Widget) do(fn func(e Engine)) error {
	if w.closed.Load() {
		return ErrWidgetClosed
	}
	if !w.rt.ui.post(func() { fn(w.rt.engine) }) {
		return ErrRuntimeShutdown
	}
	return nil
}

// Navigate loads url.
func (w *Widget) Navigate(url string) error {
	return w.do(func(e Engine) { e.LoadURL(w.id, url) })
}

// ExecuteScript runs script in the main frame.
func (w *Widget) ExecuteScript(script string) error {
	return w.do(func(e Engine) { e.ExecuteScript(w.id, script) })
}

func (w *Widget) SendMouseMove(x, y int) error {
	return w.do(func(e Engine) { e.SendMouseMove(w.id, x, y) })
}

func (w *Widget) SendMouseButton(x, y int, button input.MouseButton, down bool) error {
	return w.do(func(e Engine) { e.SendMouseButton(w.id, x, y, button, down) })
}

func (w *Widget) SendMouseWheel(x, y, deltaX, deltaY int) error {
	return w.do(func(e Engine) { e.SendMouseWheel(w.id, x, y, deltaX, deltaY) })
}

func (w *Widget) SendKey(ev input.KeyEvent) error {
	return w.do(func(e Engine) { e.SendKey(w.id, ev) })
}

// Focus gives the widget keyboard focus.
func (w *Widget) Focus() {
	if !w.closed.Load() {
		w.rt.Focus(w.id)
	}
}

// Focused reports whether the widget holds keyboard focus.
func (w *Widget) Focused() bool {
	id, ok := w.rt.Focused()
	return ok && id == w.id
}

// Resize resizes the browser view. On failure the previous size is kept.
func (w *Widget) Resize(width, height int) error {
	if w.closed.Load() {
		return ErrWidgetClosed
	}
	return w.surface.Resize(width, height, surface.ResizerFunc(w.rt.resizeBrowser))
}

// Close destroys the surface, rejects outstanding bridge requests and
// destroys the browser. It is idempotent and safe to call from listeners and
// bridge handlers.
func (w *Widget) Close() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	w.rt.forget(w)
	w.rt.registry.Destroy(w.id)
	w.channel.Close()
	w.rt.ui.post(func() { w.rt.engine.DestroyBrowser(w.id) })
	w.logger.Debug().Msg("widget closed")
}
