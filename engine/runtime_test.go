// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/YindSoft/graphene-ebitengine/bridge"
	"github.com/YindSoft/graphene-ebitengine/events"
	"github.com/YindSoft/graphene-ebitengine/input"
	"github.com/YindSoft/graphene-ebitengine/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const waitFor = 2 * time.Second

func TestNewWidgetBeforeInitialize(t *testing.T) {
	rt := newTestRuntime(t, newFakeEngine(), Options{})

	_, err := rt.NewWidget(context.Background(), WidgetOptions{URL: "about:blank"})
	assert.ErrorIs(t, err, ErrEngineNotInitialized)
	assert.False(t, rt.IsInitialized())
}

func TestInitializeIsIdempotent(t *testing.T) {
	e := newFakeEngine()
	rt := newTestRuntime(t, e, Options{Engine: Config{BaseDir: "/opt/engine"}})

	require.NoError(t, rt.Initialize(context.Background()))
	require.NoError(t, rt.Initialize(context.Background()))

	assert.True(t, rt.IsInitialized())
	assert.Equal(t, 1, e.count("init"))
	assert.Equal(t, "/opt/engine", e.cfg.BaseDir)
}

func TestInitializeFailureIsReturned(t *testing.T) {
	e := newFakeEngine()
	e.initErr = errors.New("library missing")
	rt := newTestRuntime(t, e, Options{})

	err := rt.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "library missing")
	assert.False(t, rt.IsInitialized())

	e.initErr = nil
	require.NoError(t, rt.Initialize(context.Background()))
	assert.True(t, rt.IsInitialized())
}

func TestNilContextFallsBackToBackground(t *testing.T) {
	rt := newTestRuntime(t, newFakeEngine(), Options{})
	rt.ResizeHost(800, 600)

	var ctx context.Context
	require.NoError(t, rt.Initialize(ctx))
	w, err := rt.NewWidget(ctx, WidgetOptions{Size: surface.SizeHints{Width: 10, Height: 10}, URL: "about:blank"})
	require.NoError(t, err)
	assert.Equal(t, surface.ID(1), w.ID())
}

func TestInitializeRegistersAssets(t *testing.T) {
	e := newFakeEngine()
	rt := newTestRuntime(t, e, Options{Assets: fstest.MapFS{
		"ui/index.html": {Data: []byte("<p>hi</p>")},
		"ui/app.js":     {Data: []byte("1")},
	}})
	require.NoError(t, rt.Initialize(context.Background()))

	assert.Equal(t, "text/html <p>hi</p>", e.resources["ui/index.html"])
	assert.Equal(t, "application/javascript 1", e.resources["ui/app.js"])

	data, mime, err := e.callbacks().OnResourceRequest("classpath:///ui/index.html?v=2")
	require.NoError(t, err)
	assert.Equal(t, "text/html", mime)
	assert.Equal(t, "<p>hi</p>", string(data))
}

func TestNewWidgetCreatesBrowser(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)

	w, err := rt.NewWidget(context.Background(), WidgetOptions{
		Size: surface.SizeHints{RelativeWidth: 0.5, Height: 300},
		URL:  "classpath:///ui/index.html",
	})
	require.NoError(t, err)

	assert.Equal(t, surface.ID(1), w.ID())
	assert.Contains(t, e.log(), "create 1 400x300 classpath:///ui/index.html")
	s, ok := rt.Registry().Get(w.ID())
	require.True(t, ok)
	assert.Same(t, w.Surface(), s)
}

func TestNewWidgetCreateFailureCleansUp(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	e.createErr = errors.New("no gpu")

	_, err := rt.NewWidget(context.Background(), WidgetOptions{Size: surface.SizeHints{Width: 10, Height: 10}})
	require.Error(t, err)
	assert.Equal(t, 0, rt.Registry().Len())
	assert.Empty(t, rt.Widgets())
}

func TestShutdownDestroysInOrder(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	ctx := context.Background()

	var widgets []*Widget
	for range 3 {
		w, err := rt.NewWidget(ctx, WidgetOptions{Size: surface.SizeHints{Width: 10, Height: 10}})
		require.NoError(t, err)
		widgets = append(widgets, w)
	}
	shot := widgets[1].Surface().CreateScreenshot()

	rt.Shutdown()
	rt.Shutdown()

	var tail []string
	for _, c := range e.log() {
		if strings.HasPrefix(c, "destroy") || c == "shutdown" {
			tail = append(tail, c)
		}
	}
	assert.Equal(t, []string{"destroy 1", "destroy 2", "destroy 3", "shutdown"}, tail)
	assert.Equal(t, 0, rt.Registry().Len())
	for _, w := range widgets {
		assert.True(t, w.Closed())
		assert.Equal(t, surface.Destroyed, w.Surface().State())
	}
	_, err := shot.Get()
	assert.ErrorIs(t, err, surface.ErrSurfaceDestroyed)

	_, err = rt.NewWidget(ctx, WidgetOptions{})
	assert.ErrorIs(t, err, ErrRuntimeShutdown)
	assert.ErrorIs(t, rt.Initialize(ctx), ErrRuntimeShutdown)
	assert.False(t, rt.IsInitialized())
}

func TestWidgetForwardsInput(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	w, err := rt.NewWidget(context.Background(), WidgetOptions{Size: surface.SizeHints{Width: 100, Height: 100}})
	require.NoError(t, err)

	require.NoError(t, w.Navigate("https://example.com"))
	require.NoError(t, w.SendMouseMove(3, 4))
	require.NoError(t, w.SendMouseButton(3, 4, input.MouseButtonLeft, true))
	require.NoError(t, w.SendMouseWheel(3, 4, 0, -120))
	require.NoError(t, w.SendKey(input.KeyEvent{Kind: input.KeyChar, Text: "a"}))
	drain(t, rt)

	assert.Subset(t, e.log(), []string{
		"load 1 https://example.com",
		"move 1 3,4",
		"button 1 3,4 1 true",
		"wheel 1 3,4 0,-120",
		`key 1 3 0 "a"`,
	})

	w.Close()
	w.Close()
	assert.ErrorIs(t, w.Navigate("x"), ErrWidgetClosed)
	assert.ErrorIs(t, w.SendMouseMove(1, 1), ErrWidgetClosed)
	drain(t, rt)
	assert.Equal(t, 1, e.count("destroy 1"))
}

func TestFocusIsPerRuntime(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	ctx := context.Background()
	a, err := rt.NewWidget(ctx, WidgetOptions{Size: surface.SizeHints{Width: 1, Height: 1}})
	require.NoError(t, err)
	b, err := rt.NewWidget(ctx, WidgetOptions{Size: surface.SizeHints{Width: 1, Height: 1}})
	require.NoError(t, err)

	a.Focus()
	b.Focus()
	b.Focus()
	drain(t, rt)

	assert.False(t, a.Focused())
	assert.True(t, b.Focused())
	assert.Equal(t, []string{"focus 1 true", "focus 1 false", "focus 2 true"}, filter(e.log(), "focus"))

	b.Close()
	_, ok := rt.Focused()
	assert.False(t, ok)
}

func TestWidgetResizeKeepsSizeOnFailure(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	w, err := rt.NewWidget(context.Background(), WidgetOptions{Size: surface.SizeHints{Width: 100, Height: 50}})
	require.NoError(t, err)

	require.NoError(t, w.Resize(200, 100))
	e.resizeErr = errors.New("busy")
	require.Error(t, w.Resize(300, 300))

	vw, vh := w.Surface().ViewSize()
	assert.Equal(t, [2]int{200, 100}, [2]int{vw, vh})
}

func TestResizeHostResolvesRelativeHints(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	w, err := rt.NewWidget(context.Background(), WidgetOptions{
		Size: surface.SizeHints{RelativeWidth: 1, RelativeHeight: 0.5},
	})
	require.NoError(t, err)

	rt.ResizeHost(1024, 768)
	drain(t, rt)

	vw, vh := w.Surface().ViewSize()
	assert.Equal(t, [2]int{1024, 384}, [2]int{vw, vh})
	assert.Contains(t, e.log(), "resize 1 1024x384")
}

func TestResizeHostDoesNotWaitForEngine(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	w, err := rt.NewWidget(context.Background(), WidgetOptions{
		Size: surface.SizeHints{RelativeWidth: 1, RelativeHeight: 1},
	})
	require.NoError(t, err)

	release := make(chan struct{})
	require.True(t, rt.ui.post(func() { <-release }))

	returned := make(chan struct{})
	go func() {
		rt.ResizeHost(640, 480)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(waitFor):
		close(release)
		t.Fatal("ResizeHost blocked on a busy UI thread")
	}

	vw, vh := w.Surface().ViewSize()
	assert.Equal(t, [2]int{800, 600}, [2]int{vw, vh})

	close(release)
	drain(t, rt)
	vw, vh = w.Surface().ViewSize()
	assert.Equal(t, [2]int{640, 480}, [2]int{vw, vh})
	assert.Contains(t, e.log(), "resize 1 640x480")
}

func TestTickPostsToEngine(t *testing.T) {
	e := newFakeEngine()
	rt := newTestRuntime(t, e, Options{})
	rt.Tick()
	require.NoError(t, rt.Initialize(context.Background()))
	rt.Tick()
	rt.Tick()
	drain(t, rt)
	assert.Equal(t, 2, e.count("tick"))
}

func TestPaintCallbacksReachSurface(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	w, err := rt.NewWidget(context.Background(), WidgetOptions{Size: surface.SizeHints{Width: 4, Height: 2}})
	require.NoError(t, err)
	h := e.callbacks()

	h.OnPaint(w.ID(), false, nil, make([]byte, 4*2*4), 4, 2, true)
	h.OnPopupSize(w.ID(), &image.Rectangle{Max: image.Pt(2, 1)})
	h.OnPaint(99, false, nil, make([]byte, 4), 1, 1, true)
	w.Surface().Flush()

	fw, fh := w.Surface().FrameSize()
	assert.Equal(t, [2]int{4, 2}, [2]int{fw, fh})
	assert.NotNil(t, w.Surface().PopupRect())

	h.OnPopupClosed(w.ID())
	assert.Nil(t, w.Surface().PopupRect())
}

func TestLoadEventsAndShimInjection(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	w, err := rt.NewWidget(context.Background(), WidgetOptions{Size: surface.SizeHints{Width: 1, Height: 1}})
	require.NoError(t, err)

	got := make(chan events.LoadEvent, 8)
	sub := rt.LoadEvents().RegisterFunc("test", func(ev events.LoadEvent) error {
		got <- ev
		return nil
	})
	defer sub.Cancel()

	h := e.callbacks()
	main := events.Frame{ID: 1, Main: true, URL: "classpath:///ui/index.html"}
	h.OnLoadingStateChange(w.ID(), true, false, false)
	h.OnLoadStart(w.ID(), main, 0)
	h.OnLoadEnd(w.ID(), events.Frame{ID: 2, URL: "about:srcdoc"}, 200)
	h.OnLoadEnd(w.ID(), main, 200)
	h.OnLoadError(w.ID(), main, -105, "NAME_NOT_RESOLVED", "https://nowhere")
	drain(t, rt)

	var names []string
	for range 5 {
		ev := <-got
		assert.Equal(t, w.ID(), ev.BrowserID())
		names = append(names, ev.EventName())
	}
	assert.Equal(t, []string{"loading_state_changed", "load_started", "load_ended", "load_ended", "load_failed"}, names)

	scripts := e.scriptsFor(w.ID())
	require.Len(t, scripts, 1)
	assert.Contains(t, scripts[0], "__grapheneSend")
}

// lastFrame extracts the bridge frame from the most recent delivery script.
func lastFrame(t *testing.T, e *fakeEngine, id surface.ID) gjson.Result {
	t.Helper()
	scripts := e.scriptsFor(id)
	require.NotEmpty(t, scripts)
	s := scripts[len(scripts)-1]
	const prefix = "window.graphene&&window.graphene.__receive("
	require.True(t, strings.HasPrefix(s, prefix), s)
	frame := strings.TrimSuffix(strings.TrimPrefix(s, prefix), ")")
	require.True(t, gjson.Valid(frame), frame)
	return gjson.Parse(frame)
}

func TestBridgeRequestToPage(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	w, err := rt.NewWidget(context.Background(), WidgetOptions{Size: surface.SizeHints{Width: 1, Height: 1}})
	require.NoError(t, err)

	res := w.Send(context.Background(), "sum", []int{1, 2})
	drain(t, rt)

	req := lastFrame(t, e, w.ID())
	assert.Equal(t, "sum", req.Get("channel").String())
	assert.Equal(t, "[1,2]", req.Get("payload").Raw)

	e.callbacks().OnScriptMessage(w.ID(), []byte(`{"id":"`+req.Get("id").String()+`","ok":true,"result":3}`))

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	v, err := res.Await(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, "3", string(v))
}

func TestBridgeRequestFromPage(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	w, err := rt.NewWidget(context.Background(), WidgetOptions{Size: surface.SizeHints{Width: 1, Height: 1}})
	require.NoError(t, err)
	require.NoError(t, w.Bridge().RegisterHandler("greet", bridge.Typed(func(_ context.Context, name string) (string, error) {
		return "hello " + name, nil
	})))

	e.callbacks().OnScriptMessage(w.ID(), []byte(`{"id":"page-1","channel":"greet","payload":"ada"}`))
	e.callbacks().OnScriptMessage(w.ID(), []byte(`{"id":"page-2","channel":"missing","payload":null}`))

	require.Eventually(t, func() bool { return len(e.scriptsFor(w.ID())) == 2 }, waitFor, 5*time.Millisecond)

	replies := map[string]gjson.Result{}
	for _, s := range e.scriptsFor(w.ID()) {
		f := gjson.Parse(strings.TrimSuffix(strings.TrimPrefix(s, "window.graphene&&window.graphene.__receive("), ")"))
		replies[f.Get("id").String()] = f
	}
	assert.True(t, replies["page-1"].Get("ok").Bool())
	assert.Equal(t, "hello ada", replies["page-1"].Get("result").String())
	assert.False(t, replies["page-2"].Get("ok").Bool())
	assert.Equal(t, bridge.CodeNoHandler, replies["page-2"].Get("error.code").String())
}

func TestBridgeEventsReachBus(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	w, err := rt.NewWidget(context.Background(), WidgetOptions{Size: surface.SizeHints{Width: 1, Height: 1}})
	require.NoError(t, err)

	got := make(chan events.BridgeEvent, 1)
	rt.BridgeEvents().RegisterFunc("test", func(ev events.BridgeEvent) error {
		got <- ev
		return nil
	})

	e.callbacks().OnScriptMessage(w.ID(), []byte(`{"channel":"clicked","payload":{"x":1}}`))
	drain(t, rt)

	ev := <-got
	assert.Equal(t, w.ID(), ev.Browser)
	assert.Equal(t, "clicked", ev.Channel)
	assert.JSONEq(t, `{"x":1}`, string(ev.Payload))
}

func TestListenerMayCloseWidget(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	w, err := rt.NewWidget(context.Background(), WidgetOptions{Size: surface.SizeHints{Width: 1, Height: 1}})
	require.NoError(t, err)

	rt.LoadEvents().RegisterFunc("closer", func(ev events.LoadEvent) error {
		if _, ok := ev.(events.LoadFailed); ok {
			w.Close()
		}
		return nil
	})
	e.callbacks().OnLoadError(w.ID(), events.Frame{Main: true}, -2, "FAILED", "x")
	drain(t, rt)
	drain(t, rt)

	assert.True(t, w.Closed())
	assert.Equal(t, 1, e.count("destroy 1"))
}

func TestClosedWidgetRejectsBridgeRequests(t *testing.T) {
	e := newFakeEngine()
	rt := initializedRuntime(t, e)
	w, err := rt.NewWidget(context.Background(), WidgetOptions{Size: surface.SizeHints{Width: 1, Height: 1}})
	require.NoError(t, err)

	res := w.Send(context.Background(), "slow", nil)
	w.Close()

	_, err = res.Get()
	assert.ErrorIs(t, err, bridge.ErrClosed)

	err = w.Emit("late", json.RawMessage(`1`))
	assert.ErrorIs(t, err, ErrWidgetClosed)
}

func filter(log []string, prefix string) []string {
	var out []string
	for _, c := range log {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
