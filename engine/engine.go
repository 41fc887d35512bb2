// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package engine owns the embedded browser engine for the lifetime of the
// process: it initializes it once, marshals every call onto the engine's UI
// thread, routes engine callbacks to surfaces, event buses and bridge
// channels, and tears everything down in order.
package engine

import (
	"image"

	"github.com/YindSoft/graphene-ebitengine/events"
	"github.com/YindSoft/graphene-ebitengine/input"
	"github.com/YindSoft/graphene-ebitengine/surface"
)

// Config is passed to Engine.Init.
type Config struct {
	// BaseDir holds the engine's shared libraries and resources.
	BaseDir string
	// Debug enables the engine's own logging.
	Debug bool
}

// Engine is the embedded browser. Every method is called on the runtime's UI
// thread.
type Engine interface {
	Init(cfg Config, h Handler) error
	Shutdown()
	// Tick lets the engine run pending work and fire callbacks.
	Tick()

	RegisterResource(path, mimeType string, data []byte) error

	CreateBrowser(id surface.ID, width, height int, url string) error
	DestroyBrowser(id surface.ID)
	ResizeBrowser(id surface.ID, width, height int) error
	LoadURL(id surface.ID, url string)
	ExecuteScript(id surface.ID, script string)
	SetFocus(id surface.ID, focused bool)

	SendMouseMove(id surface.ID, x, y int)
	SendMouseButton(id surface.ID, x, y int, button input.MouseButton, down bool)
	SendMouseWheel(id surface.ID, x, y, deltaX, deltaY int)
	SendKey(id surface.ID, ev input.KeyEvent)
}

// Handler is the callback surface the engine drives. Calls arrive on engine
// threads, concurrently with host-thread work.
type Handler interface {
	// OnPaint delivers a BGRA frame of width x height with a stride of width*4.
	OnPaint(id surface.ID, isPopup bool, dirty []image.Rectangle, buf []byte, width, height int, full bool)
	OnPopupSize(id surface.ID, rect *image.Rectangle)
	OnPopupClosed(id surface.ID)

	OnLoadingStateChange(id surface.ID, isLoading, canGoBack, canGoForward bool)
	OnLoadStart(id surface.ID, frame events.Frame, transitionType int)
	OnLoadEnd(id surface.ID, frame events.Frame, httpStatus int)
	OnLoadError(id surface.ID, frame events.Frame, errorCode int, errorText, failedURL string)

	// OnScriptMessage delivers a bridge frame sent by page script.
	OnScriptMessage(id surface.ID, frame []byte)
	// OnResourceRequest serves classpath: URIs requested by pages.
	OnResourceRequest(uri string) (data []byte, mimeType string, err error)
}
