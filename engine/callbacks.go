// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	_ "embed"
	"image"

	"github.com/YindSoft/graphene-ebitengine/events"
	"github.com/YindSoft/graphene-ebitengine/surface"
)

// shimScript installs window.graphene in every page. Frames it produces are
// handed to the native __grapheneSend function and come back through
// OnScriptMessage.
//
//go:embed shim.js
var shimScript string

// callbacks routes engine callbacks. Paint and resource callbacks are served
// on the calling thread; everything that may run user code is moved to the
// dispatch queue so listeners and handlers can call back into the runtime.
type callbacks struct {
	rt *Runtime
}

var _ Handler = (*callbacks)(nil)

func (c *callbacks) surface(id surface.ID) *surface.Surface {
	s, ok := c.rt.registry.Get(id)
	if !ok {
		c.rt.logger.Trace().Int32("browser", int32(id)).Msg("callback for unknown surface dropped")
		return nil
	}
	return s
}

func (c *callbacks) OnPaint(id surface.ID, isPopup bool, dirty []image.Rectangle, buf []byte, width, height int, full bool) {
	if s := c.surface(id); s != nil {
		s.OnPaint(isPopup, dirty, buf, width, height, full)
	}
}

func (c *callbacks) OnPopupSize(id surface.ID, rect *image.Rectangle) {
	if s := c.surface(id); s != nil {
		s.OnPopupSize(rect)
	}
}

func (c *callbacks) OnPopupClosed(id surface.ID) {
	if s := c.surface(id); s != nil {
		s.OnPopupClosed()
	}
}

func (c *callbacks) publish(e events.LoadEvent) {
	c.rt.dispatch.post(func() { c.rt.loadEvents.Dispatch(e) })
}

func (c *callbacks) OnLoadingStateChange(id surface.ID, isLoading, canGoBack, canGoForward bool) {
	c.publish(events.LoadingStateChanged{
		Browser:      id,
		IsLoading:    isLoading,
		CanGoBack:    canGoBack,
		CanGoForward: canGoForward,
	})
}

func (c *callbacks) OnLoadStart(id surface.ID, frame events.Frame, transitionType int) {
	c.publish(events.LoadStarted{Browser: id, Frame: frame, TransitionType: transitionType})
}

func (c *callbacks) OnLoadEnd(id surface.ID, frame events.Frame, httpStatus int) {
	if frame.Main {
		if w := c.rt.widget(id); w != nil {
			if err := w.ExecuteScript(shimScript); err != nil {
				c.rt.logger.Debug().Err(err).Int32("browser", int32(id)).Msg("bridge shim not injected")
			}
		}
	}
	c.publish(events.LoadEnded{Browser: id, Frame: frame, HTTPStatus: httpStatus})
}

func (c *callbacks) OnLoadError(id surface.ID, frame events.Frame, errorCode int, errorText, failedURL string) {
	c.publish(events.LoadFailed{
		Browser:   id,
		Frame:     frame,
		ErrorCode: errorCode,
		ErrorText: errorText,
		FailedURL: failedURL,
	})
}

func (c *callbacks) OnScriptMessage(id surface.ID, frame []byte) {
	w := c.rt.widget(id)
	if w == nil {
		c.rt.logger.Debug().Int32("browser", int32(id)).Msg("bridge frame for closed widget dropped")
		return
	}
	// The engine may reuse buf once the callback returns.
	msg := append([]byte(nil), frame...)
	c.rt.dispatch.post(func() { w.channel.Receive(msg) })
}

func (c *callbacks) OnResourceRequest(uri string) ([]byte, string, error) {
	res, err := c.rt.Resolve(uri)
	if err != nil {
		c.rt.logger.Debug().Err(err).Str("uri", uri).Msg("resource not served")
		return nil, "", err
	}
	return res.Data, res.MimeType, nil
}
