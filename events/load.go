// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package events

import (
	"encoding/json"

	"github.com/YindSoft/graphene-ebitengine/surface"
)

// Frame identifies the frame a load event belongs to.
type Frame struct {
	ID   int64
	Main bool
	URL  string
}

// LoadEvent is one of LoadingStateChanged, LoadStarted, LoadEnded or
// LoadFailed.
type LoadEvent interface {
	Event
	BrowserID() surface.ID
	loadEvent()
}

// LoadingStateChanged reports a change in the browser's loading state.
type LoadingStateChanged struct {
	Browser      surface.ID
	IsLoading    bool
	CanGoBack    bool
	CanGoForward bool
}

// LoadStarted reports that a frame began loading.
type LoadStarted struct {
	Browser        surface.ID
	Frame          Frame
	TransitionType int
}

// LoadEnded reports that a frame finished loading.
type LoadEnded struct {
	Browser    surface.ID
	Frame      Frame
	HTTPStatus int
}

// LoadFailed reports that a frame failed to load.
type LoadFailed struct {
	Browser   surface.ID
	Frame     Frame
	ErrorCode int
	ErrorText string
	FailedURL string
}

func (LoadingStateChanged) EventName() string { return "loading_state_changed" }
func (LoadStarted) EventName() string         { return "load_started" }
func (LoadEnded) EventName() string           { return "load_ended" }
func (LoadFailed) EventName() string          { return "load_failed" }

func (e LoadingStateChanged) BrowserID() surface.ID { return e.Browser }
func (e LoadStarted) BrowserID() surface.ID         { return e.Browser }
func (e LoadEnded) BrowserID() surface.ID           { return e.Browser }
func (e LoadFailed) BrowserID() surface.ID          { return e.Browser }

func (LoadingStateChanged) loadEvent() {}
func (LoadStarted) loadEvent()         {}
func (LoadEnded) loadEvent()           {}
func (LoadFailed) loadEvent()          {}

// BridgeEvent is a fire-and-forget message from page script, sent on a named
// channel without a correlation id.
type BridgeEvent struct {
	Browser surface.ID
	Channel string
	Payload json.RawMessage
}

// EventName returns the bridge channel, so listener failures are logged per
// channel.
func (e BridgeEvent) EventName() string { return "bridge:" + e.Channel }
