// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Wire frames:
//
//	request  {"id": "...", "channel": "...", "payload": <json>}
//	response {"id": "...", "ok": true,  "result": <json>}
//	         {"id": "...", "ok": false, "error": {"code", "message", "requestId", "channel"}}
//	event    {"channel": "...", "payload": <json>}

type frameKind int

const (
	frameInvalid frameKind = iota
	frameRequest
	frameResponse
	frameEvent
)

type inbound struct {
	kind    frameKind
	id      string
	channel string
	ok      bool
	payload json.RawMessage // request/event payload or response result
	errRaw  string
}

func parseFrame(frame []byte) inbound {
	if !gjson.ValidBytes(frame) {
		return inbound{}
	}
	if !gjson.ParseBytes(frame).IsObject() {
		return inbound{}
	}
	fields := gjson.GetManyBytes(frame, "id", "channel", "ok", "payload", "result", "error")
	id, channel, ok := fields[0], fields[1], fields[2]

	switch {
	case ok.Exists() && id.Type == gjson.String:
		return inbound{
			kind:    frameResponse,
			id:      id.Str,
			ok:      ok.Bool(),
			payload: rawOf(fields[4]),
			errRaw:  fields[5].Raw,
		}
	case channel.Type == gjson.String && id.Type == gjson.String:
		return inbound{kind: frameRequest, id: id.Str, channel: channel.Str, payload: rawOf(fields[3])}
	case channel.Type == gjson.String && !id.Exists():
		return inbound{kind: frameEvent, channel: channel.Str, payload: rawOf(fields[3])}
	default:
		return inbound{}
	}
}

func rawOf(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return nil
	}
	return json.RawMessage(r.Raw)
}

func orNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}

func requestFrame(id, channel string, payload json.RawMessage) ([]byte, error) {
	frame, err := sjson.SetBytes([]byte(`{}`), "id", id)
	if err == nil {
		frame, err = sjson.SetBytes(frame, "channel", channel)
	}
	if err == nil {
		frame, err = sjson.SetRawBytes(frame, "payload", orNull(payload))
	}
	if err != nil {
		return nil, fmt.Errorf("build request frame: %w", err)
	}
	return frame, nil
}

func eventFrame(channel string, payload json.RawMessage) ([]byte, error) {
	frame, err := sjson.SetBytes([]byte(`{}`), "channel", channel)
	if err == nil {
		frame, err = sjson.SetRawBytes(frame, "payload", orNull(payload))
	}
	if err != nil {
		return nil, fmt.Errorf("build event frame: %w", err)
	}
	return frame, nil
}

func resultFrame(id string, result json.RawMessage) ([]byte, error) {
	frame, err := sjson.SetBytes([]byte(`{}`), "id", id)
	if err == nil {
		frame, err = sjson.SetBytes(frame, "ok", true)
	}
	if err == nil {
		frame, err = sjson.SetRawBytes(frame, "result", orNull(result))
	}
	if err != nil {
		return nil, fmt.Errorf("build result frame: %w", err)
	}
	return frame, nil
}

func errorFrame(id string, e *Error) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode bridge error: %w", err)
	}
	frame, err := sjson.SetBytes([]byte(`{}`), "id", id)
	if err == nil {
		frame, err = sjson.SetBytes(frame, "ok", false)
	}
	if err == nil {
		frame, err = sjson.SetRawBytes(frame, "error", body)
	}
	if err != nil {
		return nil, fmt.Errorf("build error frame: %w", err)
	}
	return frame, nil
}

// decodeError reads the error object of a failed response. Anything that is
// not a well-formed error object becomes a HANDLER_THREW carrying the raw
// text.
func decodeError(raw, requestID, channel string) *Error {
	var e Error
	if err := json.Unmarshal([]byte(raw), &e); err != nil || e.Code == "" {
		e = Error{Code: CodeHandlerThrew, Message: gjson.Parse(raw).String()}
	}
	if e.RequestID == "" {
		e.RequestID = requestID
	}
	if e.Channel == "" {
		e.Channel = channel
	}
	return &e
}
