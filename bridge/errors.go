// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package bridge

import (
	"errors"
	"fmt"
)

// Error codes carried in error responses.
const (
	CodeNoHandler        = "NO_HANDLER"
	CodeHandlerThrew     = "HANDLER_THREW"
	CodeMalformedPayload = "MALFORMED_PAYLOAD"
)

// Error is the structured failure of a bridge request. It is also the error
// object of the wire format.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
	Channel   string `json:"channel"`
}

func (e *Error) Error() string {
	if e.RequestID == "" && e.Channel == "" {
		return fmt.Sprintf("bridge: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("bridge: %s on %q (request %s): %s", e.Code, e.Channel, e.RequestID, e.Message)
}

// Is matches any *Error with the same code, so errors.Is(err, ErrNoHandler)
// holds for every NO_HANDLER failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	// ErrNoHandler: the receiving side has no handler for the channel.
	ErrNoHandler = &Error{Code: CodeNoHandler, Message: "no handler registered"}
	// ErrHandlerThrew: the handler returned an error or panicked.
	ErrHandlerThrew = &Error{Code: CodeHandlerThrew, Message: "handler failed"}
	// ErrMalformedPayload: the payload could not be encoded or decoded into
	// the expected shape.
	ErrMalformedPayload = &Error{Code: CodeMalformedPayload, Message: "malformed payload"}

	// ErrClosed rejects requests outstanding when the channel is closed.
	ErrClosed = errors.New("bridge: channel closed")
)

// toError converts a handler failure into the error sent back to the caller.
func toError(err error, requestID, channel string) *Error {
	code := CodeHandlerThrew
	var be *Error
	if errors.As(err, &be) {
		code = be.Code
	}
	return &Error{Code: code, Message: err.Error(), RequestID: requestID, Channel: channel}
}
