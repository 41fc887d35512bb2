// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package bridge

import (
	"context"
	"encoding/json"
	"fmt"
)

// Request is an inbound request delivered to a Handler.
type Request struct {
	ID      string
	Channel string
	Payload json.RawMessage
}

// Handler serves requests on one channel. It runs on its own goroutine and
// may block; the returned value is encoded as the response result.
type Handler interface {
	Handle(ctx context.Context, req Request) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req Request) (any, error)

// Handle calls f(ctx, req).
func (f HandlerFunc) Handle(ctx context.Context, req Request) (any, error) {
	return f(ctx, req)
}

// Typed builds a Handler that decodes the payload into T. A payload that
// does not fit T fails with ErrMalformedPayload.
func Typed[T, R any](fn func(ctx context.Context, in T) (R, error)) Handler {
	return HandlerFunc(func(ctx context.Context, req Request) (any, error) {
		var in T
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &in); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
			}
		}
		return fn(ctx, in)
	})
}

// Decode unmarshals a response result into T. A result that does not fit T
// fails with ErrMalformedPayload.
func Decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return out, nil
}
