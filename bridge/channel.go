// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package bridge correlates requests and responses exchanged with page
// script over a frame transport.
//
// Both directions share one protocol. Send tags each request with a fresh id
// and returns a pending result that settles exactly once, when the matching
// response arrives, the context ends or the channel closes. Inbound requests
// are served by the handler registered for their channel on a goroutine of
// their own, so slow handlers never block the dispatcher.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YindSoft/graphene-ebitengine/internal/logging"
	"github.com/YindSoft/graphene-ebitengine/pending"
	"github.com/rs/zerolog"
)

// Transport delivers an encoded frame to the other side.
type Transport interface {
	Deliver(frame []byte) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(frame []byte) error

// Deliver calls f(frame).
func (f TransportFunc) Deliver(frame []byte) error {
	return f(frame)
}

// Options configure a Channel. All fields are optional.
type Options struct {
	// IDPrefix starts every correlation id. Defaults to "host".
	IDPrefix string
	// Timeout applies to Send calls whose context has no deadline.
	Timeout time.Duration
	// OnEvent receives inbound event frames (a channel without an id).
	OnEvent func(channel string, payload json.RawMessage)
}

type outstanding struct {
	channel string
	result  *pending.Result[json.RawMessage]
}

// Channel is one end of the bridge.
type Channel struct {
	transport Transport
	opts      Options
	logger    zerolog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	pending  map[string]outstanding
	handlers map[string]Handler
	closed   bool

	seq atomic.Uint64
}

// NewChannel creates a channel that writes frames to transport. Handlers run
// with a context derived from ctx that is cancelled by Close.
func NewChannel(ctx context.Context, transport Transport, opts Options) *Channel {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.IDPrefix == "" {
		opts.IDPrefix = "host"
	}
	base, cancel := context.WithCancel(ctx)
	return &Channel{
		transport: transport,
		opts:      opts,
		logger:    logging.Component(ctx, "bridge"),
		baseCtx:   base,
		cancel:    cancel,
		pending:   make(map[string]outstanding),
		handlers:  make(map[string]Handler),
	}
}

// RegisterHandler serves inbound requests on channel with h, replacing any
// previous handler.
func (c *Channel) RegisterHandler(channel string, h Handler) error {
	if channel == "" {
		return errors.New("bridge: channel name cannot be empty")
	}
	if h == nil {
		return errors.New("bridge: handler cannot be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[channel] = h
	return nil
}

// HandleFunc is RegisterHandler for a plain function.
func (c *Channel) HandleFunc(channel string, fn func(ctx context.Context, req Request) (any, error)) error {
	return c.RegisterHandler(channel, HandlerFunc(fn))
}

// Unregister removes the handler for channel. Requests already being served
// complete normally; later ones fail with NO_HANDLER.
func (c *Channel) Unregister(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, channel)
}

// Pending returns the number of requests awaiting a response.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Channel) nextID() string {
	return c.opts.IDPrefix + "-" + strconv.FormatUint(c.seq.Add(1), 10)
}

// Send issues a request on channel. payload is JSON-encoded unless it is
// already a json.RawMessage. The result never blocks the caller: it settles
// with the response result, a *Error, the context error, or ErrClosed.
func (c *Channel) Send(ctx context.Context, channel string, payload any) *pending.Result[json.RawMessage] {
	id := c.nextID()

	raw, err := encodePayload(payload)
	if err != nil {
		return pending.Rejected[json.RawMessage](&Error{
			Code: CodeMalformedPayload, Message: err.Error(), RequestID: id, Channel: channel,
		})
	}
	frame, err := requestFrame(id, channel, raw)
	if err != nil {
		return pending.Rejected[json.RawMessage](err)
	}

	r := pending.New[json.RawMessage]()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return pending.Rejected[json.RawMessage](ErrClosed)
	}
	c.pending[id] = outstanding{channel: channel, result: r}
	c.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok && c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		r.Then(func(json.RawMessage, error) { cancel() })
	}
	stop := context.AfterFunc(ctx, func() {
		if c.take(id) != nil {
			c.logger.Debug().Str("id", id).Str("channel", channel).Msg("request abandoned")
			r.Reject(fmt.Errorf("bridge request %s on %q: %w", id, channel, ctx.Err()))
		}
	})
	r.Then(func(json.RawMessage, error) { stop() })

	if err := c.transport.Deliver(frame); err != nil {
		if c.take(id) != nil {
			r.Reject(fmt.Errorf("deliver request %s on %q: %w", id, channel, err))
		}
	}
	return r
}

// Emit sends a fire-and-forget event frame.
func (c *Channel) Emit(channel string, payload any) error {
	raw, err := encodePayload(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	frame, err := eventFrame(channel, raw)
	if err != nil {
		return err
	}
	if err := c.transport.Deliver(frame); err != nil {
		return fmt.Errorf("deliver event on %q: %w", channel, err)
	}
	return nil
}

func encodePayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if !json.Valid(p) {
			return nil, errors.New("payload is not valid JSON")
		}
		return p, nil
	default:
		return json.Marshal(p)
	}
}

// take removes and returns the outstanding result for id, or nil.
func (c *Channel) take(id string) *pending.Result[json.RawMessage] {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)
	return o.result
}

// Receive handles one frame from the other side. Frames that cannot be
// parsed, and responses nobody is waiting for, are logged and dropped.
func (c *Channel) Receive(frame []byte) {
	in := parseFrame(frame)
	switch in.kind {
	case frameResponse:
		c.settle(in)
	case frameRequest:
		c.serve(in)
	case frameEvent:
		if c.opts.OnEvent == nil {
			c.logger.Debug().Str("channel", in.channel).Msg("event dropped, no sink")
			return
		}
		c.opts.OnEvent(in.channel, in.payload)
	default:
		c.logger.Warn().Int("len", len(frame)).Msg("dropping malformed bridge frame")
	}
}

func (c *Channel) settle(in inbound) {
	c.mu.Lock()
	o, ok := c.pending[in.id]
	if ok {
		delete(c.pending, in.id)
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Warn().Str("id", in.id).Msg("dropping response for unknown request")
		return
	}
	if in.ok {
		o.result.Resolve(in.payload)
		return
	}
	o.result.Reject(decodeError(in.errRaw, in.id, o.channel))
}

func (c *Channel) serve(in inbound) {
	c.mu.Lock()
	h, ok := c.handlers[in.channel]
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return
	}
	if !ok {
		c.logger.Debug().Str("id", in.id).Str("channel", in.channel).Msg("no handler registered")
		c.reply(in, nil, &Error{
			Code:      CodeNoHandler,
			Message:   fmt.Sprintf("no handler registered for channel %q", in.channel),
			RequestID: in.id,
			Channel:   in.channel,
		})
		return
	}

	go func() {
		result, err := c.invoke(h, Request{ID: in.id, Channel: in.channel, Payload: in.payload})
		if err != nil {
			c.logger.Warn().Err(err).Str("id", in.id).Str("channel", in.channel).Msg("bridge handler failed")
			c.reply(in, nil, toError(err, in.id, in.channel))
			return
		}
		raw, err := encodePayload(result)
		if err != nil {
			c.reply(in, nil, &Error{Code: CodeMalformedPayload, Message: err.Error(), RequestID: in.id, Channel: in.channel})
			return
		}
		c.reply(in, raw, nil)
	}()
}

func (c *Channel) invoke(h Handler, req Request) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrHandlerThrew, r)
		}
	}()
	return h.Handle(c.baseCtx, req)
}

func (c *Channel) reply(in inbound, result json.RawMessage, failure *Error) {
	var (
		frame []byte
		err   error
	)
	if failure != nil {
		frame, err = errorFrame(in.id, failure)
	} else {
		frame, err = resultFrame(in.id, result)
	}
	if err == nil {
		err = c.transport.Deliver(frame)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("id", in.id).Str("channel", in.channel).Msg("failed to deliver response")
	}
}

// Close rejects every outstanding request with ErrClosed and cancels the
// context of running handlers. It does not wait for them, so a handler may
// close its own channel. Requests received afterwards are ignored.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	waiting := c.pending
	c.pending = make(map[string]outstanding)
	c.mu.Unlock()

	c.cancel()
	for _, o := range waiting {
		o.result.Reject(ErrClosed)
	}
}
