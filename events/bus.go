// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package events fans engine lifecycle and bridge notifications out to
// multiple listeners.
//
// Dispatch iterates a snapshot of the listener set taken when the event
// arrives. Listeners registered during a dispatch see the next event; a
// listener cancelled during a dispatch is skipped if it has not been visited
// yet. A failing or panicking listener is logged and never stops the others.
package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/YindSoft/graphene-ebitengine/internal/logging"
	"github.com/rs/zerolog"
)

// Event is anything dispatched through a Bus.
type Event interface {
	EventName() string
}

// Listener receives events of type E.
type Listener[E Event] interface {
	HandleEvent(E) error
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc[E Event] func(E) error

// HandleEvent calls f(e).
func (f ListenerFunc[E]) HandleEvent(e E) error {
	return f(e)
}

type entry[E Event] struct {
	id       uint64
	name     string
	listener Listener[E]
	active   atomic.Bool
}

// Stats holds dispatch counters.
type Stats struct {
	Dispatched uint64
	Delivered  uint64
	Failed     uint64
	Panicked   uint64
}

// Bus is a multi-listener fan-out for one family of events.
type Bus[E Event] struct {
	name   string
	logger zerolog.Logger

	mu        sync.Mutex // serializes writers; readers use the snapshot
	listeners atomic.Pointer[[]*entry[E]]
	nextID    uint64

	dispatched atomic.Uint64
	delivered  atomic.Uint64
	failed     atomic.Uint64
	panicked   atomic.Uint64
}

// NewBus creates an empty bus. name tags log lines and subscriptions.
func NewBus[E Event](ctx context.Context, name string) *Bus[E] {
	b := &Bus[E]{
		name:   name,
		logger: logging.Component(ctx, "event-bus").With().Str("bus", name).Logger(),
	}
	empty := make([]*entry[E], 0)
	b.listeners.Store(&empty)
	return b
}

// Name returns the bus name.
func (b *Bus[E]) Name() string {
	return b.name
}

// Register adds l to the bus. name identifies the listener in logs.
func (b *Bus[E]) Register(name string, l Listener[E]) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	e := &entry[E]{id: b.nextID, name: name, listener: l}
	e.active.Store(true)

	cur := *b.listeners.Load()
	next := make([]*entry[E], len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, e)
	b.listeners.Store(&next)

	return &Subscription{
		bus:      b.name,
		listener: name,
		cancel: func() bool {
			if !e.active.Swap(false) {
				return false
			}
			b.remove(e.id)
			return true
		},
	}
}

// RegisterFunc is Register for a plain function.
func (b *Bus[E]) RegisterFunc(name string, fn func(E) error) *Subscription {
	return b.Register(name, ListenerFunc[E](fn))
}

func (b *Bus[E]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := *b.listeners.Load()
	next := make([]*entry[E], 0, len(cur))
	for _, e := range cur {
		if e.id != id {
			next = append(next, e)
		}
	}
	b.listeners.Store(&next)
}

// Len returns the number of registered listeners.
func (b *Bus[E]) Len() int {
	return len(*b.listeners.Load())
}

// Dispatch delivers e to every listener in the current snapshot, in
// registration order. It never returns an error and never panics because of
// a listener.
func (b *Bus[E]) Dispatch(e E) {
	b.dispatched.Add(1)
	for _, l := range *b.listeners.Load() {
		if !l.active.Load() {
			continue
		}
		b.deliver(l, e)
	}
}

func (b *Bus[E]) deliver(l *entry[E], e E) {
	defer func() {
		if r := recover(); r != nil {
			b.panicked.Add(1)
			b.logger.Error().
				Str("event", e.EventName()).
				Str("listener", l.name).
				Str("panic", fmt.Sprint(r)).
				Msg("listener panicked")
		}
	}()

	if err := l.listener.HandleEvent(e); err != nil {
		b.failed.Add(1)
		b.logger.Warn().
			Err(err).
			Str("event", e.EventName()).
			Str("listener", l.name).
			Msg("listener failed")
		return
	}
	b.delivered.Add(1)
}

// Stats returns a snapshot of the dispatch counters.
func (b *Bus[E]) Stats() Stats {
	return Stats{
		Dispatched: b.dispatched.Load(),
		Delivered:  b.delivered.Load(),
		Failed:     b.failed.Load(),
		Panicked:   b.panicked.Load(),
	}
}
