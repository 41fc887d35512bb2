// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package pending provides a result handle that is settled exactly once,
// either with a value or with an error.
package pending

import (
	"context"
	"sync"
)

// Result is a not-yet-settled value. The zero value is not usable; use New.
type Result[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   bool
	value     T
	err       error
	callbacks []func(T, error)
}

// New returns an unsettled result.
func New[T any]() *Result[T] {
	return &Result[T]{done: make(chan struct{})}
}

// Resolved returns a result already settled with v.
func Resolved[T any](v T) *Result[T] {
	r := New[T]()
	r.Resolve(v)
	return r
}

// Rejected returns a result already settled with err.
func Rejected[T any](err error) *Result[T] {
	r := New[T]()
	r.Reject(err)
	return r
}

// Resolve settles the result with v. It reports false if the result was
// already settled, in which case v is discarded.
func (r *Result[T]) Resolve(v T) bool {
	return r.settle(v, nil)
}

// Reject settles the result with err. It reports false if the result was
// already settled.
func (r *Result[T]) Reject(err error) bool {
	var zero T
	return r.settle(zero, err)
}

func (r *Result[T]) settle(v T, err error) bool {
	r.mu.Lock()
	if r.settled {
		r.mu.Unlock()
		return false
	}
	r.settled = true
	r.value = v
	r.err = err
	callbacks := r.callbacks
	r.callbacks = nil
	close(r.done)
	r.mu.Unlock()

	for _, cb := range callbacks {
		cb(v, err)
	}
	return true
}

// Done is closed once the result is settled.
func (r *Result[T]) Done() <-chan struct{} {
	return r.done
}

// Settled reports whether the result has a value or an error.
func (r *Result[T]) Settled() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Get returns the settled value and error. It must only be called after Done
// is closed; before that it returns the zero value and a nil error.
func (r *Result[T]) Get() (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.err
}

// Await blocks until the result is settled or ctx is done.
func (r *Result[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.Get()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then registers fn to run once the result is settled. If it already is, fn
// runs immediately on the calling goroutine; otherwise it runs on the
// goroutine that settles the result.
func (r *Result[T]) Then(fn func(T, error)) {
	r.mu.Lock()
	if !r.settled {
		r.callbacks = append(r.callbacks, fn)
		r.mu.Unlock()
		return
	}
	v, err := r.value, r.err
	r.mu.Unlock()
	fn(v, err)
}
