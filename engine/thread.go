// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// taskQueue runs tasks in FIFO order on a single goroutine. The queue is
// unbounded so posting never blocks the caller.
//
// The runtime owns two: the UI thread, locked to its OS thread because the
// engine requires every call to come from the thread that initialized it,
// and the dispatch queue that runs listeners and bridge frames so they may
// call back into the runtime.
type taskQueue struct {
	name   string
	lockOS bool
	logger zerolog.Logger

	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake chan struct{}
	done chan struct{}
}

func newTaskQueue(name string, lockOS bool, logger zerolog.Logger) *taskQueue {
	t := &taskQueue{
		name:   name,
		lockOS: lockOS,
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *taskQueue) loop() {
	if t.lockOS {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	defer close(t.done)

	for {
		t.mu.Lock()
		tasks := t.queue
		t.queue = nil
		stopped := t.stopped
		t.mu.Unlock()

		for _, fn := range tasks {
			t.run(fn)
		}
		if len(tasks) > 0 {
			continue
		}
		if stopped {
			return
		}
		<-t.wake
	}
}

func (t *taskQueue) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error().Str("queue", t.name).Str("panic", fmt.Sprint(r)).Msg("task panicked")
		}
	}()
	fn()
}

func (t *taskQueue) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// post queues fn without waiting. It reports false once the queue is
// stopped.
func (t *taskQueue) post(fn func()) bool {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return false
	}
	t.queue = append(t.queue, fn)
	t.mu.Unlock()
	t.signal()
	return true
}

// call runs fn on the queue and returns its error. It must not be called
// from a task of the same queue.
func (t *taskQueue) call(fn func() error) error {
	errc := make(chan error, 1)
	ok := t.post(func() {
		defer func() {
			if r := recover(); r != nil {
				errc <- fmt.Errorf("%s task panicked: %v", t.name, r)
			}
		}()
		errc <- fn()
	})
	if !ok {
		return ErrRuntimeShutdown
	}
	return <-errc
}

// stop runs the tasks already queued and ends the goroutine. Later posts are
// dropped. It waits for the goroutine to exit.
func (t *taskQueue) stop() {
	t.mu.Lock()
	already := t.stopped
	t.stopped = true
	t.mu.Unlock()
	if !already {
		t.signal()
	}
	<-t.done
}
