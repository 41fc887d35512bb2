// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package pending

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSettlesOnce(t *testing.T) {
	r := New[int]()
	assert.False(t, r.Settled())

	assert.True(t, r.Resolve(1))
	assert.False(t, r.Resolve(2))
	assert.False(t, r.Reject(errors.New("late")))

	v, err := r.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.True(t, r.Settled())
}

func TestRejectCarriesError(t *testing.T) {
	boom := errors.New("boom")
	r := Rejected[string](boom)

	_, err := r.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestAwaitHonoursContext(t *testing.T) {
	r := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, r.Settled())
}

func TestThenRunsBeforeAndAfterSettlement(t *testing.T) {
	r := New[int]()
	var calls atomic.Int32
	r.Then(func(v int, err error) {
		assert.Equal(t, 7, v)
		calls.Add(1)
	})
	r.Resolve(7)
	r.Then(func(v int, err error) {
		assert.Equal(t, 7, v)
		calls.Add(1)
	})
	assert.Equal(t, int32(2), calls.Load())
}

func TestConcurrentSettlementPicksOneWinner(t *testing.T) {
	r := New[int]()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if r.Resolve(i) {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
