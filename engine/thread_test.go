// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueueRunsInOrder(t *testing.T) {
	q := newTaskQueue("test", true, zerolog.Nop())
	defer q.stop()

	var got []int
	for i := range 100 {
		require.True(t, q.post(func() { got = append(got, i) }))
	}
	require.NoError(t, q.call(func() error { return nil }))

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestTaskQueueCallReturnsErrors(t *testing.T) {
	q := newTaskQueue("test", false, zerolog.Nop())
	defer q.stop()

	boom := errors.New("boom")
	assert.ErrorIs(t, q.call(func() error { return boom }), boom)

	err := q.call(func() error { panic("bad") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	q.post(func() { panic("ignored") })
	assert.NoError(t, q.call(func() error { return nil }))
}

func TestTaskQueueStop(t *testing.T) {
	q := newTaskQueue("test", false, zerolog.Nop())

	ran := 0
	for range 10 {
		q.post(func() { ran++ })
	}
	q.stop()
	q.stop()

	assert.Equal(t, 10, ran)
	assert.False(t, q.post(func() { ran++ }))
	assert.ErrorIs(t, q.call(func() error { return nil }), ErrRuntimeShutdown)
	assert.Equal(t, 10, ran)
}
