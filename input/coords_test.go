// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapCoordinateDegenerateExtents(t *testing.T) {
	assert.Equal(t, 5, MapCoordinate(10.0, 0, 5, 100))
	assert.Equal(t, 5, MapCoordinate(10.0, 100, 5, 0))
	assert.Equal(t, 7, MapCoordinate(10.0, -3, 7, 100))
}

func TestMapCoordinateTruncates(t *testing.T) {
	assert.Equal(t, 110, MapCoordinate(50.0, 100, 10, 200))
	assert.Equal(t, 77, MapCoordinate(33.9, 100, 10, 200))
	assert.Equal(t, 10, MapCoordinate(0, 100, 10, 200))
}

func TestMapCoordinateMonotonic(t *testing.T) {
	cases := []struct {
		hostExtent, browserExtent int
	}{
		{100, 200},
		{800, 600},
		{1920, 37},
		{3, 1000},
	}
	for _, tc := range cases {
		prev := MapCoordinate(0, tc.hostExtent, 4, tc.browserExtent)
		assert.Equal(t, 4, prev)
		for x := 0.0; x <= float64(tc.hostExtent); x += 0.25 {
			got := MapCoordinate(x, tc.hostExtent, 4, tc.browserExtent)
			assert.GreaterOrEqual(t, got, prev, "host=%d browser=%d x=%v", tc.hostExtent, tc.browserExtent, x)
			prev = got
		}
	}
}

func TestMapPoint(t *testing.T) {
	x, y := MapPoint(400, 300, 800, 600, 1600, 1200)
	assert.Equal(t, 800, x)
	assert.Equal(t, 600, y)

	x, y = MapPoint(10, 10, 0, 0, 100, 100)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
}
