// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package input maps host-space input into browser pixel space and defines the
// event codes forwarded to the engine.
package input

// MapCoordinate maps one axis of a host-space coordinate into browser space.
//
// A degenerate host or browser extent returns browserOrigin unchanged. Otherwise
// the scaled offset is truncated toward zero, so the mapping is monotonic and
// biased toward the origin.
func MapCoordinate(hostCoordinate float64, hostExtent, browserOrigin, browserExtent int) int {
	if hostExtent <= 0 || browserExtent <= 0 {
		return browserOrigin
	}
	return browserOrigin + int(hostCoordinate*float64(browserExtent)/float64(hostExtent))
}

// MapPoint maps a host-space point inside a host rectangle of size hostW x hostH
// onto a browser view of size browserW x browserH.
func MapPoint(hostX, hostY float64, hostW, hostH, browserW, browserH int) (int, int) {
	return MapCoordinate(hostX, hostW, 0, browserW), MapCoordinate(hostY, hostH, 0, browserH)
}
