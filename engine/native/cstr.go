// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package native

import (
	"image"
	"unsafe"
)

// goString copies a NUL-terminated C string.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}

// decodeRects reads count dirty rectangles stored as x, y, width, height
// int32 quadruples.
func decodeRects(p uintptr, count int) []image.Rectangle {
	if p == 0 || count <= 0 {
		return nil
	}
	raw := unsafe.Slice((*int32)(unsafe.Pointer(p)), count*4)
	out := make([]image.Rectangle, 0, count)
	for i := 0; i < len(raw); i += 4 {
		x, y, w, h := int(raw[i]), int(raw[i+1]), int(raw[i+2]), int(raw[i+3])
		out = append(out, image.Rect(x, y, x+w, y+h))
	}
	return out
}
