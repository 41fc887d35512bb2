// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package surface

import "image"

// patch is an RGBA copy of one region of an engine frame.
type patch struct {
	rect image.Rectangle
	pix  []byte
}

// convertRegion copies rect out of a BGRA buffer with the given row stride
// and swizzles it to tightly packed RGBA.
func convertRegion(src []byte, stride int, rect image.Rectangle) patch {
	w, h := rect.Dx(), rect.Dy()
	dst := make([]byte, w*h*4)
	di := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		si := y*stride + rect.Min.X*4
		for x := 0; x < w; x++ {
			dst[di+0] = src[si+2] // BGRA -> RGBA
			dst[di+1] = src[si+1]
			dst[di+2] = src[si+0]
			dst[di+3] = src[si+3]
			di += 4
			si += 4
		}
	}
	return patch{rect: rect, pix: dst}
}

// buildPatches converts the dirty regions of a width x height BGRA frame.
// Regions are clipped to the frame and empty ones are skipped. When whole is
// set the dirty list is ignored and the full frame is copied.
func buildPatches(buf []byte, width, height int, dirty []image.Rectangle, whole bool) []patch {
	bounds := image.Rect(0, 0, width, height)
	stride := width * 4
	if whole {
		return []patch{convertRegion(buf, stride, bounds)}
	}
	patches := make([]patch, 0, len(dirty))
	for _, r := range dirty {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		patches = append(patches, convertRegion(buf, stride, r))
	}
	return patches
}

// blit copies a patch into an RGBA shadow image.
func blit(dst *image.RGBA, p patch) {
	w := p.rect.Dx() * 4
	for row := 0; row < p.rect.Dy(); row++ {
		off := dst.PixOffset(p.rect.Min.X, p.rect.Min.Y+row)
		copy(dst.Pix[off:off+w], p.pix[row*w:(row+1)*w])
	}
}
