// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package surface

import "image"

// ID identifies a widget and the browser painting into it.
type ID int32

// State is the lifecycle state of a Surface.
type State int32

const (
	// Live surfaces accept paints and resizes.
	Live State = iota
	// Destroyed is terminal. Every call on a destroyed surface is a no-op.
	Destroyed
)

func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Texture is a GPU-side image owned by exactly one surface.
type Texture interface {
	// Size returns the texture size in pixels.
	Size() (width, height int)
	// WritePixels replaces region with pix, which holds tightly packed RGBA
	// rows for exactly that region.
	WritePixels(region image.Rectangle, pix []byte)
	// Release frees the texture. It is called exactly once.
	Release()
}

// TextureAllocator creates textures for the host's graphics backend.
type TextureAllocator interface {
	NewTexture(width, height int) Texture
}

// TextureAllocatorFunc adapts a function to TextureAllocator.
type TextureAllocatorFunc func(width, height int) Texture

// NewTexture calls f(width, height).
func (f TextureAllocatorFunc) NewTexture(width, height int) Texture {
	return f(width, height)
}

// Blitter is the host's frame renderer. It draws the src rectangle of tex,
// a texture of size texW x texH, into the destination rectangle (x, y, w, h).
type Blitter interface {
	BlitTextureRegion(tex Texture, x, y, w, h, srcX, srcY, srcW, srcH, texW, texH int)
}

// Resizer forwards a view resize to the engine.
type Resizer interface {
	ResizeBrowser(id ID, width, height int) error
}

// ResizerFunc adapts a function to Resizer.
type ResizerFunc func(id ID, width, height int) error

// ResizeBrowser calls f(id, width, height).
func (f ResizerFunc) ResizeBrowser(id ID, width, height int) error {
	return f(id, width, height)
}

// SizeHints describe how large a surface's view should be. A positive
// relative value sizes that axis as a fraction of the host extent and takes
// precedence over the fixed size once the host extent is known.
type SizeHints struct {
	Width, Height                 int
	RelativeWidth, RelativeHeight float64
}

// Resolve returns the view size for a host of hostW x hostH. Both axes are at
// least one pixel.
func (h SizeHints) Resolve(hostW, hostH int) (int, int) {
	w, ht := h.Width, h.Height
	if h.RelativeWidth > 0 && hostW > 0 {
		w = int(float64(hostW) * h.RelativeWidth)
	}
	if h.RelativeHeight > 0 && hostH > 0 {
		ht = int(float64(hostH) * h.RelativeHeight)
	}
	return max(w, 1), max(ht, 1)
}
