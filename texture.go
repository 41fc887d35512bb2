// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package graphene

import (
	"image"

	"github.com/YindSoft/graphene-ebitengine/surface"
	"github.com/hajimehoshi/ebiten/v2"
)

// texture is a surface.Texture backed by an Ebiten image.
type texture struct {
	img *ebiten.Image
}

func (t *texture) Size() (int, int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// WritePixels uploads RGBA pixels covering region.
func (t *texture) WritePixels(region image.Rectangle, pix []byte) {
	if region == t.img.Bounds() {
		t.img.WritePixels(pix)
		return
	}
	t.img.SubImage(region).(*ebiten.Image).WritePixels(pix)
}

func (t *texture) Release() {
	t.img.Deallocate()
}

// TextureAllocator creates Ebiten images for surfaces. Images are only
// created and written on the game goroutine, from Surface.Flush.
func TextureAllocator() surface.TextureAllocator {
	return surface.TextureAllocatorFunc(func(width, height int) surface.Texture {
		return &texture{img: ebiten.NewImage(width, height)}
	})
}

// Blitter draws surface textures onto an Ebiten image.
type Blitter struct {
	Target *ebiten.Image
	// ColorScale is applied to every draw, e.g. to fade a widget.
	ColorScale ebiten.ColorScale
	Filter     ebiten.Filter
}

var _ surface.Blitter = (*Blitter)(nil)

// BlitTextureRegion draws the source rectangle of tex scaled into the host
// rectangle (x, y, w, h).
func (b *Blitter) BlitTextureRegion(tex surface.Texture, x, y, w, h, srcX, srcY, srcW, srcH, _, _ int) {
	t, ok := tex.(*texture)
	if !ok || b.Target == nil || srcW <= 0 || srcH <= 0 || w <= 0 || h <= 0 {
		return
	}
	src := t.img.SubImage(image.Rect(srcX, srcY, srcX+srcW, srcY+srcH)).(*ebiten.Image)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w)/float64(srcW), float64(h)/float64(srcH))
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale = b.ColorScale
	op.Filter = b.Filter
	b.Target.DrawImage(src, op)
}

// Image returns the Ebiten image behind a texture created by
// TextureAllocator.
func Image(tex surface.Texture) (*ebiten.Image, bool) {
	t, ok := tex.(*texture)
	if !ok {
		return nil, false
	}
	return t.img, true
}
