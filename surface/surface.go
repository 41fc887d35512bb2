// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package surface holds the pixel state of embedded browser views and the
// registry that owns them.
//
// Paint callbacks arrive on engine threads. They convert the dirty regions of
// each frame into RGBA patches and queue them; the host thread swaps the queue
// out in Flush and uploads it into the surface's textures. The surface mutex is
// only held for that swap, never for an upload.
package surface

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/YindSoft/graphene-ebitengine/pending"
	"github.com/rs/zerolog"
)

const (
	layerBase = iota
	layerPopup
	layerCount
)

type layerQueue struct {
	realloc       bool
	width, height int
	patches       []patch
}

func (q *layerQueue) empty() bool {
	return !q.realloc && len(q.patches) == 0
}

// layer is the host-side half of a layer: its texture and a CPU copy of the
// last uploaded frame.
type layer struct {
	tex    Texture
	shadow *image.RGBA
}

// Surface is the pixel state of one browser view.
type Surface struct {
	id     ID
	hints  SizeHints
	alloc  TextureAllocator
	logger zerolog.Logger

	// paintMu serializes paint and popup callbacks so each paint sees the
	// previous frame's size as its baseline.
	paintMu sync.Mutex

	mu        sync.Mutex
	state     State
	viewW     int
	viewH     int
	frameSize [layerCount]image.Point
	popup     *image.Rectangle
	queue     [layerCount]layerQueue
	waiters   []*pending.Result[*image.RGBA]

	// texMu guards the textures. Flush, Render and Destroy take it; paint
	// callbacks never do.
	texMu    sync.Mutex
	layers   [layerCount]layer
	released bool
}

func newSurface(id ID, hints SizeHints, width, height int, alloc TextureAllocator, logger zerolog.Logger) *Surface {
	return &Surface{
		id:     id,
		hints:  hints,
		alloc:  alloc,
		viewW:  width,
		viewH:  height,
		logger: logger.With().Int32("surface", int32(id)).Logger(),
	}
}

// ID returns the widget key of the surface.
func (s *Surface) ID() ID { return s.id }

// Hints returns the size hints the surface was created with.
func (s *Surface) Hints() SizeHints { return s.hints }

// State returns the lifecycle state.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ViewSize returns the size the browser view was last successfully sized to.
func (s *Surface) ViewSize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewW, s.viewH
}

// FrameSize returns the size of the last base-layer frame painted by the engine.
func (s *Surface) FrameSize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameSize[layerBase].X, s.frameSize[layerBase].Y
}

// PopupRect returns the popup rectangle, or nil when no popup is open.
func (s *Surface) PopupRect() *image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popupLocked()
}

func (s *Surface) popupLocked() *image.Rectangle {
	if s.popup == nil {
		return nil
	}
	r := *s.popup
	return &r
}

// OnPaint queues a frame from the engine. buf holds BGRA pixels of a
// width x height frame with a stride of width*4. A full repaint, or a frame
// whose size differs from the previous one, replaces everything queued for
// that layer and marks the whole frame dirty.
func (s *Surface) OnPaint(isPopup bool, dirty []image.Rectangle, buf []byte, width, height int, full bool) {
	s.paintMu.Lock()
	defer s.paintMu.Unlock()

	l := layerBase
	if isPopup {
		l = layerPopup
	}
	if width <= 0 || height <= 0 || len(buf) < width*height*4 {
		s.logger.Warn().
			Int("width", width).
			Int("height", height).
			Int("buffer_len", len(buf)).
			Bool("popup", isPopup).
			Msg("ignoring paint with invalid dimensions")
		return
	}

	s.mu.Lock()
	if s.state == Destroyed {
		s.mu.Unlock()
		return
	}
	size := image.Pt(width, height)
	realloc := full || s.frameSize[l] != size
	s.mu.Unlock()

	patches := buildPatches(buf, width, height, dirty, realloc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Destroyed {
		return
	}
	s.frameSize[l] = size
	q := &s.queue[l]
	if realloc {
		*q = layerQueue{realloc: true, width: width, height: height, patches: patches}
		return
	}
	q.patches = append(q.patches, patches...)
}

// OnPopupSize records where the popup overlay sits in view coordinates. A
// nil rect means the popup closed.
func (s *Surface) OnPopupSize(rect *image.Rectangle) {
	s.paintMu.Lock()
	defer s.paintMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Destroyed {
		return
	}
	if rect == nil || rect.Empty() {
		// The cleared queue may have held the realloc.
		s.popup = nil
		s.queue[layerPopup] = layerQueue{}
		s.frameSize[layerPopup] = image.Point{}
		return
	}
	r := rect.Canon()
	s.popup = &r
}

// OnPopupClosed stops compositing the popup overlay.
func (s *Surface) OnPopupClosed() {
	s.OnPopupSize(nil)
}

// Flush uploads queued patches into the textures. It runs on the host thread,
// once per frame before Render. Pending screenshots are resolved once a base
// frame exists.
func (s *Surface) Flush() {
	s.mu.Lock()
	if s.state == Destroyed {
		s.mu.Unlock()
		return
	}
	queues := s.queue
	s.queue = [layerCount]layerQueue{}
	s.mu.Unlock()

	s.texMu.Lock()
	if s.released {
		s.texMu.Unlock()
		return
	}
	for l := range queues {
		if !queues[l].empty() {
			s.apply(l, &queues[l])
		}
	}

	var (
		waiters []*pending.Result[*image.RGBA]
		shot    *image.RGBA
	)
	if s.layers[layerBase].shadow != nil {
		s.mu.Lock()
		waiters = s.waiters
		s.waiters = nil
		popup := s.popupLocked()
		s.mu.Unlock()
		if len(waiters) > 0 {
			shot = s.composite(popup)
		}
	}
	s.texMu.Unlock()

	for _, w := range waiters {
		w.Resolve(shot)
	}
}

// apply must be called with texMu held.
func (s *Surface) apply(l int, q *layerQueue) {
	ly := &s.layers[l]
	if q.realloc {
		if ly.tex != nil {
			if w, h := ly.tex.Size(); w != q.width || h != q.height {
				ly.tex.Release()
				ly.tex = nil
			}
		}
		if ly.tex == nil {
			ly.tex = s.alloc.NewTexture(q.width, q.height)
		}
		ly.shadow = image.NewRGBA(image.Rect(0, 0, q.width, q.height))
	}
	if ly.tex == nil || ly.shadow == nil {
		return
	}
	for _, p := range q.patches {
		if !p.rect.In(ly.shadow.Rect) {
			continue
		}
		ly.tex.WritePixels(p.rect, p.pix)
		blit(ly.shadow, p)
	}
}

// composite copies the base shadow and draws the popup shadow over it. It
// must be called with texMu held.
func (s *Surface) composite(popup *image.Rectangle) *image.RGBA {
	base := s.layers[layerBase].shadow
	out := image.NewRGBA(base.Rect)
	copy(out.Pix, base.Pix)
	if ps := s.layers[layerPopup].shadow; popup != nil && ps != nil {
		dst := image.Rectangle{Min: popup.Min, Max: popup.Min.Add(ps.Rect.Size())}
		draw.Draw(out, dst, ps, image.Point{}, draw.Over)
	}
	return out
}

// CreateScreenshot returns the current composited frame. If no frame has
// been flushed yet the result resolves on the first Flush that has one, or is
// rejected with ErrSurfaceDestroyed if the surface is destroyed first.
func (s *Surface) CreateScreenshot() *pending.Result[*image.RGBA] {
	s.texMu.Lock()
	defer s.texMu.Unlock()

	s.mu.Lock()
	if s.state == Destroyed {
		s.mu.Unlock()
		return pending.Rejected[*image.RGBA](ErrSurfaceDestroyed)
	}
	if s.layers[layerBase].shadow == nil {
		r := pending.New[*image.RGBA]()
		s.waiters = append(s.waiters, r)
		s.mu.Unlock()
		return r
	}
	popup := s.popupLocked()
	s.mu.Unlock()
	return pending.Resolved(s.composite(popup))
}

// Render draws the surface into the host rectangle (x, y, w, h). The popup
// overlay is scaled with the base layer. A destroyed surface draws nothing.
func (s *Surface) Render(b Blitter, x, y, w, h int) {
	s.mu.Lock()
	if s.state == Destroyed {
		s.mu.Unlock()
		return
	}
	popup := s.popupLocked()
	s.mu.Unlock()

	s.texMu.Lock()
	defer s.texMu.Unlock()
	if s.released {
		return
	}
	base := s.layers[layerBase].tex
	if base == nil {
		return
	}
	tw, th := base.Size()
	b.BlitTextureRegion(base, x, y, w, h, 0, 0, tw, th, tw, th)

	pt := s.layers[layerPopup].tex
	if popup == nil || pt == nil || tw <= 0 || th <= 0 {
		return
	}
	pw, ph := pt.Size()
	srcW, srcH := min(pw, popup.Dx()), min(ph, popup.Dy())
	b.BlitTextureRegion(pt,
		x+popup.Min.X*w/tw, y+popup.Min.Y*h/th,
		srcW*w/tw, srcH*h/th,
		0, 0, srcW, srcH, pw, ph)
}

// Resize asks the engine to resize the view. On failure the previous view
// size is kept and the error is returned. Resizing a destroyed surface is a
// no-op.
func (s *Surface) Resize(width, height int, r Resizer) error {
	s.mu.Lock()
	if s.state == Destroyed {
		s.mu.Unlock()
		return nil
	}
	same := s.viewW == width && s.viewH == height
	s.mu.Unlock()
	if same {
		return nil
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize surface %d: invalid size %dx%d", s.id, width, height)
	}
	if err := r.ResizeBrowser(s.id, width, height); err != nil {
		return fmt.Errorf("resize surface %d to %dx%d: %w", s.id, width, height, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Live {
		s.viewW, s.viewH = width, height
	}
	return nil
}

// destroy moves the surface to Destroyed, releases its textures and rejects
// pending screenshots. Only the first call does anything; it reports whether
// it was that call.
func (s *Surface) destroy() bool {
	s.mu.Lock()
	if s.state == Destroyed {
		s.mu.Unlock()
		return false
	}
	s.state = Destroyed
	s.queue = [layerCount]layerQueue{}
	s.popup = nil
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	s.texMu.Lock()
	for l := range s.layers {
		if s.layers[l].tex != nil {
			s.layers[l].tex.Release()
		}
		s.layers[l] = layer{}
	}
	s.released = true
	s.texMu.Unlock()

	for _, w := range waiters {
		w.Reject(ErrSurfaceDestroyed)
	}
	return true
}
