// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package surface

import (
	"context"
	"sync"

	"github.com/YindSoft/graphene-ebitengine/internal/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Registry creates, tracks and destroys surfaces. It is the only owner of
// Surface values: nothing else creates or destroys them.
type Registry struct {
	alloc   TextureAllocator
	resizer Resizer
	logger  zerolog.Logger

	mu       sync.RWMutex
	surfaces map[ID]*Surface
	order    []ID
	hostW    int
	hostH    int
}

// NewRegistry creates an empty registry. alloc creates textures for new
// frames and resizer forwards view resizes to the engine.
func NewRegistry(ctx context.Context, alloc TextureAllocator, resizer Resizer) *Registry {
	return &Registry{
		alloc:    alloc,
		resizer:  resizer,
		logger:   logging.Component(ctx, "surface-registry"),
		surfaces: make(map[ID]*Surface),
	}
}

// SetHostExtent records the host size used to resolve relative size hints of
// surfaces created later. ResizeAll updates it as well.
func (r *Registry) SetHostExtent(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hostW, r.hostH = width, height
}

// Create registers a live surface for id. It fails with a
// *DuplicateSurfaceError if id already has one.
func (r *Registry) Create(id ID, hints SizeHints) (*Surface, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.surfaces[id]; ok {
		return nil, &DuplicateSurfaceError{ID: id}
	}
	w, h := hints.Resolve(r.hostW, r.hostH)
	s := newSurface(id, hints, w, h, r.alloc, r.logger)
	r.surfaces[id] = s
	r.order = append(r.order, id)

	r.logger.Debug().Int32("surface", int32(id)).Int("width", w).Int("height", h).Msg("surface created")
	return s, nil
}

// Get returns the live surface for id.
func (r *Registry) Get(id ID) (*Surface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[id]
	return s, ok
}

// Len returns the number of live surfaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.surfaces)
}

// Each calls fn for every live surface in creation order. fn runs on a
// snapshot, so it may create or destroy surfaces.
func (r *Registry) Each(fn func(*Surface)) {
	for _, s := range r.snapshot() {
		fn(s)
	}
}

func (r *Registry) snapshot() []*Surface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Surface, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.surfaces[id])
	}
	return out
}

// Destroy destroys the surface for id and forgets it. Unknown or already
// destroyed ids are a no-op; it reports whether a surface was destroyed.
func (r *Registry) Destroy(id ID) bool {
	r.mu.Lock()
	s, ok := r.surfaces[id]
	if ok {
		delete(r.surfaces, id)
		for i, oid := range r.order {
			if oid == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if !ok {
		r.logger.Debug().Int32("surface", int32(id)).Msg("destroy of unknown surface ignored")
		return false
	}
	s.destroy()
	r.logger.Debug().Int32("surface", int32(id)).Msg("surface destroyed")
	return true
}

// DestroyAll destroys every surface in creation order and returns their ids.
func (r *Registry) DestroyAll() []ID {
	var ids []ID
	for _, s := range r.snapshot() {
		if r.Destroy(s.ID()) {
			ids = append(ids, s.ID())
		}
	}
	return ids
}

// ResizeAll notifies every live surface that the host is now
// hostW x hostH. Each surface resolves its size hints against the new extent.
// A surface the engine refuses to resize is logged and keeps its previous
// size.
func (r *Registry) ResizeAll(hostW, hostH int) {
	r.SetHostExtent(hostW, hostH)
	r.Relayout(hostW, hostH)
}

// Relayout resolves every live surface's hints against hostW x hostH and
// resizes it, without recording the extent. It returns once every resize has
// been answered.
func (r *Registry) Relayout(hostW, hostH int) {
	var g errgroup.Group
	for _, s := range r.snapshot() {
		g.Go(func() error {
			w, h := s.Hints().Resolve(hostW, hostH)
			if err := s.Resize(w, h, r.resizer); err != nil {
				r.logger.Warn().
					Err(err).
					Int32("surface", int32(s.ID())).
					Msg("resize failed, keeping previous size")
			}
			return nil
		})
	}
	_ = g.Wait()
}
