// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package surface

import (
	"errors"
	"fmt"
)

// ErrSurfaceDestroyed rejects screenshots still pending when a surface is
// destroyed.
var ErrSurfaceDestroyed = errors.New("surface destroyed")

// DuplicateSurfaceError is returned by Registry.Create when the ID already
// has a live surface.
type DuplicateSurfaceError struct {
	ID ID
}

func (e *DuplicateSurfaceError) Error() string {
	return fmt.Sprintf("surface %d already exists", e.ID)
}
