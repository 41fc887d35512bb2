// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import "errors"

var (
	// ErrEngineNotInitialized is returned when a widget is requested before
	// Runtime.Initialize succeeded.
	ErrEngineNotInitialized = errors.New("engine not initialized")
	// ErrRuntimeShutdown is returned once the runtime has been shut down.
	ErrRuntimeShutdown = errors.New("runtime shut down")
	// ErrWidgetClosed is returned by operations on a closed widget.
	ErrWidgetClosed = errors.New("widget closed")
)
