// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package input

// MouseButton identifies a mouse button as the engine numbers them.
type MouseButton int32

const (
	MouseButtonNone   MouseButton = 0
	MouseButtonLeft   MouseButton = 1
	MouseButtonMiddle MouseButton = 2
	MouseButtonRight  MouseButton = 3
)

// KeyEventKind is the kind of keyboard event forwarded to the engine.
type KeyEventKind int32

const (
	// KeyRawDown triggers accelerators such as Ctrl+C.
	KeyRawDown KeyEventKind = 0
	KeyDown    KeyEventKind = 1
	KeyUp      KeyEventKind = 2
	// KeyChar carries text from the OS input system.
	KeyChar KeyEventKind = 3
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint32

const (
	ModAlt   Modifiers = 1
	ModCtrl  Modifiers = 2
	ModMeta  Modifiers = 4
	ModShift Modifiers = 8
)

// KeyEvent is a keyboard event in engine terms.
type KeyEvent struct {
	Kind       KeyEventKind
	VirtualKey int32
	Modifiers  Modifiers
	Text       string
}
