// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package graphene

import (
	"github.com/YindSoft/graphene-ebitengine/input"
	"github.com/hajimehoshi/ebiten/v2"
)

// Windows virtual-key codes, which the engine uses on every platform.
var virtualKeys = map[ebiten.Key]int32{
	// Editing
	ebiten.KeyBackspace:   0x08,
	ebiten.KeyTab:         0x09,
	ebiten.KeyEnter:       0x0D,
	ebiten.KeyNumpadEnter: 0x0D,
	ebiten.KeyEscape:      0x1B,
	ebiten.KeySpace:       0x20,
	ebiten.KeyDelete:      0x2E,
	ebiten.KeyInsert:      0x2D,

	// Navigation
	ebiten.KeyHome:       0x24,
	ebiten.KeyEnd:        0x23,
	ebiten.KeyPageUp:     0x21,
	ebiten.KeyPageDown:   0x22,
	ebiten.KeyArrowLeft:  0x25,
	ebiten.KeyArrowUp:    0x26,
	ebiten.KeyArrowRight: 0x27,
	ebiten.KeyArrowDown:  0x28,

	// Modifiers
	ebiten.KeyShiftLeft:    0x10,
	ebiten.KeyShiftRight:   0x10,
	ebiten.KeyControlLeft:  0x11,
	ebiten.KeyControlRight: 0x11,
	ebiten.KeyAltLeft:      0x12,
	ebiten.KeyAltRight:     0x12,
	ebiten.KeyMetaLeft:     0x5B,
	ebiten.KeyMetaRight:    0x5B,

	// Locks
	ebiten.KeyCapsLock:   0x14,
	ebiten.KeyNumLock:    0x90,
	ebiten.KeyScrollLock: 0x91,

	// System
	ebiten.KeyPause:       0x13,
	ebiten.KeyPrintScreen: 0x2C,
	ebiten.KeyContextMenu: 0x5D,

	// Function keys
	ebiten.KeyF1:  0x70,
	ebiten.KeyF2:  0x71,
	ebiten.KeyF3:  0x72,
	ebiten.KeyF4:  0x73,
	ebiten.KeyF5:  0x74,
	ebiten.KeyF6:  0x75,
	ebiten.KeyF7:  0x76,
	ebiten.KeyF8:  0x77,
	ebiten.KeyF9:  0x78,
	ebiten.KeyF10: 0x79,
	ebiten.KeyF11: 0x7A,
	ebiten.KeyF12: 0x7B,

	// Numpad operators
	ebiten.KeyNumpadMultiply: 0x6A,
	ebiten.KeyNumpadAdd:      0x6B,
	ebiten.KeyNumpadSubtract: 0x6D,
	ebiten.KeyNumpadDecimal:  0x6E,
	ebiten.KeyNumpadDivide:   0x6F,
	ebiten.KeyNumpadEqual:    0xBB,

	// OEM punctuation
	ebiten.KeySemicolon:     0xBA,
	ebiten.KeyEqual:         0xBB,
	ebiten.KeyComma:         0xBC,
	ebiten.KeyMinus:         0xBD,
	ebiten.KeyPeriod:        0xBE,
	ebiten.KeySlash:         0xBF,
	ebiten.KeyBackquote:     0xC0,
	ebiten.KeyBracketLeft:   0xDB,
	ebiten.KeyBackslash:     0xDC,
	ebiten.KeyIntlBackslash: 0xDC,
	ebiten.KeyBracketRight:  0xDD,
	ebiten.KeyQuote:         0xDE,
}

func init() {
	for k := ebiten.KeyDigit0; k <= ebiten.KeyDigit9; k++ {
		virtualKeys[k] = 0x30 + int32(k-ebiten.KeyDigit0)
	}
	for k := ebiten.KeyA; k <= ebiten.KeyZ; k++ {
		virtualKeys[k] = 0x41 + int32(k-ebiten.KeyA)
	}
	for k := ebiten.KeyNumpad0; k <= ebiten.KeyNumpad9; k++ {
		virtualKeys[k] = 0x60 + int32(k-ebiten.KeyNumpad0)
	}
}

// VirtualKey returns the engine key code for key, or 0 if it has none.
func VirtualKey(key ebiten.Key) int32 {
	return virtualKeys[key]
}

// currentModifiers reads the modifier keys held right now.
func currentModifiers() input.Modifiers {
	var mods input.Modifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= input.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= input.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= input.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= input.ModMeta
	}
	return mods
}
