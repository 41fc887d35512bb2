// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package graphene

import (
	"image"

	"github.com/YindSoft/graphene-ebitengine/engine"
	"github.com/YindSoft/graphene-ebitengine/input"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// wheelScale converts Ebiten wheel ticks to engine scroll pixels.
const wheelScale = 100

// View places a browser widget on screen. Mouse and scroll input are
// forwarded while the cursor is inside Bounds; keyboard input goes to the
// focused view. Clicking a view focuses it.
type View struct {
	widget *engine.Widget
	bounds image.Rectangle

	// ColorScale is applied when drawing, e.g. for translucent overlays.
	ColorScale ebiten.ColorScale

	lastX, lastY int
	hovering     bool
	buttons      map[ebiten.MouseButton]bool
}

func newView(w *engine.Widget, bounds image.Rectangle) *View {
	v := &View{
		widget:  w,
		bounds:  bounds,
		buttons: make(map[ebiten.MouseButton]bool),
	}
	v.ColorScale.Reset()
	return v
}

// Widget returns the browser behind the view.
func (v *View) Widget() *engine.Widget { return v.widget }

// Bounds returns the screen rectangle the view is drawn into.
func (v *View) Bounds() image.Rectangle { return v.bounds }

// SetBounds moves the view to the screen rectangle (x, y, w, h). The browser
// keeps its own size; the texture is scaled and input is mapped accordingly.
func (v *View) SetBounds(x, y, w, h int) {
	v.bounds = image.Rect(x, y, x+w, y+h)
}

// Focus gives the view keyboard focus.
func (v *View) Focus() { v.widget.Focus() }

// toBrowser maps a screen position to browser pixels.
func (v *View) toBrowser(sx, sy int) (int, int) {
	bw, bh := v.widget.Surface().ViewSize()
	return input.MapPoint(float64(sx-v.bounds.Min.X), float64(sy-v.bounds.Min.Y), v.bounds.Dx(), v.bounds.Dy(), bw, bh)
}

var forwardedButtons = []struct {
	ebiten ebiten.MouseButton
	engine input.MouseButton
}{
	{ebiten.MouseButtonLeft, input.MouseButtonLeft},
	{ebiten.MouseButtonMiddle, input.MouseButtonMiddle},
	{ebiten.MouseButtonRight, input.MouseButtonRight},
}

// update forwards this frame's input. It runs on the game goroutine.
func (v *View) update() {
	if v.widget.Closed() {
		return
	}
	mx, my := ebiten.CursorPosition()
	inside := image.Pt(mx, my).In(v.bounds)

	if inside {
		x, y := v.toBrowser(mx, my)
		if !v.hovering || x != v.lastX || y != v.lastY {
			_ = v.widget.SendMouseMove(x, y)
			v.lastX, v.lastY = x, y
		}
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			v.widget.Focus()
		}
		for _, b := range forwardedButtons {
			pressed := ebiten.IsMouseButtonPressed(b.ebiten)
			if pressed != v.buttons[b.ebiten] {
				v.buttons[b.ebiten] = pressed
				_ = v.widget.SendMouseButton(x, y, b.engine, pressed)
			}
		}
		if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
			_ = v.widget.SendMouseWheel(x, y, int(dx*wheelScale), int(dy*wheelScale))
		}
	} else {
		// Release buttons dragged out of the view so the page does not see
		// them stuck down.
		for _, b := range forwardedButtons {
			if v.buttons[b.ebiten] && !ebiten.IsMouseButtonPressed(b.ebiten) {
				v.buttons[b.ebiten] = false
				_ = v.widget.SendMouseButton(v.lastX, v.lastY, b.engine, false)
			}
		}
	}
	v.hovering = inside

	if v.widget.Focused() {
		v.forwardKeyboard()
	}
}

func (v *View) forwardKeyboard() {
	mods := currentModifiers()
	// RawKeyDown triggers accelerators such as Ctrl+C/V/X/A.
	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		if vk := VirtualKey(key); vk != 0 {
			_ = v.widget.SendKey(input.KeyEvent{Kind: input.KeyRawDown, VirtualKey: vk, Modifiers: mods})
		}
	}
	// Text comes from the OS input system, which handles layouts and IME.
	for _, r := range ebiten.AppendInputChars(nil) {
		_ = v.widget.SendKey(input.KeyEvent{Kind: input.KeyChar, Text: string(r), Modifiers: mods})
	}
	for _, key := range inpututil.AppendJustReleasedKeys(nil) {
		if vk := VirtualKey(key); vk != 0 {
			_ = v.widget.SendKey(input.KeyEvent{Kind: input.KeyUp, VirtualKey: vk, Modifiers: mods})
		}
	}
}

// Draw uploads pending paints and draws the view into its bounds on screen.
func (v *View) Draw(screen *ebiten.Image) {
	s := v.widget.Surface()
	s.Flush()
	b := &Blitter{Target: screen, ColorScale: v.ColorScale, Filter: ebiten.FilterLinear}
	s.Render(b, v.bounds.Min.X, v.bounds.Min.Y, v.bounds.Dx(), v.bounds.Dy())
}
