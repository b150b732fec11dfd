package rsgview

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween/ease"
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

const (
	defaultDragDeadZone = 4.0  // pixels
	pickRadius          = 15.0 // pixels
	wheelZoomStep       = 1.1
	followLerp          = 0.15
	centerScrollSeconds = 0.4
)

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	dragging bool
	button   MouseButton // button captured at press time
}

// processInput handles pointer, wheel and keyboard input for one tick.
// Queued synthetic pointer events take the place of the mouse while they
// drain.
func (v *Viewer) processInput() {
	if !v.processInjectedInput() {
		v.processMousePointer()
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		mx, my := ebiten.CursorPosition()
		v.camera.ZoomAt(float64(mx), float64(my), math.Pow(wheelZoomStep, dy))
	}
	for _, k := range inpututil.AppendJustPressedKeys(v.keyBuf[:0]) {
		v.HandleKey(k)
	}
}

// processMousePointer feeds the real mouse into the pointer state machine.
func (v *Viewer) processMousePointer() {
	mx, my := ebiten.CursorPosition()
	var pressed bool
	var button MouseButton
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		pressed, button = true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		pressed, button = true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		pressed, button = true, MouseButtonMiddle
	}
	v.processPointer(float64(mx), float64(my), pressed, button)
}

// processPointer runs the pointer state machine in screen coordinates. A
// left press released without dragging picks; any drag pans the view and
// leaves follow mode.
func (v *Viewer) processPointer(sx, sy float64, pressed bool, button MouseButton) {
	ps := &v.pointer
	switch {
	case pressed && !ps.down:
		*ps = pointerState{
			down: true, button: button,
			startX: sx, startY: sy,
			lastX: sx, lastY: sy,
		}
	case !pressed && ps.down:
		switch {
		case ps.dragging:
			v.camera.Pan(sx-ps.lastX, sy-ps.lastY)
		case ps.button == MouseButtonLeft:
			v.pickAt(sx, sy)
		}
		ps.down = false
		ps.dragging = false
	case pressed && ps.down:
		if sx == ps.lastX && sy == ps.lastY {
			return
		}
		if !ps.dragging && math.Hypot(sx-ps.startX, sy-ps.startY) > v.dragDeadZone {
			ps.dragging = true
			v.follow = false
			v.camera.Unfollow()
		}
		if ps.dragging {
			v.camera.Pan(sx-ps.lastX, sy-ps.lastY)
		}
		ps.lastX = sx
		ps.lastY = sy
	}
}

// pickAt selects the agent nearest to the screen point, then the ball,
// within the pick radius. A click on empty field clears the selection.
func (v *Viewer) pickAt(sx, sy float64) Selectable {
	var best Selectable
	bestDist := pickRadius
	for _, side := range []Side{SideLeft, SideRight} {
		for _, a := range v.world.Agents(side) {
			p := v.camera.Project(a.Position())
			if d := math.Hypot(p.X-sx, p.Y-sy); d <= bestDist {
				best, bestDist = a, d
			}
		}
	}
	if best == nil {
		if ball := v.world.Ball(); ball != nil {
			p := v.camera.Project(ball.Position())
			if math.Hypot(p.X-sx, p.Y-sy) <= pickRadius {
				best = ball
			}
		}
	}
	v.world.Select(best)
	v.syncFollow()
	if best != nil {
		v.logger.Debug("selected", "target", best.Label())
	}
	return best
}

// syncFollow points the camera at the selection while follow mode is on.
func (v *Viewer) syncFollow() {
	sel := v.world.Selected()
	if v.follow && sel != nil {
		if v.camera.Following() != sel {
			v.camera.Follow(sel, followLerp)
		}
		return
	}
	if v.camera.Following() != nil {
		v.camera.Unfollow()
	}
}

// HandleKey performs the action bound to k.
func (v *Viewer) HandleKey(k ebiten.Key) {
	switch k {
	case ebiten.KeyF:
		v.follow = !v.follow
		v.syncFollow()
	case ebiten.KeyC:
		if sel := v.world.Selected(); sel != nil {
			p := sel.Position()
			v.camera.Unfollow()
			v.camera.ScrollTo(p.X, p.Y, centerScrollSeconds, ease.OutQuad)
		}
	case ebiten.KeyH:
		v.showHUD = !v.showHUD
	case ebiten.KeyL:
		v.showSets = !v.showSets
	case ebiten.KeyR:
		v.fitField()
	case ebiten.KeyV:
		v.camera.Rotation = math.Mod(v.camera.Rotation+math.Pi, 2*math.Pi)
		v.camera.MarkDirty()
	case ebiten.KeyEscape:
		v.world.Select(nil)
		v.syncFollow()
	case ebiten.KeyD:
		v.debug = !v.debug
	case ebiten.KeyF12:
		v.Screenshot("manual")
	default:
		if k >= ebiten.KeyDigit1 && k <= ebiten.KeyDigit9 {
			v.toggleSet(int(k - ebiten.KeyDigit1))
		}
	}
}

// toggleSet flips the visibility of the i-th drawing set in name order.
func (v *Viewer) toggleSet(i int) {
	names := v.drawings.SetNames()
	if i < 0 || i >= len(names) {
		return
	}
	visible := v.drawings.ToggleVisible(names[i])
	v.logger.Debug("drawing set toggled", "set", names[i], "visible", visible)
}
