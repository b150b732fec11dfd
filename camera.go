package rsgview

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera looks straight down at the field. World X runs to the right of
// the screen and world Y runs up it.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is pixels per meter.
	Zoom float64
	// Rotation is the view rotation in radians (counter-clockwise).
	Rotation float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	followTarget Selectable
	followLerp   float64

	// BoundsEnabled clamps the camera position to Bounds.
	BoundsEnabled bool
	// Bounds is the world-space rectangle the camera center is kept in.
	Bounds Rect

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	scrollTween *scrollAnim
}

// Zoom limits, in pixels per meter.
const (
	minZoom = 2.0
	maxZoom = 2000.0
)

// newCamera creates a Camera with default values and the given viewport.
func newCamera(viewport Rect) *Camera {
	return &Camera{
		Zoom:     30,
		Viewport: viewport,
		dirty:    true,
	}
}

// Follow makes the camera track target. A lerp of 1.0 snaps immediately;
// lower values give smoother following.
func (c *Camera) Follow(target Selectable, lerp float64) {
	c.followTarget = target
	c.followLerp = lerp
}

// Unfollow stops tracking.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// Following returns the tracked target, or nil.
func (c *Camera) Following() Selectable {
	return c.followTarget
}

// ScrollTo animates the camera to the given world position over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is running.
func (c *Camera) Scrolling() bool {
	return c.scrollTween != nil
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// FitField centers the camera on the field and zooms so that a field of
// the given size, plus margin on every side, fills the viewport.
func (c *Camera) FitField(length, width, margin float64) {
	c.scrollTween = nil
	c.X, c.Y, c.Rotation = 0, 0, 0
	w, h := length+2*margin, width+2*margin
	if w > 0 && h > 0 && c.Viewport.Width > 0 && c.Viewport.Height > 0 {
		c.Zoom = math.Min(c.Viewport.Width/w, c.Viewport.Height/h)
	}
	c.SetBounds(Rect{X: -length/2 - margin, Y: -width/2 - margin, Width: w, Height: h})
	c.dirty = true
}

// ZoomAt multiplies the zoom by factor, keeping the world point under the
// screen position (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy, factor float64) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.Zoom = math.Max(minZoom, math.Min(maxZoom, c.Zoom*factor))
	c.dirty = true
	nx, ny := c.ScreenToWorld(sx, sy)
	c.X += wx - nx
	c.Y += wy - ny
	c.dirty = true
}

// Pan moves the view by a screen-space delta.
func (c *Camera) Pan(dx, dy float64) {
	wx0, wy0 := c.ScreenToWorld(0, 0)
	wx1, wy1 := c.ScreenToWorld(dx, dy)
	c.X -= wx1 - wx0
	c.Y -= wy1 - wy0
	c.dirty = true
}

// update advances follow, scroll, and bounds clamping. Called once per tick.
func (c *Camera) update(dt float32) {
	prevX, prevY := c.X, c.Y
	prevZoom, prevRot := c.Zoom, c.Rotation

	// Follow target, unless a scroll is bringing the camera there.
	if c.followTarget != nil && c.scrollTween == nil {
		p := c.followTarget.Position()
		c.X += (p.X - c.X) * c.followLerp
		c.Y += (p.Y - c.Y) * c.followLerp
	}

	// Scroll animation
	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}

	if c.X != prevX || c.Y != prevY || c.Zoom != prevZoom || c.Rotation != prevRot {
		c.dirty = true
	}
}

// clampToBounds keeps the camera center inside Bounds.
func (c *Camera) clampToBounds() {
	c.X = math.Max(c.Bounds.X, math.Min(c.X, c.Bounds.X+c.Bounds.Width))
	c.Y = math.Max(c.Bounds.Y, math.Min(c.Y, c.Bounds.Y+c.Bounds.Height))
}

// computeViewMatrix recomputes the cached view matrix if dirty.
//
// viewMatrix = Translate(cx, cy) * Scale(zoom, -zoom) * Rotate(-rotation) * Translate(-X, -Y)
// where cx, cy = viewport center. The negative Y scale puts world +Y at
// the top of the screen.
func (c *Camera) computeViewMatrix() [6]float64 {
	if !c.dirty {
		return c.viewMatrix
	}
	c.dirty = false

	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2

	cos := math.Cos(-c.Rotation)
	sin := math.Sin(-c.Rotation)
	z := c.Zoom

	tx := cx + z*(-cos*c.X+sin*c.Y)
	ty := cy + z*(sin*c.X+cos*c.Y)

	c.viewMatrix = [6]float64{z * cos, -z * sin, -z * sin, -z * cos, tx, ty}
	c.invViewMatrix = invertAffine(c.viewMatrix)
	return c.viewMatrix
}

// WorldToScreen converts a point on the field plane to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	c.computeViewMatrix()
	sx, sy = transformPoint(c.viewMatrix, wx, wy)
	return
}

// ScreenToWorld converts screen coordinates to a point on the field plane.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.computeViewMatrix()
	wx, wy = transformPoint(c.invViewMatrix, sx, sy)
	return
}

// Project maps a world point to the screen, dropping height.
func (c *Camera) Project(p Vec3) Vec2 {
	x, y := c.WorldToScreen(p.X, p.Y)
	return Vec2{x, y}
}

// VisibleBounds returns the axis-aligned bounding rect of the camera's visible
// area in world space.
func (c *Camera) VisibleBounds() Rect {
	c.computeViewMatrix()
	inv := c.invViewMatrix

	vx := c.Viewport.X
	vy := c.Viewport.Y
	vr := vx + c.Viewport.Width
	vb := vy + c.Viewport.Height

	// Transform the four viewport corners to world space.
	x0, y0 := transformPoint(inv, vx, vy)
	x1, y1 := transformPoint(inv, vr, vy)
	x2, y2 := transformPoint(inv, vr, vb)
	x3, y3 := transformPoint(inv, vx, vb)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// MarkDirty forces a recomputation of the view matrix.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// --- 2D affine helpers ---

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// invertAffine computes the inverse of a 2D affine matrix [a, b, c, d, tx, ty]
// where x' = a*x + c*y + tx and y' = b*x + d*y + ty.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}
