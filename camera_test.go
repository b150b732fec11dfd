package rsgview

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

type fixedTarget Vec3

func (f fixedTarget) Position() Vec3 { return Vec3(f) }
func (f fixedTarget) Label() string { return "fixed" }

func TestCameraDefaults(t *testing.T) {
	cam := newCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	if cam.Zoom != 30 {
		t.Errorf("Zoom = %f, want 30", cam.Zoom)
	}
	if cam.Viewport.Width != 800 || cam.Viewport.Height != 600 {
		t.Errorf("Viewport = %v, want 800x600", cam.Viewport)
	}
	sx, sy := cam.WorldToScreen(0, 0)
	if !approxEqual(sx, 400, epsilon) || !approxEqual(sy, 300, epsilon) {
		t.Errorf("WorldToScreen(0,0) = (%f,%f), want (400,300)", sx, sy)
	}
}

func TestCameraYPointsUp(t *testing.T) {
	cam := newCamera(Rect{Width: 800, Height: 600})
	sx, sy := cam.WorldToScreen(1, 1)
	if !approxEqual(sx, 430, epsilon) || !approxEqual(sy, 270, epsilon) {
		t.Errorf("WorldToScreen(1,1) = (%f,%f), want (430,270)", sx, sy)
	}
	p := cam.Project(Vec3{1, 1, 5})
	if !approxEqual(p.X, sx, epsilon) || !approxEqual(p.Y, sy, epsilon) {
		t.Errorf("Project ignores height: got %v", p)
	}
}

func TestCameraTranslation(t *testing.T) {
	cam := newCamera(Rect{Width: 800, Height: 600})
	cam.X = 10
	cam.Y = 5
	cam.MarkDirty()
	sx, sy := cam.WorldToScreen(10, 5)
	if !approxEqual(sx, 400, epsilon) || !approxEqual(sy, 300, epsilon) {
		t.Errorf("WorldToScreen(10,5) with cam at (10,5) = (%f,%f), want (400,300)", sx, sy)
	}
}

func TestCameraRotation(t *testing.T) {
	cam := newCamera(Rect{Width: 800, Height: 600})
	cam.Rotation = math.Pi / 2
	cam.MarkDirty()
	sx, sy := cam.WorldToScreen(1, 0)
	if !approxEqual(sx, 400, 1e-6) || !approxEqual(sy, 330, 1e-6) {
		t.Errorf("90° rotation: WorldToScreen(1,0) = (%f,%f), want (400,330)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := newCamera(Rect{Width: 800, Height: 600})
	cam.X = 4.2
	cam.Y = -1.7
	cam.Zoom = 45
	cam.Rotation = 0.3
	cam.MarkDirty()

	sx, sy := cam.WorldToScreen(12.3, -4.56)
	wx, wy := cam.ScreenToWorld(sx, sy)
	if !approxEqual(wx, 12.3, 1e-6) || !approxEqual(wy, -4.56, 1e-6) {
		t.Errorf("roundtrip: got (%f,%f), want (12.3,-4.56)", wx, wy)
	}
}

func TestVisibleBounds(t *testing.T) {
	cam := newCamera(Rect{Width: 800, Height: 600})
	cam.X, cam.Y, cam.Zoom = 400, 300, 1
	cam.MarkDirty()
	b := cam.VisibleBounds()
	if !approxEqual(b.X, 0, 1e-6) || !approxEqual(b.Y, 0, 1e-6) ||
		!approxEqual(b.Width, 800, 1e-6) || !approxEqual(b.Height, 600, 1e-6) {
		t.Errorf("VisibleBounds = %+v, want (0,0) 800x600", b)
	}
}

func TestCameraFitField(t *testing.T) {
	cam := newCamera(Rect{Width: 800, Height: 600})
	cam.X, cam.Y, cam.Rotation = 3, 4, 1
	cam.FitField(30, 20, 1)

	if cam.X != 0 || cam.Y != 0 || cam.Rotation != 0 {
		t.Errorf("position = (%v,%v) rot %v, want centered", cam.X, cam.Y, cam.Rotation)
	}
	if !approxEqual(cam.Zoom, 25, epsilon) {
		t.Errorf("Zoom = %v, want 25", cam.Zoom)
	}
	want := Rect{X: -16, Y: -11, Width: 32, Height: 22}
	if !cam.BoundsEnabled || cam.Bounds != want {
		t.Errorf("Bounds = %+v (enabled %v), want %+v", cam.Bounds, cam.BoundsEnabled, want)
	}

	cam.X = 100
	cam.update(1.0 / 60)
	if cam.X != 16 {
		t.Errorf("X = %v, want clamped to 16", cam.X)
	}
}

func TestCameraZoomAtKeepsPointFixed(t *testing.T) {
	cam := newCamera(Rect{Width: 800, Height: 600})
	wx, wy := cam.ScreenToWorld(100, 150)
	cam.ZoomAt(100, 150, 2)
	if !approxEqual(cam.Zoom, 60, epsilon) {
		t.Errorf("Zoom = %v, want 60", cam.Zoom)
	}
	nx, ny := cam.ScreenToWorld(100, 150)
	if !approxEqual(nx, wx, 1e-9) || !approxEqual(ny, wy, 1e-9) {
		t.Errorf("point under cursor moved from (%v,%v) to (%v,%v)", wx, wy, nx, ny)
	}

	cam.ZoomAt(400, 300, 1e-6)
	if cam.Zoom != minZoom {
		t.Errorf("Zoom = %v, want clamped to %v", cam.Zoom, minZoom)
	}
}

func TestCameraPan(t *testing.T) {
	cam := newCamera(Rect{Width: 800, Height: 600})
	cam.Pan(30, 0)
	if !approxEqual(cam.X, -1, 1e-9) || !approxEqual(cam.Y, 0, 1e-9) {
		t.Errorf("after Pan(30,0): (%v,%v), want (-1,0)", cam.X, cam.Y)
	}
	cam.Pan(0, 60)
	if !approxEqual(cam.Y, 2, 1e-9) {
		t.Errorf("after Pan(0,60): Y = %v, want 2", cam.Y)
	}
}

func TestCameraScrollTo(t *testing.T) {
	cam := newCamera(Rect{Width: 800, Height: 600})
	cam.ScrollTo(5, 3, 0.4, ease.Linear)
	if !cam.Scrolling() {
		t.Fatal("Scrolling = false after ScrollTo")
	}
	cam.update(0.2)
	if !approxEqual(cam.X, 2.5, 1e-4) || !approxEqual(cam.Y, 1.5, 1e-4) {
		t.Errorf("halfway: (%v,%v), want (2.5,1.5)", cam.X, cam.Y)
	}
	cam.update(0.3)
	if !approxEqual(cam.X, 5, 1e-4) || !approxEqual(cam.Y, 3, 1e-4) {
		t.Errorf("done: (%v,%v), want (5,3)", cam.X, cam.Y)
	}
	if cam.Scrolling() {
		t.Error("Scrolling = true after the tween finished")
	}
}

func TestCameraFollow(t *testing.T) {
	cam := newCamera(Rect{Width: 800, Height: 600})
	cam.Follow(fixedTarget{4, -2, 0}, 0.5)
	cam.update(1.0 / 60)
	if !approxEqual(cam.X, 2, epsilon) || !approxEqual(cam.Y, -1, epsilon) {
		t.Errorf("after one step: (%v,%v), want (2,-1)", cam.X, cam.Y)
	}
	if cam.Following() == nil {
		t.Error("Following = nil")
	}
	cam.Unfollow()
	cam.update(1.0 / 60)
	if !approxEqual(cam.X, 2, epsilon) {
		t.Errorf("camera moved after Unfollow: X = %v", cam.X)
	}
}

func TestInvertAffineSingular(t *testing.T) {
	if got := invertAffine([6]float64{0, 0, 0, 0, 5, 5}); got != identityTransform {
		t.Errorf("invertAffine(singular) = %v, want identity", got)
	}
}
