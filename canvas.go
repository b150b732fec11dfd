package rsgview

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// commandCanvas turns Canvas calls into render commands on one layer.
// Lengths given in meters are scaled by the camera zoom; thicknesses and
// dot sizes are in pixels.
type commandCanvas struct {
	v     *Viewer
	layer uint8
}

func (v *Viewer) canvas(layer uint8) commandCanvas {
	return commandCanvas{v: v, layer: layer}
}

func (c commandCanvas) Line(start, end Vec3, thickness float64, col Color) {
	a := c.v.camera.Project(start)
	b := c.v.camera.Project(end)
	c.v.emit(RenderCommand{
		Type:  CommandLine,
		Layer: c.layer,
		Depth: math.Max(start.Z, end.Z),
		Color: toColor32(col),
		X0:    float32(a.X), Y0: float32(a.Y),
		X1: float32(b.X), Y1: float32(b.Y),
		Width: float32(math.Max(thickness, 1)),
	})
}

func (c commandCanvas) Circle(center Vec3, radius, thickness float64, col Color) {
	s := c.v.camera.Project(center)
	c.v.emit(RenderCommand{
		Type:   CommandRing,
		Layer:  c.layer,
		Depth:  center.Z,
		Color:  toColor32(col),
		X0:     float32(s.X),
		Y0:     float32(s.Y),
		Radius: float32(radius * c.v.camera.Zoom),
		Width:  float32(math.Max(thickness, 1)),
	})
}

func (c commandCanvas) Dot(p Vec3, size float64, col Color) {
	s := c.v.camera.Project(p)
	c.v.emit(RenderCommand{
		Type:   CommandDisk,
		Layer:  c.layer,
		Depth:  p.Z,
		Color:  toColor32(col),
		X0:     float32(s.X),
		Y0:     float32(s.Y),
		Radius: float32(math.Max(size, 1) / 2),
	})
}

func (c commandCanvas) Sphere(center Vec3, radius float64, col Color) {
	s := c.v.camera.Project(center)
	c.v.emit(RenderCommand{
		Type:   CommandDisk,
		Layer:  c.layer,
		Depth:  center.Z,
		Color:  toColor32(col),
		X0:     float32(s.X),
		Y0:     float32(s.Y),
		Radius: float32(math.Max(radius*c.v.camera.Zoom, 1)),
	})
}

// Polygon fills the projected outline as a triangle fan, so it expects a
// convex outline.
func (c commandCanvas) Polygon(verts []Vec3, col Color) {
	if len(verts) < 3 {
		return
	}
	depth := verts[0].Z
	vs := make([]ebiten.Vertex, len(verts))
	for i, p := range verts {
		depth = math.Max(depth, p.Z)
		s := c.v.camera.Project(p)
		vs[i] = ebiten.Vertex{
			DstX: float32(s.X), DstY: float32(s.Y),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: float32(col.R), ColorG: float32(col.G),
			ColorB: float32(col.B), ColorA: float32(col.A),
		}
	}
	inds := make([]uint16, 0, 3*(len(verts)-2))
	for i := 1; i+1 < len(verts); i++ {
		inds = append(inds, 0, uint16(i), uint16(i+1))
	}
	c.v.emit(RenderCommand{
		Type:  CommandTriangles,
		Layer: c.layer,
		Depth: depth,
		Color: toColor32(col),
		verts: vs,
		inds:  inds,
	})
}

func (c commandCanvas) Text(anchor Vec3, text string, col Color) {
	if text == "" {
		return
	}
	s := c.v.camera.Project(anchor)
	c.v.emit(RenderCommand{
		Type:  CommandText,
		Layer: c.layer,
		Depth: anchor.Z,
		Color: toColor32(col),
		X0:    float32(s.X),
		Y0:    float32(s.Y),
		Text:  text,
	})
}
