package rsgview

import (
	"fmt"
	"image/color"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint.
var ColorWhite = Color{1, 1, 1, 1}

// ColorFromBytes converts wire color channels (0-255) to a Color.
func ColorFromBytes(r, g, b, a uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, float64(a) / 255}
}

// toRGBA converts to a premultiplied color.RGBA for ebiten calls.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A)*255 + 0.5),
		G: uint8(clamp01(c.G*c.A)*255 + 0.5),
		B: uint8(clamp01(c.B*c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector, used for screen-space positions.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a point or direction in world space. The field lies in the
// X/Y plane with Z pointing up.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Rect is an axis-aligned rectangle with its minimum corner at (X, Y). It
// holds screen viewports and world-space areas alike.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// NodeType is the scene-graph node kind named by the type tag of an
// (nd ...) declaration.
type NodeType uint8

const (
	NodeTypeBase         NodeType = iota // BN: group with no visual output
	NodeTypeTransform                    // TRF: group carrying a local transform
	NodeTypeLight                        // Light
	NodeTypeStaticMesh                   // StaticMesh: mesh loaded from a model resource
	NodeTypeStandardMesh                 // SMN: built-in primitive mesh
)

var nodeTypeTags = map[string]NodeType{
	"BN":         NodeTypeBase,
	"TRF":        NodeTypeTransform,
	"Light":      NodeTypeLight,
	"StaticMesh": NodeTypeStaticMesh,
	"SMN":        NodeTypeStandardMesh,
}

// ParseNodeType maps a wire type tag to its NodeType.
func ParseNodeType(tag string) (NodeType, bool) {
	t, ok := nodeTypeTags[tag]
	return t, ok
}

func (t NodeType) String() string {
	switch t {
	case NodeTypeBase:
		return "BN"
	case NodeTypeTransform:
		return "TRF"
	case NodeTypeLight:
		return "Light"
	case NodeTypeStaticMesh:
		return "StaticMesh"
	case NodeTypeStandardMesh:
		return "SMN"
	default:
		return fmt.Sprintf("NodeType(%d)", uint8(t))
	}
}

// IsMesh reports whether nodes of this type carry geometry fields.
func (t NodeType) IsMesh() bool {
	return t == NodeTypeStaticMesh || t == NodeTypeStandardMesh
}

// Side identifies a team by the half of the field it starts on.
type Side uint8

const (
	SideLeft  Side = iota // team flag 0 on the wire
	SideRight             // team flag 1 on the wire
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// Valid reports whether s names one of the two teams.
func (s Side) Valid() bool { return s == SideLeft || s == SideRight }
