package rsgview

import (
	"math"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandTriangles CommandType = iota // DrawTriangles with the white pixel
	CommandLine                         // stroked segment
	CommandRing                         // stroked circle
	CommandDisk                         // filled circle
	CommandText                         // label centered above a point
)

// Render layers, drawn bottom to top.
const (
	layerField uint8 = iota
	layerScene
	layerDrawings
	layerLabels
)

// color32 is a compact RGBA color using float32, for render commands only.
type color32 struct {
	R, G, B, A float32
}

func toColor32(c Color) color32 {
	return color32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

func (c color32) color() Color {
	return Color{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
}

// RenderCommand is a single draw instruction in screen space, emitted
// while walking the world and the drawing sets.
type RenderCommand struct {
	Type      CommandType
	Layer     uint8
	Depth     float64 // world height; higher draws later within a layer
	Color     color32
	treeOrder int // emission order, for a stable sort

	X0, Y0, X1, Y1 float32 // segment ends; X0, Y0 is the center of circles and labels
	Radius         float32
	Width          float32
	Text           string

	verts []ebiten.Vertex
	inds  []uint16
}

// Sizes in meters unless noted.
const (
	agentMarkerRadius = 0.12
	limbMarkerRadius  = 0.04
	selectRingPx      = 3
	minBallPx         = 3
)

// maxTriangleVerts is the most vertices one DrawTriangles call can index.
const maxTriangleVerts = math.MaxUint16

// emit appends cmd, stamping its tree order.
func (v *Viewer) emit(cmd RenderCommand) {
	v.treeOrder++
	cmd.treeOrder = v.treeOrder
	v.commands = append(v.commands, cmd)
}

// buildCommands emits every command for one frame. Nothing here holds a
// lock longer than one scene View or one set snapshot.
func (v *Viewer) buildCommands() {
	v.commands = v.commands[:0]
	v.treeOrder = 0
	v.cull = Rect{}
	if vp := v.camera.Viewport; vp.Width > 0 && vp.Height > 0 {
		v.cull = grow(v.camera.VisibleBounds(), cullMargin)
	}

	state := v.world.GameState()
	drawField(v.canvas(layerField), state)

	v.world.Scene().View(func(root *Node) {
		if root != nil {
			v.traverse(root)
		}
	})
	v.emitAgents(state)

	shapes := v.canvas(layerDrawings)
	for _, s := range v.drawings.VisibleShapes() {
		s.Draw(shapes)
	}
	labels := v.canvas(layerLabels)
	for _, a := range v.drawings.VisibleAnnotations() {
		a.Draw(labels)
	}
	for _, a := range v.drawings.AgentAnnotations() {
		a.Draw(labels, v.world)
	}
}

// traverse walks the scene graph and emits geometry for visible meshes.
// Model files are not loaded: standard primitives are tessellated, robot
// parts become markers, and everything else is left to the field drawing.
func (v *Viewer) traverse(root *Node) {
	root.Walk(func(n *Node, world Mat4) bool {
		if n.Type.IsMesh() && !n.Visible {
			return false
		}
		switch n.Type {
		case NodeTypeStandardMesh:
			v.emitStandardMesh(n, world)
		case NodeTypeStaticMesh:
			v.emitLimb(n, world)
		}
		return true
	})
}

// emitLimb draws a team-colored dot for robot parts other than the body,
// which emitAgents draws from the roster.
func (v *Viewer) emitLimb(n *Node, world Mat4) {
	stem := modelStem(n.BaseName())
	if strings.HasPrefix(stem, bodyModelPrefix) || stem == ballModel {
		return
	}
	var c Color
	switch {
	case n.HasMaterial(materialLeft):
		c = teamColor(SideLeft)
	case n.HasMaterial(materialRight):
		c = teamColor(SideRight)
	default:
		return
	}
	c = lighten(c, 0.35)
	p := world.Translation()
	if !v.onScreen(p) {
		return
	}
	s := v.camera.Project(p)
	v.emit(RenderCommand{
		Type:   CommandDisk,
		Layer:  layerScene,
		Depth:  p.Z,
		Color:  toColor32(c),
		X0:     float32(s.X),
		Y0:     float32(s.Y),
		Radius: float32(math.Max(1.5, limbMarkerRadius*v.camera.Zoom)),
	})
}

// emitStandardMesh projects a tessellated primitive onto the screen with
// flat shading. Triangles facing away from the camera are dropped.
func (v *Viewer) emitStandardMesh(n *Node, world Mat4) {
	mesh, err := v.meshes.Get(n.BaseName(), n.Params)
	if err != nil {
		key := meshKey(n.BaseName(), n.Params)
		if !v.meshErrs[key] {
			v.meshErrs[key] = true
			v.logger.Warn("cannot tessellate standard mesh", "mesh", key, "error", err)
		}
		return
	}
	model := world.Mul(Scale4(n.Scale))
	base := materialColor(n.Materials)
	if n.Transparent {
		base.A *= 0.5
	}
	depth := world.Translation().Z

	var verts []ebiten.Vertex
	var inds []uint16
	flush := func() {
		if len(inds) == 0 {
			return
		}
		v.emit(RenderCommand{
			Type:  CommandTriangles,
			Layer: layerScene,
			Depth: depth,
			Color: toColor32(base),
			verts: verts,
			inds:  inds,
		})
		verts, inds = nil, nil
	}

	for t := 0; t < mesh.TriangleCount(); t++ {
		i0 := mesh.Indices[t*3]
		normal := model.TransformVector(mesh.Normal(i0))
		length := math.Sqrt(normal.X*normal.X + normal.Y*normal.Y + normal.Z*normal.Z)
		if length == 0 || normal.Z <= 0 {
			continue
		}
		shade := 0.45 + 0.55*normal.Z/length
		if len(verts)+3 > maxTriangleVerts {
			flush()
		}
		for j := 0; j < 3; j++ {
			p := model.TransformPoint(mesh.Vertex(mesh.Indices[t*3+j]))
			s := v.camera.Project(p)
			inds = append(inds, uint16(len(verts)))
			verts = append(verts, ebiten.Vertex{
				DstX:   float32(s.X),
				DstY:   float32(s.Y),
				SrcX:   0.5,
				SrcY:   0.5,
				ColorR: float32(base.R * shade),
				ColorG: float32(base.G * shade),
				ColorB: float32(base.B * shade),
				ColorA: float32(base.A),
			})
		}
	}
	flush()
}

// emitAgents draws each agent as a disk with its number, the ball, and a
// ring around the selection.
func (v *Viewer) emitAgents(state GameState) {
	selected := v.world.Selected()
	zoom := v.camera.Zoom
	for _, side := range []Side{SideLeft, SideRight} {
		for _, a := range v.world.Agents(side) {
			p := a.Position()
			if !v.onScreen(p) {
				continue
			}
			s := v.camera.Project(p)
			r := float32(math.Max(4, agentMarkerRadius*zoom))
			v.emit(RenderCommand{
				Type: CommandDisk, Layer: layerScene, Depth: p.Z,
				Color: toColor32(teamColor(side)),
				X0:    float32(s.X), Y0: float32(s.Y), Radius: r,
			})
			v.emit(RenderCommand{
				Type: CommandText, Layer: layerLabels, Depth: p.Z,
				Color: toColor32(ColorWhite),
				X0:    float32(s.X), Y0: float32(s.Y) - r,
				Text:  strconv.Itoa(a.Key.ID),
			})
			if selected == Selectable(a) {
				v.emitSelectionRing(s, r, p.Z)
			}
		}
	}
	if ball := v.world.Ball(); ball != nil && v.onScreen(ball.Position()) {
		p := ball.Position()
		s := v.camera.Project(p)
		r := float32(math.Max(minBallPx, state.BallRadius*zoom))
		v.emit(RenderCommand{
			Type: CommandDisk, Layer: layerScene, Depth: p.Z,
			Color: toColor32(ballColor),
			X0:    float32(s.X), Y0: float32(s.Y), Radius: r,
		})
		if selected == Selectable(ball) {
			v.emitSelectionRing(s, r, p.Z)
		}
	}
}

// cullMargin pads the visible area, in meters, so markers straddling the
// screen edge are still drawn.
const cullMargin = 1.0

func grow(r Rect, d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// onScreen reports whether a marker at p falls inside this frame's cull
// rectangle. Without a viewport nothing is culled.
func (v *Viewer) onScreen(p Vec3) bool {
	return v.cull.Width == 0 || v.cull.Contains(p.X, p.Y)
}

func (v *Viewer) emitSelectionRing(center Vec2, radius float32, depth float64) {
	v.emit(RenderCommand{
		Type: CommandRing, Layer: layerScene, Depth: depth + 0.001,
		Color: toColor32(selectionColor),
		X0:    float32(center.X), Y0: float32(center.Y),
		Radius: radius + selectRingPx, Width: 2,
	})
}

// --- Colors ---

var (
	leftTeamColor  = Color{0.2, 0.4, 1, 1}
	rightTeamColor = Color{1, 0.25, 0.25, 1}
	ballColor      = Color{1, 0.6, 0.1, 1}
	selectionColor = Color{1, 1, 0, 1}
	fieldColor     = Color{0.1, 0.45, 0.15, 1}
	lineColor      = Color{1, 1, 1, 0.9}
	backgroundCol  = Color{0.05, 0.08, 0.05, 1}
)

var materialColors = map[string]Color{
	"matWhite":    {0.95, 0.95, 0.95, 1},
	"matGrey":     {0.6, 0.6, 0.6, 1},
	"matDarkGrey": {0.3, 0.3, 0.3, 1},
	"matBlack":    {0.1, 0.1, 0.1, 1},
	"matRed":      {0.9, 0.15, 0.15, 1},
	"matGreen":    {0.15, 0.7, 0.2, 1},
	"matBlue":     {0.15, 0.3, 0.9, 1},
	"matYellow":   {0.95, 0.9, 0.2, 1},
	"matOrange":   {1, 0.55, 0.1, 1},
	materialLeft:  leftTeamColor,
	materialRight: rightTeamColor,
}

// materialColor returns the color of the first known material.
func materialColor(materials []string) Color {
	for _, m := range materials {
		if c, ok := materialColors[m]; ok {
			return c
		}
	}
	return Color{0.7, 0.7, 0.7, 1}
}

func teamColor(side Side) Color {
	if side == SideRight {
		return rightTeamColor
	}
	return leftTeamColor
}

func lighten(c Color, amount float64) Color {
	return Color{
		R: c.R + (1-c.R)*amount,
		G: c.G + (1-c.G)*amount,
		B: c.B + (1-c.B)*amount,
		A: c.A,
	}
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same position as b.
// Using <= for treeOrder ensures stability.
func commandLessOrEqual(a, b RenderCommand) bool {
	if a.Layer != b.Layer {
		return a.Layer < b.Layer
	}
	if a.Depth != b.Depth {
		return a.Depth < b.Depth
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts v.commands in-place using v.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (v *Viewer) mergeSort() {
	n := len(v.commands)
	if n <= 1 {
		return
	}
	if cap(v.sortBuf) < n {
		v.sortBuf = make([]RenderCommand, n)
	}
	v.sortBuf = v.sortBuf[:n]

	a := v.commands
	b := v.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(v.commands, v.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
