package rsgview

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// whitePixel is the 1x1 source image for untextured triangles.
var whitePixel *ebiten.Image

func whiteImage() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(ColorWhite.toRGBA())
	}
	return whitePixel
}

// submitCommands draws the sorted commands to target in order.
func (v *Viewer) submitCommands(target *ebiten.Image) int {
	calls := 0
	for i := range v.commands {
		if submitCommand(target, &v.commands[i]) {
			calls++
		}
	}
	return calls
}

// submitCommand issues the draw call for one command and reports whether
// anything was drawn.
func submitCommand(target *ebiten.Image, cmd *RenderCommand) bool {
	c := cmd.Color.color().toRGBA()
	switch cmd.Type {
	case CommandTriangles:
		if len(cmd.verts) == 0 || len(cmd.inds) == 0 {
			return false
		}
		var op ebiten.DrawTrianglesOptions
		op.AntiAlias = true
		target.DrawTriangles(cmd.verts, cmd.inds, whiteImage(), &op)
	case CommandLine:
		vector.StrokeLine(target, cmd.X0, cmd.Y0, cmd.X1, cmd.Y1, cmd.Width, c, true)
	case CommandRing:
		if cmd.Radius <= 0 {
			return false
		}
		vector.StrokeCircle(target, cmd.X0, cmd.Y0, cmd.Radius, cmd.Width, c, true)
	case CommandDisk:
		if cmd.Radius <= 0 {
			return false
		}
		vector.DrawFilledCircle(target, cmd.X0, cmd.Y0, cmd.Radius, c, true)
	case CommandText:
		drawLabel(target, cmd.Text, float64(cmd.X0), float64(cmd.Y0), cmd.Color.color())
	default:
		return false
	}
	return true
}
