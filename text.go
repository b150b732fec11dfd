package rsgview

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// labelFace is the font used for annotations and agent numbers.
var labelFace = text.NewGoXFace(basicfont.Face7x13)

// labelOffset lifts labels clear of the point they annotate, in pixels.
const labelOffset = 4

var shadowColor = Color{0, 0, 0, 0.7}

// drawLabel draws s horizontally centered above (x, y) with a one pixel
// drop shadow.
func drawLabel(target *ebiten.Image, s string, x, y float64, c Color) {
	w, h := text.Measure(s, labelFace, 0)
	left := x - w/2
	top := y - h - labelOffset

	op := &text.DrawOptions{}
	op.GeoM.Translate(left+1, top+1)
	op.ColorScale.ScaleWithColor(shadowColor.toRGBA())
	text.Draw(target, s, labelFace, op)

	op = &text.DrawOptions{}
	op.GeoM.Translate(left, top)
	op.ColorScale.ScaleWithColor(c.toRGBA())
	text.Draw(target, s, labelFace, op)
}
