package rsgview

import "math"

// Field markings, in meters.
const (
	centerCircleRadius = 2.0
	penaltyDepth       = 1.8
	penaltyWidth       = 6.0
	fieldLineWidth     = 2.0 // pixels
	fieldMargin        = 1.0
)

// drawField paints the pitch and its markings for the given dimensions.
// The field is centered on the origin with the left goal at -X.
func drawField(c Canvas, s GameState) {
	hl, hw := s.FieldLength/2, s.FieldWidth/2
	if hl <= 0 || hw <= 0 {
		return
	}
	c.Polygon([]Vec3{
		{-hl - fieldMargin, -hw - fieldMargin, 0},
		{hl + fieldMargin, -hw - fieldMargin, 0},
		{hl + fieldMargin, hw + fieldMargin, 0},
		{-hl - fieldMargin, hw + fieldMargin, 0},
	}, fieldColor)

	outline(c, -hl, -hw, hl, hw)
	c.Line(Vec3{0, -hw, 0}, Vec3{0, hw, 0}, fieldLineWidth, lineColor)
	c.Circle(Vec3{}, centerCircleRadius, fieldLineWidth, lineColor)
	c.Dot(Vec3{}, 4, lineColor)

	pw := math.Min(penaltyWidth, s.FieldWidth) / 2
	pd := math.Min(penaltyDepth, hl)
	outline(c, -hl, -pw, -hl+pd, pw)
	outline(c, hl-pd, -pw, hl, pw)

	gw := s.GoalWidth / 2
	if gw > 0 && s.GoalDepth > 0 {
		goal(c, -hl, -hl-s.GoalDepth, gw, teamColor(SideLeft))
		goal(c, hl, hl+s.GoalDepth, gw, teamColor(SideRight))
	}
}

func outline(c Canvas, x0, y0, x1, y1 float64) {
	c.Line(Vec3{x0, y0, 0}, Vec3{x1, y0, 0}, fieldLineWidth, lineColor)
	c.Line(Vec3{x1, y0, 0}, Vec3{x1, y1, 0}, fieldLineWidth, lineColor)
	c.Line(Vec3{x1, y1, 0}, Vec3{x0, y1, 0}, fieldLineWidth, lineColor)
	c.Line(Vec3{x0, y1, 0}, Vec3{x0, y0, 0}, fieldLineWidth, lineColor)
}

// goal draws the three sides of a goal frame from the goal line at x
// back to the net at back.
func goal(c Canvas, x, back, halfWidth float64, col Color) {
	c.Line(Vec3{x, -halfWidth, 0}, Vec3{back, -halfWidth, 0}, fieldLineWidth+1, col)
	c.Line(Vec3{back, -halfWidth, 0}, Vec3{back, halfWidth, 0}, fieldLineWidth+1, col)
	c.Line(Vec3{back, halfWidth, 0}, Vec3{x, halfWidth, 0}, fieldLineWidth+1, col)
}
