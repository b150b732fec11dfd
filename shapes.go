package rsgview

// Canvas is the drawing capability shapes render through. Positions are
// in world space; the implementation owns projection.
type Canvas interface {
	Line(start, end Vec3, thickness float64, c Color)
	Circle(center Vec3, radius, thickness float64, c Color)
	Dot(p Vec3, size float64, c Color)
	Sphere(center Vec3, radius float64, c Color)
	Polygon(verts []Vec3, c Color)
	Text(anchor Vec3, text string, c Color)
}

// Shape is a debug primitive stored in a drawing set.
type Shape interface {
	Draw(c Canvas)
}

// Circle is a ring of Radius around Center, parallel to the ground.
type Circle struct {
	Center    Vec3
	Radius    float64
	Thickness float64
	Color     Color
}

func (s Circle) Draw(c Canvas) { c.Circle(s.Center, s.Radius, s.Thickness, s.Color) }

// Line is a segment.
type Line struct {
	Start, End Vec3
	Thickness  float64
	Color      Color
}

func (s Line) Draw(c Canvas) { c.Line(s.Start, s.End, s.Thickness, s.Color) }

// Point is a dot whose Size is in pixels.
type Point struct {
	Position Vec3
	Size     float64
	Color    Color
}

func (s Point) Draw(c Canvas) { c.Dot(s.Position, s.Size, s.Color) }

// Sphere is a ball of Radius around Center.
type Sphere struct {
	Center Vec3
	Radius float64
	Color  Color
}

func (s Sphere) Draw(c Canvas) { c.Sphere(s.Center, s.Radius, s.Color) }

// Polygon is a filled convex polygon. Color carries alpha.
type Polygon struct {
	Vertices []Vec3
	Color    Color
}

func (s Polygon) Draw(c Canvas) {
	if len(s.Vertices) < 3 {
		return
	}
	c.Polygon(s.Vertices, s.Color)
}
