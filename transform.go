package rsgview

// Mat4 is a 4x4 affine matrix stored column-major, the order SLT
// directives carry it in: element (row r, column c) is m[c*4+r] and the
// translation lives in m[12], m[13], m[14].
type Mat4 [16]float64

// Identity4 is the identity matrix.
var Identity4 = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Translate4 returns a translation matrix.
func Translate4(v Vec3) Mat4 {
	m := Identity4
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale4 returns a scaling matrix.
func Scale4(v Vec3) Mat4 {
	m := Identity4
	m[0], m[5], m[10] = v.X, v.Y, v.Z
	return m
}

// Mul returns m * o, so o is applied first when transforming points.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			r[c*4+row] = m[row]*o[c*4] +
				m[4+row]*o[c*4+1] +
				m[8+row]*o[c*4+2] +
				m[12+row]*o[c*4+3]
		}
	}
	return r
}

// TransformPoint applies m to a point (w = 1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		Y: m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		Z: m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// localOrIdentity treats a nil local transform as identity.
func localOrIdentity(m *Mat4) Mat4 {
	if m == nil {
		return Identity4
	}
	return *m
}

// WorldTransform composes local transforms from the root down to n.
// Nodes without a local transform contribute identity.
func (n *Node) WorldTransform() Mat4 {
	if n.Parent == nil {
		return localOrIdentity(n.Local)
	}
	return n.Parent.WorldTransform().Mul(localOrIdentity(n.Local))
}

// WorldPosition returns the world-space origin of n.
func (n *Node) WorldPosition() Vec3 {
	return n.WorldTransform().Translation()
}

// Walk visits n and its descendants depth-first, passing each node's
// world transform. Returning false from fn skips that node's children.
func (n *Node) Walk(fn func(node *Node, world Mat4) bool) {
	var parent Mat4
	if n.Parent != nil {
		parent = n.Parent.WorldTransform()
	} else {
		parent = Identity4
	}
	walkNode(n, parent, fn)
}

func walkNode(n *Node, parent Mat4, fn func(*Node, Mat4) bool) {
	world := parent
	if n.Local != nil {
		world = parent.Mul(*n.Local)
	}
	if !fn(n, world) {
		return
	}
	for _, child := range n.children {
		walkNode(child, world, fn)
	}
}

// TransformVector applies m to a direction (w = 0), ignoring translation.
func (m Mat4) TransformVector(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}
