package rsgview

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// stdMeshCells is the marching cubes resolution for built-in primitives.
// They are drawn small, so a coarse grid is enough.
const stdMeshCells = 24

// Mesh is a triangle soup in model space.
type Mesh struct {
	Vertices []float32 // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 // one face normal per vertex
	Indices  []uint32  // three per triangle
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Vertex returns vertex i.
func (m *Mesh) Vertex(i uint32) Vec3 {
	return Vec3{float64(m.Vertices[i*3]), float64(m.Vertices[i*3+1]), float64(m.Vertices[i*3+2])}
}

// Normal returns the normal stored for vertex i.
func (m *Mesh) Normal(i uint32) Vec3 {
	return Vec3{float64(m.Normals[i*3]), float64(m.Normals[i*3+1]), float64(m.Normals[i*3+2])}
}

// MeshCache tessellates built-in primitives once per distinct
// primitive and parameter list.
type MeshCache struct {
	mu     sync.Mutex
	meshes map[string]*Mesh
	errs   map[string]error
}

// NewMeshCache returns an empty cache.
func NewMeshCache() *MeshCache {
	return &MeshCache{meshes: make(map[string]*Mesh), errs: make(map[string]error)}
}

// Get returns the mesh for a standard primitive. Failures are cached too,
// so a bad primitive is only reported once per key.
func (c *MeshCache) Get(primitive string, params []float64) (*Mesh, error) {
	key := meshKey(primitive, params)
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.meshes[key]; ok {
		return m, nil
	}
	if err, ok := c.errs[key]; ok {
		return nil, err
	}
	m, err := StandardMesh(primitive, params)
	if err != nil {
		c.errs[key] = err
		return nil, err
	}
	c.meshes[key] = m
	return m, nil
}

// Len returns how many meshes are cached.
func (c *MeshCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.meshes)
}

func meshKey(primitive string, params []float64) string {
	var b strings.Builder
	b.WriteString(primitive)
	for _, p := range params {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
	}
	return b.String()
}

// StandardMesh tessellates one of the server's built-in primitives:
//
//	StdUnitBox                      1 x 1 x 1 box
//	StdUnitSphere                   sphere of radius 1
//	StdUnitCylinder [length radius] cylinder along Z, default 1 x 1
//	StdCapsule      [length radius] capped cylinder along Z, default 1 x 0.5
//
// All are centered on the origin.
func StandardMesh(primitive string, params []float64) (*Mesh, error) {
	solid, err := standardSolid(primitive, params)
	if err != nil {
		return nil, err
	}
	return tessellate(solid), nil
}

func standardSolid(primitive string, params []float64) (sdf.SDF3, error) {
	param := func(i int, def float64) float64 {
		if i < len(params) && params[i] > 0 {
			return params[i]
		}
		return def
	}
	switch primitive {
	case "StdUnitBox":
		return sdf.Box3D(v3.Vec{X: 1, Y: 1, Z: 1}, 0)
	case "StdUnitSphere":
		return sdf.Sphere3D(1)
	case "StdUnitCylinder":
		return sdf.Cylinder3D(param(0, 1), param(1, 1), 0)
	case "StdCapsule", "StdCCylinder":
		length, radius := param(0, 1), param(1, 0.5)
		body, err := sdf.Cylinder3D(length, radius, 0)
		if err != nil {
			return nil, err
		}
		cap0, err := sdf.Sphere3D(radius)
		if err != nil {
			return nil, err
		}
		top := sdf.Transform3D(cap0, sdf.Translate3d(v3.Vec{Z: length / 2}))
		bottom := sdf.Transform3D(cap0, sdf.Translate3d(v3.Vec{Z: -length / 2}))
		return sdf.Union3D(body, top, bottom), nil
	default:
		return nil, fmt.Errorf("standard mesh %q: %w", primitive, ErrUnknownOperation)
	}
}

func tessellate(s sdf.SDF3) *Mesh {
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(stdMeshCells))
	m := &Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
	}
	for i, tri := range triangles {
		n := tri.Normal()
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m
}
