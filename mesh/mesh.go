// Package mesh provides an indexed triangle mesh whose vertex buffer can
// be deformed in place and turned back into a triangle soup for rendering.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/bodyfit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []r3.Vec
	// Faces index into Vertices.
	Faces [][3]int
}

// FromTriangles builds a Mesh from a triangle soup, choosing shared vertices
// among triangles using vertexTol. If vertexTol is zero it is inferred from
// the smallest triangle side.
func FromTriangles(triangles []r3.Triangle, vertexTolOrZero float64) (*Mesh, error) {
	if len(triangles) == 0 {
		return nil, errors.New("mesh: no triangles")
	}
	bb := d3.Box{Min: d3.Elem(math.MaxFloat64), Max: d3.Elem(-math.MaxFloat64)}
	minDist2 := math.MaxFloat64
	maxDist2 := -math.MaxFloat64
	for i := range triangles {
		for j, vert := range triangles[i] {
			bb = bb.Include(vert)
			side2 := r3.Norm2(r3.Sub(triangles[i][(j+1)%3], vert))
			minDist2 = math.Min(minDist2, side2)
			maxDist2 = math.Max(maxDist2, side2)
		}
	}
	tol := vertexTolOrZero
	suggested := math.Sqrt(minDist2) / 256
	if tol > math.Sqrt(maxDist2)/2 {
		return nil, fmt.Errorf("mesh: vertex tolerance is too large to weld vertices, suggested tolerance: %g", suggested)
	}
	if tol == 0 {
		tol = suggested
	}
	if tol <= 0 {
		return nil, errors.New("mesh: degenerate triangles, cannot infer vertex tolerance")
	}
	size := bb.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim/tol > math.MaxInt64/2 {
		return nil, errors.New("mesh: tolerance too small. overflowed int64")
	}
	m := &Mesh{Faces: make([][3]int, len(triangles))}
	// Vertex index cache keyed by position in resolution-space.
	cache := make(map[[3]int64]int)
	ri := 1 / tol
	for i, tri := range triangles {
		for j, vert := range tri {
			v := r3.Scale(ri, r3.Sub(vert, bb.Min))
			key := [3]int64{int64(math.Round(v.X)), int64(math.Round(v.Y)), int64(math.Round(v.Z))}
			idx, ok := cache[key]
			if !ok {
				idx = len(m.Vertices)
				cache[key] = idx
				m.Vertices = append(m.Vertices, vert)
			}
			m.Faces[i][j] = idx
		}
	}
	return m, nil
}

// Bounds returns the axis aligned bounding box of the mesh vertices.
func (m *Mesh) Bounds() r3.Box {
	return r3.Box(d3.BoundsOf(m.Vertices))
}

// Triangles returns the faces of the mesh built from vertices, which must
// correspond index by index with m.Vertices. Pass m.Vertices to get the
// undeformed mesh.
func (m *Mesh) Triangles(vertices []r3.Vec) ([]r3.Triangle, error) {
	if len(vertices) != len(m.Vertices) {
		return nil, fmt.Errorf("mesh: got %d vertices, mesh has %d", len(vertices), len(m.Vertices))
	}
	tris := make([]r3.Triangle, len(m.Faces))
	for i, f := range m.Faces {
		tris[i] = r3.Triangle{vertices[f[0]], vertices[f[1]], vertices[f[2]]}
	}
	return tris, nil
}

// Transform returns the vertices moved by rotation q and then translated by
// position, as done for a scene node pose.
func Transform(dst, vertices []r3.Vec, position r3.Vec, q r3.Rotation) []r3.Vec {
	if cap(dst) < len(vertices) {
		dst = make([]r3.Vec, len(vertices))
	}
	dst = dst[:len(vertices)]
	for i, v := range vertices {
		dst[i] = r3.Add(position, q.Rotate(v))
	}
	return dst
}
