package mesh

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tube returns an open cylinder of the given radius standing on the
// xz plane from y=0 to y=height. It is the default garment shape when
// no mesh file is supplied.
func Tube(radius, height float64, segments, rings int) (*Mesh, error) {
	if segments < 3 || rings < 1 {
		return nil, errors.New("mesh: tube needs at least 3 segments and 1 ring")
	}
	if radius <= 0 || height <= 0 {
		return nil, errors.New("mesh: tube radius and height must be positive")
	}
	m := &Mesh{
		Vertices: make([]r3.Vec, 0, segments*(rings+1)),
		Faces:    make([][3]int, 0, 2*segments*rings),
	}
	for r := 0; r <= rings; r++ {
		y := height * float64(r) / float64(rings)
		for s := 0; s < segments; s++ {
			sin, cos := math.Sincos(2 * math.Pi * float64(s) / float64(segments))
			m.Vertices = append(m.Vertices, r3.Vec{X: radius * cos, Y: y, Z: radius * sin})
		}
	}
	idx := func(r, s int) int { return r*segments + s%segments }
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a, b := idx(r, s), idx(r, s+1)
			c, d := idx(r+1, s+1), idx(r+1, s)
			m.Faces = append(m.Faces, [3]int{a, c, b}, [3]int{a, d, c})
		}
	}
	return m, nil
}
