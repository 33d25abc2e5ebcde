// Package deform implements the anchor-weighted mesh deformation used to
// fit a cloth mesh to a tracked body.
//
// Every vertex is scaled radially about the centre of the reference mesh
// bounds by a soft blend of three regional factors (shoulder, breast and
// hip) and independently rescaled in height from the top of the bounds.
package deform

import (
	"fmt"
	"math"

	"github.com/soypat/bodyfit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// kernelVariance is the variance of the Gaussian used to score
// how close a vertex is to an anchor height.
const kernelVariance = 0.04

// Anchors holds the heights of the three body landmarks in mesh-local
// coordinates.
type Anchors struct {
	Shoulder float64 `yaml:"shoulder"`
	Breast   float64 `yaml:"breast"`
	Hip      float64 `yaml:"hip"`
}

// Scales holds the regional horizontal scale factors and the vertical
// scale factor. A factor of 1 leaves its region or axis unchanged.
type Scales struct {
	Shoulder float64 `yaml:"shoulder"`
	Breast   float64 `yaml:"breast"`
	Hip      float64 `yaml:"hip"`
	Tall     float64 `yaml:"tall"`
}

// DefaultScales returns the identity scales.
func DefaultScales() Scales {
	return Scales{Shoulder: 1, Breast: 1, Hip: 1, Tall: 1}
}

// Deformer holds a frozen reference mesh and the working buffer
// deformed vertices are written to. A Deformer is not safe for
// concurrent use.
type Deformer struct {
	reference d3.Set
	working   []r3.Vec
	bounds    d3.Box
}

// New captures a deep copy of the reference vertices and their bounding box.
func New(reference []r3.Vec) *Deformer {
	ref := d3.Set(reference).Clone()
	return &Deformer{
		reference: ref,
		working:   make([]r3.Vec, len(ref)),
		bounds:    d3.BoundsOf(ref),
	}
}

// NewWithBounds is like New but uses bb as the reference bounds instead
// of deriving them from the vertices.
func NewWithBounds(reference []r3.Vec, bb r3.Box) *Deformer {
	d := New(reference)
	d.bounds = d3.Box(bb)
	return d
}

// Len returns the number of vertices of the reference mesh.
func (d *Deformer) Len() int { return len(d.reference) }

// Reference returns a copy of the reference vertices.
func (d *Deformer) Reference() []r3.Vec { return d.reference.Clone() }

// Bounds returns the frozen reference bounding box.
func (d *Deformer) Bounds() r3.Box { return r3.Box(d.bounds) }

// Deform recomputes every vertex of the working mesh from the reference
// mesh, anchors and scales. The returned slice is owned by the Deformer
// and is overwritten on the next call.
func (d *Deformer) Deform(a Anchors, s Scales) []r3.Vec {
	d.deform(d.working, a, s)
	return d.working
}

// DeformInto writes the deformed mesh to dst, which must be the same
// length as the reference mesh.
func (d *Deformer) DeformInto(dst []r3.Vec, a Anchors, s Scales) error {
	if len(dst) != len(d.reference) {
		return fmt.Errorf("deform: destination length %d does not match reference length %d", len(dst), len(d.reference))
	}
	d.deform(dst, a, s)
	return nil
}

func (d *Deformer) deform(dst []r3.Vec, a Anchors, s Scales) {
	center := d.bounds.Center()
	top := d.bounds.Max.Y
	for i, vertex := range d.reference {
		scores := [3]float64{
			Score(vertex.Y, a.Shoulder, 0, math.Inf(-1)),
			Score(vertex.Y, a.Breast, math.Inf(1), math.Inf(-1)),
			Score(vertex.Y, a.Hip, math.Inf(1), 0),
		}
		p := softmax3(scores)
		scale := p[0]*s.Shoulder + p[1]*s.Breast + p[2]*s.Hip
		v := r3.Add(center, r3.Scale(scale, r3.Sub(vertex, center)))
		v.Y = top + s.Tall*(vertex.Y-top)
		dst[i] = v
	}
}

// Score measures how close x is to y with a Gaussian kernel. The
// difference x-y is clamped to [lo, hi] before scoring so a one sided
// kernel is obtained by setting one of the limits to 0.
// The maximum score of 1 is attained when the clamped difference is 0.
func Score(x, y, hi, lo float64) float64 {
	d := d3.Clamp(x-y, lo, hi)
	return math.Exp(-0.5 * d * d / kernelVariance)
}

// Softmax stores exp(scores[k]) / Σ exp(scores[j]) in dst and returns it.
// dst is allocated if it is shorter than scores.
func Softmax(dst, scores []float64) []float64 {
	if len(dst) < len(scores) {
		dst = make([]float64, len(scores))
	}
	dst = dst[:len(scores)]
	var sum float64
	for i, s := range scores {
		dst[i] = math.Exp(s)
		sum += dst[i]
	}
	for i := range dst {
		dst[i] /= sum
	}
	return dst
}

func softmax3(s [3]float64) [3]float64 {
	e0, e1, e2 := math.Exp(s[0]), math.Exp(s[1]), math.Exp(s[2])
	sum := e0 + e1 + e2
	return [3]float64{e0 / sum, e1 / sum, e2 / sum}
}
