package bodyfit

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Node is a transform in the rendered scene owned by a component.
type Node struct {
	Position r3.Vec
	Rotation r3.Rotation
	Active   bool
}

// NewNode returns an active node at the origin with identity rotation.
func NewNode() *Node {
	return &Node{Rotation: r3.Rotation{Real: 1}, Active: true}
}

// Line is a line segment drawn between two points, such as a bone.
type Line struct {
	From, To r3.Vec
	Active   bool
}

// Label is a GUI text element.
type Label struct {
	Text string
}

// SetText sets the label text. It is a no-op on a nil Label so
// components may be built without a GUI.
func (l *Label) SetText(s string) {
	if l != nil {
		l.Text = s
	}
}
