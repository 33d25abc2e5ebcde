package overlay

import (
	"fmt"

	"github.com/soypat/bodyfit"
	"github.com/soypat/bodyfit/internal/d3"
)

// JointOverlay moves a node to a single tracked joint.
type JointOverlay struct {
	playerIndex int
	joint       bodyfit.Joint
	node        *bodyfit.Node
}

// NewJointOverlay returns an overlay that places node over joint j of the
// player at playerIndex. The node rotation is reset to identity.
func NewJointOverlay(node *bodyfit.Node, playerIndex int, j bodyfit.Joint) (*JointOverlay, error) {
	if node == nil {
		return nil, fmt.Errorf("overlay: joint %s node: %w", j, bodyfit.ErrMissingReference)
	}
	if !j.Valid() {
		return nil, fmt.Errorf("overlay: invalid joint %d", int(j))
	}
	node.Rotation = d3.Identity
	return &JointOverlay{playerIndex: playerIndex, joint: j, node: node}, nil
}

// Joint returns the overlaid joint.
func (o *JointOverlay) Joint() bodyfit.Joint { return o.joint }

// Update moves the node to the joint position and orientation. The node
// is left untouched while the joint is untracked or its position is
// unavailable.
func (o *JointOverlay) Update(f bodyfit.Frame) {
	id, ok := trackedUser(f, o.playerIndex)
	if !ok || !f.Tracker.JointTracked(id, o.joint) {
		return
	}
	pos := f.Tracker.JointPosColorOverlay(id, o.joint, f.Viewport)
	if d3.IsZero(pos) {
		return
	}
	o.node.Position = pos
	o.node.Rotation = mirrored(f.Tracker.JointOrientation(id, o.joint, false))
}
