package overlay

import (
	"github.com/soypat/bodyfit"
	"github.com/soypat/bodyfit/internal/d3"
)

// SkeletonConfig selects what a SkeletonOverlay draws.
type SkeletonConfig struct {
	PlayerIndex int `yaml:"player_index"`
	// Joints enables one node per joint.
	Joints bool `yaml:"joints"`
	// Bones enables one line per joint, drawn from its parent.
	Bones bool `yaml:"bones"`
}

// SkeletonOverlay draws the full tracked skeleton of one player.
type SkeletonOverlay struct {
	playerIndex int
	joints      []*bodyfit.Node
	bones       []*bodyfit.Line
}

// NewSkeletonOverlay creates the inactive joint nodes and bone lines
// enabled by cfg, indexed by bodyfit.Joint.
func NewSkeletonOverlay(cfg SkeletonConfig) *SkeletonOverlay {
	s := &SkeletonOverlay{playerIndex: cfg.PlayerIndex}
	if cfg.Joints {
		s.joints = make([]*bodyfit.Node, bodyfit.NumJoints)
		for i := range s.joints {
			s.joints[i] = &bodyfit.Node{Rotation: d3.Identity}
		}
	}
	if cfg.Bones {
		s.bones = make([]*bodyfit.Line, bodyfit.NumJoints)
		for i := range s.bones {
			s.bones[i] = &bodyfit.Line{}
		}
	}
	return s
}

// Joints returns the joint nodes or nil if joints are disabled.
func (s *SkeletonOverlay) Joints() []*bodyfit.Node { return s.joints }

// Bones returns the bone lines or nil if bones are disabled.
func (s *SkeletonOverlay) Bones() []*bodyfit.Line { return s.bones }

// Update refreshes every joint node and bone line.
func (s *SkeletonOverlay) Update(f bodyfit.Frame) {
	id, ok := trackedUser(f, s.playerIndex)
	if !ok {
		return
	}
	tr := f.Tracker
	for i := 0; i < bodyfit.NumJoints; i++ {
		j := bodyfit.Joint(i)
		if !tr.JointTracked(id, j) {
			if s.joints != nil {
				s.joints[i].Active = false
			}
			if s.bones != nil {
				s.bones[i].Active = false
			}
			continue
		}
		pos := tr.JointPosColorOverlay(id, j, f.Viewport)
		if s.joints != nil {
			node := s.joints[i]
			node.Active = !d3.IsZero(pos)
			if node.Active {
				node.Position = pos
				node.Rotation = mirrored(tr.JointOrientation(id, j, false))
			}
		}
		if s.bones != nil {
			parent := tr.JointPosColorOverlay(id, j.Parent(), f.Viewport)
			bone := s.bones[i]
			bone.Active = !d3.IsZero(pos) && !d3.IsZero(parent)
			if bone.Active {
				bone.From, bone.To = parent, pos
			}
		}
	}
}
