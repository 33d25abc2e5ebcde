package overlay

import (
	"fmt"
	"log/slog"

	"github.com/soypat/bodyfit"
	"github.com/soypat/bodyfit/deform"
	"github.com/soypat/bodyfit/internal/d3"
	"github.com/soypat/bodyfit/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// ClothConfig configures a ClothOverlay.
type ClothConfig struct {
	PlayerIndex int
	// CheckJoints must all be tracked for the cloth to be posed.
	CheckJoints []bodyfit.Joint
	Scales      deform.Scales
	Logger      *slog.Logger
}

// ClothRefs are the scene references a ClothOverlay drives.
// All are required.
type ClothRefs struct {
	// Cloth is posed on the upper body of the player.
	Cloth    *bodyfit.Node
	Deformer *deform.Deformer
	// Anchor node heights, in cloth local coordinates.
	Shoulder, Breast, Hip *bodyfit.Node
}

// ClothOverlay poses a cloth mesh on the tracked player and deforms it
// every frame from three anchor heights.
type ClothOverlay struct {
	refs     ClothRefs
	cfg      ClothConfig
	log      *slog.Logger
	vertices []r3.Vec
	posed    bool
}

// NewClothOverlay validates refs and returns a ClothOverlay. A missing
// reference is reported as bodyfit.ErrMissingReference.
func NewClothOverlay(refs ClothRefs, cfg ClothConfig) (*ClothOverlay, error) {
	for _, ref := range []struct {
		name string
		ok   bool
	}{
		{"cloth", refs.Cloth != nil},
		{"deformer", refs.Deformer != nil},
		{"shoulder anchor", refs.Shoulder != nil},
		{"breast anchor", refs.Breast != nil},
		{"hip anchor", refs.Hip != nil},
	} {
		if !ref.ok {
			return nil, fmt.Errorf("overlay: cloth %s: %w", ref.name, bodyfit.ErrMissingReference)
		}
	}
	for _, j := range cfg.CheckJoints {
		if !j.Valid() {
			return nil, fmt.Errorf("overlay: invalid check joint %d", int(j))
		}
	}
	if cfg.Scales == (deform.Scales{}) {
		cfg.Scales = deform.DefaultScales()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}
	refs.Cloth.Rotation = d3.Identity
	return &ClothOverlay{refs: refs, cfg: cfg, log: logger}, nil
}

// Scales returns the current deformation scales.
func (c *ClothOverlay) Scales() deform.Scales { return c.cfg.Scales }

// SetScales replaces the deformation scales used from the next Update on.
func (c *ClothOverlay) SetScales(s deform.Scales) {
	c.log.Debug("cloth scales changed", "shoulder", s.Shoulder, "breast", s.Breast, "hip", s.Hip, "tall", s.Tall)
	c.cfg.Scales = s
}

// Anchors returns the current anchor heights.
func (c *ClothOverlay) Anchors() deform.Anchors {
	return deform.Anchors{
		Shoulder: c.refs.Shoulder.Position.Y,
		Breast:   c.refs.Breast.Position.Y,
		Hip:      c.refs.Hip.Position.Y,
	}
}

// Update poses the cloth when the player is tracked and then deforms it.
// Deformation runs every frame, tracked or not.
func (c *ClothOverlay) Update(f bodyfit.Frame) {
	if f.Tracking() {
		c.track(f)
	}
	c.vertices = c.refs.Deformer.Deform(c.Anchors(), c.cfg.Scales)
}

func (c *ClothOverlay) track(f bodyfit.Frame) {
	tr := f.Tracker
	if !tr.UserDetected() {
		return
	}
	id := tr.UserIDByIndex(c.cfg.PlayerIndex)
	for _, j := range c.cfg.CheckJoints {
		if !tr.JointTracked(id, j) {
			return
		}
	}
	var pos [4]r3.Vec
	for i, j := range [4]bodyfit.Joint{bodyfit.SpineShoulder, bodyfit.SpineMid, bodyfit.ShoulderLeft, bodyfit.ShoulderRight} {
		pos[i] = tr.JointPosColorOverlay(id, j, f.Viewport)
		if d3.IsZero(pos[i]) {
			c.log.Debug("cloth pose skipped", "joint", j, "user", id)
			return
		}
	}
	spineShoulder, spineMid, left, right := pos[0], pos[1], pos[2], pos[3]
	axisX := r3.Sub(left, right)
	axisY := r3.Sub(spineShoulder, spineMid)
	axisZ := r3.Cross(axisX, axisY)
	c.refs.Cloth.Position = spineShoulder
	c.refs.Cloth.Rotation = d3.LookRotation(r3.Scale(-1, d3.Unit(axisZ)), d3.Unit(axisY))
	if !c.posed {
		c.log.Info("cloth posed on user", "user", id)
		c.posed = true
	}
}

// Vertices returns the cloth vertices deformed by the last Update in
// cloth local coordinates. The slice is overwritten by the next Update.
func (c *ClothOverlay) Vertices() []r3.Vec { return c.vertices }

// WorldVertices stores the last deformed vertices transformed by the
// cloth node pose in dst and returns it.
func (c *ClothOverlay) WorldVertices(dst []r3.Vec) []r3.Vec {
	return mesh.Transform(dst, c.vertices, c.refs.Cloth.Position, c.refs.Cloth.Rotation)
}
