package replay

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/soypat/bodyfit"
	"github.com/soypat/bodyfit/gesture"
	"github.com/soypat/bodyfit/internal/d3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

type call struct {
	kind string
	id   bodyfit.UserID
	g    bodyfit.Gesture
}

// recorder requests every gesture it is told about on detection.
type recorder struct {
	src   gesture.Source
	want  []bodyfit.Gesture
	calls []call
}

func (r *recorder) UserDetected(id bodyfit.UserID, index int) {
	r.calls = append(r.calls, call{kind: "detected", id: id})
	for _, g := range r.want {
		r.src.DetectGesture(id, g)
	}
}

func (r *recorder) UserLost(id bodyfit.UserID, index int) {
	r.calls = append(r.calls, call{kind: "lost", id: id})
}

func (r *recorder) GestureInProgress(e gesture.Event, now time.Duration) {
	r.calls = append(r.calls, call{kind: "progress", id: e.User, g: e.Gesture})
}

func (r *recorder) GestureCompleted(e gesture.Event) bool {
	r.calls = append(r.calls, call{kind: "completed", id: e.User, g: e.Gesture})
	return true
}

func (r *recorder) GestureCancelled(e gesture.Event) bool {
	r.calls = append(r.calls, call{kind: "cancelled", id: e.User, g: e.Gesture})
	return true
}

func loadSession(t *testing.T) *Player {
	t.Helper()
	rec, err := Load("testdata/session.yaml")
	require.NoError(t, err)
	p, err := NewPlayer(rec, nil)
	require.NoError(t, err)
	return p
}

func TestLoad(t *testing.T) {
	p := loadSession(t)
	assert.Equal(t, 5, p.Len())
	assert.Equal(t, -1, p.Index())
	assert.False(t, p.Initialized())
	assert.False(t, p.UserDetected())
	assert.Equal(t, bodyfit.UserID(0), p.PrimaryUserID())
}

func TestDecodeErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":         "",
		"no frames":     "frames: []",
		"unknown field": "frames:\n  - time: 0s\n    bogus: 1\n",
		"bad joint":     "frames:\n  - users:\n      - id: 1\n        joints: {Tail: {tracked: true}}\n",
		"bad gesture":   "frames:\n  - gestures: [{user: 1, gesture: Flip, state: completed}]\n",
		"bad state":     "frames:\n  - gestures: [{user: 1, gesture: Jump, state: done}]\n",
		"time order":    "frames:\n  - time: 1s\n  - time: 500ms\n",
		"user zero":     "frames:\n  - users: [{id: 0}]\n",
		"duplicate":     "frames:\n  - users: [{id: 2}, {id: 2}]\n",
		"progress":      "frames:\n  - gestures: [{user: 1, gesture: Jump, state: progress, progress: 2}]\n",
	} {
		_, err := Decode(strings.NewReader(doc))
		assert.Error(t, err, name)
	}
	_, err := NewPlayer(nil, nil)
	assert.ErrorIs(t, err, bodyfit.ErrMissingReference)
}

func TestProjection(t *testing.T) {
	p := loadSession(t)
	require.True(t, p.Next())
	require.True(t, p.Next())
	assert.True(t, p.Initialized())
	assert.True(t, p.UserDetected())
	id := p.UserIDByIndex(0)
	assert.Equal(t, bodyfit.UserID(7), id)
	assert.Equal(t, bodyfit.UserID(0), p.UserIDByIndex(1))

	vp := bodyfit.Viewport{X: 10, Y: 20, W: 640, H: 480}
	got := p.JointPosColorOverlay(id, bodyfit.SpineShoulder, vp)
	assert.InDelta(t, 10+0.5*640, got.X, 1e-9)
	assert.InDelta(t, 20+0.3*480, got.Y, 1e-9)
	assert.InDelta(t, 2.1, got.Z, 1e-12)

	// Unavailable, untracked and unknown joints give the zero sentinel.
	assert.True(t, p.JointTracked(id, bodyfit.HandRight))
	assert.Equal(t, r3.Vec{}, p.JointPosColorOverlay(id, bodyfit.HandRight, vp))
	assert.False(t, p.JointTracked(id, bodyfit.Head))
	assert.Equal(t, r3.Vec{}, p.JointPosColorOverlay(id, bodyfit.Head, vp))
	assert.Equal(t, r3.Vec{}, p.JointPosColorOverlay(id, bodyfit.FootLeft, vp))
	assert.Equal(t, r3.Vec{}, p.JointPosColorOverlay(99, bodyfit.SpineShoulder, vp))
}

func TestJointOrientation(t *testing.T) {
	q := d3.Euler(10, 30, 0)
	rec := &Recording{Frames: []FrameRecord{{Users: []UserRecord{{
		ID: 1,
		Joints: map[bodyfit.Joint]JointRecord{
			bodyfit.Neck: {Rot: [4]float64{2 * q.Real, 2 * q.Imag, 2 * q.Jmag, 2 * q.Kmag}, Tracked: true},
			bodyfit.Head: {Tracked: true},
		},
	}}}}}
	p, err := NewPlayer(rec, nil)
	require.NoError(t, err)
	require.NoError(t, p.Seek(0))

	got := p.JointOrientation(1, bodyfit.Neck, false)
	assert.Less(t, d3.Angle(q, got), 1e-4, "recorded rotation is normalised")
	assert.Equal(t, d3.Identity, p.JointOrientation(1, bodyfit.Head, false))
	assert.Equal(t, d3.Identity, p.JointOrientation(1, bodyfit.HipLeft, false))

	// Mirrored orientation maps mirrored vectors onto mirrored vectors.
	flipped := p.JointOrientation(1, bodyfit.Neck, true)
	v := r3.Vec{X: 0.3, Y: 0.5, Z: -0.2}
	mirror := func(v r3.Vec) r3.Vec { return r3.Vec{X: -v.X, Y: v.Y, Z: v.Z} }
	assert.True(t, d3.EqualWithin(mirror(q.Rotate(v)), flipped.Rotate(mirror(v)), 1e-9))
}

func TestDispatch(t *testing.T) {
	p := loadSession(t)
	r := &recorder{src: p, want: []bodyfit.Gesture{bodyfit.SwipeLeft}}
	var frames []bodyfit.Frame
	for p.Next() {
		frames = append(frames, p.Frame(bodyfit.Viewport{W: 1, H: 1}))
		p.Dispatch(r)
	}
	assert.Equal(t, []call{
		{kind: "detected", id: 7},
		// ZoomIn was never requested.
		{kind: "completed", id: 7, g: bodyfit.SwipeLeft},
		{kind: "detected", id: 9},
		{kind: "lost", id: 9},
		{kind: "lost", id: 7},
	}, r.calls)

	require.Len(t, frames, 5)
	assert.Equal(t, time.Second, frames[2].Now)
	assert.Equal(t, 500*time.Millisecond, frames[2].Delta)
	assert.True(t, frames[2].KeyDown(bodyfit.KeyPageDown))
	assert.False(t, frames[3].KeyDown(bodyfit.KeyPageDown))
	assert.Equal(t, 2*time.Second, p.Time())
}

func TestDispatchToListener(t *testing.T) {
	p := loadSession(t)
	info := &bodyfit.Label{}
	l, err := gesture.NewListener(p, info, nil)
	require.NoError(t, err)
	require.NoError(t, p.Seek(1))
	p.Dispatch(l)
	assert.Equal(t, "Swipe left or right to change the slides.", info.Text)
	require.True(t, p.Next())
	p.Dispatch(l)
	assert.Equal(t, "SwipeLeft detected", info.Text)
	assert.True(t, l.SwipeLeft())
	assert.Error(t, p.Seek(10))
}

func TestEncodeRoundTrip(t *testing.T) {
	rec, err := Load("testdata/session.yaml")
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, Encode(&b, rec))
	got, err := Decode(&b)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}
