package gesture

import (
	"testing"
	"time"

	"github.com/soypat/bodyfit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

type fakeSource struct {
	primary   bodyfit.UserID
	requested map[bodyfit.UserID][]bodyfit.Gesture
}

func (s *fakeSource) PrimaryUserID() bodyfit.UserID { return s.primary }

func (s *fakeSource) DetectGesture(id bodyfit.UserID, g bodyfit.Gesture) {
	if s.requested == nil {
		s.requested = make(map[bodyfit.UserID][]bodyfit.Gesture)
	}
	s.requested[id] = append(s.requested[id], g)
}

func newListener(t *testing.T) (*Listener, *fakeSource, *bodyfit.Label) {
	t.Helper()
	src := &fakeSource{primary: 7}
	info := &bodyfit.Label{}
	l, err := NewListener(src, info, nil)
	require.NoError(t, err)
	return l, src, info
}

func TestNewListenerMissingSource(t *testing.T) {
	_, err := NewListener(nil, nil, nil)
	assert.ErrorIs(t, err, bodyfit.ErrMissingReference)
}

func TestUserDetectedAndLost(t *testing.T) {
	l, src, info := newListener(t)
	l.UserDetected(3, 1)
	assert.Empty(t, src.requested, "non primary users are ignored")
	assert.Empty(t, info.Text)

	l.UserDetected(7, 0)
	assert.Equal(t, []bodyfit.Gesture{bodyfit.SwipeLeft, bodyfit.SwipeRight, bodyfit.RaiseLeftHand}, src.requested[7])
	assert.Equal(t, "Swipe left or right to change the slides.", info.Text)

	l.UserLost(3, 1)
	assert.NotEmpty(t, info.Text)
	l.UserLost(7, 0)
	assert.Empty(t, info.Text)
}

func TestGestureLatches(t *testing.T) {
	l, _, info := newListener(t)
	assert.False(t, l.GestureCompleted(Event{User: 2, Gesture: bodyfit.SwipeLeft}))
	assert.False(t, l.SwipeLeft())

	assert.True(t, l.GestureCompleted(Event{User: 7, Gesture: bodyfit.SwipeLeft}))
	assert.Equal(t, "SwipeLeft detected", info.Text)
	assert.True(t, l.SwipeLeft())
	assert.False(t, l.SwipeLeft(), "latch is consumed once")
	assert.False(t, l.SwipeRight())

	l.GestureCompleted(Event{User: 7, Gesture: bodyfit.SwipeRight})
	l.GestureCompleted(Event{User: 7, Gesture: bodyfit.RaiseLeftHand})
	assert.True(t, l.SwipeRight())
	assert.True(t, l.RaiseLeftHand())
	assert.False(t, l.RaiseLeftHand())

	l.GestureCompleted(Event{User: 7, Gesture: bodyfit.Jump})
	assert.Equal(t, "Jump detected", info.Text)
	assert.False(t, l.SwipeLeft())
}

func TestGestureProgress(t *testing.T) {
	l, _, info := newListener(t)
	now := 10 * time.Second
	l.GestureInProgress(Event{User: 7, Gesture: bodyfit.ZoomIn, Progress: 0.4, ScreenPos: r3.Vec{Z: 1.5}}, now)
	assert.Empty(t, info.Text, "progress at or below half is not shown")

	l.GestureInProgress(Event{User: 7, Gesture: bodyfit.ZoomIn, Progress: 0.8, ScreenPos: r3.Vec{Z: 1.5}}, now)
	assert.Equal(t, "ZoomIn 150%", info.Text)
	l.GestureInProgress(Event{User: 7, Gesture: bodyfit.Wheel, Progress: 0.9, ScreenPos: r3.Vec{Z: 45.4}}, now)
	assert.Equal(t, "Wheel 45 degrees", info.Text)

	l.Update(now + time.Second)
	assert.NotEmpty(t, info.Text)
	l.Update(now + 2*time.Second + time.Millisecond)
	assert.Empty(t, info.Text, "stale progress is cleared")

	l.GestureInProgress(Event{User: 7, Gesture: bodyfit.ZoomOut, Progress: 1, ScreenPos: r3.Vec{Z: 0.5}}, now)
	assert.Equal(t, "ZoomOut 50%", info.Text)
	assert.False(t, l.GestureCancelled(Event{User: 1, Gesture: bodyfit.ZoomOut}))
	assert.NotEmpty(t, info.Text)
	assert.True(t, l.GestureCancelled(Event{User: 7, Gesture: bodyfit.ZoomOut}))
	assert.Empty(t, info.Text)

	// Cancelling without a displayed progress keeps the text.
	l.GestureCompleted(Event{User: 7, Gesture: bodyfit.SwipeLeft})
	l.GestureCancelled(Event{User: 7, Gesture: bodyfit.SwipeRight})
	assert.Equal(t, "SwipeLeft detected", info.Text)
}

func TestListenerWithoutLabel(t *testing.T) {
	src := &fakeSource{primary: 1}
	l, err := NewListener(src, nil, nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		l.UserDetected(1, 0)
		l.GestureInProgress(Event{User: 1, Gesture: bodyfit.Wheel, Progress: 1}, 0)
		l.GestureCompleted(Event{User: 1, Gesture: bodyfit.SwipeRight})
		l.GestureCancelled(Event{User: 1})
		l.Update(time.Minute)
		l.UserLost(1, 0)
	})
	assert.True(t, l.SwipeRight())
}
