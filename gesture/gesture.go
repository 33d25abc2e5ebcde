// Package gesture turns tracker gesture callbacks into latched slide
// commands and user facing hint text.
package gesture

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/soypat/bodyfit"
	"gonum.org/v1/gonum/spatial/r3"
)

// progressTimeout is how long a progress message stays on screen
// without a new progress event.
const progressTimeout = 2 * time.Second

// Source is the part of a tracker gesture detection is requested from.
type Source interface {
	PrimaryUserID() bodyfit.UserID
	DetectGesture(id bodyfit.UserID, g bodyfit.Gesture)
}

// Event describes a gesture of a user.
type Event struct {
	User      bodyfit.UserID
	UserIndex int
	Gesture   bodyfit.Gesture
	// Progress is in [0, 1]. Only set for in-progress events.
	Progress float64
	Joint    bodyfit.Joint
	// ScreenPos carries gesture specific data. Z holds the zoom factor
	// for zoom gestures and the angle in degrees for Wheel.
	ScreenPos r3.Vec
}

// Handler receives the user and gesture callbacks of a tracker.
type Handler interface {
	UserDetected(id bodyfit.UserID, index int)
	UserLost(id bodyfit.UserID, index int)
	GestureInProgress(e Event, now time.Duration)
	GestureCompleted(e Event) bool
	GestureCancelled(e Event) bool
}

var _ Handler = (*Listener)(nil)

// Listener handles gestures of the primary user only.
type Listener struct {
	src  Source
	info *bodyfit.Label
	log  *slog.Logger

	progressDisplayed bool
	progressTime      time.Duration

	swipeLeft     bool
	swipeRight    bool
	raiseLeftHand bool
}

// NewListener returns a Listener bound to src. info may be nil in which
// case no text is shown. A nil logger discards log output.
func NewListener(src Source, info *bodyfit.Label, logger *slog.Logger) (*Listener, error) {
	if src == nil {
		return nil, fmt.Errorf("gesture: source: %w", bodyfit.ErrMissingReference)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Listener{src: src, info: info, log: logger}, nil
}

func (l *Listener) primary(id bodyfit.UserID) bool {
	return id == l.src.PrimaryUserID()
}

// UserDetected requests the slide gestures for the primary user.
func (l *Listener) UserDetected(id bodyfit.UserID, index int) {
	if !l.primary(id) {
		return
	}
	l.src.DetectGesture(id, bodyfit.SwipeLeft)
	l.src.DetectGesture(id, bodyfit.SwipeRight)
	l.src.DetectGesture(id, bodyfit.RaiseLeftHand)
	l.info.SetText("Swipe left or right to change the slides.")
	l.log.Info("user detected", "user", id, "index", index)
}

func (l *Listener) UserLost(id bodyfit.UserID, index int) {
	if !l.primary(id) {
		return
	}
	l.info.SetText("")
	l.log.Info("user lost", "user", id, "index", index)
}

// GestureInProgress shows the progress of zoom and wheel gestures once
// past halfway.
func (l *Listener) GestureInProgress(e Event, now time.Duration) {
	if !l.primary(e.User) || l.info == nil {
		return
	}
	if e.Progress <= 0.5 {
		return
	}
	switch e.Gesture {
	case bodyfit.ZoomIn, bodyfit.ZoomOut:
		l.info.SetText(fmt.Sprintf("%s %.0f%%", e.Gesture, e.ScreenPos.Z*100))
	case bodyfit.Wheel:
		l.info.SetText(fmt.Sprintf("%s %.0f degrees", e.Gesture, e.ScreenPos.Z))
	default:
		return
	}
	l.progressDisplayed = true
	l.progressTime = now
}

// GestureCompleted latches slide gestures. It returns false for
// gestures of non primary users.
func (l *Listener) GestureCompleted(e Event) bool {
	if !l.primary(e.User) {
		return false
	}
	l.info.SetText(e.Gesture.String() + " detected")
	switch e.Gesture {
	case bodyfit.SwipeLeft:
		l.swipeLeft = true
	case bodyfit.SwipeRight:
		l.swipeRight = true
	case bodyfit.RaiseLeftHand:
		l.raiseLeftHand = true
	}
	l.log.Debug("gesture completed", "gesture", e.Gesture, "user", e.User)
	return true
}

// GestureCancelled clears a displayed progress message.
func (l *Listener) GestureCancelled(e Event) bool {
	if !l.primary(e.User) {
		return false
	}
	if l.progressDisplayed {
		l.progressDisplayed = false
		l.info.SetText("")
	}
	return true
}

// Update clears a progress message shown for longer than two seconds.
func (l *Listener) Update(now time.Duration) {
	if l.progressDisplayed && now-l.progressTime > progressTimeout {
		l.progressDisplayed = false
		l.info.SetText("")
		l.log.Debug("forced progress to end")
	}
}

// SwipeLeft reports and clears a completed SwipeLeft.
func (l *Listener) SwipeLeft() bool { return consume(&l.swipeLeft) }

// SwipeRight reports and clears a completed SwipeRight.
func (l *Listener) SwipeRight() bool { return consume(&l.swipeRight) }

// RaiseLeftHand reports and clears a completed RaiseLeftHand.
func (l *Listener) RaiseLeftHand() bool { return consume(&l.raiseLeftHand) }

func consume(latch *bool) bool {
	if *latch {
		*latch = false
		return true
	}
	return false
}
