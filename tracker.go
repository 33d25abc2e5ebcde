package bodyfit

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrMissingReference is returned by component constructors when a
// required reference (mesh, anchor, scene node) was not supplied.
// It is a configuration error: the component is not created and
// performs no per-frame work.
var ErrMissingReference = errors.New("missing required reference")

// UserID identifies a tracked user. The zero UserID means no user.
type UserID int64

// Viewport is the pixel rectangle of the camera joints are projected onto.
type Viewport struct {
	X, Y, W, H float64
}

// Tracker is a read-only body tracking source.
// Positions equal to the zero vector mean the position is unavailable.
type Tracker interface {
	// Initialized reports whether the sensor is running.
	Initialized() bool
	// UserDetected reports whether any user is currently tracked.
	UserDetected() bool
	PrimaryUserID() UserID
	// UserIDByIndex returns the ID of the i'th tracked user, or 0.
	UserIDByIndex(i int) UserID
	JointTracked(id UserID, j Joint) bool
	// JointPosColorOverlay returns the position of joint j projected
	// over the colour camera image shown in vp.
	JointPosColorOverlay(id UserID, j Joint, vp Viewport) r3.Vec
	// JointOrientation returns the joint orientation. If flip is set
	// the orientation is mirrored.
	JointOrientation(id UserID, j Joint, flip bool) r3.Rotation
}

// Key is a keyboard key components react to.
type Key int

const (
	KeyPageUp Key = iota + 1
	KeyPageDown
)

func (k Key) String() string {
	switch k {
	case KeyPageUp:
		return "PageUp"
	case KeyPageDown:
		return "PageDown"
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

func (k Key) MarshalText() ([]byte, error) {
	if k != KeyPageUp && k != KeyPageDown {
		return nil, fmt.Errorf("invalid key %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText parses a key by its name.
func (k *Key) UnmarshalText(text []byte) error {
	switch string(text) {
	case "PageUp":
		*k = KeyPageUp
	case "PageDown":
		*k = KeyPageDown
	default:
		return fmt.Errorf("unknown key %q", text)
	}
	return nil
}

// Frame is the state snapshot handed to components on every tick.
type Frame struct {
	// Tracker may be nil when no tracking source is connected.
	Tracker  Tracker
	Viewport Viewport
	// Now is the time elapsed since the session started.
	Now time.Duration
	// Delta is the time elapsed since the previous frame.
	Delta time.Duration
	// Keys holds the keys pressed down during this frame.
	Keys []Key
}

// KeyDown reports whether k was pressed this frame.
func (f Frame) KeyDown(k Key) bool {
	for _, key := range f.Keys {
		if key == k {
			return true
		}
	}
	return false
}

// Tracking reports whether the frame carries an initialized tracker.
func (f Frame) Tracking() bool {
	return f.Tracker != nil && f.Tracker.Initialized()
}
