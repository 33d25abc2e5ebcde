// Package replay plays back recorded body tracking sessions as a
// bodyfit.Tracker.
//
// Recordings are YAML documents holding one entry per frame. Joint
// positions are stored normalised to the colour image, u and v in [0, 1]
// plus depth, so a recording can be projected onto any viewport.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/soypat/bodyfit"
	"gopkg.in/yaml.v3"
)

// Recording is a decoded tracking session.
type Recording struct {
	Frames []FrameRecord `yaml:"frames"`
}

// FrameRecord is the tracker state of a single frame.
type FrameRecord struct {
	// Time since the start of the session.
	Time     time.Duration   `yaml:"time"`
	Keys     []bodyfit.Key   `yaml:"keys,omitempty"`
	Users    []UserRecord    `yaml:"users,omitempty"`
	Gestures []GestureRecord `yaml:"gestures,omitempty"`
}

// UserRecord is a tracked user. The first user of a frame is the
// primary user.
type UserRecord struct {
	ID     bodyfit.UserID                `yaml:"id"`
	Joints map[bodyfit.Joint]JointRecord `yaml:"joints"`
}

// JointRecord holds the state of one joint.
type JointRecord struct {
	// Pos is the normalised overlay position u, v and depth.
	// The zero position means the position is unavailable.
	Pos [3]float64 `yaml:"pos"`
	// Rot is the orientation quaternion w, x, y, z. The zero value is
	// read as identity.
	Rot     [4]float64 `yaml:"rot,omitempty"`
	Tracked bool       `yaml:"tracked"`
}

// GestureState is the state of a recorded gesture event.
type GestureState int

const (
	GestureInProgress GestureState = iota
	GestureCompleted
	GestureCancelled
)

var gestureStateNames = [...]string{"progress", "completed", "cancelled"}

func (s GestureState) String() string {
	if s < 0 || int(s) >= len(gestureStateNames) {
		return fmt.Sprintf("GestureState(%d)", int(s))
	}
	return gestureStateNames[s]
}

func (s GestureState) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(gestureStateNames) {
		return nil, fmt.Errorf("invalid gesture state %d", int(s))
	}
	return []byte(gestureStateNames[s]), nil
}

func (s *GestureState) UnmarshalText(text []byte) error {
	for i, name := range gestureStateNames {
		if name == string(text) {
			*s = GestureState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown gesture state %q", text)
}

// GestureRecord is a gesture callback raised by the tracker.
type GestureRecord struct {
	User     bodyfit.UserID  `yaml:"user"`
	Gesture  bodyfit.Gesture `yaml:"gesture"`
	State    GestureState    `yaml:"state"`
	Progress float64         `yaml:"progress,omitempty"`
	Joint    bodyfit.Joint   `yaml:"joint,omitempty"`
	Screen   [3]float64      `yaml:"screen,omitempty"`
}

// Decode reads and validates a YAML recording.
func Decode(r io.Reader) (*Recording, error) {
	var rec Recording
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("replay: empty recording")
		}
		return nil, fmt.Errorf("replay: decoding recording: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Load reads the recording file at path.
func Load(path string) (*Recording, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return Decode(fp)
}

// Validate checks frames are in time order and user IDs are valid.
func (rec *Recording) Validate() error {
	if len(rec.Frames) == 0 {
		return errors.New("replay: recording has no frames")
	}
	var last time.Duration
	for i, f := range rec.Frames {
		if f.Time < last {
			return fmt.Errorf("replay: frame %d time %s before previous frame time %s", i, f.Time, last)
		}
		last = f.Time
		seen := make(map[bodyfit.UserID]bool, len(f.Users))
		for _, u := range f.Users {
			if u.ID == 0 {
				return fmt.Errorf("replay: frame %d: user ID 0 is reserved", i)
			}
			if seen[u.ID] {
				return fmt.Errorf("replay: frame %d: duplicate user %d", i, u.ID)
			}
			seen[u.ID] = true
		}
		for _, g := range f.Gestures {
			if g.Progress < 0 || g.Progress > 1 {
				return fmt.Errorf("replay: frame %d: %s progress %g out of [0, 1]", i, g.Gesture, g.Progress)
			}
		}
	}
	return nil
}

// Encode writes rec as YAML to w.
func Encode(w io.Writer, rec *Recording) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	return enc.Close()
}
