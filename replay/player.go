package replay

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/soypat/bodyfit"
	"github.com/soypat/bodyfit/gesture"
	"github.com/soypat/bodyfit/internal/d3"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ bodyfit.Tracker = (*Player)(nil)
var _ gesture.Source = (*Player)(nil)

// Player steps through a Recording and serves the current frame through
// the bodyfit.Tracker interface. The zero frame index is only reached
// after the first call to Next or Seek, before that the tracker reports
// itself uninitialized.
type Player struct {
	rec *Recording
	log *slog.Logger
	cur int
	// requested holds the gestures each user asked to be notified of.
	requested map[bodyfit.UserID]map[bodyfit.Gesture]bool

	detected, lost []userIndex
}

type userIndex struct {
	id    bodyfit.UserID
	index int
}

// NewPlayer returns a Player positioned before the first frame of rec.
// A nil logger discards log output.
func NewPlayer(rec *Recording, logger *slog.Logger) (*Player, error) {
	if rec == nil {
		return nil, fmt.Errorf("replay: recording: %w", bodyfit.ErrMissingReference)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Player{
		rec:       rec,
		log:       logger,
		cur:       -1,
		requested: make(map[bodyfit.UserID]map[bodyfit.Gesture]bool),
	}, nil
}

// Len returns the number of frames in the recording.
func (p *Player) Len() int { return len(p.rec.Frames) }

// Index returns the current frame index, -1 before the first frame.
func (p *Player) Index() int { return p.cur }

// Next advances one frame. It returns false at the end of the recording.
func (p *Player) Next() bool {
	if p.cur+1 >= len(p.rec.Frames) {
		return false
	}
	p.seek(p.cur + 1)
	return true
}

// Seek moves to frame i. Users present in frame i but not in the
// previous current frame are reported as detected on the next Dispatch
// and users that disappeared as lost.
func (p *Player) Seek(i int) error {
	if i < 0 || i >= len(p.rec.Frames) {
		return fmt.Errorf("replay: frame %d out of range [0, %d)", i, len(p.rec.Frames))
	}
	p.seek(i)
	return nil
}

func (p *Player) seek(i int) {
	var prev []UserRecord
	if p.cur >= 0 {
		prev = p.rec.Frames[p.cur].Users
	}
	p.cur = i
	next := p.rec.Frames[i].Users
	p.detected = p.detected[:0]
	p.lost = p.lost[:0]
	for idx, u := range next {
		if findUser(prev, u.ID) < 0 {
			p.detected = append(p.detected, userIndex{u.ID, idx})
		}
	}
	for idx, u := range prev {
		if findUser(next, u.ID) < 0 {
			p.lost = append(p.lost, userIndex{u.ID, idx})
			delete(p.requested, u.ID)
		}
	}
}

// Dispatch delivers the user transitions of the last Seek or Next and
// the gesture events of the current frame to h. Only gestures requested
// with DetectGesture are delivered. Handlers may request gestures from
// within UserDetected; those are delivered in the same Dispatch.
func (p *Player) Dispatch(h gesture.Handler) {
	if p.cur < 0 {
		return
	}
	for _, u := range p.lost {
		h.UserLost(u.id, u.index)
	}
	for _, u := range p.detected {
		h.UserDetected(u.id, u.index)
	}
	p.detected = p.detected[:0]
	p.lost = p.lost[:0]
	f := &p.rec.Frames[p.cur]
	for _, g := range f.Gestures {
		if !p.requested[g.User][g.Gesture] {
			continue
		}
		e := gesture.Event{
			User:      g.User,
			UserIndex: findUser(f.Users, g.User),
			Gesture:   g.Gesture,
			Progress:  g.Progress,
			Joint:     g.Joint,
			ScreenPos: vec(g.Screen),
		}
		switch g.State {
		case GestureInProgress:
			h.GestureInProgress(e, f.Time)
		case GestureCompleted:
			h.GestureCompleted(e)
		case GestureCancelled:
			h.GestureCancelled(e)
		}
	}
}

// Frame returns the frame snapshot of the current frame for viewport vp.
func (p *Player) Frame(vp bodyfit.Viewport) bodyfit.Frame {
	f := bodyfit.Frame{Tracker: p, Viewport: vp}
	if p.cur < 0 {
		return f
	}
	rec := p.rec.Frames[p.cur]
	f.Now = rec.Time
	if p.cur > 0 {
		f.Delta = rec.Time - p.rec.Frames[p.cur-1].Time
	}
	f.Keys = rec.Keys
	return f
}

// Time returns the time of the current frame.
func (p *Player) Time() time.Duration {
	if p.cur < 0 {
		return 0
	}
	return p.rec.Frames[p.cur].Time
}

// DetectGesture requests delivery of gesture g events of user id.
func (p *Player) DetectGesture(id bodyfit.UserID, g bodyfit.Gesture) {
	m := p.requested[id]
	if m == nil {
		m = make(map[bodyfit.Gesture]bool)
		p.requested[id] = m
	}
	m[g] = true
	p.log.Debug("gesture detection requested", "user", id, "gesture", g)
}

func (p *Player) users() []UserRecord {
	if p.cur < 0 {
		return nil
	}
	return p.rec.Frames[p.cur].Users
}

func (p *Player) joint(id bodyfit.UserID, j bodyfit.Joint) (JointRecord, bool) {
	users := p.users()
	i := findUser(users, id)
	if i < 0 {
		return JointRecord{}, false
	}
	jr, ok := users[i].Joints[j]
	return jr, ok
}

func (p *Player) Initialized() bool { return p.cur >= 0 }

func (p *Player) UserDetected() bool { return len(p.users()) > 0 }

// PrimaryUserID returns the first user of the current frame.
func (p *Player) PrimaryUserID() bodyfit.UserID { return p.UserIDByIndex(0) }

func (p *Player) UserIDByIndex(i int) bodyfit.UserID {
	users := p.users()
	if i < 0 || i >= len(users) {
		return 0
	}
	return users[i].ID
}

func (p *Player) JointTracked(id bodyfit.UserID, j bodyfit.Joint) bool {
	jr, ok := p.joint(id, j)
	return ok && jr.Tracked
}

// JointPosColorOverlay projects the recorded normalised position onto vp.
// Untracked or unavailable joints return the zero vector.
func (p *Player) JointPosColorOverlay(id bodyfit.UserID, j bodyfit.Joint, vp bodyfit.Viewport) r3.Vec {
	jr, ok := p.joint(id, j)
	if !ok || !jr.Tracked || jr.Pos == ([3]float64{}) {
		return r3.Vec{}
	}
	return r3.Vec{
		X: vp.X + jr.Pos[0]*vp.W,
		Y: vp.Y + jr.Pos[1]*vp.H,
		Z: jr.Pos[2],
	}
}

// JointOrientation returns the recorded joint orientation, mirrored
// about the vertical plane when flip is set.
func (p *Player) JointOrientation(id bodyfit.UserID, j bodyfit.Joint, flip bool) r3.Rotation {
	jr, ok := p.joint(id, j)
	if !ok {
		return d3.Identity
	}
	q := quat.Number{Real: jr.Rot[0], Imag: jr.Rot[1], Jmag: jr.Rot[2], Kmag: jr.Rot[3]}
	n := quat.Abs(q)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return d3.Identity
	}
	q = quat.Scale(1/n, q)
	if flip {
		q.Jmag, q.Kmag = -q.Jmag, -q.Kmag
	}
	return r3.Rotation(q)
}

func findUser(users []UserRecord, id bodyfit.UserID) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }
