// Package present implements a slide presentation shown on the sides of
// a spinning cube. Slides are changed with keys, swipe gestures or
// automatically after a delay.
package present

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/soypat/bodyfit"
	"github.com/soypat/bodyfit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// stopAngle is the Euler angle difference in degrees under which a spin
// is considered finished.
const stopAngle = 1.0

// Swiper reports completed swipe gestures. Each call consumes the gesture.
type Swiper interface {
	SwipeLeft() bool
	SwipeRight() bool
}

// Config configures a Cube.
type Config struct {
	// GestureChange enables changing slides with SwipeLeft and SwipeRight.
	GestureChange bool `yaml:"gesture_change"`
	// KeyChange enables changing slides with PageDown and PageUp.
	KeyChange bool `yaml:"key_change"`
	// SpinSpeed is the slerp factor per second while spinning.
	SpinSpeed float64 `yaml:"spin_speed"`
	// AutoChange advances slides after AutoChangeDelay. The presentation
	// is paused while no user is tracked.
	AutoChange      bool          `yaml:"auto_change"`
	AutoChangeDelay time.Duration `yaml:"auto_change_delay"`
	// BehindUser reverses the side order for a cube seen from behind.
	BehindUser bool `yaml:"behind_user"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the default presentation configuration.
func DefaultConfig() Config {
	return Config{
		GestureChange:   true,
		KeyChange:       true,
		SpinSpeed:       5,
		AutoChangeDelay: 10 * time.Second,
	}
}

// Cube shows slides on its horizontal sides and spins to the side
// holding the current slide.
type Cube struct {
	cfg    Config
	log    *slog.Logger
	node   *bodyfit.Node
	swiper Swiper

	slides []string
	// faces holds the slide index shown on each side, -1 when blank.
	faces []int

	side, slide    int
	spinning       bool
	slideWaitUntil time.Duration
	target         r3.Rotation
}

// NewCube returns a cube with the given number of sides showing slides.
// swiper may be nil to disable gestures. The cube is started at time zero.
func NewCube(node *bodyfit.Node, sides int, slides []string, swiper Swiper, cfg Config) (*Cube, error) {
	if node == nil {
		return nil, fmt.Errorf("present: cube node: %w", bodyfit.ErrMissingReference)
	}
	if sides <= 0 {
		return nil, errors.New("present: cube needs at least one side")
	}
	if len(slides) == 0 {
		return nil, errors.New("present: no slides")
	}
	if cfg.SpinSpeed <= 0 || math.IsNaN(cfg.SpinSpeed) {
		return nil, fmt.Errorf("present: spin speed must be positive, got %g", cfg.SpinSpeed)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Cube{
		cfg:    cfg,
		log:    logger,
		node:   node,
		swiper: swiper,
		slides: append([]string(nil), slides...),
		faces:  make([]int, sides),
	}
	c.Start(0)
	return c, nil
}

// Start resets the presentation to the first slide on the first side
// and delays the first automatic change.
func (c *Cube) Start(now time.Duration) {
	c.slideWaitUntil = now + c.cfg.AutoChangeDelay
	c.target = c.node.Rotation
	c.spinning = false
	c.slide, c.side = 0, 0
	for i := range c.faces {
		c.faces[i] = -1
	}
	c.faces[0] = 0
}

// Slide returns the index of the current slide.
func (c *Cube) Slide() int { return c.slide }

// Side returns the index of the side facing the viewer.
func (c *Cube) Side() int { return c.side }

// Face returns the name of the slide shown on side i or the empty string
// if no slide was shown there yet.
func (c *Cube) Face(i int) string {
	if c.faces[i] < 0 {
		return ""
	}
	return c.slides[c.faces[i]]
}

// Spinning reports whether the cube is rotating to a new side.
func (c *Cube) Spinning() bool { return c.spinning }

// Target returns the rotation the cube spins toward.
func (c *Cube) Target() r3.Rotation { return c.target }

// Update handles slide change requests while idle and spins the cube
// while a change is in progress.
func (c *Cube) Update(f bodyfit.Frame) {
	if c.cfg.AutoChange && !(f.Tracking() && f.Tracker.UserDetected()) {
		return
	}
	if c.spinning {
		c.spin(f)
		return
	}
	if c.cfg.KeyChange {
		if f.KeyDown(bodyfit.KeyPageDown) {
			c.Next()
		} else if f.KeyDown(bodyfit.KeyPageUp) {
			c.Previous()
		}
	}
	if c.cfg.GestureChange && c.swiper != nil {
		if c.swiper.SwipeLeft() {
			c.Next()
		} else if c.swiper.SwipeRight() {
			c.Previous()
		}
	}
	if c.cfg.AutoChange && f.Now >= c.slideWaitUntil {
		c.Next()
	}
}

func (c *Cube) spin(f bodyfit.Frame) {
	c.node.Rotation = d3.Slerp(c.node.Rotation, c.target, c.cfg.SpinSpeed*f.Delta.Seconds())
	want := d3.EulerAngles(c.target)
	got := d3.EulerAngles(c.node.Rotation)
	if d3.DeltaAngle(want.X, got.X) < stopAngle && d3.DeltaAngle(want.Y, got.Y) < stopAngle {
		c.slideWaitUntil = f.Now + c.cfg.AutoChangeDelay
		c.spinning = false
		c.log.Debug("spin finished", "side", c.side, "slide", c.slide)
	}
}

// Next shows the next slide on the next side and starts spinning.
func (c *Cube) Next() {
	c.slide = (c.slide + 1) % len(c.slides)
	if c.cfg.BehindUser {
		c.side = c.prevSide()
	} else {
		c.side = c.nextSide()
	}
	c.rotate(1)
}

// Previous shows the previous slide on the previous side and starts spinning.
func (c *Cube) Previous() {
	if c.slide <= 0 {
		c.slide = len(c.slides) - 1
	} else {
		c.slide--
	}
	if c.cfg.BehindUser {
		c.side = c.nextSide()
	} else {
		c.side = c.prevSide()
	}
	c.rotate(-1)
}

func (c *Cube) nextSide() int { return (c.side + 1) % len(c.faces) }

func (c *Cube) prevSide() int {
	if c.side <= 0 {
		return len(c.faces) - 1
	}
	return c.side - 1
}

// rotate sets the slide on the current side and turns the target one
// side further in direction dir.
func (c *Cube) rotate(dir float64) {
	c.faces[c.side] = c.slide
	yaw := dir * 360 / float64(len(c.faces))
	if c.cfg.BehindUser {
		yaw = -yaw
	}
	c.target = d3.Mul(c.target, d3.Euler(0, yaw, 0))
	c.spinning = true
	c.log.Info("slide changed", "slide", c.slides[c.slide], "side", c.side)
}
