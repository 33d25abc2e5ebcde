// Package config loads the YAML configuration of a cloth fitting session.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/soypat/bodyfit"
	"github.com/soypat/bodyfit/deform"
	"github.com/soypat/bodyfit/overlay"
	"github.com/soypat/bodyfit/present"
	"gopkg.in/yaml.v3"
)

// Config is the full session configuration.
type Config struct {
	LogLevel slog.Level             `yaml:"log_level"`
	Viewport bodyfit.Viewport       `yaml:"viewport"`
	Mesh     Mesh                   `yaml:"mesh"`
	Cloth    Cloth                  `yaml:"cloth"`
	Skeleton overlay.SkeletonConfig `yaml:"skeleton"`
	// Overlay lists single joints followed by a marker node.
	Overlay      []bodyfit.Joint `yaml:"overlay"`
	Presentation Presentation    `yaml:"presentation"`
	Snapshot     Snapshot        `yaml:"snapshot"`
}

// Mesh selects the cloth mesh. When Path is empty a tube is generated.
type Mesh struct {
	// Path of a binary STL file.
	Path string `yaml:"path"`
	// Tolerance used to weld STL vertices, zero infers it.
	Tolerance float64 `yaml:"tolerance"`
	Tube      Tube    `yaml:"tube"`
}

// Tube is a generated open cylinder mesh.
type Tube struct {
	Radius   float64 `yaml:"radius"`
	Height   float64 `yaml:"height"`
	Segments int     `yaml:"segments"`
	Rings    int     `yaml:"rings"`
}

// Cloth configures the cloth overlay and its deformation.
type Cloth struct {
	PlayerIndex int             `yaml:"player_index"`
	CheckJoints []bodyfit.Joint `yaml:"check_joints"`
	Anchors     deform.Anchors  `yaml:"anchors"`
	Scales      deform.Scales   `yaml:"scales"`
}

// Presentation configures the slide cube.
type Presentation struct {
	present.Config `yaml:",inline"`
	Sides          int      `yaml:"sides"`
	Slides         []string `yaml:"slides"`
}

// Snapshot is the size of rendered previews in pixels.
type Snapshot struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Default returns the configuration used for missing fields.
func Default() Config {
	return Config{
		LogLevel: slog.LevelInfo,
		Viewport: bodyfit.Viewport{W: 1920, H: 1080},
		Mesh: Mesh{
			Tube: Tube{Radius: 0.25, Height: 0.7, Segments: 32, Rings: 16},
		},
		Cloth: Cloth{
			CheckJoints: []bodyfit.Joint{bodyfit.SpineShoulder, bodyfit.SpineMid, bodyfit.ShoulderLeft, bodyfit.ShoulderRight},
			Anchors:     deform.Anchors{Shoulder: 0.65, Breast: 0.45, Hip: 0.1},
			Scales:      deform.DefaultScales(),
		},
		Skeleton: overlay.SkeletonConfig{Joints: true, Bones: true},
		Presentation: Presentation{
			Config: present.DefaultConfig(),
			Sides:  4,
			Slides: []string{"slide-1"},
		},
		Snapshot: Snapshot{Width: 640, Height: 480},
	}
}

// Decode reads a YAML configuration over the defaults and validates it.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the configuration file at path.
func Load(path string) (Config, error) {
	fp, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer fp.Close()
	return Decode(fp)
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Viewport.W <= 0 || c.Viewport.H <= 0 {
		return fmt.Errorf("config: viewport size must be positive, got %gx%g", c.Viewport.W, c.Viewport.H)
	}
	if c.Mesh.Path == "" {
		t := c.Mesh.Tube
		if t.Radius <= 0 || t.Height <= 0 {
			return errors.New("config: tube radius and height must be positive")
		}
		if t.Segments < 3 || t.Rings < 1 {
			return errors.New("config: tube needs at least 3 segments and 1 ring")
		}
	}
	if c.Mesh.Tolerance < 0 {
		return errors.New("config: negative mesh tolerance")
	}
	if c.Cloth.PlayerIndex < 0 {
		return errors.New("config: negative player index")
	}
	a := c.Cloth.Anchors
	if !finite(a.Shoulder, a.Breast, a.Hip) {
		return errors.New("config: anchors must be finite")
	}
	s := c.Cloth.Scales
	if !finite(s.Shoulder, s.Breast, s.Hip, s.Tall) {
		return errors.New("config: scales must be finite")
	}
	for _, joints := range [][]bodyfit.Joint{c.Cloth.CheckJoints, c.Overlay} {
		for _, j := range joints {
			if !j.Valid() {
				return fmt.Errorf("config: invalid joint %d", int(j))
			}
		}
	}
	p := c.Presentation
	if p.Sides <= 0 || len(p.Slides) == 0 {
		return errors.New("config: presentation needs sides and slides")
	}
	if p.SpinSpeed <= 0 {
		return errors.New("config: presentation spin speed must be positive")
	}
	if c.Snapshot.Width <= 0 || c.Snapshot.Height <= 0 {
		return errors.New("config: snapshot size must be positive")
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
