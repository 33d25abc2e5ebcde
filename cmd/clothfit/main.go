// Command clothfit plays back a recorded tracking session, fits a cloth
// mesh to the tracked user and writes the deformed mesh and a preview.
//
// Usage:
//
//	clothfit -config session.yaml -replay recording.yaml -out cloth.stl -png cloth.png
//
// With -watch the configuration file is watched after playback ends and
// the outputs are rewritten on every change until interrupted.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/soypat/bodyfit"
	"github.com/soypat/bodyfit/config"
	"github.com/soypat/bodyfit/deform"
	"github.com/soypat/bodyfit/gesture"
	"github.com/soypat/bodyfit/mesh"
	"github.com/soypat/bodyfit/overlay"
	"github.com/soypat/bodyfit/present"
	"github.com/soypat/bodyfit/render"
	"github.com/soypat/bodyfit/replay"
)

func main() {
	var (
		configPath = flag.String("config", "", "session configuration YAML file")
		replayPath = flag.String("replay", "", "recorded tracking session YAML file")
		outSTL     = flag.String("out", "cloth.stl", "deformed cloth STL output file")
		outPNG     = flag.String("png", "", "deformed cloth PNG preview output file")
		watch      = flag.Bool("watch", false, "rewrite outputs when the configuration file changes")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *watch && *configPath == "" {
		log.Fatal("-watch requires -config")
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	m, err := loadMesh(cfg.Mesh, logger)
	if err != nil {
		log.Fatal(err)
	}
	s, err := newSession(cfg, m, logger)
	if err != nil {
		log.Fatal(err)
	}
	if *replayPath != "" {
		rec, err := replay.Load(*replayPath)
		if err != nil {
			log.Fatal(err)
		}
		player, err := replay.NewPlayer(rec, logger)
		if err != nil {
			log.Fatal(err)
		}
		if err := s.play(player); err != nil {
			log.Fatal(err)
		}
	} else {
		// No tracking: deform in place.
		s.update(bodyfit.Frame{Viewport: cfg.Viewport})
	}
	if err := s.write(*outSTL, *outPNG); err != nil {
		log.Fatal(err)
	}
	if !*watch {
		return
	}

	w, err := config.Watch(*configPath, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer w.Close()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	logger.Info("watching configuration", "path", *configPath)
	for {
		select {
		case next := <-w.Updates:
			s.reconfigure(next)
			s.update(bodyfit.Frame{Viewport: next.Viewport})
			if err := s.write(*outSTL, *outPNG); err != nil {
				logger.Error("writing outputs", "err", err)
			}
		case err := <-w.Errors:
			logger.Warn("configuration watch", "err", err)
		case <-interrupt:
			return
		}
	}
}

func loadMesh(cfg config.Mesh, logger *slog.Logger) (*mesh.Mesh, error) {
	if cfg.Path == "" {
		t := cfg.Tube
		return mesh.Tube(t.Radius, t.Height, t.Segments, t.Rings)
	}
	fp, err := os.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	m, err := readMesh(fp, cfg.Tolerance, logger.With("path", cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", cfg.Path, err)
	}
	return m, nil
}

// readMesh decodes a binary STL cloth. Mismatched stored normals are only
// logged since the deformer recomputes geometry from vertices; any other
// read error rejects the model.
func readMesh(r io.Reader, tolerance float64, logger *slog.Logger) (*mesh.Mesh, error) {
	tris, err := render.ReadSTL(r)
	if errors.Is(err, render.ErrNormalMismatch) {
		logger.Warn("stl normals disagree with vertices", "err", err)
	} else if err != nil {
		return nil, err
	}
	return mesh.FromTriangles(tris, tolerance)
}

// session holds the components driven each frame.
type session struct {
	cfg      config.Config
	log      *slog.Logger
	mesh     *mesh.Mesh
	anchors  [3]*bodyfit.Node
	cloth    *overlay.ClothOverlay
	skeleton *overlay.SkeletonOverlay
	joints   []*overlay.JointOverlay
	info     *bodyfit.Label
	listener *gesture.Listener
	cube     *present.Cube
}

func newSession(cfg config.Config, m *mesh.Mesh, logger *slog.Logger) (*session, error) {
	s := &session{
		cfg:      cfg,
		log:      logger,
		mesh:     m,
		skeleton: overlay.NewSkeletonOverlay(cfg.Skeleton),
		info:     &bodyfit.Label{},
	}
	for i := range s.anchors {
		s.anchors[i] = bodyfit.NewNode()
	}
	s.setAnchors(cfg.Cloth.Anchors)
	var err error
	s.cloth, err = overlay.NewClothOverlay(overlay.ClothRefs{
		Cloth:    bodyfit.NewNode(),
		Deformer: deform.New(m.Vertices),
		Shoulder: s.anchors[0],
		Breast:   s.anchors[1],
		Hip:      s.anchors[2],
	}, overlay.ClothConfig{
		PlayerIndex: cfg.Cloth.PlayerIndex,
		CheckJoints: cfg.Cloth.CheckJoints,
		Scales:      cfg.Cloth.Scales,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	for _, j := range cfg.Overlay {
		jo, err := overlay.NewJointOverlay(bodyfit.NewNode(), cfg.Cloth.PlayerIndex, j)
		if err != nil {
			return nil, err
		}
		s.joints = append(s.joints, jo)
	}
	return s, nil
}

func (s *session) setAnchors(a deform.Anchors) {
	s.anchors[0].Position.Y = a.Shoulder
	s.anchors[1].Position.Y = a.Breast
	s.anchors[2].Position.Y = a.Hip
}

// play runs every frame of the recording through the session.
func (s *session) play(player *replay.Player) error {
	var err error
	s.listener, err = gesture.NewListener(player, s.info, s.log)
	if err != nil {
		return err
	}
	pcfg := s.cfg.Presentation.Config
	pcfg.Logger = s.log
	s.cube, err = present.NewCube(bodyfit.NewNode(), s.cfg.Presentation.Sides, s.cfg.Presentation.Slides, s.listener, pcfg)
	if err != nil {
		return err
	}
	for player.Next() {
		f := player.Frame(s.cfg.Viewport)
		if player.Index() == 0 {
			s.cube.Start(f.Now)
		}
		player.Dispatch(s.listener)
		s.listener.Update(f.Now)
		s.update(f)
		s.cube.Update(f)
	}
	s.log.Info("playback finished", "frames", player.Len(), "slide", s.cube.Slide(), "info", s.info.Text)
	return nil
}

func (s *session) update(f bodyfit.Frame) {
	s.skeleton.Update(f)
	for _, jo := range s.joints {
		jo.Update(f)
	}
	s.cloth.Update(f)
}

// reconfigure applies the live tunable parts of cfg.
func (s *session) reconfigure(cfg config.Config) {
	s.cfg.Cloth.Anchors = cfg.Cloth.Anchors
	s.cfg.Viewport = cfg.Viewport
	s.setAnchors(cfg.Cloth.Anchors)
	s.cloth.SetScales(cfg.Cloth.Scales)
}

func (s *session) write(stlPath, pngPath string) error {
	model, err := s.mesh.Triangles(s.cloth.Vertices())
	if err != nil {
		return err
	}
	if stlPath != "" {
		if err := render.CreateSTL(stlPath, render.NewSliceReader(model)); err != nil {
			return err
		}
		s.log.Info("wrote cloth mesh", "path", stlPath, "triangles", len(model))
	}
	if pngPath != "" {
		snap := s.cfg.Snapshot
		if err := render.SavePNG(pngPath, model, render.FrontView, snap.Width, snap.Height); err != nil {
			return err
		}
		s.log.Info("wrote preview", "path", pngPath)
	}
	return nil
}
