package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soypat/bodyfit"
	"github.com/soypat/bodyfit/deform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	cfg, err := Load("testdata/session.yaml")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, bodyfit.Viewport{W: 1280, H: 720}, cfg.Viewport)
	assert.Equal(t, 24, cfg.Mesh.Tube.Segments)
	assert.Equal(t, deform.Scales{Shoulder: 1.2, Breast: 1.0, Hip: 0.9, Tall: 1.1}, cfg.Cloth.Scales)
	assert.Equal(t, []bodyfit.Joint{bodyfit.HandRight, bodyfit.HandLeft}, cfg.Overlay)
	assert.False(t, cfg.Skeleton.Bones)
	assert.True(t, cfg.Presentation.AutoChange)
	assert.Equal(t, 8*time.Second, cfg.Presentation.AutoChangeDelay)
	assert.Equal(t, []string{"welcome", "fitting", "thanks"}, cfg.Presentation.Slides)
	// Unset fields keep their defaults.
	assert.Equal(t, 5.0, cfg.Presentation.SpinSpeed)
	assert.True(t, cfg.Presentation.KeyChange)
}

func TestDecodeInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field": "colour: red",
		"bad joint":     "overlay: [Tail]",
		"viewport":      "viewport: {w: 0, h: 10}",
		"tube":          "mesh: {tube: {segments: 2}}",
		"tolerance":     "mesh: {path: a.stl, tolerance: -1}",
		"inf scale":     "cloth: {scales: {shoulder: .inf}}",
		"nan anchor":    "cloth: {anchors: {shoulder: .nan}}",
		"player":        "cloth: {player_index: -1}",
		"sides":         "presentation: {sides: 0}",
		"slides":        "presentation: {slides: []}",
		"spin":          "presentation: {spin_speed: 0}",
		"snapshot":      "snapshot: {width: 0}",
		"log level":     "log_level: loud",
	} {
		_, err := Decode(strings.NewReader(doc))
		assert.Error(t, err, name)
	}
	// A mesh file makes the tube settings irrelevant.
	_, err := Decode(strings.NewReader("mesh: {path: cloth.stl, tube: {segments: 0}}"))
	assert.NoError(t, err)
}

func TestDecodeScalesUnbounded(t *testing.T) {
	// Zero tall flattens the cloth onto its top, negative scales mirror it.
	cfg, err := Decode(strings.NewReader("cloth: {scales: {shoulder: -1, breast: 0, hip: 2.5, tall: 0}}"))
	require.NoError(t, err)
	assert.Equal(t, deform.Scales{Shoulder: -1, Breast: 0, Hip: 2.5, Tall: 0}, cfg.Cloth.Scales)
}

func TestWatcher(t *testing.T) {
	if testing.Short() {
		t.Skip("file system watcher test")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "bodyfit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cloth: {scales: {shoulder: 1, breast: 1, hip: 1, tall: 1}}\n"), 0o644))

	w, err := Watch(path, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)
	defer w.Close()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("cloth: {scales: {shoulder: 2, breast: 1, hip: 1, tall: 1}}\n"), 0o644))

	select {
	case cfg := <-w.Updates:
		assert.Equal(t, 2.0, cfg.Cloth.Scales.Shoulder)
	case err := <-w.Errors:
		t.Fatal(err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	time.Sleep(3 * debounce)
	require.NoError(t, os.WriteFile(path, []byte("viewport: {w: 0}\n"), 0o644))
	select {
	case err := <-w.Errors:
		assert.Error(t, err)
	case cfg := <-w.Updates:
		t.Fatalf("invalid config delivered: %+v", cfg)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	_, ok := <-w.Updates
	assert.False(t, ok, "updates closed")
}

func TestWatcherLastWriteWins(t *testing.T) {
	if testing.Short() {
		t.Skip("file system watcher test")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "bodyfit.yaml")
	write := func(shoulder string) {
		t.Helper()
		doc := "cloth: {scales: {shoulder: " + shoulder + ", breast: 1, hip: 1, tall: 1}}\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	}
	write("1")
	w, err := Watch(path, nil)
	require.NoError(t, err)
	defer w.Close()

	// Second edit lands inside the quiet period of the first one.
	write("2")
	time.Sleep(70 * time.Millisecond)
	write("3")

	var last float64
	timeout := time.After(2 * time.Second)
	for last != 3 {
		select {
		case cfg := <-w.Updates:
			last = cfg.Cloth.Scales.Shoulder
		case err := <-w.Errors:
			t.Fatal(err)
		case <-timeout:
			t.Fatalf("final edit lost: last delivered shoulder=%g, file has 3", last)
		}
	}
	// Nothing stale follows the final edit.
	select {
	case cfg := <-w.Updates:
		assert.Equal(t, 3.0, cfg.Cloth.Scales.Shoulder)
	case <-time.After(3 * debounce):
	}
}
