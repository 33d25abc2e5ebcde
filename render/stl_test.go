package render_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/bodyfit/internal/d3"
	"github.com/soypat/bodyfit/mesh"
	"github.com/soypat/bodyfit/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func tubeModel(t testing.TB) []r3.Triangle {
	m, err := mesh.Tube(0.4, 1.6, 24, 8)
	if err != nil {
		t.Fatal(err)
	}
	model, err := m.Triangles(m.Vertices)
	if err != nil {
		t.Fatal(err)
	}
	return model
}

func TestSTLCreateWriteRead(t *testing.T) {
	model := tubeModel(t)
	path := filepath.Join(t.TempDir(), "tube.stl")
	err := render.CreateSTL(path, render.NewSliceReader(model))
	if err != nil {
		t.Fatal(err)
	}
	bfile, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = render.WriteSTL(&b, model)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != len(bfile) {
		t.Fatal("WriteSTL and CreateSTL output length mismatch")
	}
	if !bytes.Equal(b.Bytes(), bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}

	output, err := render.ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(output) != len(model) {
		t.Fatalf("read %d triangles, wrote %d", len(output), len(model))
	}
	const tol = 1e-6 // float32 storage.
	for i := range model {
		for j := range model[i] {
			if !d3.EqualWithin(model[i][j], output[i][j], tol) {
				t.Fatalf("triangle %d vertex %d: got %v, want %v", i, j, output[i][j], model[i][j])
			}
		}
	}
}

func TestSTLErrors(t *testing.T) {
	if err := render.WriteSTL(&bytes.Buffer{}, nil); err == nil {
		t.Error("expected error writing empty model")
	}
	if _, err := render.ReadSTL(bytes.NewReader(make([]byte, 10))); err == nil {
		t.Error("expected error for truncated header")
	}
	var b bytes.Buffer
	if err := render.WriteSTL(&b, tubeModel(t)); err != nil {
		t.Fatal(err)
	}
	truncated := b.Bytes()[:b.Len()-20]
	if _, err := render.ReadSTL(bytes.NewReader(truncated)); err == nil {
		t.Error("expected error for truncated triangle data")
	}
}

func TestReadAll(t *testing.T) {
	model := tubeModel(t)
	got, err := render.ReadAll(render.NewSliceReader(model))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(model) {
		t.Fatalf("got %d triangles, want %d", len(got), len(model))
	}
}
