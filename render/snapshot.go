package render

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera used to take mesh snapshots.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye       r3.Vec
	Near, Far float64
	// Supersample renders at this multiple of the output size and
	// downsamples for antialiasing. Values below 1 are treated as 1.
	Supersample int
}

// FrontView looks at a y-up model from the front, the way a mirrored
// camera sees a tracked user.
var FrontView = View{
	Up:          r3.Vec{Y: 1},
	Eye:         r3.Vec{Z: 4.5},
	Near:        1,
	Far:         10,
	Supersample: 2,
}

// Snapshot renders model with a phong shader. The model is fitted in a
// bi-unit cube centered at the origin before rendering.
func Snapshot(model []r3.Triangle, view View, width, height int) (image.Image, error) {
	if len(model) == 0 {
		return nil, errors.New("empty triangle slice")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("snapshot size must be positive")
	}
	const fovy = 30 // vertical field of view in degrees
	scale := view.Supersample
	if scale < 1 {
		scale = 1
	}
	var (
		eye    = fauxgl.V(view.Eye.X, view.Eye.Y, view.Eye.Z)
		center = fauxgl.V(view.LookAt.X, view.LookAt.Y, view.LookAt.Z)
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	tris := make([]*fauxgl.Triangle, len(model))
	for i, t := range model {
		tris[i] = fauxgl.NewTriangleForPoints(
			fauxgl.V(t[0].X, t[0].Y, t[0].Z),
			fauxgl.V(t[1].X, t[1].Y, t[1].Z),
			fauxgl.V(t[2].X, t[2].Y, t[2].Z),
		)
	}
	mesh := fauxgl.NewTriangleMesh(tris)
	mesh.BiUnitCube()

	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)

	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	}
	return img, nil
}

// WritePNG renders a snapshot of model and encodes it as PNG to w.
func WritePNG(w io.Writer, model []r3.Triangle, view View, width, height int) error {
	img, err := Snapshot(model, view, width, height)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG renders a snapshot of model to a PNG file at path.
func SavePNG(path string, model []r3.Triangle, view View, width, height int) error {
	img, err := Snapshot(model, view, width, height)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}
