package render

import (
	"io"

	"gonum.org/v1/gonum/spatial/r3"
)

// TriangleReader streams triangles. ReadTriangles returns io.EOF once
// all triangles have been read.
type TriangleReader interface {
	ReadTriangles(t []r3.Triangle) (int, error)
}

// ReadAll reads the full contents of a TriangleReader and returns the slice read.
// It does not return error on io.EOF, like the io.ReadAll implementation.
func ReadAll(r TriangleReader) ([]r3.Triangle, error) {
	var err error
	var nt int
	result := make([]r3.Triangle, 0, 1<<12)
	buf := make([]r3.Triangle, 1024)
	for {
		nt, err = r.ReadTriangles(buf)
		result = append(result, buf[:nt]...)
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}

// SliceReader is a TriangleReader over an in-memory triangle slice,
// such as a deformed mesh.
type SliceReader struct {
	buf []r3.Triangle
}

// NewSliceReader returns a reader over model. model is not copied.
func NewSliceReader(model []r3.Triangle) *SliceReader {
	return &SliceReader{buf: model}
}

// ReadTriangles implements TriangleReader.
func (b *SliceReader) ReadTriangles(t []r3.Triangle) (int, error) {
	if len(b.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(t, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

// Len returns the number of triangles left to read.
func (b *SliceReader) Len() int { return len(b.buf) }
