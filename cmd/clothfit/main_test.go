package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/soypat/bodyfit/mesh"
	"github.com/soypat/bodyfit/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tubeSTL(t *testing.T) ([]byte, *mesh.Mesh) {
	t.Helper()
	m, err := mesh.Tube(0.4, 1.6, 12, 3)
	require.NoError(t, err)
	model, err := m.Triangles(m.Vertices)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, render.WriteSTL(&buf, model))
	return buf.Bytes(), m
}

func TestReadMeshFlippedNormal(t *testing.T) {
	b, want := tubeSTL(t)
	// Negate the stored normal of the first triangle by flipping the sign
	// bit of each little endian float32 after the 84 byte header.
	for _, i := range []int{87, 91, 95} {
		b[i] ^= 0x80
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	m, err := readMesh(bytes.NewReader(b), 0, logger)
	require.NoError(t, err)
	assert.Len(t, m.Faces, len(want.Faces))
	assert.Contains(t, logs.String(), "stl normals disagree")
}

func TestReadMeshRejectsTruncated(t *testing.T) {
	b, _ := tubeSTL(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := readMesh(bytes.NewReader(b[:len(b)-10]), 0, logger)
	require.Error(t, err)
	assert.NotErrorIs(t, err, render.ErrNormalMismatch)
}
