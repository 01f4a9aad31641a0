package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softraster/internal/mathutil"
	"softraster/internal/mesh"
	"softraster/internal/raster"
	"softraster/internal/shader"
)

var white = mathutil.Vec4{1, 1, 1, 1}

func flat(model mathutil.Mat4) raster.Shader {
	return &shader.Flat{Transform: shader.Transform{Model: model}, Color: white}
}

func painted(fb *raster.FrameBuffer) int {
	n := 0
	for i := 3; i < len(fb.Color); i += 4 {
		if fb.Color[i] != 0 {
			n++
		}
	}
	return n
}

func TestParseTopology(t *testing.T) {
	for _, topo := range []Topology{Triangles, Lines, Points} {
		got, err := ParseTopology(" " + topo.String())
		require.NoError(t, err)
		assert.Equal(t, topo, got)
	}
	_, err := ParseTopology("strips")
	assert.True(t, errors.Is(err, raster.ErrInvalidArgument))
	assert.Equal(t, "Topology(7)", Topology(7).String())
}

func TestFit(t *testing.T) {
	m := mesh.Cube()
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Add(mathutil.Vec3{10, -3, 2})
	}
	model := Fit(m, mathutil.Vec3{}, 0)
	got := model.MulPoint(mathutil.Vec3{10.5, -2.5, 2.5})
	assert.InDeltaSlice(t, []float64{1, 1, 1}, got[:], 1e-9)

	model = Fit(m, mathutil.Vec3{}, 0.5)
	got = model.MulPoint(mathutil.Vec3{9.5, -3.5, 1.5})
	assert.InDeltaSlice(t, []float64{-0.5, -0.5, -0.5}, got[:], 1e-9)

	// A quarter turn about Z keeps the cube inside the unit square.
	model = Fit(mesh.Cube(), mathutil.Vec3{0, 0, 90}, 0)
	got = model.MulPoint(mathutil.Vec3{0.5, 0.5, 0})
	assert.InDelta(t, 1, got[0]*got[0], 1e-9)
	assert.InDelta(t, 1, got[1]*got[1], 1e-9)

	assert.True(t, Fit(&mesh.Mesh{}, mathutil.Vec3{}, 0).IsIdentity())
}

func TestDrawPlaneCulling(t *testing.T) {
	for cull, want := range map[raster.CullMode]int{raster.CullNone: 64, raster.CullBack: 64, raster.CullFront: 0} {
		fb := raster.NewFrameBuffer(16, 16)
		fb.Cull = cull
		stats, err := New(fb, flat(mathutil.Mat4Identity()), 2).Draw(context.Background(), mesh.Plane(), Triangles)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Faces)
		assert.Equal(t, int64(2), stats.Primitives)
		assert.Equal(t, want, painted(fb), cull.String())
	}
}

func TestDrawViewportLetterbox(t *testing.T) {
	fb := raster.NewFrameBuffer(32, 16)
	_, err := New(fb, flat(mathutil.Mat4Identity()), 1).Draw(context.Background(), mesh.Plane(), Triangles)
	require.NoError(t, err)

	// The unit plane is half the shorter side and centered.
	assert.Equal(t, 64, painted(fb))
	assert.Equal(t, uint8(255), fb.ColorAt(12, 4).A)
	assert.Equal(t, uint8(255), fb.ColorAt(19, 11).A)
	assert.Zero(t, fb.ColorAt(11, 4).A)
	assert.Zero(t, fb.ColorAt(20, 11).A)
	assert.InDelta(t, 0.5, fb.DepthAt(12, 4), 1e-12)
}

func TestDrawWorkerCountDoesNotChangeDepth(t *testing.T) {
	m := mesh.Cube()
	model := Fit(m, mathutil.Vec3{25, 40, 0}, 0.1)

	draw := func(workers int) *raster.FrameBuffer {
		fb := raster.NewFrameBuffer(48, 48)
		fb.Derivatives = true
		sh, err := shader.ByName("facet", model, white)
		require.NoError(t, err)
		stats, err := New(fb, sh, workers).Draw(context.Background(), m, Triangles)
		require.NoError(t, err)
		assert.Equal(t, int64(12), stats.Faces)
		return fb
	}

	one := draw(1)
	many := draw(8)
	assert.Equal(t, one.ZBuf, many.ZBuf)
	assert.Equal(t, painted(one), painted(many))
	assert.Greater(t, painted(one), 48*48/4)
}

func TestDrawLinesAndPoints(t *testing.T) {
	fb := raster.NewFrameBuffer(16, 16)
	stats, err := New(fb, flat(mathutil.Mat4Identity()), 2).Draw(context.Background(), mesh.Plane(), Lines)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.Primitives)
	assert.Equal(t, uint8(255), fb.ColorAt(8, 4).A)
	assert.Zero(t, fb.ColorAt(6, 8).A)

	fb = raster.NewFrameBuffer(16, 16)
	stats, err = New(fb, flat(mathutil.Mat4Identity()), 2).Draw(context.Background(), mesh.Plane(), Points)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.Primitives)
	assert.Equal(t, 4, painted(fb))
	for _, p := range [][2]int{{4, 4}, {12, 4}, {4, 12}, {12, 12}} {
		assert.Equal(t, uint8(255), fb.ColorAt(p[0], p[1]).A, "%v", p)
	}
}

// dropAttrs strips the attributes of vertices right of the origin so that
// their lines fail.
type dropAttrs struct{ shader.Flat }

func (s *dropAttrs) Vertex(in raster.Vertex) raster.Vertex {
	out := s.Flat.Vertex(in)
	if out.X > 0 {
		out.Attrs = nil
	}
	return out
}

func TestDrawCountsLineErrors(t *testing.T) {
	fb := raster.NewFrameBuffer(16, 16)
	sh := &dropAttrs{shader.Flat{Transform: shader.Transform{Model: mathutil.Mat4Identity()}, Color: white}}
	stats, err := New(fb, sh, 1).Draw(context.Background(), mesh.Plane(), Lines)
	require.Error(t, err)
	assert.True(t, errors.Is(err, raster.ErrInvalidArgument))
	assert.Equal(t, int64(2), stats.Errors)
	assert.Equal(t, int64(2), stats.Faces)
}

func TestDrawRejectsBadInput(t *testing.T) {
	fb := raster.NewFrameBuffer(4, 4)
	r := New(fb, flat(mathutil.Mat4Identity()), 0)
	assert.Positive(t, r.Workers())

	bad := &mesh.Mesh{Faces: []mesh.Face{{V: [3]int{0, 1, 2}}}}
	_, err := r.Draw(context.Background(), bad, Triangles)
	assert.True(t, errors.Is(err, mesh.ErrMalformed))

	_, err = r.Draw(context.Background(), mesh.Plane(), Topology(5))
	assert.True(t, errors.Is(err, raster.ErrInvalidArgument))
}

func TestDrawCancelled(t *testing.T) {
	fb := raster.NewFrameBuffer(16, 16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := New(fb, flat(mathutil.Mat4Identity()), 4).Draw(ctx, mesh.Cube(), Triangles)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Faces)
	assert.Zero(t, painted(fb))
}

func TestDrawUsesColor(t *testing.T) {
	fb := raster.NewFrameBuffer(16, 16)
	sh, err := shader.ByName("color", mathutil.Mat4Identity(), white)
	require.NoError(t, err)
	r := New(fb, sh, 1)
	blue := mathutil.Vec4{0, 0, 1, 1}
	r.Color = &blue

	_, err = r.Draw(context.Background(), mesh.Plane(), Triangles)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), fb.ColorAt(8, 8).B)
	assert.Zero(t, fb.ColorAt(8, 8).R)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	fb := raster.NewFrameBuffer(8, 8)
	_, err := New(fb, flat(mathutil.Mat4Identity()), 1).Draw(context.Background(), mesh.Plane(), Triangles)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "pipeline: draw")
	assert.Contains(t, buf.String(), "topology=triangles")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
