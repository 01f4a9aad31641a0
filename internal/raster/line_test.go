package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softraster/internal/mathutil"
)

// depthAttr records each fragment's attribute 0 keyed by nothing but
// arrival; lines are drawn on one goroutine so the order is the walk order.
type lineProbe struct {
	attrs []mathutil.Vec4
}

func (p *lineProbe) shader() *funcShader {
	return &funcShader{fn: func(attrs []mathutil.Vec4, ctx *FragmentContext) FragmentOutput {
		if len(attrs) > 0 {
			p.attrs = append(p.attrs, attrs[0])
		}
		if ctx.InQuad() {
			panic("line fragment inside a quad")
		}
		return FragmentOutput{Color: red}
	}}
}

func TestLineDiagonal(t *testing.T) {
	rt := newRecordTarget(10, 10)
	require.NoError(t, New(rt, solid(red)).Line(vtx(0, 0, 0), vtx(9, 9, 0)))

	require.Equal(t, 10, rt.total())
	for i, p := range rt.order {
		assert.Equal(t, [2]int{i, i}, p)
	}
}

func TestLineAttributeMismatch(t *testing.T) {
	rt := newRecordTarget(10, 10)
	sh := solid(red)
	err := New(rt, sh).Line(vtx(0, 0, 0, red), vtx(9, 9, 0))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Zero(t, rt.total())
	assert.Zero(t, sh.calls.Load())
}

func TestLinePixelCount(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Vertex
		pixels int
	}{
		{"horizontal", vtx(1, 4, 0), vtx(8, 4, 0), 8},
		{"vertical reversed", vtx(3, 9, 0), vtx(3, 0, 0), 10},
		{"shallow", vtx(0, 0, 0), vtx(9, 3, 0), 10},
		{"steep reversed", vtx(7, 9, 0), vtx(5, 1, 0), 9},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rt := newRecordTarget(10, 10)
			require.NoError(t, New(rt, solid(red)).Line(tc.a, tc.b))
			assert.Equal(t, tc.pixels, rt.total())
			first := rt.order[0]
			last := rt.order[len(rt.order)-1]
			assert.Equal(t, [2]int{int(tc.a.X), int(tc.a.Y)}, first)
			assert.Equal(t, [2]int{int(tc.b.X), int(tc.b.Y)}, last)
		})
	}
}

func TestLineInterpolatesEndpoints(t *testing.T) {
	fb := NewFrameBuffer(16, 4)
	fb.DepthTest = false
	probe := &lineProbe{}
	a := mathutil.Vec4{0, 0, 0, 1}
	b := mathutil.Vec4{1, 0.5, 0.25, 1}
	require.NoError(t, New(fb, probe.shader()).Line(vtx(0, 1, 0.1, a), vtx(10, 1, 0.6, b)))

	require.Len(t, probe.attrs, 11)
	assert.True(t, probe.attrs[0].ApproxEqual(a, 1e-12))
	assert.True(t, probe.attrs[10].ApproxEqual(b, 1e-12))
	assert.True(t, probe.attrs[5].ApproxEqual(mathutil.Lerp4(a, b, 0.5), 1e-12))
	assert.InDelta(t, 0.1, fb.DepthAt(0, 1), 1e-12)
	assert.InDelta(t, 0.35, fb.DepthAt(5, 1), 1e-12)
	assert.InDelta(t, 0.6, fb.DepthAt(10, 1), 1e-12)
}

func TestLineClipsAndReinterpolates(t *testing.T) {
	rt := newRecordTarget(10, 10)
	rt.DepthTest = false
	probe := &lineProbe{}
	a := mathutil.Vec4{0, 0, 0, 0}
	b := mathutil.Vec4{1, 1, 1, 1}

	// Crosses x = 0 halfway along.
	require.NoError(t, New(rt, probe.shader()).Line(vtx(-5, 5, 0, a), vtx(5, 5, 1, b)))

	for p := range rt.writes {
		assert.True(t, p[0] >= 0 && p[0] <= 9 && p[1] >= 0 && p[1] <= 9, "%v", p)
	}
	require.Equal(t, [2]int{0, 5}, rt.order[0])
	assert.InDelta(t, 0.5, rt.DepthAt(0, 5), 1e-12)
	assert.True(t, probe.attrs[0].ApproxEqual(mathutil.Lerp4(a, b, 0.5), 1e-12))
	assert.Equal(t, [2]int{5, 5}, rt.order[len(rt.order)-1])
	assert.InDelta(t, 1, rt.DepthAt(5, 5), 1e-12)
}

func TestLineClipsBothEnds(t *testing.T) {
	rt := newRecordTarget(10, 10)
	rt.DepthTest = false
	require.NoError(t, New(rt, solid(red)).Line(vtx(-10, -10, 0), vtx(20, 20, 3)))

	require.Equal(t, 10, rt.total())
	// The true intersections are at t = 1/3 and t = 19/30.
	assert.InDelta(t, 1.0, rt.DepthAt(0, 0), 1e-12)
	assert.InDelta(t, 1.9, rt.DepthAt(9, 9), 1e-12)
}

func TestLineRejectedOutside(t *testing.T) {
	lines := [][2]Vertex{
		{vtx(-5, -1, 0), vtx(-1, -9, 0)},
		{vtx(12, 0, 0), vtx(15, 9, 0)},
		{vtx(0, 11, 0), vtx(9, 10.5, 0)},
		// Crosses the top-left corner region without entering the target.
		{vtx(-3, 1, 0), vtx(1, -3, 0)},
	}
	for i, l := range lines {
		rt := newRecordTarget(10, 10)
		require.NoError(t, New(rt, solid(red)).Line(l[0], l[1]))
		assert.Zero(t, rt.total(), "line %d", i)
	}
}

func TestLineZeroLength(t *testing.T) {
	rt := newRecordTarget(10, 10)
	require.NoError(t, New(rt, solid(red)).Line(vtx(4, 4, 0), vtx(4, 4, 0)))
	assert.Zero(t, rt.total())

	require.NoError(t, New(rt, solid(red)).Line(vtx(math.NaN(), 4, 0), vtx(4, 4, 0)))
	assert.Zero(t, rt.total())
}

func TestLineDoesNotModifyInput(t *testing.T) {
	fb := NewFrameBuffer(10, 10)
	a := vtx(-5, 5, 0, mathutil.Vec4{0, 0, 0, 0})
	b := vtx(5, 5, 1, mathutil.Vec4{1, 1, 1, 1})
	require.NoError(t, New(fb, firstAttr()).Line(a, b))

	assert.Equal(t, -5.0, a.X)
	assert.Equal(t, mathutil.Vec4{0, 0, 0, 0}, a.Attrs[0])
}

func TestClipLine(t *testing.T) {
	v0 := vtx(-4, 2, 0, mathutil.Vec4{0, 0, 0, 0})
	v1 := vtx(4, 10, 8, mathutil.Vec4{8, 8, 8, 8})
	require.True(t, clipLine(&v0, &v1, 9, 9))

	assert.InDelta(t, 0, v0.X, 1e-12)
	assert.InDelta(t, 6, v0.Y, 1e-12)
	assert.InDelta(t, 4, v0.Z, 1e-12)
	assert.InDelta(t, 3, v1.X, 1e-12)
	assert.InDelta(t, 9, v1.Y, 1e-12)
	assert.InDelta(t, 7, v1.Z, 1e-12)
	assert.True(t, v1.Attrs[0].ApproxEqual(mathutil.Vec4{7, 7, 7, 7}, 1e-12))
}

func TestRegionCode(t *testing.T) {
	assert.Zero(t, regionCode(0, 0, 9, 9))
	assert.Zero(t, regionCode(9, 9, 9, 9))
	assert.Equal(t, regionLeft|regionTop, regionCode(-1, -1, 9, 9))
	assert.Equal(t, regionRight|regionBottom, regionCode(10, 10, 9, 9))
}
