// Package raster scan-converts screen-space points, lines and triangles
// into a Target, calling a Shader for every covered pixel.
//
// A Rasterizer is safe for concurrent use. Pixels are guarded by the
// target's per-pixel locks only; the depth test decides between competing
// writers of one pixel.
package raster

import (
	"errors"
	"sync"

	"softraster/internal/mathutil"
)

// ErrInvalidArgument is returned (wrapped) for malformed input.
var ErrInvalidArgument = errors.New("raster: invalid argument")

// degenerateArea is the |signed area| under which a triangle is skipped.
const degenerateArea = 1e-8

// Rasterizer draws primitives into a Target with a Shader.
// It must not be copied after New.
type Rasterizer struct {
	target Target
	shader Shader
	pool   sync.Pool
}

// New returns a Rasterizer writing to target through shader.
func New(target Target, shader Shader) *Rasterizer {
	r := &Rasterizer{target: target, shader: shader}
	r.pool.New = func() any { return new(scratch) }
	return r
}

// scratch is per-call storage for interpolated attributes, the quad and its
// fragment context. Each primitive call takes its own from the pool, so
// concurrent calls never share one.
type scratch struct {
	attrs []mathutil.Vec4
	quad  Quad
	ctx   FragmentContext
}

func (r *Rasterizer) getScratch(n int) *scratch {
	s := r.pool.Get().(*scratch)
	if cap(s.attrs) < n {
		s.attrs = make([]mathutil.Vec4, n)
	}
	s.attrs = s.attrs[:n]
	return s
}

func (r *Rasterizer) putScratch(s *scratch) {
	s.ctx = FragmentContext{}
	for y := range s.quad {
		for x := range s.quad[y] {
			s.quad[y][x] = QuadSlot{}
		}
	}
	r.pool.Put(s)
}

// pass is the state read once per primitive.
type pass struct {
	width, height int
	depthTest     bool
	writesDepth   bool
}

func (r *Rasterizer) begin() (pass, Mode) {
	m := r.target.Mode()
	w, h := r.target.Size()
	return pass{
		width:       w,
		height:      h,
		depthTest:   m.DepthTest,
		writesDepth: r.shader.WritesDepth(),
	}, m
}

// depthPass reports whether a fragment at depth z may be shaded.
// The caller holds the pixel lock.
func (r *Rasterizer) depthPass(p *pass, x, y int, z float64) bool {
	if !p.depthTest || p.writesDepth {
		return true
	}
	return z < r.target.Depth(x, y)
}

// emit runs the fragment shader and writes color and depth.
// The caller holds the pixel lock.
func (r *Rasterizer) emit(x, y int, z float64, attrs []mathutil.Vec4, ctx *FragmentContext) {
	out := r.shader.Fragment(attrs, ctx)
	if out.HasDepth {
		z = out.Depth
	}
	r.target.SetPixelUnsafe(x, y, out.Color)
	r.target.SetDepthUnsafe(x, y, z)
}
