package raster

import (
	"sync"
	"sync/atomic"

	"softraster/internal/mathutil"
)

var (
	red   = mathutil.Vec4{1, 0, 0, 1}
	green = mathutil.Vec4{0, 1, 0, 1}
	blue  = mathutil.Vec4{0, 0, 1, 1}
)

// funcShader adapts a function to Shader and counts invocations.
type funcShader struct {
	fn          func(attrs []mathutil.Vec4, ctx *FragmentContext) FragmentOutput
	writesDepth bool
	calls       atomic.Int64
}

func (s *funcShader) Vertex(in Vertex) Vertex { return in }

func (s *funcShader) Fragment(attrs []mathutil.Vec4, ctx *FragmentContext) FragmentOutput {
	s.calls.Add(1)
	return s.fn(attrs, ctx)
}

func (s *funcShader) WritesDepth() bool { return s.writesDepth }

func solid(c mathutil.Vec4) *funcShader {
	return &funcShader{fn: func([]mathutil.Vec4, *FragmentContext) FragmentOutput {
		return FragmentOutput{Color: c}
	}}
}

// firstAttr outputs attribute 0 as color.
func firstAttr() *funcShader {
	return &funcShader{fn: func(attrs []mathutil.Vec4, _ *FragmentContext) FragmentOutput {
		return FragmentOutput{Color: attrs[0]}
	}}
}

// recordTarget counts color writes per pixel.
type recordTarget struct {
	*FrameBuffer
	mu     sync.Mutex
	writes map[[2]int]int
	order  [][2]int
}

func newRecordTarget(w, h int) *recordTarget {
	return &recordTarget{FrameBuffer: NewFrameBuffer(w, h), writes: map[[2]int]int{}}
}

func (t *recordTarget) SetPixelUnsafe(x, y int, c mathutil.Vec4) {
	t.mu.Lock()
	t.writes[[2]int{x, y}]++
	t.order = append(t.order, [2]int{x, y})
	t.mu.Unlock()
	t.FrameBuffer.SetPixelUnsafe(x, y, c)
}

func (t *recordTarget) total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

func vtx(x, y, z float64, attrs ...mathutil.Vec4) Vertex {
	return Vertex{X: x, Y: y, Z: z, Attrs: attrs}
}

// painted lists the pixels with a non-zero alpha.
func painted(fb *FrameBuffer) map[[2]int]bool {
	out := map[[2]int]bool{}
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			if fb.ColorAt(x, y).A != 0 {
				out[[2]int{x, y}] = true
			}
		}
	}
	return out
}

// insideStrict is an independent point-in-triangle test on cross product
// signs; points on an edge are reported outside.
func insideStrict(a, b, c Vertex, px, py float64) bool {
	cross := func(p, q Vertex) float64 {
		return (q.X-p.X)*(py-p.Y) - (q.Y-p.Y)*(px-p.X)
	}
	d1, d2, d3 := cross(a, b), cross(b, c), cross(c, a)
	if d1 == 0 || d2 == 0 || d3 == 0 {
		return false
	}
	return (d1 > 0) == (d2 > 0) && (d2 > 0) == (d3 > 0)
}
