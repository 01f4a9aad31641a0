package raster

import (
	"math"

	"softraster/internal/mathutil"
)

// setup is the per-triangle state shared by both fill paths.
type setup struct {
	v          [3]*Vertex
	e0, e1, e2 Edge
	invArea    float64
	n          int // attribute count, taken from v0
}

func (s *setup) weights(e0, e1, e2 float64) (w0, w1, w2 float64) {
	return e0 * s.invArea, e1 * s.invArea, e2 * s.invArea
}

func (s *setup) depth(w0, w1, w2 float64) float64 {
	return w0*s.v[0].Z + w1*s.v[1].Z + w2*s.v[2].Z
}

// interpolate writes the barycentric blend of every attribute into dst.
// All three vertices must carry at least s.n attributes.
func (s *setup) interpolate(dst []mathutil.Vec4, w0, w1, w2 float64) {
	a0, a1, a2 := s.v[0].Attrs, s.v[1].Attrs, s.v[2].Attrs
	for i := range dst {
		dst[i] = mathutil.Bary4(a0[i], a1[i], a2[i], w0, w1, w2)
	}
}

// box is an inclusive pixel rectangle.
type box struct {
	minX, minY, maxX, maxY int
}

// Triangle fills tri. Pixels whose center has all three barycentric weights
// >= 0 are covered. In derivative mode pixels are shaded in 2x2 quads.
func (r *Rasterizer) Triangle(tri Triangle) {
	p, mode := r.begin()
	v0, v1, v2 := &tri[0], &tri[1], &tri[2]

	// Winding and degenerate rejection
	area := SignedArea(v0, v1, v2)
	if mode.Cull.rejects(area) {
		return
	}
	if !(math.Abs(area) >= degenerateArea) {
		return
	}

	// Bounding box, clamped to the target
	b, ok := triangleBox(v0, v1, v2, p.width, p.height)
	if !ok {
		return
	}

	// Barycentric setup: weight i comes from the edge opposite vertex i
	s := setup{
		v:       [3]*Vertex{v0, v1, v2},
		e0:      NewEdge(v1, v2),
		e1:      NewEdge(v2, v0),
		e2:      NewEdge(v0, v1),
		invArea: 1.0 / area,
		n:       len(v0.Attrs),
	}

	if mode.Derivatives {
		r.fillQuads(&p, &s, b)
		return
	}
	r.fillPixels(&p, &s, b)
}

func triangleBox(v0, v1, v2 *Vertex, w, h int) (box, bool) {
	minX := math.Floor(math.Min(math.Min(v0.X, v1.X), v2.X))
	maxX := math.Ceil(math.Max(math.Max(v0.X, v1.X), v2.X))
	minY := math.Floor(math.Min(math.Min(v0.Y, v1.Y), v2.Y))
	maxY := math.Ceil(math.Max(math.Max(v0.Y, v1.Y), v2.Y))

	// Rejects NaN as well as off-screen boxes.
	if !(maxX >= 0 && maxY >= 0 && minX <= float64(w-1) && minY <= float64(h-1)) {
		return box{}, false
	}

	b := box{
		minX: int(math.Max(minX, 0)),
		minY: int(math.Max(minY, 0)),
		maxX: int(math.Min(maxX, float64(w-1))),
		maxY: int(math.Min(maxY, float64(h-1))),
	}
	if b.minX > b.maxX || b.minY > b.maxY {
		return box{}, false
	}
	return b, true
}

// fillPixels evaluates the three edges at every pixel center of b.
func (r *Rasterizer) fillPixels(p *pass, s *setup, b box) {
	sc := r.getScratch(s.n)
	defer r.putScratch(sc)

	for y := b.minY; y <= b.maxY; y++ {
		py := float64(y) + 0.5
		for x := b.minX; x <= b.maxX; x++ {
			px := float64(x) + 0.5
			w0, w1, w2 := s.weights(s.e0.Evaluate(px, py), s.e1.Evaluate(px, py), s.e2.Evaluate(px, py))
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			r.shadePixel(p, s, sc.attrs, x, y, w0, w1, w2)
		}
	}
}

func (r *Rasterizer) shadePixel(p *pass, s *setup, attrs []mathutil.Vec4, x, y int, w0, w1, w2 float64) {
	z := s.depth(w0, w1, w2)

	lk := r.target.LockPixel(x, y)
	defer lk.Unlock()

	if !r.depthPass(p, x, y, z) {
		return
	}
	s.interpolate(attrs, w0, w1, w2)
	r.emit(x, y, z, attrs, &emptyContext)
}

// fillQuads walks b in 2x2 blocks. Edge values are computed once at each
// block's top-left center; the other three pixels are reached by adding
// the edges' A (x step) and B (y step).
func (r *Rasterizer) fillQuads(p *pass, s *setup, b box) {
	sc := r.getScratch(4 * s.n)
	defer r.putScratch(sc)
	q := &sc.quad

	for i := range 4 {
		q[i/2][i%2].Frag.Attrs = sc.attrs[i*s.n : (i+1)*s.n]
	}

	// Align outward to even coordinates
	minX, minY := b.minX&^1, b.minY&^1
	maxX, maxY := b.maxX|1, b.maxY|1

	for by := minY; by <= maxY; by += 2 {
		py := float64(by) + 0.5
		for bx := minX; bx <= maxX; bx += 2 {
			px := float64(bx) + 0.5
			e0 := s.e0.Evaluate(px, py)
			e1 := s.e1.Evaluate(px, py)
			e2 := s.e2.Evaluate(px, py)

			// First pass: coverage and interpolation
			q.reset()
			covered := false
			for dy := 0; dy < 2; dy++ {
				y := by + dy
				if y >= p.height {
					continue
				}
				fy := float64(dy)
				for dx := 0; dx < 2; dx++ {
					x := bx + dx
					if x >= p.width {
						continue
					}
					fx := float64(dx)
					w0, w1, w2 := s.weights(
						e0+fx*s.e0.A+fy*s.e0.B,
						e1+fx*s.e1.A+fy*s.e1.B,
						e2+fx*s.e2.A+fy*s.e2.B,
					)
					if w0 < 0 || w1 < 0 || w2 < 0 {
						continue
					}
					slot := &q[dy][dx]
					slot.OK = true
					slot.Frag.Depth = s.depth(w0, w1, w2)
					slot.Frag.Weights = [3]float64{w0, w1, w2}
					s.interpolate(slot.Frag.Attrs, w0, w1, w2)
					covered = true
				}
			}
			if !covered {
				continue
			}

			// Second pass: depth test and shading
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					if q[dy][dx].OK {
						r.shadeQuadPixel(p, sc, bx+dx, by+dy, dx, dy)
					}
				}
			}
		}
	}
}

func (r *Rasterizer) shadeQuadPixel(p *pass, sc *scratch, x, y, dx, dy int) {
	frag := &sc.quad[dy][dx].Frag

	lk := r.target.LockPixel(x, y)
	defer lk.Unlock()

	if !r.depthPass(p, x, y, frag.Depth) {
		return
	}
	sc.ctx = FragmentContext{frag: frag, quad: &sc.quad, ox: dx, oy: dy}
	r.emit(x, y, frag.Depth, frag.Attrs, &sc.ctx)
}
