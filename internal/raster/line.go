package raster

import (
	"fmt"
	"math"

	"softraster/internal/mathutil"
)

// Cohen–Sutherland region bits. Top is y < 0 (screen space, y down).
const (
	regionLeft = 1 << iota
	regionRight
	regionBottom
	regionTop
)

// maxClipSteps bounds the clip loop; each endpoint needs at most two.
const maxClipSteps = 8

// Line draws the segment a→b through Point. Both endpoints must carry the
// same number of attributes; otherwise nothing is drawn and an error
// wrapping ErrInvalidArgument is returned.
func (r *Rasterizer) Line(a, b Vertex) error {
	if len(a.Attrs) != len(b.Attrs) {
		return fmt.Errorf("%w: line endpoints carry %d and %d attributes",
			ErrInvalidArgument, len(a.Attrs), len(b.Attrs))
	}
	p, _ := r.begin()
	if p.width <= 0 || p.height <= 0 {
		return nil
	}

	n := len(a.Attrs)
	sc := r.getScratch(3 * n)
	defer r.putScratch(sc)

	// Private copies; clipping rewrites endpoints in place
	v0 := Vertex{X: a.X, Y: a.Y, Z: a.Z, Attrs: sc.attrs[:n]}
	v1 := Vertex{X: b.X, Y: b.Y, Z: b.Z, Attrs: sc.attrs[n : 2*n]}
	copy(v0.Attrs, a.Attrs)
	copy(v1.Attrs, b.Attrs)

	if !clipLine(&v0, &v1, float64(p.width-1), float64(p.height-1)) {
		return nil
	}
	length := math.Hypot(v1.X-v0.X, v1.Y-v0.Y)
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return nil
	}

	r.walkLine(&p, &v0, &v1, sc.attrs[2*n:])
	return nil
}

func regionCode(x, y, maxX, maxY float64) int {
	code := 0
	if x < 0 {
		code |= regionLeft
	} else if x > maxX {
		code |= regionRight
	}
	if y < 0 {
		code |= regionTop
	} else if y > maxY {
		code |= regionBottom
	}
	return code
}

// clipLine clips v0→v1 to [0, maxX]×[0, maxY]. A moved endpoint gets its
// depth and attributes re-interpolated at the clip fraction. Returns false
// when the segment lies entirely outside.
func clipLine(v0, v1 *Vertex, maxX, maxY float64) bool {
	for range maxClipSteps {
		c0 := regionCode(v0.X, v0.Y, maxX, maxY)
		c1 := regionCode(v1.X, v1.Y, maxX, maxY)
		if c0|c1 == 0 {
			return true
		}
		if c0&c1 != 0 {
			return false
		}

		out, in, code := v0, v1, c0
		if code == 0 {
			out, in, code = v1, v0, c1
		}

		dx := in.X - out.X
		dy := in.Y - out.Y
		var x, y float64
		switch {
		case code&regionTop != 0:
			x, y = out.X+dx*(0-out.Y)/dy, 0
		case code&regionBottom != 0:
			x, y = out.X+dx*(maxY-out.Y)/dy, maxY
		case code&regionRight != 0:
			x, y = maxX, out.Y+dy*(maxX-out.X)/dx
		case code&regionLeft != 0:
			x, y = 0, out.Y+dy*(0-out.X)/dx
		}

		// Fraction along out→in from the dominant axis
		var t float64
		if math.Abs(dx) >= math.Abs(dy) {
			t = (x - out.X) / dx
		} else {
			t = (y - out.Y) / dy
		}

		out.X, out.Y = x, y
		out.Z += (in.Z - out.Z) * t
		for i := range out.Attrs {
			out.Attrs[i] = mathutil.Lerp4(out.Attrs[i], in.Attrs[i], t)
		}
	}
	return false
}

// walkLine steps from v0 to v1 with Bresenham's algorithm. Depth and
// attributes follow the Euclidean distance travelled over the total length.
func (r *Rasterizer) walkLine(p *pass, v0, v1 *Vertex, attrs []mathutil.Vec4) {
	x0, y0 := int(math.Round(v0.X)), int(math.Round(v0.Y))
	x1, y1 := int(math.Round(v1.X)), int(math.Round(v1.Y))

	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	total := math.Hypot(float64(x1-x0), float64(y1-y0))

	v := Vertex{Attrs: attrs}
	x, y := x0, y0
	err := dx + dy
	for {
		t := 0.0
		if total > 0 {
			t = math.Hypot(float64(x-x0), float64(y-y0)) / total
		}
		v.X, v.Y = float64(x), float64(y)
		v.Z = v0.Z + (v1.Z-v0.Z)*t
		for i := range attrs {
			attrs[i] = mathutil.Lerp4(v0.Attrs[i], v1.Attrs[i], t)
		}
		r.point(p, &v)

		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
