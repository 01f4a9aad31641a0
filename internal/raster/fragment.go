package raster

import "softraster/internal/mathutil"

// QuadFragment is the interpolated state of one pixel of a 2x2 quad.
// It lives only while its quad is being shaded.
type QuadFragment struct {
	Depth   float64
	Weights [3]float64
	Attrs   []mathutil.Vec4
}

// QuadSlot is an optional QuadFragment. OK is false for pixels of the quad
// that the triangle does not cover.
type QuadSlot struct {
	OK   bool
	Frag QuadFragment
}

// Quad is a 2x2 block of slots indexed [y][x].
type Quad [2][2]QuadSlot

func (q *Quad) reset() {
	for y := range q {
		for x := range q[y] {
			q[y][x].OK = false
		}
	}
}

func (q *Quad) slot(x, y int) *QuadFragment {
	s := &q[y][x]
	if !s.OK {
		return nil
	}
	return &s.Frag
}

// FragmentContext gives a fragment shader read-only access to the other
// pixels of its quad. The zero value is the empty context used outside
// derivative mode: it has no fragment and all differences are zero.
type FragmentContext struct {
	frag   *QuadFragment
	quad   *Quad
	ox, oy int
}

// emptyContext is shared by every non-quad invocation. Its fields are
// unexported, so shaders cannot mutate it.
var emptyContext FragmentContext

// InQuad reports whether the context belongs to a quad invocation.
func (c *FragmentContext) InQuad() bool {
	return c != nil && c.quad != nil
}

// Fragment returns the fragment being shaded, or nil outside a quad.
func (c *FragmentContext) Fragment() *QuadFragment {
	if c == nil {
		return nil
	}
	return c.frag
}

// Offset returns the position of the current fragment inside its quad.
func (c *FragmentContext) Offset() (x, y int) {
	if c == nil {
		return 0, 0
	}
	return c.ox, c.oy
}

// Slot returns the fragment at quad position (x, y), x and y in {0, 1}.
func (c *FragmentContext) Slot(x, y int) (*QuadFragment, bool) {
	if !c.InQuad() || x < 0 || x > 1 || y < 0 || y > 1 {
		return nil, false
	}
	f := c.quad.slot(x, y)
	return f, f != nil
}

// DDX returns the screen-space x difference of attribute i.
func (c *FragmentContext) DDX(i int) mathutil.Vec4 {
	lo, hi := c.spanX()
	if lo == nil {
		return mathutil.Vec4{}
	}
	return hi.Attrs[i].Sub(lo.Attrs[i])
}

// DDY returns the screen-space y difference of attribute i.
func (c *FragmentContext) DDY(i int) mathutil.Vec4 {
	lo, hi := c.spanY()
	if lo == nil {
		return mathutil.Vec4{}
	}
	return hi.Attrs[i].Sub(lo.Attrs[i])
}

// DepthDX returns the screen-space x difference of depth.
func (c *FragmentContext) DepthDX() float64 {
	lo, hi := c.spanX()
	if lo == nil {
		return 0
	}
	return hi.Depth - lo.Depth
}

// DepthDY returns the screen-space y difference of depth.
func (c *FragmentContext) DepthDY() float64 {
	lo, hi := c.spanY()
	if lo == nil {
		return 0
	}
	return hi.Depth - lo.Depth
}

// spanX pairs the current fragment with its right neighbor. The neighbor of
// the right column wraps to the left column of the same row, in which case
// the pair is swapped so the difference still points toward +x. When the
// current row has an empty slot the other row is used.
func (c *FragmentContext) spanX() (lo, hi *QuadFragment) {
	if !c.InQuad() {
		return nil, nil
	}
	nx := (c.ox + 1) & 1
	for _, y := range [2]int{c.oy, c.oy ^ 1} {
		cur, next := c.quad.slot(c.ox, y), c.quad.slot(nx, y)
		if cur == nil || next == nil {
			continue
		}
		if nx < c.ox {
			return next, cur
		}
		return cur, next
	}
	return nil, nil
}

// spanY is spanX for the bottom neighbor.
func (c *FragmentContext) spanY() (lo, hi *QuadFragment) {
	if !c.InQuad() {
		return nil, nil
	}
	ny := (c.oy + 1) & 1
	for _, x := range [2]int{c.ox, c.ox ^ 1} {
		cur, next := c.quad.slot(x, c.oy), c.quad.slot(x, ny)
		if cur == nil || next == nil {
			continue
		}
		if ny < c.oy {
			return next, cur
		}
		return cur, next
	}
	return nil, nil
}
