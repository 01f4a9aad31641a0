package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEdgeCoefficients(t *testing.T) {
	p := vtx(1, 2, 0)
	q := vtx(4, 6, 0)
	e := NewEdge(&p, &q)

	assert.Equal(t, 4.0, e.A)
	assert.Equal(t, -3.0, e.B)
	assert.Equal(t, -(4.0*1 + -3.0*2), e.C)

	// Both endpoints lie on the edge.
	assert.Zero(t, e.Evaluate(p.X, p.Y))
	assert.Zero(t, e.Evaluate(q.X, q.Y))
}

func TestEdgeSignFlipsAcrossEdge(t *testing.T) {
	p := vtx(0, 0, 0)
	q := vtx(10, 0, 0)
	e := NewEdge(&p, &q)

	above := e.Evaluate(5, -1)
	below := e.Evaluate(5, 1)
	assert.Less(t, above*below, 0.0)

	// Constant sign along the direction of the edge.
	assert.Equal(t, e.Evaluate(1, 1) > 0, e.Evaluate(9, 1) > 0)
}

func TestSignedAreaWinding(t *testing.T) {
	a, b, c := vtx(0, 0, 0), vtx(4, 0, 0), vtx(0, 4, 0)

	// Clockwise on screen (y down).
	assert.Equal(t, -16.0, SignedArea(&a, &b, &c))
	// Counter-clockwise on screen.
	assert.Equal(t, 16.0, SignedArea(&a, &c, &b))
	// Collinear.
	d := vtx(8, 0, 0)
	assert.Zero(t, SignedArea(&a, &b, &d))
}
