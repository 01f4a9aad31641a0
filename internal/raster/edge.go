package raster

// Edge holds the coefficients of the line equation A·x + B·y + C = 0
// through a directed edge P→Q.
type Edge struct {
	A, B, C float64
}

// NewEdge returns the edge function of P→Q.
func NewEdge(p, q *Vertex) Edge {
	a := q.Y - p.Y
	b := p.X - q.X
	return Edge{A: a, B: b, C: -(a*p.X + b*p.Y)}
}

// Evaluate returns the signed value of the edge function at (x, y).
// The sign is constant on each side of the edge and flips across it.
func (e Edge) Evaluate(x, y float64) float64 {
	return e.A*x + e.B*y + e.C
}

// SignedArea returns twice the signed area of v0 v1 v2. It is positive
// when the vertices run counter-clockwise on screen.
func SignedArea(v0, v1, v2 *Vertex) float64 {
	return NewEdge(v0, v1).Evaluate(v2.X, v2.Y)
}
