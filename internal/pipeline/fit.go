package pipeline

import (
	"softraster/internal/mathutil"
	"softraster/internal/mesh"
)

// Fit returns a model matrix that rotates m by the XYZ Euler angles in
// degrees, centers its bounding box on the origin and scales the larger of
// its X/Y extents to fill normalized device coordinates, minus margin
// (a fraction of the half-width, in [0,1)).
func Fit(m *mesh.Mesh, rotation mathutil.Vec3, margin float64) mathutil.Mat4 {
	R := mathutil.EulerDeg(rotation)
	rot := mathutil.FromMat3Translation(R, mathutil.Vec3{})

	lo, hi, ok := rotatedBounds(m, R)
	if !ok {
		return rot
	}

	center := lo.Add(hi).Scale(0.5)
	span := hi[0] - lo[0]
	if spanY := hi[1] - lo[1]; spanY > span {
		span = spanY
	}
	if span < 0.001 {
		span = 0.001
	}
	if margin < 0 || margin >= 1 {
		margin = 0
	}
	scale := 2 * (1 - margin) / span

	return mathutil.Mat4Mul(mathutil.Scale(scale),
		mathutil.Mat4Mul(mathutil.Translate(center.Scale(-1)), rot))
}

func rotatedBounds(m *mesh.Mesh, R mathutil.Mat3) (lo, hi mathutil.Vec3, ok bool) {
	r := mesh.Mesh{Positions: make([]mathutil.Vec3, len(m.Positions))}
	for i, p := range m.Positions {
		r.Positions[i] = R.MulVec3(p)
	}
	return r.Bounds()
}
