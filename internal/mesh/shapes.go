package mesh

import "softraster/internal/mathutil"

// Cube returns a unit cube centered on the origin with one normal per side
// and corner colors taken from the position (black at -,-,- up to white).
func Cube() *Mesh {
	m := &Mesh{}
	for i := 0; i < 8; i++ {
		p := mathutil.Vec3{float64(i&1) - 0.5, float64(i>>1&1) - 0.5, float64(i>>2&1) - 0.5}
		m.Positions = append(m.Positions, p)
		m.Colors = append(m.Colors, mathutil.Vec4{p[0] + 0.5, p[1] + 0.5, p[2] + 0.5, 1})
	}
	for axis := 0; axis < 3; axis++ {
		u, v := (axis+1)%3, (axis+2)%3
		for side := 0; side < 2; side++ {
			var n mathutil.Vec3
			n[axis] = float64(2*side - 1)
			var quad [4]int
			for k, uv := range [4][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
				quad[k] = side<<axis | uv[0]<<u | uv[1]<<v
			}
			m.addQuad(quad, n)
		}
	}
	return m
}

// Plane returns a unit square in the z=0 plane facing +Z.
func Plane() *Mesh {
	m := &Mesh{Positions: []mathutil.Vec3{
		{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0.5, 0.5, 0}, {-0.5, 0.5, 0},
	}}
	m.addQuad([4]int{0, 1, 2, 3}, mathutil.Vec3{0, 0, 1})
	return m
}

// Tetrahedron returns a regular tetrahedron inscribed in the unit cube with
// outward faces and no explicit normals.
func Tetrahedron() *Mesh {
	m := &Mesh{
		Positions: []mathutil.Vec3{
			{0.5, 0.5, 0.5}, {0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {-0.5, -0.5, 0.5},
		},
		Colors: []mathutil.Vec4{
			{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}, {1, 1, 0, 1},
		},
	}
	nn := [3]int{NoNormal, NoNormal, NoNormal}
	for _, f := range [][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}} {
		m.Faces = append(m.Faces, Face{V: f, N: nn})
		i := len(m.Faces) - 1
		c := m.Positions[f[0]].Add(m.Positions[f[1]]).Add(m.Positions[f[2]])
		if m.FaceNormal(i).Dot(c) < 0 {
			m.Faces[i].V[1], m.Faces[i].V[2] = m.Faces[i].V[2], m.Faces[i].V[1]
		}
	}
	return m
}

// addQuad appends two triangles for the quad q, reordered so that they
// wind counter-clockwise around n.
func (m *Mesh) addQuad(q [4]int, n mathutil.Vec3) {
	p := m.Positions
	if p[q[1]].Sub(p[q[0]]).Cross(p[q[2]].Sub(p[q[0]])).Dot(n) < 0 {
		q[1], q[3] = q[3], q[1]
	}
	m.Normals = append(m.Normals, n)
	ni := len(m.Normals) - 1
	nn := [3]int{ni, ni, ni}
	m.Faces = append(m.Faces,
		Face{V: [3]int{q[0], q[1], q[2]}, N: nn},
		Face{V: [3]int{q[0], q[2], q[3]}, N: nn},
	)
}
