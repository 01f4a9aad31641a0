// Package mesh holds indexed triangle meshes, the OBJ reader and a few
// generated shapes.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"softraster/internal/mathutil"
)

// ErrMalformed is wrapped by every parse and validation error.
var ErrMalformed = errors.New("mesh: malformed")

// NoNormal marks a face corner without an explicit normal.
const NoNormal = -1

// Face is one triangle: position indices and optional normal indices.
type Face struct {
	V [3]int
	N [3]int
}

// Mesh is an indexed triangle mesh. Colors is either nil or parallel to
// Positions.
type Mesh struct {
	Positions []mathutil.Vec3
	Normals   []mathutil.Vec3
	Colors    []mathutil.Vec4
	Faces     []Face
}

// Bounds returns the axis-aligned box of all positions. ok is false for an
// empty mesh.
func (m *Mesh) Bounds() (lo, hi mathutil.Vec3, ok bool) {
	if len(m.Positions) == 0 {
		return lo, hi, false
	}
	lo = mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range m.Positions {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi, true
}

// FaceNormal returns the unit normal of face i following its winding
// (counter-clockwise faces the viewer).
func (m *Mesh) FaceNormal(i int) mathutil.Vec3 {
	f := m.Faces[i]
	p0, p1, p2 := m.Positions[f.V[0]], m.Positions[f.V[1]], m.Positions[f.V[2]]
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}

// Normal returns the normal at corner k of face i: the explicit normal when
// the face has one, else the face normal.
func (m *Mesh) Normal(i, k int) mathutil.Vec3 {
	if n := m.Faces[i].N[k]; n != NoNormal {
		return m.Normals[n]
	}
	return m.FaceNormal(i)
}

// Validate checks every index and the color table. All problems are
// reported, each wrapping ErrMalformed.
func (m *Mesh) Validate() error {
	var errs []error
	if m.Colors != nil && len(m.Colors) != len(m.Positions) {
		errs = append(errs, fmt.Errorf("%d colors for %d positions: %w",
			len(m.Colors), len(m.Positions), ErrMalformed))
	}
	for i, f := range m.Faces {
		for k := 0; k < 3; k++ {
			if f.V[k] < 0 || f.V[k] >= len(m.Positions) {
				errs = append(errs, fmt.Errorf("face %d: position index %d out of range [0,%d): %w",
					i, f.V[k], len(m.Positions), ErrMalformed))
			}
			if f.N[k] != NoNormal && (f.N[k] < 0 || f.N[k] >= len(m.Normals)) {
				errs = append(errs, fmt.Errorf("face %d: normal index %d out of range [0,%d): %w",
					i, f.N[k], len(m.Normals), ErrMalformed))
			}
		}
	}
	for i, p := range m.Positions {
		for _, c := range p {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				errs = append(errs, fmt.Errorf("position %d is not finite: %w", i, ErrMalformed))
				break
			}
		}
	}
	return errors.Join(errs...)
}
