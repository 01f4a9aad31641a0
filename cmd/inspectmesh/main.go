package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"softraster/internal/mathutil"
	"softraster/internal/mesh"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: inspectmesh file.obj...")
		os.Exit(2)
	}

	failed := 0
	for _, arg := range os.Args[1:] {
		m, err := mesh.LoadOBJ(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Parse error %s: %v\n", arg, err)
			failed++
			continue
		}
		fmt.Printf("\n=== %s ===\n", arg)
		fmt.Printf("  positions=%d normals=%d faces=%d colors=%v\n",
			len(m.Positions), len(m.Normals), len(m.Faces), m.Colors != nil)

		if lo, hi, ok := m.Bounds(); ok {
			size := hi.Sub(lo)
			fmt.Printf("  bounds X=[%.3f..%.3f] Y=[%.3f..%.3f] Z=[%.3f..%.3f] size=%.3fx%.3fx%.3f\n",
				lo[0], hi[0], lo[1], hi[1], lo[2], hi[2], size[0], size[1], size[2])
		}

		if err := m.Validate(); err != nil {
			failed++
			var joined interface{ Unwrap() []error }
			if errors.As(err, &joined) {
				for _, e := range joined.Unwrap() {
					fmt.Printf("  INVALID: %v\n", e)
				}
			} else {
				fmt.Printf("  INVALID: %v\n", err)
			}
			continue
		}

		degenerate, explicit := 0, 0
		minArea, maxArea := math.Inf(1), 0.0
		for _, f := range m.Faces {
			p0, p1, p2 := m.Positions[f.V[0]], m.Positions[f.V[1]], m.Positions[f.V[2]]
			area := p1.Sub(p0).Cross(p2.Sub(p0)).Len() / 2
			if area < 1e-12 {
				degenerate++
			}
			minArea = math.Min(minArea, area)
			maxArea = math.Max(maxArea, area)
			if f.N != [3]int{mesh.NoNormal, mesh.NoNormal, mesh.NoNormal} {
				explicit++
			}
		}
		if len(m.Faces) > 0 {
			fmt.Printf("  area min=%.6f max=%.6f degenerate=%d\n", minArea, maxArea, degenerate)
			fmt.Printf("  faces with explicit normals=%d, outward-facing=%d/%d\n",
				explicit, outward(m), len(m.Faces))
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// outward counts faces whose winding normal points away from the centroid.
func outward(m *mesh.Mesh) int {
	var c mathutil.Vec3
	for _, p := range m.Positions {
		c = c.Add(p)
	}
	c = c.Scale(1 / float64(len(m.Positions)))

	n := 0
	for i, f := range m.Faces {
		center := m.Positions[f.V[0]].Add(m.Positions[f.V[1]]).Add(m.Positions[f.V[2]]).Scale(1.0 / 3)
		if m.FaceNormal(i).Dot(center.Sub(c)) > 0 {
			n++
		}
	}
	return n
}
