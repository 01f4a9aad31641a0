// Package shader provides the programmable stages used by the render
// pipeline. Every shader shares the Transform vertex stage and reads the
// attribute layout below.
package shader

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"softraster/internal/mathutil"
	"softraster/internal/raster"
)

// Attribute slots filled by the pipeline for every vertex.
const (
	AttrColor    = iota // sRGB RGBA in [0,1]
	AttrNormal          // xyz, w=0
	AttrPosition        // transformed position, w=1
	NumAttrs
)

// Transform is the vertex stage: the model matrix maps model space straight
// into normalized device coordinates (orthographic, +Z toward the viewer).
type Transform struct {
	Model mathutil.Mat4
}

// Vertex returns a transformed copy of in. The normal and position
// attributes follow the model matrix; the rest pass through.
func (t Transform) Vertex(in raster.Vertex) raster.Vertex {
	p := t.Model.MulPoint(mathutil.Vec3{in.X, in.Y, in.Z})
	out := raster.Vertex{X: p[0], Y: p[1], Z: p[2]}
	if len(in.Attrs) == 0 {
		return out
	}
	out.Attrs = make([]mathutil.Vec4, len(in.Attrs))
	copy(out.Attrs, in.Attrs)
	if len(out.Attrs) > AttrNormal {
		out.Attrs[AttrNormal] = t.Model.MulDir(in.Attrs[AttrNormal].XYZ()).Normalize().Vec4(0)
	}
	if len(out.Attrs) > AttrPosition {
		out.Attrs[AttrPosition] = p.Vec4(1)
	}
	return out
}

// WritesDepth is false for every shader except DepthView.
func (Transform) WritesDepth() bool { return false }

// Flat paints every fragment with one color.
type Flat struct {
	Transform
	Color mathutil.Vec4
}

func (s *Flat) Fragment(_ []mathutil.Vec4, _ *raster.FragmentContext) raster.FragmentOutput {
	return raster.FragmentOutput{Color: s.Color}
}

// VertexColor outputs the interpolated color attribute.
type VertexColor struct {
	Transform
}

func (s *VertexColor) Fragment(attrs []mathutil.Vec4, _ *raster.FragmentContext) raster.FragmentOutput {
	return raster.FragmentOutput{Color: attrs[AttrColor]}
}

// Lambert lights the color attribute with the interpolated vertex normal.
type Lambert struct {
	Transform
	Light LightConfig
}

func (s *Lambert) Fragment(attrs []mathutil.Vec4, _ *raster.FragmentContext) raster.FragmentOutput {
	n := attrs[AttrNormal].XYZ().Normalize()
	return raster.FragmentOutput{Color: s.Light.Apply(attrs[AttrColor], s.Light.Shade(n))}
}

// FacetNormal lights each fragment with the flat normal of the surface it
// lies on, rebuilt from screen-space derivatives of the position attribute.
// Outside quad mode it falls back to the vertex normal.
type FacetNormal struct {
	Transform
	Light LightConfig
}

func (s *FacetNormal) Fragment(attrs []mathutil.Vec4, ctx *raster.FragmentContext) raster.FragmentOutput {
	n := facetNormal(ctx)
	if n == (mathutil.Vec3{}) {
		n = attrs[AttrNormal].XYZ().Normalize()
	}
	return raster.FragmentOutput{Color: s.Light.Apply(attrs[AttrColor], s.Light.Shade(n))}
}

// facetNormal returns the unit normal facing the viewer, or zero when the
// derivatives are unavailable.
func facetNormal(ctx *raster.FragmentContext) mathutil.Vec3 {
	if !ctx.InQuad() {
		return mathutil.Vec3{}
	}
	dx := ctx.DDX(AttrPosition).XYZ()
	dy := ctx.DDY(AttrPosition).XYZ()
	n := dx.Cross(dy).Normalize()
	if n[2] < 0 {
		n = n.Scale(-1)
	}
	return n
}

// DepthView shows depth as grey, near is white. It supplies its own depth
// from the position attribute plus Bias, so the rasterizer skips the depth
// test and the last primitive drawn wins.
type DepthView struct {
	Transform
	Bias float64
}

func (DepthView) WritesDepth() bool { return true }

func (s *DepthView) Fragment(attrs []mathutil.Vec4, _ *raster.FragmentContext) raster.FragmentOutput {
	z := (1-attrs[AttrPosition][2])/2 + s.Bias
	g := 1 - math.Max(0, math.Min(1, z))
	return raster.FragmentOutput{
		Color:    mathutil.Vec4{g, g, g, 1},
		Depth:    z,
		HasDepth: true,
	}
}

var constructors = map[string]func(model mathutil.Mat4, color mathutil.Vec4) raster.Shader{
	"flat": func(m mathutil.Mat4, c mathutil.Vec4) raster.Shader {
		return &Flat{Transform: Transform{m}, Color: c}
	},
	"color": func(m mathutil.Mat4, _ mathutil.Vec4) raster.Shader {
		return &VertexColor{Transform{m}}
	},
	"lambert": func(m mathutil.Mat4, _ mathutil.Vec4) raster.Shader {
		return &Lambert{Transform: Transform{m}, Light: DefaultLightConfig()}
	},
	"facet": func(m mathutil.Mat4, _ mathutil.Vec4) raster.Shader {
		return &FacetNormal{Transform: Transform{m}, Light: DefaultLightConfig()}
	},
	"depth": func(m mathutil.Mat4, _ mathutil.Vec4) raster.Shader {
		return &DepthView{Transform: Transform{m}}
	},
}

// ByName builds the named shader. color is used by "flat" only.
func ByName(name string, model mathutil.Mat4, color mathutil.Vec4) (raster.Shader, error) {
	ctor, ok := constructors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("shader: unknown shader %q (have %s): %w",
			name, strings.Join(Names(), ", "), raster.ErrInvalidArgument)
	}
	return ctor(model, color), nil
}

// Names lists the shaders ByName accepts, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
