package shader

import (
	"math"

	"softraster/internal/mathutil"
)

// LightConfig is a key light, a rim light and a hemisphere fill, all
// double-sided, plus a Blinn-Phong highlight on the key.
type LightConfig struct {
	Key  mathutil.Vec3 // unit direction toward the key light
	Rim  mathutil.Vec3 // unit direction toward the rim light
	Half mathutil.Vec3 // key half-vector for a viewer on +Z

	Ambient   float64
	Hemi      float64
	Direct    float64
	RimLevel  float64
	Specular  float64
	Shininess float64
	Exposure  float64
	Gamma     float64
}

// DefaultLightConfig lights from the upper right front with a rim from the
// upper left back.
func DefaultLightConfig() LightConfig {
	key := mathutil.Vec3{0.45, 0.65, 0.6}.Normalize()
	return LightConfig{
		Key:       key,
		Rim:       mathutil.Vec3{-0.5, 0.4, -0.65}.Normalize(),
		Half:      key.Add(mathutil.Vec3{0, 0, 1}).Normalize(),
		Ambient:   0.35,
		Hemi:      0.30,
		Direct:    0.90,
		RimLevel:  0.35,
		Specular:  0.30,
		Shininess: 16,
		Exposure:  1,
		Gamma:     2.2,
	}
}

// Shade returns the light intensity reaching a surface with unit normal n.
func (lc *LightConfig) Shade(n mathutil.Vec3) float64 {
	key := math.Abs(n.Dot(lc.Key))
	rim := math.Abs(n.Dot(lc.Rim))
	hemi := (1-math.Abs(n[1]))*0.5 + 0.5

	spec := 0.0
	if nh := n.Dot(lc.Half); nh > 0 {
		spec = math.Pow(nh, lc.Shininess) * lc.Specular
	}

	return lc.Ambient + hemi*lc.Hemi + key*lc.Direct + rim*lc.RimLevel + spec
}

// Apply lights an sRGB color: decode to linear, scale by shade and
// exposure, ACES tonemap, encode back. Alpha is kept.
func (lc *LightConfig) Apply(c mathutil.Vec4, shade float64) mathutil.Vec4 {
	k := shade * lc.Exposure
	inv := 1 / lc.Gamma
	out := c
	for i := 0; i < 3; i++ {
		out[i] = math.Pow(ACESTonemap(srgbToLinear[unitToByte(c[i])]*k), inv)
	}
	return out
}

// srgbToLinear decodes 8-bit sRGB with a plain 2.2 power curve.
var srgbToLinear [256]float64

func init() {
	for i := range srgbToLinear {
		srgbToLinear[i] = math.Pow(float64(i)/255, 2.2)
	}
}

// ACESTonemap is the ACES filmic curve for a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func unitToByte(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
