package mathutil

import "math"

// Vec4 is the 4-component tuple carried by every interpolated attribute
// (colors, normals, positions). Value type.
type Vec4 [4]float64

func (a Vec4) Add(b Vec4) Vec4 {
	return Vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

func (a Vec4) Sub(b Vec4) Vec4 {
	return Vec4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}

func (v Vec4) Scale(s float64) Vec4 {
	return Vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

// Lerp4 returns a + (b-a)*t.
func Lerp4(a, b Vec4, t float64) Vec4 {
	return Vec4{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
		a[3] + (b[3]-a[3])*t,
	}
}

// Bary4 returns the barycentric combination w0*a + w1*b + w2*c.
func Bary4(a, b, c Vec4, w0, w1, w2 float64) Vec4 {
	return Vec4{
		w0*a[0] + w1*b[0] + w2*c[0],
		w0*a[1] + w1*b[1] + w2*c[1],
		w0*a[2] + w1*b[2] + w2*c[2],
		w0*a[3] + w1*b[3] + w2*c[3],
	}
}

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// ApproxEqual reports whether every component differs by at most tol.
func (a Vec4) ApproxEqual(b Vec4, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
