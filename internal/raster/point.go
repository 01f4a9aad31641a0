package raster

import "math"

// Point writes a single pixel at the rounded position of v, subject to the
// depth test. Lines and point clouds are drawn through it.
func (r *Rasterizer) Point(v Vertex) {
	p, _ := r.begin()
	r.point(&p, &v)
}

// Points draws the three vertices of tri as independent points.
func (r *Rasterizer) Points(tri Triangle) {
	p, _ := r.begin()
	for i := range tri {
		r.point(&p, &tri[i])
	}
}

func (r *Rasterizer) point(p *pass, v *Vertex) {
	fx, fy := math.Round(v.X), math.Round(v.Y)
	if !(fx >= 0 && fy >= 0 && fx < float64(p.width) && fy < float64(p.height)) {
		return
	}
	x, y := int(fx), int(fy)

	lk := r.target.LockPixel(x, y)
	defer lk.Unlock()

	if !r.depthPass(p, x, y, v.Z) {
		return
	}
	r.emit(x, y, v.Z, v.Attrs, &emptyContext)
}
