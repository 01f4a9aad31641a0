package raster

import "softraster/internal/mathutil"

// Vertex is a screen-space vertex: X and Y in pixels, Z as depth, plus the
// attributes interpolated across the primitive. The rasterizer never
// modifies a caller's vertex.
type Vertex struct {
	X, Y, Z float64
	Attrs   []mathutil.Vec4
}

// Triangle is three vertices, read-only during rasterization.
type Triangle [3]Vertex

// FragmentOutput is what a fragment shader returns for one pixel.
// Depth is used only when HasDepth is set; otherwise the interpolated depth
// is written.
type FragmentOutput struct {
	Color    mathutil.Vec4
	Depth    float64
	HasDepth bool
}

// Shader is the programmable stage the rasterizer calls into.
//
// Fragment may be invoked concurrently from several goroutines. attrs and
// ctx are only valid for the duration of the call.
type Shader interface {
	// Vertex maps a model-space vertex to normalized device coordinates.
	// The rasterizer does not call it; the pipeline does.
	Vertex(in Vertex) Vertex

	Fragment(attrs []mathutil.Vec4, ctx *FragmentContext) FragmentOutput

	// WritesDepth reports that Fragment supplies the authoritative depth,
	// which disables the depth-test rejection.
	WritesDepth() bool
}
