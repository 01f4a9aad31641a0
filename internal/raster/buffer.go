package raster

import (
	"image"
	"image/color"
	"math"
	"sync"

	"softraster/internal/mathutil"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
// It implements Target with one mutex per pixel.
//
// Mode fields are read once per primitive; set them before drawing starts.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, smaller is closer

	Cull        CullMode
	DepthTest   bool
	Derivatives bool

	locks []sync.Mutex
}

// NewFrameBuffer allocates a transparent black color buffer and a +Inf z-buffer.
// Depth testing starts enabled and culling disabled.
func NewFrameBuffer(w, h int) *FrameBuffer {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	n := w * h
	fb := &FrameBuffer{
		Width:     w,
		Height:    h,
		Color:     make([]uint8, n*4),
		ZBuf:      make([]float64, n),
		DepthTest: true,
		locks:     make([]sync.Mutex, n),
	}
	fb.ClearDepth(math.Inf(1))
	return fb
}

// Size implements Target.
func (fb *FrameBuffer) Size() (int, int) {
	return fb.Width, fb.Height
}

// Mode implements Target.
func (fb *FrameBuffer) Mode() Mode {
	return Mode{Cull: fb.Cull, DepthTest: fb.DepthTest, Derivatives: fb.Derivatives}
}

// Depth implements Target. The caller must hold the pixel lock.
func (fb *FrameBuffer) Depth(x, y int) float64 {
	return fb.ZBuf[y*fb.Width+x]
}

// SetDepthUnsafe implements Target. The caller must hold the pixel lock.
func (fb *FrameBuffer) SetDepthUnsafe(x, y int, z float64) {
	fb.ZBuf[y*fb.Width+x] = z
}

// SetPixelUnsafe implements Target. Components are clamped to [0, 1] and
// stored as 8-bit RGBA. The caller must hold the pixel lock.
func (fb *FrameBuffer) SetPixelUnsafe(x, y int, c mathutil.Vec4) {
	i := (y*fb.Width + x) * 4
	fb.Color[i] = unitToByte(c[0])
	fb.Color[i+1] = unitToByte(c[1])
	fb.Color[i+2] = unitToByte(c[2])
	fb.Color[i+3] = unitToByte(c[3])
}

// LockPixel implements Target.
func (fb *FrameBuffer) LockPixel(x, y int) sync.Locker {
	m := &fb.locks[y*fb.Width+x]
	m.Lock()
	return m
}

// Clear fills the color buffer with c and resets depth to +Inf.
// Not safe to call while primitives are being drawn.
func (fb *FrameBuffer) Clear(c mathutil.Vec4) {
	r, g, b, a := unitToByte(c[0]), unitToByte(c[1]), unitToByte(c[2]), unitToByte(c[3])
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = r
		fb.Color[i+1] = g
		fb.Color[i+2] = b
		fb.Color[i+3] = a
	}
	fb.ClearDepth(math.Inf(1))
}

// ClearDepth sets every depth entry to z.
func (fb *FrameBuffer) ClearDepth(z float64) {
	for i := range fb.ZBuf {
		fb.ZBuf[i] = z
	}
}

// ColorAt returns the stored color of a pixel.
func (fb *FrameBuffer) ColorAt(x, y int) color.NRGBA {
	i := (y*fb.Width + x) * 4
	return color.NRGBA{R: fb.Color[i], G: fb.Color[i+1], B: fb.Color[i+2], A: fb.Color[i+3]}
}

// DepthAt returns the stored depth of a pixel.
func (fb *FrameBuffer) DepthAt(x, y int) float64 {
	return fb.ZBuf[y*fb.Width+x]
}

// Image copies the color buffer into a new NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
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
