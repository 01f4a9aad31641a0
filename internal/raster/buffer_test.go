package raster

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softraster/internal/mathutil"
)

func TestNewFrameBuffer(t *testing.T) {
	fb := NewFrameBuffer(3, 2)
	w, h := fb.Size()
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)
	assert.Len(t, fb.Color, 24)
	for _, z := range fb.ZBuf {
		assert.True(t, math.IsInf(z, 1))
	}
	assert.Equal(t, Mode{Cull: CullNone, DepthTest: true}, fb.Mode())
}

func TestFrameBufferPixelClamp(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	lk := fb.LockPixel(1, 0)
	fb.SetPixelUnsafe(1, 0, mathutil.Vec4{-1, 0.5, 2, math.NaN()})
	fb.SetDepthUnsafe(1, 0, 0.25)
	assert.Equal(t, 0.25, fb.Depth(1, 0))
	lk.Unlock()

	assert.Equal(t, color.NRGBA{R: 0, G: 128, B: 255, A: 0}, fb.ColorAt(1, 0))
}

func TestFrameBufferClearAndImage(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	fb.SetDepthUnsafe(0, 0, 1)
	fb.Clear(mathutil.Vec4{0, 0, 1, 1})

	img := fb.Image()
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(1, 1))
	assert.True(t, math.IsInf(fb.DepthAt(0, 0), 1))

	// The image is a copy.
	img.Pix[0] = 7
	assert.Zero(t, fb.Color[0])
}

func TestParseCullMode(t *testing.T) {
	for in, want := range map[string]CullMode{"": CullNone, "none": CullNone, "Back": CullBack, " front ": CullFront} {
		got, err := ParseCullMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		if in != "" {
			assert.Equal(t, want.String(), got.String())
		}
	}
	_, err := ParseCullMode("sideways")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, "CullMode(9)", CullMode(9).String())
}
