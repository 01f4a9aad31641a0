package export

import (
	"image"

	"golang.org/x/image/draw"
)

// Scale enlarges img by an integer factor with nearest-neighbour sampling so
// single pixels stay sharp. Factors below 2 return img unchanged.
func Scale(img *image.NRGBA, factor int) *image.NRGBA {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
