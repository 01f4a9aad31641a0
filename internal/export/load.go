package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// Load decodes a PNG, TGA or WebP file into an NRGBA image. The decoder is
// chosen by file extension; other extensions return ErrUnknownFormat.
func Load(path string) (*image.NRGBA, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("export: load %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("export: open %s: %w", path, err)
	}
	defer f.Close()

	var img image.Image
	switch format {
	case PNG:
		img, err = png.Decode(f)
	case WebP:
		img, err = webp.Decode(f)
	case TGA:
		img, err = tga.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("export: decode %s: %w", path, err)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA with its origin at (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Diff counts the pixels whose channels differ by more than tol.
// Images of different size are an error.
func Diff(a, b image.Image, tol int) (int, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Size() != bb.Size() {
		return 0, fmt.Errorf("export: diff: size %v vs %v", ab.Size(), bb.Size())
	}
	n := 0
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			ca := color.NRGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y)).(color.NRGBA)
			cb := color.NRGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y)).(color.NRGBA)
			if !closeUint8(ca.R, cb.R, tol) || !closeUint8(ca.G, cb.G, tol) ||
				!closeUint8(ca.B, cb.B, tol) || !closeUint8(ca.A, cb.A, tol) {
				n++
			}
		}
	}
	return n, nil
}

func closeUint8(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}
