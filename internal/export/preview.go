package export

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/image/draw"
)

// Preview prints img to w with half-block characters, two pixel rows per
// text line, using the color profile detected for w.
func Preview(w io.Writer, img image.Image, maxWidth int) error {
	out := termenv.NewOutput(w)
	return PreviewProfile(w, img, maxWidth, out.Profile)
}

// PreviewProfile is Preview with an explicit color profile. Images wider
// than maxWidth columns are shrunk first.
func PreviewProfile(w io.Writer, img image.Image, maxWidth int, p termenv.Profile) error {
	img = fitWidth(img, maxWidth)
	b := img.Bounds()
	out := termenv.NewOutput(w, termenv.WithProfile(p))

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := out.String("▀").Foreground(out.Color(hexColor(img.At(x, y))))
			if y+1 < b.Max.Y {
				top = top.Background(out.Color(hexColor(img.At(x, y+1))))
			}
			sb.WriteString(top.String())
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func fitWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := max(1, b.Dy()*maxWidth/b.Dx())
	dst := image.NewNRGBA(image.Rect(0, 0, maxWidth, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// hexColor flattens c onto black.
func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
