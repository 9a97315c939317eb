package cmd

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"golang.org/x/image/bmp"

	"github.com/sayaka-go/sayaka/internal/rimg"
)

// toPaletted converts a quantized AIDX16 ImageBuffer into a standard
// image.Paletted so it can be handed to golang.org/x/image/bmp, which
// only speaks stdlib image.Image.
func toPaletted(img *rimg.ImageBuffer) (*image.Paletted, error) {
	if img.Format != rimg.AIDX16 {
		return nil, fmt.Errorf("sixelv: expected a quantized (AIDX16) image, got format %d", img.Format)
	}
	pal := make(color.Palette, len(img.Palette))
	for i, c := range img.Palette {
		pal[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	}
	out := image.NewPaletted(image.Rect(0, 0, img.Width, img.Height), pal)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			idx := img.IndexAt(x, y) & 0x7fff
			out.SetColorIndex(x, y, uint8(idx))
		}
	}
	return out, nil
}

func writeBMP(w io.Writer, img *rimg.ImageBuffer) error {
	pal, err := toPaletted(img)
	if err != nil {
		return err
	}
	return bmp.Encode(w, pal)
}

// asciiRamp is ordered darkest to brightest, the same role the "density
// string" plays in every ASCII-art renderer.
const asciiRamp = " .:-=+*#%@"

func writeASCII(w io.Writer, img *rimg.ImageBuffer) error {
	if img.Format != rimg.AIDX16 {
		return fmt.Errorf("sixelv: expected a quantized (AIDX16) image, got format %d", img.Format)
	}
	for y := 0; y < img.Height; y++ {
		line := make([]byte, img.Width)
		for x := 0; x < img.Width; x++ {
			idx := img.IndexAt(x, y) & 0x7fff
			c := img.Palette[idx]
			lum := (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
			pos := lum * (len(asciiRamp) - 1) / 255
			line[x] = asciiRamp[pos]
		}
		if _, err := fmt.Fprintln(w, string(line)); err != nil {
			return err
		}
	}
	return nil
}
