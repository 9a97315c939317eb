package rimg

import "fmt"

// PixelFormat enumerates the four canonical pixel layouts an ImageBuffer
// can hold.
type PixelFormat int

const (
	// ARGB16 is the internal working format: 1-bit alpha + 5:5:5 RGB.
	ARGB16 PixelFormat = iota
	// AIDX16 is a palette index (8 bits) plus a 1-bit alpha flag in bit 15,
	// stored in a 16-bit stride. Valid only alongside a non-nil Palette.
	AIDX16
	// RGB24 is 8:8:8, no alpha.
	RGB24
	// ARGB32 is 8:8:8:8.
	ARGB32
)

// BytesPerPixel returns the packed pixel stride for f.
func BytesPerPixel(f PixelFormat) int {
	switch f {
	case ARGB16, AIDX16:
		return 2
	case RGB24:
		return 3
	case ARGB32:
		return 4
	default:
		panic(fmt.Sprintf("rimg: unknown pixel format %d", f))
	}
}

// ColorRGB is a palette / finder color: R, G, B plus a reserved byte the
// octree palettizer reuses to stash precomputed luminance.
type ColorRGB struct {
	R, G, B, Y uint8
}

// Pack returns the color as 0xRRGGBBYY, matching the C original's
// RGBToU32 layout (used only for table literals and tests).
func (c ColorRGB) Pack() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.Y)
}

// ImageBuffer is an owned rectangular pixel array. It corresponds 1:1 to
// the C `struct image`.
type ImageBuffer struct {
	Width, Height int
	Format        PixelFormat
	Buf           []byte
	HasAlpha      bool

	// Palette is valid only when Format == AIDX16. It may borrow from
	// PaletteBuf (the usual case after the reductor runs) or point at a
	// static fixed-palette table.
	Palette    []ColorRGB
	PaletteBuf []ColorRGB
}

// New allocates a zeroed ImageBuffer of the given size and format.
func New(width, height int, format PixelFormat) *ImageBuffer {
	return &ImageBuffer{
		Width:  width,
		Height: height,
		Format: format,
		Buf:    make([]byte, width*height*BytesPerPixel(format)),
	}
}

// Stride returns the byte length of one row.
func (img *ImageBuffer) Stride() int {
	return img.Width * BytesPerPixel(img.Format)
}

// Validate checks the invariants from spec §8 properties 1-2.
func (img *ImageBuffer) Validate() error {
	want := img.Width * img.Height * BytesPerPixel(img.Format)
	if len(img.Buf) != want {
		return fmt.Errorf("rimg: buffer length %d, want %d (%dx%d fmt=%d)",
			len(img.Buf), want, img.Width, img.Height, img.Format)
	}
	if img.Format == AIDX16 {
		for y := 0; y < img.Height; y++ {
			row := img.Buf[y*img.Stride():]
			for x := 0; x < img.Width; x++ {
				idx := uint16(row[x*2]) | uint16(row[x*2+1])<<8
				idx &= 0x7fff
				if int(idx) >= len(img.Palette) {
					return fmt.Errorf("rimg: index %d at (%d,%d) exceeds palette len %d",
						idx, x, y, len(img.Palette))
				}
			}
		}
	}
	return nil
}

// IndexAt reads the 16-bit indexed value (palette index in bits 0-14,
// alpha flag in bit 15) at (x, y). Format must be AIDX16.
func (img *ImageBuffer) IndexAt(x, y int) uint16 {
	off := y*img.Stride() + x*2
	return uint16(img.Buf[off]) | uint16(img.Buf[off+1])<<8
}

// SetIndexAt writes a 16-bit indexed value at (x, y). Format must be AIDX16.
func (img *ImageBuffer) SetIndexAt(x, y int, v uint16) {
	off := y*img.Stride() + x*2
	img.Buf[off] = byte(v)
	img.Buf[off+1] = byte(v >> 8)
}

// ARGB16At reads the packed 5:5:5:1 value at (x, y). Format must be ARGB16.
func (img *ImageBuffer) ARGB16At(x, y int) uint16 {
	off := y*img.Stride() + x*2
	return uint16(img.Buf[off]) | uint16(img.Buf[off+1])<<8
}

// SetARGB16At writes a packed 5:5:5:1 value at (x, y). Format must be ARGB16.
func (img *ImageBuffer) SetARGB16At(x, y int, v uint16) {
	off := y*img.Stride() + x*2
	img.Buf[off] = byte(v)
	img.Buf[off+1] = byte(v >> 8)
}

// RGB555ToARGB16 packs 5-bit channels plus an alpha flag into the
// internal 16-bit layout: bit15=alpha, bits14-10=R, 9-5=G, 4-0=B.
func RGB555ToARGB16(r5, g5, b5 uint32, alpha bool) uint16 {
	v := uint16(r5&0x1f)<<10 | uint16(g5&0x1f)<<5 | uint16(b5&0x1f)
	if alpha {
		v |= 0x8000
	}
	return v
}

// UnpackARGB16 splits a packed ARGB16 value into 5-bit channels and the
// alpha flag.
func UnpackARGB16(v uint16) (r5, g5, b5 uint32, alpha bool) {
	r5 = uint32(v>>10) & 0x1f
	g5 = uint32(v>>5) & 0x1f
	b5 = uint32(v) & 0x1f
	alpha = v&0x8000 != 0
	return
}

// ConvertToARGB16 lossily quantizes src (RGB24 or ARGB32) to the internal
// 5:5:5:1 working format. The alpha bit is set when the source alpha is
// below 0x80; RGB24 input always clears it.
func ConvertToARGB16(src *ImageBuffer) (*ImageBuffer, error) {
	if src.Format == ARGB16 {
		out := New(src.Width, src.Height, ARGB16)
		copy(out.Buf, src.Buf)
		out.HasAlpha = src.HasAlpha
		return out, nil
	}
	if src.Format != RGB24 && src.Format != ARGB32 {
		return nil, fmt.Errorf("rimg: ConvertToARGB16: unsupported source format %d", src.Format)
	}
	out := New(src.Width, src.Height, ARGB16)
	bpp := BytesPerPixel(src.Format)
	hasAlpha := false
	for y := 0; y < src.Height; y++ {
		srow := src.Buf[y*src.Stride():]
		for x := 0; x < src.Width; x++ {
			o := x * bpp
			r, g, b := srow[o], srow[o+1], srow[o+2]
			alpha := false
			if src.Format == ARGB32 {
				a := srow[o+3]
				if a < 0x80 {
					alpha = true
					hasAlpha = true
				}
			}
			v := RGB555ToARGB16(uint32(r)>>3, uint32(g)>>3, uint32(b)>>3, alpha)
			out.SetARGB16At(x, y, v)
		}
	}
	out.HasAlpha = hasAlpha
	return out, nil
}
