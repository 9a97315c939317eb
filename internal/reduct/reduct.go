// Package reduct implements the reductor: resizing a decoded raster and
// quantizing it down to a fixed or adaptive palette with optional
// error-diffusion dithering, the step between a decoded ImageBuffer and
// the sixel encoder.
package reduct

import (
	"fmt"

	"github.com/sayaka-go/sayaka/internal/octree"
	"github.com/sayaka-go/sayaka/internal/rimg"
)

// Reductor holds one render's resolved options and does the
// resize+quantize pass.
type Reductor struct {
	opt rimg.ImageOpt
}

// New returns a Reductor for the given options.
func New(opt rimg.ImageOpt) *Reductor {
	return &Reductor{opt: opt}
}

// Resize produces a new ARGB16 buffer of exactly (dstW, dstH), sampling
// src via an integer Rational cursor per axis. SIMPLE nearest-samples a
// single source pixel per destination pixel; HIGH_QUALITY averages the
// box of source pixels that map onto each destination pixel.
func (r *Reductor) Resize(src *rimg.ImageBuffer, dstW, dstH int) (*rimg.ImageBuffer, error) {
	work, err := rimg.ConvertToARGB16(src)
	if err != nil {
		return nil, fmt.Errorf("reduct: resize: %w", err)
	}
	if dstW <= 0 || dstH <= 0 {
		return nil, fmt.Errorf("reduct: resize: non-positive target size %dx%d", dstW, dstH)
	}
	if dstW == work.Width && dstH == work.Height {
		return work, nil
	}

	out := rimg.New(dstW, dstH, rimg.ARGB16)
	out.HasAlpha = work.HasAlpha

	stepX := rimg.NewRational(int32(work.Width/dstW), int32(work.Width%dstW), int32(dstW))
	stepY := rimg.NewRational(int32(work.Height/dstH), int32(work.Height%dstH), int32(dstH))

	switch r.opt.Method {
	case rimg.Simple:
		cursorY := rimg.NewRational(0, 0, int32(dstH))
		for dy := 0; dy < dstH; dy++ {
			sy := int(cursorY.I)
			if sy >= work.Height {
				sy = work.Height - 1
			}
			cursorX := rimg.NewRational(0, 0, int32(dstW))
			for dx := 0; dx < dstW; dx++ {
				sx := int(cursorX.I)
				if sx >= work.Width {
					sx = work.Width - 1
				}
				out.SetARGB16At(dx, dy, work.ARGB16At(sx, sy))
				cursorX.Add(stepX)
			}
			cursorY.Add(stepY)
		}
	case rimg.HighQuality:
		cursorY := rimg.NewRational(0, 0, int32(dstH))
		for dy := 0; dy < dstH; dy++ {
			y0 := int(cursorY.I)
			next := cursorY
			next.Add(stepY)
			y1 := int(next.I)
			if y1 <= y0 {
				y1 = y0 + 1
			}
			if y1 > work.Height {
				y1 = work.Height
			}
			cursorX := rimg.NewRational(0, 0, int32(dstW))
			for dx := 0; dx < dstW; dx++ {
				x0 := int(cursorX.I)
				nx := cursorX
				nx.Add(stepX)
				x1 := int(nx.I)
				if x1 <= x0 {
					x1 = x0 + 1
				}
				if x1 > work.Width {
					x1 = work.Width
				}
				out.SetARGB16At(dx, dy, averageBox(work, x0, y0, x1, y1))
				cursorX.Add(stepX)
			}
			cursorY.Add(stepY)
		}
	default:
		return nil, fmt.Errorf("reduct: unknown reduct method %d", r.opt.Method)
	}
	return out, nil
}

// scale5to8 widens a 5-bit channel to its 8-bit equivalent by
// replicating the top bits into the low bits, so 0x1f maps to 0xff
// exactly rather than 0xf8.
func scale5to8(v uint8) uint8 {
	return v<<3 | v>>2
}

func averageBox(img *rimg.ImageBuffer, x0, y0, x1, y1 int) uint16 {
	var r, g, b, n, alphaHits int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			rv, gv, bv, a := rimg.UnpackARGB16(img.ARGB16At(x, y))
			r += int(rv)
			g += int(gv)
			b += int(bv)
			if a {
				alphaHits++
			}
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return rimg.RGB555ToARGB16(uint32(r/n), uint32(g/n), uint32(b/n), alphaHits*2 >= n)
}

// fixedFinderFor resolves the FixedFinder for every ColorMode except
// Adaptive, which instead builds an octree from the image's own pixels.
func fixedFinderFor(tag rimg.ColorTag) (FixedFinder, error) {
	switch tag.Mode {
	case rimg.ColorGray:
		return NewGrayFinder(tag.Count), nil
	case rimg.ColorRGB8:
		return NewRGB8Finder(), nil
	case rimg.ColorVGA16:
		return NewVGA16Finder(), nil
	case rimg.ColorRGB332:
		return NewRGB332Finder(), nil
	case rimg.ColorXterm256:
		return NewXterm256Finder(), nil
	default:
		return nil, fmt.Errorf("reduct: not a fixed color mode: %d", tag.Mode)
	}
}

// Quantize converts an ARGB16 working buffer to AIDX16 against the
// configured palette, applying the configured diffusion kernel, CDM
// attenuation, and gain. The transparent-background flag, when set,
// leaves alpha-flagged source pixels pointing at palette index 0
// rather than quantizing their color.
func (r *Reductor) Quantize(src *rimg.ImageBuffer) (*rimg.ImageBuffer, error) {
	if src.Format != rimg.ARGB16 {
		return nil, fmt.Errorf("reduct: Quantize requires ARGB16 input, got format %d", src.Format)
	}

	var palette []rimg.ColorRGB
	var nearest func(r, g, b uint8) int

	if r.opt.Color.Mode == rimg.ColorAdaptive {
		tree := octree.New()
		for y := 0; y < src.Height; y++ {
			for x := 0; x < src.Width; x++ {
				rv, gv, bv, _ := rimg.UnpackARGB16(src.ARGB16At(x, y))
				tree.Add(uint8(rv), uint8(gv), uint8(bv))
			}
		}
		palette = tree.Reduce(r.opt.Color.Count)
		finder := octree.NewFinder(palette, 8)
		nearest = finder.Nearest
	} else {
		f, err := fixedFinderFor(r.opt.Color)
		if err != nil {
			return nil, err
		}
		palette = f.Palette()
		nearest = f.Nearest
	}

	out := rimg.New(src.Width, src.Height, rimg.AIDX16)
	out.Palette = palette
	out.PaletteBuf = palette

	k := kernels[r.opt.Diffuse]
	buf := NewErrBuf(src.Width)

	gain := int32(256)
	if r.opt.Gain >= 0 {
		gain = int32(r.opt.Gain)
	}
	cdm := int32(r.opt.CDM)

	// cdmLevel and prevR/G/B track the differential-color attenuator's
	// running state across the whole raster in scan order, not per row:
	// a big jump from the previous pixel relaxes the attenuation for a
	// few pixels, the way a moving average would, so sharp edges keep
	// more of their contrast than a flat "always attenuate by cdm" rule.
	cdmLevel := int32(256)
	var prevR, prevG, prevB int32

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			rv, gv, bv, alpha := rimg.UnpackARGB16(src.ARGB16At(x, y))
			r8 := scale5to8(uint8(rv))
			g8 := scale5to8(uint8(gv))
			b8 := scale5to8(uint8(bv))

			if r.opt.OutputTransBG && alpha {
				out.SetIndexAt(x, y, 0x8000)
				continue
			}

			e := buf.At(x, 0)
			ar := saturateUint8(int32(r8)*gain/256 + e[0])
			ag := saturateUint8(int32(g8)*gain/256 + e[1])
			ab := saturateUint8(int32(b8)*gain/256 + e[2])

			idx := nearest(ar, ag, ab)
			if idx < 0 {
				idx = 0
			}
			chosen := palette[idx]

			errR := int32(ar) - int32(chosen.R)
			errG := int32(ag) - int32(chosen.G)
			errB := int32(ab) - int32(chosen.B)
			if cdm > 0 {
				curCdm := cdmLevel / 2
				if d := abs32(int32(r8) - prevR); d > curCdm {
					curCdm = d
				}
				if d := abs32(int32(g8) - prevG); d > curCdm {
					curCdm = d
				}
				if d := abs32(int32(b8) - prevB); d > curCdm {
					curCdm = d
				}
				curCdm += cdm
				if curCdm > 256 {
					curCdm = 256
				}
				cdmLevel = curCdm
				prevR, prevG, prevB = int32(r8), int32(g8), int32(b8)

				errR = errR * curCdm / 256
				errG = errG * curCdm / 256
				errB = errB * curCdm / 256
			}
			k.Diffuse(buf, x, errR, errG, errB)

			v := uint16(idx)
			if alpha {
				v |= 0x8000
			}
			out.SetIndexAt(x, y, v)
		}
		buf.Advance()
	}
	return out, nil
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
