package rimg

// ReductMethod selects the reductor's resize+quantize strategy.
type ReductMethod int

const (
	Simple ReductMethod = iota
	HighQuality
)

// Diffuse selects an error-diffusion kernel.
type Diffuse int

const (
	DiffuseNone Diffuse = iota
	DiffuseSFL          // Sierra Filter Lite
	DiffuseFS           // Floyd-Steinberg
	DiffuseAtkinson
	DiffuseJaJuNi // Jarvis, Judice, Ninke
	DiffuseStucki
	DiffuseBurkes
	DiffuseTwo
	DiffuseThree
	DiffuseRGB
)

// ColorMode selects the palette family.
type ColorMode int

const (
	ColorGray ColorMode = iota
	ColorRGB8
	ColorVGA16
	ColorRGB332
	ColorXterm256
	ColorAdaptive
)

// ColorTag pairs a ColorMode with a color count, the way the C union
// `ColorMode` 16-bit tag does (GRAY 2..256, ADAPTIVE 8..256, others fixed).
type ColorTag struct {
	Mode  ColorMode
	Count int
}

// ImageOpt is the immutable per-render configuration record.
type ImageOpt struct {
	Method         ReductMethod
	Diffuse        Diffuse
	Color          ColorTag
	CDM            int // 0..256 differential-color attenuator
	Gain           int // -1 (identity) or 0..512, 256 == 1.0
	OutputOrMode   bool
	OutputTransBG  bool
	SuppressPalette bool
}

// DefaultImageOpt mirrors image_opt_init(): high quality, SFL dithering,
// adaptive 256-color palette, no CDM, identity gain.
func DefaultImageOpt() ImageOpt {
	return ImageOpt{
		Method:  HighQuality,
		Diffuse: DiffuseSFL,
		Color:   ColorTag{Mode: ColorAdaptive, Count: 256},
		CDM:     0,
		Gain:    -1,
	}
}

// ResizeAxis describes which dimension anchors an aspect-preserving resize.
type ResizeAxis int

const (
	ResizeBoth ResizeAxis = iota
	ResizeWidth
	ResizeHeight
	ResizeLong
	ResizeShort
	ResizeBothScaledown
	ResizeWidthScaledown
	ResizeHeightScaledown
	ResizeLongScaledown
	ResizeShortScaledown
)

func (a ResizeAxis) scaledownOnly() bool {
	switch a {
	case ResizeBothScaledown, ResizeWidthScaledown, ResizeHeightScaledown,
		ResizeLongScaledown, ResizeShortScaledown:
		return true
	}
	return false
}

// PreferredSize implements spec §4.3: collapse LONG/SHORT/BOTH into
// WIDTH/HEIGHT using the current aspect ratio, clamp to current size for
// *_SCALEDOWN variants, then compute the other dimension by integer
// division. A zero result means "too small to render" (caller's job).
func PreferredSize(curW, curH int, axis ResizeAxis, reqW, reqH int) (int, int) {
	resolved := axis
	switch axis {
	case ResizeLong, ResizeLongScaledown:
		if curW >= curH {
			resolved = ResizeWidth
		} else {
			resolved = ResizeHeight
		}
	case ResizeShort, ResizeShortScaledown:
		if curW <= curH {
			resolved = ResizeWidth
		} else {
			resolved = ResizeHeight
		}
	case ResizeBoth, ResizeBothScaledown:
		switch {
		case reqW == 0:
			resolved = ResizeHeight
		case reqH == 0:
			resolved = ResizeWidth
		default:
			resolved = ResizeBoth
		}
	case ResizeWidthScaledown:
		resolved = ResizeWidth
	case ResizeHeightScaledown:
		resolved = ResizeHeight
	}

	if reqW < 1 {
		reqW = curW
	}
	if reqH < 1 {
		reqH = curH
	}

	if axis.scaledownOnly() {
		if reqW > curW {
			reqW = curW
		}
		if reqH > curH {
			reqH = curH
		}
	}

	var w, h int
	switch resolved {
	case ResizeWidth:
		w = reqW
		if curW != 0 {
			h = curH * w / curW
		}
	case ResizeHeight:
		h = reqH
		if curH != 0 {
			w = curW * h / curH
		}
	case ResizeBoth:
		w = reqW
		h = reqH
	}
	return w, h
}
