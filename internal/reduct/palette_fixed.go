package reduct

import "github.com/sayaka-go/sayaka/internal/rimg"

// FixedFinder maps an 8-bit RGB triple directly to a palette index
// without a search, for the fixed (non-adaptive) color modes.
type FixedFinder interface {
	Palette() []rimg.ColorRGB
	Nearest(r, g, b uint8) int
}

// rgb8Finder is the 8-corner cube: each channel independently rounds to
// its nearest corner (0 or 255).
type rgb8Finder struct{ palette []rimg.ColorRGB }

// NewRGB8Finder builds the fixed 8-color corner-cube palette.
func NewRGB8Finder() FixedFinder {
	var p []rimg.ColorRGB
	for i := 0; i < 8; i++ {
		r := corner(i & 4)
		g := corner(i & 2)
		b := corner(i & 1)
		p = append(p, rimg.ColorRGB{R: r, G: g, B: b, Y: lum(r, g, b)})
	}
	return rgb8Finder{palette: p}
}

func corner(bit int) uint8 {
	if bit != 0 {
		return 255
	}
	return 0
}

func (f rgb8Finder) Palette() []rimg.ColorRGB { return f.palette }

func (f rgb8Finder) Nearest(r, g, b uint8) int {
	idx := 0
	if r >= 128 {
		idx |= 4
	}
	if g >= 128 {
		idx |= 2
	}
	if b >= 128 {
		idx |= 1
	}
	return idx
}

// vga16 is the standard 16-color ANSI console palette, in the order the
// terminal's SGR 30-37/90-97 codes expect.
var vga16Table = []rimg.ColorRGB{
	{R: 0, G: 0, B: 0},       // black
	{R: 170, G: 0, B: 0},     // red
	{R: 0, G: 170, B: 0},     // green
	{R: 170, G: 85, B: 0},    // yellow (brown)
	{R: 0, G: 0, B: 170},     // blue
	{R: 170, G: 0, B: 170},   // magenta
	{R: 0, G: 170, B: 170},   // cyan
	{R: 170, G: 170, B: 170}, // white (light grey)
	{R: 85, G: 85, B: 85},    // bright black
	{R: 255, G: 85, B: 85},   // bright red
	{R: 85, G: 255, B: 85},   // bright green
	{R: 255, G: 255, B: 85},  // bright yellow
	{R: 85, G: 85, B: 255},   // bright blue
	{R: 255, G: 85, B: 255},  // bright magenta
	{R: 85, G: 255, B: 255},  // bright cyan
	{R: 255, G: 255, B: 255}, // bright white
}

type vga16Finder struct{ palette []rimg.ColorRGB }

// NewVGA16Finder builds the 16-color ANSI console palette finder.
func NewVGA16Finder() FixedFinder {
	p := make([]rimg.ColorRGB, len(vga16Table))
	for i, c := range vga16Table {
		c.Y = lum(c.R, c.G, c.B)
		p[i] = c
	}
	return &vga16Finder{palette: p}
}

func (f *vga16Finder) Palette() []rimg.ColorRGB { return f.palette }

// Nearest applies a threshold rule before falling back to a squared
// distance search: colors whose channels are all within a narrow band
// of each other are routed to a grey entry, avoiding visible color
// fringing on near-neutral source pixels.
func (f *vga16Finder) Nearest(r, g, b uint8) int {
	maxc := max3(r, g, b)
	minc := min3(r, g, b)
	if int(maxc)-int(minc) < 8 {
		// near-grey: pick among the four achromatic entries (0, 7, 8, 15).
		grey := []int{0, 7, 8, 15}
		y := lum(r, g, b)
		best := grey[0]
		bestDiff := 256
		for _, idx := range grey {
			d := int(f.palette[idx].Y) - int(y)
			if d < 0 {
				d = -d
			}
			if d < bestDiff {
				bestDiff = d
				best = idx
			}
		}
		return best
	}
	best := 0
	bestDist := -1
	for i, c := range f.palette {
		dr := int(c.R) - int(r)
		dg := int(c.G) - int(g)
		db := int(c.B) - int(b)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// rgb332Finder maps 8-bit RGB directly to a 3:3:2-bit code, no search.
type rgb332Finder struct{ palette []rimg.ColorRGB }

// NewRGB332Finder builds the 256-entry 3:3:2 palette finder.
func NewRGB332Finder() FixedFinder {
	p := make([]rimg.ColorRGB, 256)
	for i := range p {
		r := uint8(i>>5) & 0x7
		g := uint8(i>>2) & 0x7
		b := uint8(i) & 0x3
		r8 := r<<5 | r<<2 | r>>1
		g8 := g<<5 | g<<2 | g>>1
		b8 := b<<6 | b<<4 | b<<2 | b
		p[i] = rimg.ColorRGB{R: r8, G: g8, B: b8, Y: lum(r8, g8, b8)}
	}
	return rgb332Finder{palette: p}
}

func (f rgb332Finder) Palette() []rimg.ColorRGB { return f.palette }

func (f rgb332Finder) Nearest(r, g, b uint8) int {
	ri := r >> 5
	gi := g >> 5
	bi := b >> 6
	return int(ri)<<5 | int(gi)<<2 | int(bi)
}

// xterm256Levels are the non-linear 6-step cube levels xterm uses for
// color codes 16-231.
var xterm256Levels = [6]uint8{0x00, 0x5f, 0x87, 0xaf, 0xd7, 0xff}

type xterm256Finder struct{ palette []rimg.ColorRGB }

// NewXterm256Finder builds the full 256-color xterm palette: 16 ANSI
// entries, a 6x6x6 non-linear color cube, and 24 greys.
func NewXterm256Finder() FixedFinder {
	p := make([]rimg.ColorRGB, 0, 256)
	for _, c := range vga16Table {
		c.Y = lum(c.R, c.G, c.B)
		p = append(p, c)
	}
	for ri := 0; ri < 6; ri++ {
		for gi := 0; gi < 6; gi++ {
			for bi := 0; bi < 6; bi++ {
				r, g, b := xterm256Levels[ri], xterm256Levels[gi], xterm256Levels[bi]
				p = append(p, rimg.ColorRGB{R: r, G: g, B: b, Y: lum(r, g, b)})
			}
		}
	}
	for i := 0; i < 24; i++ {
		v := uint8(8 + i*10)
		p = append(p, rimg.ColorRGB{R: v, G: v, B: v, Y: v})
	}
	return &xterm256Finder{palette: p}
}

func (f *xterm256Finder) Palette() []rimg.ColorRGB { return f.palette }

func xtermLevelIndex(v uint8) int {
	best := 0
	bestDiff := 256
	for i, lvl := range xterm256Levels {
		d := int(lvl) - int(v)
		if d < 0 {
			d = -d
		}
		if d < bestDiff {
			bestDiff = d
			best = i
		}
	}
	return best
}

func (f *xterm256Finder) Nearest(r, g, b uint8) int {
	maxc := max3(r, g, b)
	minc := min3(r, g, b)
	if int(maxc)-int(minc) < 8 {
		y := lum(r, g, b)
		best := 16 + 216
		bestDiff := 256
		for i := 0; i < 24; i++ {
			idx := 16 + 216 + i
			d := int(f.palette[idx].Y) - int(y)
			if d < 0 {
				d = -d
			}
			if d < bestDiff {
				bestDiff = d
				best = idx
			}
		}
		return best
	}
	ri := xtermLevelIndex(r)
	gi := xtermLevelIndex(g)
	bi := xtermLevelIndex(b)
	return 16 + ri*36 + gi*6 + bi
}

// grayFinder is an N-level (2..256) evenly spaced grayscale ramp.
type grayFinder struct{ palette []rimg.ColorRGB }

// NewGrayFinder builds an n-step grayscale ramp, n in [2,256].
func NewGrayFinder(n int) FixedFinder {
	if n < 2 {
		n = 2
	}
	if n > 256 {
		n = 256
	}
	p := make([]rimg.ColorRGB, n)
	for i := 0; i < n; i++ {
		v := uint8(i * 255 / (n - 1))
		p[i] = rimg.ColorRGB{R: v, G: v, B: v, Y: v}
	}
	return grayFinder{palette: p}
}

func (f grayFinder) Palette() []rimg.ColorRGB { return f.palette }

func (f grayFinder) Nearest(r, g, b uint8) int {
	y := lum(r, g, b)
	n := len(f.palette)
	idx := int(y) * (n - 1) / 255
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func lum(r, g, b uint8) uint8 {
	y := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
	if y > 255 {
		y = 255
	}
	return uint8(y)
}

func max3(a, b, c uint8) uint8 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min3(a, b, c uint8) uint8 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
