package reduct

import "github.com/sayaka-go/sayaka/internal/rimg"

// tap is one weighted neighbor offset in a diffusion kernel: the
// quantization error at the current pixel is distributed to
// (x+dx, y+dy) scaled by weight/denom.
type tap struct {
	dx, dy int
	weight int
}

// channelTap is a tap that carries only a single color channel,
// unscaled, to one neighbor cell. DIFFUSE_RGB is the one kernel built
// from these instead of a shared per-channel weight: it sends the
// error's R, G and B components to three different, unrelated cells
// rather than spreading one error vector over a common neighborhood.
type channelTap struct {
	dx, dy  int
	channel int // 0=R, 1=G, 2=B
}

// kernel is a full error-diffusion matrix. A kernel is either a set of
// taps applied uniformly to all three channels, or (exclusively) a set
// of channelTaps that route each channel on its own.
type kernel struct {
	taps    []tap
	denom   int
	rgbTaps []channelTap
}

var kernels = map[rimg.Diffuse]kernel{
	rimg.DiffuseNone: {},
	rimg.DiffuseSFL: {
		denom: 4,
		taps: []tap{
			{1, 0, 2}, {-1, 1, 1}, {0, 1, 1},
		},
	},
	rimg.DiffuseFS: {
		denom: 16,
		taps: []tap{
			{1, 0, 7}, {-1, 1, 3}, {0, 1, 5}, {1, 1, 1},
		},
	},
	rimg.DiffuseAtkinson: {
		denom: 8,
		taps: []tap{
			{1, 0, 1}, {2, 0, 1},
			{-1, 1, 1}, {0, 1, 1}, {1, 1, 1},
			{0, 2, 1},
		},
	},
	rimg.DiffuseJaJuNi: {
		denom: 48,
		taps: []tap{
			{1, 0, 7}, {2, 0, 5},
			{-2, 1, 3}, {-1, 1, 5}, {0, 1, 7}, {1, 1, 5}, {2, 1, 3},
			{-2, 2, 1}, {-1, 2, 3}, {0, 2, 5}, {1, 2, 3}, {2, 2, 1},
		},
	},
	rimg.DiffuseStucki: {
		denom: 42,
		taps: []tap{
			{1, 0, 8}, {2, 0, 4},
			{-2, 1, 2}, {-1, 1, 4}, {0, 1, 8}, {1, 1, 4}, {2, 1, 2},
			{-2, 2, 1}, {-1, 2, 2}, {0, 2, 4}, {1, 2, 2}, {2, 2, 1},
		},
	},
	rimg.DiffuseBurkes: {
		denom: 32,
		taps: []tap{
			{1, 0, 8}, {2, 0, 4},
			{-2, 1, 2}, {-1, 1, 4}, {0, 1, 8}, {1, 1, 4}, {2, 1, 2},
		},
	},
	rimg.DiffuseTwo: {
		denom: 256,
		taps: []tap{
			{1, 0, 128}, {0, 1, 128},
		},
	},
	rimg.DiffuseThree: {
		denom: 256,
		taps: []tap{
			{1, 0, 102}, {0, 1, 102}, {1, 1, 51},
		},
	},
	// RGB routes each channel to its own, unrelated cell at full
	// strength instead of spreading a shared error vector: R stays on
	// the current row (and is discarded at Advance, since row 0 is
	// never revisited), B goes to the next row at the same column, and
	// G goes to the next row one column over.
	rimg.DiffuseRGB: {
		rgbTaps: []channelTap{
			{0, 0, 0}, {0, 1, 2}, {1, 1, 1},
		},
	},
}

// maxKernelRows is the number of rows any kernel reaches (the current
// row plus dy up to 2), used to size the ring buffer.
const maxKernelRows = 3

// ErrBuf accumulates per-channel diffusion error for a strip of rows
// ahead of the scan line currently being quantized: rows[0] is the row
// being scanned right now, rows[1] and rows[2] receive error destined
// for the next two rows. Advance physically rotates the strip and
// zeroes the row newly exposed two rows ahead, so a row always starts
// clean the first time anything is diffused into it.
type ErrBuf struct {
	width int
	rows  [maxKernelRows][][3]int32
}

// NewErrBuf allocates an error buffer for a raster width columns wide,
// padded on both sides so kernel taps never index out of bounds.
func NewErrBuf(width int) *ErrBuf {
	b := &ErrBuf{width: width}
	for i := range b.rows {
		b.rows[i] = make([][3]int32, width+2*maxKernelRows)
	}
	return b
}

// At returns the accumulated error for column x, dy rows ahead of the
// row currently being scanned (0 <= dy < maxKernelRows).
func (b *ErrBuf) At(x, dy int) [3]int32 {
	return b.rows[dy][x+maxKernelRows]
}

// Add accumulates err into the slot at column x, dy rows ahead.
func (b *ErrBuf) Add(x, dy int, err [3]int32) {
	i := x + maxKernelRows
	if dy < 0 || dy >= maxKernelRows || i < 0 || i >= len(b.rows[dy]) {
		return
	}
	r := b.rows[dy]
	r[i][0] += err[0]
	r[i][1] += err[1]
	r[i][2] += err[2]
}

// Advance rotates the strip forward by one scan line: the consumed
// row 0 is recycled as the new, zeroed row at the deepest lookahead
// depth, and what was row 1 becomes the new row 0.
func (b *ErrBuf) Advance() {
	spent := b.rows[0]
	for i := 0; i < maxKernelRows-1; i++ {
		b.rows[i] = b.rows[i+1]
	}
	for i := range spent {
		spent[i] = [3]int32{}
	}
	b.rows[maxKernelRows-1] = spent
}

// Diffuse spreads a quantization error (computed at column x of the
// current row) to this kernel's taps in buf.
func (k kernel) Diffuse(buf *ErrBuf, x int, errR, errG, errB int32) {
	if len(k.rgbTaps) > 0 {
		err := [3]int32{errR, errG, errB}
		for _, t := range k.rgbTaps {
			var e [3]int32
			e[t.channel] = err[t.channel]
			buf.Add(x+t.dx, t.dy, e)
		}
		return
	}
	if k.denom == 0 {
		return
	}
	for _, t := range k.taps {
		w := int32(t.weight)
		buf.Add(x+t.dx, t.dy, [3]int32{
			errR * w / int32(k.denom),
			errG * w / int32(k.denom),
			errB * w / int32(k.denom),
		})
	}
}

func saturateUint8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
