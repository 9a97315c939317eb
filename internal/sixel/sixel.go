// Package sixel encodes a palettized ImageBuffer as a DEC SIXEL escape
// sequence: a palette preamble, one "band" of encoded rows per 6 pixel
// rows, and a terminator. Two body encodings are supported: the normal
// per-color RLE pass, and an OR-mode bit-plane pass that trades a
// larger palette for fewer redraw passes on wide images.
package sixel

import (
	"bytes"
	"fmt"

	"github.com/sayaka-go/sayaka/internal/rimg"
)

const (
	dcsIntro = "\x1bP" // 7-bit DCS; 8-bit hosts may prefer "\x90"
	dcsEnd   = "\x1b\\"

	// sixelBase is the ASCII value that encodes an all-zero 6-dot column.
	sixelBase = 0x3f
)

// Encoder renders ImageBuffers with Format == AIDX16 into SIXEL byte
// streams.
type Encoder struct {
	orMode     bool
	transBG    bool
	suppressPalette bool
}

// NewEncoder builds an Encoder from the render options that matter to
// the wire format.
func NewEncoder(orMode, transBG, suppressPalette bool) *Encoder {
	return &Encoder{orMode: orMode, transBG: transBG, suppressPalette: suppressPalette}
}

// Encode renders img as a complete SIXEL sequence, preamble through
// terminator.
func (e *Encoder) Encode(img *rimg.ImageBuffer) ([]byte, error) {
	if img.Format != rimg.AIDX16 {
		return nil, fmt.Errorf("sixel: Encode requires AIDX16 input, got format %d", img.Format)
	}
	var buf bytes.Buffer
	buf.WriteString(dcsIntro)
	fmt.Fprintf(&buf, "7;1;q")
	fmt.Fprintf(&buf, "\"1;1;%d;%d", img.Width, img.Height)

	if !e.suppressPalette {
		writePalette(&buf, img.Palette)
	}

	if e.orMode {
		encodeOrMode(&buf, img)
	} else {
		encodeNormal(&buf, img)
	}

	buf.WriteString(dcsEnd)
	return buf.Bytes(), nil
}

// Cancel returns the escape sequence that aborts an in-flight SIXEL
// transfer, for when the user scrolls or interrupts mid-render.
func Cancel() []byte {
	return []byte("\x18") // CAN
}

func writePalette(buf *bytes.Buffer, palette []rimg.ColorRGB) {
	for i, c := range palette {
		pr := int(c.R) * 100 / 255
		pg := int(c.G) * 100 / 255
		pb := int(c.B) * 100 / 255
		fmt.Fprintf(buf, "#%d;2;%d;%d;%d", i, pr, pg, pb)
	}
}

// encodeNormal emits one pass per color actually used in each 6-row
// band: for each color, walk the band's columns building a 6-bit
// pattern per column, run-length-encode repeated columns, and return
// to the band's start ("$") before the next color, finishing the band
// with "-".
func encodeNormal(buf *bytes.Buffer, img *rimg.ImageBuffer) {
	width := img.Width
	for bandTop := 0; bandTop < img.Height; bandTop += 6 {
		bandHeight := 6
		if bandTop+bandHeight > img.Height {
			bandHeight = img.Height - bandTop
		}
		used := usedColorsInBand(img, bandTop, bandHeight)
		first := true
		for _, colorIdx := range used {
			if !first {
				buf.WriteByte('$')
			}
			first = false
			fmt.Fprintf(buf, "#%d", colorIdx)
			writeRunLengthRow(buf, width, func(x int) byte {
				return columnPattern(img, x, bandTop, bandHeight, colorIdx)
			})
		}
		buf.WriteByte('-')
	}
}

// usedColorsInBand returns the palette indices that appear anywhere in
// the band, in ascending order, so output is deterministic.
func usedColorsInBand(img *rimg.ImageBuffer, bandTop, bandHeight int) []int {
	seen := map[int]bool{}
	for dy := 0; dy < bandHeight; dy++ {
		y := bandTop + dy
		for x := 0; x < img.Width; x++ {
			idx := int(img.IndexAt(x, y) & 0x7fff)
			seen[idx] = true
		}
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	// Simple insertion sort: band palettes are small (<= a few hundred).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// columnPattern builds the 6-dot sixel byte for column x of a band:
// bit n (0-5) is set when row bandTop+n belongs to colorIdx.
func columnPattern(img *rimg.ImageBuffer, x, bandTop, bandHeight, colorIdx int) byte {
	var bits byte
	for dy := 0; dy < bandHeight; dy++ {
		y := bandTop + dy
		idx := int(img.IndexAt(x, y) & 0x7fff)
		if idx == colorIdx {
			bits |= 1 << uint(dy)
		}
	}
	return bits
}

// writeRunLengthRow walks columns 0..width-1 calling colFn for each
// byte value, collapsing runs of 4 or more identical bytes into the
// "!<count><char>" repeat form and leaving shorter runs literal. This
// is sixel_repunit.
func writeRunLengthRow(buf *bytes.Buffer, width int, colFn func(x int) byte) {
	x := 0
	for x < width {
		v := colFn(x)
		run := 1
		for x+run < width && colFn(x+run) == v {
			run++
		}
		ch := byte(sixelBase + v)
		if run >= 4 {
			fmt.Fprintf(buf, "!%d%c", run, ch)
		} else {
			for i := 0; i < run; i++ {
				buf.WriteByte(ch)
			}
		}
		x += run
	}
}

// orDeptable maps a bit position (0-7) to the order bit-planes are
// emitted in OR mode: low bits first, since they flip most often and
// benefit most from being combined under "$" rather than "-".
var orDeptable = [8]int{0, 1, 2, 3, 4, 5, 6, 7}

// encodeOrMode emits one pass per significant bit of the palette index
// instead of one pass per color. Within a band, each bit-plane pass
// ends with "$", returning to the band start so the next plane's dot
// pattern is drawn over the same cells, which a SIXEL-OR-capable
// terminal composites by ORing rather than overwriting; sixel_ormode_h6 is the per-band driver and deptable
// fixes the bit emission order.
func encodeOrMode(buf *bytes.Buffer, img *rimg.ImageBuffer) {
	width := img.Width
	bits := paletteBits(len(img.Palette))
	for bandTop := 0; bandTop < img.Height; bandTop += 6 {
		bandHeight := 6
		if bandTop+bandHeight > img.Height {
			bandHeight = img.Height - bandTop
		}
		for i := 0; i < bits; i++ {
			bit := orDeptable[i]
			fmt.Fprintf(buf, "#%d", 1<<uint(bit))
			writeRunLengthRow(buf, width, func(x int) byte {
				return orColumnPattern(img, x, bandTop, bandHeight, bit)
			})
			if i != bits-1 {
				buf.WriteByte('$')
			}
		}
		buf.WriteByte('-')
	}
}

// orColumnPattern is like columnPattern but tests a single bit of the
// palette index rather than equality with a specific color.
func orColumnPattern(img *rimg.ImageBuffer, x, bandTop, bandHeight, bit int) byte {
	var bits byte
	for dy := 0; dy < bandHeight; dy++ {
		y := bandTop + dy
		idx := int(img.IndexAt(x, y) & 0x7fff)
		if idx&(1<<uint(bit)) != 0 {
			bits |= 1 << uint(dy)
		}
	}
	return bits
}

func paletteBits(n int) int {
	bits := 0
	for (1 << uint(bits)) < n {
		bits++
	}
	if bits == 0 {
		bits = 1
	}
	if bits > 8 {
		bits = 8
	}
	return bits
}
