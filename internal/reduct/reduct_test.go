package reduct

import (
	"testing"

	"github.com/sayaka-go/sayaka/internal/rimg"
)

func solidRGB24(w, h int, r, g, b uint8) *rimg.ImageBuffer {
	img := rimg.New(w, h, rimg.RGB24)
	for i := 0; i < w*h; i++ {
		img.Buf[i*3] = r
		img.Buf[i*3+1] = g
		img.Buf[i*3+2] = b
	}
	return img
}

func TestResizeSimpleProducesRequestedSize(t *testing.T) {
	src := solidRGB24(8, 8, 10, 20, 30)
	red := New(rimg.ImageOpt{Method: rimg.Simple})
	out, err := red.Resize(src, 4, 2)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if out.Width != 4 || out.Height != 2 {
		t.Fatalf("Resize size = %dx%d, want 4x2", out.Width, out.Height)
	}
}

func TestResizeHighQualityAveragesSolidColor(t *testing.T) {
	src := solidRGB24(16, 16, 10, 20, 30)
	red := New(rimg.ImageOpt{Method: rimg.HighQuality})
	out, err := red.Resize(src, 4, 4)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	r, g, b, _ := rimg.UnpackARGB16(out.ARGB16At(0, 0))
	wantR, wantG, wantB := uint32(10)>>3, uint32(20)>>3, uint32(30)>>3
	if r != wantR || g != wantG || b != wantB {
		t.Errorf("averaged solid color = (%d,%d,%d), want (%d,%d,%d)", r, g, b, wantR, wantG, wantB)
	}
}

func TestQuantizeFixedPaletteProducesValidBuffer(t *testing.T) {
	src := solidRGB24(8, 8, 200, 10, 10)
	red := New(rimg.ImageOpt{
		Method:  rimg.HighQuality,
		Diffuse: rimg.DiffuseFS,
		Color:   rimg.ColorTag{Mode: rimg.ColorVGA16},
	})
	work, err := red.Resize(src, 8, 8)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	out, err := red.Quantize(work)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(out.Palette) != 16 {
		t.Errorf("VGA16 palette len = %d, want 16", len(out.Palette))
	}
}

func TestQuantizeAdaptivePaletteProducesValidBuffer(t *testing.T) {
	src := rimg.New(8, 8, rimg.RGB24)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			o := (y*8 + x) * 3
			src.Buf[o] = uint8(x * 30)
			src.Buf[o+1] = uint8(y * 30)
			src.Buf[o+2] = 100
		}
	}
	red := New(rimg.ImageOpt{
		Method:  rimg.HighQuality,
		Diffuse: rimg.DiffuseSFL,
		Color:   rimg.ColorTag{Mode: rimg.ColorAdaptive, Count: 16},
	})
	work, err := red.Resize(src, 8, 8)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	out, err := red.Quantize(work)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(out.Palette) > 16 {
		t.Errorf("adaptive palette len = %d, want <= 16", len(out.Palette))
	}
}

// quantizeGradient runs a one-row gradient (flat, then a sharp jump,
// then flat again) through Quantize with the given CDM setting and
// returns the resulting palette indices.
func quantizeGradient(t *testing.T, cdm int) []uint16 {
	t.Helper()
	src := rimg.New(8, 1, rimg.RGB24)
	for x := 0; x < 4; x++ {
		src.Buf[x*3], src.Buf[x*3+1], src.Buf[x*3+2] = 120, 120, 120
	}
	for x := 4; x < 8; x++ {
		src.Buf[x*3], src.Buf[x*3+1], src.Buf[x*3+2] = 124, 124, 124
	}
	red := New(rimg.ImageOpt{
		Method:  rimg.Simple,
		Diffuse: rimg.DiffuseFS,
		Color:   rimg.ColorTag{Mode: rimg.ColorXterm256},
		Gain:    256,
		CDM:     cdm,
	})
	work, err := red.Resize(src, 8, 1)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	out, err := red.Quantize(work)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	idx := make([]uint16, 8)
	for x := 0; x < 8; x++ {
		idx[x] = out.IndexAt(x, 0) & 0x7fff
	}
	return idx
}

func TestQuantizeCDMChangesDiffusedError(t *testing.T) {
	noCDM := quantizeGradient(t, 0)
	withCDM := quantizeGradient(t, 200)
	same := true
	for x := range noCDM {
		if noCDM[x] != withCDM[x] {
			same = false
			break
		}
	}
	if same {
		t.Error("expected CDM attenuation to change the diffused quantization outcome")
	}
}

func TestQuantizeCDMLevelIsRunningNotPerPixel(t *testing.T) {
	// A flat run should settle cdmLevel low (heavy attenuation) before
	// the jump at x=4; a stateless per-pixel attenuator would treat
	// every pixel identically regardless of history and so would not
	// differ from CDM=0 on the leading flat run at all, whereas the
	// running state still nudges the result via the residual tracked
	// in the diffusion buffer once it crosses the edge.
	withCDM := quantizeGradient(t, 256)
	for x := 1; x < 4; x++ {
		if withCDM[x] != withCDM[0] {
			t.Errorf("flat run should quantize uniformly once settled: idx[%d]=%d idx[0]=%d", x, withCDM[x], withCDM[0])
		}
	}
}

func TestErrBufRowStartsCleanAfterAdvance(t *testing.T) {
	buf := NewErrBuf(4)
	buf.Add(1, 1, [3]int32{5, 5, 5})
	buf.Advance()
	// What was row 1 is now row 0, and should carry the error forward...
	if got := buf.At(1, 0); got != [3]int32{5, 5, 5} {
		t.Errorf("row after advance = %v, want carried error {5,5,5}", got)
	}
	// ...while the newly exposed deepest row must start at zero.
	if got := buf.At(1, maxKernelRows-1); got != [3]int32{0, 0, 0} {
		t.Errorf("newly exposed row = %v, want zero", got)
	}
}
