package sixel

import (
	"bytes"
	"testing"

	"github.com/sayaka-go/sayaka/internal/rimg"
)

func indexedImage(w, h int, palette []rimg.ColorRGB, idx func(x, y int) int) *rimg.ImageBuffer {
	img := rimg.New(w, h, rimg.AIDX16)
	img.Palette = palette
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetIndexAt(x, y, uint16(idx(x, y)))
		}
	}
	return img
}

func TestEncodeStartsWithDCSAndEndsWithST(t *testing.T) {
	palette := []rimg.ColorRGB{{R: 255, G: 0, B: 0}, {R: 0, G: 255, B: 0}}
	img := indexedImage(4, 4, palette, func(x, y int) int { return (x + y) % 2 })
	enc := NewEncoder(false, false, false)
	out, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(out, []byte(dcsIntro)) {
		t.Errorf("output does not start with DCS intro: %q", out[:min(20, len(out))])
	}
	if !bytes.HasSuffix(out, []byte(dcsEnd)) {
		t.Errorf("output does not end with ST: %q", out[max(0, len(out)-10):])
	}
}

func TestEncodeRejectsNonIndexedFormat(t *testing.T) {
	img := rimg.New(2, 2, rimg.RGB24)
	enc := NewEncoder(false, false, false)
	if _, err := enc.Encode(img); err == nil {
		t.Error("Encode on RGB24 input: want error, got nil")
	}
}

func TestBandBoundaryAtSixRows(t *testing.T) {
	// 7 rows means two bands: one full 6-row band, one 1-row band.
	// Each band must terminate with '-'.
	palette := []rimg.ColorRGB{{R: 0, G: 0, B: 0}}
	img := indexedImage(2, 7, palette, func(x, y int) int { return 0 })
	enc := NewEncoder(false, false, false)
	out, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if bytes.Count(out, []byte("-")) != 2 {
		t.Errorf("expected 2 band terminators for 7 rows, got %d in %q", bytes.Count(out, []byte("-")), out)
	}
}

func TestRunLengthCollapsesLongRuns(t *testing.T) {
	var buf bytes.Buffer
	writeRunLengthRow(&buf, 10, func(x int) byte { return 0 })
	if !bytes.Contains(buf.Bytes(), []byte("!10")) {
		t.Errorf("expected a repeat-count escape for a 10-wide run, got %q", buf.String())
	}
}

func TestRunLengthLeavesShortRunsLiteral(t *testing.T) {
	var buf bytes.Buffer
	writeRunLengthRow(&buf, 2, func(x int) byte { return 0 })
	if bytes.Contains(buf.Bytes(), []byte("!")) {
		t.Errorf("short run should stay literal, got %q", buf.String())
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
