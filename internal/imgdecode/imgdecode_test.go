package imgdecode

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeStreamRecognizesPNG(t *testing.T) {
	data := encodeTestPNG(t, 4, 4)
	reg := NewRegistry()
	outcome := reg.DecodeStream(bytes.NewReader(data))
	if outcome.Status != Ok {
		t.Fatalf("Status = %v, want Ok (err=%v)", outcome.Status, outcome.Err)
	}
	if outcome.Image.Width != 4 || outcome.Image.Height != 4 {
		t.Errorf("decoded size = %dx%d, want 4x4", outcome.Image.Width, outcome.Image.Height)
	}
}

func TestDecodeStreamUnknownFormatIsNotMine(t *testing.T) {
	reg := NewRegistry()
	outcome := reg.DecodeStream(bytes.NewReader([]byte("not an image at all, just text")))
	if outcome.Status != NotMine {
		t.Errorf("Status = %v, want NotMine", outcome.Status)
	}
}

func TestDecodeStreamTruncatedPNGIsFailedNotNotMine(t *testing.T) {
	data := encodeTestPNG(t, 4, 4)
	truncated := data[:len(data)/2]
	reg := NewRegistry()
	outcome := reg.DecodeStream(bytes.NewReader(truncated))
	if outcome.Status != Failed {
		t.Errorf("Status = %v, want Failed (the PNG magic matched, so a decode error must not be reported as NotMine)", outcome.Status)
	}
}

func TestJXLSniffRecognizedButUnavailable(t *testing.T) {
	bareCodestream := []byte{0xff, 0x0a, 0, 0, 0, 0}
	reg := NewRegistry()
	outcome := reg.DecodeStream(bytes.NewReader(bareCodestream))
	if outcome.Status != Failed {
		t.Fatalf("Status = %v, want Failed for recognized-but-unavailable JXL", outcome.Status)
	}
}
