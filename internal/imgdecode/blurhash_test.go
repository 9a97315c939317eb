package imgdecode

import "testing"

func TestDecodeStringProducesRequestedSize(t *testing.T) {
	// A minimal valid 1x1-component blurhash (sizeFlag '0' -> numX=numY=1,
	// so the only fields are sizeFlag, quantMaxAC, and a 4-char DC value).
	hash := "000000"
	img, err := DecodeString(hash, 1, 8, 8)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if img.Width != 8 || img.Height != 8 {
		t.Errorf("size = %dx%d, want 8x8", img.Width, img.Height)
	}
}

func TestDecodeStringRejectsShortInput(t *testing.T) {
	if _, err := DecodeString("abc", 1, 8, 8); err == nil {
		t.Error("DecodeString on too-short input: want error, got nil")
	}
}

func TestDecodeStringRejectsLengthMismatch(t *testing.T) {
	// sizeFlag '1' implies numX=2,numY=1, requiring an exact length of
	// 4+2*(2*1)=8; one short of that must be rejected.
	if _, err := DecodeString("1100000", 1, 8, 8); err == nil {
		t.Error("DecodeString on mismatched component length: want error, got nil")
	}
}
