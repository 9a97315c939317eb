package termstate

import "testing"

func TestParseOSC11(t *testing.T) {
	tests := []struct {
		reply            string
		wantR, wantG, wantB uint8
		wantOK           bool
	}{
		{"\x1b]11;rgb:1f1f/2e2e/3c3c\x07", 0x1f, 0x2e, 0x3c, true},
		{"\x1b]11;rgb:ffff/ffff/ffff\x1b\\", 0xff, 0xff, 0xff, true},
		{"not an osc11 reply", 0, 0, 0, false},
	}
	for _, tt := range tests {
		r, g, b, ok := parseOSC11(tt.reply)
		if ok != tt.wantOK {
			t.Errorf("parseOSC11(%q) ok = %v, want %v", tt.reply, ok, tt.wantOK)
			continue
		}
		if ok && (r != tt.wantR || g != tt.wantG || b != tt.wantB) {
			t.Errorf("parseOSC11(%q) = (%x,%x,%x), want (%x,%x,%x)", tt.reply, r, g, b, tt.wantR, tt.wantG, tt.wantB)
		}
	}
}

func TestSaveRestoreCursorSequencesAreDistinct(t *testing.T) {
	if SaveCursor() == RestoreCursor() {
		t.Error("SaveCursor and RestoreCursor must differ")
	}
}
