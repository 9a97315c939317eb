package octree

import "testing"

func TestReduceCapsColorCount(t *testing.T) {
	tr := New()
	for r := uint8(0); r < 32; r += 4 {
		for g := uint8(0); g < 32; g += 4 {
			tr.Add(r, g, 16)
		}
	}
	palette := tr.Reduce(16)
	if len(palette) > 16 {
		t.Fatalf("Reduce(16) returned %d colors, want <= 16", len(palette))
	}
	if len(palette) == 0 {
		t.Fatal("Reduce returned an empty palette")
	}
}

func TestReduceSortedByLuminance(t *testing.T) {
	tr := New()
	tr.Add(0, 0, 0)
	tr.Add(31, 31, 31)
	tr.Add(15, 15, 15)
	palette := tr.Reduce(8)
	for i := 1; i < len(palette); i++ {
		if palette[i].Y < palette[i-1].Y {
			t.Fatalf("palette not sorted by Y: %v", palette)
		}
	}
}

func TestFinderReturnsExactMatch(t *testing.T) {
	tr := New()
	tr.Add(0, 0, 0)
	tr.Add(31, 0, 0)
	tr.Add(0, 31, 0)
	tr.Add(0, 0, 31)
	palette := tr.Reduce(8)
	finder := NewFinder(palette, 8)
	for _, c := range palette {
		idx := finder.Nearest(c.R, c.G, c.B)
		if idx < 0 || idx >= len(palette) {
			t.Fatalf("Nearest returned out-of-range index %d", idx)
		}
		if palette[idx] != c {
			t.Errorf("Nearest(%v) = %v, want exact match", c, palette[idx])
		}
	}
}

func TestFinderEmptyPalette(t *testing.T) {
	f := NewFinder(nil, 4)
	if idx := f.Nearest(1, 2, 3); idx != -1 {
		t.Errorf("Nearest on empty palette = %d, want -1", idx)
	}
}
