package cachepolicy

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIconFilenameDeterministic(t *testing.T) {
	p := New("/tmp/cache")
	a := p.IconFilename("xterm256", 16, "h1", "https://example.com/a.png")
	b := p.IconFilename("xterm256", 16, "h1", "https://example.com/a.png")
	if a != b {
		t.Errorf("IconFilename not deterministic: %q != %q", a, b)
	}
	c := p.IconFilename("xterm256", 16, "h1", "https://example.com/b.png")
	if a == c {
		t.Errorf("different URLs produced the same filename: %q", a)
	}
}

func TestPruneRemovesOnlyExpiredTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	p := New(dir)

	old := filepath.Join(dir, "icon-xterm256-16-h1-deadbeef")
	fresh := filepath.Join(dir, "icon-xterm256-16-h1-cafebabe")
	untracked := filepath.Join(dir, "not-tracked.txt")

	for _, f := range []string{old, fresh, untracked} {
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	oldTime := time.Now().Add(-40 * 24 * time.Hour)
	if err := os.Chtimes(old, oldTime, oldTime); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	if err := p.Prune(time.Now()); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expired icon should have been removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh icon should survive")
	}
	if _, err := os.Stat(untracked); err != nil {
		t.Error("untracked file should survive regardless of age")
	}
}
