package stream

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestReplayTransportDeliversFrames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recording.ndjson")
	content := `{"type":"note","body":{"id":"n1"}}
{"type":"note","body":{"id":"n2"}}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tr := NewReplayTransport(path)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	frames, errs := tr.Frames(ctx)

	var got []Frame
	for fr := range frames {
		got = append(got, fr)
	}
	if err := <-errs; err != nil {
		t.Fatalf("replay ended with error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d frames, want 2", len(got))
	}
	if got[0].Type != "note" || got[1].Type != "note" {
		t.Errorf("unexpected frame types: %+v", got)
	}
}

func TestReplayTransportMissingFileReportsError(t *testing.T) {
	tr := NewReplayTransport("/nonexistent/path.ndjson")
	frames, errs := tr.Frames(context.Background())
	for range frames {
	}
	if err := <-errs; err == nil {
		t.Error("expected error for missing replay file")
	}
}
