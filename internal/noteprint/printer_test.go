package noteprint

import (
	"strings"
	"testing"
	"time"

	"github.com/sayaka-go/sayaka/internal/misskey"
)

func testNote() misskey.Note {
	return misskey.Note{
		ID:        "abc123",
		CreatedAt: time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC),
		Author:    misskey.User{Username: "alice", DisplayName: "Alice", Host: "example.com"},
		Text:      "hello **world**",
	}
}

func TestPrintIncludesAuthorAndBody(t *testing.T) {
	p := New(Options{Sheet: DefaultStylesheet(true), MaxCols: 80}, nil)
	out := p.Print(testNote())
	if !strings.Contains(out, "Alice") {
		t.Errorf("output missing author name: %q", out)
	}
	if !strings.Contains(out, "world") {
		t.Errorf("output missing body text: %q", out)
	}
}

func TestPrintHidesCWBodyByDefault(t *testing.T) {
	n := testNote()
	n.CW = "spoiler"
	p := New(Options{Sheet: DefaultStylesheet(true), MaxCols: 80, ShowCW: false}, nil)
	out := p.Print(n)
	if strings.Contains(out, "world") {
		t.Errorf("CW body should be hidden without --show-cw: %q", out)
	}
	if !strings.Contains(out, "spoiler") {
		t.Errorf("CW summary should still be shown: %q", out)
	}
}

func TestPrintShowsCWBodyWhenRequested(t *testing.T) {
	n := testNote()
	n.CW = "spoiler"
	p := New(Options{Sheet: DefaultStylesheet(true), MaxCols: 80, ShowCW: true}, nil)
	out := p.Print(n)
	if !strings.Contains(out, "world") {
		t.Errorf("CW body should render with --show-cw: %q", out)
	}
}

func TestPrintPureRenoteShowsAttribution(t *testing.T) {
	inner := testNote()
	n := misskey.Note{
		Author: misskey.User{Username: "bob"},
		Renote: &inner,
	}
	p := New(Options{Sheet: DefaultStylesheet(true), MaxCols: 80}, nil)
	out := p.Print(n)
	if !strings.Contains(out, "renoted") {
		t.Errorf("pure renote should mention the boosting user: %q", out)
	}
}

type fakeIcon struct {
	calls       int
	blurCalls   int
	blurWidth   int
	blurHeight  int
}

func (f *fakeIcon) RenderIcon(url string, sensitive bool) string {
	f.calls++
	return "[ICON]"
}

func (f *fakeIcon) RenderBlurhash(hash string, width, height int) string {
	f.blurCalls++
	f.blurWidth, f.blurHeight = width, height
	return "[BLUR]"
}

func TestPrintSensitiveAttachmentHiddenByDefault(t *testing.T) {
	n := testNote()
	n.Files = []misskey.Attachment{{URL: "http://x/1.png", Name: "1.png", IsSensitive: true}}
	icon := &fakeIcon{}
	p := New(Options{Sheet: DefaultStylesheet(true), MaxCols: 80, ShowImage: true, NSFW: NSFWHide}, icon)
	out := p.Print(n)
	if strings.Contains(out, "[ICON]") {
		t.Errorf("sensitive attachment should not render when NSFWHide: %q", out)
	}
	if icon.calls != 0 {
		t.Errorf("icon renderer should not be called for hidden sensitive image, calls=%d", icon.calls)
	}
}

func TestPrintSensitiveAttachmentShownWhenAllowed(t *testing.T) {
	n := testNote()
	n.Files = []misskey.Attachment{{URL: "http://x/1.png", Name: "1.png", IsSensitive: true}}
	icon := &fakeIcon{}
	p := New(Options{Sheet: DefaultStylesheet(true), MaxCols: 80, ShowImage: true, NSFW: NSFWShow}, icon)
	out := p.Print(n)
	if !strings.Contains(out, "[ICON]") {
		t.Errorf("sensitive attachment should render when NSFWShow: %q", out)
	}
}

func TestPrintSensitiveAttachmentAltShowsMimePlaceholder(t *testing.T) {
	n := testNote()
	n.Files = []misskey.Attachment{{URL: "http://x/1.png", Name: "1.png", Type: "image/png", IsSensitive: true}}
	icon := &fakeIcon{}
	p := New(Options{Sheet: DefaultStylesheet(true), MaxCols: 80, ShowImage: true, NSFW: NSFWAlt}, icon)
	out := p.Print(n)
	if !strings.Contains(out, "image/png") || !strings.Contains(out, "NSFW") {
		t.Errorf("NSFWAlt should show a mime-type placeholder: %q", out)
	}
	if icon.calls != 0 {
		t.Errorf("NSFWAlt should not call RenderIcon, calls=%d", icon.calls)
	}
}

func TestPrintSensitiveAttachmentBlurRendersSizedBlurhash(t *testing.T) {
	n := testNote()
	n.Files = []misskey.Attachment{{URL: "http://x/1.png", Name: "1.png", Blurhash: "LKO2?U%2Tw=w", Width: 200, Height: 100, IsSensitive: true}}
	icon := &fakeIcon{}
	p := New(Options{Sheet: DefaultStylesheet(true), MaxCols: 80, ShowImage: true, NSFW: NSFWBlur}, icon)
	out := p.Print(n)
	if !strings.Contains(out, "[BLUR]") {
		t.Errorf("NSFWBlur should render a blurhash placeholder: %q", out)
	}
	if icon.blurCalls != 1 || icon.blurWidth != 200 || icon.blurHeight != 100 {
		t.Errorf("RenderBlurhash called with wrong args: calls=%d w=%d h=%d", icon.blurCalls, icon.blurWidth, icon.blurHeight)
	}
}

func TestPrintFooterShowsRenoteCountAndReactions(t *testing.T) {
	n := testNote()
	n.RenoteCount = 3
	n.ReactionMap = map[string]int{"👍": 2}
	p := New(Options{Sheet: DefaultStylesheet(true), MaxCols: 80}, nil)
	out := p.Print(n)
	if !strings.Contains(out, "3RN") {
		t.Errorf("footer should show renote count: %q", out)
	}
	if !strings.Contains(out, "👍 2") {
		t.Errorf("footer should show reaction count: %q", out)
	}
}

func TestFormatTimestampVariesByRecency(t *testing.T) {
	now := time.Date(2026, 7, 30, 18, 0, 0, 0, time.Local)
	sameDay := time.Date(2026, 7, 30, 9, 30, 0, 0, time.Local)
	if got := formatTimestamp(sameDay, now); got != "09:30:00" {
		t.Errorf("same-day timestamp = %q, want %q", got, "09:30:00")
	}
	thisYear := time.Date(2026, 3, 5, 9, 30, 0, 0, time.Local)
	if got := formatTimestamp(thisYear, now); got != "03/05" {
		t.Errorf("this-year timestamp = %q, want %q", got, "03/05")
	}
	lastYear := time.Date(2024, 3, 5, 9, 30, 0, 0, time.Local)
	if got := formatTimestamp(lastYear, now); got != "2024/03/05" {
		t.Errorf("older timestamp = %q, want %q", got, "2024/03/05")
	}
}
