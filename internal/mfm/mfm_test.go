package mfm

import (
	"strings"
	"testing"
)

func joinText(runs []Run) string {
	s := ""
	for _, r := range runs {
		s += r.Text
	}
	return s
}

func TestRenderPlainTextRoundTrips(t *testing.T) {
	runs := Render("hello world", nil)
	if joinText(runs) != "hello world" {
		t.Errorf("joinText = %q, want %q", joinText(runs), "hello world")
	}
}

func TestRenderBold(t *testing.T) {
	runs := Render("a **b** c", nil)
	var foundBold bool
	for _, r := range runs {
		if r.Style.Bold {
			foundBold = true
			if r.Text != "b" {
				t.Errorf("bold run text = %q, want %q", r.Text, "b")
			}
		}
	}
	if !foundBold {
		t.Error("no bold run found")
	}
}

func TestRenderInlineCode(t *testing.T) {
	runs := Render("see `x := 1` here", nil)
	var found bool
	for _, r := range runs {
		if r.Style.Code && r.Text == "x := 1" {
			found = true
		}
	}
	if !found {
		t.Error("inline code run not found")
	}
}

func TestRenderMention(t *testing.T) {
	runs := Render("hi @alice@example.com how are you", nil)
	var mentionText string
	for _, r := range runs {
		if r.Style.Mention {
			mentionText += r.Text
		}
	}
	if mentionText != "alice@example.com" {
		t.Errorf("mention text = %q, want %q", mentionText, "alice@example.com")
	}
}

func TestRenderURL(t *testing.T) {
	runs := Render("see https://example.com/path for info", nil)
	var urlText string
	for _, r := range runs {
		if r.Style.URL {
			urlText += r.Text
		}
	}
	if urlText != "https://example.com/path" {
		t.Errorf("url text = %q, want %q", urlText, "https://example.com/path")
	}
}

func TestRenderUnterminatedMarkupDegradesGracefully(t *testing.T) {
	runs := Render("a **b", nil)
	if joinText(runs) != "a b" {
		t.Errorf("joinText = %q, want %q", joinText(runs), "a b")
	}
}

func TestRenderUnsupportedFunctionTagKeepsInnerText(t *testing.T) {
	runs := Render("x $[x2 big] y", nil)
	var found bool
	for _, r := range runs {
		if r.Style.Unsupported && r.Text == "big" {
			found = true
		}
	}
	if !found {
		t.Error("unsupported-tag run with inner text 'big' not found")
	}
}

func TestRenderPlainSuppressesNestedMarkup(t *testing.T) {
	runs := Render("a <plain>**not bold**</plain> b", nil)
	if joinText(runs) != "a **not bold** b" {
		t.Errorf("joinText = %q, want %q", joinText(runs), "a **not bold** b")
	}
	for _, r := range runs {
		if r.Style.Bold {
			t.Errorf("plain-wrapped text should not pick up bold styling: %+v", r)
		}
	}
}

func TestRenderRubySplitsBaseAndAnnotation(t *testing.T) {
	runs := Render("$[ruby 振り仮名 ふりがな]", nil)
	var base, annot string
	for _, r := range runs {
		if r.Style.RubyBase {
			base += r.Text
		}
		if r.Style.RubyAnnot {
			annot += r.Text
		}
	}
	if base != "振り仮名" {
		t.Errorf("ruby base = %q, want %q", base, "振り仮名")
	}
	if annot != "(ふりがな)" {
		t.Errorf("ruby annotation = %q, want %q", annot, "(ふりがな)")
	}
}

func TestRenderTagMatchesOnlyDeclaredTags(t *testing.T) {
	runs := Render("see #golang and #unrelated here", []string{"golang"})
	var tagText string
	for _, r := range runs {
		if r.Style.Tag {
			tagText += r.Text
		}
	}
	if tagText != "#golang" {
		t.Errorf("tag text = %q, want %q", tagText, "#golang")
	}
	if !strings.Contains(joinText(runs), "#unrelated") {
		t.Error("undeclared #unrelated should still render as plain text")
	}
}

func TestRenderTagMatchIsCaseInsensitive(t *testing.T) {
	runs := Render("#GoLang", []string{"golang"})
	var found bool
	for _, r := range runs {
		if r.Style.Tag && r.Text == "#GoLang" {
			found = true
		}
	}
	if !found {
		t.Error("tag matching should be case-insensitive")
	}
}

func TestRenderAlwaysReturnsToEmptyStack(t *testing.T) {
	// Regardless of how malformed the input, Render must fully unwind:
	// verified indirectly by checking that each malformed input still
	// renders to non-empty output.
	inputs := []string{
		"**unterminated",
		"`unterminated code",
		"```unterminated block",
		"@incomplete",
		"$[tag unterminated",
	}
	for _, in := range inputs {
		runs := Render(in, nil)
		if len(joinText(runs)) == 0 && len(in) > 0 {
			t.Errorf("Render(%q) produced no text", in)
		}
	}
}
