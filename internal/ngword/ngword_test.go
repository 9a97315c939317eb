package ngword

import "testing"

func TestMatchesSubstringCaseInsensitive(t *testing.T) {
	m, err := New([]Rule{{Kind: Substring, Pattern: "spam"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.Matches("u1", "this is SPAM content") {
		t.Error("expected substring match (case-insensitive)")
	}
	if m.Matches("u1", "clean content") {
		t.Error("unexpected match on clean content")
	}
}

func TestMatchesRegexp(t *testing.T) {
	m, err := New([]Rule{{Kind: Regexp, Pattern: `\bfree money\b`}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.Matches("u1", "get your free money now") {
		t.Error("expected regexp match")
	}
}

func TestMatchesUserScoped(t *testing.T) {
	m, err := New([]Rule{{Kind: Substring, Pattern: "banned", UserID: "u1"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.Matches("u1", "this is banned") {
		t.Error("expected match for scoped user")
	}
	if m.Matches("u2", "this is banned") {
		t.Error("rule scoped to u1 must not match u2")
	}
}

func TestInvalidRegexpRejected(t *testing.T) {
	if _, err := New([]Rule{{Kind: Regexp, Pattern: "("}}); err == nil {
		t.Error("expected error for invalid regexp pattern")
	}
}
