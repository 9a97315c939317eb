// Package ngword implements the NG-word ("no-good" word) filter: a
// set of substring and regular-expression rules, each optionally
// scoped to a specific user, that the stream layer checks every note
// against before printing it.
package ngword

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// RuleKind selects how Pattern is matched.
type RuleKind string

const (
	// Substring matches Pattern as a plain case-insensitive substring.
	Substring RuleKind = "substring"
	// Regexp compiles Pattern as a Go regular expression.
	Regexp RuleKind = "regexp"
)

// Rule is one NG-word entry, optionally scoped to a single user.
type Rule struct {
	Kind    RuleKind `json:"kind"`
	Pattern string   `json:"pattern"`
	UserID  string   `json:"user_id,omitempty"` // empty: applies to all users
}

// compiled is a Rule plus its prepared matcher.
type compiled struct {
	rule Rule
	re   *regexp.Regexp
}

// Matcher holds the parsed rule set and matches notes against it.
type Matcher struct {
	rules []compiled
}

// Load parses the NG-word rule file (a JSON array of Rule) from r.
func Load(r io.Reader) (*Matcher, error) {
	var rules []Rule
	if err := json.NewDecoder(r).Decode(&rules); err != nil {
		return nil, fmt.Errorf("ngword: parse rule file: %w", err)
	}
	return New(rules)
}

// New compiles a Matcher from an already-parsed rule list.
func New(rules []Rule) (*Matcher, error) {
	m := &Matcher{}
	for _, r := range rules {
		c := compiled{rule: r}
		if r.Kind == Regexp {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("ngword: rule %q: %w", r.Pattern, err)
			}
			c.re = re
		}
		m.rules = append(m.rules, c)
	}
	return m, nil
}

// Matches reports whether text from userID trips any applicable rule.
func (m *Matcher) Matches(userID, text string) bool {
	for _, c := range m.rules {
		if c.rule.UserID != "" && c.rule.UserID != userID {
			continue
		}
		switch c.rule.Kind {
		case Regexp:
			if c.re != nil && c.re.MatchString(text) {
				return true
			}
		default:
			if strings.Contains(strings.ToLower(text), strings.ToLower(c.rule.Pattern)) {
				return true
			}
		}
	}
	return false
}

// Len reports how many rules are loaded, mostly for diagnostics.
func (m *Matcher) Len() int { return len(m.rules) }
