// Package mfm parses Misskey Flavored Markdown into a flat sequence of
// styled text runs. It is a small explicit state machine over a style
// stack, not a general-purpose parser: each recognized construct pushes
// a state (and its associated style) on entry and pops it on exit, so
// nesting (a mention inside bold, code inside italic, ...) falls out of
// the stack discipline rather than needing a grammar.
package mfm

import (
	"strings"
	"unicode"
)

// state names the construct currently being scanned.
type state int

const (
	stateRawText state = iota
	statePlain
	stateBold
	stateItalic
	stateStrike
	stateBacktick1 // `inline code`
	stateBacktick3 // ```block code```
	stateMention
	stateURL
	stateRuby1 // base text of a $[ruby ...] tag
	stateRuby2 // ruby annotation text
	stateTag   // #hashtag matched against the note's declared tags
	stateUnsupportedMFM
)

// Style is the set of presentational attributes a run carries; the
// renderer maps this onto a lipgloss.Style.
type Style struct {
	Bold      bool
	Italic    bool
	Strike    bool
	Code      bool
	Mention   bool
	URL       bool
	RubyBase  bool
	RubyAnnot bool
	Tag       bool
	Unsupported bool
}

// Run is one contiguous span of text sharing a single Style.
type Run struct {
	Text  string
	Style Style
}

const ment1chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-."
const ment2chars = ment1chars
const urlchars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789" +
	"-._~:/?#[]@!$&'()*+,;=%"

type frame struct {
	st    state
	style Style
}

// Render parses src and returns the flattened run sequence. tags is
// the note's declared hashtag list; a "#word" in src is only styled
// as a tag when word matches one of them (case-insensitively) — any
// other "#word" renders as plain text.
func Render(src string, tags []string) []Run {
	p := &parser{src: []rune(src), tags: tags}
	p.stack = []frame{{st: stateRawText}}
	p.run()
	p.flush()
	return p.out
}

type parser struct {
	src   []rune
	pos   int
	stack []frame
	cur   strings.Builder
	out   []Run
	tags  []string
}

func (p *parser) top() frame { return p.stack[len(p.stack)-1] }

func (p *parser) currentStyle() Style {
	s := Style{}
	for _, f := range p.stack {
		switch f.st {
		case stateBold:
			s.Bold = true
		case stateItalic:
			s.Italic = true
		case stateStrike:
			s.Strike = true
		case stateBacktick1, stateBacktick3:
			s.Code = true
		case stateMention:
			s.Mention = true
		case stateURL:
			s.URL = true
		case stateRuby1:
			s.RubyBase = true
		case stateRuby2:
			s.RubyAnnot = true
		case stateTag:
			s.Tag = true
		case stateUnsupportedMFM:
			s.Unsupported = true
		}
	}
	return s
}

// flush closes the run accumulated in cur, emitting it with the style
// active at the time it was opened.
func (p *parser) flush() {
	if p.cur.Len() == 0 {
		return
	}
	p.out = append(p.out, Run{Text: p.cur.String(), Style: p.currentStyle()})
	p.cur.Reset()
}

func (p *parser) push(st state) {
	p.flush()
	p.stack = append(p.stack, frame{st: st})
}

func (p *parser) pop() {
	p.flush()
	if len(p.stack) > 1 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

// setTop flushes the run accumulated under the current top-of-stack
// state, then mutates that frame in place to st — used by ruby's
// base-to-annotation transition, which changes style without changing
// stack depth (there's no separate "close base, open annotation" pair
// of tokens in the source to push/pop against).
func (p *parser) setTop(st state) {
	p.flush()
	p.stack[len(p.stack)-1].st = st
}

func (p *parser) peekStr(s string) bool {
	if p.pos+len(s) > len(p.src) {
		return false
	}
	for i, c := range s {
		if p.src[p.pos+i] != c {
			return false
		}
	}
	return true
}

func (p *parser) run() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]

		switch p.top().st {
		case statePlain:
			if p.peekStr("</plain>") {
				p.pos += len("</plain>")
				p.pop()
				continue
			}
			p.cur.WriteRune(c)
			p.pos++
			continue
		case stateBacktick3:
			if p.peekStr("```") {
				p.pos += 3
				p.pop()
				continue
			}
			p.cur.WriteRune(c)
			p.pos++
			continue
		case stateBacktick1:
			if c == '`' {
				p.pos++
				p.pop()
				continue
			}
			p.cur.WriteRune(c)
			p.pos++
			continue
		case stateMention:
			if strings.ContainsRune(ment1chars, c) || (c == '@' && p.pos+1 < len(p.src) && strings.ContainsRune(ment2chars, p.src[p.pos+1])) {
				p.cur.WriteRune(c)
				p.pos++
				continue
			}
			p.pop()
			continue
		case stateURL:
			if strings.ContainsRune(urlchars, c) {
				p.cur.WriteRune(c)
				p.pos++
				continue
			}
			p.pop()
			continue
		}

		switch {
		case p.peekStr("<plain>"):
			p.pos += len("<plain>")
			p.push(statePlain)
		case p.peekStr("```"):
			p.pos += 3
			p.push(stateBacktick3)
		case c == '`':
			p.pos++
			p.push(stateBacktick1)
		case p.peekStr("**") && p.top().st != stateBold:
			p.pos += 2
			p.push(stateBold)
		case p.peekStr("**") && p.top().st == stateBold:
			p.pos += 2
			p.pop()
		case p.peekStr("~~") && p.top().st != stateStrike:
			p.pos += 2
			p.push(stateStrike)
		case p.peekStr("~~") && p.top().st == stateStrike:
			p.pos += 2
			p.pop()
		case c == '*' && p.top().st != stateItalic:
			p.pos++
			p.push(stateItalic)
		case c == '*' && p.top().st == stateItalic:
			p.pos++
			p.pop()
		case c == '@':
			p.flush()
			p.pos++
			p.push(stateMention)
		case p.peekStr("http://") || p.peekStr("https://"):
			p.flush()
			p.push(stateURL)
			// do not consume here; the urlchars branch above will pick
			// up "http://..." since ':' and '/' are in urlchars.
		case p.peekStr("$[ruby "):
			p.pos += len("$[ruby ")
			p.skipRubyTag()
		case p.peekStr("$["):
			p.pos += 2
			p.skipUnsupportedTag()
		case c == '#' && p.tryTag():
			// handled entirely inside tryTag, including advancing pos
		default:
			p.cur.WriteRune(c)
			p.pos++
		}
	}
	// Unwind any still-open states at end of input (unterminated
	// markup degrades to plain text rather than being dropped).
	for len(p.stack) > 1 {
		p.pop()
	}
}

// skipUnsupportedTag consumes a "$[name ...]" function tag whose name
// this renderer does not implement, emitting its inner text as plain
// unsupported-styled content rather than dropping it — matching the
// original's behavior of always showing *something* for an MFM
// function it doesn't render specially.
func (p *parser) skipUnsupportedTag() {
	// Skip the function name.
	for p.pos < len(p.src) && p.src[p.pos] != ' ' && p.src[p.pos] != ']' {
		p.pos++
	}
	if p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	p.push(stateUnsupportedMFM)
	depth := 1
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '[' {
			depth++
		} else if c == ']' {
			depth--
			if depth == 0 {
				p.pos++
				break
			}
		}
		p.cur.WriteRune(c)
		p.pos++
	}
	p.pop()
}

// skipRubyTag consumes a "$[ruby base annotation]" tag, already
// positioned just past "$[ruby ". It splits the tag body on its last
// space into a base text and an annotation, emitting the base under
// RubyBase and the annotation (parenthesized, the way furigana reads
// inline when a terminal can't render it above the base glyphs) under
// RubyAnnot.
func (p *parser) skipRubyTag() {
	start := p.pos
	depth := 1
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '[' {
			depth++
		} else if c == ']' {
			depth--
			if depth == 0 {
				break
			}
		}
		p.pos++
	}
	content := string(p.src[start:p.pos])
	if p.pos < len(p.src) {
		p.pos++ // consume the closing ']'
	}

	base, annot := content, ""
	if idx := strings.LastIndex(content, " "); idx >= 0 {
		base, annot = content[:idx], content[idx+1:]
	}

	p.push(stateRuby1)
	p.cur.WriteString(base)
	p.setTop(stateRuby2)
	p.cur.WriteString("(" + annot + ")")
	p.pop()
}

// tryTag checks whether the "#..." run starting at the current '#'
// matches one of the note's declared tags; if so it consumes and
// emits it as a Tag-styled run and reports true. A "#word" that isn't
// one of the note's tags is left untouched so the default branch
// writes it through as plain text.
func (p *parser) tryTag() bool {
	if len(p.tags) == 0 {
		return false
	}
	end := p.pos + 1
	for end < len(p.src) && isTagRune(p.src[end]) {
		end++
	}
	if end == p.pos+1 {
		return false
	}
	word := string(p.src[p.pos+1 : end])
	matched := false
	for _, t := range p.tags {
		if strings.EqualFold(t, word) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	p.flush()
	p.push(stateTag)
	p.cur.WriteRune('#')
	p.cur.WriteString(word)
	p.pop()
	p.pos = end
	return true
}

func isTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
