// Package noteprint composes a decoded note into the lines actually
// written to the terminal: an icon (if sixel output is enabled), a
// header line (author, acct, timestamp), a styled body, a CW gate, and
// a footer (reaction counts, renote count). A renote's "renoted:"
// attribution line is printed ahead of the header.
package noteprint

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/sayaka-go/sayaka/internal/mfm"
	"github.com/sayaka-go/sayaka/internal/misskey"
	"github.com/sayaka-go/sayaka/internal/termstate"
)

// NSFWPolicy controls whether and how sensitive attachments render.
type NSFWPolicy int

const (
	// NSFWHide never renders a sensitive attachment's image, printing a
	// placeholder instead.
	NSFWHide NSFWPolicy = iota
	// NSFWAlt prints the attachment's MIME type and an "[NSFW]" marker
	// in place of the image, the way a client without inline images
	// falls back to alt text.
	NSFWAlt
	// NSFWBlur renders a Blurhash placeholder sized to the attachment's
	// declared dimensions instead of the real image.
	NSFWBlur
	// NSFWShow always renders it.
	NSFWShow
)

// defaultIconRows is how many terminal text rows an icon is assumed to
// occupy when reserving space for it, absent Options.IconRows.
const defaultIconRows = 6

// Options configures one NotePrinter.
type Options struct {
	Sheet       Stylesheet
	ShowImage   bool
	ShowCW      bool // force-expand content-warned bodies
	NSFW        NSFWPolicy
	MaxCols     int
	FontHeight  int // terminal cell height in px, for icon sizing
	IconRows    int // terminal rows to reserve per icon; 0 uses defaultIconRows
}

// IconRenderer renders an attachment or avatar URL to a block of
// already-escaped terminal output (typically SIXEL), or an empty
// string when image output is disabled or unavailable. It is an
// interface so NotePrinter stays decoupled from the cache/decode/
// reduce/encode pipeline wiring.
type IconRenderer interface {
	RenderIcon(url string, sensitive bool) string
	// RenderBlurhash renders a placeholder from a Blurhash string sized
	// to width x height, for NSFWBlur.
	RenderBlurhash(hash string, width, height int) string
}

// NotePrinter turns decoded notes into terminal output.
type NotePrinter struct {
	opt  Options
	icon IconRenderer
}

// New builds a NotePrinter.
func New(opt Options, icon IconRenderer) *NotePrinter {
	return &NotePrinter{opt: opt, icon: icon}
}

// Print renders one note (and, if it's a renote, the boosted note
// underneath it) as the complete block of lines to write.
func (p *NotePrinter) Print(n misskey.Note) string {
	var b strings.Builder

	if n.IsPureRenote() && n.Renote != nil {
		fmt.Fprintf(&b, "%s\n", p.opt.Sheet.Muted.Render(n.Author.Acct()+" renoted:"))
		b.WriteString(p.Print(*n.Renote))
		return b.String()
	}

	p.writeHeader(&b, n)
	p.writeBody(&b, n)
	p.writeAttachments(&b, n)
	if n.Renote != nil && n.IsQuote {
		b.WriteString(p.opt.Sheet.Muted.Render("RN: "))
		b.WriteString(p.Print(*n.Renote))
	}
	p.writeFooter(&b, n)
	return b.String()
}

func (p *NotePrinter) writeHeader(b *strings.Builder, n misskey.Note) {
	name := n.Author.DisplayName
	if name == "" {
		name = n.Author.Username
	}
	header := fmt.Sprintf("%s %s", p.opt.Sheet.Header.Render(name), p.opt.Sheet.Muted.Render(n.Author.Acct()))
	fmt.Fprintf(b, "%s  %s\n", header, p.opt.Sheet.Time.Render(formatTimestamp(n.CreatedAt, time.Now())))
	p.writeIcon(b, p.iconFor(n))
}

func (p *NotePrinter) iconFor(n misskey.Note) string {
	if !p.opt.ShowImage || p.icon == nil || n.Author.AvatarURL == "" {
		return ""
	}
	return p.icon.RenderIcon(n.Author.AvatarURL, false)
}

// writeIcon wraps a rendered icon (if any) in a reserve/restore/clean
// sequence: save the cursor, print blank lines to reserve the rows the
// icon needs, restore to draw the icon over that reserved block, then
// clear from the cursor to the end of the display so any reserved
// rows the image didn't actually use don't leave stray gaps.
func (p *NotePrinter) writeIcon(b *strings.Builder, icon string) {
	if icon == "" {
		return
	}
	rows := p.opt.IconRows
	if rows <= 0 {
		rows = defaultIconRows
	}
	b.WriteString(termstate.SaveCursor())
	b.WriteString(strings.Repeat("\n", rows))
	b.WriteString(termstate.RestoreCursor())
	b.WriteString(icon)
	b.WriteString(termstate.ClearToEnd())
	b.WriteByte('\n')
}

func (p *NotePrinter) writeBody(b *strings.Builder, n misskey.Note) {
	if n.CW != "" && !p.opt.ShowCW {
		fmt.Fprintf(b, "%s\n", p.opt.Sheet.CW.Render("CW: "+n.CW+" (use --show-cw to expand)"))
		return
	}
	if n.CW != "" {
		fmt.Fprintf(b, "%s\n", p.opt.Sheet.CW.Render("CW: "+n.CW))
	}
	b.WriteString(p.renderWrapped(mfm.Render(n.Text, n.Tags)))
	b.WriteByte('\n')
}

func (p *NotePrinter) writeAttachments(b *strings.Builder, n misskey.Note) {
	for _, f := range n.Files {
		if !p.opt.ShowImage {
			fmt.Fprintf(b, "%s\n", p.opt.Sheet.Muted.Render("[image: "+f.Name+"]"))
			continue
		}
		if f.IsSensitive {
			switch p.opt.NSFW {
			case NSFWHide:
				fmt.Fprintf(b, "%s\n", p.opt.Sheet.Muted.Render("[sensitive image hidden: "+f.Name+"]"))
				continue
			case NSFWAlt:
				fmt.Fprintf(b, "%s\n", p.opt.Sheet.Muted.Render(fmt.Sprintf("(%s) [NSFW]", f.Type)))
				continue
			case NSFWBlur:
				if p.icon == nil {
					continue
				}
				p.writeIcon(b, p.icon.RenderBlurhash(f.Blurhash, f.Width, f.Height))
				continue
			}
			// NSFWShow falls through to the normal render below.
		}
		if p.icon == nil {
			continue
		}
		p.writeIcon(b, p.icon.RenderIcon(f.URL, f.IsSensitive))
	}
}

func (p *NotePrinter) writeFooter(b *strings.Builder, n misskey.Note) {
	var parts []string
	if len(n.ReactionMap) > 0 {
		var reactions []string
		for emoji, count := range n.ReactionMap {
			reactions = append(reactions, fmt.Sprintf("%s %d", emoji, count))
		}
		parts = append(parts, p.opt.Sheet.Reaction.Render(strings.Join(reactions, " ")))
	}
	if n.RenoteCount > 0 {
		parts = append(parts, p.opt.Sheet.Renote.Render(fmt.Sprintf("%dRN", n.RenoteCount)))
	}
	if len(parts) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n", strings.Join(parts, " "))
}

// formatTimestamp renders t the way a chat client shortens timestamps
// by recency relative to now: a same-day note shows only its
// wall-clock time, a note from earlier this year shows month/day, and
// anything older also carries the year.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.Local()
	now = now.Local()
	switch {
	case sameDay(t, now):
		return t.Format("15:04:05")
	case t.Year() == now.Year():
		return t.Format("01/02")
	default:
		return t.Format("2006/01/02")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// renderWrapped soft-wraps mfm runs at display-column boundaries
// (counted on the unstyled text, so CJK and other wide runes still
// land on the requested column count) before applying lipgloss
// styling per wrapped segment, so escape codes are never themselves
// mistaken for visible columns.
func (p *NotePrinter) renderWrapped(runs []mfm.Run) string {
	maxCols := p.opt.MaxCols
	var out strings.Builder
	col := 0
	for _, run := range runs {
		style := p.opt.Sheet.styleFor(run.Style)
		var seg strings.Builder
		for _, r := range run.Text {
			if r == '\n' {
				out.WriteString(style.Render(seg.String()))
				seg.Reset()
				out.WriteByte('\n')
				col = 0
				continue
			}
			w := runewidth.RuneWidth(r)
			if maxCols > 0 && col+w > maxCols {
				out.WriteString(style.Render(seg.String()))
				seg.Reset()
				out.WriteByte('\n')
				col = 0
			}
			seg.WriteRune(r)
			col += w
		}
		out.WriteString(style.Render(seg.String()))
	}
	return out.String()
}
