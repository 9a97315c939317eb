package noteprint

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sayaka-go/sayaka/internal/mfm"
)

// Stylesheet maps the small set of presentational flags mfm.Style
// carries onto concrete lipgloss styles, the way the teacher's
// internal/ui.Theme maps semantic roles onto colors.
type Stylesheet struct {
	Bold        lipgloss.Style
	Italic      lipgloss.Style
	Strike      lipgloss.Style
	Code        lipgloss.Style
	Mention     lipgloss.Style
	URL         lipgloss.Style
	RubyBase    lipgloss.Style
	RubyAnnot   lipgloss.Style
	Tag         lipgloss.Style
	Unsupported lipgloss.Style
	Header      lipgloss.Style
	CW          lipgloss.Style
	Muted       lipgloss.Style
	Time        lipgloss.Style
	Renote      lipgloss.Style
	Reaction    lipgloss.Style
}

// DefaultStylesheet returns the dark-background palette; DarkMode
// false swaps in darker foreground colors for a light terminal
// background, the way --dark/--light select between at the CLI.
func DefaultStylesheet(darkMode bool) Stylesheet {
	text := lipgloss.Color("#ebdbb2")
	if !darkMode {
		text = lipgloss.Color("#3c3836")
	}
	return Stylesheet{
		Bold:        lipgloss.NewStyle().Bold(true).Foreground(text),
		Italic:      lipgloss.NewStyle().Italic(true).Foreground(text),
		Strike:      lipgloss.NewStyle().Strikethrough(true).Foreground(text),
		Code:        lipgloss.NewStyle().Foreground(lipgloss.Color("#fabd2f")),
		Mention:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#83a598")),
		URL:         lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#458588")),
		RubyBase:    lipgloss.NewStyle().Foreground(text),
		RubyAnnot:   lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#928374")),
		Tag:         lipgloss.NewStyle().Foreground(lipgloss.Color("#8ec07c")),
		Unsupported: lipgloss.NewStyle().Faint(true).Foreground(text),
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b8bb26")),
		CW:          lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#fb4934")),
		Muted:       lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#928374")),
		Time:        lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#928374")),
		Renote:      lipgloss.NewStyle().Foreground(lipgloss.Color("#b8bb26")),
		Reaction:    lipgloss.NewStyle().Foreground(lipgloss.Color("#d3869b")),
	}
}

// Render applies sheet to a sequence of mfm runs, concatenating their
// rendered text.
func (sheet Stylesheet) Render(runs []mfm.Run) string {
	var out string
	for _, r := range runs {
		out += sheet.styleFor(r.Style).Render(r.Text)
	}
	return out
}

func (sheet Stylesheet) styleFor(s mfm.Style) lipgloss.Style {
	style := lipgloss.NewStyle()
	if s.Bold {
		style = style.Inherit(sheet.Bold)
	}
	if s.Italic {
		style = style.Inherit(sheet.Italic)
	}
	if s.Strike {
		style = style.Inherit(sheet.Strike)
	}
	if s.Code {
		style = style.Inherit(sheet.Code)
	}
	if s.Mention {
		style = style.Inherit(sheet.Mention)
	}
	if s.URL {
		style = style.Inherit(sheet.URL)
	}
	if s.RubyBase {
		style = style.Inherit(sheet.RubyBase)
	}
	if s.RubyAnnot {
		style = style.Inherit(sheet.RubyAnnot)
	}
	if s.Tag {
		style = style.Inherit(sheet.Tag)
	}
	if s.Unsupported {
		style = style.Inherit(sheet.Unsupported)
	}
	return style
}
