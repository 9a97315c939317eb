// Package termstate probes and controls the terminal the client is
// attached to: SIXEL support (via a real DA1 device-attributes query,
// not a TERM-name guess), background color (via OSC 11), and cursor
// save/restore around inline image output.
package termstate

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Adapter wraps the terminal's stdin/stdout file descriptors for
// capability probing and cursor control.
type Adapter struct {
	in, out *os.File
	output  *termenv.Output
	probeTimeout time.Duration
}

// New builds an Adapter over the process's stdin/stdout.
func New() *Adapter {
	return &Adapter{
		in:     os.Stdin,
		out:    os.Stdout,
		output: termenv.NewOutput(os.Stdout),
		probeTimeout: 200 * time.Millisecond,
	}
}

// SaveCursor returns the escape sequence that saves the cursor
// position, to be written before drawing an inline image.
func SaveCursor() string { return "\x1b7" }

// RestoreCursor returns the escape sequence that restores the cursor
// position saved by SaveCursor.
func RestoreCursor() string { return "\x1b8" }

// ClearToEnd returns the escape sequence erasing from the cursor to
// the end of the display, written after an inline icon to clear the
// reserved rows the icon did not cover.
func ClearToEnd() string { return ansi.EraseDisplay(0) }

// Size returns the terminal's column/row count.
func (a *Adapter) Size() (cols, rows int, err error) {
	return term.GetSize(int(a.out.Fd()))
}

// SupportsSixel answers spec §4.10's terminal-capability query by
// sending a DA1 (Primary Device Attributes) request, "\x1b[c", and
// scanning the reply's parameter list for 4 (sixel graphics). Where
// stdin or stdout is not a TTY (piped output, tests) it conservatively
// reports false.
func (a *Adapter) SupportsSixel() bool {
	if !term.IsTerminal(int(a.in.Fd())) || !term.IsTerminal(int(a.out.Fd())) {
		return false
	}
	reply, err := a.query("\x1b[c", 'c')
	if err != nil {
		return false
	}
	// Reply shape: ESC [ ? Pa ; Pb ; ... c
	body := strings.TrimSuffix(strings.TrimPrefix(reply, "\x1b[?"), "c")
	for _, field := range strings.Split(body, ";") {
		if field == "4" {
			return true
		}
	}
	return false
}

// BackgroundColor queries the terminal's background color via OSC 11
// and reports whether it should be treated as a dark theme. If the
// terminal does not answer in time, it falls back to termenv's
// environment-based heuristic (COLORFGBG, platform defaults).
func (a *Adapter) BackgroundColor() (r, g, b uint8, dark bool) {
	if term.IsTerminal(int(a.in.Fd())) && term.IsTerminal(int(a.out.Fd())) {
		reply, err := a.query("\x1b]11;?\x07", '\\')
		if err == nil {
			if rr, gg, bb, ok := parseOSC11(reply); ok {
				lum := (299*int(rr) + 587*int(gg) + 114*int(bb)) / 1000
				return rr, gg, bb, lum < 128
			}
		}
	}
	c := a.output.BackgroundColor()
	dark = a.output.HasDarkBackground()
	rr, gg, bb := colorToRGB8(c)
	return rr, gg, bb, dark
}

// query puts the terminal into raw mode, writes seq, and reads until
// terminator is seen or probeTimeout elapses.
func (a *Adapter) query(seq string, terminator byte) (string, error) {
	fd := int(a.in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return "", err
	}
	defer term.Restore(fd, state)

	if _, err := a.out.WriteString(seq); err != nil {
		return "", err
	}

	type result struct {
		s   string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		r := bufio.NewReader(a.in)
		var sb strings.Builder
		for {
			b, err := r.ReadByte()
			if err != nil {
				ch <- result{sb.String(), err}
				return
			}
			sb.WriteByte(b)
			if b == terminator {
				ch <- result{sb.String(), nil}
				return
			}
		}
	}()

	select {
	case res := <-ch:
		return res.s, res.err
	case <-time.After(a.probeTimeout):
		return "", fmt.Errorf("termstate: terminal did not answer %q within %s", seq, a.probeTimeout)
	}
}

// parseOSC11 extracts rgb:RRRR/GGGG/BBBB style components from an
// OSC 11 reply.
func parseOSC11(reply string) (r, g, b uint8, ok bool) {
	idx := strings.Index(reply, "rgb:")
	if idx < 0 {
		return 0, 0, 0, false
	}
	body := reply[idx+len("rgb:"):]
	body = strings.TrimRight(body, "\x07\x1b\\")
	parts := strings.Split(body, "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	vals := make([]uint8, 3)
	for i, p := range parts {
		if len(p) > 2 {
			p = p[:2]
		}
		n, err := strconv.ParseUint(p, 16, 16)
		if err != nil {
			return 0, 0, 0, false
		}
		vals[i] = uint8(n)
	}
	return vals[0], vals[1], vals[2], true
}

func colorToRGB8(c termenv.Color) (r, g, b uint8) {
	if c == nil {
		return 0, 0, 0
	}
	hex := termenv.ConvertToRGB(c).Hex()
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(n >> 16), uint8(n >> 8), uint8(n)
}
