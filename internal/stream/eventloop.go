package stream

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sayaka-go/sayaka/internal/misskey"
)

// frameMsg and streamEndedMsg are the tea.Msg values the background
// transport goroutine feeds into the program's Update loop.
type frameMsg Frame
type streamEndedMsg struct{ err error }
type reconnectNowMsg struct{}

// NoteHandler renders one decoded note; returning an error stops the
// event loop.
type NoteHandler func(misskey.Note) error

// Model is the EventLoop: a bubbletea program whose single-threaded
// Update method is the spec's entire event loop body. It owns no
// goroutines of its own beyond the one tea.Program already runs to
// pull frames off the current Transport.
type Model struct {
	ctx        context.Context
	newTransport func() Transport
	onNote     NoteHandler
	backoff    Backoff
	spin       spinner.Model
	reconnecting bool
	quitting   bool
	lastErr    error
	curFrames  <-chan Frame
	curErrs    <-chan error
}

// New builds the event loop model. newTransport is called once per
// connection attempt, so a live implementation can re-dial while a
// replay implementation simply reopens its file.
func New(ctx context.Context, newTransport func() Transport, onNote NoteHandler) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &Model{ctx: ctx, newTransport: newTransport, onNote: onNote, spin: s}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.connectCmd(), m.spin.Tick)
}

// connectCmd opens a new Transport and waits for its first frame (or
// its end) as a tea.Msg; Update re-arms waitForFrame for each later one.
func (m *Model) connectCmd() tea.Cmd {
	return func() tea.Msg {
		frames, errs := m.newTransport().Frames(m.ctx)
		m.curFrames = frames
		m.curErrs = errs
		return waitForFrame(frames, errs)()
	}
}

// waitForFrame blocks until the next frame or the end of the stream;
// see Update's handling of frameMsg and streamEndedMsg for how the
// loop keeps re-arming it with curFrames/curErrs.
func waitForFrame(frames <-chan Frame, errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		select {
		case fr, ok := <-frames:
			if !ok {
				return streamEndedMsg{err: <-errs}
			}
			return frameMsg(fr)
		case err := <-errs:
			return streamEndedMsg{err: err}
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.backoff.Reset()
		m.reconnecting = false
		cmds := []tea.Cmd{waitForFrame(m.curFrames, m.curErrs)}
		if n, err := decodeNote(Frame(msg)); err == nil && n != nil {
			if herr := m.onNote(*n); herr != nil {
				m.lastErr = herr
				m.quitting = true
				return m, tea.Quit
			}
		}
		return m, tea.Batch(cmds...)

	case streamEndedMsg:
		if msg.err == nil {
			// Clean EOF (e.g. replay file exhausted): stop, don't reconnect.
			m.quitting = true
			return m, tea.Quit
		}
		m.lastErr = msg.err
		m.reconnecting = true
		delay := m.backoff.Next()
		return m, tea.Tick(delay, func(time.Time) tea.Msg { return reconnectNowMsg{} })

	case reconnectNowMsg:
		return m, m.connectCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.reconnecting {
		return m.spin.View() + " reconnecting...\n"
	}
	return ""
}

// Err returns the error that ended the loop, if any.
func (m *Model) Err() error { return m.lastErr }
