// Package editor implements the shell's interactive raw-mode line editor:
// cursor movement, history navigation, and a dual-bell tab-completion
// protocol. Grounded in original_source's input_state.rs, adapted from
// termion's cursor/clear escape writers to hand-written ANSI literals
// (golang.org/x/term only toggles raw mode; it does not provide a
// control-sequence encoder, and no example in the retrieval pack supplies
// one lighter than these few literals — see DESIGN.md).
package editor

import (
	"bufio"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/kir-gadjello/goshell/internal/history"
	"github.com/kir-gadjello/goshell/internal/trie"
)

const promptText = "$ "

var (
	promptStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	completionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("87"))
)

var prompt = promptStyle.Render(promptText)

// ansi control sequences the editor writes directly. golang.org/x/term
// provides raw mode only; everything cursor-shaped is hand-rolled here,
// matching termion::{clear, cursor} call sites in the original.
const (
	ansiCR            = "\r"
	ansiClearLine     = "\x1b[K"
	ansiCursorLeftFn  = "\x1b[%dD"
	ansiCursorRightFn = "\x1b[%dC"
	ansiCursorRight1  = "\x1b[C"
	ansiCursorLeft1   = "\x1b[D"
	bell              = "\x07"
)

// Outcome is what an edit session ended with.
type Outcome int

const (
	// Submitted means the user pressed Enter; Editor.Buffer() holds the line.
	Submitted Outcome = iota
	// EOF means the user pressed Ctrl-D with an empty buffer.
	EOF
)

// Editor owns one interactive edit session: the mutable input buffer, the
// cursor column (a byte offset), the history browsing cursor, and the
// single-bit bell-armed state for the double-tab completion protocol.
type Editor struct {
	out    io.Writer
	in     *bufio.Reader
	raw    *rawTerminal
	trie   *trie.Trie
	hist   *history.Store
	prompt string
	buf    []byte
	cursor int

	// historyIdx is -1 while editing new input, or the index into hist
	// currently being viewed.
	historyIdx int
	bellArmed  bool
}

// rawTerminal wraps the fd this editor puts into raw mode, restoring on Close.
type rawTerminal struct {
	fd    int
	state *term.State
}

func enterRaw(fd int) (*rawTerminal, error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &rawTerminal{fd: fd, state: state}, nil
}

func (r *rawTerminal) Close() error {
	return term.Restore(r.fd, r.state)
}

// New constructs an editor reading fd in raw mode, writing prompt/echo to
// out, browsing t for completions and h for history recall. An empty
// promptOverride uses the default styled "$ " prompt.
func New(fd int, in io.Reader, out io.Writer, t *trie.Trie, h *history.Store, promptOverride string) (*Editor, error) {
	raw, err := enterRaw(fd)
	if err != nil {
		return nil, err
	}
	p := prompt
	if promptOverride != "" {
		p = promptStyle.Render(promptOverride)
	}
	return &Editor{
		out:        out,
		in:         bufio.NewReader(in),
		raw:        raw,
		trie:       t,
		hist:       h,
		prompt:     p,
		historyIdx: -1,
	}, nil
}

// Close restores the terminal's prior mode. Safe to call once per Editor.
func (e *Editor) Close() error {
	return e.raw.Close()
}

// Reset clears the buffer and history-browsing state so the same Editor
// (and its already-raw terminal) can be reused for the next line.
func (e *Editor) Reset() {
	e.buf = nil
	e.cursor = 0
	e.historyIdx = -1
	e.bellArmed = false
}

func (e *Editor) print(s string) {
	_, _ = io.WriteString(e.out, s)
}

// Buffer returns the current input buffer.
func (e *Editor) Buffer() string {
	return string(e.buf)
}

// Run prints the prompt and drives the edit loop, one key at a time, until
// Enter or Ctrl-D. It returns the outcome and, on error, a non-nil err from
// the underlying reader; errors from writes to out are ignored.
func (e *Editor) Run() (Outcome, error) {
	e.print(e.prompt)
	for {
		b, err := e.in.ReadByte()
		if err != nil {
			if err == io.EOF {
				return EOF, nil
			}
			return EOF, err
		}

		switch b {
		case '\r', '\n':
			e.bellArmed = false
			e.print("\r\n")
			return Submitted, nil
		case 0x04: // Ctrl-D
			if len(e.buf) == 0 {
				return EOF, nil
			}
			// Ctrl-D with input present is ignored by this shell (no EOF
			// mid-line semantics defined by spec.md); treat as a no-op key.
		case 0x7f, 0x08: // Backspace / Delete
			e.handleBackspace()
		case '\t':
			e.handleTab()
		case 0x1b: // ESC: possible CSI arrow sequence
			if err := e.handleEscape(); err != nil {
				return EOF, err
			}
		default:
			if b >= 0x20 && b < 0x7f {
				e.handleChar(b)
			}
			// Other control bytes are ignored.
		}
	}
}

// handleEscape consumes a 3-byte CSI arrow sequence (\x1b [ A/B/C/D) if
// present; any other escape is swallowed silently (unsupported).
func (e *Editor) handleEscape() error {
	b1, err := e.in.ReadByte()
	if err != nil {
		return err
	}
	if b1 != '[' {
		return nil
	}
	b2, err := e.in.ReadByte()
	if err != nil {
		return err
	}
	switch b2 {
	case 'D':
		e.handleLeft()
	case 'C':
		e.handleRight()
	case 'A':
		e.handleUp()
	case 'B':
		e.handleDown()
	}
	return nil
}

func (e *Editor) handleChar(b byte) {
	e.bellArmed = false
	e.commitHistoryEditIfNeeded()

	e.buf = append(e.buf[:e.cursor], append([]byte{b}, e.buf[e.cursor:]...)...)
	e.cursor++

	if e.cursor == len(e.buf) {
		e.print(string(b))
	} else {
		e.redraw()
	}
}

func (e *Editor) handleBackspace() {
	e.bellArmed = false
	if e.cursor == 0 {
		return
	}
	e.commitHistoryEditIfNeeded()

	e.cursor--
	e.buf = append(e.buf[:e.cursor], e.buf[e.cursor+1:]...)
	e.redraw()
}

func (e *Editor) handleLeft() {
	e.bellArmed = false
	if e.cursor == 0 {
		return
	}
	e.cursor--
	e.print(ansiCursorLeft1)
}

func (e *Editor) handleRight() {
	e.bellArmed = false
	if e.cursor == len(e.buf) {
		return
	}
	e.cursor++
	e.print(ansiCursorRight1)
}

func (e *Editor) handleUp() {
	e.bellArmed = false
	n := e.hist.Len()
	if n == 0 {
		return
	}
	if e.historyIdx == -1 {
		e.historyIdx = n - 1
	} else if e.historyIdx > 0 {
		e.historyIdx--
	}
	e.loadHistoryEntry()
}

func (e *Editor) handleDown() {
	e.bellArmed = false
	if e.historyIdx == -1 {
		return
	}
	n := e.hist.Len()
	if e.historyIdx < n-1 {
		e.historyIdx++
		e.loadHistoryEntry()
		return
	}
	e.historyIdx = -1
	e.buf = nil
	e.cursor = 0
	e.redraw()
}

func (e *Editor) loadHistoryEntry() {
	line, ok := e.hist.At(e.historyIdx)
	if !ok {
		return
	}
	e.buf = []byte(line)
	e.cursor = len(e.buf)
	e.redraw()
}

// commitHistoryEditIfNeeded transitions out of "viewing history entry i"
// into "editing new input" the moment the buffer is about to be mutated;
// the buffer already holds a copy of the history entry so nothing further
// needs to change. Per spec.md §4.4.
func (e *Editor) commitHistoryEditIfNeeded() {
	e.historyIdx = -1
}

// handleTab runs the dual-bell completion protocol of spec.md §4.4.
func (e *Editor) handleTab() {
	switch res := e.trie.Complete(string(e.buf)).(type) {
	case trie.None:
		e.bellArmed = false
		e.print(bell)
	case trie.Single:
		e.commitHistoryEditIfNeeded()
		addition := res.Extra + res.Suffix
		e.putCursorEnd()
		e.buf = append(e.buf, addition...)
		e.cursor = len(e.buf)
		e.print(addition)
		e.bellArmed = false
	case trie.Multiple:
		if !e.bellArmed {
			e.bellArmed = true
			e.print(bell)
			return
		}
		e.bellArmed = false
		e.print("\r\n")
		e.print(joinCompletions(res.All))
		e.print("\n")
		e.redraw()
	}
}

func joinCompletions(all []string) string {
	out := ""
	for i, s := range all {
		if i > 0 {
			out += "  "
		}
		out += completionStyle.Render(s)
	}
	return out
}

// putCursorEnd moves the cursor to the end of the buffer without touching
// buf's contents, emitting a single right-motion escape if needed.
func (e *Editor) putCursorEnd() {
	move := len(e.buf) - e.cursor
	if move > 0 {
		e.print(fmt.Sprintf(ansiCursorRightFn, move))
	}
	e.cursor = len(e.buf)
}

// redraw rewrites the current line: carriage return, clear-to-end-of-line,
// prompt, buffer, then a left-motion to reposition the cursor if it is not
// at the end. Per spec.md §4.4.
func (e *Editor) redraw() {
	e.print(ansiCR)
	e.print(ansiClearLine)
	e.print(e.prompt)
	e.print(string(e.buf))

	move := len(e.buf) - e.cursor
	if move > 0 {
		e.print(fmt.Sprintf(ansiCursorLeftFn, move))
	}
}
