package pgmplay

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/term"
)

const (
	altScreenOn  = "\033[?1049h"
	altScreenOff = "\033[?1049l"
	cursorHide   = "\033[?25l"
	cursorShow   = "\033[?12l\033[?25h"
	cursorHome   = "\033[H"
	eraseLine    = "\033[K"
	eraseBelow   = "\033[J"
)

// Xterm is a Surface drawn with ANSI escape codes on the alternate screen.
// When Writer is a terminal its size clips the glyphs and its state is
// restored on Teardown. Teardown may be called from another goroutine, e.g.
// a signal handler.
type Xterm struct {
	Writer io.Writer

	mu         sync.Mutex
	active     bool
	fd         int
	state      *term.State
	rows, cols int // zero when the writer is not a terminal
	cells      [][]byte
	buf        bytes.Buffer
	err        error
}

func (x *Xterm) Init() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if f, ok := x.Writer.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		x.fd = int(f.Fd())
		state, err := term.GetState(x.fd)
		if err != nil {
			return err
		}
		x.state = state
		if cols, rows, err := term.GetSize(x.fd); err == nil {
			x.cols, x.rows = cols, rows
		}
	}
	x.active = true
	x.err = nil
	x.write(altScreenOn + cursorHome + eraseBelow)
	return x.err
}

func (x *Xterm) HideCursor() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.active {
		x.write(cursorHide)
	}
}

func (x *Xterm) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	for i := range x.cells {
		x.cells[i] = x.cells[i][:0]
	}
}

// WriteGlyph places glyph at row, col. Glyphs off the screen are dropped.
func (x *Xterm) WriteGlyph(row, col int, glyph byte) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if row < 0 || col < 0 {
		return
	}
	if x.rows > 0 && (row >= x.rows || col >= x.cols) {
		return
	}
	for len(x.cells) <= row {
		x.cells = append(x.cells, nil)
	}
	line := x.cells[row]
	for len(line) <= col {
		line = append(line, ' ')
	}
	line[col] = glyph
	x.cells[row] = line
}

// Present repaints the screen from the top left in a single write.
func (x *Xterm) Present() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.active {
		return x.err
	}
	x.buf.Reset()
	x.buf.WriteString(cursorHome)
	for i, line := range x.cells {
		fmt.Fprintf(&x.buf, "\033[%d;1H", i+1)
		x.buf.Write(line)
		x.buf.WriteString(eraseLine)
	}
	x.buf.WriteString(eraseBelow)
	x.write(x.buf.String())
	return x.err
}

func (x *Xterm) Teardown() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.active {
		return nil
	}
	x.active = false
	x.err = nil
	x.write(cursorShow + altScreenOff)
	err := x.err
	if x.state != nil {
		err = multierr.Append(err, term.Restore(x.fd, x.state))
		x.state = nil
	}
	return err
}

// write keeps the first error; callers hold mu.
func (x *Xterm) write(s string) {
	if x.err != nil {
		return
	}
	if _, err := io.WriteString(x.Writer, s); err != nil {
		x.err = err
	}
}
