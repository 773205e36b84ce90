package glyphmatrix

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/width"
)

type Terminal interface {
	ResetCursor(rows int) error
	ShowCursor(show bool) error
}

type Xterm struct {
	Writer io.Writer
}

// Move the cursor to the beginning of the line and up rows
func (term *Xterm) ResetCursor(rows int) error {
	if rows <= 0 {
		_, err := io.WriteString(term.Writer, "\033[999D")
		return err
	}
	_, err := fmt.Fprintf(term.Writer, "\033[999D\033[%dA", rows)
	return err
}

func (term *Xterm) ShowCursor(show bool) error {
	var err error
	if show {
		_, err = io.WriteString(term.Writer, "\033[?12l\033[?25h")
	} else {
		_, err = io.WriteString(term.Writer, "\033[?25l")
	}
	return err
}

// Terminal cells are mapped to this many surface pixels, which is the size of
// a default-spaced grid cell at MinScale. Zooming in spreads glyphs out over
// the terminal instead of enlarging them.
const (
	terminalCellWidth  = MinScale * minGlyphSize * defaultSpacing
	terminalCellHeight = MinScale * minGlyphSize * glyphAspect
)

type cell struct {
	ch rune
	fg color.Color
	bg color.Color
}

/*
TerminalSurface draws glyphs into a cols x rows character buffer and writes
it out with 24-bit ANSI colors on Flush. Each flush repaints the same screen
area by moving the cursor back up over the previous frame.
*/
type TerminalSurface struct {
	w    *bufio.Writer
	term Terminal
	cols int
	rows int

	fill  color.Color
	cells []cell
}

func NewTerminalSurface(w io.Writer, cols, rows int) *TerminalSurface {
	cols, rows = max(cols, 1), max(rows, 1)
	bw := bufio.NewWriter(w)
	s := TerminalSurface{
		w:     bw,
		term:  &Xterm{Writer: bw},
		cols:  cols,
		rows:  rows,
		fill:  color.Black,
		cells: make([]cell, cols*rows),
	}
	s.clear(0, 0, cols, rows)
	return &s
}

func (s *TerminalSurface) Size() (int, int) {
	return int(math.Round(float64(s.cols) * terminalCellWidth)), int(math.Round(float64(s.rows) * terminalCellHeight))
}

func (s *TerminalSurface) Cols() int { return s.cols }
func (s *TerminalSurface) Rows() int { return s.rows }

func (s *TerminalSurface) SetFillColor(c color.Color) {
	s.fill = c
}

// FillRect blanks every cell whose origin lies inside the rectangle and
// gives it the fill color as background.
func (s *TerminalSurface) FillRect(x, y, w, h float64) {
	c0 := int(math.Ceil(x / terminalCellWidth))
	r0 := int(math.Ceil(y / terminalCellHeight))
	c1 := int(math.Ceil((x + w) / terminalCellWidth))
	r1 := int(math.Ceil((y + h) / terminalCellHeight))
	s.clear(c0, r0, c1, r1)
}

func (s *TerminalSurface) clear(c0, r0, c1, r1 int) {
	c0, r0 = max(c0, 0), max(r0, 0)
	c1, r1 = min(c1, s.cols), min(r1, s.rows)
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			s.cells[row*s.cols+col] = cell{ch: Blank, fg: s.fill, bg: s.fill}
		}
	}
}

// Font size and smoothing belong to the terminal emulator.
func (s *TerminalSurface) SetFontSize(float64) {}
func (s *TerminalSurface) DisableSmoothing()   {}

// DrawGlyph puts g in the cell under its top-left corner. Glyphs outside the
// buffer are dropped.
func (s *TerminalSurface) DrawGlyph(g Glyph) {
	col := int(math.Round(g.X / terminalCellWidth))
	row := int(math.Round(g.Y / terminalCellHeight))
	if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		return
	}
	c := &s.cells[row*s.cols+col]
	c.ch = narrow(g.Rune)
	c.fg = s.fill
}

// At returns the rune in the given cell.
func (s *TerminalSurface) At(col, row int) rune {
	if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		return Blank
	}
	return s.cells[row*s.cols+col].ch
}

// Flush writes the buffer and leaves the cursor where the next frame starts.
func (s *TerminalSurface) Flush() error {
	var fg, bg color.Color
	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			c := s.cells[row*s.cols+col]
			if c.bg != bg {
				s.w.WriteString(ansiColor(48, c.bg))
				bg = c.bg
			}
			if c.fg != fg {
				s.w.WriteString(ansiColor(38, c.fg))
				fg = c.fg
			}
			s.w.WriteRune(c.ch)
		}
		s.w.WriteString("\033[0m\r\n")
		fg, bg = nil, nil
	}
	if err := s.term.ResetCursor(s.rows); err != nil {
		return err
	}
	return s.w.Flush()
}

// Close moves the cursor below the last frame and shows it again.
func (s *TerminalSurface) Close() error {
	if _, err := fmt.Fprintf(s.w, "\033[%dB\r\n", s.rows); err != nil {
		return err
	}
	if err := s.term.ShowCursor(true); err != nil {
		return err
	}
	return s.w.Flush()
}

// HideCursor hides the cursor until Close.
func (s *TerminalSurface) HideCursor() error {
	if err := s.term.ShowCursor(false); err != nil {
		return err
	}
	return s.w.Flush()
}

// RawModeWriter writes to W with every bare "\n" turned into "\r\n", so lines
// start at the left edge while the terminal is in raw mode.
type RawModeWriter struct {
	W io.Writer

	lastCR bool
}

func (rw *RawModeWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' && !rw.lastCR {
			out = append(out, '\r')
		}
		out = append(out, b)
		rw.lastCR = b == '\r'
	}
	if _, err := rw.W.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ansiColor is the SGR sequence selecting c as foreground (38) or
// background (48). Transparent colors select the terminal default.
func ansiColor(layer int, c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return fmt.Sprintf("\033[%dm", layer+1)
	}
	r, g, b := cf.RGB255()
	return fmt.Sprintf("\033[%d;2;%d;%d;%dm", layer, r, g, b)
}

// narrow folds wide runes to their half-width forms so every glyph takes a
// single terminal cell. Wide runes without one are left blank.
func narrow(r rune) rune {
	p := width.LookupRune(r)
	switch p.Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		if n := p.Narrow(); n != 0 {
			return n
		}
		return Blank
	}
	return r
}
