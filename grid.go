package coreterm

import "sync"

// Mode is a bit set of terminal-wide mode flags, set by the Parser and read
// by Grid.Insert and by the Key Encoder.
type Mode uint16

const (
	// ModeAutoWrap (DECAWM): next printable past the right edge advances to
	// the next row instead of being discarded. Enabled by default.
	ModeAutoWrap Mode = 1 << iota
	// ModeApplicationCursor (DECCKM) makes arrow keys emit ESC O forms.
	ModeApplicationCursor
	// ModeApplicationKeypad makes keypad keys emit ESC O forms.
	ModeApplicationKeypad
	// ModeCursorKey selects the alternate cursor-key encoding (DECCKM's
	// private-mode twin, set by CSI ? 1 h/l alongside ModeApplicationCursor
	// in well-behaved shells, but tracked separately per the spec's state model).
	ModeCursorKey
	// ModeHideCursor (DECTCEM inverted: CSI ?25h hides, ?25l shows).
	ModeHideCursor
	// ModeBracketedPaste (CSI ?2004h/l).
	ModeBracketedPaste
	// ModeInvertColors swaps fg/bg for newly inserted cells (CSI ?5h/l would
	// be screen-wide reverse video; here it biases the pen per spec §4.1).
	ModeInvertColors
)

// Pen holds the drawing attributes applied to newly inserted cells.
type Pen struct {
	Style Style
	Fg    RGB
	Bg    RGB
}

// EraseRegion selects which cells an Erase call clears.
type EraseRegion int

const (
	EraseToEndOfLine EraseRegion = iota
	EraseToStartOfLine
	EraseEntireLine
	EraseCursorToEnd
	EraseStartToCursor
	EraseEntireScreen
)

// DefaultPen is the pen a freshly reset Grid starts with: bright white on
// near-black, matching spec §4.1's reset-all semantics.
func DefaultPen() Pen {
	return Pen{Fg: Palette16[15], Bg: Palette16[0]}
}

// Grid is a fixed rows x cols array of styled Cells plus cursor, mode, and
// pen state. All mutation happens through its methods; out-of-range inputs
// are clamped rather than rejected, so every Grid method is infallible.
type Grid struct {
	mu sync.Mutex

	rows, cols int
	cells      []Cell // row-major, len == rows*cols

	// Cursor position is 1-indexed. col may reach cols+1 to encode
	// "pending wrap" (spec §3).
	row, col int

	savedRow, savedCol int
	cursorSaved        bool

	mode Mode
	pen  Pen
}

// NewGrid allocates a rows x cols grid: all cells erased, cursor at (1,1),
// pen white-on-near-black, AUTOWRAP enabled (spec §4.1 default).
func NewGrid(rows, cols int) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	g := &Grid{
		rows: rows,
		cols: cols,
		cells: make([]Cell, rows*cols),
		row:  1,
		col:  1,
		mode: ModeAutoWrap,
		pen:  DefaultPen(),
	}
	return g
}

// Size returns the grid's fixed dimensions.
func (g *Grid) Size() (rows, cols int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rows, g.cols
}

// Cursor returns the current cursor position.
func (g *Grid) Cursor() (row, col int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.row, g.col
}

// Cell returns a copy of the cell at the given 1-indexed position. Out of
// range positions return the zero (erased) Cell.
func (g *Grid) Cell(row, col int) Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	if row < 1 || row > g.rows || col < 1 || col > g.cols {
		return Cell{}
	}
	return g.cells[g.index(row, col)]
}

// Snapshot copies every cell into dst (row-major, len == rows*cols),
// resizing dst if necessary, and returns it. Intended for a renderer to call
// at a quiescent point of the engine loop (spec §5).
func (g *Grid) Snapshot(dst []Cell) []Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cap(dst) < len(g.cells) {
		dst = make([]Cell, len(g.cells))
	}
	dst = dst[:len(g.cells)]
	copy(dst, g.cells)
	return dst
}

func (g *Grid) index(row, col int) int {
	return (row-1)*g.cols + (col - 1)
}

func (g *Grid) clampRow(row int) int {
	if row < 1 {
		return 1
	}
	if row > g.rows {
		return g.rows
	}
	return row
}

// clampCol clamps to [1, cols], used everywhere except the pending-wrap slot.
func (g *Grid) clampCol(col int) int {
	if col < 1 {
		return 1
	}
	if col > g.cols {
		return g.cols
	}
	return col
}

// Insert writes one codepoint (already UTF-8 encoded into b[:length]) at the
// cursor using the current pen, then advances the cursor by one column.
//
// If the cursor sits at col == cols+1 (pending wrap): with AUTOWRAP off the
// insert is dropped and the cursor does not move; with AUTOWRAP on the
// cursor wraps to (row+1, 1) (scrolling if already on the last row) before
// the character is stored.
func (g *Grid) Insert(b [4]byte, length byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.col == g.cols+1 {
		if g.mode&ModeAutoWrap == 0 {
			return
		}
		g.col = 1
		if g.row == g.rows {
			g.shiftUpLocked()
		} else {
			g.row++
		}
	}

	fg, bg := g.pen.Fg, g.pen.Bg
	if g.mode&ModeInvertColors != 0 {
		fg, bg = bg, fg
	}
	g.cells[g.index(g.row, g.col)] = Cell{
		Length: length,
		Bytes:  b,
		Style:  g.pen.Style,
		Fg:     fg,
		Bg:     bg,
	}
	g.col++
}

// ShiftUp moves rows 2..rows up by one row; row `rows` is erased. The
// returned slice holds the evicted top row's cells (row-major, len == cols)
// for a caller to push onto a scrollback ring buffer; it aliases no internal
// storage past the call.
func (g *Grid) ShiftUp() []Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shiftUpLocked()
}

func (g *Grid) shiftUpLocked() []Cell {
	evicted := make([]Cell, g.cols)
	copy(evicted, g.cells[0:g.cols])
	copy(g.cells, g.cells[g.cols:])
	for i := range g.cells[(g.rows-1)*g.cols:] {
		g.cells[(g.rows-1)*g.cols+i] = Cell{}
	}
	return evicted
}

// Erase clears cells in the given region, relative to the current cursor
// position. Erasing sets Length = 0; color and style of the erased cells are
// not restored to any particular value (spec §4.1).
func (g *Grid) Erase(region EraseRegion) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch region {
	case EraseToEndOfLine:
		g.eraseRowRange(g.row, g.col, g.cols)
	case EraseToStartOfLine:
		g.eraseRowRange(g.row, 1, g.col)
	case EraseEntireLine:
		g.eraseRowRange(g.row, 1, g.cols)
	case EraseCursorToEnd:
		g.eraseRowRange(g.row, g.col, g.cols)
		for r := g.row + 1; r <= g.rows; r++ {
			g.eraseRowRange(r, 1, g.cols)
		}
	case EraseStartToCursor:
		for r := 1; r < g.row; r++ {
			g.eraseRowRange(r, 1, g.cols)
		}
		g.eraseRowRange(g.row, 1, g.col)
	case EraseEntireScreen:
		for r := 1; r <= g.rows; r++ {
			g.eraseRowRange(r, 1, g.cols)
		}
	}
}

func (g *Grid) eraseRowRange(row, fromCol, toCol int) {
	if row < 1 || row > g.rows {
		return
	}
	fromCol = g.clampCol(fromCol)
	toCol = g.clampCol(toCol)
	for c := fromCol; c <= toCol; c++ {
		g.cells[g.index(row, c)] = Cell{}
	}
}

// MoveCursor sets the cursor to (row, col), clamping each to [1, rows] and
// [1, cols]. Use this rather than setting row/col directly so a pending
// wrap is always cleared by an explicit move, matching real terminal
// behavior (CR/LF/cursor-move cancel pending wrap per spec §8).
func (g *Grid) MoveCursor(row, col int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.row = g.clampRow(row)
	g.col = g.clampCol(col)
}

// MoveCursorRelative moves the cursor by (dRow, dCol), clamping as MoveCursor does.
func (g *Grid) MoveCursorRelative(dRow, dCol int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.row = g.clampRow(g.row + dRow)
	g.col = g.clampCol(g.col + dCol)
}

// CarriageReturn moves the cursor to column 1 on the current row.
func (g *Grid) CarriageReturn() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.col = 1
}

// LineFeed advances the cursor one row, scrolling (shiftUp) if already on
// the bottom row. A pending wrap is cancelled: the cursor stays on the last
// column. Returns the evicted row, or nil if no scroll occurred.
func (g *Grid) LineFeed() []Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.col == g.cols+1 {
		g.col = g.cols
	}
	if g.row == g.rows {
		return g.shiftUpLocked()
	}
	g.row++
	return nil
}

// Backspace moves the cursor left one column, clamped at column 1.
func (g *Grid) Backspace() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.col > 1 {
		g.col--
	}
}

// Tab advances the cursor to the column just past the next multiple of 8
// (9, 17, 25, ...), wrapping to column 1 of the next row (scrolling if
// needed) if that column is past the right edge, per spec §4.2.C0.
func (g *Grid) Tab() []Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := ((g.col-1)/8+1)*8 + 1
	if next <= g.cols {
		g.col = next
		return nil
	}
	g.col = 1
	if g.row == g.rows {
		return g.shiftUpLocked()
	}
	g.row++
	return nil
}

// SaveCursor remembers the current cursor position for a later RestoreCursor.
func (g *Grid) SaveCursor() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.savedRow, g.savedCol = g.row, g.col
	g.cursorSaved = true
}

// RestoreCursor moves the cursor back to the last saved position. It is a
// no-op if SaveCursor was never called (spec §4.1: "restore fails silently").
func (g *Grid) RestoreCursor() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.cursorSaved {
		return
	}
	g.row = g.clampRow(g.savedRow)
	g.col = g.clampCol(g.savedCol)
}

// SetMode sets the given mode bits.
func (g *Grid) SetMode(m Mode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode |= m
}

// ClearMode clears the given mode bits.
func (g *Grid) ClearMode(m Mode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode &^= m
}

// Modes returns the current mode bit set.
func (g *Grid) Modes() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// HasMode reports whether every bit in m is currently set.
func (g *Grid) HasMode(m Mode) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode&m == m
}

// SetStyle sets the given style bits on the pen.
func (g *Grid) SetStyle(s Style) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pen.Style |= s
}

// ClearStyle clears the given style bits on the pen.
func (g *Grid) ClearStyle(s Style) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pen.Style &^= s
}

// SetFgPalette sets the pen foreground from a 3/4-bit (0-15) palette index.
func (g *Grid) SetFgPalette(index int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pen.Fg = Palette16[index&0xF]
}

// SetBgPalette sets the pen background from a 3/4-bit (0-15) palette index.
func (g *Grid) SetBgPalette(index int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pen.Bg = Palette16[index&0xF]
}

// SetFg8Bit sets the pen foreground from an 8-bit (0-255) palette index.
func (g *Grid) SetFg8Bit(index int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pen.Fg = Palette256[index&0xFF]
}

// SetBg8Bit sets the pen background from an 8-bit (0-255) palette index.
func (g *Grid) SetBg8Bit(index int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pen.Bg = Palette256[index&0xFF]
}

// SetFgRGB sets the pen foreground to an explicit 24-bit color.
func (g *Grid) SetFgRGB(c RGB) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pen.Fg = c
}

// SetBgRGB sets the pen background to an explicit 24-bit color.
func (g *Grid) SetBgRGB(c RGB) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pen.Bg = c
}

// DefaultFg resets the pen foreground to the terminal default (SGR 39).
func (g *Grid) DefaultFg() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pen.Fg = Palette16[15]
}

// DefaultBg resets the pen background to the terminal default (SGR 49).
func (g *Grid) DefaultBg() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pen.Bg = Palette16[0]
}

// ResetPen clears style bits and sets fg/bg to the default pen (SGR 0).
func (g *Grid) ResetPen() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pen = DefaultPen()
}

// Pen returns a copy of the current pen.
func (g *Grid) Pen() Pen {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pen
}
