package coreterm

import "testing"

func insertASCII(g *Grid, s string) {
	for _, r := range []byte(s) {
		var b [4]byte
		b[0] = r
		g.Insert(b, 1)
	}
}

func TestGridInsertAdvancesCursor(t *testing.T) {
	g := NewGrid(3, 5)
	insertASCII(g, "ab")
	row, col := g.Cursor()
	if row != 1 || col != 3 {
		t.Fatalf("cursor = (%d,%d), want (1,3)", row, col)
	}
	if g.Cell(1, 1).Rune() != 'a' || g.Cell(1, 2).Rune() != 'b' {
		t.Fatalf("unexpected cell contents")
	}
}

func TestGridPendingWrapAutowrapOn(t *testing.T) {
	g := NewGrid(2, 3)
	insertASCII(g, "abc")
	row, col := g.Cursor()
	if row != 1 || col != 4 {
		t.Fatalf("expected pending wrap at col cols+1=4, got (%d,%d)", row, col)
	}
	insertASCII(g, "d")
	row, col = g.Cursor()
	if row != 2 || col != 2 {
		t.Fatalf("after wrap cursor = (%d,%d), want (2,2)", row, col)
	}
	if g.Cell(2, 1).Rune() != 'd' {
		t.Fatalf("wrapped character not written to new row")
	}
}

func TestGridPendingWrapAutowrapOff(t *testing.T) {
	g := NewGrid(2, 3)
	g.ClearMode(ModeAutoWrap)
	insertASCII(g, "abcd")
	row, col := g.Cursor()
	if row != 1 || col != 4 {
		t.Fatalf("cursor should stay pinned at pending wrap, got (%d,%d)", row, col)
	}
	if g.Cell(1, 3).Rune() != 'c' {
		t.Fatalf("'d' should have been dropped, not overwritten")
	}
}

func TestGridPendingWrapScrollsOnLastRow(t *testing.T) {
	g := NewGrid(1, 2)
	insertASCII(g, "ab")
	insertASCII(g, "c")
	if g.Cell(1, 1).Rune() != 'c' {
		t.Fatalf("expected scroll then write, got %v", g.Cell(1, 1).Rune())
	}
}

func TestGridLineFeedScroll(t *testing.T) {
	g := NewGrid(2, 2)
	insertASCII(g, "ab")
	g.CarriageReturn()
	evicted := g.LineFeed()
	if evicted != nil {
		t.Fatalf("LineFeed on row 1 of 2 should not scroll")
	}
	insertASCII(g, "cd")
	g.CarriageReturn()
	evicted = g.LineFeed()
	if evicted == nil || evicted[0].Rune() != 'a' || evicted[1].Rune() != 'b' {
		t.Fatalf("LineFeed from last row should evict row 1 ('a','b'), got %+v", evicted)
	}
	if g.Cell(1, 1).Rune() != 'c' {
		t.Fatalf("row 2 should have shifted up into row 1")
	}
}

func TestGridEraseRegions(t *testing.T) {
	g := NewGrid(1, 5)
	insertASCII(g, "abcde")
	g.MoveCursor(1, 3)
	g.Erase(EraseToEndOfLine)
	if !g.Cell(1, 3).Empty() || !g.Cell(1, 5).Empty() {
		t.Fatalf("EraseToEndOfLine should clear cols 3..5")
	}
	if g.Cell(1, 1).Rune() != 'a' || g.Cell(1, 2).Rune() != 'b' {
		t.Fatalf("EraseToEndOfLine should not touch cols before cursor")
	}
}

func TestGridSaveRestoreCursorSilentNoop(t *testing.T) {
	g := NewGrid(3, 3)
	g.MoveCursor(2, 2)
	g.RestoreCursor() // never saved: must not panic or move cursor
	row, col := g.Cursor()
	if row != 2 || col != 2 {
		t.Fatalf("RestoreCursor with nothing saved moved the cursor to (%d,%d)", row, col)
	}

	g.SaveCursor()
	g.MoveCursor(1, 1)
	g.RestoreCursor()
	row, col = g.Cursor()
	if row != 2 || col != 2 {
		t.Fatalf("RestoreCursor did not return to saved position, got (%d,%d)", row, col)
	}
}

func TestGridMoveCursorClamps(t *testing.T) {
	g := NewGrid(3, 3)
	g.MoveCursor(100, -5)
	row, col := g.Cursor()
	if row != 3 || col != 1 {
		t.Fatalf("MoveCursor should clamp, got (%d,%d)", row, col)
	}
}

func TestGridTabBoundary(t *testing.T) {
	g := NewGrid(1, 20)
	g.Tab()
	_, col := g.Cursor()
	if col != 9 {
		t.Fatalf("Tab from col 1 should land on col 9, got %d", col)
	}
}

func TestGridSGRPenDefaults(t *testing.T) {
	g := NewGrid(1, 1)
	g.SetStyle(StyleBold)
	g.SetFgPalette(1)
	g.ResetPen()
	p := g.Pen()
	if p.Style != 0 || p != DefaultPen() {
		t.Fatalf("ResetPen did not restore default pen, got %+v", p)
	}
}

func TestGridInvertColorsSwapsPen(t *testing.T) {
	g := NewGrid(1, 1)
	g.SetFgRGB(RGB{1, 2, 3})
	g.SetBgRGB(RGB{4, 5, 6})
	g.SetMode(ModeInvertColors)
	insertASCII(g, "x")
	c := g.Cell(1, 1)
	if c.Fg != (RGB{4, 5, 6}) || c.Bg != (RGB{1, 2, 3}) {
		t.Fatalf("ModeInvertColors should swap fg/bg on insert, got fg=%+v bg=%+v", c.Fg, c.Bg)
	}
}
