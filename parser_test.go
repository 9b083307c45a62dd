package coreterm

import "testing"

func TestParserPlainPrint(t *testing.T) {
	g := NewGrid(2, 10)
	p := NewParser(g)
	p.Feed([]byte("hi"))
	if g.Cell(1, 1).Rune() != 'h' || g.Cell(1, 2).Rune() != 'i' {
		t.Fatalf("plain print did not land expected characters")
	}
}

func TestParserCRLF(t *testing.T) {
	g := NewGrid(2, 10)
	p := NewParser(g)
	p.Feed([]byte("ab\r\ncd"))
	if g.Cell(1, 1).Rune() != 'a' || g.Cell(2, 1).Rune() != 'c' {
		t.Fatalf("CR/LF did not move to column 1 of the next row")
	}
}

func TestParserSGRColor(t *testing.T) {
	g := NewGrid(1, 10)
	p := NewParser(g)
	p.Feed([]byte("\x1b[31mX"))
	c := g.Cell(1, 1)
	if c.Fg != Palette16[1] {
		t.Fatalf("SGR 31 should set fg to Palette16[1], got %+v", c.Fg)
	}
}

func TestParserCursorMoveAndErase(t *testing.T) {
	g := NewGrid(3, 5)
	p := NewParser(g)
	p.Feed([]byte("abcde"))
	p.Feed([]byte("\x1b[1;3H\x1b[K"))
	if !g.Cell(1, 3).Empty() || !g.Cell(1, 5).Empty() {
		t.Fatalf("CSI 1;3H then CSI K should erase from col 3 to end")
	}
	if g.Cell(1, 1).Rune() != 'a' {
		t.Fatalf("erase to end of line should not touch earlier columns")
	}
}

func TestParserDeviceStatusReport(t *testing.T) {
	g := NewGrid(5, 5)
	p := NewParser(g)
	g.MoveCursor(2, 3)
	out := p.Feed([]byte("\x1b[6n"))
	want := "\x1b[2;3R"
	if string(out) != want {
		t.Fatalf("DSR reply = %q, want %q", out, want)
	}
}

func TestParserCursorKeyModePrivateMode(t *testing.T) {
	g := NewGrid(5, 5)
	p := NewParser(g)
	p.Feed([]byte("\x1b[?1h"))
	if !g.HasMode(ModeApplicationCursor) || !g.HasMode(ModeCursorKey) {
		t.Fatalf("CSI ?1h should set ModeApplicationCursor and ModeCursorKey")
	}
	p.Feed([]byte("\x1b[?1l"))
	if g.HasMode(ModeApplicationCursor) {
		t.Fatalf("CSI ?1l should clear ModeApplicationCursor")
	}
}

func TestParserMalformedUTF8Recovery(t *testing.T) {
	g := NewGrid(1, 10)
	p := NewParser(g)
	var diags []Diagnostic
	p.OnDiagnostic = func(d Diagnostic) { diags = append(diags, d) }

	// 0xC2 starts a 2-byte sequence; 0x41 ('A') is not a valid continuation.
	p.Feed([]byte{0xC2, 0x41})
	if len(diags) == 0 {
		t.Fatalf("expected a malformed-input diagnostic")
	}
	if diags[0].Kind != DiagMalformedInput {
		t.Fatalf("diagnostic kind = %v, want DiagMalformedInput", diags[0].Kind)
	}
	// The parser returns to GROUND; the offending 'A' is consumed as part of
	// the malformed sequence, so neither byte writes a cell.
	if g.Cell(1, 1).Rune() != 0 {
		t.Fatalf("malformed lead sequence should not have written a cell")
	}
}

func TestParserByteResumability(t *testing.T) {
	seq := []byte("ab\x1b[31mcd\x1b[2;4Hxy")

	whole := NewGrid(4, 10)
	pWhole := NewParser(whole)
	pWhole.Feed(seq)

	split := NewGrid(4, 10)
	pSplit := NewParser(split)
	for _, b := range seq {
		pSplit.Feed([]byte{b})
	}

	wr, wc := whole.Cursor()
	sr, sc := split.Cursor()
	if wr != sr || wc != sc {
		t.Fatalf("cursor diverges under split feed: whole=(%d,%d) split=(%d,%d)", wr, wc, sr, sc)
	}
	for row := 1; row <= 4; row++ {
		for col := 1; col <= 10; col++ {
			if whole.Cell(row, col) != split.Cell(row, col) {
				t.Fatalf("cell (%d,%d) diverges under split feed", row, col)
			}
		}
	}
}

func TestParserUnknownCSIDiagnostic(t *testing.T) {
	g := NewGrid(1, 5)
	p := NewParser(g)
	var diags []Diagnostic
	p.OnDiagnostic = func(d Diagnostic) { diags = append(diags, d) }
	p.Feed([]byte("\x1b[9z"))
	if len(diags) != 1 || diags[0].Kind != DiagUnknownSequence {
		t.Fatalf("unrecognized CSI final byte should report DiagUnknownSequence, got %+v", diags)
	}
}

func TestParserOSCTitle(t *testing.T) {
	g := NewGrid(1, 5)
	p := NewParser(g)
	var gotPrefix int
	var gotPayload string
	p.OnOSC = func(prefix int, payload string) { gotPrefix, gotPayload = prefix, payload }
	p.Feed([]byte("\x1b]0;hello\x07"))
	if gotPrefix != 0 || gotPayload != "hello" {
		t.Fatalf("OSC 0 title = (%d,%q), want (0,\"hello\")", gotPrefix, gotPayload)
	}
}

func TestParserOSCStringTerminator(t *testing.T) {
	g := NewGrid(1, 5)
	p := NewParser(g)
	var gotPayload string
	p.OnOSC = func(_ int, payload string) { gotPayload = payload }
	p.Feed([]byte("\x1b]2;title\x1b\\"))
	if gotPayload != "title" {
		t.Fatalf("ST-terminated OSC payload = %q, want %q", gotPayload, "title")
	}
}
