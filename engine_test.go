package coreterm

import "testing"

func TestEngineFeedDrivesGrid(t *testing.T) {
	e := NewEngine(3, 10)
	e.Feed([]byte("hi"))
	if e.Grid().Cell(1, 1).Rune() != 'h' {
		t.Fatalf("Engine.Feed should mutate the underlying Grid")
	}
}

func TestEngineHandleKeyReadsLiveGridMode(t *testing.T) {
	e := NewEngine(3, 10)
	out := e.HandleKey(KeyEvent{Key: KeyUp})
	if string(out) != "\x1b[A" {
		t.Fatalf("Up with default modes = %q, want ESC [ A", out)
	}

	e.Feed([]byte("\x1b[?1h")) // DECCKM on
	out = e.HandleKey(KeyEvent{Key: KeyUp})
	if string(out) != "\x1bOA" {
		t.Fatalf("Up after DECCKM set = %q, want ESC O A", out)
	}
}

func TestEngineFocusInOut(t *testing.T) {
	e := NewEngine(1, 1)
	if string(e.FocusIn()) != "\x1b[I" {
		t.Fatalf("FocusIn = %q, want ESC [ I", e.FocusIn())
	}
	if string(e.FocusOut()) != "\x1b[O" {
		t.Fatalf("FocusOut = %q, want ESC [ O", e.FocusOut())
	}
}

func TestEngineFeedReturnsDSRReply(t *testing.T) {
	e := NewEngine(5, 5)
	e.Grid().MoveCursor(3, 4)
	out := e.Feed([]byte("\x1b[6n"))
	if string(out) != "\x1b[3;4R" {
		t.Fatalf("Engine.Feed DSR reply = %q, want ESC [ 3;4 R", out)
	}
}
