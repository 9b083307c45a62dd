package coreterm

import "testing"

func TestKeyEncoderComposedBypassesRules(t *testing.T) {
	e := NewKeyEncoder()
	out := e.Encode(KeyEvent{Key: KeyUp, Composed: []byte("é")}, 0)
	if string(out) != "é" {
		t.Fatalf("Composed bytes should bypass rule table, got %q", out)
	}
}

func TestKeyEncoderArrowNormalVsApplicationCursor(t *testing.T) {
	e := NewKeyEncoder()

	out := e.Encode(KeyEvent{Key: KeyUp}, 0)
	if string(out) != "\x1b[A" {
		t.Fatalf("Up with no app-cursor mode = %q, want ESC [ A", out)
	}

	out = e.Encode(KeyEvent{Key: KeyUp}, ModeApplicationCursor)
	if string(out) != "\x1bOA" {
		t.Fatalf("Up with app-cursor mode = %q, want ESC O A", out)
	}
}

func TestKeyEncoderModifiedArrow(t *testing.T) {
	e := NewKeyEncoder()
	out := e.Encode(KeyEvent{Key: KeyRight, Modifiers: ModControl}, 0)
	want := "\x1b[1;5C" // 1 + Control(4)
	if string(out) != want {
		t.Fatalf("Control-Right = %q, want %q", out, want)
	}

	out = e.Encode(KeyEvent{Key: KeyLeft, Modifiers: ModShift | ModAlt}, 0)
	want = "\x1b[1;4D" // 1 + Shift(1) + Alt(2)
	if string(out) != want {
		t.Fatalf("Shift+Alt-Left = %q, want %q", out, want)
	}
}

func TestKeyEncoderKeypadApplicationMode(t *testing.T) {
	e := NewKeyEncoder()
	out := e.Encode(KeyEvent{Key: KeyKeypad5}, 0)
	if out != nil {
		t.Fatalf("Keypad5 outside application-keypad mode should produce no rule match, got %q", out)
	}
	out = e.Encode(KeyEvent{Key: KeyKeypad5}, ModeApplicationKeypad)
	if string(out) != "\x1bOu" {
		t.Fatalf("Keypad5 in application-keypad mode = %q, want ESC O u", out)
	}
}

func TestKeyEncoderUnknownKeyNoMatch(t *testing.T) {
	e := NewKeyEncoder()
	out := e.Encode(KeyEvent{Key: Key(9999)}, 0)
	if out != nil {
		t.Fatalf("an unrecognized Key value should never match a rule, got %q", out)
	}
}

func TestTriStateMatches(t *testing.T) {
	if !either.matches(true) || !either.matches(false) {
		t.Fatal("either must match both states")
	}
	if !yes.matches(true) || yes.matches(false) {
		t.Fatal("yes must match only true")
	}
	if no.matches(true) || !no.matches(false) {
		t.Fatal("no must match only false")
	}
}
