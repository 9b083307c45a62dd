package coreterm

import "testing"

func TestEncodeDecodeRuneRoundTrip(t *testing.T) {
	cases := []rune{'A', '$', 0xA3, 0x20AC, 0x1F600}
	for _, r := range cases {
		b, n := encodeRune(r)
		got, consumed := decodeRune(b[:n])
		if got != r {
			t.Errorf("encodeRune/decodeRune(%U): got %U", r, got)
		}
		if consumed != int(n) {
			t.Errorf("encodeRune/decodeRune(%U): consumed %d, want %d", r, consumed, n)
		}
	}
}

func TestCellEmptyAndRune(t *testing.T) {
	var c Cell
	if !c.Empty() {
		t.Fatal("zero-value Cell should be Empty")
	}
	if c.Rune() != 0 {
		t.Fatalf("zero-value Cell.Rune() = %v, want 0", c.Rune())
	}

	b, n := encodeRune('x')
	c = Cell{Bytes: b, Length: n}
	if c.Empty() {
		t.Fatal("cell with Length > 0 should not be Empty")
	}
	if c.Rune() != 'x' {
		t.Fatalf("Cell.Rune() = %v, want 'x'", c.Rune())
	}
}

func TestPalette256Layout(t *testing.T) {
	if Palette256[0] != Palette16[0] || Palette256[15] != Palette16[15] {
		t.Fatal("Palette256[0:16] should mirror Palette16")
	}
	// Index 16 is the first cube entry: (0,0,0) in the 6x6x6 cube.
	if Palette256[16] != (RGB{0, 0, 0}) {
		t.Fatalf("Palette256[16] = %+v, want black cube origin", Palette256[16])
	}
	// Index 231 is the last cube entry: (5,5,5), i.e. (255,255,255).
	if Palette256[231] != (RGB{255, 255, 255}) {
		t.Fatalf("Palette256[231] = %+v, want white cube corner", Palette256[231])
	}
	// Index 232 starts the 24-step greyscale ramp at 8.
	if Palette256[232] != (RGB{8, 8, 8}) {
		t.Fatalf("Palette256[232] = %+v, want grey 8", Palette256[232])
	}
	if Palette256[255] != (RGB{238, 238, 238}) {
		t.Fatalf("Palette256[255] = %+v, want grey 238", Palette256[255])
	}
}
