package coreterm

// modParam returns the xterm modifier parameter (2..8) for a modifier
// combination: 1 + Shift(1) + Alt(2) + Control(4), matching the
// `ESC [ 1 ; N <letter>` convention spec §4.3 calls out. Callers only use
// this for non-empty modifier sets (unmodified keys have their own rules).
func modParam(m Modifier) int {
	n := 1
	if m&ModShift != 0 {
		n += 1
	}
	if m&ModAlt != 0 {
		n += 2
	}
	if m&ModControl != 0 {
		n += 4
	}
	return n
}

func modifiedArrow(letter byte) []rule {
	var rs []rule
	combos := []Modifier{
		ModShift, ModAlt, ModShift | ModAlt,
		ModControl, ModShift | ModControl,
		ModControl | ModAlt, ModShift | ModControl | ModAlt,
	}
	for _, m := range combos {
		rs = append(rs, rule{mods: m, appKeypad: either, appCursor: either, numLock: either,
			sequence: "\x1b[1;" + itoa(modParam(m)) + string(letter)})
	}
	return rs
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [8]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

// defaultRules is the Key Encoder's xterm-compatible rule table, grounded
// on original_source/keymap.c's special_keys_map and purfecterm/cli's
// keyToBytesMap. Rules are evaluated in order; the first full match wins
// (spec §4.3 "Lookup semantics").
var defaultRules = buildDefaultRules()

func buildDefaultRules() []rule {
	var rs []rule

	arrowLetters := map[Key]byte{KeyUp: 'A', KeyDown: 'B', KeyRight: 'C', KeyLeft: 'D'}
	for _, k := range []Key{KeyUp, KeyDown, KeyRight, KeyLeft} {
		letter := arrowLetters[k]
		for _, r := range modifiedArrow(letter) {
			r.key = k
			rs = append(rs, r)
		}
		rs = append(rs, rule{key: k, mods: modAny, appKeypad: either, appCursor: no, numLock: either,
			sequence: "\x1b[" + string(letter)})
		rs = append(rs, rule{key: k, mods: modAny, appKeypad: either, appCursor: yes, numLock: either,
			sequence: "\x1bO" + string(letter)})
	}

	// Home/End: unmodified CSI H/F; with modifiers, CSI 1;N H/F.
	for _, hk := range []struct {
		key    Key
		letter byte
	}{{KeyHome, 'H'}, {KeyEnd, 'F'}} {
		for _, m := range []Modifier{ModShift, ModControl, ModShift | ModControl, ModAlt} {
			rs = append(rs, rule{key: hk.key, mods: m, appKeypad: either, appCursor: either, numLock: either,
				sequence: "\x1b[1;" + itoa(modParam(m)) + string(hk.letter)})
		}
		rs = append(rs, rule{key: hk.key, mods: modAny, appKeypad: either, appCursor: either, numLock: either,
			sequence: "\x1b[" + string(hk.letter)})
	}

	// PageUp/PageDown: CSI 5~ / CSI 6~, with Shift/Control numeric suffix.
	for _, pk := range []struct {
		key   Key
		param int
	}{{KeyPageUp, 5}, {KeyPageDown, 6}} {
		for _, m := range []Modifier{ModShift, ModControl} {
			rs = append(rs, rule{key: pk.key, mods: m, appKeypad: either, appCursor: either, numLock: either,
				sequence: "\x1b[" + itoa(pk.param) + ";" + itoa(modParam(m)) + "~"})
		}
		rs = append(rs, rule{key: pk.key, mods: modAny, appKeypad: either, appCursor: either, numLock: either,
			sequence: "\x1b[" + itoa(pk.param) + "~"})
	}

	// Insert/Delete: CSI 2~ / CSI 3~, with Shift/Control numeric suffix.
	for _, ik := range []struct {
		key   Key
		param int
	}{{KeyInsert, 2}, {KeyDelete, 3}} {
		for _, m := range []Modifier{ModShift, ModControl} {
			rs = append(rs, rule{key: ik.key, mods: m, appKeypad: either, appCursor: either, numLock: either,
				sequence: "\x1b[" + itoa(ik.param) + ";" + itoa(modParam(m)) + "~"})
		}
		rs = append(rs, rule{key: ik.key, mods: modAny, appKeypad: either, appCursor: either, numLock: either,
			sequence: "\x1b[" + itoa(ik.param) + "~"})
	}

	rs = append(rs,
		rule{key: KeyBackspace, mods: ModAlt, appKeypad: either, appCursor: either, numLock: either, sequence: "\x1b\x7f"},
		rule{key: KeyBackspace, mods: modAny, appKeypad: either, appCursor: either, numLock: either, sequence: "\x7f"},
		rule{key: KeyReturn, mods: ModAlt, appKeypad: either, appCursor: either, numLock: either, sequence: "\x1b\r"},
		rule{key: KeyReturn, mods: modAny, appKeypad: either, appCursor: either, numLock: either, sequence: "\r"},
		rule{key: KeyTab, mods: modAny, appKeypad: either, appCursor: either, numLock: either, sequence: "\t"},
		rule{key: KeyBackTab, mods: modAny, appKeypad: either, appCursor: either, numLock: either, sequence: "\x1b[Z"},
	)

	// F1..F4: SS3 P/Q/R/S.
	f1to4 := []byte{'P', 'Q', 'R', 'S'}
	for i, k := range []Key{KeyF1, KeyF2, KeyF3, KeyF4} {
		rs = append(rs, rule{key: k, mods: modAny, appKeypad: either, appCursor: either, numLock: either,
			sequence: "\x1bO" + string(f1to4[i])})
	}

	// F5..F20: CSI N ~ with the conventional xterm numeric codes (15..34,
	// skipping 16, 22, 27, 30 as xterm's own table does).
	fCodes := map[Key]int{
		KeyF5: 15, KeyF6: 17, KeyF7: 18, KeyF8: 19,
		KeyF9: 20, KeyF10: 21, KeyF11: 23, KeyF12: 24,
		KeyF13: 25, KeyF14: 26, KeyF15: 28, KeyF16: 29,
		KeyF17: 31, KeyF18: 32, KeyF19: 33, KeyF20: 34,
	}
	for k, code := range fCodes {
		rs = append(rs, rule{key: k, mods: modAny, appKeypad: either, appCursor: either, numLock: either,
			sequence: "\x1b[" + itoa(code) + "~"})
	}

	// F21..F35: beyond xterm's own F-key range, expressed as modifier
	// variants of F9..F12 (the rxvt/screen convention for "extended"
	// function keys when a terminfo entry defines more than 20).
	extended := []struct {
		key   Key
		base  int
		mod   Modifier
	}{
		{KeyF21, 20, ModShift}, {KeyF22, 21, ModShift}, {KeyF23, 23, ModShift}, {KeyF24, 24, ModShift},
		{KeyF25, 20, ModControl}, {KeyF26, 21, ModControl}, {KeyF27, 23, ModControl}, {KeyF28, 24, ModControl},
		{KeyF29, 20, ModShift | ModControl}, {KeyF30, 21, ModShift | ModControl}, {KeyF31, 23, ModShift | ModControl}, {KeyF32, 24, ModShift | ModControl},
		{KeyF33, 20, ModAlt}, {KeyF34, 21, ModAlt}, {KeyF35, 23, ModAlt},
	}
	for _, e := range extended {
		rs = append(rs, rule{key: e.key, mods: modAny, appKeypad: either, appCursor: either, numLock: either,
			sequence: "\x1b[" + itoa(e.base) + ";" + itoa(modParam(e.mod)) + "~"})
	}

	// Keypad: in APPLICATION_KEYPAD mode, digits and operators emit SS3
	// forms; otherwise they fall through to the caller's printable path
	// (Composed bytes), so only the application-mode rules are listed here,
	// except Keypad Enter, which also has a normal-mode rule emitting CR.
	kpLetters := map[Key]byte{
		KeyKeypad0: 'p', KeyKeypad1: 'q', KeyKeypad2: 'r', KeyKeypad3: 's', KeyKeypad4: 't',
		KeyKeypad5: 'u', KeyKeypad6: 'v', KeyKeypad7: 'w', KeyKeypad8: 'x', KeyKeypad9: 'y',
		KeyKeypadDecimal: 'n', KeyKeypadDivide: 'o', KeyKeypadMultiply: 'j',
		KeyKeypadSubtract: 'm', KeyKeypadAdd: 'k',
	}
	for k, letter := range kpLetters {
		rs = append(rs, rule{key: k, mods: modAny, appKeypad: yes, appCursor: either, numLock: either,
			sequence: "\x1bO" + string(letter)})
	}
	rs = append(rs, rule{key: KeyKeypadEnter, mods: modAny, appKeypad: yes, appCursor: either, numLock: either, sequence: "\x1bOM"})
	rs = append(rs, rule{key: KeyKeypadEnter, mods: modAny, appKeypad: no, appCursor: either, numLock: either, sequence: "\r"})

	return rs
}
