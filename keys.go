package coreterm

// Key identifies a symbolic, non-printable key. Printable characters and
// their compose products bypass the encoder entirely and are forwarded
// verbatim (spec §4.3, §6 "Key event input").
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyBackspace
	KeyReturn
	KeyTab
	KeyBackTab // Shift-Tab
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	// F13..F20 share the CSI N ~ encoding of F5.. with higher numeric codes;
	// F21..F35 are sent as modified F9..F12 sequences. See fCodes and
	// extended in keys_table.go.
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
	KeyF21
	KeyF22
	KeyF23
	KeyF24
	KeyF25
	KeyF26
	KeyF27
	KeyF28
	KeyF29
	KeyF30
	KeyF31
	KeyF32
	KeyF33
	KeyF34
	KeyF35
	KeyKeypad0
	KeyKeypad1
	KeyKeypad2
	KeyKeypad3
	KeyKeypad4
	KeyKeypad5
	KeyKeypad6
	KeyKeypad7
	KeyKeypad8
	KeyKeypad9
	KeyKeypadDecimal
	KeyKeypadEnter
	KeyKeypadAdd
	KeyKeypadSubtract
	KeyKeypadMultiply
	KeyKeypadDivide
)

// Modifier is a bit set of keyboard modifiers, mirroring original_source's
// X11 modifier bitset (keymap.c's c1 constraint) but named for what they
// mean rather than for the X11 masks that happened to encode them.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModControl
	ModAlt // Mod1 in X11 terms
	ModMod3
	ModMod4
)

// modAny is the "this rule matches regardless of modifiers" sentinel,
// equivalent to original_source's ANY_MOD.
const modAny Modifier = 0xFF

// triState encodes a rule's match against one of {APPLICATION_KEYPAD,
// APPLICATION_CURSOR, NumLock}: yes, no, or don't-care. Grounded on
// original_source/keymap.c's c2 byte, which packs exactly these three
// two-valued constraints into one field; here each gets its own tri-state
// instead of a bit-packed byte, since Go has no need to economize the way
// the C struct literal table did.
type triState int

const (
	either triState = iota
	yes
	no
)

func (t triState) matches(v bool) bool {
	switch t {
	case yes:
		return v
	case no:
		return !v
	default:
		return true
	}
}

// KeyEvent is one symbolic key press as delivered by the windowing
// collaborator (spec §6 "Key event input").
type KeyEvent struct {
	Key       Key
	Modifiers Modifier
	NumLock   bool
	// Composed, if non-empty, is the already-composed UTF-8 text for an
	// ordinary typed character; when present it bypasses the rule table
	// entirely and is returned verbatim by Encode.
	Composed []byte
}

// rule is one entry in the Key Encoder's rule table (spec §4.3): a key, a
// modifier match, a tri-state match over the three mode bits, and the bytes
// to emit when all match.
type rule struct {
	key        Key
	mods       Modifier
	appKeypad  triState
	appCursor  triState
	numLock    triState
	sequence   string
}

func (r rule) modsMatch(m Modifier) bool {
	if r.mods == modAny {
		return true
	}
	return r.mods == m
}

// KeyEncoder translates symbolic key events into the byte sequences a child
// shell expects, using a table of rules evaluated in order; the first rule
// whose key, modifiers, and mode tri-states all match wins (spec §4.3). It
// holds no mutable state of its own — AUTOWRAP/APPLICATION_KEYPAD/
// APPLICATION_CURSOR are read fresh from the Grid on every call, so Encode
// is a pure function of (event, grid modes) as required by spec §8.
type KeyEncoder struct {
	rules []rule
}

// NewKeyEncoder builds a Key Encoder with the default xterm-style rule table.
func NewKeyEncoder() *KeyEncoder {
	return &KeyEncoder{rules: defaultRules}
}

// Encode returns the bytes to send to the child for ev, given the Grid's
// current mode bits. It returns nil if ev.Composed is empty and no rule
// matches.
func (e *KeyEncoder) Encode(ev KeyEvent, modes Mode) []byte {
	if len(ev.Composed) > 0 {
		return ev.Composed
	}

	appKeypad := modes&ModeApplicationKeypad != 0
	appCursor := modes&ModeApplicationCursor != 0

	for _, r := range e.rules {
		if r.key != ev.Key {
			continue
		}
		if !r.modsMatch(ev.Modifiers) {
			continue
		}
		if !r.appKeypad.matches(appKeypad) {
			continue
		}
		if !r.appCursor.matches(appCursor) {
			continue
		}
		if !r.numLock.matches(ev.NumLock) {
			continue
		}
		return []byte(r.sequence)
	}
	return nil
}
