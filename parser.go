package coreterm

import "strconv"

// parserState is the Parser's current position in the byte-driven state
// machine of spec §4.2.
type parserState int

const (
	stateGround parserState = iota
	stateUTF8Chomp1
	stateUTF8Chomp2
	stateUTF8Chomp3
	stateEscape
	stateCSI
	stateCSIParams
	stateOSC
	stateOSCEscape
)

const (
	maxCSIParams = 5
	maxOSCBytes  = 1024
)

// DiagnosticKind classifies a Parser diagnostic (spec §7).
type DiagnosticKind int

const (
	DiagMalformedInput DiagnosticKind = iota
	DiagUnknownSequence
)

// Diagnostic describes a recoverable parser condition: malformed input or a
// well-formed but unrecognized CSI/OSC sequence. The parser never aborts on
// either; it logs (via the callback, if set) and returns to GROUND.
type Diagnostic struct {
	Kind    DiagnosticKind
	State   string
	Byte    byte
	Message string
}

// Parser is a deterministic, byte-resumable state machine that turns a
// child process's output stream into mutations on a Grid. It holds a
// borrowed reference to the Grid for the duration of Feed and carries no
// other component's state; Feed may be called any number of times with
// arbitrarily split sequences (spec §4.2: "Parser is restartable and
// stateful").
type Parser struct {
	grid *Grid

	state parserState

	// UTF8_CHOMPn scratch.
	utf8Buf [4]byte
	utf8Got byte // bytes accumulated so far, including the lead byte

	// CSI_PARAMS scratch: up to maxCSIParams parameters, -1 meaning absent.
	csiParams   [maxCSIParams]int
	csiParamIdx int
	csiMarker   byte // 0 or '?'

	// OSC/OSC_ESC scratch.
	oscBuf [maxOSCBytes]byte
	oscLen int

	// OnDiagnostic, if set, is called for every recoverable malformed-input
	// or unknown-sequence condition. internal/session's Manager.Create wires
	// this to its zap logger (SPEC_FULL.md §6.A); the core package itself
	// does not log.
	OnDiagnostic func(Diagnostic)

	// OnOSC, if set, is called with the numeric OSC prefix and the payload
	// that follows its ';' for every dispatched OSC string (window/icon
	// title, working-directory hint, hyperlink, shell-integration region).
	// The grid retains none of this state (spec §4.2.OSC-dispatch).
	OnOSC func(prefix int, payload string)
}

// NewParser creates a Parser that mutates grid. grid must outlive the Parser.
func NewParser(grid *Grid) *Parser {
	p := &Parser{grid: grid}
	p.resetCSI()
	return p
}

// Feed consumes data byte by byte, mutating the Grid and returning any bytes
// the parser itself generates in response (currently only Device Status
// Report replies to CSI 6n). Feed(xs); Feed(ys) produces the same Grid state
// and the same concatenated outbound bytes as a single Feed(xs++ys) call
// (spec §8 byte-resumability).
func (p *Parser) Feed(data []byte) []byte {
	var out []byte
	for _, b := range data {
		if resp := p.step(b); resp != nil {
			out = append(out, resp...)
		}
	}
	return out
}

func (p *Parser) step(b byte) []byte {
	switch p.state {
	case stateGround:
		return p.stepGround(b)
	case stateUTF8Chomp1, stateUTF8Chomp2, stateUTF8Chomp3:
		return p.stepUTF8(b)
	case stateEscape:
		return p.stepEscape(b)
	case stateCSI, stateCSIParams:
		return p.stepCSI(b)
	case stateOSC:
		return p.stepOSC(b)
	case stateOSCEscape:
		return p.stepOSCEscape(b)
	}
	return nil
}

func (p *Parser) fail(kind DiagnosticKind, msg string, b byte) {
	if p.OnDiagnostic != nil {
		p.OnDiagnostic(Diagnostic{Kind: kind, State: p.stateName(), Byte: b, Message: msg})
	}
	p.state = stateGround
	p.utf8Got = 0
	p.resetCSI()
	p.oscLen = 0
}

func (p *Parser) stateName() string {
	switch p.state {
	case stateGround:
		return "GROUND"
	case stateUTF8Chomp1:
		return "UTF8_CHOMP1"
	case stateUTF8Chomp2:
		return "UTF8_CHOMP2"
	case stateUTF8Chomp3:
		return "UTF8_CHOMP3"
	case stateEscape:
		return "ESC"
	case stateCSI:
		return "CSI"
	case stateCSIParams:
		return "CSI_PARAMS"
	case stateOSC:
		return "OSC"
	case stateOSCEscape:
		return "OSC_ESC"
	default:
		return "?"
	}
}

// --- GROUND -----------------------------------------------------------

func (p *Parser) stepGround(b byte) []byte {
	switch {
	case b == 0x1B:
		p.state = stateEscape
		return nil
	case b <= 0x1F:
		return p.c0(b)
	case b >= 0x20 && b <= 0x7E:
		var buf [4]byte
		buf[0] = b
		p.grid.Insert(buf, 1)
		return nil
	case b >= 0xC2 && b <= 0xDF:
		p.beginUTF8(b, stateUTF8Chomp1)
		return nil
	case b >= 0xE0 && b <= 0xEF:
		p.beginUTF8(b, stateUTF8Chomp2)
		return nil
	case b >= 0xF0 && b <= 0xF4:
		p.beginUTF8(b, stateUTF8Chomp3)
		return nil
	default:
		// 0x7F, 0x80..0xC1, 0xF5..0xFF: malformed lead byte.
		p.fail(DiagMalformedInput, "invalid byte in GROUND", b)
		return nil
	}
}

func (p *Parser) beginUTF8(lead byte, next parserState) {
	p.utf8Buf[0] = lead
	p.utf8Got = 1
	p.state = next
}

func (p *Parser) stepUTF8(b byte) []byte {
	if b < 0x80 || b > 0xBF {
		p.fail(DiagMalformedInput, "expected UTF-8 continuation byte", b)
		return nil
	}
	p.utf8Buf[p.utf8Got] = b
	p.utf8Got++

	switch p.state {
	case stateUTF8Chomp3:
		p.state = stateUTF8Chomp2
	case stateUTF8Chomp2:
		p.state = stateUTF8Chomp1
	case stateUTF8Chomp1:
		p.grid.Insert(p.utf8Buf, p.utf8Got)
		p.utf8Got = 0
		p.state = stateGround
	}
	return nil
}

// c0 handles a C0 control byte in GROUND (spec §4.2.C0). ESC is handled by
// the caller before reaching here.
func (p *Parser) c0(b byte) []byte {
	switch b {
	case 0x07: // BEL
	case 0x08: // BS
		p.grid.Backspace()
	case 0x09: // HT
		p.grid.Tab()
	case 0x0A: // LF
		p.grid.LineFeed()
	case 0x0D: // CR
		p.grid.CarriageReturn()
	default:
		p.fail(DiagMalformedInput, "unsupported C0 control", b)
	}
	return nil
}

// --- ESC ----------------------------------------------------------------

func (p *Parser) stepEscape(b byte) []byte {
	switch {
	case b >= 0x30 && b <= 0x3F:
		switch b {
		case '7':
			p.grid.SaveCursor()
		case '8':
			p.grid.RestoreCursor()
		}
		p.state = stateGround
		return nil
	case b == '[':
		p.resetCSI()
		p.state = stateCSI
		return nil
	case b == ']':
		p.oscLen = 0
		p.state = stateOSC
		return nil
	default:
		p.fail(DiagMalformedInput, "unrecognized ESC sequence", b)
		return nil
	}
}

// --- CSI / CSI_PARAMS -----------------------------------------------------

func (p *Parser) resetCSI() {
	for i := range p.csiParams {
		p.csiParams[i] = -1
	}
	p.csiParamIdx = 0
	p.csiMarker = 0
}

func (p *Parser) stepCSI(b byte) []byte {
	if p.state == stateCSI {
		switch {
		case b >= '0' && b <= '9':
			p.csiParams[0] = int(b - '0')
			p.state = stateCSIParams
			return nil
		case b == '?':
			p.csiMarker = '?'
			p.state = stateCSIParams
			return nil
		case b >= 0x40 && b <= 0x7E:
			return p.dispatchCSI(b)
		default:
			p.fail(DiagMalformedInput, "unexpected byte in CSI", b)
			return nil
		}
	}

	// stateCSIParams
	switch {
	case b >= '0' && b <= '9':
		cur := p.csiParams[p.csiParamIdx]
		if cur < 0 {
			cur = 0
		}
		p.csiParams[p.csiParamIdx] = cur*10 + int(b-'0')
		return nil
	case b == ';':
		if p.csiParamIdx == maxCSIParams-1 {
			p.fail(DiagMalformedInput, "too many CSI parameters", b)
			return nil
		}
		p.csiParamIdx++
		return nil
	case b >= 0x40 && b <= 0x7E:
		return p.dispatchCSI(b)
	default:
		p.fail(DiagMalformedInput, "unexpected byte in CSI_PARAMS", b)
		return nil
	}
}

// csiParam returns the i'th parameter (0-indexed) from params, or def if
// absent/out of range.
func csiParam(params [maxCSIParams]int, i, def int) int {
	if i < 0 || i >= maxCSIParams || params[i] < 0 {
		return def
	}
	return params[i]
}

func (p *Parser) dispatchCSI(final byte) []byte {
	marker := p.csiMarker
	params := p.csiParams
	p.state = stateGround
	p.resetCSI()

	if marker == '?' {
		return p.dispatchPrivateMode(params, final)
	}

	switch final {
	case 'A':
		p.grid.MoveCursorRelative(-csiParam(params, 0, 1), 0)
	case 'B':
		p.grid.MoveCursorRelative(csiParam(params, 0, 1), 0)
	case 'C':
		p.grid.MoveCursorRelative(0, csiParam(params, 0, 1))
	case 'D':
		p.grid.MoveCursorRelative(0, -csiParam(params, 0, 1))
	case 'H', 'f':
		p.grid.MoveCursor(csiParam(params, 0, 1), csiParam(params, 1, 1))
	case 'J':
		switch csiParam(params, 0, 0) {
		case 0:
			p.grid.Erase(EraseCursorToEnd)
		case 1:
			p.grid.Erase(EraseStartToCursor)
		case 2, 3:
			p.grid.Erase(EraseEntireScreen)
		default:
			p.diagUnknown(final)
		}
	case 'K':
		switch csiParam(params, 0, 0) {
		case 0:
			p.grid.Erase(EraseToEndOfLine)
		case 1:
			p.grid.Erase(EraseToStartOfLine)
		case 2:
			p.grid.Erase(EraseEntireLine)
		default:
			p.diagUnknown(final)
		}
	case 'n':
		if csiParam(params, 0, 0) == 6 {
			row, col := p.grid.Cursor()
			return []byte("\x1b[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "R")
		}
		p.diagUnknown(final)
	case 'm':
		p.dispatchSGR(params)
	default:
		p.diagUnknown(final)
	}
	return nil
}

// dispatchPrivateMode handles `CSI ? Pn h` / `CSI ? Pn l` mode set/reset.
func (p *Parser) dispatchPrivateMode(params [maxCSIParams]int, final byte) []byte {
	if final != 'h' && final != 'l' {
		p.diagUnknown(final)
		return nil
	}
	set := final == 'h'
	switch params[0] {
	case 1:
		p.setOrClear(ModeCursorKey|ModeApplicationCursor, set)
	case 7:
		p.setOrClear(ModeAutoWrap, set)
	case 25:
		// Polarity note (spec §4.2.CSI-dispatch): `h` HIDES the cursor.
		p.setOrClear(ModeHideCursor, set)
	case 2004:
		p.setOrClear(ModeBracketedPaste, set)
	default:
		p.diagUnknown(final)
	}
	return nil
}

func (p *Parser) setOrClear(m Mode, set bool) {
	if set {
		p.grid.SetMode(m)
	} else {
		p.grid.ClearMode(m)
	}
}

func (p *Parser) diagUnknown(final byte) {
	if p.OnDiagnostic != nil {
		p.OnDiagnostic(Diagnostic{Kind: DiagUnknownSequence, State: "CSI", Byte: final, Message: "unknown CSI final byte"})
	}
}

// dispatchSGR applies a Select Graphic Rendition sequence to the grid's pen.
func (p *Parser) dispatchSGR(params [maxCSIParams]int) {
	n := 0
	for n < maxCSIParams && params[n] >= 0 {
		n++
	}
	if n == 0 || (n == 1 && params[0] == 0) {
		p.grid.ResetPen()
		return
	}

	for i := 0; i < n; i++ {
		code := params[i]
		switch {
		case code == 0:
			p.grid.ResetPen()
		case code == 1:
			p.grid.SetStyle(StyleBold)
		case code == 2:
			p.grid.SetStyle(StyleFaint)
		case code == 3:
			p.grid.SetStyle(StyleItalic)
		case code == 4:
			p.grid.SetStyle(StyleUnderline)
		case code == 7:
			p.grid.SetStyle(StyleInvert)
		case code == 22:
			p.grid.ClearStyle(StyleBold | StyleFaint)
		case code == 24:
			p.grid.ClearStyle(StyleUnderline)
		case code == 27:
			p.grid.ClearStyle(StyleInvert)
		case code == 39:
			p.grid.DefaultFg()
		case code == 49:
			p.grid.DefaultBg()
		case code >= 30 && code <= 37:
			p.grid.SetFgPalette(code - 30)
		case code >= 40 && code <= 47:
			p.grid.SetBgPalette(code - 40)
		case code >= 90 && code <= 97:
			p.grid.SetFgPalette(code - 90 + 8)
		case code >= 100 && code <= 107:
			p.grid.SetBgPalette(code - 100 + 8)
		case code == 38 || code == 48:
			isFg := code == 38
			if i+1 >= n {
				break
			}
			switch params[i+1] {
			case 5:
				if i+2 < n {
					if isFg {
						p.grid.SetFg8Bit(params[i+2])
					} else {
						p.grid.SetBg8Bit(params[i+2])
					}
					i += 2
				}
			case 2:
				if i+4 < n {
					c := RGB{uint8(params[i+2]), uint8(params[i+3]), uint8(params[i+4])}
					if isFg {
						p.grid.SetFgRGB(c)
					} else {
						p.grid.SetBgRGB(c)
					}
					i += 4
				}
			}
		}
	}
}

// --- OSC / OSC_ESC --------------------------------------------------------

func (p *Parser) stepOSC(b byte) []byte {
	switch b {
	case 0x07:
		p.dispatchOSC()
		p.state = stateGround
	case 0x1B:
		p.state = stateOSCEscape
	default:
		if p.oscLen < maxOSCBytes {
			p.oscBuf[p.oscLen] = b
			p.oscLen++
		}
		// Beyond capacity: drop the byte but keep scanning for the
		// terminator (spec §7 resource-saturation policy).
	}
	return nil
}

func (p *Parser) stepOSCEscape(b byte) []byte {
	if b == '\\' {
		p.dispatchOSC()
		p.state = stateGround
		return nil
	}
	if p.oscLen < maxOSCBytes {
		p.oscBuf[p.oscLen] = 0x1B
		p.oscLen++
	}
	if p.oscLen < maxOSCBytes {
		p.oscBuf[p.oscLen] = b
		p.oscLen++
	}
	p.state = stateOSC
	return nil
}

func (p *Parser) dispatchOSC() {
	s := string(p.oscBuf[:p.oscLen])
	p.oscLen = 0

	semi := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			semi = i
			break
		}
		if s[i] < '0' || s[i] > '9' {
			break
		}
	}
	if semi < 0 {
		if p.OnDiagnostic != nil {
			p.OnDiagnostic(Diagnostic{Kind: DiagUnknownSequence, State: "OSC", Message: "OSC without numeric prefix"})
		}
		return
	}
	prefix, err := strconv.Atoi(s[:semi])
	if err != nil {
		if p.OnDiagnostic != nil {
			p.OnDiagnostic(Diagnostic{Kind: DiagUnknownSequence, State: "OSC", Message: "OSC with malformed numeric prefix"})
		}
		return
	}
	payload := s[semi+1:]

	switch {
	case prefix == 0 || prefix == 1 || prefix == 2, prefix == 7, prefix == 8, prefix == 133:
		if p.OnOSC != nil {
			p.OnOSC(prefix, payload)
		}
	default:
		if p.OnDiagnostic != nil {
			p.OnDiagnostic(Diagnostic{Kind: DiagUnknownSequence, State: "OSC", Message: "unrecognized OSC prefix"})
		}
	}
}
