package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/phroun/direct-key-handler/keyboard"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/coreterm/coreterm"
	"github.com/coreterm/coreterm/internal/session"
)

// detectLocalCapabilities inspects stdout to size the initial Grid: a real
// terminal reports its own width/height, while a redirected stdout falls
// back to TerminalCapabilities' 80x24 default.
func detectLocalCapabilities() *coreterm.TerminalCapabilities {
	caps := coreterm.NewTerminalCapabilities()
	fd := int(os.Stdout.Fd())
	caps.IsTerminal = term.IsTerminal(fd)
	caps.IsRedirected = !caps.IsTerminal
	if caps.IsTerminal {
		if w, h, err := term.GetSize(fd); err == nil {
			caps.Width, caps.Height = w, h
		}
		caps.SupportsANSI = true
		caps.SupportsColor = true
		caps.ColorDepth = 24
	}
	return caps
}

// runLocal attaches the calling terminal directly to sess: stdin is decoded
// into coreterm.KeyEvents via direct-key-handler and fed to the Engine's Key
// Encoder, and the Grid is differentially redrawn to stdout, in the shape of
// purfecterm/cli's InputHandler/Renderer pair but against coreterm's Grid.
func runLocal(sess *session.Session, log *zap.Logger) error {
	fd := int(os.Stdin.Fd())
	prevState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("local: enter raw mode: %w", err)
	}
	defer term.Restore(fd, prevState)

	out := sess.Subscribe(64)
	done := make(chan struct{})
	r := newScreenRenderer(os.Stdout, sess.Engine())
	r.full()

	go func() {
		defer close(done)
		ticker := time.NewTicker(16 * time.Millisecond)
		defer ticker.Stop()
		dirty := false
		for {
			select {
			case _, ok := <-out:
				if !ok {
					return
				}
				dirty = true
			case <-ticker.C:
				if dirty {
					r.diff()
					dirty = false
				}
			}
		}
	}()

	manageTerminal := false
	kb := keyboard.New(keyboard.Options{
		InputReader:    os.Stdin,
		ManageTerminal: &manageTerminal,
	})
	kb.OnKey = func(key string) {
		ev, ok := decodeHostKey(key)
		if !ok {
			return
		}
		if reply := sess.Engine().HandleKey(ev); len(reply) > 0 {
			sess.PTY().Write(reply)
		}
	}
	if err := kb.Start(); err != nil {
		return fmt.Errorf("local: start keyboard: %w", err)
	}
	defer kb.Stop()

	<-done
	return nil
}

// decodeHostKey translates a direct-key-handler key name (e.g. "Up",
// "C-Left", "M-x", a literal rune) into a coreterm.KeyEvent, mirroring
// purfecterm/cli/input.go's keyToBytes table but producing a symbolic
// KeyEvent for the Key Encoder instead of raw bytes directly.
func decodeHostKey(key string) (coreterm.KeyEvent, bool) {
	if k, ok := hostKeyNames[key]; ok {
		return coreterm.KeyEvent{Key: k, Modifiers: hostModifiers(key)}, true
	}

	if len(key) == 1 {
		return coreterm.KeyEvent{Composed: []byte(key)}, true
	}
	if len(key) == 2 && key[0] == '^' {
		ch := key[1]
		switch {
		case ch >= 'A' && ch <= 'Z':
			return coreterm.KeyEvent{Composed: []byte{ch - 'A' + 1}}, true
		case ch >= 'a' && ch <= 'z':
			return coreterm.KeyEvent{Composed: []byte{ch - 'a' + 1}}, true
		}
	}
	if strings.HasPrefix(key, "M-") && len(key) == 3 {
		return coreterm.KeyEvent{Composed: []byte{0x1b, key[2]}}, true
	}
	if len(key) > 1 && key[0] != '^' && !strings.Contains(key, "-") {
		return coreterm.KeyEvent{Composed: []byte(key)}, true
	}
	return coreterm.KeyEvent{}, false
}

func hostModifiers(key string) coreterm.Modifier {
	var m coreterm.Modifier
	if strings.HasPrefix(key, "S-") {
		m |= coreterm.ModShift
	}
	if strings.HasPrefix(key, "C-") {
		m |= coreterm.ModControl
	}
	if strings.HasPrefix(key, "M-") {
		m |= coreterm.ModAlt
	}
	return m
}

var hostKeyNames = map[string]coreterm.Key{
	"Up": coreterm.KeyUp, "Down": coreterm.KeyDown, "Left": coreterm.KeyLeft, "Right": coreterm.KeyRight,
	"C-Up": coreterm.KeyUp, "C-Down": coreterm.KeyDown, "C-Left": coreterm.KeyLeft, "C-Right": coreterm.KeyRight,
	"Home": coreterm.KeyHome, "End": coreterm.KeyEnd,
	"PageUp": coreterm.KeyPageUp, "PageDown": coreterm.KeyPageDown,
	"Insert": coreterm.KeyInsert, "Delete": coreterm.KeyDelete,
	"Backspace": coreterm.KeyBackspace, "Enter": coreterm.KeyReturn, "Tab": coreterm.KeyTab,
	"F1": coreterm.KeyF1, "F2": coreterm.KeyF2, "F3": coreterm.KeyF3, "F4": coreterm.KeyF4,
	"F5": coreterm.KeyF5, "F6": coreterm.KeyF6, "F7": coreterm.KeyF7, "F8": coreterm.KeyF8,
	"F9": coreterm.KeyF9, "F10": coreterm.KeyF10, "F11": coreterm.KeyF11, "F12": coreterm.KeyF12,
}

// screenRenderer differentially redraws an Engine's Grid to an io.Writer,
// tracking the previously drawn cells the way purfecterm/cli's Renderer
// tracks lastCells, but against coreterm.Cell instead of purfecterm's model.
type screenRenderer struct {
	w      *os.File
	engine *coreterm.Engine
	last   []coreterm.Cell
}

func newScreenRenderer(w *os.File, e *coreterm.Engine) *screenRenderer {
	return &screenRenderer{w: w, engine: e}
}

func (r *screenRenderer) full() {
	r.last = nil
	r.diff()
}

func (r *screenRenderer) diff() {
	rows, cols := r.engine.Grid().Size()
	cur := r.engine.Grid().Snapshot(make([]coreterm.Cell, rows*cols))

	var b strings.Builder
	changed := r.last == nil
	for row := 0; row < rows; row++ {
		rowChanged := changed
		if !rowChanged {
			for col := 0; col < cols; col++ {
				if cur[row*cols+col] != r.last[row*cols+col] {
					rowChanged = true
					break
				}
			}
		}
		if !rowChanged {
			continue
		}
		b.WriteString("\x1b[" + strconv.Itoa(row+1) + ";1H\x1b[K")
		var lastStyle coreterm.Style = 0xff // force first SGR emission
		var lastFg, lastBg coreterm.RGB
		first := true
		for col := 0; col < cols; col++ {
			c := cur[row*cols+col]
			if first || c.Style != lastStyle || c.Fg != lastFg || c.Bg != lastBg {
				writeSGR(&b, c)
				lastStyle, lastFg, lastBg, first = c.Style, c.Fg, c.Bg, false
			}
			if c.Length == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteString(string(c.Rune()))
			}
		}
	}

	if b.Len() > 0 {
		r.w.WriteString(b.String())
	}
	r.last = cur
}

func writeSGR(b *strings.Builder, c coreterm.Cell) {
	b.WriteString("\x1b[0")
	if c.Style.Has(coreterm.StyleBold) {
		b.WriteString(";1")
	}
	if c.Style.Has(coreterm.StyleItalic) {
		b.WriteString(";3")
	}
	if c.Style.Has(coreterm.StyleUnderline) {
		b.WriteString(";4")
	}
	if c.Style.Has(coreterm.StyleInvert) {
		b.WriteString(";7")
	}
	fmt.Fprintf(b, ";38;2;%d;%d;%d;48;2;%d;%d;%d", c.Fg.R, c.Fg.G, c.Fg.B, c.Bg.R, c.Bg.G, c.Bg.B)
	b.WriteByte('m')
}
