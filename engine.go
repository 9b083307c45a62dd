package coreterm

import "sync"

// Engine is the single logical actor that owns a Grid and a Parser and
// mediates between them and two external collaborators: a child byte
// stream and a key-event stream (spec §4.4). It does not perform I/O
// itself — Feed and HandleKey are both CPU-only, bounded-work calls; the
// caller's loop is responsible for polling the PTY, polling key events, and
// writing whatever bytes these methods return (spec §5 "Suspension points").
type Engine struct {
	// mu serializes Feed and HandleKey so that Grid mode bits observed by
	// the Key Encoder never interleave with an in-flight Parser mutation
	// (spec §4.4 "Required ordering guarantees").
	mu sync.Mutex

	grid    *Grid
	parser  *Parser
	encoder *KeyEncoder
}

// NewEngine creates an Engine over a freshly allocated rows x cols Grid.
func NewEngine(rows, cols int) *Engine {
	grid := NewGrid(rows, cols)
	return &Engine{
		grid:    grid,
		parser:  NewParser(grid),
		encoder: NewKeyEncoder(),
	}
}

// Grid returns the Engine's Grid for read access by a renderer. Renderers
// should read it only at a quiescent point (no Feed or HandleKey call in
// flight) as spec §5 specifies for platforms without snapshot support; use
// Grid.Snapshot for a point-in-time copy instead of holding a reference
// across a render pass.
func (e *Engine) Grid() *Grid { return e.grid }

// Parser returns the Engine's Parser, primarily so a caller can set
// OnDiagnostic/OnOSC callbacks once at construction time.
func (e *Engine) Parser() *Parser { return e.parser }

// Feed drives the Parser with bytes read from the child, returning any
// bytes the Parser itself generated in response (Device Status Reports).
// Safe to call with an arbitrarily split chunk of the child's stream; see
// Parser.Feed for the byte-resumability guarantee.
func (e *Engine) Feed(data []byte) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parser.Feed(data)
}

// HandleKey encodes a key event against the Grid's current mode bits and
// returns the bytes to write to the child, or nil if the event produced
// nothing (event.Composed empty and no rule matched).
func (e *Engine) HandleKey(ev KeyEvent) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encoder.Encode(ev, e.grid.Modes())
}

// FocusIn/FocusOut are emitted by the Engine Loop itself, not the Parser,
// when the windowing collaborator reports a focus change (spec §6
// "Outbound PTY byte stream").
func (e *Engine) FocusIn() []byte  { return []byte("\x1b[I") }
func (e *Engine) FocusOut() []byte { return []byte("\x1b[O") }
