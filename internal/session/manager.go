// Package session owns the set of running terminal sessions, each pairing
// a coreterm.Engine with a child process and an optional scrollback ring
// buffer, and exposes them over WebSocket. Structurally this follows
// noppefoxwolf-vibetunnel's pkg/pty.Manager (uuid-keyed session map behind
// a mutex, one goroutine per session reading the PTY) wired to coreterm's
// Engine instead of that repo's own terminal buffer.
package session

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coreterm/coreterm"
)

// Session is one running terminal: a child process attached to a PTY, fed
// through a coreterm.Engine, with bytes the Parser emits in response (DSRs)
// written straight back to the child.
type Session struct {
	ID     string
	engine *coreterm.Engine
	pty    coreterm.PTY
	scroll *coreterm.RingBuffer // nil if scrollback capture is disabled

	log *zap.Logger

	// listeners fans out PTY bytes (after parsing) to every attached
	// WebSocket connection; see Subscribe/broadcast below.
	mu        sync.Mutex
	listeners []chan []byte
	closed    bool
}

// Manager tracks every live Session by ID.
type Manager struct {
	log      *zap.Logger
	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewManager creates an empty session Manager.
func NewManager(log *zap.Logger) *Manager {
	return &Manager{log: log, sessions: make(map[string]*Session)}
}

// CreateOptions configures a new Session.
type CreateOptions struct {
	Shell              string
	Rows, Cols         int
	ScrollbackBytes    int  // 0 disables scrollback capture
	ScrollbackMapped   bool // contiguous mmap mode; see coreterm.NewRingBuffer
}

// Create starts shell in a new PTY, wires it to a fresh Engine, and
// registers the resulting Session under a new UUID.
func (m *Manager) Create(opts CreateOptions) (*Session, error) {
	id := uuid.New().String()
	log := m.log.With(zap.String("session", id))

	p, err := coreterm.NewPTY()
	if err != nil {
		return nil, fmt.Errorf("session: new pty: %w", err)
	}

	cmd := exec.Command(opts.Shell)
	if err := p.Start(cmd); err != nil {
		return nil, fmt.Errorf("session: start %s: %w", opts.Shell, err)
	}
	if err := p.Resize(opts.Cols, opts.Rows); err != nil {
		log.Warn("initial resize failed", zap.Error(err))
	}

	engine := coreterm.NewEngine(opts.Rows, opts.Cols)
	engine.Parser().OnDiagnostic = func(d coreterm.Diagnostic) {
		log.Debug("parser diagnostic", zap.String("kind", diagKindString(d.Kind)), zap.String("state", d.State))
	}

	var scroll *coreterm.RingBuffer
	if opts.ScrollbackBytes > 0 {
		capacity := nextPowerOfTwo(opts.ScrollbackBytes)
		scroll, err = coreterm.NewRingBuffer(capacity, opts.ScrollbackMapped)
		if err != nil {
			log.Warn("scrollback ring buffer disabled", zap.Error(err))
			scroll = nil
		}
	}

	s := &Session{ID: id, engine: engine, pty: p, scroll: scroll, log: log}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.wg.Add(1)
	go m.pump(s)

	return s, nil
}

// pump is the Engine Loop: it owns the only goroutine that calls Feed,
// serializing it against HandleKey through Engine's own mutex (spec §4.4).
func (m *Manager) pump(s *Session) {
	defer m.wg.Done()
	buf := make([]byte, 4096)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			if s.scroll != nil {
				s.scroll.Write(chunk)
			}
			if reply := s.engine.Feed(chunk); len(reply) > 0 {
				if _, werr := s.pty.Write(reply); werr != nil {
					s.log.Error("write DSR reply failed, closing session", zap.Error(werr))
					s.Close()
					return
				}
			}
			s.broadcast(chunk)
		}
		if err != nil {
			s.log.Info("pty closed", zap.Error(err))
			s.Close()
			return
		}
	}
}

// Engine exposes the session's Engine so a transport layer can call
// HandleKey directly.
func (s *Session) Engine() *coreterm.Engine { return s.engine }

// PTY exposes the session's PTY so a transport layer can forward raw writes
// (e.g. bracketed paste payloads) without going through HandleKey.
func (s *Session) PTY() coreterm.PTY { return s.pty }

// Subscribe registers a channel that receives every chunk of PTY output
// from now on. Callers must drain it: a chunk that arrives while bufSize
// chunks are already queued is dropped for this subscriber, and broadcast
// never blocks (see broadcast).
func (s *Session) Subscribe(bufSize int) <-chan []byte {
	ch := make(chan []byte, bufSize)
	s.mu.Lock()
	s.listeners = append(s.listeners, ch)
	s.mu.Unlock()
	return ch
}

func (s *Session) broadcast(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.listeners {
		select {
		case ch <- chunk:
		default:
			// Slow reader: drop rather than block the PTY pump.
		}
	}
}

// Close tears down the session's PTY, ring buffer, and listener channels.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, ch := range s.listeners {
		close(ch)
	}
	s.listeners = nil
	s.mu.Unlock()

	if s.scroll != nil {
		s.scroll.Close()
	}
	return s.pty.Close()
}

// Get returns the session registered under id, if any.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove closes and unregisters a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Wait blocks until every session's pump goroutine has exited.
func (m *Manager) Wait() { m.wg.Wait() }

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func diagKindString(k coreterm.DiagnosticKind) string {
	switch k {
	case coreterm.DiagMalformedInput:
		return "malformed-input"
	case coreterm.DiagUnknownSequence:
		return "unknown-sequence"
	default:
		return "unknown"
	}
}
