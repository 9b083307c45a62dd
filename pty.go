package coreterm

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// PTY is the interface the Engine Loop's host process uses to run the child
// shell (spec §6 "Child process"). Kept as an interface, matching
// purfecterm's PTY/UnixPTY/WindowsPTY split, so callers can substitute a
// fake in tests without spawning a real process.
type PTY interface {
	// Start starts cmd attached to the PTY's slave side.
	Start(cmd *exec.Cmd) error

	// Read reads bytes the child wrote to its stdout/stderr.
	Read(p []byte) (n int, err error)

	// Write sends bytes to the child's stdin.
	Write(p []byte) (n int, err error)

	// Resize informs the child's controlling terminal of a new size; the
	// child is expected to respond with SIGWINCH and, conventionally, a
	// DSR or redraw of its own.
	Resize(cols, rows int) error

	// Close releases the PTY's file descriptors.
	Close() error
}

// hostPTY implements PTY using github.com/creack/pty instead of purfecterm's
// cgo ptsname/grantpt/unlockpt shim; creack/pty wraps the same openpty
// family of syscalls for every platform it supports (including the
// pty_windows.go ConPTY path purfecterm hand-rolled separately), so one
// implementation covers what purfecterm needed two build-tagged files for.
type hostPTY struct {
	master *os.File
}

// NewPTY returns an unstarted PTY; the master/slave pair is opened by Start.
func NewPTY() (PTY, error) {
	return &hostPTY{}, nil
}

// Start starts cmd with its stdin/stdout/stderr attached to the PTY slave,
// in its own session with the slave as controlling terminal.
func (p *hostPTY) Start(cmd *exec.Cmd) error {
	master, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	p.master = master
	return nil
}

func (p *hostPTY) Read(b []byte) (int, error)  { return p.master.Read(b) }
func (p *hostPTY) Write(b []byte) (int, error) { return p.master.Write(b) }

// Resize sets the PTY's window size, mirroring TIOCSWINSZ.
func (p *hostPTY) Resize(cols, rows int) error {
	return pty.Setsize(p.master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

func (p *hostPTY) Close() error { return p.master.Close() }
