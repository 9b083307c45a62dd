package coreterm

// TerminalCapabilities describes what a host terminal can do, so a caller
// can pick an initial Grid size and decide whether to bother feeding ANSI
// at all (spec §6 "Host environment"; a redirected file-backed stdout, for
// instance, still needs bytes written to it but has no use for a Key
// Encoder or Engine.FocusIn/FocusOut). Trimmed to the fields
// cmd/coretermd's detectLocalCapabilities actually sets and reads; there
// is no concurrent access to a capabilities value, so no mutex.
type TerminalCapabilities struct {
	IsTerminal   bool // true if this is an interactive terminal
	IsRedirected bool // true if output is being redirected (piped/file)
	SupportsANSI bool // true if ANSI escape codes are supported
	SupportsColor bool // true if color output is supported
	ColorDepth   int  // 0=none, 8=basic, 16=extended, 256=256color, 24=truecolor

	Width  int // columns
	Height int // rows
}

// NewTerminalCapabilities returns the conservative defaults for an unknown,
// non-interactive channel: 80x24, no color, no ANSI.
func NewTerminalCapabilities() *TerminalCapabilities {
	return &TerminalCapabilities{
		Width:  80,
		Height: 24,
	}
}
