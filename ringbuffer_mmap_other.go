//go:build !linux

package coreterm

import "errors"

// Contiguous mapping relies on a memfd-backed double mmap that is Linux
// specific; elsewhere NewRingBuffer(capacity, true) fails outright rather
// than silently degrading to discontiguous mode, so callers notice at
// startup instead of at the first Getp call.
func newContiguousBuffer(capacity int) (contiguousView, error) {
	return nil, errors.New("coreterm: contiguous ring buffer mapping is only implemented on linux")
}
