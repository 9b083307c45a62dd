//go:build linux

package coreterm

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linuxContiguousBuffer is the twin virtual-memory mapping described in
// original_source/ringbuf.c: a single memfd of `capacity` bytes is mapped
// twice, back to back, so that the byte range [capacity, 2*capacity) is the
// same physical memory as [0, capacity). A write that wraps past the end of
// the logical buffer is therefore still readable as one contiguous slice
// through the second mapping. Getp itself bounds offset+len by the number of
// bytes written (at most capacity), so the slices it returns lie within the
// first mapping.
//
// ringbuf.c itself maps two MAP_PRIVATE|MAP_ANONYMOUS regions, which on
// Linux are not guaranteed to share physical pages; this port uses a
// memfd-backed MAP_SHARED double mapping instead, which is the usual
// correct way to build a "magic ring buffer" and is what the C comment
// describing "continous_memory" was reaching for.
type linuxContiguousBuffer struct {
	fd    int
	view  []byte // the full 2*capacity mapping; buf is view[:capacity]
	pgsz  int
}

func newContiguousBuffer(capacity int) (contiguousView, error) {
	pgsz := unix.Getpagesize()
	if capacity%pgsz != 0 {
		return nil, fmt.Errorf("coreterm: contiguous ring buffer capacity %d must be a multiple of the page size %d", capacity, pgsz)
	}

	fd, err := unix.MemfdCreate("coreterm-ringbuf", 0)
	if err != nil {
		return nil, fmt.Errorf("coreterm: memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(capacity)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("coreterm: ftruncate: %w", err)
	}

	// Reserve a 2*capacity region so the kernel gives us contiguous address
	// space, then replace both halves with MAP_FIXED mappings of the same fd.
	reserve, err := unix.Mmap(-1, 0, 2*capacity, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("coreterm: reserve mmap: %w", err)
	}
	base := uintptr(unsafe.Pointer(&reserve[0]))

	if err := mmapFixed(base, fd, 0, capacity); err != nil {
		unix.Munmap(reserve)
		unix.Close(fd)
		return nil, err
	}
	if err := mmapFixed(base+uintptr(capacity), fd, 0, capacity); err != nil {
		unix.Munmap(reserve)
		unix.Close(fd)
		return nil, err
	}

	return &linuxContiguousBuffer{fd: fd, view: reserve, pgsz: pgsz}, nil
}

func mmapFixed(addr uintptr, fd int, offset int64, length int) error {
	_, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		addr,
		uintptr(length),
		uintptr(unix.PROT_READ|unix.PROT_WRITE),
		uintptr(unix.MAP_SHARED|unix.MAP_FIXED),
		uintptr(fd),
		uintptr(offset),
	)
	if errno != 0 {
		return fmt.Errorf("coreterm: mmap MAP_FIXED at %#x: %w", addr, errno)
	}
	return nil
}

func (c *linuxContiguousBuffer) bytes() []byte { return c.view }
func (c *linuxContiguousBuffer) pageSize() int { return c.pgsz }

func (c *linuxContiguousBuffer) close() {
	unix.Munmap(c.view)
	unix.Close(c.fd)
}
