package coreterm

import "testing"

func TestRingBufferRequiresPowerOfTwo(t *testing.T) {
	if _, err := NewRingBuffer(3, false); err == nil {
		t.Fatal("capacity 3 is not a power of two and should be rejected")
	}
	if _, err := NewRingBuffer(4, false); err != nil {
		t.Fatalf("capacity 4 should be accepted: %v", err)
	}
}

func TestRingBufferWriteNoWrap(t *testing.T) {
	rb, err := NewRingBuffer(8, false)
	if err != nil {
		t.Fatal(err)
	}
	rb.Write([]byte("abc"))
	if rb.Get(0) != 'c' {
		t.Fatalf("Get(0) = %q, want 'c' (most recently written)", rb.Get(0))
	}
	if rb.Get(2) != 'a' {
		t.Fatalf("Get(2) = %q, want 'a' (oldest of this write)", rb.Get(2))
	}
}

func TestRingBufferWriteWrapAround(t *testing.T) {
	rb, err := NewRingBuffer(4, false)
	if err != nil {
		t.Fatal(err)
	}
	rb.Write([]byte("abcd"))
	rb.Write([]byte("ef")) // wraps: buffer now holds c,d,e,f in write order
	if rb.Get(0) != 'f' {
		t.Fatalf("Get(0) = %q, want 'f'", rb.Get(0))
	}
	if rb.Get(1) != 'e' {
		t.Fatalf("Get(1) = %q, want 'e'", rb.Get(1))
	}
	if rb.Get(2) != 'd' {
		t.Fatalf("Get(2) = %q, want 'd' (the byte written before 'e')", rb.Get(2))
	}
}

func TestRingBufferWriteLargerThanCapacity(t *testing.T) {
	rb, err := NewRingBuffer(4, false)
	if err != nil {
		t.Fatal(err)
	}
	rb.Write([]byte("abcdefgh")) // only the last 4 bytes ("efgh") survive
	if rb.Get(0) != 'h' || rb.Get(3) != 'e' {
		t.Fatalf("Get(0)=%q Get(3)=%q, want 'h' and 'e'", rb.Get(0), rb.Get(3))
	}
}

func TestRingBufferGetpDiscontiguousByDefault(t *testing.T) {
	rb, err := NewRingBuffer(8, false)
	if err != nil {
		t.Fatal(err)
	}
	rb.Write([]byte("abc"))
	if _, err := rb.Getp(0, 2); err != ErrDiscontiguous {
		t.Fatalf("Getp on a non-contiguous buffer should return ErrDiscontiguous, got %v", err)
	}
}

func TestRingBufferCapacity(t *testing.T) {
	rb, err := NewRingBuffer(16, false)
	if err != nil {
		t.Fatal(err)
	}
	if rb.Capacity() != 16 {
		t.Fatalf("Capacity() = %d, want 16", rb.Capacity())
	}
}
