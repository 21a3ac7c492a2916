package ringbuf

import (
	"bytes"
	"testing"
)

func TestPushGetRoundTrip(t *testing.T) {
	rb := New()
	rb.Configure(8)

	if err := rb.Push([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if rb.Len() != 3 {
		t.Fatalf("Len = %d, want 3", rb.Len())
	}

	out := make([]byte, 3)
	n := rb.Get(out)
	if n != 3 || !bytes.Equal(out, []byte{1, 2, 3}) {
		t.Fatalf("Get = %v (%d), want [1 2 3] (3)", out, n)
	}
	if rb.Len() != 0 {
		t.Fatalf("Len after drain = %d, want 0", rb.Len())
	}
}

func TestWrapAround(t *testing.T) {
	rb := New()
	rb.Configure(4)

	if err := rb.Push([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	out := make([]byte, 2)
	rb.Get(out)

	if err := rb.Push([]byte{4, 5}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	rest := make([]byte, 3)
	n := rb.Get(rest)
	if n != 3 || !bytes.Equal(rest[:n], []byte{3, 4, 5}) {
		t.Fatalf("Get after wrap = %v (%d), want [3 4 5] (3)", rest[:n], n)
	}
}

func TestOverflow(t *testing.T) {
	rb := New()
	rb.Configure(4)

	if err := rb.Push([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := rb.Push([]byte{4, 5}); err != ErrOverflow {
		t.Fatalf("Push over capacity = %v, want ErrOverflow", err)
	}
	if rb.Len() != 3 {
		t.Fatalf("Len after rejected push = %d, want 3 (unchanged)", rb.Len())
	}
}

func TestGetClampsToRequestedCapacity(t *testing.T) {
	rb := New()
	rb.Configure(8)
	rb.Push([]byte{1, 2, 3, 4})

	out := make([]byte, 2)
	n := rb.Get(out)
	if n != 2 {
		t.Fatalf("Get = %d, want 2", n)
	}
	if rb.Len() != 2 {
		t.Fatalf("Len after partial drain = %d, want 2", rb.Len())
	}
}
