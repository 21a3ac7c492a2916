// Package ringbuf implements a fixed-capacity byte ring buffer used to
// decouple the caller's push/get cadence from the denoiser's fixed frame
// size.
package ringbuf

import (
	"encoding/binary"
	"errors"
)

// ErrOverflow is returned by Push when the incoming data would not fit in
// the remaining capacity of the buffer.
var ErrOverflow = errors.New("ringbuf: push would overflow buffer")

// RingBuffer is a single-producer, single-consumer byte ring buffer. It is
// not safe for concurrent use.
type RingBuffer struct {
	data   []byte
	cap    int
	len    int
	idxIn  int
	idxOut int
}

// New returns an unconfigured RingBuffer. Call Configure before use.
func New() *RingBuffer {
	return &RingBuffer{}
}

// Configure allocates the backing storage for cap bytes, discarding any
// previously buffered data.
func (rb *RingBuffer) Configure(cap int) {
	rb.data = make([]byte, cap)
	rb.cap = cap
	rb.len = 0
	rb.idxIn = 0
	rb.idxOut = 0
}

// Len returns the number of bytes currently buffered.
func (rb *RingBuffer) Len() int { return rb.len }

// Cap returns the configured capacity in bytes.
func (rb *RingBuffer) Cap() int { return rb.cap }

// IdxIn returns the current write cursor.
func (rb *RingBuffer) IdxIn() int { return rb.idxIn }

// IdxOut returns the current read cursor.
func (rb *RingBuffer) IdxOut() int { return rb.idxOut }

// Push appends data to the buffer, returning ErrOverflow if it would not
// fit in the remaining capacity. On overflow no bytes are written.
func (rb *RingBuffer) Push(data []byte) error {
	if len(data)+rb.len > rb.cap {
		return ErrOverflow
	}
	for _, b := range data {
		rb.len++
		rb.data[rb.idxIn] = b
		rb.idxIn++
		if rb.idxIn >= rb.cap {
			rb.idxIn = 0
		}
	}
	return nil
}

// Get drains up to len(dst) buffered bytes into dst, returning the number
// of bytes actually written.
func (rb *RingBuffer) Get(dst []byte) int {
	n := rb.len
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		rb.len--
		dst[i] = rb.data[rb.idxOut]
		rb.idxOut++
		if rb.idxOut >= rb.cap {
			rb.idxOut = 0
		}
	}
	return n
}

// SampleCap returns the buffer's capacity expressed in 16-bit samples,
// i.e. Cap()/2.
func (rb *RingBuffer) SampleCap() int { return rb.cap / 2 }

// Int16At reads the little-endian 16-bit sample stored at the given
// sample-granularity offset, bypassing the push/get cursors. Used by the
// denoiser to overlay frame analysis directly on the buffered bytes.
func (rb *RingBuffer) Int16At(sampleIdx int) int16 {
	i := sampleIdx * 2
	return int16(binary.LittleEndian.Uint16(rb.data[i : i+2]))
}

// SetInt16At writes v as a little-endian 16-bit sample at the given
// sample-granularity offset, bypassing the push/get cursors.
func (rb *RingBuffer) SetInt16At(sampleIdx int, v int16) {
	i := sampleIdx * 2
	binary.LittleEndian.PutUint16(rb.data[i:i+2], uint16(v))
}

// Deconfigure releases the backing storage, leaving rb ready for a fresh
// Configure call.
func (rb *RingBuffer) Deconfigure() {
	rb.data = nil
}

// Clean resets rb to its zero value.
func (rb *RingBuffer) Clean() {
	*rb = RingBuffer{}
}
