package wireproto

import (
	"bytes"
	"testing"
)

func TestFirstPacketIsFullHeader(t *testing.T) {
	e, err := NewEncoder(false)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	defer e.Close()

	pcm := []byte{1, 2, 3, 4}
	packet := e.Encode(pcm, 1000, 16000, 1)

	h, payload, err := Decode(packet)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !h.Full {
		t.Fatalf("first packet should decode as full header")
	}
	if h.SampleRate != 16000 || h.Channels != 1 {
		t.Fatalf("got sample rate %d channels %d", h.SampleRate, h.Channels)
	}
	if h.RTPTimestamp != 1000 {
		t.Fatalf("got timestamp %d, want 1000", h.RTPTimestamp)
	}
	if !bytes.Equal(payload, pcm) {
		t.Fatalf("payload mismatch: got %v want %v", payload, pcm)
	}
}

func TestSubsequentSameParamsUsesMinimalHeader(t *testing.T) {
	e, err := NewEncoder(false)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	defer e.Close()

	pcm := []byte{5, 6, 7, 8}
	e.Encode(pcm, 1, 16000, 1)
	packet := e.Encode(pcm, 2, 16000, 1)

	h, payload, err := Decode(packet)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if h.Full {
		t.Fatalf("second packet with unchanged params should decode as minimal header")
	}
	if h.RTPTimestamp != 2 {
		t.Fatalf("got timestamp %d, want 2", h.RTPTimestamp)
	}
	if !bytes.Equal(payload, pcm) {
		t.Fatalf("payload mismatch: got %v want %v", payload, pcm)
	}
}

func TestParamChangeForcesFullHeaderAgain(t *testing.T) {
	e, err := NewEncoder(false)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	defer e.Close()

	pcm := []byte{9, 9}
	e.Encode(pcm, 1, 16000, 1)
	packet := e.Encode(pcm, 2, 8000, 1)

	h, _, err := Decode(packet)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !h.Full {
		t.Fatalf("sample rate change should force a full header")
	}
	if h.SampleRate != 8000 {
		t.Fatalf("got sample rate %d, want 8000", h.SampleRate)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	e, err := NewEncoder(true)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	defer e.Close()

	pcm := bytes.Repeat([]byte{0, 0, 1, 1}, 256)
	packet := e.Encode(pcm, 42, 16000, 2)

	h, payload, err := Decode(packet)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !h.Full || h.Format != FormatZstd {
		t.Fatalf("expected full zstd-formatted header, got %+v", h)
	}
	if !bytes.Equal(payload, pcm) {
		t.Fatalf("payload mismatch after decompression")
	}
}

func TestDecodeShortPacket(t *testing.T) {
	if _, _, err := Decode([]byte{1}); err != ErrShortPacket {
		t.Fatalf("Decode single byte = %v, want ErrShortPacket", err)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	if _, _, err := Decode([]byte{0xFF, 0xFF, 0, 0}); err != ErrBadMagic {
		t.Fatalf("Decode bad magic = %v, want ErrBadMagic", err)
	}
}
