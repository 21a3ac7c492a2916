// Package wireproto implements the binary framing used to carry denoised
// PCM over a transport such as a WebSocket connection: a small hybrid
// full/minimal header in front of the raw sample bytes, with an optional
// whole-packet zstd compression pass.
//
// The hybrid scheme mirrors the one used elsewhere in this project's
// stack for streaming PCM: a full header (magic, version, format, RTP
// timestamp, wall-clock time, sample rate, channel count) is sent only
// when the stream parameters change or on the first packet; every packet
// after that uses a minimal header carrying just the magic and RTP
// timestamp, since the receiver already knows the rest.
package wireproto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Magic bytes identifying the two header shapes on the wire.
const (
	MagicFull    uint16 = 0x5043 // "PC"
	MagicMinimal uint16 = 0x504D // "PM"
)

// Version is the current wire protocol version.
const Version uint8 = 1

// Format byte values.
const (
	FormatUncompressed uint8 = 0
	FormatZstd         uint8 = 2
)

// Header sizes in bytes, not counting the trailing PCM payload.
const (
	FullHeaderSize    = 29
	MinimalHeaderSize = 10
)

var (
	// ErrShortPacket is returned when a packet is too small to contain
	// even a minimal header.
	ErrShortPacket = errors.New("wireproto: packet too short")
	// ErrBadMagic is returned when neither magic value is present.
	ErrBadMagic = errors.New("wireproto: unrecognized magic")
)

// Header is the decoded form of either wire header shape.
type Header struct {
	Full         bool
	Format       uint8
	RTPTimestamp uint32
	WallClockMS  uint64 // zero on a minimal header
	SampleRate   int    // zero on a minimal header
	Channels     int    // zero on a minimal header
}

// Encoder builds wire packets from denoised PCM frames, switching between
// full and minimal headers as the stream parameters dictate, and
// optionally compressing the whole packet with zstd.
//
// An Encoder is not safe for concurrent use by multiple goroutines; guard
// it the same way callers already guard the Denoiser it sits downstream
// of.
type Encoder struct {
	useCompression bool
	zstdEncoder    *zstd.Encoder

	lastSampleRate int
	lastChannels   int
}

// NewEncoder returns an Encoder. When useCompression is true every packet
// is passed through a zstd encoder before being returned.
func NewEncoder(useCompression bool) (*Encoder, error) {
	e := &Encoder{
		useCompression: useCompression,
		lastSampleRate: -1,
		lastChannels:   -1,
	}
	if useCompression {
		zw, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("wireproto: new zstd encoder: %w", err)
		}
		e.zstdEncoder = zw
	}
	return e, nil
}

// Close releases the Encoder's zstd resources.
func (e *Encoder) Close() error {
	if e.zstdEncoder != nil {
		return e.zstdEncoder.Close()
	}
	return nil
}

// Encode builds a wire packet for one denoised PCM frame. A full header is
// emitted whenever sampleRate or channels differs from the previous call
// (including the first call); every other call emits a minimal header.
func (e *Encoder) Encode(pcm []byte, rtpTimestamp uint32, sampleRate, channels int) []byte {
	needFull := e.lastSampleRate != sampleRate || e.lastChannels != channels

	var packet []byte
	if needFull {
		packet = e.buildFullHeader(pcm, rtpTimestamp, sampleRate, channels)
		e.lastSampleRate = sampleRate
		e.lastChannels = channels
	} else {
		packet = e.buildMinimalHeader(pcm, rtpTimestamp)
	}

	if e.useCompression && e.zstdEncoder != nil {
		return e.zstdEncoder.EncodeAll(packet, make([]byte, 0, len(packet)))
	}
	return packet
}

func (e *Encoder) buildFullHeader(pcm []byte, rtpTimestamp uint32, sampleRate, channels int) []byte {
	packet := make([]byte, FullHeaderSize+len(pcm))
	off := 0

	binary.LittleEndian.PutUint16(packet[off:], MagicFull)
	off += 2
	packet[off] = Version
	off++
	if e.useCompression {
		packet[off] = FormatZstd
	} else {
		packet[off] = FormatUncompressed
	}
	off++
	binary.LittleEndian.PutUint32(packet[off:], rtpTimestamp)
	off += 4
	binary.LittleEndian.PutUint64(packet[off:], uint64(time.Now().UnixMilli()))
	off += 8
	binary.LittleEndian.PutUint32(packet[off:], uint32(sampleRate))
	off += 4
	packet[off] = byte(channels)
	off++
	binary.LittleEndian.PutUint64(packet[off:], 0) // reserved
	off += 8

	copy(packet[off:], pcm)
	return packet
}

func (e *Encoder) buildMinimalHeader(pcm []byte, rtpTimestamp uint32) []byte {
	packet := make([]byte, MinimalHeaderSize+len(pcm))
	off := 0

	binary.LittleEndian.PutUint16(packet[off:], MagicMinimal)
	off += 2
	binary.LittleEndian.PutUint32(packet[off:], rtpTimestamp)
	off += 4
	binary.LittleEndian.PutUint32(packet[off:], 0) // reserved
	off += 4

	copy(packet[off:], pcm)
	return packet
}

// decoderPool reuses zstd.Decoder instances across Decode calls; building
// one is comparatively expensive and a long-running server decodes many
// packets per connection.
var decoderPool = sync.Pool{
	New: func() any {
		zr, err := zstd.NewReader(nil)
		if err != nil {
			panic(fmt.Sprintf("wireproto: new zstd decoder: %v", err))
		}
		return zr
	},
}

// Decode parses a wire packet, transparently undoing zstd compression when
// present, and returns the header along with the remaining PCM payload.
func Decode(packet []byte) (Header, []byte, error) {
	if len(packet) < 2 {
		return Header{}, nil, ErrShortPacket
	}

	magic := binary.LittleEndian.Uint16(packet)
	if magic != MagicFull && magic != MagicMinimal {
		decoded, err := decompress(packet)
		if err != nil {
			return Header{}, nil, ErrBadMagic
		}
		packet = decoded
		if len(packet) < 2 {
			return Header{}, nil, ErrShortPacket
		}
		magic = binary.LittleEndian.Uint16(packet)
	}

	switch magic {
	case MagicFull:
		return decodeFullHeader(packet)
	case MagicMinimal:
		return decodeMinimalHeader(packet)
	default:
		return Header{}, nil, ErrBadMagic
	}
}

func decompress(packet []byte) ([]byte, error) {
	zr := decoderPool.Get().(*zstd.Decoder)
	defer decoderPool.Put(zr)
	return zr.DecodeAll(packet, nil)
}

func decodeFullHeader(packet []byte) (Header, []byte, error) {
	if len(packet) < FullHeaderSize {
		return Header{}, nil, ErrShortPacket
	}
	off := 2
	version := packet[off]
	off++
	format := packet[off]
	off++
	rtpTimestamp := binary.LittleEndian.Uint32(packet[off:])
	off += 4
	wallClock := binary.LittleEndian.Uint64(packet[off:])
	off += 8
	sampleRate := binary.LittleEndian.Uint32(packet[off:])
	off += 4
	channels := packet[off]
	off++
	off += 8 // reserved

	h := Header{
		Full:         true,
		Format:       format,
		RTPTimestamp: rtpTimestamp,
		WallClockMS:  wallClock,
		SampleRate:   int(sampleRate),
		Channels:     int(channels),
	}
	_ = version
	return h, packet[off:], nil
}

func decodeMinimalHeader(packet []byte) (Header, []byte, error) {
	if len(packet) < MinimalHeaderSize {
		return Header{}, nil, ErrShortPacket
	}
	off := 2
	rtpTimestamp := binary.LittleEndian.Uint32(packet[off:])
	off += 4
	off += 4 // reserved

	h := Header{
		Full:         false,
		RTPTimestamp: rtpTimestamp,
	}
	return h, packet[off:], nil
}
