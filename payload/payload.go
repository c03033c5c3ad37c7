// Package payload implements a growable byte buffer with absolute-offset
// placement, gap filling, and in-place marker patching, as used to assemble
// exploit payloads and patch placeholder values into shellcode templates.
package payload

import "encoding/binary"

// initialCapacity is the starting capacity for a freshly grown Buffer.
const initialCapacity = 256

// Buffer is a growable byte sequence. The zero value is an empty, usable
// Buffer (there is no separate Init step in the Go port: a nil/zero Buffer
// behaves like one just constructed).
type Buffer struct {
	data []byte
}

// New returns an empty Buffer, ready to use.
func New() *Buffer {
	return &Buffer{}
}

// Len returns the current size of the buffer.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the buffer's contents. The returned slice aliases the
// Buffer's internal storage and must not be retained past the next mutating
// call.
func (b *Buffer) Bytes() []byte { return b.data }

// grow ensures capacity for at least need bytes total, doubling from
// initialCapacity until sufficient.
func (b *Buffer) grow(need int) {
	if cap(b.data) >= need {
		return
	}
	newCap := cap(b.data)
	if newCap == 0 {
		newCap = initialCapacity
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
}

// Push appends data to the buffer, growing capacity geometrically as
// needed.
func (b *Buffer) Push(data []byte) {
	b.grow(len(b.data) + len(data))
	b.data = append(b.data, data...)
}

// PushString appends the bytes of s, not its terminator.
func (b *Buffer) PushString(s string) {
	b.Push([]byte(s))
}

// FillTo extends the buffer to exactly offset bytes if it is currently
// shorter; it is a no-op if offset <= Len(). The gap is filled according to
// filler: nil or empty filler zero-fills; a single-byte filler is
// memset-tiled; a longer filler is tiled with its last repetition
// truncated to fit.
func (b *Buffer) FillTo(offset int, filler []byte) {
	if offset <= len(b.data) {
		return
	}
	b.grow(offset)
	gap := offset - len(b.data)
	start := len(b.data)
	b.data = b.data[:offset]

	switch {
	case len(filler) == 0:
		for i := start; i < offset; i++ {
			b.data[i] = 0
		}
	case len(filler) == 1:
		for i := start; i < offset; i++ {
			b.data[i] = filler[0]
		}
	default:
		for i := 0; i < gap; i++ {
			b.data[start+i] = filler[i%len(filler)]
		}
	}
}

// AtBytes places data at offset: fill_to(offset, zero) then push. Callers
// are expected to place fields at monotonically increasing offsets; if
// offset is already covered, FillTo is a no-op and data is appended at the
// buffer's current end, not spliced in.
func (b *Buffer) AtBytes(offset int, data []byte) {
	b.FillTo(offset, nil)
	b.Push(data)
}

// AtString is AtBytes for a string's bytes.
func (b *Buffer) AtString(offset int, s string) {
	b.AtBytes(offset, []byte(s))
}

// AtU8 places a single byte at offset.
func (b *Buffer) AtU8(offset int, v uint8) {
	b.AtBytes(offset, []byte{v})
}

// AtU16 places a little-endian uint16 at offset.
func (b *Buffer) AtU16(offset int, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	b.AtBytes(offset, buf[:])
}

// AtU32 places a little-endian uint32 at offset.
func (b *Buffer) AtU32(offset int, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.AtBytes(offset, buf[:])
}

// AtU64 places a little-endian uint64 at offset.
func (b *Buffer) AtU64(offset int, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	b.AtBytes(offset, buf[:])
}
