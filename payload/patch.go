package payload

import (
	"bytes"
	"encoding/binary"
)

// Patch replaces every non-overlapping occurrence of marker in buf with
// replacement, in place. It copies min(len(marker), len(replacement)) bytes
// per occurrence and zero-fills any remainder up to len(marker); if
// replacement is longer than marker, only len(marker) bytes are written. The
// scan cursor advances by len(marker) past each hit, so occurrences cannot
// overlap. A zero-length marker, or a buf shorter than marker, is a no-op.
func Patch(buf, marker, replacement []byte) {
	if len(marker) == 0 || len(buf) < len(marker) {
		return
	}

	copyLen := len(replacement)
	if copyLen > len(marker) {
		copyLen = len(marker)
	}
	zeroLen := len(marker) - copyLen

	pos := 0
	for pos+len(marker) <= len(buf) {
		idx := bytes.Index(buf[pos:], marker)
		if idx < 0 {
			return
		}
		at := pos + idx
		copy(buf[at:at+copyLen], replacement[:copyLen])
		for i := at + copyLen; i < at+copyLen+zeroLen; i++ {
			buf[i] = 0
		}
		pos = at + len(marker)
	}
}

// PatchU8 treats marker and replacement as 8-bit native values.
func PatchU8(buf []byte, marker, replacement uint8) {
	Patch(buf, []byte{marker}, []byte{replacement})
}

// PatchU16 treats marker and replacement as little-endian 16-bit values
// (the native order on x86-64).
func PatchU16(buf []byte, marker, replacement uint16) {
	var m, r [2]byte
	binary.LittleEndian.PutUint16(m[:], marker)
	binary.LittleEndian.PutUint16(r[:], replacement)
	Patch(buf, m[:], r[:])
}

// PatchU32 treats marker and replacement as little-endian 32-bit values
// (the native order on x86-64).
func PatchU32(buf []byte, marker, replacement uint32) {
	var m, r [4]byte
	binary.LittleEndian.PutUint32(m[:], marker)
	binary.LittleEndian.PutUint32(r[:], replacement)
	Patch(buf, m[:], r[:])
}

// PatchU64 treats marker and replacement as little-endian 64-bit values
// (the native order on x86-64).
func PatchU64(buf []byte, marker, replacement uint64) {
	var m, r [8]byte
	binary.LittleEndian.PutUint64(m[:], marker)
	binary.LittleEndian.PutUint64(r[:], replacement)
	Patch(buf, m[:], r[:])
}

// patchRel scans buf for marker (width bytes wide) and, for each
// non-overlapping occurrence at offset m, writes target-(m+width) truncated
// to width bytes, little-endian: the signed displacement from the
// instruction following the patch site to target, matching x86 rel-immediate
// semantics.
func patchRel(buf, marker []byte, target int64, width int) {
	if len(marker) == 0 || len(buf) < len(marker) {
		return
	}
	pos := 0
	for pos+len(marker) <= len(buf) {
		idx := bytes.Index(buf[pos:], marker)
		if idx < 0 {
			return
		}
		at := pos + idx
		disp := target - int64(at+width)
		switch width {
		case 1:
			buf[at] = byte(disp)
		case 2:
			binary.LittleEndian.PutUint16(buf[at:at+2], uint16(disp))
		case 4:
			binary.LittleEndian.PutUint32(buf[at:at+4], uint32(disp))
		case 8:
			binary.LittleEndian.PutUint64(buf[at:at+8], uint64(disp))
		}
		pos = at + len(marker)
	}
}

// PatchRelU8 is the 8-bit relative-displacement patch (see patchRel).
func PatchRelU8(buf []byte, marker uint8, target int64) {
	patchRel(buf, []byte{marker}, target, 1)
}

// PatchRelU16 is the 16-bit relative-displacement patch.
func PatchRelU16(buf []byte, marker uint16, target int64) {
	var m [2]byte
	binary.LittleEndian.PutUint16(m[:], marker)
	patchRel(buf, m[:], target, 2)
}

// PatchRelU32 is the 32-bit relative-displacement patch.
func PatchRelU32(buf []byte, marker uint32, target int64) {
	var m [4]byte
	binary.LittleEndian.PutUint32(m[:], marker)
	patchRel(buf, m[:], target, 4)
}

// PatchRelU64 is the 64-bit relative-displacement patch.
func PatchRelU64(buf []byte, marker uint64, target int64) {
	var m [8]byte
	binary.LittleEndian.PutUint64(m[:], marker)
	patchRel(buf, m[:], target, 8)
}

// Patch is the Buffer-bound form of Patch, operating on the buffer's own
// bytes.
func (b *Buffer) Patch(marker, replacement []byte) { Patch(b.data, marker, replacement) }

// PatchU8 is the Buffer-bound form of PatchU8.
func (b *Buffer) PatchU8(marker, replacement uint8) { PatchU8(b.data, marker, replacement) }

// PatchU16 is the Buffer-bound form of PatchU16.
func (b *Buffer) PatchU16(marker, replacement uint16) { PatchU16(b.data, marker, replacement) }

// PatchU32 is the Buffer-bound form of PatchU32.
func (b *Buffer) PatchU32(marker, replacement uint32) { PatchU32(b.data, marker, replacement) }

// PatchU64 is the Buffer-bound form of PatchU64.
func (b *Buffer) PatchU64(marker, replacement uint64) { PatchU64(b.data, marker, replacement) }

// PatchRelU8 is the Buffer-bound form of PatchRelU8.
func (b *Buffer) PatchRelU8(marker uint8, target int64) { PatchRelU8(b.data, marker, target) }

// PatchRelU16 is the Buffer-bound form of PatchRelU16.
func (b *Buffer) PatchRelU16(marker uint16, target int64) { PatchRelU16(b.data, marker, target) }

// PatchRelU32 is the Buffer-bound form of PatchRelU32.
func (b *Buffer) PatchRelU32(marker uint32, target int64) { PatchRelU32(b.data, marker, target) }

// PatchRelU64 is the Buffer-bound form of PatchRelU64.
func (b *Buffer) PatchRelU64(marker uint64, target int64) { PatchRelU64(b.data, marker, target) }
