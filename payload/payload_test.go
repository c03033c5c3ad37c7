package payload

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPush_Concatenation(t *testing.T) {
	b := New()
	b.Push([]byte{1, 2, 3})
	b.Push([]byte{4, 5})
	b.PushString("XY")

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 'X', 'Y'}, b.Bytes())
	assert.Equal(t, 7, b.Len())
}

func TestPush_ManySmallAppendsGrowCorrectly(t *testing.T) {
	b := New()
	var want []byte
	for i := 0; i < 1000; i++ {
		chunk := []byte{byte(i), byte(i >> 8)}
		b.Push(chunk)
		want = append(want, chunk...)
	}
	assert.Equal(t, want, b.Bytes())
}

func TestFillTo_Monotonicity(t *testing.T) {
	b := New()
	b.Push([]byte{1, 2, 3})

	b.FillTo(1, nil) // smaller than current size: no-op
	assert.Equal(t, 3, b.Len())

	b.FillTo(10, nil)
	assert.Equal(t, 10, b.Len())
}

func TestFillTo_ZeroFill(t *testing.T) {
	b := New()
	b.FillTo(16, nil)
	require.Equal(t, 16, b.Len())
	for i, v := range b.Bytes() {
		assert.Equalf(t, byte(0), v, "byte %d should be zero", i)
	}
}

func TestFillTo_SingleByteMemset(t *testing.T) {
	b := New()
	b.FillTo(16, nil)
	b.FillTo(32, []byte{0x41})
	for i := 16; i < 32; i++ {
		assert.Equal(t, byte(0x41), b.Bytes()[i])
	}
}

func TestFillTo_PatternTiledAndTruncated(t *testing.T) {
	b := New()
	b.FillTo(32, []byte{0x41})
	b.FillTo(40, []byte("ABC"))
	assert.Equal(t, []byte("ABCABCAB"), b.Bytes()[32:40])
}

func TestFillTo_LargeExpansion(t *testing.T) {
	b := New()
	b.FillTo(10000, []byte("X"))
	require.Equal(t, 10000, b.Len())
	assert.GreaterOrEqual(t, cap(b.Bytes()), 10000)
	assert.Equal(t, byte('X'), b.Bytes()[9999])
}

func TestAtHelpers(t *testing.T) {
	b := New()
	b.AtString(0x10, "MARK")
	b.AtU64(0x20, 0x1337)

	require.Equal(t, 0x20+8, b.Len())
	assert.Equal(t, []byte("MARK"), b.Bytes()[0x10:0x14])
	assert.Equal(t, uint64(0x1337), binary.LittleEndian.Uint64(b.Bytes()[0x20:0x28]))
	assert.Equal(t, byte(0), b.Bytes()[5], "gap should be zero-filled")
}

func TestPack_SparseDesignatedInitializers(t *testing.T) {
	// S6: four u64 slots, only 0 and 3 set.
	b := New()
	b.AtU64(0, 0x1111)
	b.AtU64(3*8, 0x3333)

	require.Equal(t, 4*8, b.Len())
	words := b.Bytes()
	assert.Equal(t, uint64(0x1111), binary.LittleEndian.Uint64(words[0:8]))
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(words[8:16]))
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(words[16:24]))
	assert.Equal(t, uint64(0x3333), binary.LittleEndian.Uint64(words[24:32]))
}

func TestPatch_Basic(t *testing.T) {
	buf := []byte("Hello MARKER World")
	Patch(buf, []byte("MARKER"), []byte("AXIUM!"))
	assert.Equal(t, "Hello AXIUM! World", string(buf))
}

func TestPatch_FixedPointIsNoOp(t *testing.T) {
	buf := []byte("Hello MARKER World")
	want := append([]byte(nil), buf...)
	Patch(buf, []byte("MARKER"), []byte("MARKER"))
	assert.Equal(t, want, buf)
}

func TestPatch_TruncatesLongerReplacement(t *testing.T) {
	buf := []byte("AAAA")
	Patch(buf, []byte("AA"), []byte("XYZ"))
	assert.Equal(t, "XYXY", string(buf))
}

func TestPatch_ZeroPadsShorterReplacement(t *testing.T) {
	buf := []byte("MARKERMARKER")
	Patch(buf, []byte("MARKER"), []byte("AB"))
	assert.Equal(t, []byte{'A', 'B', 0, 0, 0, 0, 'A', 'B', 0, 0, 0, 0}, buf)
}

func TestPatch_NonOverlappingAdvance(t *testing.T) {
	// "AAAA" with marker "AA": occurrences at 0 and 2, not 0,1,2.
	buf := []byte("AAAA")
	Patch(buf, []byte("AA"), []byte("BB"))
	assert.Equal(t, "BBBB", string(buf))
}

func TestPatch_NoopOnZeroMarkerOrShortBuffer(t *testing.T) {
	buf := []byte("hi")
	want := append([]byte(nil), buf...)
	Patch(buf, nil, []byte("x"))
	assert.Equal(t, want, buf)

	Patch(buf, []byte("toolong"), []byte("x"))
	assert.Equal(t, want, buf)
}

func TestTypedPatch_U64Placeholder(t *testing.T) {
	// S5
	b := New()
	var first, second [8]byte
	binary.LittleEndian.PutUint64(first[:], 0xCAFEBABE00000001)
	binary.LittleEndian.PutUint64(second[:], 0xCAFEBABE00000002)
	b.Push(first[:])
	b.Push(second[:])

	b.PatchU64(0xCAFEBABE00000001, 0xDEADBEEF)

	assert.Equal(t, uint64(0xDEADBEEF), binary.LittleEndian.Uint64(b.Bytes()[0:8]))
	assert.Equal(t, uint64(0xCAFEBABE00000002), binary.LittleEndian.Uint64(b.Bytes()[8:16]))
}

func TestPatchRel_AllWidths(t *testing.T) {
	t.Run("rel8", func(t *testing.T) {
		b := New()
		b.AtU8(0, 0xAA)
		b.PatchRelU8(0xAA, 11) // target 11, cur 0+1=1, disp 10
		assert.Equal(t, uint8(10), b.Bytes()[0])
	})
	t.Run("rel16", func(t *testing.T) {
		b := New()
		b.AtU16(10, 0xBBBB)
		b.PatchRelU16(0xBBBB, 32) // target 32, cur 10+2=12, disp 20
		assert.Equal(t, uint16(20), binary.LittleEndian.Uint16(b.Bytes()[10:12]))
	})
	t.Run("rel32", func(t *testing.T) {
		b := New()
		b.AtU32(20, 0xCCCCCCCC)
		b.PatchRelU32(0xCCCCCCCC, 54) // target 54, cur 20+4=24, disp 30
		assert.Equal(t, uint32(30), binary.LittleEndian.Uint32(b.Bytes()[20:24]))
	})
	t.Run("rel64", func(t *testing.T) {
		b := New()
		b.AtU64(40, 0xDDDDDDDD)
		b.PatchRelU64(0xDDDDDDDD, 148) // target 148, cur 40+8=48, disp 100
		assert.Equal(t, uint64(100), binary.LittleEndian.Uint64(b.Bytes()[40:48]))
	})
}
