package shellcraft

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/CuB3y0nd/axium/payload"
)

func TestBuildEscalatePrivileges_PatchesBothMarkers(t *testing.T) {
	var p payload.Buffer
	BuildEscalatePrivileges(&p, 0x1111111111111111, 0x2222222222222222)

	data := p.Bytes()
	var m1, m2 [8]byte
	binary.LittleEndian.PutUint64(m1[:], Marker1)
	binary.LittleEndian.PutUint64(m2[:], Marker2)

	if bytes.Contains(data, m1[:]) {
		t.Fatalf("Marker1 left unpatched in output")
	}
	if bytes.Contains(data, m2[:]) {
		t.Fatalf("Marker2 left unpatched in output")
	}

	var pkc, cc [8]byte
	binary.LittleEndian.PutUint64(pkc[:], 0x1111111111111111)
	binary.LittleEndian.PutUint64(cc[:], 0x2222222222222222)
	if !bytes.Contains(data, pkc[:]) {
		t.Fatalf("patched pkc value missing from output")
	}
	if !bytes.Contains(data, cc[:]) {
		t.Fatalf("patched cc value missing from output")
	}
}

func TestBuildUnsetSeccomp_AppendsPatchedTemplate(t *testing.T) {
	var p payload.Buffer
	BuildUnsetSeccomp(&p, 0x30, 0xfffffffe)

	data := p.Bytes()
	if len(data) != len(UnsetSeccomp) {
		t.Fatalf("Len() = %d, want %d", len(data), len(UnsetSeccomp))
	}

	var m1 [8]byte
	var m2 [4]byte
	binary.LittleEndian.PutUint64(m1[:], Marker1)
	binary.LittleEndian.PutUint32(m2[:], uint32(Marker2&0xffffffff))

	if bytes.Contains(data, m1[:]) {
		t.Fatalf("Marker1 left unpatched in output")
	}
	if bytes.Contains(data, m2[:]) {
		t.Fatalf("Marker2 left unpatched in output")
	}

	var offset [8]byte
	var mask [4]byte
	binary.LittleEndian.PutUint64(offset[:], 0x30)
	binary.LittleEndian.PutUint32(mask[:], 0xfffffffe)

	if !bytes.Contains(data, offset[:]) {
		t.Fatalf("patched taskStructOffset missing from output")
	}
	if !bytes.Contains(data, mask[:]) {
		t.Fatalf("patched clearMask missing from output")
	}
}
