// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

// LZO1X format constants: match offset and length bounds per opcode class, and
// the hash parameters of the fast parser.

// Match offset bounds (max distance for each match type).
const (
	maxOffsetM1 = 0x0400
	maxOffsetM2 = 0x0800
	maxOffsetM3 = 0x4000
	maxOffsetM4 = 0xbfff

	// maxOffsetMX is the reach of the 3-byte M1 form that follows a literal
	// run of four or more bytes.
	maxOffsetMX = maxOffsetM1 + maxOffsetM2
)

// lzoHistory is the farthest an LZO1X match may reach back, and so the
// history one LZO quantum may reference in earlier quanta.
const lzoHistory = maxOffsetM4

// Match length bounds per type.
const (
	minLenM2 = 3
	maxLenM2 = 8
	maxLenM3 = 33
	maxLenM4 = 9
)

// Instruction byte markers for match types.
const (
	markerM1 = 0
	markerM2 = 64
	markerM3 = 32
	markerM4 = 16
)

// lzoTerminator closes every LZO1X body: an M4 match with distance 0 and length 3.
var lzoTerminator = [3]byte{markerM4 | 1, 0, 0}

// Dictionary hash parameters used by the compressor.
const (
	dictBits = 14                  // number of bits in the dictionary hash
	dictMask = (1 << dictBits) - 1 // mask for the dictionary hash
	dictHigh = (dictMask >> 1) + 1 // high bit for the dictionary hash
)

// opcodeByte packs an opcode fragment to one byte as required by LZO bit layout.
// Callers pass values whose low 8 bits are the serialized representation.
func opcodeByte(v int) byte {
	// #nosec G115 -- LZO opcodes intentionally encode only low 8 bits.
	return byte(v & 0xff)
}
