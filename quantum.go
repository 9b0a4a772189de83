// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Quantum layout (little endian):
//
//	u32 compLen | u32 rawLen (bit 31 = stored) | u32 checksum | body[compLen]
const (
	quantumHeaderLen = 12
	quantumStored    = 1 << 31
)

// quantumHeader is the parsed fixed part of one quantum.
type quantumHeader struct {
	compLen  int
	rawLen   int
	stored   bool
	checksum uint32
}

// size is the number of stream bytes the whole quantum occupies.
func (h quantumHeader) size() int {
	return quantumHeaderLen + h.compLen
}

// parseQuantumHeader decodes and validates a header against the block length.
// b must hold at least quantumHeaderLen bytes.
func parseQuantumHeader(b []byte, blockLen int) (quantumHeader, error) {
	raw := binary.LittleEndian.Uint32(b[4:8])
	h := quantumHeader{
		compLen:  int(binary.LittleEndian.Uint32(b[0:4])),
		rawLen:   int(raw &^ quantumStored),
		stored:   raw&quantumStored != 0,
		checksum: binary.LittleEndian.Uint32(b[8:12]),
	}

	switch {
	case h.rawLen == 0 || h.rawLen > blockLen:
		return h, fmt.Errorf("%w: raw length %d outside 1..%d", ErrCorruptQuantum, h.rawLen, blockLen)
	case h.stored && h.compLen != h.rawLen:
		return h, fmt.Errorf("%w: stored quantum of %d bytes carries %d", ErrCorruptQuantum, h.rawLen, h.compLen)
	case !h.stored && (h.compLen <= 0 || h.compLen >= h.rawLen):
		return h, fmt.Errorf("%w: compressed length %d for %d raw bytes", ErrCorruptQuantum, h.compLen, h.rawLen)
	}

	return h, nil
}

// appendQuantumHeader appends the encoded header to dst.
func appendQuantumHeader(dst []byte, h quantumHeader) []byte {
	raw := uint32(h.rawLen) //nolint:gosec // G115: raw length is bounded by the block length
	if h.stored {
		raw |= quantumStored
	}

	dst = binary.LittleEndian.AppendUint32(dst, uint32(h.compLen)) //nolint:gosec // G115: bounded by raw length
	dst = binary.LittleEndian.AppendUint32(dst, raw)
	return binary.LittleEndian.AppendUint32(dst, h.checksum)
}

// quantumChecksum is the low half of the XXH64 digest of the decoded bytes.
func quantumChecksum(raw []byte) uint32 {
	return uint32(xxhash.Sum64(raw)) //nolint:gosec // G115: truncation is the checksum definition
}
