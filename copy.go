// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

// copyBackRef copies length bytes from dst[outputPos-dist:] to dst[outputPos:].
// Bytes below floor are not history and may not be referenced. If dist < length
// the regions overlap and the copy runs forward byte by byte so repeated
// patterns expand correctly; the built-in copy would use stale source bytes.
func copyBackRef(dst []byte, floor, outputPos, dist, length int) error {
	mPos := outputPos - dist
	if dist <= 0 || mPos < floor {
		return ErrLookBehindUnderrun
	}

	if outputPos+length > len(dst) {
		return ErrOutputOverrun
	}

	if dist >= length {
		copy(dst[outputPos:outputPos+length], dst[mPos:mPos+length])
		return nil
	}

	for i := range length {
		dst[outputPos+i] = dst[mPos+i]
	}

	return nil
}
