// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

const (
	// shortMatchBaseOffset is the base distance used by the short-match form
	// selected when the parser is in state 4.
	shortMatchBaseOffset = 0x0800

	// maxZeroExtendedChunks limits zero-extension runs so malformed inputs cannot
	// overflow run-length reconstruction math.
	maxZeroExtendedChunks = int(^uint(0)/255) - 2
)

// decodeLZO expands one LZO1X body from src into dst starting at dst[base].
// Bytes in dst[floor:base] are history from earlier quanta and may be the
// target of back-references. It returns the number of bytes written after base
// and the number of src bytes consumed up to and including the terminator.
func decodeLZO(src, dst []byte, base, floor int) (written, consumed int, err error) {
	if len(src) == 0 {
		return 0, 0, ErrUnexpectedEOF
	}
	if base < floor || base > len(dst) {
		return 0, 0, ErrOutputOverrun
	}

	var (
		inst      = src[0]
		inPos     = 1
		outPos    = base
		state     int
		nextState int
		matchLen  int
		matchDist int
	)

	// First byte can encode an initial literal run directly; otherwise it becomes
	// the first instruction in the main decode loop.
	switch {
	case inst >= 22:
		if err := copyLiteralRun(src, &inPos, dst, &outPos, int(inst)-17); err != nil {
			return 0, 0, err
		}
		state = 4

	case inst >= 18:
		nextState = int(inst - 17)
		if err := copyLiteralRun(src, &inPos, dst, &outPos, nextState); err != nil {
			return 0, 0, err
		}
		state = nextState
	}

	for {
		// `inst` is already loaded for the very first iteration.
		if inPos > 1 || state > 0 {
			if inPos >= len(src) {
				return 0, 0, ErrUnexpectedEOF
			}

			inst = src[inPos]
			inPos++
		}

		switch {
		case inst >= markerM2:
			b, err := readCompressedByte(src, &inPos)
			if err != nil {
				return 0, 0, err
			}

			matchDist = (int(b) << 3) + ((int(inst) >> 2) & 0x7) + 1
			matchLen = (int(inst) >> 5) + 1
			nextState = int(inst & 0x03)

		case inst >= markerM3:
			if matchLen, err = readRunLength(src, &inPos, int(inst&0x1f), 2, 31); err != nil {
				return 0, 0, err
			}

			v16, err := readCompressedLE16(src, &inPos)
			if err != nil {
				return 0, 0, err
			}

			matchDist = (int(v16) >> 2) + 1
			nextState = int(v16 & 0x03)

		case inst >= markerM4:
			if matchLen, err = readRunLength(src, &inPos, int(inst&0x7), 2, 7); err != nil {
				return 0, 0, err
			}

			v16, err := readCompressedLE16(src, &inPos)
			if err != nil {
				return 0, 0, err
			}

			baseDist := ((int(inst) & 0x8) << 11) + (int(v16) >> 2)
			if baseDist == 0 {
				if matchLen != 3 {
					return 0, 0, ErrInputOverrun
				}

				return outPos - base, inPos, nil
			}

			matchDist = baseDist + 0x4000
			nextState = int(v16 & 0x03)

		case state == 0:
			// In state 0 this opcode form encodes a literal-run length directly.
			runLen, err := readRunLength(src, &inPos, int(inst), 3, 15)
			if err != nil {
				return 0, 0, err
			}

			if err := copyLiteralRun(src, &inPos, dst, &outPos, runLen); err != nil {
				return 0, 0, err
			}

			// A literal run must be followed by at least the terminator.
			if inPos >= len(src) {
				return 0, 0, ErrInputOverrun
			}

			state = 4
			continue

		default:
			// In non-zero states this opcode form is a short back-reference and
			// needs one trailing byte to complete distance bits.
			tail, err := readCompressedByte(src, &inPos)
			if err != nil {
				return 0, 0, err
			}

			nextState = int(inst & 0x03)
			if state != 4 {
				matchDist = (int(inst) >> 2) + (int(tail) << 2) + 1
				matchLen = 2
			} else {
				// Special short-match form used after a 4-literal tail.
				matchDist = shortMatchBaseOffset + 1 + (int(inst) >> 2) + (int(tail) << 2)
				matchLen = 3
			}
		}

		if err := copyBackRef(dst, floor, outPos, matchDist, matchLen); err != nil {
			return 0, 0, err
		}

		outPos += matchLen
		if nextState > 0 {
			if err := copyLiteralRun(src, &inPos, dst, &outPos, nextState); err != nil {
				return 0, 0, err
			}
		}

		state = nextState
	}
}

// readRunLength decodes a length field whose short form is held in the opcode.
// A zero short form is followed by zero-extension bytes (255 each) and a tail byte
// added on top of extBias.
func readRunLength(src []byte, inPos *int, short, bias, extBias int) (int, error) {
	if short != 0 {
		return short + bias, nil
	}

	ext, err := readZeroExtendedChunks(src, inPos)
	if err != nil {
		return 0, err
	}

	tail, err := readCompressedByte(src, inPos)
	if err != nil {
		return 0, err
	}

	return bias + ext*255 + extBias + int(tail), nil
}

// readCompressedByte reads one byte from src at *inPos and advances *inPos.
func readCompressedByte(src []byte, inPos *int) (byte, error) {
	if *inPos >= len(src) {
		return 0, ErrInputOverrun
	}

	b := src[*inPos]
	*inPos++

	return b, nil
}

// readCompressedLE16 reads one little-endian uint16 from src at *inPos and advances *inPos by 2.
func readCompressedLE16(src []byte, inPos *int) (uint16, error) {
	if *inPos+2 > len(src) {
		return 0, ErrInputOverrun
	}

	lo := uint16(src[*inPos])
	hi := uint16(src[*inPos+1])
	*inPos += 2

	return lo | hi<<8, nil
}

// readZeroExtendedChunks consumes consecutive zero bytes and returns their count.
func readZeroExtendedChunks(src []byte, inPos *int) (int, error) {
	start := *inPos
	for *inPos < len(src) && src[*inPos] == 0 {
		*inPos++
	}

	count := *inPos - start
	if count > maxZeroExtendedChunks {
		return 0, ErrInputOverrun
	}

	return count, nil
}

// copyLiteralRun copies n bytes from src[*inPos:] to dst[*outPos:] and advances both positions.
func copyLiteralRun(src []byte, inPos *int, dst []byte, outPos *int, n int) error {
	if n == 0 {
		return nil
	}

	if *inPos+n > len(src) {
		return ErrInputOverrun
	}

	if *outPos+n > len(dst) {
		return ErrOutputOverrun
	}

	copy(dst[*outPos:*outPos+n], src[*inPos:*inPos+n])
	*inPos += n
	*outPos += n

	return nil
}
