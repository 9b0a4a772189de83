// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

// minParsedLZO is the shortest input the fast parser handles; shorter quanta
// are emitted as a single literal run.
const minParsedLZO = maxLenM2 + 5 + 2

// appendLZO compresses src as one LZO1X-1 body appended to out. history holds
// the bytes immediately preceding src in the stream; matches may reach into its
// last lzoHistory bytes, which the decoder keeps in its window.
func appendLZO(out, history, src []byte) []byte {
	if len(history) > lzoHistory {
		history = history[len(history)-lzoHistory:]
	}

	in := make([]byte, 0, len(history)+len(src))
	in = append(in, history...)
	in = append(in, src...)

	bodyStart := len(out)
	literalStart := len(history)
	if len(src) >= minParsedLZO {
		out, literalStart = lzoFastParse(out, in, len(history), bodyStart)
	}

	out = appendLiteralRun(out, in[literalStart:], len(out) == bodyStart)
	return append(out, lzoTerminator[:]...)
}

// lzoHash maps the 4 bytes at in[pos:] to a dictionary slot.
func lzoHash(in []byte, pos int) int {
	key := int(in[pos+3])
	key = (key << 6) ^ int(in[pos+2])
	key = (key << 5) ^ int(in[pos+1])
	key = (key << 5) ^ int(in[pos+0])
	return ((0x21 * key) >> 5) & dictMask
}

// lzoFastParse runs the LZO1X-1 parser over in[start:], with in[:start] as
// already-known history. It returns the output and the start of the pending
// literal tail.
func lzoFastParse(out, in []byte, start, bodyStart int) ([]byte, int) {
	inputLen := len(in)
	inputLimit := inputLen - maxLenM2 - 5
	dict := make([]int32, 1<<dictBits)

	for pos := range start {
		dict[lzoHash(in, pos)] = int32(pos + 1) //nolint:gosec // G115: positions are bounded by the block length
	}

	literalStart := start
	inputPos := max(start+1, 4)

	for {
		dictIndex := lzoHash(in, inputPos)
		matched := false

		// Probe two related hash slots to improve hit rate without extra structures.
		for attempt := range 2 {
			matchPos, matchOffset := findFastCandidate(dict, in, inputPos, dictIndex)

			if matchPos >= 0 &&
				in[matchPos] == in[inputPos] &&
				in[matchPos+1] == in[inputPos+1] &&
				in[matchPos+2] == in[inputPos+2] {
				dict[dictIndex] = int32(inputPos + 1) //nolint:gosec // G115: positions are bounded by the block length

				if inputPos != literalStart {
					out = appendLiteralRun(out, in[literalStart:inputPos], len(out) == bodyStart)
					literalStart = inputPos
				}

				out, inputPos = appendFastMatch(out, in, matchPos, matchOffset, inputPos, literalStart)

				// Next literal run, if any, starts after the emitted match.
				literalStart = inputPos
				matched = true
				break
			}

			if attempt == 0 {
				dictIndex = (dictIndex & (dictMask & 0x7ff)) ^ (dictHigh | 0x1f)
			}
		}

		if !matched {
			// Literal step with lazy skip, standard for the LZO1X-1 fast parser.
			dict[dictIndex] = int32(inputPos + 1) //nolint:gosec // G115: positions are bounded by the block length
			inputPos += 1 + (inputPos-literalStart)>>5
		}

		if inputPos >= inputLimit {
			return out, literalStart
		}
	}
}

// appendFastMatch extends the match found at matchPos as far as possible and
// emits it with the shortest opcode class that fits. It returns the output and
// the input position after the match.
func appendFastMatch(out, in []byte, matchPos, matchOffset, inputPos, literalStart int) ([]byte, int) {
	var i int
	inputPos += 3

	// Fast short extension for the first bytes; this is the hot path.
	for i = 3; i < 9; i++ {
		inputPos++

		if in[matchPos+i] != in[inputPos-1] {
			break
		}
	}

	if i < 9 {
		inputPos--
		matchLen := inputPos - literalStart

		switch {
		case matchOffset <= maxOffsetM2:
			matchOffset--
			return append(out,
				opcodeByte(((matchLen-1)<<5)|((matchOffset&7)<<2)),
				opcodeByte(matchOffset>>3),
			), inputPos

		case matchOffset <= maxOffsetM3:
			matchOffset--
			return append(out,
				opcodeByte(markerM3|(matchLen-2)),
				opcodeByte((matchOffset&63)<<2),
				opcodeByte(matchOffset>>6),
			), inputPos

		default:
			matchOffset -= 0x4000
			return append(out,
				opcodeByte(markerM4|((matchOffset&0x4000)>>11)|(matchLen-2)),
				opcodeByte((matchOffset&63)<<2),
				opcodeByte(matchOffset>>6),
			), inputPos
		}
	}

	// Slow path for long matches beyond the initial short extension window.
	m := matchPos + maxLenM2 + 1
	for inputPos < len(in) && in[m] == in[inputPos] {
		m++
		inputPos++
	}

	matchLen := inputPos - literalStart
	if matchOffset <= maxOffsetM3 {
		matchOffset--
		if matchLen <= maxLenM3 {
			out = append(out, opcodeByte(markerM3|(matchLen-2)))
		} else {
			out = append(out, opcodeByte(markerM3))
			out = appendFastMultiple(out, matchLen-maxLenM3)
		}
	} else {
		matchOffset -= 0x4000
		if matchLen <= maxLenM4 {
			out = append(out, opcodeByte(markerM4|((matchOffset&0x4000)>>11)|(matchLen-2)))
		} else {
			out = append(out, opcodeByte(markerM4|((matchOffset&0x4000)>>11)))
			out = appendFastMultiple(out, matchLen-maxLenM4)
		}
	}

	return append(out, opcodeByte((matchOffset&63)<<2), opcodeByte(matchOffset>>6)), inputPos
}

// findFastCandidate returns (matchPos, matchOffset) for the given dict slot, or (-1, 0) if none.
func findFastCandidate(dict []int32, in []byte, inputPos, dictIndex int) (matchPos int, matchOffset int) {
	matchPos = int(dict[dictIndex]) - 1
	if matchPos < 0 {
		return -1, 0
	}

	if inputPos == matchPos || (inputPos-matchPos) > maxOffsetM4 {
		return -1, 0
	}

	matchOffset = inputPos - matchPos
	if matchOffset <= maxOffsetM2 || in[matchPos+3] == in[inputPos+3] {
		return matchPos, matchOffset
	}

	return -1, 0
}

// appendLiteralRun appends a literal run and its header encoding. first marks
// the opening instruction of a body, which has its own short run encoding.
func appendLiteralRun(out []byte, lit []byte, first bool) []byte {
	if len(lit) == 0 {
		return out
	}
	literalCount := len(lit)

	switch {
	case first && literalCount <= 238:
		out = append(out, opcodeByte(17+literalCount))
	case first:
		out = append(out, 0)
		out = appendFastMultiple(out, literalCount-18)
	case literalCount <= 3:
		out[len(out)-2] |= opcodeByte(literalCount)
	case literalCount <= 18:
		out = append(out, opcodeByte(literalCount-3))
	default:
		out = append(out, 0)
		out = appendFastMultiple(out, literalCount-18)
	}

	return append(out, lit...)
}

// appendFastMultiple appends a multiple of 255 to the output.
func appendFastMultiple(out []byte, t int) []byte {
	for t > 255 {
		out = append(out, 0)
		t -= 255
	}

	return append(out, opcodeByte(t))
}
