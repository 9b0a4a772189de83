// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"encoding/binary"
	"math/bits"
	"sync"
)

// LZO1X-999 parser used for LevelBest. It walks 3-byte hash chains over a ring
// holding the reachable history plus the lookahead.
const (
	chainHashSize  = 0x4000
	chainLookahead = 0x800
	chainRingSize  = lzoHistory + chainLookahead
	chainGuardSize = chainRingSize + chainLookahead // ring plus a mirrored prefix
	chainBestSize  = maxLenM3 + 1
	chainNil       = 0xffff

	// chainSearchDepth caps the candidates probed per position.
	chainSearchDepth = 112
)

// chainTable indexes ring positions by their 3-byte key.
type chainTable struct {
	head    [chainHashSize]uint16
	size    [chainHashSize]uint16 // live nodes per key
	next    [chainRingSize]uint16
	slotKey [chainRingSize]uint16 // key each ring slot was inserted under
	bestLen [chainRingSize]uint16 // longest match found from each slot
}

// chainMatcher is the reusable state of one LevelBest compression run.
type chainMatcher struct {
	chains chainTable
	pairs  [1 << 16]uint16 // last slot+1 per 2-byte key
	ring   [chainGuardSize]byte
}

var chainMatcherPool = sync.Pool{
	New: func() any { return &chainMatcher{} },
}

// chainCursor tracks where the parser is in the input and in the ring.
type chainCursor struct {
	in    []byte
	inPos int // next input byte to enter the ring

	lookahead int // valid bytes from scan
	scan      int // ring slot being parsed
	fill      int // ring slot the next input byte lands in
	priming   int // insertions left before slots start being evicted

	pos   int // input position of scan
	avail int // positions left to parse, 0 when done
}

// appendLZOBest compresses src as one LZO1X-999 body appended to out. Like
// appendLZO, matches may reach into the last lzoHistory bytes of history.
func appendLZOBest(out, history, src []byte) []byte {
	if len(history) > lzoHistory {
		history = history[len(history)-lzoHistory:]
	}

	in := make([]byte, 0, len(history)+len(src))
	in = append(in, history...)
	in = append(in, src...)

	m := chainMatcherPool.Get().(*chainMatcher)
	defer chainMatcherPool.Put(m)

	c := chainCursor{in: in}
	m.reset(&c)

	var (
		bodyStart    = len(out)
		bestOff      [chainBestSize]int
		literalLen   int
		literalStart = len(history)
		off, length  int
	)

	// History is indexed as if a match had just covered it, then parsing
	// starts at the first byte of src.
	if len(history) > 0 {
		off, length = m.advance(&c, len(history)+1, &bestOff, true)
	} else {
		off, length = m.advance(&c, 0, &bestOff, false)
	}

	for c.avail > 0 {
		if literalLen == 0 {
			literalStart = c.pos
		}
		first := len(out) == bodyStart

		// Drop matches no opcode can express in the current state. A body
		// always opens with a literal run.
		switch {
		case length < 2,
			length == 2 && (off > maxOffsetM1 || literalLen == 0 || literalLen >= 4 || first),
			first && literalLen == 0:
			length = 0
		case length == minLenM2 && off > maxOffsetMX && literalLen >= 4:
			length = 0
		}

		if length == 0 {
			literalLen++
			off, length = m.advance(&c, 0, &bestOff, false)
			continue
		}

		length, off = shortenForOffsetClass(bestOff[:], length, off)

		out = appendLiteralRun(out, in[literalStart:literalStart+literalLen], first)
		out = appendBestMatch(out, length, off, literalLen)

		literalLen = 0
		off, length = m.advance(&c, length, &bestOff, true)
	}

	out = appendLiteralRun(out, in[literalStart:literalStart+literalLen], len(out) == bodyStart)
	return append(out, lzoTerminator[:]...)
}

// reset loads the first lookahead into the ring.
func (m *chainMatcher) reset(c *chainCursor) {
	clear(m.chains.size[:])
	clear(m.pairs[:])

	c.priming = lzoHistory
	c.lookahead = min(len(c.in), chainLookahead)
	c.scan = 0
	c.fill = c.lookahead
	copy(m.ring[:c.lookahead], c.in[:c.lookahead])
	c.inPos = c.lookahead

	// Keys read three bytes even when the input is shorter.
	if c.lookahead < 3 {
		clear(m.ring[c.lookahead:3])
	}
}

// advance moves past the previous token and returns the best match at the new
// position. skip indexes the prevLen-1 bytes a match covered without searching
// from them.
func (m *chainMatcher) advance(c *chainCursor, prevLen int, bestOff *[chainBestSize]int, skip bool) (int, int) {
	if skip && prevLen > 1 {
		for range prevLen - 1 {
			m.evict(c)
			m.chains.insert(c, &m.ring)
			m.chains.bestLen[c.scan] = chainLookahead + 1
			m.shift(c)
		}
	}

	var (
		matchLen = 1
		matchOff = 0
		matchPos = 0
		bestPos  [chainBestSize]int
		stop     bool
	)

	headNode, count := m.chains.insert(c, &m.ring)
	if headNode == chainNil {
		count = 0
	}

	if matchLen >= c.lookahead {
		stop = c.lookahead == 0
		m.chains.bestLen[c.scan] = chainLookahead + 1
	} else {
		if c.lookahead >= 3 {
			matchPos, matchLen = m.pairCandidate(c, &bestPos)
			matchPos, matchLen = m.walkChain(c, int(headNode), count, matchPos, matchLen, &bestPos)
		}

		if matchLen > 1 {
			matchOff = c.distance(matchPos)
		}

		m.chains.bestLen[c.scan] = uint16(matchLen) //nolint:gosec // G115: bounded by the lookahead
		for i := 2; i < chainBestSize; i++ {
			bestOff[i] = 0
			if bestPos[i] > 0 {
				bestOff[i] = c.distance(bestPos[i] - 1)
			}
		}
	}

	m.evict(c)
	m.pairs[pairKey(&m.ring, c.scan)] = uint16(c.scan + 1) //nolint:gosec // G115: ring slot+1 fits uint16
	m.shift(c)

	if stop {
		c.avail = 0
		matchLen = 0
	} else {
		c.avail = c.lookahead + 1
	}
	c.pos = c.inPos - c.avail

	return matchOff, matchLen
}

// pairCandidate seeds the search with the last slot sharing the 2-byte key.
func (m *chainMatcher) pairCandidate(c *chainCursor, bestPos *[chainBestSize]int) (int, int) {
	slot := int(m.pairs[pairKey(&m.ring, c.scan)])
	if slot == 0 {
		return 0, 1
	}

	if bestPos[2] == 0 {
		bestPos[2] = slot
	}
	return slot - 1, 2
}

// walkChain probes up to count chain nodes from node, newest first, and
// returns the longest match found.
func (m *chainMatcher) walkChain(c *chainCursor, node, count, matchPos, matchLen int, bestPos *[chainBestSize]int) (int, int) {
	scan := c.scan
	limit := scan + c.lookahead
	probe := m.ring[scan+matchLen-1]

	for range count {
		if node < 0 || node >= chainRingSize || matchLen >= c.lookahead {
			break
		}

		if m.ring[node+matchLen-1] == probe &&
			m.ring[node+matchLen] == m.ring[scan+matchLen] &&
			m.ring[node] == m.ring[scan] &&
			m.ring[node+1] == m.ring[scan+1] {
			n := matchPrefix(&m.ring, scan, node, 2, limit)
			if n < chainBestSize && bestPos[n] == 0 {
				bestPos[n] = node + 1
			}

			if n > matchLen {
				matchLen = n
				matchPos = node
				probe = m.ring[scan+matchLen-1]

				// Nothing longer is possible, or this node never led further.
				if n == c.lookahead || n > int(m.chains.bestLen[node]) {
					break
				}
			}
		}

		next := m.chains.next[node]
		if next == chainNil {
			break
		}
		node = int(next)
	}

	return matchPos, matchLen
}

// evict drops the slot about to be overwritten from its key once the ring is full.
func (m *chainMatcher) evict(c *chainCursor) {
	if c.priming > 0 {
		c.priming--
		return
	}
	m.chains.size[m.chains.slotKey[c.fill]]--
}

// shift feeds the next input byte into the ring and moves the scan slot.
func (m *chainMatcher) shift(c *chainCursor) {
	var b byte
	if c.inPos < len(c.in) {
		b = c.in[c.inPos]
		c.inPos++
	} else if c.lookahead > 0 {
		c.lookahead--
	}

	m.ring[c.fill] = b
	if c.fill < chainLookahead {
		m.ring[chainRingSize+c.fill] = b
	}

	c.fill = (c.fill + 1) % chainRingSize
	c.scan = (c.scan + 1) % chainRingSize
}

// distance converts a ring slot to a backward distance from the scan slot.
func (c *chainCursor) distance(slot int) int {
	if c.scan > slot {
		return c.scan - slot
	}
	return chainRingSize - (slot - c.scan)
}

// insert links the scan slot into its chain and returns the previous head and
// how many of its nodes are worth probing.
func (t *chainTable) insert(c *chainCursor, ring *[chainGuardSize]byte) (uint16, int) {
	key := tripleKey(ring, c.scan)

	count := min(int(t.size[key]), chainLookahead, chainSearchDepth)
	head := t.head[key]

	t.next[c.scan] = head
	t.size[key]++
	t.slotKey[c.scan] = uint16(key) //nolint:gosec // G115: key < chainHashSize
	t.head[key] = uint16(c.scan)    //nolint:gosec // G115: ring slot fits uint16
	return head, count
}

// shortenForOffsetClass trades a byte of match length for a nearer offset when
// that moves the match into a cheaper opcode class.
func shortenForOffsetClass(bestOff []int, length, off int) (int, int) {
	if length <= minLenM2 || off <= maxOffsetM2 {
		return length, off
	}

	at := func(n int) int {
		if n < 0 || n >= len(bestOff) {
			return 0
		}
		return bestOff[n]
	}

	switch {
	case length <= maxLenM2+1 && at(length-1) != 0 && at(length-1) <= maxOffsetM2:
		return length - 1, at(length - 1)
	case off > maxOffsetM3 && length >= maxLenM4+1 && length <= maxLenM2+2 &&
		at(length-2) != 0 && at(length) <= maxOffsetM2:
		return length - 2, at(length - 2)
	case off > maxOffsetM3 && length >= maxLenM4+1 && length <= maxLenM3+1 &&
		at(length-1) != 0 && at(length-2) <= maxOffsetM3:
		return length - 1, at(length - 1)
	}
	return length, off
}

// appendBestMatch appends one back-reference. literalLen is the literal run
// emitted just before it, which selects the M1 forms.
func appendBestMatch(out []byte, length, off, literalLen int) []byte {
	switch {
	case length == 2:
		off--
		return append(out, opcodeByte(markerM1|(off&0x3)<<2), opcodeByte(off>>2))

	case length <= maxLenM2 && off <= maxOffsetM2:
		off--
		return append(out, opcodeByte((length-1)<<5|(off&0x7)<<2), opcodeByte(off>>3))

	case length == minLenM2 && off <= maxOffsetMX && literalLen >= 4:
		off -= 1 + maxOffsetM2
		return append(out, opcodeByte(markerM1|(off&0x3)<<2), opcodeByte(off>>2))

	case off <= maxOffsetM3:
		off--
		if length <= maxLenM3 {
			out = append(out, opcodeByte(markerM3|(length-2)))
		} else {
			out = append(out, markerM3)
			out = appendFastMultiple(out, length-maxLenM3)
		}

	default:
		off -= 0x4000
		hi := (off & 0x4000) >> 11
		if length <= maxLenM4 {
			out = append(out, opcodeByte(markerM4|hi|(length-2)))
		} else {
			out = append(out, opcodeByte(markerM4|hi))
			out = appendFastMultiple(out, length-maxLenM4)
		}
	}

	return append(out, opcodeByte((off&0x3f)<<2), opcodeByte(off>>6))
}

// matchPrefix extends a match of n bytes between slots a and b, stopping at limit.
func matchPrefix(ring *[chainGuardSize]byte, a, b, n, limit int) int {
	for a+n+8 <= limit && b+n+8 <= chainGuardSize {
		x := binary.LittleEndian.Uint64(ring[a+n:])
		y := binary.LittleEndian.Uint64(ring[b+n:])
		if x != y {
			return n + bits.TrailingZeros64(x^y)>>3
		}
		n += 8
	}

	for a+n < limit && b+n < chainGuardSize && ring[a+n] == ring[b+n] {
		n++
	}
	return n
}

func tripleKey(ring *[chainGuardSize]byte, slot int) int {
	v := binary.LittleEndian.Uint32(ring[slot:]) & 0x00ffffff
	return int((v * 0x1e35a7bd) >> (32 - 14))
}

func pairKey(ring *[chainGuardSize]byte, slot int) int {
	return int(ring[slot]) | int(ring[slot+1])<<8
}
