// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"fmt"
	"sync"
)

// compactWindow moves the dictionary ending at pos to the front of window and
// returns the new write position. pending bytes just before pos have not been
// delivered yet; they must lie inside the preserved dictionary.
func compactWindow(window []byte, pos, pending, dictionary int) (int, error) {
	if dictionary <= 0 || pos < dictionary || pos > len(window) || pending < 0 || pending > dictionary {
		return pos, fmt.Errorf("%w: compact at %d with %d pending, dictionary %d, window %d",
			ErrWindowInvariant, pos, pending, dictionary, len(window))
	}

	copy(window, window[pos-dictionary:pos])
	return dictionary, nil
}

// compactStaging moves the unconsumed bytes buf[r:w] to the front of buf and
// returns the new cursors.
func compactStaging(buf []byte, r, w int) (int, int) {
	if r == 0 {
		return r, w
	}

	n := copy(buf, buf[r:w])
	return 0, n
}

// bufferPool recycles buffers of one size; other sizes are allocated directly.
type bufferPool struct {
	size int
	pool sync.Pool
}

func newBufferPool(size int) *bufferPool {
	p := &bufferPool{size: size}
	p.pool.New = func() any {
		b := make([]byte, size)
		return &b
	}
	return p
}

// acquire returns a buffer of exactly size bytes. Pooled buffers are not zeroed.
func (p *bufferPool) acquire(size int) []byte {
	if size != p.size {
		return make([]byte, size)
	}

	return *p.pool.Get().(*[]byte)
}

// release returns a buffer obtained from acquire to the pool.
func (p *bufferPool) release(b []byte) {
	if cap(b) != p.size {
		return
	}

	b = b[:p.size]
	p.pool.Put(&b)
}

var (
	windowPool  = newBufferPool(DefaultWindowSize)
	stagingPool = newBufferPool(2 * DefaultBlockLen)
)
