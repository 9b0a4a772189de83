// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// lz4History is the LZ4 block format's maximum match distance.
const lz4History = 64 << 10

// lz4Codec stores quanta as raw LZ4 blocks. The encoder produces
// self-contained blocks; the decoder still hands the window history to LZ4 so
// blocks from dictionary-aware encoders decode as well.
type lz4Codec struct{}

func (lz4Codec) history() int { return lz4History }

func (lz4Codec) decode(window []byte, pos, hist, rawLen int, body []byte, _ bool) error {
	n, err := lz4.UncompressBlockWithDict(body, window[pos:pos+rawLen], window[pos-hist:pos])
	if err != nil {
		return err
	}
	if n != rawLen {
		return fmt.Errorf("%w: lz4 block decoded %d of %d bytes", ErrCorruptQuantum, n, rawLen)
	}
	return nil
}

// lz4Level maps our normalized levels to LZ4 levels. Default and speed use the
// fast compressor, best uses the high compression one.
func lz4Level(l Level) lz4.CompressionLevel {
	if l == LevelBest {
		return lz4.Level9
	}
	return lz4.Fast
}

func (lz4Codec) encode(dst, _, src []byte, level Level) ([]byte, error) {
	start := len(dst)
	dst = grow(dst, lz4.CompressBlockBound(len(src)))
	body := dst[start:]

	var (
		n   int
		err error
	)
	if level == LevelBest {
		c := lz4.CompressorHC{Level: lz4Level(level)}
		n, err = c.CompressBlock(src, body)
	} else {
		var c lz4.Compressor
		n, err = c.CompressBlock(src, body)
	}
	if err != nil {
		return nil, err
	}
	// CompressBlock reports incompressible input as zero bytes written.
	if n == 0 || n >= len(src) {
		return nil, errIncompressible
	}
	return dst[:start+n], nil
}

// grow returns dst extended by n bytes of usable length.
func grow(dst []byte, n int) []byte {
	if cap(dst)-len(dst) < n {
		next := make([]byte, len(dst), len(dst)+n)
		copy(next, dst)
		dst = next
	}
	return dst[:len(dst)+n]
}
