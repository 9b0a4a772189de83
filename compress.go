// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"errors"
	"fmt"
	"math"
)

// Compress encodes src as a quantum stream. opts may be nil (LZO quanta of
// DefaultBlockLen bytes). Decode the result with NewReader, passing len(src) as
// the uncompressed size and the same compressor.
func Compress(src []byte, opts *CompressOptions) ([]byte, error) {
	enc, err := newQuantumEncoder(opts)
	if err != nil {
		return nil, err
	}
	if int64(len(src)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(src))
	}

	out := make([]byte, 0, len(src)/2+quantumHeaderLen)
	for off := 0; off < len(src); off += enc.quantumSize {
		end := min(off+enc.quantumSize, len(src))
		history := src[off-historyFor(enc.codec, int64(off)) : off]

		if out, err = enc.appendQuantum(out, history, src[off:end]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// quantumEncoder turns raw chunks into framed quanta.
type quantumEncoder struct {
	codec       codec
	level       Level
	quantumSize int
	scratch     []byte
}

func newQuantumEncoder(opts *CompressOptions) (*quantumEncoder, error) {
	if opts == nil {
		opts = DefaultCompressOptions()
	}

	cd, err := lookupCodec(opts.Compressor)
	if err != nil {
		return nil, err
	}

	blockLen := opts.BlockLen
	if blockLen == 0 {
		blockLen = DefaultBlockLen
	}
	if blockLen < 0 || blockLen >= quantumStored {
		return nil, fmt.Errorf("%w: block length %d", ErrInvalidLimits, blockLen)
	}

	size := opts.QuantumSize
	if size == 0 {
		size = blockLen
	}
	if size < 0 || size > blockLen {
		return nil, fmt.Errorf("%w: quantum size %d outside 1..%d", ErrInvalidLimits, size, blockLen)
	}

	return &quantumEncoder{codec: cd, level: opts.Level, quantumSize: size}, nil
}

// appendQuantum compresses raw with the given history and appends the quantum
// to dst, storing raw when the codec cannot shrink it.
func (e *quantumEncoder) appendQuantum(dst, history, raw []byte) ([]byte, error) {
	h := quantumHeader{rawLen: len(raw), checksum: quantumChecksum(raw)}

	body, err := e.codec.encode(e.scratch[:0], history, raw, e.level)
	switch {
	case errors.Is(err, errIncompressible):
		h.stored = true
	case err != nil:
		return nil, err
	case len(body) >= len(raw):
		h.stored = true
	}

	if h.stored {
		body = raw
	} else {
		e.scratch = body
	}
	h.compLen = len(body)

	dst = appendQuantumHeader(dst, h)
	return append(dst, body...), nil
}
