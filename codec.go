// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"errors"
	"fmt"
)

// errIncompressible is returned by a codec encoder when its output would not be
// smaller than the input; the quantum is then stored raw.
var errIncompressible = errors.New("quantum does not compress")

// codec is one quantum body format served by the built-in engine.
type codec interface {
	// history is how many bytes of preceding output a body may reference.
	history() int
	// decode expands body into window[pos:pos+rawLen], reading history from
	// window[pos-hist:pos]. strict rejects bodies with trailing bytes.
	decode(window []byte, pos, hist, rawLen int, body []byte, strict bool) error
	// encode appends the body for src to dst. history is exactly the
	// history the decoder will see for this quantum.
	encode(dst, history, src []byte, level Level) ([]byte, error)
}

var codecs = map[Compressor]codec{
	CompressorLZO:  lzoCodec{},
	CompressorLZ4:  lz4Codec{},
	CompressorZstd: zstdCodec{},
	CompressorS2:   s2Codec{},
}

// maxCodecHistory is the largest history any registered codec needs; engine
// dictionaries must be at least this large.
var maxCodecHistory = func() int {
	n := 0
	for _, c := range codecs {
		n = max(n, c.history())
	}
	return n
}()

func lookupCodec(c Compressor) (codec, error) {
	cd, ok := codecs[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompressor, c)
	}
	return cd, nil
}

// historyFor returns how much of the preceding output quantum bodies of cd see
// after total bytes of the stream have been produced.
func historyFor(cd codec, total int64) int {
	return int(min(total, int64(cd.history())))
}

type lzoCodec struct{}

func (lzoCodec) history() int { return lzoHistory }

func (lzoCodec) decode(window []byte, pos, hist, rawLen int, body []byte, strict bool) error {
	written, consumed, err := decodeLZO(body, window[:pos+rawLen], pos, pos-hist)
	if err != nil {
		return err
	}
	if written != rawLen {
		return fmt.Errorf("%w: lzo body decoded %d of %d bytes", ErrCorruptQuantum, written, rawLen)
	}
	if strict && consumed != len(body) {
		return fmt.Errorf("%w: %d trailing bytes after lzo terminator", ErrCorruptQuantum, len(body)-consumed)
	}
	return nil
}

func (lzoCodec) encode(dst, history, src []byte, level Level) ([]byte, error) {
	if level == LevelBest {
		return appendLZOBest(dst, history, src), nil
	}
	return appendLZO(dst, history, src), nil
}
