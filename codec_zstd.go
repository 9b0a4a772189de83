// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec stores each quantum as one zstd frame without a
// content checksum; integrity is the quantum header's job. Frames are
// self-contained: a raw history dictionary would let small frames reference
// past their own declared window, which decoders reject.
type zstdCodec struct{}

func (zstdCodec) history() int { return 0 }

// zstdDecoder is shared by every session; DecodeAll is safe for concurrent use.
var zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil,
		zstd.WithDecoderLowmem(true),
		zstd.WithDecodeAllCapLimit(true),
	)
})

// zstdEncoders holds one shared encoder per Level.
var zstdEncoders = [...]func() (*zstd.Encoder, error){
	LevelDefault: newZstdEncoder(LevelDefault),
	LevelSpeed:   newZstdEncoder(LevelSpeed),
	LevelBest:    newZstdEncoder(LevelBest),
}

func newZstdEncoder(l Level) func() (*zstd.Encoder, error) {
	return sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil,
			zstd.WithEncoderCRC(false),
			zstd.WithEncoderLevel(zstdLevel(l)),
		)
	})
}

func (zstdCodec) decode(window []byte, pos, _, rawLen int, body []byte, _ bool) error {
	dec, err := zstdDecoder()
	if err != nil {
		return err
	}

	out := window[pos : pos+rawLen]
	res, err := dec.DecodeAll(body, out[:0:rawLen])
	if err != nil {
		return err
	}
	if len(res) != rawLen {
		return fmt.Errorf("%w: zstd frame decoded %d of %d bytes", ErrCorruptQuantum, len(res), rawLen)
	}
	if &res[0] != &out[0] {
		copy(out, res)
	}
	return nil
}

func zstdLevel(l Level) zstd.EncoderLevel {
	switch l {
	case LevelSpeed:
		return zstd.SpeedFastest
	case LevelBest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func (zstdCodec) encode(dst, _, src []byte, level Level) ([]byte, error) {
	if int(level) >= len(zstdEncoders) {
		level = LevelDefault
	}
	enc, err := zstdEncoders[level]()
	if err != nil {
		return nil, err
	}

	start := len(dst)
	dst = enc.EncodeAll(src, dst)
	if len(dst)-start >= len(src) {
		return nil, errIncompressible
	}
	return dst, nil
}
