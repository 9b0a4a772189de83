// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// s2Codec stores quanta as S2 blocks. S2 blocks carry no external history, so
// quanta are independent.
type s2Codec struct{}

func (s2Codec) history() int { return 0 }

func (s2Codec) decode(window []byte, pos, _, rawLen int, body []byte, _ bool) error {
	n, err := s2.DecodedLen(body)
	if err != nil {
		return err
	}
	if n != rawLen {
		return fmt.Errorf("%w: s2 block declares %d bytes, quantum %d", ErrCorruptQuantum, n, rawLen)
	}

	out := window[pos : pos+rawLen]
	res, err := s2.Decode(out, body)
	if err != nil {
		return err
	}
	// Decode writes in place when out is large enough, which the length check guarantees.
	if len(res) > 0 && &res[0] != &out[0] {
		copy(out, res)
	}
	return nil
}

func (s2Codec) encode(dst, _, src []byte, level Level) ([]byte, error) {
	start := len(dst)
	dst = grow(dst, s2.MaxEncodedLen(len(src)))
	body := dst[start:]

	var res []byte
	switch level {
	case LevelBest:
		res = s2.EncodeBetter(body, src)
	default:
		res = s2.Encode(body, src)
	}

	if len(res) >= len(src) {
		return nil, errIncompressible
	}
	// Encode appends into body when it has capacity; MaxEncodedLen guarantees that.
	if len(res) > 0 && &res[0] != &body[0] {
		copy(body, res)
	}
	return dst[:start+len(res)], nil
}
