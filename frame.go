// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// FrameMagic opens every frame.
const FrameMagic = "BKS1"

// FrameHeaderLen is the encoded size of a FrameHeader.
const FrameHeaderLen = 16

// FrameHeader describes one compressed region: which compressor produced it,
// how large it decodes to and how many stream bytes follow the header.
//
//	magic[4] | u8 compressor | reserved[3] | u32 uncompressed | u32 compressed
type FrameHeader struct {
	Compressor       Compressor
	UncompressedSize uint32
	CompressedSize   uint32
}

// AppendTo appends the encoded header to dst.
func (h FrameHeader) AppendTo(dst []byte) []byte {
	dst = append(dst, FrameMagic...)
	dst = append(dst, byte(h.Compressor), 0, 0, 0)
	dst = binary.LittleEndian.AppendUint32(dst, h.UncompressedSize)
	return binary.LittleEndian.AppendUint32(dst, h.CompressedSize)
}

// ParseFrameHeader decodes a header from the first FrameHeaderLen bytes of b.
func ParseFrameHeader(b []byte) (FrameHeader, error) {
	if len(b) < FrameHeaderLen {
		return FrameHeader{}, fmt.Errorf("%w: %d bytes", ErrBadFrame, len(b))
	}
	if string(b[:4]) != FrameMagic {
		return FrameHeader{}, fmt.Errorf("%w: magic %q", ErrBadFrame, b[:4])
	}
	if b[5] != 0 || b[6] != 0 || b[7] != 0 {
		return FrameHeader{}, fmt.Errorf("%w: reserved bytes set", ErrBadFrame)
	}

	return FrameHeader{
		Compressor:       Compressor(b[4]),
		UncompressedSize: binary.LittleEndian.Uint32(b[8:12]),
		CompressedSize:   binary.LittleEndian.Uint32(b[12:16]),
	}, nil
}

// ReadFrameHeader reads and decodes a header from r.
func ReadFrameHeader(r io.Reader) (FrameHeader, error) {
	var b [FrameHeaderLen]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return FrameHeader{}, fmt.Errorf("%w: %w", ErrBadFrame, err)
	}
	return ParseFrameHeader(b[:])
}

// CompressFrame compresses src and prefixes the result with a FrameHeader.
func CompressFrame(src []byte, opts *CompressOptions) ([]byte, error) {
	if opts == nil {
		opts = DefaultCompressOptions()
	}

	body, err := Compress(src, opts)
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: compressed %d bytes", ErrInputTooLarge, len(body))
	}

	h := FrameHeader{
		Compressor:       opts.Compressor,
		UncompressedSize: uint32(len(src)),  //nolint:gosec // G115: Compress rejects larger inputs
		CompressedSize:   uint32(len(body)), //nolint:gosec // G115: checked above
	}
	out := make([]byte, 0, FrameHeaderLen+len(body))
	out = h.AppendTo(out)
	return append(out, body...), nil
}

// OpenFrame reads a FrameHeader from r and returns a Reader over the frame's
// body. The reader never consumes bytes past the frame. opts.Compressor is
// taken from the header.
func OpenFrame(r io.Reader, opts *ReaderOptions) (*Reader, FrameHeader, error) {
	h, err := ReadFrameHeader(r)
	if err != nil {
		return nil, h, err
	}

	o := DefaultReaderOptions()
	if opts != nil {
		*o = *opts
	}
	o.Compressor = h.Compressor

	body := io.LimitReader(r, int64(h.CompressedSize))
	dr, err := NewReader(body, h.UncompressedSize, o)
	if err != nil {
		return nil, h, err
	}
	return dr, h, nil
}
