// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"errors"
	"fmt"
	"io"
)

// Sentinel errors for stream decoding, the built-in engine and framing.
var (
	// ErrEngineUnavailable is returned by NewReader when the engine refuses to
	// create a decode session (unsupported compressor, bad size, no resources).
	ErrEngineUnavailable = errors.New("decode engine unavailable")
	// ErrDecodeFailed wraps every fatal engine failure reported by Reader.Read.
	// The reader is unusable afterwards and keeps returning the same error.
	ErrDecodeFailed = errors.New("block decode failed")
	// ErrTruncated is returned when the source ends before the declared size was decoded.
	ErrTruncated = fmt.Errorf("truncated block stream: %w", io.ErrUnexpectedEOF)
	// ErrQuantumTooLarge is returned when a single quantum does not fit the staging buffer.
	ErrQuantumTooLarge = errors.New("quantum exceeds staging buffer")
	// ErrWindowInvariant is returned when the decode window would lose undelivered bytes.
	ErrWindowInvariant = errors.New("decode window invariant violated")
	// ErrEngineContract is returned when an engine reports counts outside the buffers it was given.
	ErrEngineContract = errors.New("engine broke decode contract")
	// ErrClosed is returned by Read after Close.
	ErrClosed = errors.New("reader is closed")
	// ErrNilSource is returned by NewReader and NewWriter for a nil reader or writer.
	ErrNilSource = errors.New("source is nil")

	// ErrUnsupportedCompressor is returned when no codec is registered for a compressor.
	ErrUnsupportedCompressor = errors.New("unsupported compressor")
	// ErrUnsupportedPolicy is returned by the built-in engine for threaded decode phases.
	ErrUnsupportedPolicy = errors.New("unsupported decode policy")
	// ErrCorruptQuantum is returned when a quantum header or body is malformed.
	ErrCorruptQuantum = errors.New("corrupt quantum")
	// ErrChecksumMismatch is returned when CRC checking is requested and a quantum does not match.
	ErrChecksumMismatch = errors.New("quantum checksum mismatch")
	// ErrSizeExceeded is returned when a quantum would decode past the declared size.
	ErrSizeExceeded = errors.New("quantum exceeds declared size")
	// ErrSideDataUnsupported is returned by the built-in engine when a session is
	// created with side data; its codecs carry no external tables.
	ErrSideDataUnsupported = errors.New("engine takes no side data")
	// ErrSessionClosed is returned by a built-in session used or closed after Close.
	ErrSessionClosed = errors.New("decode session is closed")
	// ErrInvalidLimits is returned for engine limits the reader cannot honor.
	ErrInvalidLimits = errors.New("invalid engine limits")

	// ErrInputOverrun is returned when the LZO decoder reads past the end of a quantum body.
	ErrInputOverrun = errors.New("input overrun")
	// ErrOutputOverrun is returned when the LZO decoder would write past the quantum end.
	ErrOutputOverrun = errors.New("output overrun")
	// ErrLookBehindUnderrun is returned when a back-reference points before the available history.
	ErrLookBehindUnderrun = errors.New("lookbehind underrun")
	// ErrUnexpectedEOF is returned when an LZO body ends before its terminator.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrBadFrame is returned when a frame header has the wrong magic or sizes.
	ErrBadFrame = errors.New("bad frame header")
	// ErrInputTooLarge is returned when input exceeds the 32-bit declared size range.
	ErrInputTooLarge = errors.New("input exceeds 4 GiB stream limit")
)
