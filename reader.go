// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
)

// maxConsecutiveEmptyReads bounds source reads that return (0, nil), as bufio does.
const maxConsecutiveEmptyReads = 100

// Reader decompresses a block stream incrementally.
//
// Compressed bytes are staged in a buffer until the engine can decode a whole
// quantum; decoded bytes land in a sliding window that keeps the dictionary
// later quanta may reference. Read hands out window bytes and decodes more on
// demand, so a quantum can serve many small reads.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src        io.Reader
	session    Session
	cleanup    runtime.Cleanup
	limits     Limits
	policy     Policy
	compressor Compressor
	logger     *slog.Logger

	uncompressedSize uint32
	produced         int64 // bytes decoded by the engine so far

	window    []byte
	windowPos int // end of decoded data in window
	pending   int // decoded bytes before windowPos not delivered yet

	staging  []byte
	stagingR int // first unconsumed compressed byte
	stagingW int // end of compressed bytes read from src

	srcEOF  bool
	starved bool // the engine asked for more input than staged
	done    bool
	closed  bool
	err     error
}

// NewReader creates a decode session for a stream of uncompressedSize bytes
// read from r. If the engine refuses the session the error wraps
// ErrEngineUnavailable and nothing needs to be released. The returned Reader
// must be closed to release the session.
func NewReader(r io.Reader, uncompressedSize uint32, opts *ReaderOptions) (*Reader, error) {
	if r == nil {
		return nil, ErrNilSource
	}
	if opts == nil {
		opts = DefaultReaderOptions()
	}

	var engine Engine = DefaultEngine()
	if opts.Engine != nil {
		engine = opts.Engine
	}
	logger := loggerOr(opts.Logger)

	limits := engine.Limits()
	windowSize := opts.WindowSize
	if windowSize == 0 {
		windowSize = max(DefaultWindowSize, limits.DictionarySize+limits.BlockLen)
	}
	if err := limits.Validate(windowSize); err != nil {
		return nil, err
	}

	stagingSize := opts.StagingSize
	if stagingSize == 0 {
		stagingSize = 2 * limits.BlockLen
	}
	if stagingSize < 1 {
		return nil, fmt.Errorf("%w: staging size %d", ErrInvalidLimits, stagingSize)
	}

	session, err := engine.NewSession(opts.Compressor, int64(uncompressedSize), nil)
	if err != nil {
		logger.Debug("engine refused decode session",
			"compressor", opts.Compressor, "size", uncompressedSize, "err", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrEngineUnavailable, opts.Compressor, err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s: no session", ErrEngineUnavailable, opts.Compressor)
	}

	policy := streamPolicy
	policy.CheckCRC = opts.VerifyChecksums

	dr := &Reader{
		src:              r,
		session:          session,
		limits:           limits,
		policy:           policy,
		compressor:       opts.Compressor,
		logger:           logger,
		uncompressedSize: uncompressedSize,
		window:           windowPool.acquire(windowSize),
		staging:          stagingPool.acquire(stagingSize),
	}
	// An abandoned reader still releases its session; Close cancels this.
	dr.cleanup = runtime.AddCleanup(dr, func(s Session) { _ = s.Close() }, session)

	return dr, nil
}

// Size returns the declared uncompressed size of the stream.
func (r *Reader) Size() uint32 {
	return r.uncompressedSize
}

// Read implements io.Reader. It returns io.EOF once the declared size has been
// delivered and the engine reports the end of the stream.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.closed {
		return 0, ErrClosed
	}
	if r.err != nil {
		return 0, r.err
	}

	n := 0
	for n < len(p) {
		if r.pending > 0 {
			n += r.drain(p[n:])
			continue
		}
		if r.done {
			break
		}

		if r.stagingR == r.stagingW || r.starved {
			if err := r.fill(); err != nil {
				return n, err
			}
		}

		if r.stagingR == r.stagingW {
			if !r.srcEOF {
				continue
			}
			if r.produced < int64(r.uncompressedSize) {
				return r.fail(n, fmt.Errorf("%w: %d of %d bytes", ErrTruncated, r.produced, r.uncompressedSize))
			}
			r.done = true
			break
		}

		copied, err := r.decode(p[n:])
		n += copied
		if err != nil {
			return r.fail(n, err)
		}
	}

	if n == 0 && r.done {
		return 0, io.EOF
	}
	return n, nil
}

// drain copies pending window bytes to p.
func (r *Reader) drain(p []byte) int {
	start := r.windowPos - r.pending
	c := copy(p, r.window[start:r.windowPos])
	r.pending -= c
	return c
}

// fill reads more compressed bytes into the free tail of the staging buffer.
func (r *Reader) fill() error {
	if r.stagingR == r.stagingW {
		r.stagingR, r.stagingW = 0, 0
	}
	r.starved = false

	if r.srcEOF || r.stagingW == len(r.staging) {
		return nil
	}

	for range maxConsecutiveEmptyReads {
		m, err := r.src.Read(r.staging[r.stagingW:])
		if m < 0 || m > len(r.staging)-r.stagingW {
			return fmt.Errorf("source returned invalid count %d", m)
		}
		r.stagingW += m

		if errors.Is(err, io.EOF) {
			r.srcEOF = true
			return nil
		}
		if err != nil {
			return err
		}
		if m > 0 {
			return nil
		}
	}

	return io.ErrNoProgress
}

// decode runs one engine call over the staged bytes and copies what it
// produced to p.
func (r *Reader) decode(p []byte) (int, error) {
	if err := r.compact(); err != nil {
		return 0, err
	}
	if len(r.window)-r.windowPos < r.limits.BlockLen {
		return 0, fmt.Errorf("%w: %d bytes free at %d, block needs %d",
			ErrWindowInvariant, len(r.window)-r.windowPos, r.windowPos, r.limits.BlockLen)
	}

	src := r.staging[r.stagingR:r.stagingW]
	res, err := r.session.DecodeSome(DecodeRequest{
		Window:  r.window,
		Pos:     r.windowPos,
		RawSize: int64(r.uncompressedSize),
		Src:     src,
		Policy:  r.policy,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}

	switch {
	case res.Consumed < 0 || res.Consumed > len(src),
		res.Decoded < 0 || res.Decoded > len(r.window)-r.windowPos,
		r.produced+int64(res.Decoded) > int64(r.uncompressedSize):
		return 0, fmt.Errorf("%w: decoded %d consumed %d of %d staged at output offset %d",
			ErrEngineContract, res.Decoded, res.Consumed, len(src), r.produced)
	}

	r.stagingR += res.Consumed

	copied := 0
	switch {
	case res.Decoded > 0:
		copied = copy(p, r.window[r.windowPos:r.windowPos+res.Decoded])
		r.windowPos += res.Decoded
		r.pending = res.Decoded - copied
		r.produced += int64(res.Decoded)

	case res.QuantumCompLen == 0:
		r.done = true
		return 0, nil

	default:
		if res.Consumed == 0 {
			switch {
			case r.srcEOF:
				return 0, fmt.Errorf("%w: quantum needs %d bytes, %d staged",
					ErrTruncated, res.QuantumCompLen, len(src))
			case r.stagingR == 0 && r.stagingW == len(r.staging):
				return 0, fmt.Errorf("%w: quantum needs %d bytes, staging holds %d",
					ErrQuantumTooLarge, res.QuantumCompLen, len(r.staging))
			}
		}
		r.stagingR, r.stagingW = compactStaging(r.staging, r.stagingR, r.stagingW)
		r.starved = true
	}

	// Undelivered bytes outside the dictionary postpone compaction to the
	// next decode, when nothing is pending.
	if r.pending <= r.limits.DictionarySize {
		if err := r.compact(); err != nil {
			return copied, err
		}
	}

	return copied, nil
}

// compact slides the window once another block would not fit behind windowPos.
func (r *Reader) compact() error {
	if r.windowPos+r.limits.BlockLen <= len(r.window) {
		return nil
	}

	pos, err := compactWindow(r.window, r.windowPos, r.pending, r.limits.DictionarySize)
	if err != nil {
		return err
	}
	r.logger.Debug("compacted decode window",
		"from", r.windowPos, "to", pos, "pending", r.pending, "produced", r.produced)
	r.windowPos = pos
	return nil
}

// fail makes err sticky: every later Read returns it.
func (r *Reader) fail(n int, err error) (int, error) {
	r.err = err
	r.logger.Debug("block stream failed",
		"compressor", r.compressor, "produced", r.produced, "delivered", r.produced-int64(r.pending), "err", err)
	return n, err
}

// Close releases the decode session and the reader's buffers. It is safe to
// call more than once; only the first call reaches the engine.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	r.cleanup.Stop()
	err := r.session.Close()
	r.session = nil

	windowPool.release(r.window)
	stagingPool.release(r.staging)
	r.window, r.staging = nil, nil

	return err
}
