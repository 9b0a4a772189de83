// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// Writer is the streaming form of Compress: bytes written to it are cut into
// quanta and written to the underlying writer as each quantum fills. Close
// flushes the final short quantum; it does not close the underlying writer.
type Writer struct {
	w       io.Writer
	enc     *quantumEncoder
	buf     []byte // raw bytes of the quantum being filled
	history []byte // decoded bytes preceding buf that the next quantum may reference
	out     []byte
	written int64
	closed  bool
	err     error
}

// NewWriter returns a Writer encoding with opts (nil means DefaultCompressOptions()).
func NewWriter(w io.Writer, opts *CompressOptions) (*Writer, error) {
	if w == nil {
		return nil, ErrNilSource
	}

	enc, err := newQuantumEncoder(opts)
	if err != nil {
		return nil, err
	}

	return &Writer{
		w:       w,
		enc:     enc,
		buf:     make([]byte, 0, enc.quantumSize),
		history: make([]byte, 0, enc.codec.history()),
	}, nil
}

// Written returns the number of uncompressed bytes accepted so far; it is the
// size a Reader must be given for the resulting stream.
func (w *Writer) Written() int64 {
	return w.written
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write to closed block writer")
	}
	if w.err != nil {
		return 0, w.err
	}
	if w.written+int64(len(p)) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, w.written+int64(len(p)))
	}

	n := 0
	for n < len(p) {
		c := copy(w.buf[len(w.buf):cap(w.buf)], p[n:])
		w.buf = w.buf[:len(w.buf)+c]
		n += c
		w.written += int64(c)

		if len(w.buf) == cap(w.buf) {
			if err := w.flushQuantum(); err != nil {
				return n, err
			}
		}
	}

	return n, nil
}

// flushQuantum encodes and writes the buffered quantum.
func (w *Writer) flushQuantum() error {
	if len(w.buf) == 0 {
		return nil
	}

	out, err := w.enc.appendQuantum(w.out[:0], w.history, w.buf)
	if err != nil {
		w.err = err
		return err
	}
	w.out = out

	if _, err := w.w.Write(out); err != nil {
		w.err = err
		return err
	}

	w.advanceHistory()
	w.buf = w.buf[:0]
	return nil
}

// advanceHistory keeps the last codec-history bytes of history+buf.
func (w *Writer) advanceHistory() {
	limit := cap(w.history)
	if limit == 0 {
		return
	}

	if len(w.buf) >= limit {
		w.history = append(w.history[:0], w.buf[len(w.buf)-limit:]...)
		return
	}

	if keep := limit - len(w.buf); len(w.history) > keep {
		w.history = append(w.history[:0], w.history[len(w.history)-keep:]...)
	}
	w.history = append(w.history, w.buf...)
}

// Close flushes the final quantum.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true

	if w.err != nil {
		return w.err
	}
	return w.flushQuantum()
}
