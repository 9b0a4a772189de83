// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
)

// BuiltinEngine decodes the quantum streams produced by Compress and Writer.
// It serves every compressor except CompressorKraken, which needs an external
// engine behind the Engine interface.
type BuiltinEngine struct {
	limits Limits
	logger *slog.Logger
}

var _ Engine = (*BuiltinEngine)(nil)

// NewEngine returns a built-in engine with the given geometry.
func NewEngine(opts *EngineOptions) (*BuiltinEngine, error) {
	if opts == nil {
		opts = DefaultEngineOptions()
	}

	limits := Limits{BlockLen: opts.BlockLen, DictionarySize: opts.DictionarySize}
	if limits.BlockLen == 0 {
		limits.BlockLen = DefaultBlockLen
	}
	if limits.DictionarySize == 0 {
		limits.DictionarySize = DefaultDictionarySize
	}

	switch {
	case limits.BlockLen < 0 || limits.BlockLen > quantumStored-1:
		return nil, fmt.Errorf("%w: block length %d", ErrInvalidLimits, limits.BlockLen)
	case limits.DictionarySize < maxCodecHistory:
		return nil, fmt.Errorf("%w: dictionary %d smaller than codec history %d",
			ErrInvalidLimits, limits.DictionarySize, maxCodecHistory)
	}

	return &BuiltinEngine{limits: limits, logger: opts.Logger}, nil
}

var defaultEngine = sync.OnceValue(func() *BuiltinEngine {
	e, err := NewEngine(nil)
	if err != nil {
		panic(err)
	}
	return e
})

// DefaultEngine returns the shared built-in engine with default limits.
func DefaultEngine() *BuiltinEngine {
	return defaultEngine()
}

// Limits implements Engine.
func (e *BuiltinEngine) Limits() Limits {
	return e.limits
}

// NewSession implements Engine. sideData is not used by the built-in codecs
// and must be empty.
func (e *BuiltinEngine) NewSession(c Compressor, rawSize int64, sideData []byte) (Session, error) {
	cd, err := lookupCodec(c)
	if err != nil {
		return nil, err
	}
	if rawSize < 0 || rawSize > math.MaxUint32 {
		return nil, fmt.Errorf("%w: declared size %d", ErrInputTooLarge, rawSize)
	}
	if len(sideData) != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrSideDataUnsupported, len(sideData))
	}

	return &builtinSession{
		engine:     e,
		compressor: c,
		codec:      cd,
		rawSize:    rawSize,
	}, nil
}

// builtinSession tracks how much of the declared size has been decoded.
type builtinSession struct {
	engine     *BuiltinEngine
	compressor Compressor
	codec      codec
	rawSize    int64
	decoded    int64
	closed     bool
}

// DecodeSome implements Session: it decodes the quantum at the head of req.Src
// when the whole quantum is present, and otherwise reports how many bytes it needs.
func (s *builtinSession) DecodeSome(req DecodeRequest) (DecodeResult, error) {
	if s.closed {
		return DecodeResult{}, ErrSessionClosed
	}
	if req.Policy.Threading != ThreadPhaseUnthreaded {
		return DecodeResult{}, fmt.Errorf("%w: thread phase %d", ErrUnsupportedPolicy, req.Policy.Threading)
	}
	if req.RawSize != s.rawSize {
		return DecodeResult{}, fmt.Errorf("%w: declared size %d, session bound to %d",
			ErrEngineContract, req.RawSize, s.rawSize)
	}

	if s.decoded == s.rawSize {
		return DecodeResult{}, nil
	}
	if len(req.Src) < quantumHeaderLen {
		return DecodeResult{QuantumCompLen: quantumHeaderLen}, nil
	}

	h, err := parseQuantumHeader(req.Src, s.engine.limits.BlockLen)
	if err != nil {
		return DecodeResult{}, fmt.Errorf("at output offset %d: %w", s.decoded, err)
	}
	if s.decoded+int64(h.rawLen) > s.rawSize {
		return DecodeResult{}, fmt.Errorf("%w: %d + %d > %d", ErrSizeExceeded, s.decoded, h.rawLen, s.rawSize)
	}
	if len(req.Src) < h.size() {
		return DecodeResult{QuantumCompLen: h.size()}, nil
	}
	if req.Pos < 0 || req.Pos > len(req.Window) || len(req.Window)-req.Pos < h.rawLen {
		return DecodeResult{}, fmt.Errorf("%w: window %d at %d cannot take %d bytes",
			ErrOutputOverrun, len(req.Window), req.Pos, h.rawLen)
	}

	out := req.Window[req.Pos : req.Pos+h.rawLen]
	body := req.Src[quantumHeaderLen:h.size()]
	if h.stored {
		copy(out, body)
	} else {
		hist := min(historyFor(s.codec, s.decoded), req.Pos)
		if err := s.codec.decode(req.Window, req.Pos, hist, h.rawLen, body, req.Policy.FuzzSafe); err != nil {
			return DecodeResult{}, fmt.Errorf("%w: %s quantum at output offset %d: %w",
				ErrCorruptQuantum, s.compressor, s.decoded, err)
		}
	}

	if req.Policy.CheckCRC {
		if sum := quantumChecksum(out); sum != h.checksum {
			return DecodeResult{}, fmt.Errorf("%w: at output offset %d: got %08x want %08x",
				ErrChecksumMismatch, s.decoded, sum, h.checksum)
		}
	}

	if req.Policy.Verbosity >= VerbosityLots {
		loggerOr(s.engine.logger).Debug("decoded quantum",
			"compressor", s.compressor,
			"offset", s.decoded,
			"raw", h.rawLen,
			"comp", h.compLen,
			"stored", h.stored)
	}

	s.decoded += int64(h.rawLen)
	return DecodeResult{Decoded: h.rawLen, Consumed: h.size(), QuantumCompLen: h.size()}, nil
}

// Close implements Session.
func (s *builtinSession) Close() error {
	if s.closed {
		return fmt.Errorf("%w: closed twice", ErrSessionClosed)
	}
	s.closed = true
	return nil
}
