// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import "fmt"

// Compressor identifies the block compression variant a session decodes.
type Compressor uint8

// Compressor identifiers. The values are stored in frame headers and must not change.
const (
	CompressorInvalid Compressor = iota
	CompressorKraken             // identifier only; served by external engines
	CompressorLZO
	CompressorLZ4
	CompressorZstd
	CompressorS2
)

var compressorNames = [...]string{
	CompressorInvalid: "invalid",
	CompressorKraken:  "kraken",
	CompressorLZO:     "lzo",
	CompressorLZ4:     "lz4",
	CompressorZstd:    "zstd",
	CompressorS2:      "s2",
}

// String returns the lower-case compressor name.
func (c Compressor) String() string {
	if int(c) < len(compressorNames) {
		return compressorNames[c]
	}
	return fmt.Sprintf("compressor(%d)", uint8(c))
}

// ParseCompressor maps a name produced by Compressor.String back to its identifier.
func ParseCompressor(name string) (Compressor, error) {
	for i, n := range compressorNames {
		if i != int(CompressorInvalid) && n == name {
			return Compressor(i), nil
		}
	}
	return CompressorInvalid, fmt.Errorf("%w: %q", ErrUnsupportedCompressor, name)
}

// ThreadPhase selects which part of a threaded decode an engine call performs.
type ThreadPhase uint8

// Thread phases. Streams are always decoded with ThreadPhaseUnthreaded.
const (
	ThreadPhaseUnthreaded ThreadPhase = iota
	ThreadPhaseOne
	ThreadPhaseTwo
)

// Verbosity controls engine-side diagnostics.
type Verbosity uint8

// Verbosity levels.
const (
	VerbosityNone Verbosity = iota
	VerbosityMinimal
	VerbosityLots
)

// Policy carries the per-call flags of DecodeSome.
type Policy struct {
	CheckCRC  bool
	FuzzSafe  bool
	Threading ThreadPhase
	Verbosity Verbosity
}

// streamPolicy is the fixed policy Reader sends: no CRC, no fuzz hardening,
// unthreaded, silent.
var streamPolicy = Policy{
	Threading: ThreadPhaseUnthreaded,
	Verbosity: VerbosityNone,
}

// Limits are the engine-defined sizes the reader's buffers must respect.
type Limits struct {
	// BlockLen is the largest number of bytes one quantum may decode to.
	BlockLen int
	// DictionarySize is the span of decoded history a quantum may reference.
	DictionarySize int
}

// Validate reports whether a window of windowSize bytes can serve these limits.
func (l Limits) Validate(windowSize int) error {
	if l.BlockLen <= 0 || l.DictionarySize <= 0 {
		return fmt.Errorf("%w: block=%d dictionary=%d", ErrInvalidLimits, l.BlockLen, l.DictionarySize)
	}
	if windowSize < l.DictionarySize+l.BlockLen {
		return fmt.Errorf("%w: window %d < dictionary %d + block %d",
			ErrInvalidLimits, windowSize, l.DictionarySize, l.BlockLen)
	}
	return nil
}

// DecodeRequest is one "decode some" call.
//
// The engine writes decoded bytes to Window[Pos:] and may read history from
// Window[:Pos]. Src holds compressed bytes not yet consumed.
type DecodeRequest struct {
	Window  []byte
	Pos     int
	RawSize int64
	Src     []byte
	Policy  Policy
}

// DecodeResult reports the progress of one DecodeSome call.
//
// Decoded == 0 with QuantumCompLen != 0 means the engine needs more input
// (QuantumCompLen is then the number of compressed bytes the current quantum
// needs). Decoded == 0 with QuantumCompLen == 0 means the stream is complete.
type DecodeResult struct {
	Decoded        int
	Consumed       int
	QuantumCompLen int
}

// Engine creates decode sessions. Implementations must be safe for concurrent
// NewSession calls; each Session is used by one goroutine at a time.
type Engine interface {
	Limits() Limits
	// NewSession binds a session to one compressor and declared output size.
	// sideData is optional engine tuning data and may be nil.
	NewSession(c Compressor, rawSize int64, sideData []byte) (Session, error)
}

// Session is an engine-owned decode state for a single stream.
type Session interface {
	// DecodeSome decodes at most one quantum. A non-nil error is fatal for the session.
	DecodeSome(req DecodeRequest) (DecodeResult, error)
	// Close releases the session. It is called exactly once.
	Close() error
}
