// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import "log/slog"

// Default buffer geometry, matching the limits of the block engines this
// package was modelled after.
const (
	DefaultBlockLen       = 256 << 10 // largest decoded quantum
	DefaultDictionarySize = 2 << 20   // history a quantum may reference
	DefaultWindowSize     = 3 << 20   // decode window: dictionary + headroom for several blocks
)

// ReaderOptions configures NewReader. A nil *ReaderOptions means DefaultReaderOptions().
type ReaderOptions struct {
	// Compressor is the variant the stream was produced with.
	Compressor Compressor
	// Engine creates the decode session; nil uses DefaultEngine().
	Engine Engine
	// WindowSize is the decode window capacity (0 = larger of DefaultWindowSize
	// and dictionary + block). It must hold the dictionary plus one block.
	WindowSize int
	// StagingSize is the compressed staging buffer capacity (0 = twice the block length).
	StagingSize int
	// VerifyChecksums asks the engine to check per-quantum checksums.
	VerifyChecksums bool
	// Logger overrides the package logger for this reader.
	Logger *slog.Logger
}

// DefaultReaderOptions returns options for LZO streams on the default engine.
func DefaultReaderOptions() *ReaderOptions {
	return &ReaderOptions{Compressor: CompressorLZO}
}

// EngineOptions configures NewEngine. A nil *EngineOptions means DefaultEngineOptions().
type EngineOptions struct {
	// BlockLen caps the decoded size of one quantum (0 = DefaultBlockLen).
	BlockLen int
	// DictionarySize is the history span the engine promises to need at most
	// (0 = DefaultDictionarySize). It must cover every codec's history.
	DictionarySize int
	// Logger overrides the package logger for engine diagnostics.
	Logger *slog.Logger
}

// DefaultEngineOptions returns the default engine geometry.
func DefaultEngineOptions() *EngineOptions {
	return &EngineOptions{
		BlockLen:       DefaultBlockLen,
		DictionarySize: DefaultDictionarySize,
	}
}

// Level is a codec-independent compression level.
type Level uint8

// Compression levels, mapped to each codec's own scale.
const (
	LevelDefault Level = iota
	LevelSpeed
	LevelBest
)

// CompressOptions configures Compress and NewWriter. A nil *CompressOptions
// means DefaultCompressOptions().
type CompressOptions struct {
	// Compressor selects the codec (must be supported by the built-in engine).
	Compressor Compressor
	// QuantumSize is the decoded size of each quantum (0 = BlockLen).
	QuantumSize int
	// BlockLen is the block length of the engine that will decode the stream
	// (0 = DefaultBlockLen). QuantumSize may not exceed it.
	BlockLen int
	// Level trades speed for ratio where the codec supports it.
	Level Level
}

// DefaultCompressOptions returns options for LZO quanta of DefaultBlockLen bytes.
func DefaultCompressOptions() *CompressOptions {
	return &CompressOptions{
		Compressor:  CompressorLZO,
		QuantumSize: DefaultBlockLen,
	}
}
