// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import (
	"bytes"
	"fmt"
	"testing"
)

func benchmarkInputSets() map[string][]byte {
	return map[string][]byte{
		"small-text-4k":   bytes.Repeat([]byte("block stream benchmark text "), 150),
		"pattern-128k":    bytes.Repeat([]byte("ABCDEF0123456789"), 8192),
		"corpus-1m":       repetitiveCorpus(1 << 20),
		"byte-cycle-256k": bytes.Repeat([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 26214),
	}
}

func BenchmarkCompress(b *testing.B) {
	for inputName, inputData := range benchmarkInputSets() {
		for _, c := range streamCodecs {
			b.Run(fmt.Sprintf("%s/%s", inputName, c), func(b *testing.B) {
				opts := &CompressOptions{Compressor: c}
				b.ReportAllocs()
				b.SetBytes(int64(len(inputData)))

				for b.Loop() {
					if _, err := Compress(inputData, opts); err != nil {
						b.Fatalf("Compress failed: %v", err)
					}
				}
			})
		}
	}
}

func BenchmarkReader(b *testing.B) {
	for inputName, inputData := range benchmarkInputSets() {
		for _, c := range streamCodecs {
			stream, err := Compress(inputData, &CompressOptions{Compressor: c})
			if err != nil {
				b.Fatalf("setup Compress failed for %s %s: %v", inputName, c, err)
			}

			for _, readSize := range []int{512, 64 << 10} {
				b.Run(fmt.Sprintf("%s/%s/read-%d", inputName, c, readSize), func(b *testing.B) {
					opts := &ReaderOptions{Compressor: c}
					src := bytes.NewReader(stream)
					b.ReportAllocs()
					b.SetBytes(int64(len(inputData)))

					for b.Loop() {
						src.Reset(stream)
						r, err := NewReader(src, uint32(len(inputData)), opts) //nolint:gosec // benchmark sizes are small
						if err != nil {
							b.Fatalf("NewReader failed: %v", err)
						}
						if _, err := readInChunks(r, readSize); err != nil {
							b.Fatalf("read failed: %v", err)
						}
						_ = r.Close()
					}
				})
			}
		}
	}
}

func BenchmarkReaderSmallQuanta(b *testing.B) {
	inputData := repetitiveCorpus(4 << 20)
	for _, c := range streamCodecs {
		stream, err := Compress(inputData, &CompressOptions{Compressor: c, QuantumSize: 4 << 10})
		if err != nil {
			b.Fatalf("setup Compress failed for %s: %v", c, err)
		}

		b.Run(c.String(), func(b *testing.B) {
			opts := &ReaderOptions{Compressor: c}
			src := bytes.NewReader(stream)
			b.ReportAllocs()
			b.SetBytes(int64(len(inputData)))

			for b.Loop() {
				src.Reset(stream)
				r, err := NewReader(src, uint32(len(inputData)), opts) //nolint:gosec // benchmark sizes are small
				if err != nil {
					b.Fatalf("NewReader failed: %v", err)
				}
				if _, err := readInChunks(r, 64<<10); err != nil {
					b.Fatalf("read failed: %v", err)
				}
				_ = r.Close()
			}
		})
	}
}
