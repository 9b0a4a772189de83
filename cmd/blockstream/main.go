// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

// Command blockstream compresses files into block-stream frames and
// decompresses them back.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/woozymasta/blockstream"
)

func main() {
	mode := flag.String("mode", "", "compress, decompress or info (required)")
	in := flag.String("in", "", "input file (required)")
	out := flag.String("out", "", "output file (compress and decompress)")
	codec := flag.String("codec", "lzo", "compressor: lzo, lz4, zstd or s2")
	chunk := flag.Int("chunk", 0, "decoded quantum size in bytes, at most the default block length (0 = default)")
	best := flag.Bool("best", false, "favour ratio over speed")
	verify := flag.Bool("verify", false, "check per-quantum checksums while decompressing")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	blockstream.SetLogger(logger)

	if *in == "" || (*mode != "info" && *out == "") {
		fmt.Fprintln(os.Stderr, "Error: -in is required, and -out for compress and decompress")
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch *mode {
	case "compress":
		err = compress(logger, *in, *out, *codec, *chunk, *best)
	case "decompress":
		err = decompress(logger, *in, *out, *verify)
	case "info":
		err = info(os.Stdout, *in)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", *mode)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", *mode, err)
		os.Exit(1)
	}
}

func compress(logger *slog.Logger, in, out, codec string, chunk int, best bool) error {
	c, err := blockstream.ParseCompressor(codec)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	opts := &blockstream.CompressOptions{Compressor: c, QuantumSize: chunk}
	if best {
		opts.Level = blockstream.LevelBest
	}
	frame, err := blockstream.CompressFrame(data, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, frame, 0o644); err != nil { //nolint:gosec // G306: output is a regular data file
		return err
	}

	logger.Info("compressed", "codec", c, "in", len(data), "out", len(frame))
	return nil
}

func decompress(logger *slog.Logger, in, out string, verify bool) (err error) {
	src, err := os.Open(in) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	r, h, err := blockstream.OpenFrame(src, &blockstream.ReaderOptions{VerifyChecksums: verify, Logger: logger})
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, r.Close()) }()

	dst, err := os.Create(out) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, dst.Close()) }()

	n, err := io.Copy(dst, r)
	if err != nil {
		return err
	}

	logger.Info("decompressed", "codec", h.Compressor, "in", h.CompressedSize, "out", n)
	return nil
}

func info(w io.Writer, in string) error {
	f, err := os.Open(in) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	h, err := blockstream.ReadFrameHeader(f)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "compressor:   %s\n", h.Compressor)
	fmt.Fprintf(w, "uncompressed: %d\n", h.UncompressedSize)
	fmt.Fprintf(w, "compressed:   %d\n", h.CompressedSize)
	if h.UncompressedSize > 0 {
		fmt.Fprintf(w, "ratio:        %.3f\n", float64(h.CompressedSize)/float64(h.UncompressedSize))
	}
	return nil
}
