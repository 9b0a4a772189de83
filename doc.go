// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

/*
Package blockstream decompresses block-compressed streams incrementally and
exposes them as an io.Reader, so container parsers can read decoded data
without holding the whole payload in memory.

A stream is a sequence of quanta. Each quantum decodes to at most one block
and may reference a bounded window of previously decoded bytes. Decoding is
done by an Engine: the built-in engine handles LZO1X, LZ4, zstd and S2 quanta,
and other engines (for example a binding to a native block decompressor) plug
in through the same interface.

# Decompress

The declared uncompressed size is required and comes from the container:

	r, err := blockstream.NewReader(src, size, &blockstream.ReaderOptions{
		Compressor: blockstream.CompressorLZ4,
	})
	if err != nil {
		return err // errors.Is(err, blockstream.ErrEngineUnavailable) when the engine refuses
	}
	defer r.Close()

	_, err = io.Copy(dst, r)

Reads of any size are fine: one decoded quantum serves many small reads, and
a large read spans as many quanta as it needs. A failed quantum is fatal and
every later Read returns the same error, which wraps ErrDecodeFailed.

# Compress

	stream, err := blockstream.Compress(data, &blockstream.CompressOptions{
		Compressor: blockstream.CompressorLZO,
	})

NewWriter is the streaming form. CompressFrame and OpenFrame add a small
header carrying the compressor and both sizes.
*/
package blockstream
