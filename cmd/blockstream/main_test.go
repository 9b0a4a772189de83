package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/blockstream"
)

func testData() []byte {
	var b bytes.Buffer
	for i := range 20000 {
		b.WriteString("line ")
		b.WriteByte(byte('a' + i%26))
		b.WriteString(" of the command line round trip\n")
	}
	return b.Bytes()
}

func TestCommands_RoundTrip(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	data := testData()

	for _, codec := range []string{"lzo", "lz4", "zstd", "s2"} {
		for _, best := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/best=%t", codec, best), func(t *testing.T) {
				dir := t.TempDir()
				in := filepath.Join(dir, "in.bin")
				frame := filepath.Join(dir, "in.bks")
				out := filepath.Join(dir, "out.bin")
				require.NoError(t, os.WriteFile(in, data, 0o600))

				require.NoError(t, compress(logger, in, frame, codec, 16<<10, best))
				require.NoError(t, decompress(logger, frame, out, true))

				got, err := os.ReadFile(out)
				require.NoError(t, err)
				require.Equal(t, data, got)

				var report bytes.Buffer
				require.NoError(t, info(&report, frame))
				assert.Contains(t, report.String(), "compressor:   "+codec)
				assert.Contains(t, report.String(), "uncompressed: "+strconv.Itoa(len(data)))
				assert.Contains(t, report.String(), "ratio:")
			})
		}
	}
}

func TestCompress_RejectsChunkAboveBlockLength(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bin")
	frame := filepath.Join(dir, "in.bks")
	require.NoError(t, os.WriteFile(in, testData(), 0o600))

	err := compress(slog.New(slog.DiscardHandler), in, frame, "lzo", 1<<20, false)
	require.ErrorIs(t, err, blockstream.ErrInvalidLimits)
	_, statErr := os.Stat(frame)
	require.True(t, os.IsNotExist(statErr), "no frame is written on failure")
}

func TestCommands_Errors(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	in := filepath.Join(dir, "in.bin")
	require.NoError(t, os.WriteFile(in, []byte("plain"), 0o600))

	err := compress(logger, in, filepath.Join(dir, "x"), "brotli", 0, false)
	require.ErrorIs(t, err, blockstream.ErrUnsupportedCompressor)

	err = decompress(logger, in, filepath.Join(dir, "out"), false)
	require.ErrorIs(t, err, blockstream.ErrBadFrame)

	var report bytes.Buffer
	err = info(&report, in)
	require.ErrorIs(t, err, blockstream.ErrBadFrame)
	require.Empty(t, strings.TrimSpace(report.String()))

	err = info(&report, filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
