package blockstream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	data := repetitiveCorpus(40 << 10)

	for _, c := range streamCodecs {
		t.Run(c.String(), func(t *testing.T) {
			frame, err := CompressFrame(data, &CompressOptions{Compressor: c})
			require.NoError(t, err)

			// Bytes after the frame belong to the container and must stay unread.
			src := bytes.NewReader(append(frame, "NEXT"...))

			r, h, err := OpenFrame(src, nil)
			require.NoError(t, err)
			defer func() { require.NoError(t, r.Close()) }()

			assert.Equal(t, c, h.Compressor)
			assert.Equal(t, uint32(len(data)), h.UncompressedSize) //nolint:gosec // test sizes are small
			assert.Equal(t, uint32(len(frame)-FrameHeaderLen), h.CompressedSize)
			assert.Equal(t, h.UncompressedSize, r.Size())

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.True(t, bytes.Equal(data, got))

			rest, err := io.ReadAll(src)
			require.NoError(t, err)
			assert.Equal(t, "NEXT", string(rest))
		})
	}
}

func TestFrame_HeaderEncoding(t *testing.T) {
	h := FrameHeader{Compressor: CompressorZstd, UncompressedSize: 0x01020304, CompressedSize: 0x0a0b0c0d}
	b := h.AppendTo(nil)

	require.Len(t, b, FrameHeaderLen)
	assert.Equal(t, []byte{'B', 'K', 'S', '1', byte(CompressorZstd), 0, 0, 0, 4, 3, 2, 1, 0x0d, 0x0c, 0x0b, 0x0a}, b)

	got, err := ParseFrameHeader(b)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestFrame_BadHeaders(t *testing.T) {
	good := FrameHeader{Compressor: CompressorLZO, UncompressedSize: 1, CompressedSize: 1}.AppendTo(nil)

	badMagic := bytes.Clone(good)
	badMagic[0] = 'X'
	reserved := bytes.Clone(good)
	reserved[6] = 1

	tests := []struct {
		name string
		b    []byte
	}{
		{name: "empty", b: nil},
		{name: "short", b: good[:FrameHeaderLen-1]},
		{name: "magic", b: badMagic},
		{name: "reserved", b: reserved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrameHeader(bytes.NewReader(tt.b))
			require.ErrorIs(t, err, ErrBadFrame)

			_, _, err = OpenFrame(bytes.NewReader(tt.b), nil)
			require.ErrorIs(t, err, ErrBadFrame)
		})
	}
}

func TestOpenFrame_TruncatedBody(t *testing.T) {
	data := bytes.Repeat([]byte("frame body "), 500)
	frame, err := CompressFrame(data, nil)
	require.NoError(t, err)

	r, _, err := OpenFrame(bytes.NewReader(frame[:len(frame)-3]), nil)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	_, err = io.ReadAll(r)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestOpenFrame_UnknownCompressor(t *testing.T) {
	b := FrameHeader{Compressor: Compressor(200), UncompressedSize: 1, CompressedSize: 0}.AppendTo(nil)

	_, _, err := OpenFrame(bytes.NewReader(b), &ReaderOptions{Compressor: CompressorLZO})
	require.ErrorIs(t, err, ErrEngineUnavailable)
	require.ErrorIs(t, err, ErrUnsupportedCompressor)
}
