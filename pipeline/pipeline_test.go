package pipeline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZstdCompressDecompress(t *testing.T) {
	data := bytes.Repeat([]byte("compression test"), 50)

	compressed, err := CompressWithZstd(data)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(data))

	decompressed, err := DecompressWithZstd(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestDecompressWithInvalidData(t *testing.T) {
	_, err := DecompressWithZstd([]byte("not zstd"))
	require.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	raw := bytes.Repeat([]byte("label\t1234567890\n"), 200)
	e, err := Encode(raw, 4, 2)
	require.NoError(t, err)
	require.Len(t, e.Slices, 6)

	got, err := Decode(e)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestDecodeWithLostSlices(t *testing.T) {
	raw := bytes.Repeat([]byte("registry snapshot "), 100)
	e, err := Encode(raw, 4, 2)
	require.NoError(t, err)

	e.Slices[0] = nil
	e.Slices[5] = nil
	got, err := Decode(e)
	require.NoError(t, err)
	require.Equal(t, raw, got)

	e.Slices[2] = nil
	_, err = Decode(e)
	require.ErrorIs(t, err, ErrTooFewSlices)
}

func TestEncodeEmpty(t *testing.T) {
	e, err := Encode(nil, 2, 1)
	require.NoError(t, err)
	got, err := Decode(e)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSplitRejectsBadGeometry(t *testing.T) {
	_, err := SplitReedSolomon([]byte("x"), 0, 1)
	require.Error(t, err)
}
