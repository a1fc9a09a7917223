package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/reedsolomon"
)

// ErrTooFewSlices is returned when more slices are missing than there are
// parity slices.
var ErrTooFewSlices = errors.New("pipeline: too few slices to reconstruct")

// Encoded is a compressed snapshot split into Reed-Solomon slices. Data
// slices precede parity slices.
type Encoded struct {
	Slices         [][]byte
	DataSlices     uint8
	ParitySlices   uint8
	CompressedSize uint64
}

// Encode compresses raw and splits it into dataSlices+paritySlices slices.
func Encode(raw []byte, dataSlices, paritySlices uint8) (Encoded, error) {
	compressed, err := CompressWithZstd(raw)
	if err != nil {
		return Encoded{}, fmt.Errorf("error compressing snapshot: %w", err)
	}
	slices, err := SplitReedSolomon(compressed, dataSlices, paritySlices)
	if err != nil {
		return Encoded{}, err
	}
	return Encoded{
		Slices:         slices,
		DataSlices:     dataSlices,
		ParitySlices:   paritySlices,
		CompressedSize: uint64(len(compressed)),
	}, nil
}

// Decode reverses Encode. Missing slices are nil entries in e.Slices.
func Decode(e Encoded) ([]byte, error) {
	compressed, err := ReconstructReedSolomon(e.Slices, e.DataSlices, e.ParitySlices, e.CompressedSize)
	if err != nil {
		return nil, err
	}
	raw, err := DecompressWithZstd(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing snapshot: %w", err)
	}
	return raw, nil
}

// CompressWithZstd compresses data using the Zstandard algorithm.
func CompressWithZstd(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err = enc.Write(data); err != nil {
		enc.Close()
		return nil, err
	}
	if err = enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressWithZstd decompresses Zstandard-compressed data.
func DecompressWithZstd(data []byte) ([]byte, error) {
	// The encoder writes no frame at all for empty input.
	if len(data) == 0 {
		return nil, nil
	}
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var buf bytes.Buffer
	if _, err = io.Copy(&buf, dec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SplitReedSolomon splits data into data slices and computes the parity
// slices.
func SplitReedSolomon(data []byte, dataSlices, paritySlices uint8) ([][]byte, error) {
	enc, err := reedsolomon.New(int(dataSlices), int(paritySlices))
	if err != nil {
		return nil, fmt.Errorf("error creating reed solomon encoder: %w", err)
	}
	// Split rejects empty input.
	if len(data) == 0 {
		data = []byte{0}
	}
	split, err := enc.Split(data)
	if err != nil {
		return nil, fmt.Errorf("error splitting snapshot: %w", err)
	}
	if err := enc.Encode(split); err != nil {
		return nil, fmt.Errorf("error computing parity: %w", err)
	}
	return split, nil
}

// ReconstructReedSolomon rebuilds the first size bytes from slices, where
// missing slices are nil.
func ReconstructReedSolomon(slices [][]byte, dataSlices, paritySlices uint8, size uint64) ([]byte, error) {
	total := int(dataSlices) + int(paritySlices)
	if len(slices) != total {
		return nil, fmt.Errorf("unexpected number of slices: got %d, expected %d", len(slices), total)
	}
	missing := 0
	for _, s := range slices {
		if s == nil {
			missing++
		}
	}
	if missing > int(paritySlices) {
		return nil, fmt.Errorf("%w: %d missing, %d parity", ErrTooFewSlices, missing, paritySlices)
	}

	enc, err := reedsolomon.New(int(dataSlices), int(paritySlices))
	if err != nil {
		return nil, fmt.Errorf("failed to create Reed-Solomon decoder: %w", err)
	}
	work := make([][]byte, total)
	copy(work, slices)
	if missing > 0 {
		if err := enc.Reconstruct(work); err != nil {
			return nil, fmt.Errorf("failed to reconstruct Reed-Solomon slices: %w", err)
		}
	}
	var out bytes.Buffer
	if err := enc.Join(&out, work, int(size)); err != nil {
		return nil, fmt.Errorf("failed to join Reed-Solomon slices: %w", err)
	}
	return out.Bytes(), nil
}
