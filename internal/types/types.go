package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
)

// RegistryInfo describes a stored registry snapshot without decoding it.
type RegistryInfo struct {
	Name           string      // Name the registry was saved under
	Scheme         hash.Scheme // Hash scheme of the registry
	MagicBits      uint64      // Per-registry salt
	Entries        uint64      // Number of label entries
	SecretHash     hash.Value  // Cipher of the owning secret
	ContentHash    string      // SHA-512 of the serialized registry, hex
	RawSize        uint64      // Serialized registry size
	CompressedSize uint64      // Size after zstd, before Reed-Solomon
	StorageSize    uint64      // Sum of all stored slice payloads
	RSDataSlices   uint8       // Reed-Solomon data slices
	RSParitySlices uint8       // Reed-Solomon parity slices
	Created        time.Time   // When the snapshot was written
	Slices         []SliceInfo // Per-slice details, indexed by slice index
}

// SliceInfo represents information about a single Reed-Solomon slice
type SliceInfo struct {
	Index       uint8  // Reed-Solomon index
	Size        uint64 // Size of this slice on storage
	IsDataSlice bool   // True if data slice, false if parity slice
	Present     bool   // False if the slice is missing from the store
	Valid       bool   // True if the payload matches its checksum
}

// MissingSlices counts slices that are absent or fail their checksum.
func (info RegistryInfo) MissingSlices() int {
	n := 0
	for _, s := range info.Slices {
		if !s.Present || !s.Valid {
			n++
		}
	}
	return n
}

// Recoverable reports whether enough slices survive to rebuild the snapshot.
func (info RegistryInfo) Recoverable() bool {
	return info.MissingSlices() <= int(info.RSParitySlices)
}

// CompressionRatio is raw size over compressed size.
func (info RegistryInfo) CompressionRatio() float64 {
	if info.CompressedSize == 0 {
		return 0
	}
	return float64(info.RawSize) / float64(info.CompressedSize)
}

// FormatRegistryInfo returns a human-readable string representation of RegistryInfo
func (info RegistryInfo) FormatRegistryInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Registry: %s\n", info.Name)
	fmt.Fprintf(&b, "Scheme: %s\n", info.Scheme)
	fmt.Fprintf(&b, "Magic Bits: %#016x\n", info.MagicBits)
	fmt.Fprintf(&b, "Secret Hash: %s\n", info.SecretHash)
	fmt.Fprintf(&b, "Entries: %s\n", humanize.Comma(int64(info.Entries)))
	if info.ContentHash != "" {
		fmt.Fprintf(&b, "Content Hash: %s\n", info.ContentHash)
	}
	if !info.Created.IsZero() {
		fmt.Fprintf(&b, "Created: %s (%s)\n", info.Created.UTC().Format(time.RFC3339), humanize.Time(info.Created))
	}
	fmt.Fprintf(&b, "Raw Size: %s (%d bytes)\n", humanize.Bytes(info.RawSize), info.RawSize)
	fmt.Fprintf(&b, "Compressed Size: %s (%d bytes)\n", humanize.Bytes(info.CompressedSize), info.CompressedSize)
	fmt.Fprintf(&b, "Storage Size: %s (%d bytes)\n", humanize.Bytes(info.StorageSize), info.StorageSize)
	fmt.Fprintf(&b, "Compression Ratio: %.2fx\n", info.CompressionRatio())
	fmt.Fprintf(&b, "Reed-Solomon Config: %d data + %d parity slices\n", info.RSDataSlices, info.RSParitySlices)

	for _, slice := range info.Slices {
		sliceType := "data"
		if !slice.IsDataSlice {
			sliceType = "parity"
		}
		state := "ok"
		switch {
		case !slice.Present:
			state = "missing"
		case !slice.Valid:
			state = "corrupt"
		}
		fmt.Fprintf(&b, "  Slice %d (%s): %s [%s]\n", slice.Index, sliceType, humanize.Bytes(slice.Size), state)
	}
	if !info.Recoverable() {
		b.WriteString("WARNING: too many slices lost, snapshot cannot be rebuilt\n")
	}
	return b.String()
}
