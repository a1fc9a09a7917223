package storage

import (
	"errors"
	"fmt"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrBadRecord is returned when a stored record cannot be decoded.
var ErrBadRecord = errors.New("storage: malformed record")

// Field numbers are shared by all record types where the meaning matches.
const (
	fName protowire.Number = iota + 1
	fScheme
	fMagicBits
	fEntries
	fSecretHash
	fRawSize
	fCompressedSize
	fChecksum
	fDataSlices
	fParitySlices
	fCreated
	fIndex
	fPayload
	fValue
	fKey
	fCardinality
	fBits
	fK
	fContentHash
)

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendFixed64(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, v)
}

// field is one decoded field. Only the member matching typ is set.
type field struct {
	num   protowire.Number
	typ   protowire.Type
	bytes []byte
	u64   uint64
}

func decode(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrBadRecord, protowire.ParseError(n))
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.u64, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.u64, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrBadRecord, num, protowire.ParseError(n))
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func toValue(f field) (hash.Value, error) {
	v, err := hash.FromBytes(f.bytes)
	if err != nil {
		return v, fmt.Errorf("%w: field %d: %v", ErrBadRecord, f.num, err)
	}
	return v, nil
}

func MarshalSnapshot(s Snapshot) []byte {
	var b []byte
	b = appendBytes(b, fName, []byte(s.Name))
	b = appendVarint(b, fScheme, uint64(s.Scheme))
	b = appendFixed64(b, fMagicBits, s.MagicBits)
	b = appendVarint(b, fEntries, s.Entries)
	b = appendBytes(b, fSecretHash, s.SecretHash[:])
	b = appendVarint(b, fRawSize, s.RawSize)
	b = appendVarint(b, fCompressedSize, s.CompressedSize)
	b = appendFixed64(b, fChecksum, s.Checksum)
	b = appendVarint(b, fDataSlices, uint64(s.DataSlices))
	b = appendVarint(b, fParitySlices, uint64(s.ParitySlices))
	b = appendVarint(b, fCreated, uint64(s.Created))
	b = appendBytes(b, fContentHash, s.ContentHash[:])
	return b
}

func UnmarshalSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	err := decode(b, func(f field) error {
		var err error
		switch f.num {
		case fName:
			s.Name = string(f.bytes)
		case fScheme:
			s.Scheme = uint8(f.u64)
		case fMagicBits:
			s.MagicBits = f.u64
		case fEntries:
			s.Entries = f.u64
		case fSecretHash:
			s.SecretHash, err = toValue(f)
		case fRawSize:
			s.RawSize = f.u64
		case fCompressedSize:
			s.CompressedSize = f.u64
		case fChecksum:
			s.Checksum = f.u64
		case fDataSlices:
			s.DataSlices = uint8(f.u64)
		case fParitySlices:
			s.ParitySlices = uint8(f.u64)
		case fCreated:
			s.Created = int64(f.u64)
		case fContentHash:
			if len(f.bytes) != len(s.ContentHash) {
				err = fmt.Errorf("%w: content hash has %d bytes", ErrBadRecord, len(f.bytes))
			}
			copy(s.ContentHash[:], f.bytes)
		}
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	if s.DataSlices == 0 {
		return Snapshot{}, fmt.Errorf("%w: snapshot %q has no data slices", ErrBadRecord, s.Name)
	}
	return s, nil
}

func MarshalSlice(s Slice) []byte {
	var b []byte
	b = appendBytes(b, fName, []byte(s.Name))
	b = appendVarint(b, fIndex, uint64(s.Index))
	b = appendFixed64(b, fChecksum, s.Checksum)
	b = appendBytes(b, fPayload, s.Payload)
	return b
}

func UnmarshalSlice(b []byte) (Slice, error) {
	var s Slice
	err := decode(b, func(f field) error {
		switch f.num {
		case fName:
			s.Name = string(f.bytes)
		case fIndex:
			s.Index = uint8(f.u64)
		case fChecksum:
			s.Checksum = f.u64
		case fPayload:
			s.Payload = append([]byte(nil), f.bytes...)
		}
		return nil
	})
	return s, err
}

func MarshalSet(r SetRecord) []byte {
	var b []byte
	b = appendBytes(b, fName, []byte(r.Name))
	b = appendBytes(b, fValue, r.Value[:])
	b = appendBytes(b, fKey, r.Key[:])
	b = appendVarint(b, fCardinality, r.Cardinality)
	return b
}

func UnmarshalSet(b []byte) (SetRecord, error) {
	var r SetRecord
	err := decode(b, func(f field) error {
		var err error
		switch f.num {
		case fName:
			r.Name = string(f.bytes)
		case fValue:
			r.Value, err = toValue(f)
		case fKey:
			r.Key, err = toValue(f)
		case fCardinality:
			r.Cardinality = f.u64
		}
		return err
	})
	return r, err
}

func MarshalMask(r MaskRecord) []byte {
	var b []byte
	b = appendBytes(b, fName, []byte(r.Name))
	b = appendBytes(b, fKey, r.Key[:])
	b = appendVarint(b, fBits, uint64(r.Bits))
	b = appendVarint(b, fK, uint64(r.K))
	b = appendVarint(b, fEntries, r.Inserted)
	b = appendBytes(b, fPayload, r.Bitset)
	return b
}

func UnmarshalMask(b []byte) (MaskRecord, error) {
	var r MaskRecord
	err := decode(b, func(f field) error {
		var err error
		switch f.num {
		case fName:
			r.Name = string(f.bytes)
		case fKey:
			r.Key, err = toValue(f)
		case fBits:
			r.Bits = uint32(f.u64)
		case fK:
			r.K = uint8(f.u64)
		case fEntries:
			r.Inserted = f.u64
		case fPayload:
			r.Bitset = append([]byte(nil), f.bytes...)
		}
		return err
	})
	return r, err
}
