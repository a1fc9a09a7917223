package set

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/tag"
)

var maskOracle = hash.NewOracle("trapdoor:mask:v1")

// MaskSet is the bitmask Boolean algebra over element tags: every element sets
// K pseudorandom bits derived from its tag value. Union is OR, Intersection is
// AND and Complement is NOT, so the usual Boolean laws hold on the masks.
// Membership and subset tests may give false positives, never false
// negatives.
//
// A MaskSet is immutable; every operation returns a new value.
type MaskSet struct {
	bits     []byte
	key      hash.Value
	params   Params
	inserted uint64
}

// NewMask returns the empty mask set under key.
func NewMask(key hash.Value, p Params) (MaskSet, error) {
	if err := p.Validate(); err != nil {
		return MaskSet{}, err
	}
	return MaskSet{bits: make([]byte, p.Bytes()), key: key, params: p}, nil
}

// MaskFromBytes restores a mask set from its raw bitset.
func MaskFromBytes(key hash.Value, p Params, raw []byte, inserted uint64) (MaskSet, error) {
	if err := p.Validate(); err != nil {
		return MaskSet{}, err
	}
	if len(raw) != p.Bytes() {
		return MaskSet{}, fmt.Errorf("%w: bitset is %d bytes, want %d", ErrBadParams, len(raw), p.Bytes())
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return MaskSet{bits: out, key: key, params: p, inserted: inserted}, nil
}

func (s MaskSet) Key() hash.Value  { return s.key }
func (s MaskSet) Params() Params   { return s.params }
func (s MaskSet) Inserted() uint64 { return s.inserted }

// Bytes returns a copy of the bitset.
func (s MaskSet) Bytes() []byte {
	out := make([]byte, len(s.bits))
	copy(out, s.bits)
	return out
}

// Count is the number of set bits.
func (s MaskSet) Count() int {
	n := 0
	for _, b := range s.bits {
		n += bits.OnesCount8(b)
	}
	return n
}

// FPR estimates the membership false positive rate from the fill ratio.
func (s MaskSet) FPR() float64 {
	if s.params.Bits == 0 {
		return 1
	}
	fill := float64(s.Count()) / float64(s.params.Bits)
	return math.Pow(fill, float64(s.params.K))
}

// positions derives K bit indexes by double hashing the oracle expansion of
// the element value. Bit j lives in byte j/8 at bit j%8 (LSB first).
func (s MaskSet) positions(v hash.Value) []uint32 {
	raw := maskOracle.Expand(v, 16)
	h1 := binary.BigEndian.Uint64(raw[0:8])
	h2 := binary.BigEndian.Uint64(raw[8:16])
	if h2 == 0 {
		h2 = 1
	}
	m := uint64(s.params.Bits)
	out := make([]uint32, s.params.K)
	for i := range out {
		out[i] = uint32((h1 + uint64(i)*h2) % m)
	}
	return out
}

func (s MaskSet) elementMask(elem tag.Tag) []byte {
	mask := make([]byte, len(s.bits))
	for _, j := range s.positions(elem.Value) {
		mask[j>>3] |= 1 << (j & 7)
	}
	return mask
}

func (s MaskSet) compatible(o MaskSet) error {
	if err := tag.CheckKeys(s.key, o.key); err != nil {
		return err
	}
	if s.params != o.params {
		return fmt.Errorf("%w: %+v != %+v", ErrParamsDiffer, s.params, o.params)
	}
	return nil
}

func (s MaskSet) with(b []byte, inserted uint64) MaskSet {
	return MaskSet{bits: b, key: s.key, params: s.params, inserted: inserted}
}

// Insert adds elem.
func (s MaskSet) Insert(elem tag.Tag) (MaskSet, error) {
	if err := tag.CheckKeys(elem.Key, s.key); err != nil {
		return MaskSet{}, err
	}
	out := s.Bytes()
	for i, b := range s.elementMask(elem) {
		out[i] |= b
	}
	return s.with(out, s.inserted+1), nil
}

// Remove is not possible on a mask: bits may be shared between elements.
func (s MaskSet) Remove(tag.Tag) (MaskSet, error) {
	return MaskSet{}, ErrUnsupported
}

// Contains reports whether every bit of elem's mask is set.
func (s MaskSet) Contains(elem tag.Tag) (bool, error) {
	if err := tag.CheckKeys(elem.Key, s.key); err != nil {
		return false, err
	}
	for i, b := range s.elementMask(elem) {
		if s.bits[i]&b != b {
			return false, nil
		}
	}
	return true, nil
}

// Union is bitwise OR.
func (s MaskSet) Union(o MaskSet) (MaskSet, error) {
	if err := s.compatible(o); err != nil {
		return MaskSet{}, err
	}
	out := s.Bytes()
	for i := range out {
		out[i] |= o.bits[i]
	}
	return s.with(out, s.inserted+o.inserted), nil
}

// Intersection is bitwise AND. The inserted counter becomes the smaller of
// the two, an upper bound on the true intersection size.
func (s MaskSet) Intersection(o MaskSet) (MaskSet, error) {
	if err := s.compatible(o); err != nil {
		return MaskSet{}, err
	}
	out := s.Bytes()
	for i := range out {
		out[i] &= o.bits[i]
	}
	return s.with(out, min(s.inserted, o.inserted)), nil
}

// Complement is bitwise NOT relative to the full tagged universe.
func (s MaskSet) Complement() MaskSet {
	out := s.Bytes()
	for i := range out {
		out[i] = ^out[i]
	}
	return s.with(out, 0)
}

// SubsetOf reports whether s has no bit outside o.
func (s MaskSet) SubsetOf(o MaskSet) (bool, error) {
	if err := s.compatible(o); err != nil {
		return false, err
	}
	for i := range s.bits {
		if s.bits[i]&^o.bits[i] != 0 {
			return false, nil
		}
	}
	return true, nil
}

// IsEmpty reports whether no bit is set.
func (s MaskSet) IsEmpty() bool {
	for _, b := range s.bits {
		if b != 0 {
			return false
		}
	}
	return true
}

// Equal compares key, geometry and bits.
func (s MaskSet) Equal(o MaskSet) bool {
	if s.key != o.key || s.params != o.params || len(s.bits) != len(o.bits) {
		return false
	}
	for i := range s.bits {
		if s.bits[i] != o.bits[i] {
			return false
		}
	}
	return true
}
