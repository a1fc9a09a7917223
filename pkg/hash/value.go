package hash

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

const (
	// Size is the width of a hash value in bytes.
	Size = 16
	// Bits is the width of a hash value in bits.
	Bits = Size * 8
)

var (
	ErrInvalidHex     = errors.New("hash: invalid hexadecimal value")
	ErrInvalidDecimal = errors.New("hash: invalid decimal value")
)

// Value is a fixed-size hash output. Together with Xor, And and Or it forms a
// commutative ring: Zero is the identity of Xor and Or and absorbs And, Ones is
// the identity of And.
type Value [Size]byte

var maxDecimal = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), Bits), big.NewInt(1))

// Zero returns the all-zero value.
func Zero() Value { return Value{} }

// Ones returns the all-one value.
func Ones() Value {
	var v Value
	for i := range v {
		v[i] = 0xff
	}
	return v
}

// FromUint64 places x big-endian in the low eight bytes.
func FromUint64(x uint64) Value {
	var v Value
	binary.BigEndian.PutUint64(v[Size-8:], x)
	return v
}

// FromBytes copies b into a Value. b must be exactly Size bytes long.
func FromBytes(b []byte) (Value, error) {
	var v Value
	if len(b) != Size {
		return v, fmt.Errorf("hash: expected %d bytes, got %d", Size, len(b))
	}
	copy(v[:], b)
	return v, nil
}

func (v Value) Xor(o Value) Value {
	for i := range v {
		v[i] ^= o[i]
	}
	return v
}

func (v Value) And(o Value) Value {
	for i := range v {
		v[i] &= o[i]
	}
	return v
}

func (v Value) Or(o Value) Value {
	for i := range v {
		v[i] |= o[i]
	}
	return v
}

// Not flips every bit, which is the same as v.Xor(Ones()).
func (v Value) Not() Value {
	for i := range v {
		v[i] = ^v[i]
	}
	return v
}

func (v Value) IsZero() bool {
	return v == Value{}
}

func (v Value) Equal(o Value) bool {
	return v == o
}

// Bytes returns a copy of the raw bytes.
func (v Value) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, v[:])
	return out
}

// String returns the canonical lowercase hexadecimal encoding.
func (v Value) String() string {
	return hex.EncodeToString(v[:])
}

// Hex is an alias for String.
func (v Value) Hex() string {
	return v.String()
}

// Decimal returns v read as an unsigned big-endian integer in base 10.
func (v Value) Decimal() string {
	return new(big.Int).SetBytes(v[:]).String()
}

// ParseHex parses the canonical hexadecimal encoding produced by String.
func ParseHex(s string) (Value, error) {
	var v Value
	if len(s) != Size*2 {
		return v, fmt.Errorf("%w: length %d", ErrInvalidHex, len(s))
	}
	if _, err := hex.Decode(v[:], []byte(s)); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return v, nil
}

// ParseDecimal parses an unsigned base-10 integer in [0, 2^128).
func ParseDecimal(s string) (Value, error) {
	var v Value
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 || n.Cmp(maxDecimal) > 0 {
		return v, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	n.FillBytes(v[:])
	return v, nil
}
