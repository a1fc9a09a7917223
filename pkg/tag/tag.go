package tag

import (
	"errors"
	"fmt"
	"math"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
)

// secretMarker separates the persisted key hash from the secret hash mixed
// into tag values, so Value XOR Key never cancels back to Hash(value).
const secretMarker = "trapdoor:secret:"

var (
	// ErrKeyMismatch is returned when two tags built under different secrets
	// are combined.
	ErrKeyMismatch = errors.New("tag: secret key mismatch")
	// ErrNotEncodable is returned by Encode for unsupported Go types.
	ErrNotEncodable = errors.New("tag: value is not encodable")
)

// Secret is the caller's key material. It is never stored; only KeyHash of
// it is.
type Secret []byte

// Tag is a keyed trapdoor for one plaintext value: Value = Hash(v) XOR
// Hash(secret), Key = KeyHash(secret).
type Tag struct {
	Value hash.Value
	Key   hash.Value
}

// String renders the tag as value:key in hexadecimal.
func (t Tag) String() string {
	return t.Value.String() + ":" + t.Key.String()
}

// Maker builds tags with a fixed hash scheme.
type Maker struct {
	scheme hash.Scheme
}

// Default builds tags with MD5.
var Default = NewMaker(hash.MD5)

func NewMaker(scheme hash.Scheme) Maker {
	return Maker{scheme: scheme}
}

func (m Maker) Scheme() hash.Scheme {
	return m.scheme
}

// KeyHash derives the storable key hash of a secret.
func (m Maker) KeyHash(secret Secret) hash.Value {
	return hash.New(m.scheme).UpdateString(secretMarker).Update(secret).Finalize()
}

// SecretHash is the unmarked hash of the secret that is XORed into values.
func (m Maker) SecretHash(secret Secret) hash.Value {
	return hash.Sum(m.scheme, secret)
}

// New tags v under secret.
func (m Maker) New(secret Secret, v Encoder) Tag {
	return m.NewBytes(secret, v.TagChunks()...)
}

// NewBytes tags the concatenation of chunks under secret.
func (m Maker) NewBytes(secret Secret, chunks ...[]byte) Tag {
	return Tag{
		Value: hash.Sum(m.scheme, chunks...).Xor(m.SecretHash(secret)),
		Key:   m.KeyHash(secret),
	}
}

// NewAny tags a Go value through Encode.
func (m Maker) NewAny(secret Secret, v any) (Tag, error) {
	enc, err := Encode(v)
	if err != nil {
		return Tag{}, err
	}
	return m.New(secret, enc), nil
}

// IsKeyMatch reports whether t was built with secret. False positives occur
// with probability 2^-k; false negatives never.
func (m Maker) IsKeyMatch(t Tag, secret Secret) bool {
	return t.Key == m.KeyHash(secret)
}

// New tags v under secret with the default scheme.
func New(secret Secret, v Encoder) Tag {
	return Default.New(secret, v)
}

// NewBytes tags chunks under secret with the default scheme.
func NewBytes(secret Secret, chunks ...[]byte) Tag {
	return Default.NewBytes(secret, chunks...)
}

// KeyHash derives the key hash with the default scheme.
func KeyHash(secret Secret) hash.Value {
	return Default.KeyHash(secret)
}

// IsKeyMatch checks t against secret with the default scheme.
func IsKeyMatch(t Tag, secret Secret) bool {
	return Default.IsKeyMatch(t, secret)
}

// Equal compares both halves. Tags under different keys are never equal,
// even if their values coincide.
func Equal(a, b Tag) bool {
	if a.Key != b.Key {
		return false
	}
	return a.Value == b.Value
}

// CheckKeys returns ErrKeyMismatch unless a and b share a key.
func CheckKeys(a, b hash.Value) error {
	if a != b {
		return fmt.Errorf("%w: %s != %s", ErrKeyMismatch, a, b)
	}
	return nil
}

// EqualityFPR is the false positive rate of approximate equality between tags
// of k and l bits, where p is the prior that the values are truly equal and q
// the prior that the secrets are equal:
//
//	      2^-k 2^-l (2 - p)(1 - q) + 2^-k q (1 - p)
//	fpr = -----------------------------------------
//	                     1 - p q
//
// With q = 1 this reduces to 2^-k.
func EqualityFPR(k, l int, p, q float64) float64 {
	denom := 1 - p*q
	if denom == 0 {
		// Both values and secrets are certainly equal; nothing can be a false positive.
		return 0
	}
	ek := math.Pow(2, -float64(k))
	el := math.Pow(2, -float64(l))
	return (ek*el*(2-p)*(1-q) + ek*q*(1-p)) / denom
}

// TrustedFPR is EqualityFPR in the trusted-secret regime (q = 1).
func TrustedFPR(k int) float64 {
	return math.Pow(2, -float64(k))
}
