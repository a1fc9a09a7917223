package cipher

import (
	"math"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/tag"
)

// trapdoorModel is one-way: it supports equality through its tag but the
// plaintext is never recovered, not even with the secret.
type trapdoorModel[T any] struct {
	t tag.Tag
}

// NewTrapdoor tags v under secret. v must be encodable by tag.Encode.
func NewTrapdoor[T any](secret tag.Secret, v T) (Cipher[T], error) {
	t, err := tag.Default.NewAny(secret, v)
	if err != nil {
		return Cipher[T]{}, err
	}
	return wrap[T](trapdoorModel[T]{t: t}), nil
}

func (m trapdoorModel[T]) FPR() float64 { return math.Pow(2, -float64(hash.Bits)) }
func (m trapdoorModel[T]) FNR() float64 { return 0 }
func (m trapdoorModel[T]) Size() int    { return tagSize }

func (m trapdoorModel[T]) MetaInfo() MetaInfo {
	return MetaInfo{
		"model": MetaString("trapdoor"),
		"bits":  MetaInt(hash.Bits),
		"tag":   MetaTag(m.t),
	}
}

func (m trapdoorModel[T]) TryConvert(tag.Secret) (T, bool) {
	var zero T
	return zero, false
}

func (m trapdoorModel[T]) keyHash() hash.Value { return m.t.Key }

// Equal compares two trapdoors through their tags. It is false for any
// other model.
func Equal[T any](a, b Cipher[T]) bool {
	x, ok := a.m.(trapdoorModel[T])
	if !ok {
		return false
	}
	y, ok := b.m.(trapdoorModel[T])
	if !ok {
		return false
	}
	return tag.Equal(x.t, y.t)
}
