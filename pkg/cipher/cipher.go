package cipher

import (
	"errors"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/tag"
)

// ErrKeyMismatch is returned when combining ciphers built under different
// secrets.
var ErrKeyMismatch = tag.ErrKeyMismatch

// ErrEmpty is returned when a zero Cipher is used as an operand.
var ErrEmpty = errors.New("cipher: empty value")

// Model is a concrete cipher representation. The set of models is closed to
// this package.
type Model[T any] interface {
	FPR() float64
	FNR() float64
	Size() int
	MetaInfo() MetaInfo
	TryConvert(secret tag.Secret) (T, bool)

	keyHash() hash.Value
}

// Cipher is an opaque cipher value of plaintext type T.
type Cipher[T any] struct {
	m Model[T]
}

func wrap[T any](m Model[T]) Cipher[T] {
	return Cipher[T]{m: m}
}

// IsZero reports whether c was never built by a constructor. A zero Cipher
// has zero rates and size, no metadata and never converts.
func (c Cipher[T]) IsZero() bool { return c.m == nil }

// FPR is the nominal false positive rate of the underlying scheme.
func (c Cipher[T]) FPR() float64 {
	if c.m == nil {
		return 0
	}
	return c.m.FPR()
}

// FNR is the nominal false negative rate of the underlying scheme.
func (c Cipher[T]) FNR() float64 {
	if c.m == nil {
		return 0
	}
	return c.m.FNR()
}

// Size is the serialized length of the representation in bytes.
func (c Cipher[T]) Size() int {
	if c.m == nil {
		return 0
	}
	return c.m.Size()
}

func (c Cipher[T]) MetaInfo() MetaInfo {
	if c.m == nil {
		return MetaInfo{}
	}
	return c.m.MetaInfo()
}

// TryConvert recovers the plaintext. It reports false when the secret is
// wrong or the scheme is one-way.
func (c Cipher[T]) TryConvert(secret tag.Secret) (T, bool) {
	if c.m == nil {
		var zero T
		return zero, false
	}
	return c.m.TryConvert(secret)
}

// KeyHash identifies the secret the value was built under.
func (c Cipher[T]) KeyHash() hash.Value {
	if c.m == nil {
		return hash.Value{}
	}
	return c.m.keyHash()
}

// MetaInfo holds scheme specific diagnostics.
type MetaInfo map[string]MetaValue

// MetaValue is one of MetaString, MetaInt or MetaTag.
type MetaValue interface {
	isMetaValue()
}

type (
	MetaString string
	MetaInt    int64
	MetaTag    tag.Tag
)

func (MetaString) isMetaValue() {}
func (MetaInt) isMetaValue()    {}
func (MetaTag) isMetaValue()    {}

// tagSize is the serialized size of a tag: value and key hash.
const tagSize = 2 * hash.Size
