package cipher

import (
	"math"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/tag"
)

// boolModel is a reversible cipher bool: the domain has two values, so the
// holder of the secret recovers the plaintext by re-tagging both.
type boolModel struct {
	t     tag.Tag
	maker tag.Maker
}

// NewBool ciphers b under secret with the default scheme.
func NewBool(secret tag.Secret, b bool) Cipher[bool] {
	return NewBoolWith(tag.Default, secret, b)
}

// NewBoolWith ciphers b with maker's scheme.
func NewBoolWith(maker tag.Maker, secret tag.Secret, b bool) Cipher[bool] {
	return wrap[bool](boolModel{t: maker.New(secret, tag.Bool(b)), maker: maker})
}

func (m boolModel) FPR() float64 { return math.Pow(2, -float64(hash.Bits)) }
func (m boolModel) FNR() float64 { return 0 }
func (m boolModel) Size() int    { return tagSize }

func (m boolModel) MetaInfo() MetaInfo {
	return MetaInfo{
		"model":  MetaString("bool"),
		"scheme": MetaString(m.maker.Scheme().String()),
		"bits":   MetaInt(hash.Bits),
		"tag":    MetaTag(m.t),
	}
}

func (m boolModel) TryConvert(secret tag.Secret) (bool, bool) {
	if !m.maker.IsKeyMatch(m.t, secret) {
		return false, false
	}
	switch m.t.Value {
	case m.maker.New(secret, tag.Bool(true)).Value:
		return true, true
	case m.maker.New(secret, tag.Bool(false)).Value:
		return false, true
	}
	return false, false
}

func (m boolModel) keyHash() hash.Value { return m.t.Key }
