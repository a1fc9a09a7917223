package cipher

import (
	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/set"
	"github.com/i5heu/ouroboros-trapdoor/pkg/tag"
)

// membershipModel answers "elem in set" once the secret is presented.
type membershipModel struct {
	elem  tag.Tag
	set   set.MaskSet
	maker tag.Maker
}

// NewMembership builds the cipher bool elem ∈ s for a tag made with the
// default scheme.
func NewMembership(elem tag.Tag, s set.MaskSet) (Cipher[bool], error) {
	return NewMembershipWith(tag.Default, elem, s)
}

// NewMembershipWith is NewMembership for a tag made by maker.
func NewMembershipWith(maker tag.Maker, elem tag.Tag, s set.MaskSet) (Cipher[bool], error) {
	if err := tag.CheckKeys(elem.Key, s.Key()); err != nil {
		return Cipher[bool]{}, err
	}
	return wrap[bool](membershipModel{elem: elem, set: s, maker: maker}), nil
}

func (m membershipModel) FPR() float64 { return m.set.FPR() }
func (m membershipModel) FNR() float64 { return 0 }
func (m membershipModel) Size() int    { return tagSize + m.set.Params().Bytes() }

func (m membershipModel) MetaInfo() MetaInfo {
	p := m.set.Params()
	return MetaInfo{
		"model":    MetaString("membership"),
		"scheme":   MetaString(m.maker.Scheme().String()),
		"bits":     MetaInt(p.Bits),
		"k":        MetaInt(p.K),
		"inserted": MetaInt(m.set.Inserted()),
		"element":  MetaTag(m.elem),
	}
}

func (m membershipModel) TryConvert(secret tag.Secret) (bool, bool) {
	if !m.maker.IsKeyMatch(m.elem, secret) {
		return false, false
	}
	ok, err := m.set.Contains(m.elem)
	if err != nil {
		return false, false
	}
	return ok, true
}

func (m membershipModel) keyHash() hash.Value { return m.elem.Key }
