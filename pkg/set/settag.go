package set

import (
	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/tag"
)

// SetTag is a trapdoor for a set of values under one secret: Value is the XOR
// of the member tags' values. Union is the disjoint union (equivalently the
// symmetric difference), which makes it reversible: Union(Union(a, b), b) == a.
//
// Cardinality counts insertions minus removals. Complement does not touch it.
type SetTag struct {
	Value       hash.Value
	Key         hash.Value
	Cardinality uint64
}

// Empty is the empty set under key.
func Empty(key hash.Value) SetTag {
	return SetTag{Key: key}
}

// Singleton is the set {t}.
func Singleton(t tag.Tag) SetTag {
	return SetTag{Value: t.Value, Key: t.Key, Cardinality: 1}
}

// Of builds a set from tags that all share one key. The tags are assumed to
// be distinct.
func Of(key hash.Value, elems ...tag.Tag) (SetTag, error) {
	s := Empty(key)
	for _, e := range elems {
		var err error
		if s, err = Insert(e, s); err != nil {
			return SetTag{}, err
		}
	}
	return s, nil
}

// Union is the disjoint union of a and b. It is only correct when a and b
// share no members; the representation cannot detect overlap, and shared
// members cancel out.
func Union(a, b SetTag) (SetTag, error) {
	if err := tag.CheckKeys(a.Key, b.Key); err != nil {
		return SetTag{}, err
	}
	return SetTag{
		Value:       a.Value.Xor(b.Value),
		Key:         a.Key,
		Cardinality: a.Cardinality + b.Cardinality,
	}, nil
}

// Insert adds elem, which must not already be a member.
func Insert(elem tag.Tag, s SetTag) (SetTag, error) {
	if err := tag.CheckKeys(elem.Key, s.Key); err != nil {
		return SetTag{}, err
	}
	return SetTag{
		Value:       s.Value.Xor(elem.Value),
		Key:         s.Key,
		Cardinality: s.Cardinality + 1,
	}, nil
}

// Remove takes elem out of s. Removing a non-member is undefined: its value is
// toggled in all the same.
func Remove(elem tag.Tag, s SetTag) (SetTag, error) {
	if err := tag.CheckKeys(elem.Key, s.Key); err != nil {
		return SetTag{}, err
	}
	if s.Cardinality == 0 {
		return SetTag{}, ErrEmptySet
	}
	return SetTag{
		Value:       s.Value.Xor(elem.Value),
		Key:         s.Key,
		Cardinality: s.Cardinality - 1,
	}, nil
}

// Complement flips every bit of the value, relative to the all-ones universe.
func Complement(s SetTag) SetTag {
	return SetTag{Value: s.Value.Not(), Key: s.Key, Cardinality: s.Cardinality}
}

// IsEmpty reports whether every bit is zero. Any set whose members happen to
// cancel is indistinguishable from the empty set (fpr 2^-k).
func IsEmpty(s SetTag) bool {
	return s.Value.IsZero()
}

// IsSingleton reports whether s is exactly {elem}.
func IsSingleton(elem tag.Tag, s SetTag) bool {
	return s.Cardinality == 1 && elem.Key == s.Key && elem.Value == s.Value
}

// Equal compares value and key; cardinality is bookkeeping and is ignored.
func Equal(a, b SetTag) bool {
	return a.Key == b.Key && a.Value == b.Value
}

// Tag views s as a plain tag, e.g. to register it under a label.
func (s SetTag) Tag() tag.Tag {
	return tag.Tag{Value: s.Value, Key: s.Key}
}
