package cipher

import (
	"fmt"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/tag"
)

type opKind uint8

const (
	opAnd opKind = iota
	opOr
	opNot
)

func (k opKind) String() string {
	switch k {
	case opAnd:
		return "and"
	case opOr:
		return "or"
	default:
		return "not"
	}
}

// logicModel evaluates a Boolean expression over cipher bools when the
// secret is presented. Rates are upper bounds assuming independent errors.
type logicModel struct {
	op   opKind
	a, b Cipher[bool]
}

// And is a ∧ b.
func And(a, b Cipher[bool]) (Cipher[bool], error) {
	return combine(opAnd, a, b)
}

// Or is a ∨ b.
func Or(a, b Cipher[bool]) (Cipher[bool], error) {
	return combine(opOr, a, b)
}

// Not is ¬a. It swaps the false positive and false negative rates.
func Not(a Cipher[bool]) (Cipher[bool], error) {
	if a.IsZero() {
		return Cipher[bool]{}, ErrEmpty
	}
	return wrap[bool](logicModel{op: opNot, a: a}), nil
}

func combine(op opKind, a, b Cipher[bool]) (Cipher[bool], error) {
	if a.IsZero() || b.IsZero() {
		return Cipher[bool]{}, fmt.Errorf("%w: operand of %s", ErrEmpty, op)
	}
	if err := tag.CheckKeys(a.KeyHash(), b.KeyHash()); err != nil {
		return Cipher[bool]{}, err
	}
	return wrap[bool](logicModel{op: op, a: a, b: b}), nil
}

func either(p, q float64) float64 { return 1 - (1-p)*(1-q) }

func (m logicModel) FPR() float64 {
	switch m.op {
	case opAnd:
		return max(m.a.FPR(), m.b.FPR())
	case opOr:
		return either(m.a.FPR(), m.b.FPR())
	}
	return m.a.FNR()
}

func (m logicModel) FNR() float64 {
	switch m.op {
	case opAnd:
		return either(m.a.FNR(), m.b.FNR())
	case opOr:
		return max(m.a.FNR(), m.b.FNR())
	}
	return m.a.FPR()
}

func (m logicModel) Size() int {
	if m.op == opNot {
		return 1 + m.a.Size()
	}
	return 1 + m.a.Size() + m.b.Size()
}

func (m logicModel) MetaInfo() MetaInfo {
	return MetaInfo{
		"model": MetaString("logic"),
		"op":    MetaString(m.op.String()),
		"depth": MetaInt(m.depth()),
	}
}

func (m logicModel) depth() int {
	d := depthOf(m.a)
	if m.op != opNot {
		d = max(d, depthOf(m.b))
	}
	return d + 1
}

func depthOf(c Cipher[bool]) int {
	if l, ok := c.m.(logicModel); ok {
		return l.depth()
	}
	return 0
}

func (m logicModel) TryConvert(secret tag.Secret) (bool, bool) {
	a, ok := m.a.TryConvert(secret)
	if !ok {
		return false, false
	}
	if m.op == opNot {
		return !a, true
	}
	b, ok := m.b.TryConvert(secret)
	if !ok {
		return false, false
	}
	if m.op == opAnd {
		return a && b, true
	}
	return a || b, true
}

func (m logicModel) keyHash() hash.Value { return m.a.KeyHash() }
