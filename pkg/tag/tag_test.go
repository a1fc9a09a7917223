package tag

import (
	"math"
	"testing"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagEqualitySoundness(t *testing.T) {
	for _, scheme := range hash.Schemes {
		m := NewMaker(scheme)
		for _, v := range []Encoder{String("apple"), Int64(-3), Uint64(7), Bool(true), Bytes{0, 1, 2}, Float64(1.5)} {
			a := m.New(Secret("s"), v)
			b := m.New(Secret("s"), v)
			assert.True(t, Equal(a, b), "%s %v", scheme, v)
		}
	}
}

func TestTagShape(t *testing.T) {
	secret := Secret("k1")
	got := New(secret, String("int"))

	wantValue := hash.SumString(hash.MD5, "int").Xor(hash.Sum(hash.MD5, secret))
	require.Equal(t, wantValue, got.Value)
	require.Equal(t, KeyHash(secret), got.Key)
	require.NotEqual(t, hash.SumString(hash.MD5, "int"), got.Value.Xor(got.Key))
}

func TestKeyGating(t *testing.T) {
	a := New(Secret("s1"), String("v"))
	require.True(t, IsKeyMatch(a, Secret("s1")))
	require.False(t, IsKeyMatch(a, Secret("s2")))
}

func TestDifferentSecretsAreIncomparable(t *testing.T) {
	a := New(Secret("s1"), String("v"))
	b := New(Secret("s2"), String("v"))
	require.False(t, Equal(a, b))

	// Force a numeric coincidence on the value half.
	b.Value = a.Value
	require.False(t, Equal(a, b))
}

func TestDifferentValuesDiffer(t *testing.T) {
	a := New(Secret("s"), String("x"))
	b := New(Secret("s"), String("y"))
	require.False(t, Equal(a, b))
}

func TestNewAny(t *testing.T) {
	a, err := Default.NewAny(Secret("s"), 42)
	require.NoError(t, err)
	require.Equal(t, New(Secret("s"), Int64(42)), a)

	b, err := Default.NewAny(Secret("s"), "42")
	require.NoError(t, err)
	require.False(t, Equal(a, b))

	_, err = Default.NewAny(Secret("s"), struct{}{})
	require.ErrorIs(t, err, ErrNotEncodable)
}

func TestEncodeDistinguishesBools(t *testing.T) {
	require.NotEqual(t, New(Secret("s"), Bool(true)), New(Secret("s"), Bool(false)))
}

func TestEqualityFPR(t *testing.T) {
	assert.InDelta(t, math.Pow(2, -128), EqualityFPR(128, 128, 0.5, 1), 1e-50)
	assert.InDelta(t, math.Pow(2, -8), EqualityFPR(8, 8, 0.1, 1), 1e-12)
	assert.Equal(t, TrustedFPR(16), EqualityFPR(16, 16, 0, 1))

	// p = 0, q = 0: fpr = 2 * 2^-k * 2^-l
	assert.InDelta(t, 2*math.Pow(2, -8)*math.Pow(2, -4), EqualityFPR(8, 4, 0, 0), 1e-12)
	assert.Zero(t, EqualityFPR(8, 8, 1, 1))
}

func TestProduct(t *testing.T) {
	s := Secret("s")
	a := New(s, String("a"))
	b := New(s, String("b"))

	ab, err := Product(a, b)
	require.NoError(t, err)
	ba, err := Product(b, a)
	require.NoError(t, err)
	require.NotEqual(t, ab.Value, ba.Value, "products are ordered")
	require.Equal(t, a.Key, ab.Key)

	again, err := Product(New(s, String("a")), New(s, String("b")))
	require.NoError(t, err)
	require.True(t, Equal(ab, again))

	_, err = Product(a, New(Secret("other"), String("b")))
	require.ErrorIs(t, err, ErrKeyMismatch)
}

func TestSum(t *testing.T) {
	s := Secret("s")
	a := New(s, String("a"))
	b := New(s, String("b"))

	ab, err := Sum(a, b)
	require.NoError(t, err)
	require.Equal(t, a.Value.Or(b.Value), ab.Value)
	require.Equal(t, a.Value, ab.Value.And(a.Value))

	_, err = Sum(a, New(Secret("other"), String("b")))
	require.ErrorIs(t, err, ErrKeyMismatch)
}

func TestTagString(t *testing.T) {
	a := New(Secret("s"), String("a"))
	require.Equal(t, a.Value.String()+":"+a.Key.String(), a.String())
}
