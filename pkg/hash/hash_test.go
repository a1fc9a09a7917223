package hash

import (
	"bytes"
	"crypto/md5"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementalEquivalence(t *testing.T) {
	data := make([]byte, 4096)
	rng := rand.New(rand.NewSource(42))
	rng.Read(data)

	for _, scheme := range Schemes {
		t.Run(scheme.String(), func(t *testing.T) {
			whole := Sum(scheme, data)

			for _, step := range []int{1, 7, 63, 64, 65, 1000} {
				g := New(scheme)
				for off := 0; off < len(data); off += step {
					end := off + step
					if end > len(data) {
						end = len(data)
					}
					g.Update(data[off:end])
				}
				require.Equal(t, whole, g.Finalize(), "chunk size %d", step)
			}
		})
	}
}

func TestGeneratorComposes(t *testing.T) {
	x := []byte("trapdoor")
	y := []byte("-tags")

	for _, scheme := range Schemes {
		got := New(scheme).Update(x).Update(y).Finalize()
		assert.Equal(t, Sum(scheme, append(append([]byte{}, x...), y...)), got, scheme.String())
	}
}

func TestFinalizeResets(t *testing.T) {
	g := NewDefault()
	first := g.UpdateString("abc").Finalize()
	second := g.UpdateString("abc").Finalize()
	require.Equal(t, first, second)

	empty := g.Finalize()
	require.Equal(t, Sum(MD5), empty)
}

func TestMD5MatchesStdlib(t *testing.T) {
	want := md5.Sum([]byte("hello, world"))
	got := SumString(MD5, "hello, world")
	require.Equal(t, want[:], got[:])
}

func TestSchemesDiffer(t *testing.T) {
	seen := map[Value]Scheme{}
	for _, scheme := range Schemes {
		v := SumString(scheme, "same input")
		if prev, ok := seen[v]; ok {
			t.Fatalf("%s and %s produced the same value", prev, scheme)
		}
		seen[v] = scheme
	}
}

func TestClone(t *testing.T) {
	for _, scheme := range Schemes {
		g := New(scheme).UpdateString("prefix:")
		c := g.Clone()

		a := g.UpdateString("a").Finalize()
		b := c.UpdateString("b").Finalize()

		assert.Equal(t, SumString(scheme, "prefix:a"), a, scheme.String())
		assert.Equal(t, SumString(scheme, "prefix:b"), b, scheme.String())
	}
}

func TestPeekDoesNotReset(t *testing.T) {
	for _, scheme := range Schemes {
		g := New(scheme).UpdateString("ab")
		peek := g.Peek()
		g.UpdateString("c")
		assert.Equal(t, SumString(scheme, "ab"), peek, scheme.String())
		assert.Equal(t, SumString(scheme, "abc"), g.Finalize(), scheme.String())
	}
}

func TestRingLaws(t *testing.T) {
	a := SumString(MD5, "a")
	b := SumString(MD5, "b")

	assert.Equal(t, a, a.Xor(Zero()), "zero is the xor identity")
	assert.True(t, a.Xor(a).IsZero(), "xor is involutive")
	assert.Equal(t, a, a.Xor(b).Xor(b))
	assert.Equal(t, a.Xor(b), b.Xor(a))

	assert.Equal(t, a, a.And(Ones()), "ones is the and identity")
	assert.True(t, a.And(Zero()).IsZero(), "zero absorbs and")
	assert.Equal(t, a, a.And(a), "and is idempotent")

	assert.Equal(t, a, a.Or(Zero()), "zero is the or identity")
	assert.Equal(t, Ones(), a.Or(Ones()))

	assert.Equal(t, a.Not(), a.Xor(Ones()))
	assert.Equal(t, Ones(), a.Or(a.Not()))
	assert.True(t, a.And(a.Not()).IsZero())
}

func TestHexRoundTrip(t *testing.T) {
	v := SumString(MD5, "hex")
	s := v.String()
	require.Len(t, s, 32)

	parsed, err := ParseHex(s)
	require.NoError(t, err)
	require.Equal(t, v, parsed)

	_, err = ParseHex("zz")
	require.ErrorIs(t, err, ErrInvalidHex)
	_, err = ParseHex(s[:30] + "zz")
	require.ErrorIs(t, err, ErrInvalidHex)
}

func TestDecimalRoundTrip(t *testing.T) {
	require.Equal(t, "0", Zero().Decimal())
	require.Equal(t, "340282366920938463463374607431768211455", Ones().Decimal())
	require.Equal(t, "258", FromUint64(258).Decimal())

	v := SumString(BLAKE2b, "decimal")
	parsed, err := ParseDecimal(v.Decimal())
	require.NoError(t, err)
	require.Equal(t, v, parsed)

	for _, bad := range []string{"", "-1", "12a", "340282366920938463463374607431768211456"} {
		_, err := ParseDecimal(bad)
		assert.ErrorIs(t, err, ErrInvalidDecimal, bad)
	}
}

func TestFromBytes(t *testing.T) {
	v := SumString(MD5, "bytes")
	got, err := FromBytes(v.Bytes())
	require.NoError(t, err)
	require.Equal(t, v, got)

	_, err = FromBytes([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestParseScheme(t *testing.T) {
	for _, scheme := range Schemes {
		got, err := ParseScheme(scheme.String())
		require.NoError(t, err)
		require.Equal(t, scheme, got)
	}
	_, err := ParseScheme("sha1")
	require.Error(t, err)
}

func TestEntropy(t *testing.T) {
	assert.InDelta(t, 127.3, NewDefault().Entropy(), 1e-9)
	assert.Equal(t, float64(Bits), New(SHAKE128).Entropy())
}

func TestOracle(t *testing.T) {
	o := NewOracle("test")
	v := SumString(MD5, "oracle")

	a := o.Expand(v, 100)
	b := o.Expand(v, 100)
	require.Len(t, a, 100)
	require.Equal(t, a, b)
	require.Equal(t, a[:40], o.Expand(v, 40), "shorter expansions are prefixes")
	require.NotEqual(t, a, NewOracle("other").Expand(v, 100))

	idx := o.Indexes(v, 8, 512)
	require.Len(t, idx, 8)
	for _, i := range idx {
		require.Less(t, i, uint32(512))
	}
	require.Nil(t, o.Indexes(v, 0, 512))
}

func TestSumReader(t *testing.T) {
	data := make([]byte, 3<<20)
	rng := rand.New(rand.NewSource(7))
	rng.Read(data)

	for _, scheme := range Schemes {
		got, err := SumReader(scheme, bytes.NewReader(data))
		require.NoError(t, err)
		require.Equal(t, Sum(scheme, data), got, scheme.String())
	}

	g := NewDefault()
	n, err := HashReader(g, bytes.NewReader(nil))
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, Sum(MD5), g.Finalize())
}
