package registry

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	k1 = tag.Secret("k1")
	k2 = tag.Secret("k2")
)

type point struct{ X, Y int }

func TestTypeScenario(t *testing.T) {
	r := New(k1)
	require.True(t, InsertType[int](r, "int", k1))
	require.True(t, InsertType[bool](r, "bool", k1))

	intTag, ok := r.Lookup("int")
	require.True(t, ok)
	boolTag, ok := r.Lookup("bool")
	require.True(t, ok)

	require.True(t, IsType[int](r, intTag, k1))
	require.False(t, IsType[int](r, intTag, k2))
	require.False(t, IsType[bool](r, intTag, k1))

	label, ok := r.Plaintext(boolTag, k1)
	require.True(t, ok)
	require.Equal(t, "bool", label)
}

func TestInsertQueryRoundTrip(t *testing.T) {
	r := New(k1, WithMagicBits(MagicBitsFor("test")))
	for _, label := range []string{"alpha", "beta", "with space"} {
		require.True(t, r.Insert(label, k1))
		v, ok := r.Lookup(label)
		require.True(t, ok)
		require.True(t, r.IsAnyType(v, k1))
		got, ok := r.Plaintext(v, k1)
		require.True(t, ok)
		require.Equal(t, label, got)
	}
	require.Equal(t, 3, r.Len())
}

func TestSecretGating(t *testing.T) {
	r := New(k1)
	require.True(t, r.Insert("a", k1))

	require.False(t, r.Insert("b", k2))
	require.Equal(t, 1, r.Len())
	_, ok := r.Lookup("b")
	require.False(t, ok)

	v, _ := r.Lookup("a")
	_, ok = r.Plaintext(v, k2)
	require.False(t, ok)
	require.False(t, r.IsAnyType(v, k2))
	require.True(t, r.IsSecret(k1))
	require.False(t, r.IsSecret(k2))
}

func TestInvalidLabels(t *testing.T) {
	r := New(k1)
	for _, label := range []string{"", "a\tb", "a\nb", "a\rb"} {
		require.False(t, r.Insert(label, k1), "%q", label)
	}
	require.Zero(t, r.Len())
}

func TestMagicBitsSeparateRegistries(t *testing.T) {
	a := New(k1, WithMagicBits(MagicBitsFor("a")))
	b := New(k1, WithMagicBits(MagicBitsFor("b")))
	require.NotEqual(t, a.SecretHash(), b.SecretHash())
	require.Equal(t, MagicBitsFor("a"), MagicBitsFor("a"))

	require.True(t, InsertType[int](a, "int", k1))
	v, _ := a.Lookup("int")
	require.False(t, IsType[int](b, v, k1))
}

func TestCipherOfSecret(t *testing.T) {
	r := New(k1, WithMagicBits(7))
	want := hash.Sum(hash.MD5, k1).Xor(hash.FromUint64(7))
	require.Equal(t, want, r.CipherOfSecret(k1))
	require.Equal(t, want, r.SecretHash())

	from := NewFromSecretHash(want, WithMagicBits(7))
	require.True(t, from.IsSecret(k1))
	require.True(t, from.Insert("x", k1))
}

func TestLabelAndTypeEntriesDiffer(t *testing.T) {
	r := New(k1)
	require.True(t, r.Insert("int", k1))
	v, _ := r.Lookup("int")
	require.False(t, IsType[int](r, v, k1))
	require.Equal(t, hash.SumString(hash.MD5, "label:int").Xor(hash.Sum(hash.MD5, k1)), v)
	label, ok := r.Plaintext(v, k1)
	require.True(t, ok)
	require.Equal(t, "int", label)

	require.True(t, InsertType[int](r, "int", k1))
	typed, _ := r.Lookup("int")
	require.NotEqual(t, v, typed)
	require.True(t, IsType[int](r, typed, k1))
}

func TestTypeIdentity(t *testing.T) {
	require.Equal(t, "int", TypeIdentity[int]())
	require.Equal(t, "github.com/i5heu/ouroboros-trapdoor/pkg/registry:registry.point", TypeIdentity[point]())
	require.NotEqual(t, TypeIdentity[int](), TypeIdentity[int64]())
}

func TestAllSorted(t *testing.T) {
	r := New(k1)
	for _, l := range []string{"c", "a", "b"} {
		require.True(t, r.Insert(l, k1))
	}
	var labels []string
	for label, v := range r.All() {
		labels = append(labels, label)
		got, _ := r.Lookup(label)
		require.Equal(t, got, v)
	}
	require.Equal(t, []string{"a", "b", "c"}, labels)

	count := 0
	for range r.All() {
		count++
		break
	}
	require.Equal(t, 1, count)
}

func TestSerializeRoundTrip(t *testing.T) {
	opts := []Option{WithMagicBits(MagicBitsFor("rt")), WithScheme(hash.BLAKE2b)}
	r := New(k1, opts...)
	require.True(t, r.Insert("alpha", k1))
	require.True(t, InsertType[point](r, "point", k1))

	var buf bytes.Buffer
	n, err := r.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	require.Equal(t, Header, lines[0])
	require.Equal(t, "1", lines[1])
	require.Equal(t, r.SecretHash().Decimal(), lines[2])
	require.Equal(t, "2", lines[3])
	require.True(t, strings.HasPrefix(lines[4], "alpha\t"))

	back, err := Read(&buf, opts...)
	require.NoError(t, err)
	require.True(t, r.Equal(back))

	v, _ := back.Lookup("point")
	require.True(t, IsType[point](back, v, k1))
}

func TestDeserializeErrors(t *testing.T) {
	valid := New(k1)
	require.True(t, valid.Insert("a", k1))
	var buf bytes.Buffer
	require.NoError(t, valid.Serialize(&buf))
	good := buf.String()
	entry := good[strings.LastIndex(strings.TrimSuffix(good, "\n"), "\n")+1:]

	cases := map[string]string{
		"header":    strings.Replace(good, Header, "other_registry", 1),
		"version":   strings.Replace(good, "\n1\n", "\n2\n", 1),
		"count":     strings.Replace(good, "\n1\na\t", "\nx\na\t", 1),
		"short":     strings.Replace(good, "\n1\na\t", "\n2\na\t", 1),
		"tag":       strings.Replace(good, "a\t", "a\tz", 1),
		"no tab":    strings.Replace(good, "a\t", "a ", 1),
		"empty":     "",
		"overflow":  fmt.Sprintf("%s\n1\n%s0\n0\n", Header, hash.Ones().Decimal()),
		"duplicate": strings.Replace(good, "\n1\na\t", "\n2\na\t", 1) + entry,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			r := New(k2)
			require.True(t, r.Insert("keep", k2))
			before := r.Entries()
			secretHash := r.SecretHash()

			err := r.Deserialize(strings.NewReader(input))
			require.Error(t, err)
			require.ErrorIs(t, err, ErrFormat)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)

			require.Equal(t, before, r.Entries())
			require.Equal(t, secretHash, r.SecretHash())
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.registry")
	r := New(k1)
	require.True(t, r.Insert("a", k1))
	require.NoError(t, r.SaveFile(path))

	back, err := LoadFile(path)
	require.NoError(t, err)
	require.True(t, r.Equal(back))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestInfo(t *testing.T) {
	r := New(k1)
	require.True(t, r.Insert("a", k1))
	v, _ := r.Lookup("a")
	info := r.Info(v)

	label, ok := info.Plaintext(k1)
	require.True(t, ok)
	assert.Equal(t, "a", label)
	assert.True(t, info.IsAnyType(k1))
	assert.False(t, info.IsAnyType(k2))
	assert.True(t, info.Equal(r.Info(v)))
	assert.False(t, info.Equal(r.Info(hash.Zero())))

	md := r.Metadata()
	assert.Equal(t, Header, md.Header)
	assert.EqualValues(t, 1, md.Entries)
	assert.Equal(t, hash.MD5, md.Scheme)
}

func TestConcurrentAccess(t *testing.T) {
	r := New(k1)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := range 50 {
				r.Insert(fmt.Sprintf("w%d-%d", i, j), k1)
			}
		}()
		go func() {
			defer wg.Done()
			for range 50 {
				for label, v := range r.All() {
					got, ok := r.Plaintext(v, k1)
					if !ok || got != label {
						t.Errorf("plaintext(%s) = %q, %v", label, got, ok)
					}
				}
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 400, r.Len())
}

func TestWriteToIsConsistentDuringDeserialize(t *testing.T) {
	a := New(k1)
	require.True(t, a.Insert("a", k1))
	b := New(k2)
	for _, l := range []string{"x", "y"} {
		require.True(t, b.Insert(l, k2))
	}
	var bufA, bufB bytes.Buffer
	require.NoError(t, a.Serialize(&bufA))
	require.NoError(t, b.Serialize(&bufB))

	r := New(k1)
	require.NoError(t, r.Deserialize(bytes.NewReader(bufA.Bytes())))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 200 {
			src := bufA.Bytes()
			if i%2 == 0 {
				src = bufB.Bytes()
			}
			if err := r.Deserialize(bytes.NewReader(src)); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	for range 200 {
		var out bytes.Buffer
		require.NoError(t, r.Serialize(&out))
		got := out.String()
		if got != bufA.String() && got != bufB.String() {
			t.Errorf("mixed snapshot:\n%s", got)
			break
		}
	}
	wg.Wait()
}
