package storage

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	crypthash "github.com/i5heu/ouroboros-crypt/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func openMemDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshotCodec(t *testing.T) {
	s := Snapshot{
		Name:           "types",
		Scheme:         2,
		MagicBits:      1<<63 | 5,
		Entries:        3,
		SecretHash:     hash.SumString(hash.MD5, "secret"),
		RawSize:        120,
		CompressedSize: 80,
		Checksum:       0xdeadbeefcafebabe,
		ContentHash:    crypthash.HashString("serialized registry"),
		DataSlices:     4,
		ParitySlices:   2,
		Created:        1700000000,
	}
	got, err := UnmarshalSnapshot(MarshalSnapshot(s))
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte{0xff, 0xff, 0xff})
	require.ErrorIs(t, err, ErrBadRecord)

	// a valid record without data slices
	_, err = UnmarshalSnapshot(MarshalSnapshot(Snapshot{Name: "x"}))
	require.ErrorIs(t, err, ErrBadRecord)

	short := MarshalSnapshot(Snapshot{Name: "x", DataSlices: 1})
	short = protowire.AppendTag(short, fContentHash, protowire.BytesType)
	short = protowire.AppendBytes(short, []byte{1, 2, 3})
	_, err = UnmarshalSnapshot(short)
	require.ErrorIs(t, err, ErrBadRecord)

	bad := protowire.AppendTag(nil, fValue, protowire.BytesType)
	bad = protowire.AppendBytes(bad, []byte{1, 2, 3})
	_, err = UnmarshalSet(bad)
	require.ErrorIs(t, err, ErrBadRecord)
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	r := SetRecord{Name: "s", Value: hash.Ones(), Key: hash.FromUint64(9), Cardinality: 4}
	b := MarshalSet(r)
	b = protowire.AppendTag(b, 99, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 7)

	got, err := UnmarshalSet(b)
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestSliceChecksum(t *testing.T) {
	s := NewSlice("types", 1, []byte("payload"))
	require.True(t, s.Verify())

	got, err := UnmarshalSlice(MarshalSlice(s))
	require.NoError(t, err)
	require.Equal(t, s, got)

	got.Payload[0] ^= 1
	require.False(t, got.Verify())
}

func TestStoreAndLoad(t *testing.T) {
	db := openMemDB(t)
	snap := Snapshot{Name: "types", DataSlices: 2, ParitySlices: 1}

	err := db.Update(func(txn *badger.Txn) error {
		if err := StoreSnapshot(txn, snap); err != nil {
			return err
		}
		for i, p := range [][]byte{[]byte("a"), []byte("b")} {
			if err := StoreSlice(txn, NewSlice("types", uint8(i), p)); err != nil {
				return err
			}
		}
		if err := StoreSet(txn, SetRecord{Name: "evens", Cardinality: 2}); err != nil {
			return err
		}
		return StoreMask(txn, MaskRecord{Name: "m", Bits: 16, K: 2, Bitset: []byte{1, 2}})
	})
	require.NoError(t, err)

	err = db.View(func(txn *badger.Txn) error {
		got, err := LoadSnapshot(txn, "types")
		require.NoError(t, err)
		require.Equal(t, snap, got)

		slices, err := LoadSlices(txn, got)
		require.NoError(t, err)
		require.Len(t, slices, 3)
		require.Equal(t, []byte("b"), slices[1].Payload)
		require.Nil(t, slices[2])

		set, err := LoadSet(txn, "evens")
		require.NoError(t, err)
		require.EqualValues(t, 2, set.Cardinality)

		mask, err := LoadMask(txn, "m")
		require.NoError(t, err)
		require.Equal(t, []byte{1, 2}, mask.Bitset)

		require.Equal(t, []string{"types"}, ListNames(txn, SnapshotPrefix))
		require.Equal(t, []string{"evens"}, ListNames(txn, SetPrefix))

		_, err = LoadSet(txn, "missing")
		require.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return DeleteSnapshot(txn, snap)
	}))
	require.NoError(t, db.View(func(txn *badger.Txn) error {
		_, err := LoadSnapshot(txn, "types")
		require.ErrorIs(t, err, ErrNotFound)
		require.Empty(t, ListNames(txn, SlicePrefix))
		return nil
	}))
}
