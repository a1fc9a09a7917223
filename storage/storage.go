package storage

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	crypthash "github.com/i5heu/ouroboros-crypt/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
)

const (
	// Key prefixes for different record types in BadgerDB
	SnapshotPrefix = "registry:" // registry snapshot header, keyed by name
	SlicePrefix    = "slice:"    // Reed-Solomon slices of a registry snapshot
	SetPrefix      = "set:"      // XOR set tags
	MaskPrefix     = "mask:"     // bitmask sets
)

// ErrNotFound is returned when no record exists under a name.
var ErrNotFound = errors.New("storage: not found")

// Snapshot describes a stored registry snapshot. The snapshot body lives in
// its slices.
type Snapshot struct {
	Name           string
	Scheme         uint8
	MagicBits      uint64
	Entries        uint64
	SecretHash     hash.Value
	RawSize        uint64         // serialized registry size
	CompressedSize uint64         // after zstd, before Reed-Solomon
	Checksum       uint64         // xxhash of the serialized registry
	ContentHash    crypthash.Hash // SHA-512 of the serialized registry
	DataSlices     uint8
	ParitySlices   uint8
	Created        int64
}

// Slice is one Reed-Solomon slice of a snapshot.
type Slice struct {
	Name     string
	Index    uint8
	Checksum uint64 // xxhash of Payload
	Payload  []byte
}

// Verify checks the payload against its checksum.
func (s Slice) Verify() bool {
	return xxhash.Sum64(s.Payload) == s.Checksum
}

// NewSlice builds a slice and its checksum.
func NewSlice(name string, index uint8, payload []byte) Slice {
	return Slice{Name: name, Index: index, Checksum: xxhash.Sum64(payload), Payload: payload}
}

// SetRecord is a persisted set tag.
type SetRecord struct {
	Name        string
	Value       hash.Value
	Key         hash.Value
	Cardinality uint64
}

// MaskRecord is a persisted mask set.
type MaskRecord struct {
	Name     string
	Key      hash.Value
	Bits     uint32
	K        uint8
	Inserted uint64
	Bitset   []byte
}

// KVWriter is satisfied by *badger.Txn and *badger.WriteBatch.
type KVWriter interface {
	Set(key, val []byte) error
}

func SnapshotKey(name string) []byte { return []byte(SnapshotPrefix + name) }
func SetKey(name string) []byte      { return []byte(SetPrefix + name) }
func MaskKey(name string) []byte     { return []byte(MaskPrefix + name) }

func SliceKey(name string, index uint8) []byte {
	return fmt.Appendf(nil, "%s%s_%d", SlicePrefix, name, index)
}

func StoreSnapshot(w KVWriter, s Snapshot) error {
	return w.Set(SnapshotKey(s.Name), MarshalSnapshot(s))
}

func StoreSlice(w KVWriter, s Slice) error {
	return w.Set(SliceKey(s.Name, s.Index), MarshalSlice(s))
}

func StoreSet(w KVWriter, r SetRecord) error {
	return w.Set(SetKey(r.Name), MarshalSet(r))
}

func StoreMask(w KVWriter, r MaskRecord) error {
	return w.Set(MaskKey(r.Name), MarshalMask(r))
}

func get(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read value of %s: %w", key, err)
	}
	return val, nil
}

func LoadSnapshot(txn *badger.Txn, name string) (Snapshot, error) {
	val, err := get(txn, SnapshotKey(name))
	if err != nil {
		return Snapshot{}, err
	}
	return UnmarshalSnapshot(val)
}

func LoadSet(txn *badger.Txn, name string) (SetRecord, error) {
	val, err := get(txn, SetKey(name))
	if err != nil {
		return SetRecord{}, err
	}
	return UnmarshalSet(val)
}

func LoadMask(txn *badger.Txn, name string) (MaskRecord, error) {
	val, err := get(txn, MaskKey(name))
	if err != nil {
		return MaskRecord{}, err
	}
	return UnmarshalMask(val)
}

// LoadSlices returns the slices of a snapshot indexed by slice index; missing
// slices are left nil.
func LoadSlices(txn *badger.Txn, s Snapshot) ([]*Slice, error) {
	out := make([]*Slice, int(s.DataSlices)+int(s.ParitySlices))
	for i := range out {
		val, err := get(txn, SliceKey(s.Name, uint8(i)))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		slice, err := UnmarshalSlice(val)
		if err != nil {
			return nil, fmt.Errorf("slice %d of %s: %w", i, s.Name, err)
		}
		out[i] = &slice
	}
	return out, nil
}

// DeleteSnapshot removes the snapshot header and all of its slices.
func DeleteSnapshot(txn *badger.Txn, s Snapshot) error {
	for i := 0; i < int(s.DataSlices)+int(s.ParitySlices); i++ {
		if err := txn.Delete(SliceKey(s.Name, uint8(i))); err != nil {
			return fmt.Errorf("failed to delete slice %d of %s: %w", i, s.Name, err)
		}
	}
	return txn.Delete(SnapshotKey(s.Name))
}

// ListNames returns the names stored under prefix in key order.
func ListNames(txn *badger.Txn, prefix string) []string {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var names []string
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		names = append(names, string(it.Item().Key()[len(p):]))
	}
	return names
}
