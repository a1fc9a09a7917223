package trapdoor

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	crypthash "github.com/i5heu/ouroboros-crypt/hash"
	"github.com/i5heu/ouroboros-trapdoor/pipeline"
	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/registry"
	"github.com/i5heu/ouroboros-trapdoor/pkg/set"
	"github.com/i5heu/ouroboros-trapdoor/storage"
	"github.com/sirupsen/logrus"
)

// LoadRegistry rebuilds the registry saved under name. The scheme and magic
// bits recorded in the snapshot are applied before opts, so opts can only
// add to them (for example a logger).
func (s *Store) LoadRegistry(name string, opts ...registry.Option) (*registry.Registry, error) {
	atomic.AddUint64(&s.readCounter, 1)

	snap, raw, err := s.readSnapshot(name)
	if err != nil {
		return nil, err
	}

	all := append([]registry.Option{
		registry.WithScheme(hash.Scheme(snap.Scheme)),
		registry.WithMagicBits(snap.MagicBits),
		registry.WithLogger(log),
	}, opts...)
	r, err := registry.Read(bytes.NewReader(raw), all...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", name, err)
	}
	return r, nil
}

// readSnapshot loads and rebuilds the serialized registry stored under name.
func (s *Store) readSnapshot(name string) (storage.Snapshot, []byte, error) {
	var (
		snap   storage.Snapshot
		slices []*storage.Slice
	)
	err := s.badgerDB.View(func(txn *badger.Txn) error {
		var err error
		if snap, err = storage.LoadSnapshot(txn, name); err != nil {
			return err
		}
		slices, err = storage.LoadSlices(txn, snap)
		return err
	})
	if err != nil {
		return snap, nil, fmt.Errorf("failed to load snapshot %s: %w", name, err)
	}

	raw, err := rebuild(snap, slices)
	if err != nil {
		return snap, nil, err
	}
	return snap, raw, nil
}

func rebuild(snap storage.Snapshot, slices []*storage.Slice) ([]byte, error) {
	payloads := make([][]byte, len(slices))
	for i, sl := range slices {
		switch {
		case sl == nil:
			log.WithFields(logrus.Fields{"registry": snap.Name, "slice": i}).Warn("Snapshot slice missing")
		case !sl.Verify():
			log.WithFields(logrus.Fields{"registry": snap.Name, "slice": i}).Warn("Snapshot slice corrupt")
		default:
			payloads[i] = sl.Payload
		}
	}

	raw, err := pipeline.Decode(pipeline.Encoded{
		Slices:         payloads,
		DataSlices:     snap.DataSlices,
		ParitySlices:   snap.ParitySlices,
		CompressedSize: snap.CompressedSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild snapshot %s: %w", snap.Name, err)
	}
	if uint64(len(raw)) != snap.RawSize || xxhash.Sum64(raw) != snap.Checksum {
		return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, snap.Name)
	}
	if crypthash.HashBytes(raw) != snap.ContentHash {
		return nil, fmt.Errorf("%w: %s: content hash", ErrChecksumMismatch, snap.Name)
	}
	return raw, nil
}

// LoadSet returns the set tag saved under name.
func (s *Store) LoadSet(name string) (set.SetTag, error) {
	atomic.AddUint64(&s.readCounter, 1)

	var rec storage.SetRecord
	err := s.badgerDB.View(func(txn *badger.Txn) error {
		var err error
		rec, err = storage.LoadSet(txn, name)
		return err
	})
	if err != nil {
		return set.SetTag{}, fmt.Errorf("failed to load set %s: %w", name, err)
	}
	return set.SetTag{Value: rec.Value, Key: rec.Key, Cardinality: rec.Cardinality}, nil
}

// LoadMask returns the mask set saved under name.
func (s *Store) LoadMask(name string) (set.MaskSet, error) {
	atomic.AddUint64(&s.readCounter, 1)

	var rec storage.MaskRecord
	err := s.badgerDB.View(func(txn *badger.Txn) error {
		var err error
		rec, err = storage.LoadMask(txn, name)
		return err
	})
	if err != nil {
		return set.MaskSet{}, fmt.Errorf("failed to load mask %s: %w", name, err)
	}
	m, err := set.MaskFromBytes(rec.Key, set.Params{Bits: rec.Bits, K: rec.K}, rec.Bitset, rec.Inserted)
	if err != nil {
		return set.MaskSet{}, fmt.Errorf("failed to decode mask %s: %w", name, err)
	}
	return m, nil
}
