package trapdoor

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	crypthash "github.com/i5heu/ouroboros-crypt/hash"
	"github.com/i5heu/ouroboros-trapdoor/pipeline"
	"github.com/i5heu/ouroboros-trapdoor/pkg/registry"
	"github.com/i5heu/ouroboros-trapdoor/pkg/set"
	"github.com/i5heu/ouroboros-trapdoor/storage"
	"github.com/sirupsen/logrus"
)

// SaveRegistry stores a snapshot of r under name, replacing any previous
// snapshot of that name.
func (s *Store) SaveRegistry(name string, r *registry.Registry) error {
	atomic.AddUint64(&s.writeCounter, 1)

	if err := checkName(name); err != nil {
		return err
	}

	var raw bytes.Buffer
	if err := r.Serialize(&raw); err != nil {
		return fmt.Errorf("failed to serialize registry %s: %w", name, err)
	}

	md := r.Metadata()
	snap := storage.Snapshot{
		Name:         name,
		Scheme:       uint8(md.Scheme),
		MagicBits:    md.MagicBits,
		Entries:      uint64(md.Entries),
		SecretHash:   r.SecretHash(),
		DataSlices:   s.config.RSDataSlices,
		ParitySlices: s.config.RSParitySlices,
		Created:      time.Now().Unix(),
	}
	if err := s.writeSnapshot(snap, raw.Bytes()); err != nil {
		log.WithError(err).WithField("registry", name).Error("Failed to save registry")
		return err
	}

	log.WithFields(logrus.Fields{"registry": name, "entries": md.Entries}).Debug("Saved registry")
	return nil
}

// writeSnapshot encodes raw into slices and replaces any stored snapshot of
// the same name in one transaction.
func (s *Store) writeSnapshot(snap storage.Snapshot, raw []byte) error {
	encoded, err := pipeline.Encode(raw, snap.DataSlices, snap.ParitySlices)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", snap.Name, err)
	}
	snap.RawSize = uint64(len(raw))
	snap.CompressedSize = encoded.CompressedSize
	snap.Checksum = xxhash.Sum64(raw)
	snap.ContentHash = crypthash.HashBytes(raw)

	err = s.badgerDB.Update(func(txn *badger.Txn) error {
		old, err := storage.LoadSnapshot(txn, snap.Name)
		switch {
		case err == nil:
			if err := storage.DeleteSnapshot(txn, old); err != nil {
				return fmt.Errorf("failed to replace snapshot: %w", err)
			}
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}

		for i, payload := range encoded.Slices {
			if err := storage.StoreSlice(txn, storage.NewSlice(snap.Name, uint8(i), payload)); err != nil {
				return fmt.Errorf("failed to store slice %d: %w", i, err)
			}
		}
		return storage.StoreSnapshot(txn, snap)
	})
	if err != nil {
		return fmt.Errorf("failed to commit snapshot %s: %w", snap.Name, err)
	}
	return nil
}

// SaveSet stores a set tag under name.
func (s *Store) SaveSet(name string, st set.SetTag) error {
	atomic.AddUint64(&s.writeCounter, 1)

	if err := checkName(name); err != nil {
		return err
	}
	rec := storage.SetRecord{Name: name, Value: st.Value, Key: st.Key, Cardinality: st.Cardinality}
	err := s.badgerDB.Update(func(txn *badger.Txn) error {
		return storage.StoreSet(txn, rec)
	})
	if err != nil {
		return fmt.Errorf("failed to save set %s: %w", name, err)
	}
	return nil
}

// SaveMask stores a mask set under name.
func (s *Store) SaveMask(name string, m set.MaskSet) error {
	atomic.AddUint64(&s.writeCounter, 1)

	if err := checkName(name); err != nil {
		return err
	}
	p := m.Params()
	rec := storage.MaskRecord{
		Name:     name,
		Key:      m.Key(),
		Bits:     p.Bits,
		K:        p.K,
		Inserted: m.Inserted(),
		Bitset:   m.Bytes(),
	}
	err := s.badgerDB.Update(func(txn *badger.Txn) error {
		return storage.StoreMask(txn, rec)
	})
	if err != nil {
		return fmt.Errorf("failed to save mask %s: %w", name, err)
	}
	return nil
}
