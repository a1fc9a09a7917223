package trapdoor

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/i5heu/ouroboros-trapdoor/storage"
)

// DeleteRegistry removes the snapshot stored under name and all of its slices.
func (s *Store) DeleteRegistry(name string) error {
	atomic.AddUint64(&s.writeCounter, 1)

	err := s.badgerDB.Update(func(txn *badger.Txn) error {
		snap, err := storage.LoadSnapshot(txn, name)
		if err != nil {
			return err
		}
		return storage.DeleteSnapshot(txn, snap)
	})
	if err != nil {
		log.WithError(err).WithField("registry", name).Error("Failed to delete registry")
		return fmt.Errorf("failed to delete registry %s: %w", name, err)
	}

	log.WithField("registry", name).Debug("Deleted registry")
	return nil
}

// DeleteSet removes the set tag stored under name.
func (s *Store) DeleteSet(name string) error {
	return s.deleteRecord("set", storage.SetKey(name))
}

// DeleteMask removes the mask set stored under name.
func (s *Store) DeleteMask(name string) error {
	return s.deleteRecord("mask", storage.MaskKey(name))
}

func (s *Store) deleteRecord(kind string, key []byte) error {
	atomic.AddUint64(&s.writeCounter, 1)

	err := s.badgerDB.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, key)
			}
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}
