package trapdoor

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/i5heu/ouroboros-trapdoor/internal/types"
	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/storage"
)

// RegistryInfo describes a stored registry snapshot.
type RegistryInfo = types.RegistryInfo

// SliceInfo describes one Reed-Solomon slice of a snapshot.
type SliceInfo = types.SliceInfo

func (s *Store) listNames(prefix string) ([]string, error) {
	atomic.AddUint64(&s.readCounter, 1)

	var names []string
	err := s.badgerDB.View(func(txn *badger.Txn) error {
		names = storage.ListNames(txn, prefix)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	return names, nil
}

// ListRegistries returns the names of all stored registries in sorted order.
func (s *Store) ListRegistries() ([]string, error) {
	return s.listNames(storage.SnapshotPrefix)
}

// ListSets returns the names of all stored set tags in sorted order.
func (s *Store) ListSets() ([]string, error) {
	return s.listNames(storage.SetPrefix)
}

// ListMasks returns the names of all stored mask sets in sorted order.
func (s *Store) ListMasks() ([]string, error) {
	return s.listNames(storage.MaskPrefix)
}

// GetRegistryInfo describes the snapshot stored under name without
// rebuilding it.
func (s *Store) GetRegistryInfo(name string) (RegistryInfo, error) {
	atomic.AddUint64(&s.readCounter, 1)

	var info RegistryInfo
	err := s.badgerDB.View(func(txn *badger.Txn) error {
		snap, err := storage.LoadSnapshot(txn, name)
		if err != nil {
			return err
		}
		slices, err := storage.LoadSlices(txn, snap)
		if err != nil {
			return err
		}

		info = RegistryInfo{
			Name:           snap.Name,
			Scheme:         hash.Scheme(snap.Scheme),
			MagicBits:      snap.MagicBits,
			Entries:        snap.Entries,
			SecretHash:     snap.SecretHash,
			ContentHash:    fmt.Sprintf("%x", snap.ContentHash[:]),
			RawSize:        snap.RawSize,
			CompressedSize: snap.CompressedSize,
			RSDataSlices:   snap.DataSlices,
			RSParitySlices: snap.ParitySlices,
			Created:        time.Unix(snap.Created, 0),
		}
		for i, sl := range slices {
			si := SliceInfo{Index: uint8(i), IsDataSlice: i < int(snap.DataSlices)}
			if sl != nil {
				si.Present = true
				si.Valid = sl.Verify()
				si.Size = uint64(len(sl.Payload))
				info.StorageSize += si.Size
			}
			info.Slices = append(info.Slices, si)
		}
		return nil
	})
	if err != nil {
		return RegistryInfo{}, fmt.Errorf("failed to get info for registry %s: %w", name, err)
	}
	return info, nil
}

// ListRegistryInfos returns info for every stored registry. Registries whose
// info cannot be read are logged and skipped.
func (s *Store) ListRegistryInfos() ([]RegistryInfo, error) {
	names, err := s.ListRegistries()
	if err != nil {
		return nil, err
	}

	infos := make([]RegistryInfo, 0, len(names))
	for _, name := range names {
		info, err := s.GetRegistryInfo(name)
		if err != nil {
			log.WithError(err).WithField("registry", name).Error("Failed to get registry info")
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}
