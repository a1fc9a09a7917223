package trapdoor

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/i5heu/ouroboros-trapdoor/pkg/spaceInformations"
	"github.com/i5heu/ouroboros-trapdoor/storage"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

var (
	// ErrNotFound is returned when nothing is stored under a name.
	ErrNotFound = storage.ErrNotFound
	// ErrChecksumMismatch is returned when a rebuilt snapshot does not match
	// the checksum recorded when it was saved.
	ErrChecksumMismatch = errors.New("trapdoor: snapshot checksum mismatch")
	// ErrDegraded is returned by validation when slices are missing or
	// corrupt but the snapshot can still be rebuilt.
	ErrDegraded   = errors.New("trapdoor: snapshot slices lost")
	ErrNoName     = errors.New("trapdoor: empty name")
	ErrBadSlicing = errors.New("trapdoor: invalid Reed-Solomon configuration")
)

const (
	defaultRSDataSlices   = 4
	defaultRSParitySlices = 2
)

// Store persists registries and set tags in BadgerDB. Registries are kept as
// compressed, erasure coded snapshots of their text serialization.
type Store struct {
	badgerDB     *badger.DB
	config       Config
	readCounter  uint64
	writeCounter uint64
}

// Init opens the store described by config. A nil config.Logger is replaced
// by a fresh logrus logger.
func Init(config *Config) (*Store, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	log = config.Logger

	err := config.checkConfig()
	if err != nil {
		return nil, fmt.Errorf("error checking config for trapdoor store: %w", err)
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(config.Paths[0])
		opts.ValueLogFileSize = 1024 * 1024 * 100 // Set max size of each value log file to 100MB
	}
	opts.Logger = nil
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	if err != nil {
		log.WithError(err).Error("Failed to open badger")
		return nil, fmt.Errorf("error opening badger: %w", err)
	}

	if !config.InMemory {
		if err := spaceInformations.DisplayDiskUsage(log, config.Paths); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Store{
		badgerDB: db,
		config:   *config,
	}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.badgerDB.Close()
}

func checkName(name string) error {
	if name == "" {
		return ErrNoName
	}
	return nil
}
