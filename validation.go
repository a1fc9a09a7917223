package trapdoor

import (
	"fmt"
)

// ValidationResult captures the outcome of validating a single registry.
type ValidationResult struct {
	Name string
	Err  error
}

// Passed reports whether the validation succeeded.
func (r ValidationResult) Passed() bool {
	return r.Err == nil
}

// ValidateRegistry rebuilds the snapshot stored under name and checks it
// against its checksum. A snapshot that rebuilds correctly but has lost
// slices fails with ErrDegraded.
func (s *Store) ValidateRegistry(name string) error {
	info, err := s.GetRegistryInfo(name)
	if err != nil {
		return err
	}
	if _, _, err := s.readSnapshot(name); err != nil {
		return err
	}
	if n := info.MissingSlices(); n > 0 {
		return fmt.Errorf("%w: %s has %d of %d slices missing or corrupt", ErrDegraded, name, n, len(info.Slices))
	}
	return nil
}

// ValidateAll validates every stored registry.
func (s *Store) ValidateAll() ([]ValidationResult, error) {
	names, err := s.ListRegistries()
	if err != nil {
		return nil, fmt.Errorf("failed to list registries for validation: %w", err)
	}

	results := make([]ValidationResult, 0, len(names))
	for _, name := range names {
		results = append(results, ValidationResult{Name: name, Err: s.ValidateRegistry(name)})
	}
	return results, nil
}

// RepairRegistry rebuilds the snapshot stored under name and writes it back
// with a full set of slices.
func (s *Store) RepairRegistry(name string) error {
	snap, raw, err := s.readSnapshot(name)
	if err != nil {
		return err
	}
	if err := s.writeSnapshot(snap, raw); err != nil {
		return fmt.Errorf("failed to repair registry %s: %w", name, err)
	}
	log.WithField("registry", name).Info("Repaired registry snapshot")
	return nil
}
