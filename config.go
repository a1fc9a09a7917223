package trapdoor

import (
	"fmt"
	"os"

	"github.com/i5heu/ouroboros-trapdoor/pkg/spaceInformations"
	"github.com/sirupsen/logrus"
)

// Config configures a Store.
type Config struct {
	Paths            []string       // Data directories; badger lives in the first one
	MinimumFreeSpace int            // Minimum free space per path in GB, 0 disables the check
	Logger           *logrus.Logger // Logger for the store and loaded registries
	InMemory         bool           // Keep everything in memory, Paths are ignored
	RSDataSlices     uint8          // Reed-Solomon data slices per snapshot (default 4)
	RSParitySlices   uint8          // Reed-Solomon parity slices per snapshot (default 2)
}

func (c *Config) checkConfig() error {
	if c.RSDataSlices == 0 {
		c.RSDataSlices = defaultRSDataSlices
	}
	if c.RSParitySlices == 0 {
		c.RSParitySlices = defaultRSParitySlices
	}
	if int(c.RSDataSlices)+int(c.RSParitySlices) > 256 {
		return fmt.Errorf("%w: %d data + %d parity slices exceed 256", ErrBadSlicing, c.RSDataSlices, c.RSParitySlices)
	}

	if c.InMemory {
		return nil
	}

	if len(c.Paths) == 0 {
		return fmt.Errorf("no paths configured")
	}

	for _, path := range c.Paths {
		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			if err := os.MkdirAll(path, 0o755); err != nil {
				return fmt.Errorf("error creating directory %s: %w", path, err)
			}
		case err != nil:
			return fmt.Errorf("error checking path %s: %w", path, err)
		case !info.IsDir():
			return fmt.Errorf("path %s is not a directory", path)
		}
	}

	return spaceInformations.CheckFreeSpace(c.Paths, c.MinimumFreeSpace)
}
