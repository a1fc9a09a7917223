package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/caarlos0/env/v11"
	"github.com/dustin/go-humanize"
	trapdoor "github.com/i5heu/ouroboros-trapdoor"
	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/registry"
	"github.com/i5heu/ouroboros-trapdoor/pkg/tag"
	"github.com/sirupsen/logrus"
)

const (
	USAGE = `Usage:
  %[1]s insert <registry> <label>      Add label to registry (created if missing)
  %[1]s lookup <registry> <label>      Print the tag stored under label
  %[1]s plaintext <registry> <tag>     Print the label of a tag (hex or decimal)
  %[1]s export <registry> <file>       Write a registry in its text form
  %[1]s import <registry> <file>       Store a registry read from its text form
  %[1]s -d <registry>                  Delete a registry
  %[1]s -ls                            List all stored registries
  %[1]s validate                       Validate all stored registries

Environment:
  TRAPDOOR_SECRET        secret owning the registries (required for insert and plaintext)
  TRAPDOOR_DIR           store directory (default ~/.ouroboros-trapdoor)
  TRAPDOOR_SCHEME        hash scheme for new registries (md5, blake2b-128, shake128)
  TRAPDOOR_MIN_FREE_GB   minimum free disk space in GB
  TRAPDOOR_LOG_LEVEL     logrus level (default error)
`
)

var errUsage = errors.New("invalid arguments")

type cliConfig struct {
	Secret           string `env:"TRAPDOOR_SECRET"`
	Dir              string `env:"TRAPDOOR_DIR"`
	Scheme           string `env:"TRAPDOOR_SCHEME" envDefault:"md5"`
	MinimumFreeSpace int    `env:"TRAPDOOR_MIN_FREE_GB" envDefault:"1"`
	LogLevel         string `env:"TRAPDOOR_LOG_LEVEL" envDefault:"error"`
}

func (c cliConfig) secret() (tag.Secret, error) {
	if c.Secret == "" {
		return nil, errors.New("TRAPDOOR_SECRET is not set")
	}
	return tag.Secret(c.Secret), nil
}

func main() {
	progName := filepath.Base(os.Args[0])

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, USAGE, progName)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := env.ParseAs[cliConfig]()
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	store, err := initStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer store.Close()

	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s takes %d arguments", errUsage, args[0], n-1)
		}
		return nil
	}

	switch args[0] {
	case "insert":
		if err := need(3); err != nil {
			return err
		}
		return insertLabel(store, cfg, args[1], args[2], out)
	case "lookup":
		if err := need(3); err != nil {
			return err
		}
		return lookupLabel(store, args[1], args[2], out)
	case "plaintext":
		if err := need(3); err != nil {
			return err
		}
		return plaintext(store, cfg, args[1], args[2], out)
	case "export":
		if err := need(3); err != nil {
			return err
		}
		return exportRegistry(store, args[1], args[2])
	case "import":
		if err := need(3); err != nil {
			return err
		}
		return importRegistry(store, cfg, args[1], args[2], out)
	case "-d":
		if err := need(2); err != nil {
			return err
		}
		if err := store.DeleteRegistry(args[1]); err != nil {
			return err
		}
		fmt.Fprintln(out, "Registry deleted successfully")
		return nil
	case "-ls":
		if err := need(1); err != nil {
			return err
		}
		return listRegistries(store, out)
	case "validate":
		if err := need(1); err != nil {
			return err
		}
		return validateRegistries(store, out)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

func initStore(cfg cliConfig) (*trapdoor.Store, error) {
	dir := cfg.Dir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine user home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".ouroboros-trapdoor")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetLevel(level)

	return trapdoor.Init(&trapdoor.Config{
		Paths:            []string{dir},
		MinimumFreeSpace: cfg.MinimumFreeSpace,
		Logger:           logger,
	})
}

// openOrCreate loads name from the store, or starts a new registry owned by
// secret when nothing is stored yet. New registries derive their magic bits
// from their name.
func openOrCreate(store *trapdoor.Store, cfg cliConfig, name string, secret tag.Secret) (*registry.Registry, error) {
	r, err := store.LoadRegistry(name)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, trapdoor.ErrNotFound) {
		return nil, err
	}
	scheme, err := hash.ParseScheme(cfg.Scheme)
	if err != nil {
		return nil, err
	}
	return registry.New(secret, registry.WithScheme(scheme), registry.WithMagicBits(registry.MagicBitsFor(name))), nil
}

func insertLabel(store *trapdoor.Store, cfg cliConfig, name, label string, out io.Writer) error {
	secret, err := cfg.secret()
	if err != nil {
		return err
	}
	r, err := openOrCreate(store, cfg, name, secret)
	if err != nil {
		return err
	}
	if !r.Insert(label, secret) {
		return fmt.Errorf("insert of %q into %s rejected: wrong secret or invalid label", label, name)
	}
	if err := store.SaveRegistry(name, r); err != nil {
		return err
	}
	v, _ := r.Lookup(label)
	fmt.Fprintln(out, v.Decimal())
	return nil
}

func lookupLabel(store *trapdoor.Store, name, label string, out io.Writer) error {
	r, err := store.LoadRegistry(name)
	if err != nil {
		return err
	}
	v, ok := r.Lookup(label)
	if !ok {
		return fmt.Errorf("no label %q in %s", label, name)
	}
	fmt.Fprintln(out, v.Decimal())
	return nil
}

// parseTag accepts the 32 digit hexadecimal form or the decimal form used by
// the text serialization.
func parseTag(s string) (hash.Value, error) {
	s = strings.TrimSpace(s)
	if len(s) == 2*hash.Size {
		if v, err := hash.ParseHex(s); err == nil {
			return v, nil
		}
	}
	return hash.ParseDecimal(s)
}

func plaintext(store *trapdoor.Store, cfg cliConfig, name, input string, out io.Writer) error {
	secret, err := cfg.secret()
	if err != nil {
		return err
	}
	v, err := parseTag(input)
	if err != nil {
		return err
	}
	r, err := store.LoadRegistry(name)
	if err != nil {
		return err
	}
	label, ok := r.Plaintext(v, secret)
	if !ok {
		return fmt.Errorf("tag not found in %s", name)
	}
	fmt.Fprintln(out, label)
	return nil
}

func exportRegistry(store *trapdoor.Store, name, path string) error {
	r, err := store.LoadRegistry(name)
	if err != nil {
		return err
	}
	return r.SaveFile(path)
}

func importRegistry(store *trapdoor.Store, cfg cliConfig, name, path string, out io.Writer) error {
	scheme, err := hash.ParseScheme(cfg.Scheme)
	if err != nil {
		return err
	}
	r, err := registry.LoadFile(path, registry.WithScheme(scheme), registry.WithMagicBits(registry.MagicBitsFor(name)))
	if err != nil {
		return err
	}
	if err := store.SaveRegistry(name, r); err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d entries into %s\n", r.Len(), name)
	return nil
}

func listRegistries(store *trapdoor.Store, out io.Writer) error {
	infos, err := store.ListRegistryInfos()
	if err != nil {
		return fmt.Errorf("failed to list registries: %w", err)
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No registries stored.")
		return nil
	}

	fmt.Fprintf(out, "Found %d registries:\n\n", len(infos))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tSCHEME\tENTRIES\tSIZE\tSTORED\tSLICES\tSAVED")

	var totalEntries, totalStored uint64
	for i, info := range infos {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%d+%d\t%s\n",
			i+1,
			info.Name,
			info.Scheme,
			info.Entries,
			humanize.Bytes(info.RawSize),
			humanize.Bytes(info.StorageSize),
			info.RSDataSlices, info.RSParitySlices,
			humanize.Time(info.Created),
		)
		totalEntries += info.Entries
		totalStored += info.StorageSize
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Summary:\n")
	fmt.Fprintf(out, "  Registries: %d\n", len(infos))
	fmt.Fprintf(out, "  Entries: %d\n", totalEntries)
	fmt.Fprintf(out, "  Total stored size: %s\n", humanize.Bytes(totalStored))
	return nil
}

func validateRegistries(store *trapdoor.Store, out io.Writer) error {
	results, err := store.ValidateAll()
	if err != nil {
		return err
	}
	failed := 0
	for _, res := range results {
		if !res.Passed() {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", res.Name, res.Err)
		}
	}
	fmt.Fprintf(out, "Validated %d registries, %d failed\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d registries failed validation", failed)
	}
	return nil
}
