package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	trapdoor "github.com/i5heu/ouroboros-trapdoor"
	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/registry"
	"github.com/sirupsen/logrus"
)

type defaults struct {
	Dir string `env:"TRAPDOOR_DIR"`
}

type options struct {
	path        string
	file        string
	name        string
	scheme      string
	showEntries bool
	validate    bool
	limit       int
}

func main() {
	def, err := env.ParseAs[defaults]()
	if err != nil {
		log.Fatalf("failed to read environment: %v", err)
	}

	var o options
	flag.StringVar(&o.path, "path", def.Dir, "path to the trapdoor store directory")
	flag.StringVar(&o.file, "file", "", "serialized registry file to inspect instead of a store")
	flag.StringVar(&o.name, "name", "", "registry to inspect (all registries when empty)")
	flag.StringVar(&o.scheme, "scheme", "md5", "hash scheme of the registry file")
	flag.BoolVar(&o.showEntries, "show-entries", false, "print labels and tags")
	flag.BoolVar(&o.validate, "validate", false, "rebuild snapshots and verify their checksums")
	flag.IntVar(&o.limit, "limit", 20, "max number of entries to print when show-entries is enabled (0 = unlimited)")
	flag.Parse()

	if err := run(o, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(o options, out io.Writer) error {
	if o.file != "" {
		scheme, err := hash.ParseScheme(o.scheme)
		if err != nil {
			return err
		}
		r, err := registry.LoadFile(o.file, registry.WithScheme(scheme))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Registry file: %s\n", o.file)
		printRegistry(out, r, o)
		return nil
	}

	if o.path == "" {
		return fmt.Errorf("-path or -file is required")
	}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	store, err := trapdoor.Init(&trapdoor.Config{Paths: []string{o.path}, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to open store at %s: %w", o.path, err)
	}
	defer store.Close()

	names := []string{o.name}
	if o.name == "" {
		if names, err = store.ListRegistries(); err != nil {
			return fmt.Errorf("failed to list registries: %w", err)
		}
	}

	sets, err := store.ListSets()
	if err != nil {
		return fmt.Errorf("failed to list sets: %w", err)
	}
	masks, err := store.ListMasks()
	if err != nil {
		return fmt.Errorf("failed to list masks: %w", err)
	}

	fmt.Fprintf(out, "Store path: %s\n", o.path)
	fmt.Fprintf(out, "Registries: %d\n", len(names))
	fmt.Fprintf(out, "Set tags: %d\n", len(sets))
	fmt.Fprintf(out, "Mask sets: %d\n\n", len(masks))

	for _, name := range names {
		info, err := store.GetRegistryInfo(name)
		if err != nil {
			return err
		}
		fmt.Fprint(out, info.FormatRegistryInfo())

		if o.validate {
			if err := store.ValidateRegistry(name); err != nil {
				fmt.Fprintf(out, "Validation: FAIL (%v)\n", err)
			} else {
				fmt.Fprintln(out, "Validation: ok")
			}
		}
		if o.showEntries {
			r, err := store.LoadRegistry(name)
			if err != nil {
				return fmt.Errorf("failed to load registry %s: %w", name, err)
			}
			printRegistry(out, r, o)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func printRegistry(out io.Writer, r *registry.Registry, o options) {
	md := r.Metadata()
	fmt.Fprintf(out, "Entries: %d\n", md.Entries)
	fmt.Fprintf(out, "Secret hash: %s\n", r.SecretHash())
	if !o.showEntries {
		return
	}

	n := 0
	for label, v := range r.All() {
		if o.limit > 0 && n == o.limit {
			fmt.Fprintf(out, "  ... %d more\n", md.Entries-n)
			break
		}
		fmt.Fprintf(out, "  %s\t%s\n", label, v)
		n++
	}
	if n == 0 {
		fmt.Fprintln(out, "  (no entries)")
	}
}
