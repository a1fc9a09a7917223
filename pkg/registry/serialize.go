package registry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
)

const (
	Header  = "cipher_type_registry"
	Version = 1
)

// ErrFormat matches every *FormatError.
var ErrFormat = errors.New("registry: malformed serialization")

// FormatError reports where a serialized registry could not be parsed.
type FormatError struct {
	Line int
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registry: line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("registry: line %d: %s", e.Line, e.Msg)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// WriteTo writes the registry in its text form:
//
//	cipher_type_registry
//	1
//	<secret hash, decimal>
//	<entry count>
//	<label>\t<tag, decimal>
//
// Entries are written sorted by label.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	secretHash, entries := r.snapshot()
	bw := bufio.NewWriter(w)
	var n int64
	write := func(s string) error {
		m, err := bw.WriteString(s)
		n += int64(m)
		return err
	}

	head := fmt.Sprintf("%s\n%d\n%s\n%d\n", Header, Version, secretHash.Decimal(), len(entries))
	if err := write(head); err != nil {
		return n, err
	}
	for _, e := range entries {
		if err := write(e.Label + "\t" + e.Tag.Decimal() + "\n"); err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// Serialize is WriteTo without the byte count.
func (r *Registry) Serialize(w io.Writer) error {
	_, err := r.WriteTo(w)
	return err
}

// Deserialize replaces the secret hash and entries with those read from rd.
// On error the registry is left unmodified.
func (r *Registry) Deserialize(rd io.Reader) error {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	next := func(what string) (string, error) {
		line++
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", &FormatError{Line: line, Msg: "unexpected end of input, want " + what}
		}
		return strings.TrimRight(sc.Text(), "\r"), nil
	}

	s, err := next("header")
	if err != nil {
		return err
	}
	if s != Header {
		return &FormatError{Line: line, Msg: fmt.Sprintf("header %q, want %q", s, Header)}
	}

	if s, err = next("version"); err != nil {
		return err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return &FormatError{Line: line, Msg: "bad version", Err: err}
	}
	if v != Version {
		return &FormatError{Line: line, Msg: fmt.Sprintf("version %d, want %d", v, Version)}
	}

	if s, err = next("secret hash"); err != nil {
		return err
	}
	secretHash, err := hash.ParseDecimal(strings.TrimSpace(s))
	if err != nil {
		return &FormatError{Line: line, Msg: "bad secret hash", Err: err}
	}

	if s, err = next("entry count"); err != nil {
		return err
	}
	count, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return &FormatError{Line: line, Msg: "bad entry count", Err: err}
	}

	entries := make(map[string]hash.Value, min(count, 1<<16))
	for range count {
		if s, err = next("entry"); err != nil {
			return err
		}
		label, num, ok := strings.Cut(s, "\t")
		if !ok || !validLabel(label) {
			return &FormatError{Line: line, Msg: "bad entry"}
		}
		if _, dup := entries[label]; dup {
			return &FormatError{Line: line, Msg: "duplicate label " + strconv.Quote(label)}
		}
		t, err := hash.ParseDecimal(strings.TrimSpace(num))
		if err != nil {
			return &FormatError{Line: line, Msg: "bad tag for " + strconv.Quote(label), Err: err}
		}
		entries[label] = t
	}

	r.mu.Lock()
	r.secretHash = secretHash
	r.entries = entries
	r.mu.Unlock()
	return nil
}

// Read builds a registry from its serialized form.
func Read(rd io.Reader, opts ...Option) (*Registry, error) {
	r := newRegistry(opts)
	if err := r.Deserialize(rd); err != nil {
		return nil, err
	}
	return r, nil
}

// SaveFile writes the registry to path, replacing any existing file.
func (r *Registry) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("registry: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("registry: close %s: %w", path, cerr)
		}
	}()
	if err := r.Serialize(f); err != nil {
		return fmt.Errorf("registry: write %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a registry saved with SaveFile.
func LoadFile(path string, opts ...Option) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", path, err)
	}
	defer f.Close()
	r, err := Read(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("registry: load %s: %w", path, err)
	}
	return r, nil
}
