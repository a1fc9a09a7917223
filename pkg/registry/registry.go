package registry

import (
	"iter"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/i5heu/ouroboros-trapdoor/pkg/tag"
	"github.com/sirupsen/logrus"
)

// Registry is a keyed table of label → tag. Entries can only be added by a
// caller holding the registry's secret, and queries are gated the same way.
// Entries are never removed.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	secretHash hash.Value
	entries    map[string]hash.Value

	scheme    hash.Scheme
	magicBits uint64
	log       *logrus.Logger
}

// Entry is one label and its stored tag.
type Entry struct {
	Label string
	Tag   hash.Value
}

func newRegistry(opts []Option) *Registry {
	c := defaultConfig()
	for _, o := range opts {
		o(&c)
	}
	return &Registry{
		entries:   make(map[string]hash.Value),
		scheme:    c.scheme,
		magicBits: c.magicBits,
		log:       c.logger,
	}
}

// New creates an empty registry owned by secret.
func New(secret tag.Secret, opts ...Option) *Registry {
	r := newRegistry(opts)
	r.secretHash = r.CipherOfSecret(secret)
	return r
}

// NewFromSecretHash creates an empty registry from an already derived
// secret hash, as returned by CipherOfSecret under the same options.
func NewFromSecretHash(secretHash hash.Value, opts ...Option) *Registry {
	r := newRegistry(opts)
	r.secretHash = secretHash
	return r
}

func (r *Registry) magic() hash.Value {
	return hash.FromUint64(r.magicBits)
}

// CipherOfSecret is Hash(secret) XOR magic bits.
func (r *Registry) CipherOfSecret(secret tag.Secret) hash.Value {
	return hash.Sum(r.scheme, secret).Xor(r.magic())
}

// Labels and type identities are hashed under separate domains.
const (
	labelDomain = "label:"
	typeDomain  = "type:"
)

func (r *Registry) derive(identity string, secret tag.Secret) hash.Value {
	return hash.SumString(r.scheme, identity).
		Xor(hash.Sum(r.scheme, secret)).
		Xor(r.magic())
}

// IsSecret reports whether secret owns this registry.
func (r *Registry) IsSecret(secret tag.Secret) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isSecret(secret)
}

func (r *Registry) isSecret(secret tag.Secret) bool {
	return r.CipherOfSecret(secret) == r.secretHash
}

func validLabel(label string) bool {
	return label != "" && !strings.ContainsAny(label, "\t\r\n")
}

// Insert stores Hash("label:" + label) XOR Hash(secret) XOR magic under label. It
// returns false, leaving the registry untouched, when the secret is wrong or
// the label cannot be serialized.
func (r *Registry) Insert(label string, secret tag.Secret) bool {
	return r.insert(label, labelDomain+label, secret)
}

// InsertType stores the tag of T's type identity under label.
func InsertType[T any](r *Registry, label string, secret tag.Secret) bool {
	return r.insert(label, typeDomain+TypeIdentity[T](), secret)
}

func (r *Registry) insert(label, identity string, secret tag.Secret) bool {
	if !validLabel(label) {
		r.log.WithField("label", label).Debug("registry: rejected insert, invalid label")
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isSecret(secret) {
		r.log.WithField("label", label).Debug("registry: rejected insert, secret mismatch")
		return false
	}
	r.entries[label] = r.derive(identity, secret)
	return true
}

// Plaintext returns the label whose stored tag equals t. It scans every
// entry; ties are broken by label order.
func (r *Registry) Plaintext(t hash.Value, secret tag.Secret) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.isSecret(secret) {
		return "", false
	}
	found, ok := "", false
	for label, v := range r.entries {
		if v == t && (!ok || label < found) {
			found, ok = label, true
		}
	}
	return found, ok
}

// IsAnyType reports whether t matches some entry.
func (r *Registry) IsAnyType(t hash.Value, secret tag.Secret) bool {
	_, ok := r.Plaintext(t, secret)
	return ok
}

// IsType reports whether t is the tag of T under secret. It does not consult
// the entries.
func IsType[T any](r *Registry, t hash.Value, secret tag.Secret) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.isSecret(secret) {
		return false
	}
	return r.derive(typeDomain+TypeIdentity[T](), secret) == t
}

// Lookup returns the tag stored under label.
func (r *Registry) Lookup(label string) (hash.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[label]
	return v, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// All iterates the entries sorted by label over a snapshot taken at call
// time.
func (r *Registry) All() iter.Seq2[string, hash.Value] {
	entries := r.Entries()
	return func(yield func(string, hash.Value) bool) {
		for _, e := range entries {
			if !yield(e.Label, e.Tag) {
				return
			}
		}
	}
}

// Entries returns a sorted copy of the entries.
func (r *Registry) Entries() []Entry {
	_, entries := r.snapshot()
	return entries
}

// snapshot reads the secret hash and the sorted entries under one lock.
func (r *Registry) snapshot() (hash.Value, []Entry) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, label := range slices.Sorted(maps.Keys(r.entries)) {
		out = append(out, Entry{Label: label, Tag: r.entries[label]})
	}
	return r.secretHash, out
}

func (r *Registry) SecretHash() hash.Value {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.secretHash
}

func (r *Registry) Scheme() hash.Scheme { return r.scheme }
func (r *Registry) MagicBits() uint64   { return r.magicBits }

// Equal reports whether both registries have the same secret hash and the
// same entries.
func (r *Registry) Equal(o *Registry) bool {
	if r == o {
		return true
	}
	ah, a := r.snapshot()
	bh, b := o.snapshot()
	return ah == bh && slices.Equal(a, b)
}

// Metadata describes a registry without revealing entries.
type Metadata struct {
	Header    string
	Version   uint
	Scheme    hash.Scheme
	MagicBits uint64
	Entries   int
	// Invertible is true: entries can be mapped back to labels with the
	// secret through Plaintext.
	Invertible bool
}

func (r *Registry) Metadata() Metadata {
	return Metadata{
		Header:     Header,
		Version:    Version,
		Scheme:     r.scheme,
		MagicBits:  r.magicBits,
		Entries:    r.Len(),
		Invertible: true,
	}
}

// Info binds a tag to the registry that can interpret it.
type Info struct {
	r   *Registry
	tag hash.Value
}

func (r *Registry) Info(t hash.Value) Info {
	return Info{r: r, tag: t}
}

func (i Info) Tag() hash.Value { return i.tag }

func (i Info) Plaintext(secret tag.Secret) (string, bool) {
	return i.r.Plaintext(i.tag, secret)
}

func (i Info) IsAnyType(secret tag.Secret) bool {
	return i.r.IsAnyType(i.tag, secret)
}

func (i Info) Equal(o Info) bool {
	return i.tag == o.tag
}
