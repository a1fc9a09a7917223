package registry

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/i5heu/ouroboros-trapdoor/pkg/hash"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/hkdf"
)

type config struct {
	scheme    hash.Scheme
	magicBits uint64
	logger    *logrus.Logger
}

func defaultConfig() config {
	return config{scheme: hash.MD5, logger: logrus.StandardLogger()}
}

// Option configures a Registry.
type Option func(*config)

// WithMagicBits sets the per-registry salt mixed into the secret hash and
// every entry. Registries sharing a secret but not their magic bits produce
// unrelated tags.
func WithMagicBits(bits uint64) Option {
	return func(c *config) { c.magicBits = bits }
}

// WithScheme selects the hash scheme. It must match between writer and
// reader of a serialized registry.
func WithScheme(s hash.Scheme) Option {
	return func(c *config) { c.scheme = s }
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

const magicInfo = "ouroboros-trapdoor registry magic bits"

// MagicBitsFor derives stable magic bits from a registry name.
func MagicBitsFor(name string) uint64 {
	r := hkdf.New(sha256.New, []byte(name), nil, []byte(magicInfo))
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		// hkdf only fails after 255 blocks of output
		panic(err)
	}
	return binary.BigEndian.Uint64(buf[:])
}
