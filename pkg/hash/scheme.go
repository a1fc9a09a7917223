package hash

import (
	"crypto/md5"
	"encoding"
	"fmt"
	stdhash "hash"
	"strings"

	"github.com/cloudflare/circl/xof"
	"golang.org/x/crypto/blake2b"
)

// Scheme selects the construction behind a Generator.
type Scheme uint8

const (
	// MD5 is the default scheme: 64-byte blocks, 128-bit digest.
	MD5 Scheme = iota
	// BLAKE2b is BLAKE2b configured for a 128-bit digest.
	BLAKE2b
	// SHAKE128 is the first 128 bits of the SHAKE128 XOF.
	SHAKE128
)

// Schemes lists every supported scheme.
var Schemes = []Scheme{MD5, BLAKE2b, SHAKE128}

func (s Scheme) String() string {
	switch s {
	case MD5:
		return "md5"
	case BLAKE2b:
		return "blake2b-128"
	case SHAKE128:
		return "shake128"
	default:
		return fmt.Sprintf("scheme(%d)", uint8(s))
	}
}

// ParseScheme maps a scheme name, as printed by String, back to a Scheme.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "md5", "":
		return MD5, nil
	case "blake2b-128", "blake2b":
		return BLAKE2b, nil
	case "shake128":
		return SHAKE128, nil
	}
	return MD5, fmt.Errorf("hash: unknown scheme %q", name)
}

// Entropy is an estimate of the min-entropy in bits of the scheme's output.
// It is only meant for documentation and rough estimation.
func (s Scheme) Entropy() float64 {
	switch s {
	case MD5:
		return 127.3
	default:
		return Bits
	}
}

// state is the incremental core shared by all schemes.
type state interface {
	write(p []byte)
	sum() Value
	reset()
	clone() state
}

func (s Scheme) newState() state {
	switch s {
	case BLAKE2b:
		h, err := blake2b.New(Size, nil)
		if err != nil {
			// Size is a valid blake2b digest length; this cannot fail.
			panic(err)
		}
		return &digestState{h: h, fresh: func() stdhash.Hash {
			h, _ := blake2b.New(Size, nil)
			return h
		}}
	case SHAKE128:
		return &xofState{x: xof.SHAKE128.New()}
	default:
		return &digestState{h: md5.New(), fresh: md5.New}
	}
}

type digestState struct {
	h     stdhash.Hash
	fresh func() stdhash.Hash
}

func (d *digestState) write(p []byte) {
	d.h.Write(p)
}

func (d *digestState) sum() Value {
	var v Value
	copy(v[:], d.h.Sum(nil))
	return v
}

func (d *digestState) reset() {
	d.h.Reset()
}

// clone round-trips the digest through its binary marshaling, which both
// crypto/md5 and x/crypto/blake2b support.
func (d *digestState) clone() state {
	c := &digestState{h: d.fresh(), fresh: d.fresh}
	m, ok := d.h.(encoding.BinaryMarshaler)
	u, ok2 := c.h.(encoding.BinaryUnmarshaler)
	if !ok || !ok2 {
		panic("hash: digest does not support cloning")
	}
	b, err := m.MarshalBinary()
	if err != nil {
		panic(err)
	}
	if err := u.UnmarshalBinary(b); err != nil {
		panic(err)
	}
	return c
}

type xofState struct {
	x xof.XOF
}

func (s *xofState) write(p []byte) {
	s.x.Write(p)
}

// sum reads from a clone so the absorbing state stays writable.
func (s *xofState) sum() Value {
	var v Value
	s.x.Clone().Read(v[:])
	return v
}

func (s *xofState) reset() {
	s.x.Reset()
}

func (s *xofState) clone() state {
	return &xofState{x: s.x.Clone()}
}
