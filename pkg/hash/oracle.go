package hash

import (
	"encoding/binary"

	"github.com/cloudflare/circl/xof"
)

// Oracle expands a Value into an arbitrarily long pseudorandom byte stream.
// It stands in for a random oracle truncated to the requested length.
type Oracle struct {
	domain []byte
}

// NewOracle returns an oracle separated from other uses by domain.
func NewOracle(domain string) Oracle {
	return Oracle{domain: []byte(domain)}
}

// Expand returns n bytes derived from v.
func (o Oracle) Expand(v Value, n int) []byte {
	x := xof.SHAKE256.New()
	x.Write(o.domain)
	x.Write(v[:])
	out := make([]byte, n)
	x.Read(out)
	return out
}

// Indexes returns k indexes in [0, m) derived from v. Indexes may repeat.
func (o Oracle) Indexes(v Value, k int, m uint32) []uint32 {
	if m == 0 || k <= 0 {
		return nil
	}
	raw := o.Expand(v, 4*k)
	idx := make([]uint32, k)
	for i := range idx {
		idx[i] = binary.BigEndian.Uint32(raw[4*i:]) % m
	}
	return idx
}
