package set

import "math"

// Params fixes the geometry of a MaskSet. Bits must be a positive multiple of
// eight and K the number of bit positions per element.
type Params struct {
	Bits uint32
	K    uint8
}

// DefaultParams suits roughly a hundred elements at a 1% false positive rate.
var DefaultParams = Params{Bits: 1024, K: 7}

// Validate checks the geometry.
func (p Params) Validate() error {
	if p.Bits == 0 || p.Bits%8 != 0 || p.K == 0 {
		return ErrBadParams
	}
	return nil
}

// Bytes is the bitset length in bytes.
func (p Params) Bytes() int {
	return int(p.Bits / 8)
}

// OptimalK returns the K that minimises the false positive rate for n
// elements in m bits: round(m/n ln 2), clamped to [1, 255].
func OptimalK(m uint32, n uint64) uint8 {
	if n == 0 {
		return 1
	}
	k := math.Round(float64(m) / float64(n) * math.Ln2)
	switch {
	case k < 1:
		return 1
	case k > 255:
		return 255
	}
	return uint8(k)
}

// FalsePositiveRate is the expected rate (1 - e^(-kn/m))^k after n insertions.
func FalsePositiveRate(p Params, n uint64) float64 {
	if p.Bits == 0 {
		return 1
	}
	k := float64(p.K)
	return math.Pow(1-math.Exp(-k*float64(n)/float64(p.Bits)), k)
}

// SizingFor returns the smallest geometry expected to hold n elements at the
// target false positive rate: m = -n ln(fpr) / (ln 2)^2, rounded up to whole
// bytes.
func SizingFor(n uint64, fpr float64) (Params, error) {
	if n == 0 || fpr <= 0 || fpr >= 1 {
		return Params{}, ErrBadParams
	}
	m := math.Ceil(-float64(n) * math.Log(fpr) / (math.Ln2 * math.Ln2))
	if m > float64(math.MaxUint32-7) {
		return Params{}, ErrBadParams
	}
	bits := (uint32(m) + 7) &^ 7
	return Params{Bits: bits, K: OptimalK(bits, n)}, nil
}
