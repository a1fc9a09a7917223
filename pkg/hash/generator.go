package hash

// Generator is an online hash: zero or more Update calls followed by one
// Finalize. Feeding the same bytes in any chunking yields the same Value.
//
// A Generator is not safe for concurrent use.
type Generator struct {
	scheme Scheme
	st     state
}

// New returns an empty generator for the given scheme.
func New(scheme Scheme) *Generator {
	return &Generator{scheme: scheme, st: scheme.newState()}
}

// NewDefault returns an empty MD5 generator.
func NewDefault() *Generator {
	return New(MD5)
}

// Update appends p to the accumulated input and returns g for chaining.
func (g *Generator) Update(p []byte) *Generator {
	g.st.write(p)
	return g
}

// UpdateString is Update for strings.
func (g *Generator) UpdateString(s string) *Generator {
	return g.Update([]byte(s))
}

// Write implements io.Writer. It never fails.
func (g *Generator) Write(p []byte) (int, error) {
	g.st.write(p)
	return len(p), nil
}

// Finalize returns the hash of everything fed since the last reset and resets
// the generator for reuse.
func (g *Generator) Finalize() Value {
	v := g.st.sum()
	g.st.reset()
	return v
}

// Peek returns the current hash without resetting.
func (g *Generator) Peek() Value {
	return g.st.sum()
}

// Reset discards accumulated input.
func (g *Generator) Reset() {
	g.st.reset()
}

// Clone returns an independent generator holding the same accumulated input.
func (g *Generator) Clone() *Generator {
	return &Generator{scheme: g.scheme, st: g.st.clone()}
}

func (g *Generator) Scheme() Scheme {
	return g.scheme
}

// Entropy estimates the min-entropy in bits of the generator's output.
func (g *Generator) Entropy() float64 {
	return g.scheme.Entropy()
}

// Sum hashes the concatenation of chunks.
func Sum(scheme Scheme, chunks ...[]byte) Value {
	g := New(scheme)
	for _, c := range chunks {
		g.Update(c)
	}
	return g.Finalize()
}

// SumString hashes s with the given scheme.
func SumString(scheme Scheme, s string) Value {
	return Sum(scheme, []byte(s))
}
