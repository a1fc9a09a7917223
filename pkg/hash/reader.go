package hash

import (
	"fmt"
	"io"

	chunker "github.com/ipfs/boxo/chunker"
)

// HashReader feeds r into g in content-defined Buzhash chunks and returns the
// number of bytes consumed. g is not finalized.
func HashReader(g *Generator, r io.Reader) (int64, error) {
	bz := chunker.NewBuzhash(r)

	var total int64
	for {
		chunk, err := bz.NextBytes()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("hash: reading chunk: %w", err)
		}
		g.Update(chunk)
		total += int64(len(chunk))
	}
	return total, nil
}

// SumReader hashes everything read from r.
func SumReader(scheme Scheme, r io.Reader) (Value, error) {
	g := New(scheme)
	if _, err := HashReader(g, r); err != nil {
		return Value{}, err
	}
	return g.Finalize(), nil
}
