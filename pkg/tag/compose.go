package tag

import "github.com/i5heu/ouroboros-trapdoor/pkg/hash"

const (
	productOpen  = "(product "
	productClose = ")"
)

// Product tags the ordered pair (a, b). Only the primitives are ciphered; the
// product structure is fixed by the markers around the component values.
func (m Maker) Product(a, b Tag) (Tag, error) {
	if err := CheckKeys(a.Key, b.Key); err != nil {
		return Tag{}, err
	}
	v := hash.New(m.scheme).
		UpdateString(productOpen).
		Update(a.Value[:]).
		Update(b.Value[:]).
		UpdateString(productClose).
		Finalize()
	return Tag{Value: v, Key: a.Key}, nil
}

// Sum tags a commingled sum type as the bitwise OR of the component values.
func (m Maker) Sum(a, b Tag) (Tag, error) {
	if err := CheckKeys(a.Key, b.Key); err != nil {
		return Tag{}, err
	}
	return Tag{Value: a.Value.Or(b.Value), Key: a.Key}, nil
}

// Product uses the default scheme.
func Product(a, b Tag) (Tag, error) {
	return Default.Product(a, b)
}

// Sum uses the default scheme.
func Sum(a, b Tag) (Tag, error) {
	return Default.Sum(a, b)
}
