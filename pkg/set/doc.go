// Package set builds trapdoors for sets of tagged values.
//
// Two representations are offered:
//
//   - SetTag folds member values with XOR. It is compact (one hash value plus a
//     counter) and supports disjoint union, insert, remove and an exact
//     singleton check, but no intersection.
//   - MaskSet spreads each member over K bits of a fixed-size bitmask. It
//     supports union, intersection, complement and approximate membership,
//     but not removal.
//
// Every operation checks that its operands were built under the same secret
// and fails with ErrKeyMismatch otherwise.
package set
