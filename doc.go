// Package trapdoor persists trapdoor registries and set tags in BadgerDB.
//
// A registry is saved as a snapshot: its text serialization is compressed
// with zstd and split into Reed-Solomon slices, each stored with an xxhash
// checksum. Loading tolerates up to RSParitySlices missing or corrupt slices
// and verifies the rebuilt snapshot against the checksum taken at save time.
//
// The keyed primitives themselves live in pkg/hash, pkg/tag, pkg/set,
// pkg/registry and pkg/cipher and do not depend on this package.
package trapdoor
