// Package registry keeps a small keyed table mapping labels to trapdoor tags.
//
// Every entry is Hash(identity) XOR Hash(secret) XOR magic, where identity is
// either the label itself or the identity of a Go type (see InsertType). Only
// the holder of the secret can add entries or ask what a tag stands for; a
// wrong secret is not an error, queries just report nothing.
//
// # Serialization
//
// Registries round-trip through a line-based text format (see WriteTo). The
// magic bits and the hash scheme are not part of the format and must be
// supplied again as options when reading.
package registry
