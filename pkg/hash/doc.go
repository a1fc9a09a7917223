// Package hash provides the fixed-width hash values and online hash
// generators that trapdoor tags are built from.
//
// A Value is a 128-bit string that supports byte-wise XOR, AND and OR, which
// makes the set of values a commutative ring with Zero and Ones as the
// distinguished elements. Values are only produced by a Generator (or parsed
// back from their hexadecimal and decimal encodings).
//
// A Generator accumulates input incrementally:
//
//	g := hash.New(hash.MD5)
//	g.Update(x).Update(y)
//	v := g.Finalize() // equal to hash.Sum(hash.MD5, append(x, y...))
//
// Finalize resets the generator, so one instance can be reused. The
// supported schemes form a closed set (MD5, BLAKE2b, SHAKE128); all of them
// produce 128-bit values so tags built with any of them are the same shape.
package hash
