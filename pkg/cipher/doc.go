// Package cipher wraps trapdoor representations behind one opaque value type.
//
// A Cipher[T] exposes only its nominal error rates, its size, diagnostic
// metadata and TryConvert, which recovers the plaintext when the secret is
// right and the underlying model is reversible. The models are:
//
//	NewBool        reversible cipher bool
//	NewTrapdoor    one-way tag of any encodable value
//	NewMembership  element-in-mask-set query, answered with the secret
//	               (NewMembershipWith for non-default schemes)
//	And, Or, Not   Boolean expressions over cipher bools
package cipher
