// Package tag builds keyed trapdoor tags: pseudorandom pairs
// {Value, Key} that let holders compare plaintext values for equality
// without revealing them to anyone who lacks the secret.
//
// Tags built under different secrets are incomparable by definition; Equal
// reports false for them even when the value halves coincide.
package tag
