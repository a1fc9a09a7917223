package set

import (
	"errors"

	"github.com/i5heu/ouroboros-trapdoor/pkg/tag"
)

var (
	// ErrKeyMismatch is tag.ErrKeyMismatch, re-exported so callers of this
	// package can match it without importing tag.
	ErrKeyMismatch = tag.ErrKeyMismatch

	ErrEmptySet     = errors.New("set: remove from an empty set")
	ErrUnsupported  = errors.New("set: operation not supported by this representation")
	ErrBadParams    = errors.New("set: invalid mask parameters")
	ErrParamsDiffer = errors.New("set: mask parameters differ")
)
