package sighash

import "github.com/pkg/errors"

// Sentinel errors returned by the digest algorithms. Wrapped with
// github.com/pkg/errors at call sites to add context.
var (
	// ErrSighashSingleOutOfRange means the legacy algorithm was asked to
	// sign SIGHASH_SINGLE for an input index with no matching output.
	ErrSighashSingleOutOfRange = errors.New("SIGHASH_SINGLE input index out of range")

	// ErrInputCountMismatch means a slice argument expected to have one
	// entry per transaction input did not.
	ErrInputCountMismatch = errors.New("input count mismatch")

	// ErrInputIndexOutOfRange means the requested input index does not
	// exist in the transaction.
	ErrInputIndexOutOfRange = errors.New("input index out of range")
)
