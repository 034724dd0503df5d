// Package sighash computes the signature digest preimages for the three
// signing algorithms standardized on the Bitcoin network: legacy
// (pre-segwit) ECDSA, segwit v0 (BIP-143), and taproot/tapscript
// (BIP-341/342). It never produces a signature itself — that is an
// external collaborator's concern — only the 32 bytes a signer hashes and
// signs.
package sighash

import "github.com/dcbtc/txdigest/wire"

// Type is the SIGHASH byte (or, for taproot, the low bits of it) that
// selects which inputs and outputs a digest commits to.
type Type uint32

const (
	// All signs every input and every output.
	All Type = 0x1

	// None signs every input and no outputs.
	None Type = 0x2

	// Single signs every input and only the output at the signing input's
	// index.
	Single Type = 0x3

	// AnyOneCanPay, combined with one of the above, restricts the digest to
	// the single input being signed.
	AnyOneCanPay Type = 0x80

	// baseMask isolates the All/None/Single selector from AnyOneCanPay.
	baseMask = 0x1f
)

// TaprootAll is the taproot SIGHASH_DEFAULT byte value, which behaves like
// All but is its own distinct digest because the committed sighash byte
// differs.
const TaprootAll Type = 0x0

// LeafVersionTapscript is the BIP-342 tapscript leaf version.
const LeafVersionTapscript byte = 0xc0

// Wire constants a caller assembles transactions with; re-exported here so
// callers of this package need not also import wire for them.
const (
	DefaultTxVersion  = wire.DefaultTxVersion
	DefaultTxLocktime = wire.DefaultTxLockTime
	DefaultTxSequence = wire.DefaultTxSequence
	EmptyTxSequence   = wire.EmptyTxSequence

	// NegativeSatoshi is the placeholder amount SIGHASH_SINGLE legacy
	// digests give to every output before the signed index.
	NegativeSatoshi int64 = -1
)

func (t Type) base() Type {
	return t & baseMask
}

func (t Type) anyOneCanPay() bool {
	return t&AnyOneCanPay != 0
}
