package wire

import (
	"github.com/pkg/errors"
)

// SeqType identifies what a Sequence value encodes.
type SeqType int

const (
	AbsoluteTimelock SeqType = iota
	RelativeTimelock
	ReplaceByFee
)

const (
	// DefaultTxSequence is the sequence value used when no timelock or RBF
	// signaling is wanted.
	DefaultTxSequence uint32 = 0xffffffff

	// EmptyTxSequence is written for inputs whose sequence number should be
	// excluded from a signature digest (SIGHASH_NONE/SIGHASH_SINGLE).
	EmptyTxSequence uint32 = 0x00000000

	// AbsoluteTimelockSequence disables replace-by-fee via sequence while
	// enabling the transaction's locktime field.
	AbsoluteTimelockSequence uint32 = 0xfffffffe

	// ReplaceByFeeSequence signals BIP-125 opt-in replace-by-fee.
	ReplaceByFeeSequence uint32 = 0xfffffffd

	// sequenceLockTimeIsSeconds is bit 22: when set, a relative timelock's
	// value is in units of 512 seconds instead of block height.
	sequenceLockTimeIsSeconds = 1 << 22

	// sequenceLockTimeMask extracts the relative timelock value.
	sequenceLockTimeMask = 0x0000ffff
)

// ErrSequenceOutOfRange means a relative timelock value fell outside
// [1, 65535].
var ErrSequenceOutOfRange = errors.New("Sequence Out Of Range")

// ErrRbfInScript means Sequence.ForScript was called on a replace-by-fee
// sequence, which has no script-level representation.
var ErrRbfInScript = errors.New("RBF sequence has no script representation")

// Sequence derives the 4 wire bytes (or script-level integer) for a
// transaction input's sequence field from a semantic timelock/RBF
// specification.
type Sequence struct {
	Type        SeqType
	Value       uint32
	IsBlockType bool // for RelativeTimelock: true = block-height units
}

// NewAbsoluteTimelockSequence builds a Sequence signaling an absolute
// (nLockTime) timelock.
func NewAbsoluteTimelockSequence() Sequence {
	return Sequence{Type: AbsoluteTimelock}
}

// NewReplaceByFeeSequence builds a Sequence signaling BIP-125 opt-in RBF.
func NewReplaceByFeeSequence() Sequence {
	return Sequence{Type: ReplaceByFee}
}

// NewRelativeTimelockSequence builds a Sequence for a BIP-68 relative
// timelock. value must be in [1, 65535].
func NewRelativeTimelockSequence(value uint32, isBlockType bool) (Sequence, error) {
	if value < 1 || value > 0xffff {
		return Sequence{}, errors.Wrapf(ErrSequenceOutOfRange, "value %d", value)
	}
	return Sequence{Type: RelativeTimelock, Value: value, IsBlockType: isBlockType}, nil
}

// ForInputSequence returns the uint32 that TxInput.Sequence should hold,
// written little-endian on the wire, for this Sequence.
func (s Sequence) ForInputSequence() uint32 {
	switch s.Type {
	case AbsoluteTimelock:
		return AbsoluteTimelockSequence
	case ReplaceByFee:
		return ReplaceByFeeSequence
	case RelativeTimelock:
		raw := s.Value & sequenceLockTimeMask
		if !s.IsBlockType {
			raw |= sequenceLockTimeIsSeconds
		}
		return raw
	default:
		return DefaultTxSequence
	}
}

// ForScript returns the integer a script would push for this Sequence.
// Replace-by-fee has no script-level representation.
func (s Sequence) ForScript() (int64, error) {
	if s.Type == ReplaceByFee {
		return 0, ErrRbfInScript
	}

	value := int64(s.Value)
	if s.Type == RelativeTimelock && !s.IsBlockType {
		value |= sequenceLockTimeIsSeconds
	}
	return value, nil
}

// DefaultTxLockTime is the locktime value used when no absolute timelock
// is wanted: the transaction is valid for inclusion in any block.
const DefaultTxLockTime uint32 = 0x00000000

// Locktime derives the 4 wire bytes for a transaction's locktime field
// from a semantic block height or Unix timestamp.
type Locktime struct {
	Value uint32
}

// NewLocktime builds a Locktime from a block height or Unix timestamp.
func NewLocktime(value uint32) Locktime {
	return Locktime{Value: value}
}

// ForTransaction returns the uint32 that Transaction.LockTime should hold,
// written little-endian on the wire, for this Locktime.
func (l Locktime) ForTransaction() uint32 {
	return l.Value
}
