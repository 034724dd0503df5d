package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/dcbtc/txdigest/bitcoin"
)

const (
	// DefaultTxVersion is the version field most transactions use.
	DefaultTxVersion uint32 = 2

	// segwitMarker and segwitFlag are the two bytes inserted between the
	// version and the input count for a transaction that carries a
	// witness section (BIP-144).
	segwitMarker byte = 0x00
	segwitFlag   byte = 0x01
)

// Transaction is a full Bitcoin transaction: a version, an input list, an
// output list, an optional per-input witness list, and a locktime.
//
// HasSegwit is set when the transaction was parsed with a witness section,
// or when it is deliberately constructed to carry one; it controls whether
// Serialize emits the BIP-144 marker/flag/witness bytes.
type Transaction struct {
	Version   uint32
	Inputs    []TxInput
	Outputs   []TxOutput
	Witnesses []TxWitness
	LockTime  uint32
	HasSegwit bool
}

// NewTransaction returns an empty Transaction with the default version and
// locktime.
func NewTransaction() *Transaction {
	return &Transaction{
		Version:  DefaultTxVersion,
		LockTime: DefaultTxLockTime,
	}
}

// Copy returns an independent deep copy of the transaction.
func (tx *Transaction) Copy() *Transaction {
	cp := &Transaction{
		Version:   tx.Version,
		Inputs:    make([]TxInput, len(tx.Inputs)),
		Outputs:   make([]TxOutput, len(tx.Outputs)),
		Witnesses: make([]TxWitness, len(tx.Witnesses)),
		LockTime:  tx.LockTime,
		HasSegwit: tx.HasSegwit,
	}
	for i, in := range tx.Inputs {
		cp.Inputs[i] = in.Copy()
	}
	for i, out := range tx.Outputs {
		cp.Outputs[i] = out.Copy()
	}
	for i, w := range tx.Witnesses {
		cp.Witnesses[i] = w.Copy()
	}
	return cp
}

// hasWitnessData returns true if any input has a non-empty witness, which
// forces HasSegwit serialization even if the flag was never set explicitly.
func (tx *Transaction) hasWitnessData() bool {
	for _, w := range tx.Witnesses {
		if len(w.Stack) > 0 {
			return true
		}
	}
	return false
}

// Serialize writes the transaction's wire encoding to w. When includeWitness
// is true and the transaction carries witness data, the BIP-144 extended
// format (marker, flag, per-input witnesses) is used; otherwise the legacy
// format is written, which is also what feeds the legacy and segwit v0
// digest algorithms' base-transaction bytes.
func (tx *Transaction) Serialize(w io.Writer, includeWitness bool) error {
	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], tx.Version)
	if _, err := w.Write(verBuf[:]); err != nil {
		return err
	}

	witness := includeWitness && (tx.HasSegwit || tx.hasWitnessData())
	if witness {
		if _, err := w.Write([]byte{segwitMarker, segwitFlag}); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(tx.Inputs))); err != nil {
		return errors.Wrap(err, "input count")
	}
	for i, in := range tx.Inputs {
		if err := in.Serialize(w); err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
	}

	if err := WriteVarInt(w, uint64(len(tx.Outputs))); err != nil {
		return errors.Wrap(err, "output count")
	}
	for i, out := range tx.Outputs {
		if err := out.Serialize(w); err != nil {
			return errors.Wrapf(err, "output %d", i)
		}
	}

	if witness {
		// The per-input witness item COUNT is written as a single raw byte,
		// not a VarInt (spec §4.5): a witness stack is capped at 255 items.
		for i := range tx.Inputs {
			var stack TxWitness
			if i < len(tx.Witnesses) {
				stack = tx.Witnesses[i]
			}
			if len(stack.Stack) > 0xff {
				return errors.Wrapf(ErrTruncatedTransaction, "witness %d: too many items (%d)", i, len(stack.Stack))
			}
			if _, err := w.Write([]byte{byte(len(stack.Stack))}); err != nil {
				return err
			}
			if err := stack.Serialize(w); err != nil {
				return errors.Wrapf(err, "witness %d", i)
			}
		}
	}

	var lockBuf [4]byte
	binary.LittleEndian.PutUint32(lockBuf[:], tx.LockTime)
	_, err := w.Write(lockBuf[:])
	return err
}

// ParseTransaction reads a Transaction from r, detecting the BIP-144
// marker/flag bytes to determine whether a witness section follows.
func ParseTransaction(r io.Reader) (*Transaction, error) {
	tx := &Transaction{}

	var verBuf [4]byte
	if _, err := io.ReadFull(r, verBuf[:]); err != nil {
		return nil, errors.Wrap(ErrTruncatedTransaction, "version: "+err.Error())
	}
	tx.Version = binary.LittleEndian.Uint32(verBuf[:])

	inputCount, err := ReadVarInt(r)
	if err != nil {
		return nil, errors.Wrap(err, "input count")
	}

	if inputCount == 0 {
		// A zero input count can only mean the next byte is the segwit flag
		// (spec §4.5): a legacy transaction must have at least one input.
		var flagBuf [1]byte
		if _, err := io.ReadFull(r, flagBuf[:]); err != nil {
			return nil, errors.Wrap(ErrTruncatedTransaction, "segwit flag: "+err.Error())
		}
		if flagBuf[0] != segwitFlag {
			return nil, errors.Errorf("unexpected segwit flag 0x%02x", flagBuf[0])
		}
		tx.HasSegwit = true

		inputCount, err = ReadVarInt(r)
		if err != nil {
			return nil, errors.Wrap(err, "input count after segwit flag")
		}
	}

	tx.Inputs = make([]TxInput, inputCount)
	for i := range tx.Inputs {
		in, err := ParseTxInput(r)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		tx.Inputs[i] = in
	}

	outputCount, err := ReadVarInt(r)
	if err != nil {
		return nil, errors.Wrap(err, "output count")
	}
	tx.Outputs = make([]TxOutput, outputCount)
	for i := range tx.Outputs {
		out, err := ParseTxOutput(r)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
		tx.Outputs[i] = out
	}

	if tx.HasSegwit {
		tx.Witnesses = make([]TxWitness, len(tx.Inputs))
		for i := range tx.Inputs {
			var countBuf [1]byte
			if _, err := io.ReadFull(r, countBuf[:]); err != nil {
				return nil, errors.Wrapf(ErrTruncatedTransaction, "witness %d count: %s", i, err.Error())
			}
			wit, err := ParseTxWitness(r, int(countBuf[0]))
			if err != nil {
				return nil, errors.Wrapf(err, "witness %d", i)
			}
			tx.Witnesses[i] = wit
		}
	}

	var lockBuf [4]byte
	if _, err := io.ReadFull(r, lockBuf[:]); err != nil {
		return nil, errors.Wrap(ErrTruncatedTransaction, "locktime: "+err.Error())
	}
	tx.LockTime = binary.LittleEndian.Uint32(lockBuf[:])

	return tx, nil
}

// ToBytes returns the transaction's wire encoding, including witness data
// if present.
func (tx *Transaction) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// legacyBytes returns the transaction's wire encoding with witness data
// always excluded — the input to TxID and the base size in VSize.
func (tx *Transaction) legacyBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TxID returns the transaction id: the double-SHA-256 of the non-witness
// serialization, in display (reversed) hex order.
//
// DoubleSha256's raw output is already in wire (internal) byte order — the
// same order Hash32 stores and the same order a TxInput.TxID field must be
// reversed FROM when it is later read back as display hex — so it is handed
// to displayHashString directly, with no extra reversal.
func (tx *Transaction) TxID() (string, error) {
	raw, err := tx.legacyBytes()
	if err != nil {
		return "", err
	}
	return displayHashString(bitcoin.DoubleSha256(raw)), nil
}

// WTxID returns the witness transaction id: the double-SHA-256 of the full
// (witness-included) serialization, in display (reversed) hex order. For a
// transaction with no witness data, WTxID equals TxID.
func (tx *Transaction) WTxID() (string, error) {
	raw, err := tx.ToBytes()
	if err != nil {
		return "", err
	}
	return displayHashString(bitcoin.DoubleSha256(raw)), nil
}

// Size returns the serialized size in bytes, including witness data if
// present.
func (tx *Transaction) Size() (int, error) {
	raw, err := tx.ToBytes()
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// VSize returns the virtual size in vbytes: weight divided by 4, rounded
// up. Weight is (non-witness bytes * 3) + total bytes, per BIP-141.
func (tx *Transaction) VSize() (int, error) {
	full, err := tx.ToBytes()
	if err != nil {
		return 0, err
	}
	base, err := tx.legacyBytes()
	if err != nil {
		return 0, err
	}

	weight := len(base)*3 + len(full)
	return (weight + 3) / 4, nil
}
