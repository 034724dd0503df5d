package sighash

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/dcbtc/txdigest/bitcoin"
	"github.com/dcbtc/txdigest/wire"
)

// LegacyDigest computes the pre-segwit signature hash for tx's input at
// inputIndex, using scriptCode as the substituted script_sig (the prevout's
// scriptPubKey, or a redeem script for P2SH).
//
// Rather than materializing a mutated clone of tx, the conditional
// emissions §4.7 describes as input/output substitutions are expressed
// directly as serialization choices while walking the original
// transaction — this produces bit-identical bytes without ever allocating
// a second Transaction.
func LegacyDigest(tx *wire.Transaction, inputIndex int, scriptCode bitcoin.Script, hashType Type) ([32]byte, error) {
	var digest [32]byte

	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return digest, errors.Wrapf(ErrInputIndexOutOfRange, "index %d, %d inputs", inputIndex, len(tx.Inputs))
	}

	base := hashType.base()

	outputs := tx.Outputs
	if base == Single {
		if inputIndex >= len(tx.Outputs) {
			return digest, errors.Wrapf(ErrSighashSingleOutOfRange, "index %d, %d outputs", inputIndex, len(tx.Outputs))
		}
		outputs = make([]wire.TxOutput, inputIndex+1)
		for i := 0; i < inputIndex; i++ {
			outputs[i] = wire.TxOutput{Amount: NegativeSatoshi, ScriptPubKey: nil}
		}
		outputs[inputIndex] = tx.Outputs[inputIndex]
	} else if base == None {
		outputs = nil
	}

	inputs := tx.Inputs
	if hashType.anyOneCanPay() {
		inputs = []wire.TxInput{tx.Inputs[inputIndex]}
	}

	zeroOtherSequences := base == None || base == Single

	var buf bytes.Buffer

	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], tx.Version)
	buf.Write(verBuf[:])

	if err := wire.WriteVarInt(&buf, uint64(len(inputs))); err != nil {
		return digest, err
	}
	for idx, in := range inputs {
		// idx indexes `inputs`, which may be the ANYONECANPAY-restricted
		// single-element slice; originalIdx recovers the position in tx.
		originalIdx := idx
		if hashType.anyOneCanPay() {
			originalIdx = inputIndex
		}

		scriptSig := bitcoin.Script(nil)
		if originalIdx == inputIndex {
			scriptSig = scriptCode
		}

		sequence := in.Sequence
		if originalIdx != inputIndex && zeroOtherSequences {
			sequence = wire.EmptyTxSequence
		}

		mutated := wire.TxInput{
			TxID:       in.TxID,
			TxOutIndex: in.TxOutIndex,
			ScriptSig:  scriptSig,
			Sequence:   sequence,
		}
		if err := mutated.Serialize(&buf); err != nil {
			return digest, errors.Wrapf(err, "input %d", idx)
		}
	}

	if err := wire.WriteVarInt(&buf, uint64(len(outputs))); err != nil {
		return digest, err
	}
	for idx, out := range outputs {
		if err := out.Serialize(&buf); err != nil {
			return digest, errors.Wrapf(err, "output %d", idx)
		}
	}

	var lockBuf [4]byte
	binary.LittleEndian.PutUint32(lockBuf[:], tx.LockTime)
	buf.Write(lockBuf[:])

	var hashTypeBuf [4]byte
	binary.LittleEndian.PutUint32(hashTypeBuf[:], uint32(hashType))
	buf.Write(hashTypeBuf[:])

	copy(digest[:], bitcoin.DoubleSha256(buf.Bytes()))
	return digest, nil
}
