package sighash

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/dcbtc/txdigest/bitcoin"
	"github.com/dcbtc/txdigest/wire"
)

const (
	taprootEpoch        byte   = 0x00
	taprootKeyVersion   byte   = 0x00
	codeSeparatorAbsent uint32 = 0xffffffff
)

// taprootOutputType selects which outputs a taproot digest commits to,
// mirroring legacy/segwit-v0's ALL/NONE/SINGLE split in the low two bits of
// the sighash byte (BIP-341 §Common signature message).
type taprootOutputType byte

const (
	taprootOutputAll    taprootOutputType = 0
	taprootOutputAllAlt taprootOutputType = 1
	taprootOutputNone   taprootOutputType = 2
	taprootOutputSingle taprootOutputType = 3
)

// TaprootDigest computes the BIP-341 (key-path, extFlag=0) or BIP-342
// (script-path, extFlag=1) signature hash for tx's input at inputIndex.
//
// prevoutScripts and prevoutAmounts must each have one entry per input of
// tx — the full set of spent outputs is committed to regardless of which
// single input is being signed. tapleafScript and leafVersion are only
// consulted when extFlag is 1; pass leafVersion 0 to use
// LeafVersionTapscript. hashType 0 means SIGHASH_DEFAULT.
func TaprootDigest(
	tx *wire.Transaction,
	inputIndex int,
	prevoutScripts []bitcoin.Script,
	prevoutAmounts []int64,
	extFlag int,
	tapleafScript bitcoin.Script,
	leafVersion byte,
	hashType Type,
) ([32]byte, error) {
	var digest [32]byte

	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return digest, errors.Wrapf(ErrInputIndexOutOfRange, "index %d, %d inputs", inputIndex, len(tx.Inputs))
	}
	if len(prevoutScripts) != len(tx.Inputs) {
		return digest, errors.Wrapf(ErrInputCountMismatch, "prevout scripts: %d, inputs: %d", len(prevoutScripts), len(tx.Inputs))
	}
	if len(prevoutAmounts) != len(tx.Inputs) {
		return digest, errors.Wrapf(ErrInputCountMismatch, "prevout amounts: %d, inputs: %d", len(prevoutAmounts), len(tx.Inputs))
	}

	if leafVersion == 0 {
		leafVersion = LeafVersionTapscript
	}

	outputType := taprootOutputType(hashType & 0x03)
	anyone := hashType&AnyOneCanPay != 0

	var buf bytes.Buffer
	buf.WriteByte(taprootEpoch)
	buf.WriteByte(byte(hashType))

	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], tx.Version)
	buf.Write(verBuf[:])

	var lockBuf [4]byte
	binary.LittleEndian.PutUint32(lockBuf[:], tx.LockTime)
	buf.Write(lockBuf[:])

	if !anyone {
		var outpoints, amounts, scripts, sequences bytes.Buffer
		for k, in := range tx.Inputs {
			if err := writeOutpoint(&outpoints, in); err != nil {
				return digest, errors.Wrapf(err, "input %d outpoint", k)
			}

			var amtBuf [8]byte
			binary.LittleEndian.PutUint64(amtBuf[:], uint64(prevoutAmounts[k]))
			amounts.Write(amtBuf[:])

			scriptBytes := prevoutScripts[k].ToBytes()
			scripts.Write(wire.EncodeVarInt(uint64(len(scriptBytes))))
			scripts.Write(scriptBytes)

			var seqBuf [4]byte
			binary.LittleEndian.PutUint32(seqBuf[:], in.Sequence)
			sequences.Write(seqBuf[:])
		}

		buf.Write(bitcoin.Sha256(outpoints.Bytes()))
		buf.Write(bitcoin.Sha256(amounts.Bytes()))
		buf.Write(bitcoin.Sha256(scripts.Bytes()))
		buf.Write(bitcoin.Sha256(sequences.Bytes()))
	}

	if outputType != taprootOutputNone && outputType != taprootOutputSingle {
		var outputs bytes.Buffer
		for k, out := range tx.Outputs {
			if err := writeOutputSingleByteScript(&outputs, out); err != nil {
				return digest, errors.Wrapf(err, "output %d", k)
			}
		}
		buf.Write(bitcoin.Sha256(outputs.Bytes()))
	}

	spendType := byte(2*extFlag) // annex flag always 0: no annex support.
	buf.WriteByte(spendType)

	if anyone {
		in := tx.Inputs[inputIndex]
		if err := writeOutpoint(&buf, in); err != nil {
			return digest, err
		}

		var amtBuf [8]byte
		binary.LittleEndian.PutUint64(amtBuf[:], uint64(prevoutAmounts[inputIndex]))
		buf.Write(amtBuf[:])

		scriptBytes := prevoutScripts[inputIndex].ToBytes()
		buf.Write(wire.EncodeVarInt(uint64(len(scriptBytes))))
		buf.Write(scriptBytes)

		var seqBuf [4]byte
		binary.LittleEndian.PutUint32(seqBuf[:], in.Sequence)
		buf.Write(seqBuf[:])
	} else {
		var idxBuf [4]byte
		binary.LittleEndian.PutUint32(idxBuf[:], uint32(inputIndex))
		buf.Write(idxBuf[:])
	}

	if outputType == taprootOutputSingle {
		if inputIndex >= len(tx.Outputs) {
			return digest, errors.Wrapf(ErrSighashSingleOutOfRange, "index %d, %d outputs", inputIndex, len(tx.Outputs))
		}
		var outBuf bytes.Buffer
		if err := writeOutputSingleByteScript(&outBuf, tx.Outputs[inputIndex]); err != nil {
			return digest, err
		}
		buf.Write(bitcoin.Sha256(outBuf.Bytes()))
	}

	if extFlag == 1 {
		var leaf bytes.Buffer
		leaf.WriteByte(leafVersion)
		scriptBytes := tapleafScript.ToBytes()
		leaf.Write(wire.EncodeVarInt(uint64(len(scriptBytes))))
		leaf.Write(scriptBytes)
		buf.Write(bitcoin.TaggedHash("TapLeaf", leaf.Bytes()))

		buf.WriteByte(taprootKeyVersion)

		var codeSepBuf [4]byte
		binary.LittleEndian.PutUint32(codeSepBuf[:], codeSeparatorAbsent)
		buf.Write(codeSepBuf[:])
	}

	copy(digest[:], bitcoin.TaggedHash("TapSighash", buf.Bytes()))
	return digest, nil
}
