package sighash

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/dcbtc/txdigest/bitcoin"
	"github.com/dcbtc/txdigest/wire"
)

// Cache holds the three whole-transaction field hashes BIP-143 preimages
// share across every input: hashPrevouts, hashSequence, and hashOutputs (for
// the all-outputs case). Reusing a Cache across every input of a
// SIGHASH_ALL transaction turns the naive O(n^2) re-hash into O(n).
//
// A Cache is tied to one immutable transaction snapshot; Clear must be
// called (or a fresh Cache used) after any mutation to the inputs or
// outputs it was built from.
type Cache struct {
	hashPrevouts []byte
	hashSequence []byte
	hashOutputs  []byte
}

// Clear discards all cached field hashes.
func (c *Cache) Clear() {
	c.hashPrevouts = nil
	c.hashSequence = nil
	c.hashOutputs = nil
}

// ClearOutputs discards only the cached outputs hash.
func (c *Cache) ClearOutputs() {
	c.hashOutputs = nil
}

func (c *Cache) prevoutsHash(tx *wire.Transaction) ([]byte, error) {
	if c.hashPrevouts != nil {
		return c.hashPrevouts, nil
	}

	var buf bytes.Buffer
	for _, in := range tx.Inputs {
		if err := writeOutpoint(&buf, in); err != nil {
			return nil, err
		}
	}

	c.hashPrevouts = bitcoin.DoubleSha256(buf.Bytes())
	return c.hashPrevouts, nil
}

func (c *Cache) sequenceHash(tx *wire.Transaction) []byte {
	if c.hashSequence != nil {
		return c.hashSequence
	}

	var buf bytes.Buffer
	for _, in := range tx.Inputs {
		var seqBuf [4]byte
		binary.LittleEndian.PutUint32(seqBuf[:], in.Sequence)
		buf.Write(seqBuf[:])
	}

	c.hashSequence = bitcoin.DoubleSha256(buf.Bytes())
	return c.hashSequence
}

func (c *Cache) outputsHash(tx *wire.Transaction) ([]byte, error) {
	if c.hashOutputs != nil {
		return c.hashOutputs, nil
	}

	var buf bytes.Buffer
	for i, out := range tx.Outputs {
		if err := writeOutputSingleByteScript(&buf, out); err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
	}

	c.hashOutputs = bitcoin.DoubleSha256(buf.Bytes())
	return c.hashOutputs, nil
}

// writeOutpoint writes the reversed txid and little-endian index BIP-143
// commits to for each prevout — the same pair as the wire TxInput prefix,
// but taken straight from the hex txid without the sequence/script fields.
func writeOutpoint(w *bytes.Buffer, in wire.TxInput) error {
	hash, err := bitcoin.NewHash32FromStr(in.TxID)
	if err != nil {
		return errors.Wrap(err, "txid")
	}
	w.Write(hash.Bytes())

	var idxBuf [4]byte
	binary.LittleEndian.PutUint32(idxBuf[:], in.TxOutIndex)
	w.Write(idxBuf[:])
	return nil
}

// writeOutputSingleByteScript writes an output with its script length as a
// single raw byte rather than a VarInt, per §4.8's documented divergence
// from general compact-size encoding (scripts ≥ 253 bytes are unsupported
// on this path).
func writeOutputSingleByteScript(w *bytes.Buffer, out wire.TxOutput) error {
	var amtBuf [8]byte
	binary.LittleEndian.PutUint64(amtBuf[:], uint64(out.Amount))
	w.Write(amtBuf[:])

	script := out.ScriptPubKey.ToBytes()
	if len(script) >= 0xfd {
		return errors.Errorf("script too long for single-byte length: %d", len(script))
	}
	w.WriteByte(byte(len(script)))
	w.Write(script)
	return nil
}

// Digest computes the BIP-143 segwit v0 signature hash for tx's input at
// inputIndex. scriptCode is the witness script (P2WSH) or the BIP-143
// P2PKH-equivalent script (P2WPKH); amount is the prevout's value in
// satoshis. cache may be nil, in which case a fresh, unshared Cache is
// used for this call only.
func SegwitV0Digest(tx *wire.Transaction, inputIndex int, scriptCode bitcoin.Script, amount int64, hashType Type, cache *Cache) ([32]byte, error) {
	var digest [32]byte

	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return digest, errors.Wrapf(ErrInputIndexOutOfRange, "index %d, %d inputs", inputIndex, len(tx.Inputs))
	}

	if cache == nil {
		cache = &Cache{}
	}

	base := hashType.base()
	anyone := hashType.anyOneCanPay()
	signAll := base != Single && base != None

	var zero [32]byte

	var buf bytes.Buffer

	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], tx.Version)
	buf.Write(verBuf[:])

	if anyone {
		buf.Write(zero[:])
	} else {
		h, err := cache.prevoutsHash(tx)
		if err != nil {
			return digest, err
		}
		buf.Write(h)
	}

	if anyone || !signAll {
		buf.Write(zero[:])
	} else {
		buf.Write(cache.sequenceHash(tx))
	}

	in := tx.Inputs[inputIndex]
	if err := writeOutpoint(&buf, in); err != nil {
		return digest, err
	}

	script := scriptCode.ToBytes()
	if len(script) > 0xff {
		return digest, errors.Errorf("script_code too long for single-byte length: %d", len(script))
	}
	buf.WriteByte(byte(len(script)))
	buf.Write(script)

	var amtBuf [8]byte
	binary.LittleEndian.PutUint64(amtBuf[:], uint64(amount))
	buf.Write(amtBuf[:])

	var seqBuf [4]byte
	binary.LittleEndian.PutUint32(seqBuf[:], in.Sequence)
	buf.Write(seqBuf[:])

	switch {
	case signAll:
		h, err := cache.outputsHash(tx)
		if err != nil {
			return digest, err
		}
		buf.Write(h)
	case base == Single && inputIndex < len(tx.Outputs):
		var outBuf bytes.Buffer
		if err := writeOutputSingleByteScript(&outBuf, tx.Outputs[inputIndex]); err != nil {
			return digest, err
		}
		buf.Write(bitcoin.DoubleSha256(outBuf.Bytes()))
	default:
		buf.Write(zero[:])
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
