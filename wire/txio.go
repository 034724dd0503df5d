package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/dcbtc/txdigest/bitcoin"
)

// TxInput is a transaction input: an outpoint reference plus the
// unlocking script and sequence number that satisfy it.
type TxInput struct {
	// TxID is the referenced output's transaction id, as hex text in
	// display orientation (reverse of wire order).
	TxID string

	// TxOutIndex is the index of the referenced output.
	TxOutIndex uint32

	// ScriptSig is the unlocking script (may be empty pre-signing).
	ScriptSig bitcoin.Script

	// Sequence is the wire sequence number.
	Sequence uint32
}

// NewTxInput returns a TxInput with the default sequence number.
func NewTxInput(txid string, txOutIndex uint32, scriptSig bitcoin.Script) TxInput {
	return TxInput{
		TxID:       txid,
		TxOutIndex: txOutIndex,
		ScriptSig:  scriptSig,
		Sequence:   DefaultTxSequence,
	}
}

// Copy returns an independent deep copy of the input.
func (in TxInput) Copy() TxInput {
	return TxInput{
		TxID:       in.TxID,
		TxOutIndex: in.TxOutIndex,
		ScriptSig:  in.ScriptSig.Copy(),
		Sequence:   in.Sequence,
	}
}

// SerializeSize returns the number of bytes Serialize would write.
func (in TxInput) SerializeSize() int {
	return bitcoin.Hash32Size + 4 + VarIntSerializeSize(uint64(len(in.ScriptSig))) + len(in.ScriptSig) + 4
}

// Serialize writes the wire encoding of the input to w:
// reversed txid, txout index, VarInt-prefixed script_sig, sequence.
func (in TxInput) Serialize(w io.Writer) error {
	wireHash, err := reversedHashBytes(in.TxID)
	if err != nil {
		return errors.Wrap(err, "txid")
	}
	if _, err := w.Write(wireHash); err != nil {
		return err
	}

	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], in.TxOutIndex)
	if _, err := w.Write(idx[:]); err != nil {
		return err
	}

	if err := WriteVarBytes(w, in.ScriptSig.ToBytes()); err != nil {
		return err
	}

	var seq [4]byte
	binary.LittleEndian.PutUint32(seq[:], in.Sequence)
	_, err = w.Write(seq[:])
	return err
}

// ParseTxInput reads a TxInput from r.
func ParseTxInput(r io.Reader) (TxInput, error) {
	var hashBuf [bitcoin.Hash32Size]byte
	if _, err := io.ReadFull(r, hashBuf[:]); err != nil {
		return TxInput{}, errors.Wrap(ErrTruncatedTransaction, "txid: "+err.Error())
	}

	var idxBuf [4]byte
	if _, err := io.ReadFull(r, idxBuf[:]); err != nil {
		return TxInput{}, errors.Wrap(ErrTruncatedTransaction, "txout index: "+err.Error())
	}

	scriptBytes, err := ReadVarBytes(r)
	if err != nil {
		return TxInput{}, errors.Wrap(err, "script_sig")
	}

	var seqBuf [4]byte
	if _, err := io.ReadFull(r, seqBuf[:]); err != nil {
		return TxInput{}, errors.Wrap(ErrTruncatedTransaction, "sequence: "+err.Error())
	}

	return TxInput{
		TxID:       displayHashString(hashBuf[:]),
		TxOutIndex: binary.LittleEndian.Uint32(idxBuf[:]),
		ScriptSig:  bitcoin.ScriptFromBytes(scriptBytes, false),
		Sequence:   binary.LittleEndian.Uint32(seqBuf[:]),
	}, nil
}

// TxOutput is a transaction output: an amount and the locking script that
// must be satisfied to spend it.
type TxOutput struct {
	// Amount is signed because SIGHASH_SINGLE placeholder outputs use -1;
	// real outputs are always non-negative.
	Amount int64

	ScriptPubKey bitcoin.Script
}

// NewTxOutput returns a new TxOutput.
func NewTxOutput(amount int64, scriptPubKey bitcoin.Script) TxOutput {
	return TxOutput{Amount: amount, ScriptPubKey: scriptPubKey}
}

// Copy returns an independent deep copy of the output.
func (out TxOutput) Copy() TxOutput {
	return TxOutput{Amount: out.Amount, ScriptPubKey: out.ScriptPubKey.Copy()}
}

// SerializeSize returns the number of bytes Serialize would write.
func (out TxOutput) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(out.ScriptPubKey))) + len(out.ScriptPubKey)
}

// Serialize writes the wire encoding of the output to w: amount as an
// 8-byte little-endian signed integer, then the VarInt-prefixed script.
func (out TxOutput) Serialize(w io.Writer) error {
	var amt [8]byte
	binary.LittleEndian.PutUint64(amt[:], uint64(out.Amount))
	if _, err := w.Write(amt[:]); err != nil {
		return err
	}

	return WriteVarBytes(w, out.ScriptPubKey.ToBytes())
}

// ParseTxOutput reads a TxOutput from r.
func ParseTxOutput(r io.Reader) (TxOutput, error) {
	var amtBuf [8]byte
	if _, err := io.ReadFull(r, amtBuf[:]); err != nil {
		return TxOutput{}, errors.Wrap(ErrTruncatedTransaction, "amount: "+err.Error())
	}

	scriptBytes, err := ReadVarBytes(r)
	if err != nil {
		return TxOutput{}, errors.Wrap(err, "script_pubkey")
	}

	return TxOutput{
		Amount:       int64(binary.LittleEndian.Uint64(amtBuf[:])),
		ScriptPubKey: bitcoin.ScriptFromBytes(scriptBytes, false),
	}, nil
}

// TxWitness is the ordered stack of data pushes satisfying a segwit
// input's witness program.
type TxWitness struct {
	Stack [][]byte
}

// NewTxWitness returns a TxWitness wrapping the given stack.
func NewTxWitness(stack ...[]byte) TxWitness {
	return TxWitness{Stack: stack}
}

// Copy returns an independent deep copy of the witness.
func (w TxWitness) Copy() TxWitness {
	stack := make([][]byte, len(w.Stack))
	for i, item := range w.Stack {
		stack[i] = append([]byte(nil), item...)
	}
	return TxWitness{Stack: stack}
}

// Serialize writes the witness stack items (each VarInt-length-prefixed)
// to w. It does NOT write the leading item-count byte — callers writing a
// full transaction witness section are responsible for that single byte
// (spec §4.5): the count is capped at 255 and is not itself a VarInt.
func (wit TxWitness) Serialize(w io.Writer) error {
	for _, item := range wit.Stack {
		if err := WriteVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}

// ParseTxWitness reads itemCount stack items from r.
func ParseTxWitness(r io.Reader, itemCount int) (TxWitness, error) {
	stack := make([][]byte, itemCount)
	for i := 0; i < itemCount; i++ {
		item, err := ReadVarBytes(r)
		if err != nil {
			return TxWitness{}, errors.Wrapf(err, "witness item %d", i)
		}
		stack[i] = item
	}
	return TxWitness{Stack: stack}, nil
}

// reversedHashBytes decodes display-orientation hex txid text into wire
// (reversed) byte order.
func reversedHashBytes(txid string) ([]byte, error) {
	hash, err := bitcoin.NewHash32FromStr(txid)
	if err != nil {
		return nil, err
	}
	return hash.Bytes(), nil
}

// displayHashString converts wire-order hash bytes into display-order hex
// text.
func displayHashString(wireBytes []byte) string {
	var h bitcoin.Hash32
	copy(h[:], wireBytes)
	return h.String()
}
