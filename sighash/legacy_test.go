package sighash

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/dcbtc/txdigest/bitcoin"
	"github.com/dcbtc/txdigest/wire"
)

func sampleTx() *wire.Transaction {
	return &wire.Transaction{
		Version: 1,
		Inputs: []wire.TxInput{
			wire.NewTxInput(strings.Repeat("00", 32), 0, bitcoin.NewScript(nil)),
			wire.NewTxInput(strings.Repeat("11", 32), 1, bitcoin.NewScript(nil)),
		},
		Outputs: []wire.TxOutput{
			wire.NewTxOutput(50000, bitcoin.NewScript([]byte{0x76, 0xa9, 0x14})),
			wire.NewTxOutput(25000, bitcoin.NewScript([]byte{0x76, 0xa9, 0x15})),
		},
		LockTime: 0,
	}
}

func TestLegacyDigestDeterministic(t *testing.T) {
	tx := sampleTx()
	scriptCode := bitcoin.NewScript([]byte{0x76, 0xa9, 0x14, 0x01, 0x02, 0x88, 0xac})

	a, err := LegacyDigest(tx, 0, scriptCode, All)
	if err != nil {
		t.Fatalf("unexpected error : %s", err)
	}
	b, err := LegacyDigest(tx, 0, scriptCode, All)
	if err != nil {
		t.Fatalf("unexpected error : %s", err)
	}
	if a != b {
		t.Fatal("digest is not deterministic for identical inputs")
	}
}

func TestLegacyDigestVariesBySighashFlag(t *testing.T) {
	tx := sampleTx()
	scriptCode := bitcoin.NewScript([]byte{0x76, 0xa9, 0x14})

	all, err := LegacyDigest(tx, 0, scriptCode, All)
	if err != nil {
		t.Fatalf("unexpected error : %s", err)
	}
	none, err := LegacyDigest(tx, 0, scriptCode, None)
	if err != nil {
		t.Fatalf("unexpected error : %s", err)
	}
	single, err := LegacyDigest(tx, 0, scriptCode, Single)
	if err != nil {
		t.Fatalf("unexpected error : %s", err)
	}
	anyoneAll, err := LegacyDigest(tx, 0, scriptCode, All|AnyOneCanPay)
	if err != nil {
		t.Fatalf("unexpected error : %s", err)
	}

	digests := [][32]byte{all, none, single, anyoneAll}
	for i := range digests {
		for j := i + 1; j < len(digests); j++ {
			if digests[i] == digests[j] {
				t.Fatalf("digest %d and %d unexpectedly equal", i, j)
			}
		}
	}
}

func TestLegacyDigestSighashSingleOutOfRange(t *testing.T) {
	tx := sampleTx() // 2 outputs
	tx.Inputs = append(tx.Inputs, wire.NewTxInput(strings.Repeat("22", 32), 2, bitcoin.NewScript(nil)))
	scriptCode := bitcoin.NewScript([]byte{0x76, 0xa9, 0x14})

	// input index 2 has no matching output (only indices 0 and 1 exist).
	_, err := LegacyDigest(tx, 2, scriptCode, Single)
	if err == nil {
		t.Fatal("expected SIGHASH_SINGLE out-of-range error")
	}
}

func TestLegacyDigestSighashSingleInRange(t *testing.T) {
	tx := sampleTx()
	scriptCode := bitcoin.NewScript([]byte{0x76, 0xa9, 0x14})

	if _, err := LegacyDigest(tx, 1, scriptCode, Single); err != nil {
		t.Fatalf("unexpected error for in-range SIGHASH_SINGLE : %s", err)
	}
}

func TestLegacyDigestInputIndexOutOfRange(t *testing.T) {
	tx := sampleTx()
	scriptCode := bitcoin.NewScript(nil)

	if _, err := LegacyDigest(tx, 5, scriptCode, All); err == nil {
		t.Fatal("expected error for out-of-range input index")
	}
}

// TestLegacyDigestMatchesHandBuiltPreimage independently reconstructs the
// §4.7 preimage byte-for-byte — without calling TxInput.Serialize or
// TxOutput.Serialize — and checks LegacyDigest against DoubleSha256 of
// that independently-built buffer. This catches field-order, width, or
// endianness regressions in the digest's own serialization path that a
// determinism-only test (two identical calls compared to each other)
// cannot: both calls would still agree with each other even if every
// field were silently byte-swapped.
func TestLegacyDigestMatchesHandBuiltPreimage(t *testing.T) {
	pkHash := make([]byte, 20)
	for i := range pkHash {
		pkHash[i] = byte(i)
	}
	script := append([]byte{0x76, 0xa9, 0x14}, pkHash...)
	script = append(script, 0x88, 0xac)

	tx := &wire.Transaction{
		Version: 1,
		Inputs: []wire.TxInput{
			wire.NewTxInput(strings.Repeat("00", 32), 0, bitcoin.NewScript(nil)),
		},
		Outputs: []wire.TxOutput{
			wire.NewTxOutput(50000, bitcoin.NewScript(script)),
		},
		LockTime: 0,
	}
	scriptCode := bitcoin.NewScript(script)

	var want bytes.Buffer
	want.Write([]byte{0x01, 0x00, 0x00, 0x00}) // version
	want.WriteByte(0x01)                       // input count
	want.Write(make([]byte, 32))               // reversed all-zero txid
	want.Write([]byte{0x00, 0x00, 0x00, 0x00}) // txout index
	want.WriteByte(byte(len(script)))           // scriptSig length (< 0xfd: 1 byte)
	want.Write(script)                         // scriptSig == scriptCode
	want.Write([]byte{0xff, 0xff, 0xff, 0xff}) // sequence
	want.WriteByte(0x01)                       // output count
	var amt [8]byte
	binary.LittleEndian.PutUint64(amt[:], 50000)
	want.Write(amt[:])                         // amount
	want.WriteByte(byte(len(script)))           // scriptPubKey length
	want.Write(script)                         // scriptPubKey
	want.Write([]byte{0x00, 0x00, 0x00, 0x00}) // locktime
	want.Write([]byte{0x01, 0x00, 0x00, 0x00}) // hashtype (SIGHASH_ALL)

	wantDigest := bitcoin.DoubleSha256(want.Bytes())

	got, err := LegacyDigest(tx, 0, scriptCode, All)
	if err != nil {
		t.Fatalf("unexpected error : %s", err)
	}
	if !bytes.Equal(got[:], wantDigest) {
		t.Fatalf("digest does not match hand-built preimage\ngot:  %x\nwant: %x", got, wantDigest)
	}
}
