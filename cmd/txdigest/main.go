// Command txdigest is a demonstration CLI over the digest engine: it
// parses a raw transaction hex string and either logs the txid, wtxid,
// size and vsize (inspect) or prints the signature digest for the
// input/script/amount/sighash combination given on the command line
// (legacy, segwitv0). The taproot digest has no subcommand.
package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/tokenized/config"
	"github.com/tokenized/logger"

	"github.com/pkg/errors"

	"github.com/dcbtc/txdigest/bitcoin"
	"github.com/dcbtc/txdigest/sighash"
	"github.com/dcbtc/txdigest/wire"
)

// Config holds the environment-driven settings for the CLI. Neither field
// changes the digest math; they only affect what the process prints.
type Config struct {
	Verbose         bool `default:"false" envconfig:"VERBOSE" json:"verbose"`
	DevelopmentText bool `default:"true" envconfig:"DEVELOPMENT_TEXT" json:"development_text"`
}

func main() {
	ctx := logger.ContextWithLogger(context.Background(), true, true, "")

	cfg := &Config{}
	if err := config.LoadConfig(ctx, cfg); err != nil {
		logger.Fatal(ctx, "Failed to load config : %s", err)
	}

	if len(os.Args) < 3 {
		logger.Fatal(ctx, "Not enough arguments. Need command and raw tx hex (inspect|legacy|segwitv0)")
	}

	switch os.Args[1] {
	case "inspect":
		Inspect(ctx, os.Args[2:])
	case "legacy":
		Legacy(ctx, os.Args[2:])
	case "segwitv0":
		SegwitV0(ctx, os.Args[2:])
	default:
		logger.Fatal(ctx, "Unknown command : %s", os.Args[1])
	}
}

// Inspect parses a raw transaction and prints its identifiers and sizes.
// Parameters: <raw tx hex>
func Inspect(ctx context.Context, args []string) {
	tx, err := parseTxArg(args, 0)
	if err != nil {
		logger.Fatal(ctx, "Invalid transaction : %s", err)
	}

	txid, err := tx.TxID()
	if err != nil {
		logger.Fatal(ctx, "Failed to compute txid : %s", err)
	}
	wtxid, err := tx.WTxID()
	if err != nil {
		logger.Fatal(ctx, "Failed to compute wtxid : %s", err)
	}
	size, err := tx.Size()
	if err != nil {
		logger.Fatal(ctx, "Failed to compute size : %s", err)
	}
	vsize, err := tx.VSize()
	if err != nil {
		logger.Fatal(ctx, "Failed to compute vsize : %s", err)
	}

	logger.InfoWithFields(ctx, []logger.Field{
		logger.String("txid", txid),
		logger.String("wtxid", wtxid),
		logger.Int("size", size),
		logger.Int("vsize", vsize),
		logger.Int("inputs", len(tx.Inputs)),
		logger.Int("outputs", len(tx.Outputs)),
	}, "Transaction")
}

// Legacy computes the pre-segwit signature digest for one input.
// Parameters: <raw tx hex> <input index> <script code hex> <sighash byte>
func Legacy(ctx context.Context, args []string) {
	tx, err := parseTxArg(args, 0)
	if err != nil {
		logger.Fatal(ctx, "Invalid transaction : %s", err)
	}
	inputIndex, scriptCode, hashType, err := parseSigningArgs(args)
	if err != nil {
		logger.Fatal(ctx, "Invalid arguments : %s", err)
	}

	digest, err := sighash.LegacyDigest(tx, inputIndex, scriptCode, hashType)
	if err != nil {
		logger.Fatal(ctx, "Failed to compute legacy digest : %s", err)
	}

	fmt.Println(hex.EncodeToString(digest[:]))
}

// SegwitV0 computes the BIP-143 signature digest for one input.
// Parameters: <raw tx hex> <input index> <script code hex> <sighash byte> <amount>
func SegwitV0(ctx context.Context, args []string) {
	tx, err := parseTxArg(args, 0)
	if err != nil {
		logger.Fatal(ctx, "Invalid transaction : %s", err)
	}
	inputIndex, scriptCode, hashType, err := parseSigningArgs(args)
	if err != nil {
		logger.Fatal(ctx, "Invalid arguments : %s", err)
	}
	if len(args) < 5 {
		logger.Fatal(ctx, "Missing amount argument")
	}
	amount, err := strconv.ParseInt(args[4], 10, 64)
	if err != nil {
		logger.Fatal(ctx, "Invalid amount : %s", err)
	}

	digest, err := sighash.SegwitV0Digest(tx, inputIndex, scriptCode, amount, hashType, nil)
	if err != nil {
		logger.Fatal(ctx, "Failed to compute segwit v0 digest : %s", err)
	}

	fmt.Println(hex.EncodeToString(digest[:]))
}

func parseTxArg(args []string, index int) (*wire.Transaction, error) {
	if index >= len(args) {
		return nil, errors.New("missing raw tx hex argument")
	}
	raw, err := hex.DecodeString(args[index])
	if err != nil {
		return nil, errors.Wrap(err, "decode hex")
	}
	return wire.ParseTransaction(bytes.NewReader(raw))
}

func parseSigningArgs(args []string) (int, bitcoin.Script, sighash.Type, error) {
	if len(args) < 4 {
		return 0, nil, 0, errors.New("need <input index> <script code hex> <sighash byte>")
	}

	inputIndex, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, nil, 0, errors.Wrap(err, "input index")
	}

	scriptBytes, err := hex.DecodeString(args[2])
	if err != nil {
		return 0, nil, 0, errors.Wrap(err, "script code hex")
	}

	hashTypeValue, err := strconv.ParseUint(args[3], 10, 32)
	if err != nil {
		return 0, nil, 0, errors.Wrap(err, "sighash byte")
	}

	return inputIndex, bitcoin.ScriptFromBytes(scriptBytes, false), sighash.Type(hashTypeValue), nil
}
