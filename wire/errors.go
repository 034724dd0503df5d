package wire

import "github.com/pkg/errors"

// Sentinel errors surfaced by the VarInt codec and the transaction wire
// format. Callers compare against these with errors.Is/errors.Cause;
// functions in this package wrap them with github.com/pkg/errors to add
// call-site context.
var (
	// ErrMalformedVarInt means the buffer was too short for the width the
	// VarInt's discriminant byte indicated.
	ErrMalformedVarInt = errors.New("Malformed VarInt")

	// ErrTruncatedTransaction means parsing ran past the end of the input
	// before a complete transaction was read.
	ErrTruncatedTransaction = errors.New("Truncated Transaction")

	// ErrAmountNotInteger means a TxOutput was constructed with a
	// non-integer amount.
	ErrAmountNotInteger = errors.New("Amount Not Integer")
)
