package bitcoin

import (
	"database/sql/driver"
	"encoding/hex"

	"github.com/pkg/errors"
)

// Script is an opaque, already-encoded Bitcoin script: a sequence of
// opcodes and data pushes. This library treats Script purely as a byte
// blob — opcode assembly and disassembly are an external collaborator's
// concern (spec.md §1, §6). ToBytes/ScriptFromBytes are the whole of the
// contract the digest engine relies on.
type Script []byte

// NewScript wraps raw bytes as a Script.
func NewScript(b []byte) Script {
	return Script(b)
}

// ScriptFromBytes decodes a Script from its canonical wire encoding. The
// segwitHint parameter is accepted for interface parity with collaborators
// that disambiguate legacy vs. witness script templates; this opaque
// bridge has no opcode-level behavior to vary on it.
func ScriptFromBytes(b []byte, segwitHint bool) Script {
	return Script(b)
}

// ToBytes returns the canonical wire encoding of the script.
func (s Script) ToBytes() []byte {
	return []byte(s)
}

// Bytes is an alias for ToBytes matching the rest of this package's
// byte-slice accessors.
func (s Script) Bytes() []byte {
	return []byte(s)
}

// Equal returns true if the two scripts have identical bytes.
func (s Script) Equal(o Script) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Copy returns an independent copy of the script.
func (s Script) Copy() Script {
	c := make(Script, len(s))
	copy(c, s)
	return c
}

// String returns the hex encoding of the script.
func (s Script) String() string {
	return hex.EncodeToString(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Script) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Script) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return errors.Wrap(err, "decode hex")
	}
	*s = Script(b)
	return nil
}

// Value implements database/sql/driver.Valuer.
func (s Script) Value() (driver.Value, error) {
	return []byte(s), nil
}

// Scan implements database/sql.Scanner.
func (s *Script) Scan(data interface{}) error {
	b, ok := data.([]byte)
	if !ok {
		return errors.New("Script db column not bytes")
	}
	*s = Script(append([]byte(nil), b...))
	return nil
}
