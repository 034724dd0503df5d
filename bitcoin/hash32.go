package bitcoin

import (
	"bytes"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

const (
	// Hash32Size is the number of bytes in a Hash32.
	Hash32Size = 32
)

// ErrWrongSize means that a value was not the expected number of bytes.
var ErrWrongSize = errors.New("Wrong Size")

// Hash32 is a 32 byte hash, stored in wire byte order. Display (hex) order
// is the reverse of wire order, matching Bitcoin's txid convention.
type Hash32 [Hash32Size]byte

// NewHash32 creates a hash from wire-order bytes.
func NewHash32(b []byte) (*Hash32, error) {
	if len(b) != Hash32Size {
		return nil, errors.Wrapf(ErrWrongSize, "got %d, want %d", len(b), Hash32Size)
	}
	result := Hash32{}
	copy(result[:], b)
	return &result, nil
}

// NewHash32FromStr creates a hash from a display-order (big-endian) hex
// string, reversing it into wire order.
func NewHash32FromStr(s string) (*Hash32, error) {
	result := &Hash32{}
	if err := result.SetString(s); err != nil {
		return nil, err
	}
	return result, nil
}

// Bytes returns the wire-order bytes of the hash.
func (h Hash32) Bytes() []byte {
	return h[:]
}

// ReverseBytes returns the hash bytes in display (big-endian) order.
func (h Hash32) ReverseBytes() []byte {
	b := make([]byte, Hash32Size)
	reverse32(b, h[:])
	return b
}

// SetBytes sets the value of the hash from wire-order bytes.
func (h *Hash32) SetBytes(b []byte) error {
	if len(b) != Hash32Size {
		return errors.Wrapf(ErrWrongSize, "got %d, want %d", len(b), Hash32Size)
	}
	copy(h[:], b)
	return nil
}

// SetString sets the value of the hash from a display-order hex string.
func (h *Hash32) SetString(s string) error {
	if len(s) != 2*Hash32Size {
		return errors.Wrapf(ErrWrongSize, "hex: got %d, want %d", len(s), Hash32Size*2)
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrap(err, "hex decode")
	}

	reverse32(h[:], b)
	return nil
}

// String returns the display-order (big-endian) hex of the hash.
func (h Hash32) String() string {
	return hex.EncodeToString(h.ReverseBytes())
}

// Equal returns true if the parameter has the same value.
func (h *Hash32) Equal(o *Hash32) bool {
	if h == nil {
		return o == nil
	}
	if o == nil {
		return false
	}
	return bytes.Equal(h[:], o[:])
}

// Copy returns a copy of the hash.
func (h Hash32) Copy() Hash32 {
	var c Hash32
	copy(c[:], h[:])
	return c
}

// IsZero returns true if the hash is all zero bytes.
func (h Hash32) IsZero() bool {
	var zero Hash32
	return h.Equal(&zero)
}

// Serialize writes the wire-order bytes of the hash into w.
func (h Hash32) Serialize(w io.Writer) error {
	_, err := w.Write(h[:])
	return err
}

// Deserialize reads the wire-order bytes of the hash from r.
func (h *Hash32) Deserialize(r io.Reader) error {
	_, err := io.ReadFull(r, h[:])
	return err
}

func reverse32(dst, src []byte) {
	i := Hash32Size - 1
	for _, b := range src[:Hash32Size] {
		dst[i] = b
		i--
	}
}
