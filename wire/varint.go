package wire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// VarIntSerializeSize returns the number of bytes it would take to encode
// val as a VarInt.
func VarIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= math.MaxUint16:
		return 3
	case val <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}

// EncodeVarInt encodes val as Bitcoin's compact-size integer:
//
//	n <  0xfd            -> 1 byte
//	n <= 0xffff           -> 0xfd + 2 bytes little-endian
//	n <= 0xffffffff       -> 0xfe + 4 bytes little-endian
//	otherwise             -> 0xff + 8 bytes little-endian
func EncodeVarInt(val uint64) []byte {
	switch {
	case val < 0xfd:
		return []byte{byte(val)}
	case val <= math.MaxUint16:
		b := make([]byte, 3)
		b[0] = 0xfd
		binary.LittleEndian.PutUint16(b[1:], uint16(val))
		return b
	case val <= math.MaxUint32:
		b := make([]byte, 5)
		b[0] = 0xfe
		binary.LittleEndian.PutUint32(b[1:], uint32(val))
		return b
	default:
		b := make([]byte, 9)
		b[0] = 0xff
		binary.LittleEndian.PutUint64(b[1:], val)
		return b
	}
}

// DecodeVarInt decodes a VarInt from the start of b, returning the value
// and the number of bytes consumed. Minimal encoding is not enforced: a
// value like 3 encoded as 0xfd 0x03 0x00 decodes successfully, matching
// Bitcoin wire format's tolerance on this path (spec §4.1).
func DecodeVarInt(b []byte) (uint64, int, error) {
	if len(b) < 1 {
		return 0, 0, errors.Wrap(ErrMalformedVarInt, "empty buffer")
	}

	switch b[0] {
	case 0xff:
		if len(b) < 9 {
			return 0, 0, errors.Wrapf(ErrMalformedVarInt, "need 9 bytes, got %d", len(b))
		}
		return binary.LittleEndian.Uint64(b[1:9]), 9, nil

	case 0xfe:
		if len(b) < 5 {
			return 0, 0, errors.Wrapf(ErrMalformedVarInt, "need 5 bytes, got %d", len(b))
		}
		return uint64(binary.LittleEndian.Uint32(b[1:5])), 5, nil

	case 0xfd:
		if len(b) < 3 {
			return 0, 0, errors.Wrapf(ErrMalformedVarInt, "need 3 bytes, got %d", len(b))
		}
		return uint64(binary.LittleEndian.Uint16(b[1:3])), 3, nil

	default:
		return uint64(b[0]), 1, nil
	}
}

// WriteVarInt writes val to w in VarInt encoding.
func WriteVarInt(w io.Writer, val uint64) error {
	_, err := w.Write(EncodeVarInt(val))
	return err
}

// ReadVarInt reads a VarInt from r.
func ReadVarInt(r io.Reader) (uint64, error) {
	var discriminant [1]byte
	if _, err := io.ReadFull(r, discriminant[:]); err != nil {
		return 0, errors.Wrap(ErrMalformedVarInt, err.Error())
	}

	var rest []byte
	switch discriminant[0] {
	case 0xff:
		rest = make([]byte, 8)
	case 0xfe:
		rest = make([]byte, 4)
	case 0xfd:
		rest = make([]byte, 2)
	default:
		return uint64(discriminant[0]), nil
	}

	if _, err := io.ReadFull(r, rest); err != nil {
		return 0, errors.Wrap(ErrMalformedVarInt, err.Error())
	}

	full := append(discriminant[:], rest...)
	value, _, err := DecodeVarInt(full)
	return value, err
}

// WriteVarBytes writes the VarInt length of b followed by b itself.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadVarBytes reads a VarInt length followed by that many bytes. A zero
// length returns a nil slice, matching the zero value a caller would
// otherwise build by hand and keeping round-tripped empty scripts
// comparable with reflect.DeepEqual/go-test/deep against their
// pre-serialization value.
func ReadVarBytes(r io.Reader) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errors.Wrap(ErrTruncatedTransaction, err.Error())
	}
	return b, nil
}
