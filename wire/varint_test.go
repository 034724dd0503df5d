package wire

import (
	"bytes"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	values := []uint64{0, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000}

	for _, val := range values {
		t.Run("", func(t *testing.T) {
			encoded := EncodeVarInt(val)

			decoded, consumed, err := DecodeVarInt(encoded)
			if err != nil {
				t.Fatalf("decode failed for %d : %s", val, err)
			}
			if decoded != val {
				t.Fatalf("got %d, want %d", decoded, val)
			}
			if consumed != len(encoded) {
				t.Fatalf("consumed %d, want %d", consumed, len(encoded))
			}
			if consumed != VarIntSerializeSize(val) {
				t.Fatalf("VarIntSerializeSize(%d) = %d, want %d", val, VarIntSerializeSize(val), consumed)
			}
		})
	}
}

func TestVarIntBoundaryWidths(t *testing.T) {
	fc := EncodeVarInt(0xfc)
	if len(fc) != 1 || fc[0] != 0xfc {
		t.Fatalf("0xfc should encode as one byte, got % x", fc)
	}

	fd := EncodeVarInt(0xfd)
	want := []byte{0xfd, 0xfd, 0x00}
	if !bytes.Equal(fd, want) {
		t.Fatalf("0xfd should encode as %x, got %x", want, fd)
	}
}

func TestDecodeVarIntNonMinimalAccepted(t *testing.T) {
	// 3 is normally a 1-byte VarInt, but a 3-byte encoding of it must still
	// decode successfully (§4.1: minimal encoding is not enforced).
	nonMinimal := []byte{0xfd, 0x03, 0x00}

	value, consumed, err := DecodeVarInt(nonMinimal)
	if err != nil {
		t.Fatalf("non-minimal VarInt should decode, got error : %s", err)
	}
	if value != 3 {
		t.Fatalf("got %d, want 3", value)
	}
	if consumed != 3 {
		t.Fatalf("got %d bytes consumed, want 3", consumed)
	}
}

func TestDecodeVarIntTruncated(t *testing.T) {
	cases := [][]byte{
		{},
		{0xfd, 0x01},
		{0xfe, 0x01, 0x02, 0x03},
		{0xff, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
	}

	for _, c := range cases {
		if _, _, err := DecodeVarInt(c); err == nil {
			t.Fatalf("expected error decoding truncated buffer % x", c)
		}
	}
}

func TestVarBytesRoundTrip(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05}

	var buf bytes.Buffer
	if err := WriteVarBytes(&buf, payload); err != nil {
		t.Fatalf("write failed : %s", err)
	}

	got, err := ReadVarBytes(&buf)
	if err != nil {
		t.Fatalf("read failed : %s", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got % x, want % x", got, payload)
	}
}
