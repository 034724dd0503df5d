package bitcoin

import (
	"crypto/sha256"
)

// Sha256 returns the SHA256 (Secure Hash Algorithm) of the input.
//
// This is a wrapper for easy access to a chosen implementation.
//
// See https://en.wikipedia.org/wiki/SHA-2
func Sha256(b []byte) []byte {
	result := sha256.Sum256(b)
	return result[:]
}

// DoubleSha256 performs a double Sha256 hash on the bytes.
func DoubleSha256(b []byte) []byte {
	return Sha256(Sha256(b))
}

// TaggedHash computes a BIP-340 domain-separated SHA256:
//
//	TaggedHash(tag, data) = SHA256(SHA256(tag) || SHA256(tag) || data)
//
// The two tags this library uses are "TapLeaf" (BIP-342 tapscript leaves)
// and "TapSighash" (BIP-341 taproot signature digests).
func TaggedHash(tag string, data []byte) []byte {
	tagHash := Sha256([]byte(tag))

	preimage := make([]byte, 0, len(tagHash)*2+len(data))
	preimage = append(preimage, tagHash...)
	preimage = append(preimage, tagHash...)
	preimage = append(preimage, data...)

	return Sha256(preimage)
}
