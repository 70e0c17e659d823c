package ident

import "encoding/hex"

// DigestSize is the byte length of a Digest: SHA-1's 20-byte output.
// SHA-1 is used here for its size and ubiquity, not as a security
// boundary — buckets are sealed to detect accidental divergence between
// replicas, not to resist a deliberate collision attack.
const DigestSize = 20

// Digest is a content digest over a sealed ROT bucket's contents.
type Digest [DigestSize]byte

// String renders the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Equal reports whether d and other are the same digest.
func (d Digest) Equal(other Digest) bool {
	return d == other
}
