// Package digest implements the canonical serialization and SHA-1
// hashing ROT uses to seal buckets.
//
// Framing is fixed-width and length-prefixed so that two buckets with
// equal entry sets always hash identically regardless of how they were
// built: for a leaf, each entry contributes its 32-byte big-endian id
// followed by a 4-byte big-endian length prefix and the raw payload
// bytes, concatenated in entry order. For an internal node, the child
// digests are concatenated left-to-right, smallest newest first, with
// no additional framing (all children contribute exactly DigestSize
// bytes, so no prefix is needed to keep the encoding unambiguous).
package digest

import (
	"crypto/sha1"
	"encoding/binary"

	"github.com/lindqvist-io/rotgset/ident"
)

// Leafable is the minimal shape digest needs from a ROT entry, kept
// independent of the rot package to avoid an import cycle.
type Leafable interface {
	DigestID() ident.ID
	DigestPayload() []byte
}

// Leaf computes the digest of a sealed leaf's entries. Entries must
// already be in their canonical (sorted) order; Leaf does not sort.
func Leaf[E Leafable](entries []E) ident.Digest {
	h := sha1.New()
	for _, e := range entries {
		idBytes := e.DigestID().Bytes32()
		h.Write(idBytes[:])

		var lenPrefix [4]byte
		binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(e.DigestPayload())))
		h.Write(lenPrefix[:])
		h.Write(e.DigestPayload())
	}
	var out ident.Digest
	h.Sum(out[:0])
	return out
}

// Internal computes the digest of a sealed internal node from its
// children's digests, left-to-right, smallest newest first.
func Internal(children []ident.Digest) ident.Digest {
	h := sha1.New()
	for _, c := range children {
		h.Write(c[:])
	}
	var out ident.Digest
	h.Sum(out[:0])
	return out
}
