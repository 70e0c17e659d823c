// Package ident holds the two value types threaded through both ROT and
// GSET: totally-ordered identifiers and content digests.
package ident

import (
	"fmt"

	"github.com/holiman/uint256"
)

// ID is a totally-ordered identifier. It wraps a 256-bit unsigned integer
// so replicas have ample headroom to encode both a monotonic counter and
// a replica-local salt (see package idgen) without ever colliding.
//
// The zero value is the smallest possible ID.
type ID struct {
	v uint256.Int
}

// FromUint64 builds an ID from a plain counter value.
func FromUint64(n uint64) ID {
	var id ID
	id.v.SetUint64(n)
	return id
}

// FromBytes constructs an ID from a big-endian byte slice, left-padded
// with zeros. If b is longer than 32 bytes, only its last 32 bytes are
// used.
func FromBytes(b []byte) ID {
	var id ID
	id.v.SetBytes(b)
	return id
}

// Bytes32 returns the big-endian, fixed-width 32-byte encoding of the ID.
// Used as the canonical framing for digest computation.
func (id ID) Bytes32() [32]byte {
	return id.v.Bytes32()
}

// Cmp returns -1, 0 or +1 as id is less than, equal to, or greater than other.
func (id ID) Cmp(other ID) int {
	return id.v.Cmp(&other.v)
}

// Less reports whether id sorts strictly before other.
func (id ID) Less(other ID) bool {
	return id.Cmp(other) < 0
}

// Greater reports whether id sorts strictly after other.
func (id ID) Greater(other ID) bool {
	return id.Cmp(other) > 0
}

// Equal reports whether id and other denote the same identifier.
func (id ID) Equal(other ID) bool {
	return id.Cmp(other) == 0
}

// Max returns the greater of a and b.
func Max(a, b ID) ID {
	if a.Greater(b) {
		return a
	}
	return b
}

// String renders the ID in decimal, for logs and test failure messages.
func (id ID) String() string {
	return id.v.Dec()
}

// GoString supports "%#v" and spew-style dumps.
func (id ID) GoString() string {
	return fmt.Sprintf("ident.ID(%s)", id.v.Dec())
}
