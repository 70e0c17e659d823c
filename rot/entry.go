package rot

import (
	"bytes"

	"github.com/lindqvist-io/rotgset/ident"
)

// Entry is the atomic unit ROT stores: an id paired with an opaque
// payload. Entries are immutable once created.
type Entry struct {
	ID      ident.ID
	Payload []byte
}

// DigestID and DigestPayload satisfy digest.Leafable.
func (e Entry) DigestID() ident.ID    { return e.ID }
func (e Entry) DigestPayload() []byte { return e.Payload }

// Less orders entries by id, ties broken by payload bytes.
func (e Entry) Less(other Entry) bool {
	if c := e.ID.Cmp(other.ID); c != 0 {
		return c < 0
	}
	return bytes.Compare(e.Payload, other.Payload) < 0
}

// Equal reports whether e and other are the same entry (same id and
// payload). Duplicates by this definition are no-ops at the set level.
func (e Entry) Equal(other Entry) bool {
	return e.ID.Equal(other.ID) && bytes.Equal(e.Payload, other.Payload)
}

// Handle uniquely identifies a sealed ROT subtree across replicas: the
// greatest id it transitively contains, paired with its content digest.
type Handle struct {
	Newest ident.ID
	Digest ident.Digest
}

// Equal reports whether h and other denote the same subtree.
func (h Handle) Equal(other Handle) bool {
	return h.Newest.Equal(other.Newest) && h.Digest.Equal(other.Digest)
}
