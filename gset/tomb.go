package gset

import "github.com/lindqvist-io/rotgset/ident"

// Tombstone is a removes-ROT entry's payload: the add-record it marks
// as removed. It is framed as a fixed 32-byte big-endian add-id
// followed by the raw element bytes; unlike the leaf framing in
// internal/digest there is no length prefix, and the element runs to
// the end of the payload.
type Tombstone struct {
	AddID   ident.ID
	Element []byte
}

// Marshal encodes t for storage as a rot.Entry payload.
func (t Tombstone) Marshal() []byte {
	idBytes := t.AddID.Bytes32()
	out := make([]byte, len(idBytes)+len(t.Element))
	copy(out, idBytes[:])
	copy(out[len(idBytes):], t.Element)
	return out
}

// UnmarshalTombstone decodes a rot.Entry payload produced by Marshal.
func UnmarshalTombstone(b []byte) Tombstone {
	if len(b) < 32 {
		return Tombstone{}
	}
	return Tombstone{
		AddID:   ident.FromBytes(b[:32]),
		Element: append([]byte(nil), b[32:]...),
	}
}
