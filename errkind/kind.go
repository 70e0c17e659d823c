// Package errkind holds the sentinel error kinds shared by rot and gset.
package errkind

//go:generate stringer -type=Kind

// Kind classifies a core error, letting callers switch on failure
// category without depending on a specific sentinel error value.
type Kind int

const (
	// CapacityViolation: attempt to build a ROT with size < 2. Fatal,
	// rejected at construction.
	CapacityViolation Kind = iota

	// NonMonotonicId: an add/remove received an id not greater than the
	// replica's last emitted id for that namespace. The operation is
	// rejected.
	NonMonotonicId

	// UnknownHandle: GC was called with a handle matching no sealed
	// bucket in removes. Not fatal — treated as a replay of a GC step
	// another replica has already taken.
	UnknownHandle
)
