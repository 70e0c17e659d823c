// Package idgen provides reference implementations of the two external
// collaborators the core assumes but never constructs itself: a source
// of fresh, totally-ordered identifiers for add-records, and a source
// of timestamp-shaped identifiers for tombstones.
package idgen

import (
	"encoding/binary"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/lindqvist-io/rotgset/ident"
)

// Clock is what a replica needs from the outside world to mint ids.
// Both methods must return a value strictly greater than every value
// previously returned by the same method on the same Clock.
type Clock interface {
	FreshID() ident.ID
	NowMicros() ident.ID
}

// Monotonic is a Clock salted by a replica name: an atomic counter for
// add ids, wall-clock microseconds for tombstone ids, both folded
// through the same per-replica salt so two Monotonic clocks for
// different names never produce colliding ids, even if their counters
// or clocks happen to line up exactly.
type Monotonic struct {
	salt       [8]byte
	counter    uint64
	lastMicros uint64
}

// NewMonotonic derives a Monotonic clock for the given replica name.
// The same name always derives the same salt. The add-id counter always
// starts at zero and cannot be seeded, so a replica that restarts under
// the same name reissues add ids it already issued before the restart.
// Monotonic is a reference clock, not a crash-safe one.
func NewMonotonic(replicaName string) *Monotonic {
	sum := blake2b.Sum256([]byte(replicaName))
	var salt [8]byte
	copy(salt[:], sum[:8])
	return &Monotonic{salt: salt}
}

// FreshID returns the next add-id for this replica.
func (m *Monotonic) FreshID() ident.ID {
	n := atomic.AddUint64(&m.counter, 1)
	return m.compose(n)
}

// NowMicros returns the current wall-clock time in microseconds, salted
// the same way FreshID salts its counter. If the wall clock has not
// advanced past the previous value returned, it returns that value
// plus one instead.
func (m *Monotonic) NowMicros() ident.ID {
	now := uint64(time.Now().UnixMicro())
	for {
		last := atomic.LoadUint64(&m.lastMicros)
		next := now
		if next <= last {
			next = last + 1
		}
		if atomic.CompareAndSwapUint64(&m.lastMicros, last, next) {
			return m.compose(next)
		}
	}
}

func (m *Monotonic) compose(n uint64) ident.ID {
	var buf [32]byte
	copy(buf[:8], m.salt[:])
	binary.BigEndian.PutUint64(buf[24:], n)
	return ident.FromBytes(buf[:])
}
