// Package gset implements GSET: a garbage-collectable Observed-Remove
// Set CRDT whose tombstone store is itself a rot.Tree.
//
// GSet is a persistent value, in the same sense rot.Tree is: every
// mutating method returns a new GSet, sharing unmodified structure with
// the receiver. A single GSet value is not safe for concurrent
// mutation — see package replica for a mutex-guarded wrapper.
package gset

import (
	"bytes"
	"errors"
	"sort"

	"github.com/google/btree"

	"github.com/lindqvist-io/rotgset/ident"
	"github.com/lindqvist-io/rotgset/rot"
)

// GSet is a garbage-collectable OR-Set: a set of add-records, a ROT of
// tombstones marking some of them removed, and a ROT recording which
// sealed tombstone buckets have already been garbage-collected, so that
// merge never resurrects an entry a peer has already reclaimed.
type GSet struct {
	size uint32
	adds *btree.BTree

	removes rot.Tree
	gced    rot.Tree

	haveLastAddID bool
	lastAddID     ident.ID
	haveLastTomb  bool
	lastTombID    ident.ID
}

// New returns an empty GSet whose removes/gced ROTs use the given
// tombstone-bucket capacity. Errors from rot.New (an invalid capacity)
// pass straight through.
func New(size uint32) (GSet, error) {
	removes, err := rot.New(size)
	if err != nil {
		return GSet{}, err
	}
	gced, err := rot.New(size)
	if err != nil {
		return GSet{}, err
	}
	return GSet{size: size, adds: newAddSet(), removes: removes, gced: gced}, nil
}

// Add records elem under id. id must be strictly greater than every id
// previously passed to Add on this GSet value, or ErrNonMonotonicId is
// returned.
func (g GSet) Add(id ident.ID, elem []byte) (GSet, error) {
	if g.haveLastAddID && !id.Greater(g.lastAddID) {
		return g, nonMonotonic(id)
	}
	next := g
	next.adds = g.adds.Clone()
	next.adds.ReplaceOrInsert(addItem{id: id, element: elem})
	next.lastAddID = id
	next.haveLastAddID = true
	return next, nil
}

// Remove tombstones every add-record currently observed to hold elem,
// under tombID. tombID must be strictly greater than every id
// previously passed to Remove on this GSet value. Removing an element
// with no surviving add-records is a legal no-op.
func (g GSet) Remove(tombID ident.ID, elem []byte) (GSet, error) {
	if g.haveLastTomb && !tombID.Greater(g.lastTombID) {
		return g, nonMonotonic(tombID)
	}
	next := g
	for _, addID := range g.observedAddIDs(elem) {
		tomb := Tombstone{AddID: addID, Element: elem}
		entry := rot.Entry{ID: tombID, Payload: tomb.Marshal()}
		var err error
		next.removes, err = next.removes.Add(entry)
		if err != nil {
			return g, err
		}
	}
	next.lastTombID = tombID
	next.haveLastTomb = true
	return next, nil
}

// Value returns the effective set: every distinct payload with at
// least one surviving add-record, sorted by payload bytes.
func (g GSet) Value() [][]byte {
	tombstoned := g.tombstonedAddIDs()
	seen := make(map[string]struct{})
	var out [][]byte
	g.adds.Ascend(func(it btree.Item) bool {
		item := it.(addItem)
		if _, dead := tombstoned[idKey(item.id)]; dead {
			return true
		}
		key := string(item.element)
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
		out = append(out, item.element)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}

// GCable lists the sealed-bucket handles eligible for garbage
// collection: the union of removes' and gced's own sealed-bucket
// handles.
func (g GSet) GCable() []rot.Handle {
	out := append([]rot.Handle{}, g.removes.Full()...)
	out = append(out, g.gced.Full()...)
	return dedupeHandles(out)
}

// GC reclaims a sealed tombstone bucket: it strips the bucket's
// tomb-ids out of removes, removes the add-records those tombstones
// targeted out of adds, and records the bucket in gced so a later
// merge never replays it back in.
//
// If handle matches no sealed bucket in removes, GC still records the
// attempt in gced (so replaying an already-applied GC from a peer
// stays idempotent) and returns ErrUnknownHandle; the returned GSet is
// still safe to keep using.
func (g GSet) GC(handle rot.Handle) (GSet, error) {
	removedTombs, newRemoves := g.removes.Remove(handle)
	next := g
	next.removes = newRemoves

	if len(removedTombs) == 0 {
		newGced, err := recordGCed(g.gced, handle)
		if err != nil {
			return g, err
		}
		next.gced = newGced
		return next, unknownHandle(handle)
	}

	victims := make([]ident.ID, 0, len(removedTombs))
	for _, te := range removedTombs {
		victims = append(victims, UnmarshalTombstone(te.Payload).AddID)
	}
	newAdds := g.adds.Clone()
	for _, addID := range victims {
		newAdds.Delete(addItem{id: addID})
	}
	next.adds = newAdds

	newGced, err := recordGCed(g.gced, handle)
	if err != nil {
		return g, err
	}
	next.gced = newGced
	return next, nil
}

// Merge returns the union of a and b, replaying each side's gced trail
// into the other first so a sealed bucket one replica already
// collected is never resurrected by the other's surviving tombstones.
func Merge(a, b GSet) (GSet, error) {
	if a.size == 0 {
		a.size = b.size
	}
	if b.size == 0 {
		b.size = a.size
	}

	aPrime, err := replayGCTrail(a, b.gced)
	if err != nil {
		return GSet{}, err
	}
	bPrime, err := replayGCTrail(b, a.gced)
	if err != nil {
		return GSet{}, err
	}

	mergedRemoves, err := rot.Merge(aPrime.removes, bPrime.removes)
	if err != nil {
		return GSet{}, err
	}
	mergedGced, err := rot.Merge(aPrime.gced, bPrime.gced)
	if err != nil {
		return GSet{}, err
	}

	out := GSet{
		size:    aPrime.size,
		adds:    unionAddSets(aPrime.adds, bPrime.adds),
		removes: mergedRemoves,
		gced:    mergedGced,
	}
	out.haveLastAddID, out.lastAddID = maxOptionalID(aPrime.haveLastAddID, aPrime.lastAddID, bPrime.haveLastAddID, bPrime.lastAddID)
	out.haveLastTomb, out.lastTombID = maxOptionalID(aPrime.haveLastTomb, aPrime.lastTombID, bPrime.haveLastTomb, bPrime.lastTombID)
	return out, nil
}

// replayGCTrail applies every handle in trail to g via GC, in trail's
// stored order, ignoring ErrUnknownHandle — a handle not present in g's
// own removes simply means g never observed that bucket, which is the
// expected steady state once both sides have replayed each other.
func replayGCTrail(g GSet, trail rot.Tree) (GSet, error) {
	out := g
	for _, te := range trail.Value() {
		var d ident.Digest
		copy(d[:], te.Payload)
		h := rot.Handle{Newest: te.ID, Digest: d}
		next, err := out.GC(h)
		if err != nil && !errors.Is(err, ErrUnknownHandle) {
			return GSet{}, err
		}
		out = next
	}
	return out, nil
}

func recordGCed(gced rot.Tree, h rot.Handle) (rot.Tree, error) {
	_, stripped := gced.Remove(h)
	entry := rot.Entry{ID: h.Newest, Payload: append([]byte(nil), h.Digest[:]...)}
	return stripped.Add(entry)
}

func (g GSet) tombstonedAddIDs() map[string]struct{} {
	out := make(map[string]struct{})
	for _, te := range g.removes.Value() {
		out[idKey(UnmarshalTombstone(te.Payload).AddID)] = struct{}{}
	}
	return out
}

func (g GSet) observedAddIDs(elem []byte) []ident.ID {
	tombstoned := g.tombstonedAddIDs()
	var out []ident.ID
	g.adds.Ascend(func(it btree.Item) bool {
		item := it.(addItem)
		if !bytes.Equal(item.element, elem) {
			return true
		}
		if _, dead := tombstoned[idKey(item.id)]; dead {
			return true
		}
		out = append(out, item.id)
		return true
	})
	return out
}

func idKey(id ident.ID) string {
	b := id.Bytes32()
	return string(b[:])
}

func dedupeHandles(in []rot.Handle) []rot.Handle {
	seen := make(map[string]struct{}, len(in))
	out := make([]rot.Handle, 0, len(in))
	for _, h := range in {
		k := idKey(h.Newest) + string(h.Digest[:])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, h)
	}
	return out
}

func maxOptionalID(haveA bool, a ident.ID, haveB bool, b ident.ID) (bool, ident.ID) {
	switch {
	case haveA && haveB:
		return true, ident.Max(a, b)
	case haveA:
		return true, a
	case haveB:
		return true, b
	default:
		return false, ident.ID{}
	}
}
