// Package reconcile helps a replica decide which sealed tombstone
// buckets it is safe to garbage collect when it can see every peer's
// gcable list at once: the intersection, since a bucket only two of
// three replicas have observed is not yet safe to reclaim.
package reconcile

import (
	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"github.com/lindqvist-io/rotgset/rot"
)

// Intersect returns the handles present in every peer's list. Each
// peer's membership bitset is built concurrently against a shared index
// derived from the first peer's list, then reduced with a plain bitset
// intersection.
func Intersect(peers ...[]rot.Handle) []rot.Handle {
	if len(peers) == 0 {
		return nil
	}

	index := make(map[string]rot.Handle, len(peers[0]))
	order := make([]string, 0, len(peers[0]))
	for _, h := range peers[0] {
		k := key(h)
		if _, ok := index[k]; ok {
			continue
		}
		index[k] = h
		order = append(order, k)
	}

	sets := make([]*bitset.BitSet, len(peers))
	sets[0] = bitset.New(uint(len(order)))
	for i := range order {
		sets[0].Set(uint(i))
	}

	var g errgroup.Group
	for p := 1; p < len(peers); p++ {
		p := p
		g.Go(func() error {
			present := make(map[string]struct{}, len(peers[p]))
			for _, h := range peers[p] {
				present[key(h)] = struct{}{}
			}
			bs := bitset.New(uint(len(order)))
			for i, k := range order {
				if _, ok := present[k]; ok {
					bs.Set(uint(i))
				}
			}
			sets[p] = bs
			return nil
		})
	}
	_ = g.Wait() // the per-peer closures never return an error

	result := sets[0].Clone()
	for p := 1; p < len(sets); p++ {
		result = result.Intersection(sets[p])
	}

	out := make([]rot.Handle, 0, len(order))
	for i, k := range order {
		if result.Test(uint(i)) {
			out = append(out, index[k])
		}
	}
	return out
}

func key(h rot.Handle) string {
	b := h.Newest.Bytes32()
	return string(b[:]) + string(h.Digest[:])
}
