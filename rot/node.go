package rot

import (
	"fmt"
	"sort"

	"github.com/lindqvist-io/rotgset/ident"
	"github.com/lindqvist-io/rotgset/internal/digest"
)

// node is a ROT bucket: either a leaf (a sorted run of entries) or an
// internal node (a sorted run of child buckets, keyed by their newest
// id). Sealed nodes are immutable; every mutating operation produces a
// new node, sharing unmodified sealed subtrees by pointer.
type node struct {
	leaf     bool
	size     uint32
	count    uint32
	newest   ident.ID
	hash     *ident.Digest
	entries  []Entry // leaf only, sorted ascending
	children []*node // internal only, sorted ascending by newest
}

func newEmptyLeaf(size uint32) *node {
	return &node{leaf: true, size: size}
}

// promotion is what a radd call hands back to its caller when the node
// it touched overflowed. At leaf level this is always a demoted Entry:
// a sealed leaf stays at exactly size entries, so one insertion past
// capacity demotes its smallest entry to the caller. At internal level
// it is a demoted child *node instead, produced when reinsertLeft's
// cascade runs off the left edge and a whole subtree, not a single
// entry, needs a new home one level up.
type promotion struct {
	entry *Entry
	child *node
}

// radd inserts e into the subtree rooted at n, returning the replacement
// node and, if n overflowed, the unit that must be placed one level up.
func radd(e Entry, n *node) (*node, *promotion, error) {
	if n.leaf {
		return raddLeaf(e, n)
	}
	return raddInternal(e, n)
}

// raddLeaf handles both an unsealed leaf (count < size) and a sealed
// one uniformly: both start by computing the dedupe-aware sorted
// insertion, then branch on whether the leaf was already full.
func raddLeaf(e Entry, n *node) (*node, *promotion, error) {
	combined, duplicate := insertSortedEntry(n.entries, e)
	if duplicate {
		return n, nil, nil
	}
	if n.count < n.size {
		newN := &node{
			leaf:    true,
			size:    n.size,
			count:   n.count + 1,
			entries: combined,
			newest:  combined[len(combined)-1].ID,
		}
		if newN.count == newN.size {
			h := digest.Leaf(newN.entries)
			newN.hash = &h
		}
		return newN, nil, nil
	}

	// Sealed leaf: combined now holds size+1 entries. Demote the
	// smallest, reseal the rest.
	smallest := combined[0]
	rest := combined[1:]
	h := digest.Leaf(rest)
	newN := &node{
		leaf:    true,
		size:    n.size,
		count:   uint32(len(rest)),
		entries: rest,
		newest:  rest[len(rest)-1].ID,
		hash:    &h,
	}
	return newN, &promotion{entry: &smallest}, nil
}

// raddInternal recurses into the child covering e's id, then resolves
// whatever that recursion hands back: nothing (duplicate), a simple
// replacement, or an overflow that must be absorbed by a sibling.
func raddInternal(e Entry, n *node) (*node, *promotion, error) {
	i := locateChildIndex(n.children, e.ID)
	childResult, promo, err := radd(e, n.children[i])
	if err != nil {
		return nil, nil, err
	}
	if promo == nil && childResult == n.children[i] {
		return n, nil, nil // duplicate absorbed without any change
	}

	newChildren := make([]*node, len(n.children))
	copy(newChildren, n.children)
	newChildren[i] = childResult

	if promo == nil {
		return sealOrBranchInternal(n, newChildren)
	}

	newChildren, err = reinsertLeft(newChildren, i, promo)
	if err != nil {
		return nil, nil, err
	}
	return sealOrBranchInternal(n, newChildren)
}

// reinsertLeft absorbs an overflow promotion produced at index idx into
// the next-lower sibling (idx-1) rather than growing this node's own
// children list past size: demoting rightward would just push the
// overflow back into the child that already rejected it, so the only
// direction that can make progress is left. If that sibling is itself
// sealed and overflows in turn, the excess keeps cascading further
// left one sibling at a time. Once the cascade runs off the left edge —
// the overflowing child was already the leftmost — there is no sibling
// left to absorb it, so the promotion becomes a brand-new leftmost
// child instead: a fresh single-entry leaf for a demoted entry, or a
// fresh single-child internal node wrapping a demoted subtree, the same
// shape the root-overflow case in Tree.Add builds.
func reinsertLeft(children []*node, idx int, promo *promotion) ([]*node, error) {
	j := idx - 1
	for j >= 0 {
		var (
			result *node
			next   *promotion
			err    error
		)
		if promo.entry != nil {
			result, next, err = radd(*promo.entry, children[j])
		} else {
			result, next, err = insertChild(promo.child, children[j])
		}
		if err != nil {
			return nil, err
		}
		children[j] = result
		if next == nil {
			return children, nil
		}
		promo = next
		j--
	}

	var fresh *node
	if promo.entry != nil {
		fresh = freshLeafWith(*promo.entry, children[0].size)
	} else {
		fresh = buildInternal(children[0].size, []*node{promo.child})
	}
	out := make([]*node, 0, len(children)+1)
	out = append(out, fresh)
	out = append(out, children...)
	return out, nil
}

// insertChild inserts newChild as a direct child of sibling, sorted by
// newest, and applies the same bucket-overflow rule raddLeaf/raddInternal
// use for entries. sibling must be an internal node: a whole subtree can
// never become a sibling of leaf-level entries.
func insertChild(newChild *node, sibling *node) (*node, *promotion, error) {
	if sibling.leaf {
		return nil, nil, fmt.Errorf("rot: internal invariant violated: cannot graft a subtree onto a leaf sibling")
	}
	children := insertSortedChild(sibling.children, newChild)
	return sealOrBranchInternal(sibling, children)
}

// sealOrBranchInternal builds the internal-node replacement for n out of
// children, demoting the smallest child if the list overflowed size.
func sealOrBranchInternal(n *node, children []*node) (*node, *promotion, error) {
	if uint32(len(children)) > n.size {
		smallest := children[0]
		rest := children[1:]
		return buildInternal(n.size, rest), &promotion{child: smallest}, nil
	}
	return buildInternal(n.size, children), nil, nil
}

// buildInternal assembles a sealed-if-eligible internal node from a
// children list that is already within capacity.
func buildInternal(size uint32, children []*node) *node {
	newN := &node{
		leaf:     false,
		size:     size,
		count:    uint32(len(children)),
		children: children,
		newest:   children[len(children)-1].newest,
	}
	if newN.count == size {
		digests := make([]ident.Digest, len(children))
		for idx, c := range children {
			if c.hash == nil {
				return newN // an unsealed child keeps the parent unsealed
			}
			digests[idx] = *c.hash
		}
		h := digest.Internal(digests)
		newN.hash = &h
	}
	return newN
}

// freshLeafWith builds a brand new leaf of the given capacity containing
// only e. A single insertion into an empty leaf of capacity >= 2 never
// overflows, so the promotion and error are always nil.
func freshLeafWith(e Entry, size uint32) *node {
	result, _, _ := radd(e, newEmptyLeaf(size))
	return result
}

// locateChildIndex finds the child whose range covers id: the smallest
// index whose newest >= id, or the last child if none qualifies.
func locateChildIndex(children []*node, id ident.ID) int {
	i := sort.Search(len(children), func(i int) bool {
		return !children[i].newest.Less(id)
	})
	if i == len(children) {
		return len(children) - 1
	}
	return i
}

// insertSortedEntry inserts e into the sorted, duplicate-free entries
// slice, returning a freshly allocated slice (entries is never mutated
// in place — sealed leaves must stay immutable).
func insertSortedEntry(entries []Entry, e Entry) (out []Entry, duplicate bool) {
	i := sort.Search(len(entries), func(i int) bool {
		return !entries[i].Less(e)
	})
	if i < len(entries) && entries[i].Equal(e) {
		return entries, true
	}
	out = make([]Entry, len(entries)+1)
	copy(out, entries[:i])
	out[i] = e
	copy(out[i+1:], entries[i:])
	return out, false
}

// insertSortedChild inserts newChild into children sorted by newest.
func insertSortedChild(children []*node, newChild *node) []*node {
	i := sort.Search(len(children), func(i int) bool {
		return !children[i].newest.Less(newChild.newest)
	})
	out := make([]*node, len(children)+1)
	copy(out, children[:i])
	out[i] = newChild
	copy(out[i+1:], children[i:])
	return out
}

// collectEntries performs an in-order traversal, yielding every entry in
// ascending id order.
func collectEntries(n *node) []Entry {
	if n.leaf {
		out := make([]Entry, len(n.entries))
		copy(out, n.entries)
		return out
	}
	var out []Entry
	for _, c := range n.children {
		out = append(out, collectEntries(c)...)
	}
	return out
}

// fullHandles recurses into every node regardless of its own seal
// status, collecting the (newest, digest) pair of every sealed node it
// finds. A fully unsealed subtree contributes nothing — it has no
// stable digest yet to hand a peer.
func fullHandles(n *node) []Handle {
	var out []Handle
	if n.hash != nil {
		out = append(out, Handle{Newest: n.newest, Digest: *n.hash})
	}
	if !n.leaf {
		for _, c := range n.children {
			out = append(out, fullHandles(c)...)
		}
	}
	return out
}

// findAndExcise locates the sealed subtree matching h and removes it
// from the tree, returning its entries. newN is nil when n itself was
// the match (the caller must replace it, not graft it back in).
func findAndExcise(n *node, h Handle) (removed []Entry, newN *node, found bool) {
	if n.hash != nil && n.newest.Equal(h.Newest) && n.hash.Equal(h.Digest) {
		return collectEntries(n), nil, true
	}
	if n.leaf {
		return nil, n, false
	}
	for i, c := range n.children {
		rem, newC, ok := findAndExcise(c, h)
		if !ok {
			continue
		}
		var newChildren []*node
		if newC == nil {
			newChildren = make([]*node, 0, len(n.children)-1)
			newChildren = append(newChildren, n.children[:i]...)
			newChildren = append(newChildren, n.children[i+1:]...)
		} else {
			newChildren = make([]*node, len(n.children))
			copy(newChildren, n.children)
			newChildren[i] = newC
		}
		if len(newChildren) == 0 {
			return rem, nil, true
		}
		// Excision breaks whatever sealing this node had; it is
		// rebuilt unsealed, full stop. A later insertion may reseal
		// it once it refills to capacity.
		newNode := &node{
			leaf:     false,
			size:     n.size,
			count:    uint32(len(newChildren)),
			children: newChildren,
			newest:   newChildren[len(newChildren)-1].newest,
		}
		return rem, newNode, true
	}
	return nil, n, false
}
