// Package rot implements the Range-Ordered Tree: a self-balancing,
// content-addressed tree of time-ordered buckets.
//
// Tree is a persistent value: every mutating method returns a new Tree,
// sharing unmodified sealed subtrees with the original by pointer. Tree
// itself performs no I/O and is safe to read concurrently; callers
// mutating the same logical replica must still serialize their writes.
package rot

import "fmt"

// Tree is an ordered multi-way tree of sealed, content-addressed
// buckets, fixed at a bucket capacity chosen at construction.
type Tree struct {
	root *node
	size uint32
}

// New returns an empty tree with the given bucket capacity. size must
// be at least 2: a bucket of 1 could never split, since splitting means
// demoting a smallest entry and keeping the rest sealed at capacity.
func New(size uint32) (Tree, error) {
	if size < 2 {
		return Tree{}, capacityViolation(size)
	}
	return Tree{root: newEmptyLeaf(size), size: size}, nil
}

// Size returns the tree's bucket capacity.
func (t Tree) Size() uint32 {
	return t.size
}

// Add inserts entry and returns the resulting tree. Inserting an entry
// that already exists (same id and payload) is a no-op.
func (t Tree) Add(entry Entry) (Tree, error) {
	newRoot, promo, err := radd(entry, t.root)
	if err != nil {
		return t, err
	}
	if promo == nil {
		return Tree{root: newRoot, size: t.size}, nil
	}

	// The root has nowhere left of it to cascade into, so its own
	// overflow wraps the demoted unit in a fresh single-member clone and
	// builds a new 2-child root one level taller.
	var sibling *node
	if promo.entry != nil {
		sibling = freshLeafWith(*promo.entry, t.size)
	} else {
		sibling = buildInternal(t.size, []*node{promo.child})
	}
	children := []*node{newRoot, sibling}
	if sibling.newest.Less(newRoot.newest) {
		children = []*node{sibling, newRoot}
	}
	return Tree{root: buildInternal(t.size, children), size: t.size}, nil
}

// Value returns every distinct entry in the tree, in ascending id order.
func (t Tree) Value() []Entry {
	return collectEntries(t.root)
}

// Full lists every sealed node's (newest, digest) handle, usable by a
// peer to negotiate which buckets have been observed by both sides.
func (t Tree) Full() []Handle {
	return fullHandles(t.root)
}

// Remove locates the sealed subtree matching handle, extracts its
// entries, and returns a tree with that subtree excised. If no sealed
// subtree matches, Remove is a no-op and returns a nil slice.
func (t Tree) Remove(handle Handle) ([]Entry, Tree) {
	removed, newRoot, found := findAndExcise(t.root, handle)
	if !found {
		return nil, t
	}
	if newRoot == nil {
		newRoot = newEmptyLeaf(t.size)
	}
	return removed, Tree{root: newRoot, size: t.size}
}

// Merge returns the set-union of a and b: every entry present in either
// tree. Implemented by replaying b's entries into a.
func Merge(a, b Tree) (Tree, error) {
	if a.size == 0 {
		a = b
	}
	if b.size == 0 {
		return a, nil
	}
	if a.size != b.size {
		return Tree{}, fmt.Errorf("rot: cannot merge trees of differing bucket size %d and %d", a.size, b.size)
	}
	result := a
	for _, e := range collectEntries(b.root) {
		var err error
		result, err = result.Add(e)
		if err != nil {
			return Tree{}, err
		}
	}
	return result, nil
}
