package gset

import (
	"github.com/google/btree"

	"github.com/lindqvist-io/rotgset/ident"
)

// addItem is one record in the adds set: an add-id paired with the
// element it introduced. Ordering is by id alone — id is assumed
// globally unique (package idgen salts every id by replica), so a
// btree keyed on id alone doubles as an exact-match index for Delete
// during GC.
type addItem struct {
	id      ident.ID
	element []byte
}

func (a addItem) Less(than btree.Item) bool {
	return a.id.Less(than.(addItem).id)
}

// newAddSet returns an empty adds set. The degree (32) is an ordinary
// B-tree fanout choice, unrelated to ROT's bucket size.
func newAddSet() *btree.BTree {
	return btree.New(32)
}

// unionAddSets returns a set containing every item of both a and b,
// without mutating either.
func unionAddSets(a, b *btree.BTree) *btree.BTree {
	out := a.Clone()
	b.Ascend(func(it btree.Item) bool {
		out.ReplaceOrInsert(it)
		return true
	})
	return out
}
