package reconcile

import (
	"testing"

	"github.com/lindqvist-io/rotgset/ident"
	"github.com/lindqvist-io/rotgset/rot"
)

func handle(n uint64, b byte) rot.Handle {
	var d ident.Digest
	d[0] = b
	return rot.Handle{Newest: ident.FromUint64(n), Digest: d}
}

func TestIntersectCommonSubset(t *testing.T) {
	h1, h2, h3 := handle(1, 0xa), handle(2, 0xb), handle(3, 0xc)
	a := []rot.Handle{h1, h2, h3}
	b := []rot.Handle{h1, h3}
	c := []rot.Handle{h1, h2, h3}

	got := Intersect(a, b, c)
	if len(got) != 2 {
		t.Fatalf("expected 2 common handles, got %d: %v", len(got), got)
	}
	for _, want := range []rot.Handle{h1, h3} {
		found := false
		for _, g := range got {
			if g.Equal(want) {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %v in intersection, got %v", want, got)
		}
	}
}

func TestIntersectEmptyWhenNoOverlap(t *testing.T) {
	a := []rot.Handle{handle(1, 0xa)}
	b := []rot.Handle{handle(2, 0xb)}
	if got := Intersect(a, b); len(got) != 0 {
		t.Fatalf("expected no overlap, got %v", got)
	}
}

func TestIntersectSinglePeerIsIdentity(t *testing.T) {
	a := []rot.Handle{handle(1, 0xa), handle(2, 0xb)}
	got := Intersect(a)
	if len(got) != len(a) {
		t.Fatalf("expected identity for single peer, got %v", got)
	}
}
