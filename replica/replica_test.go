package replica

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lindqvist-io/rotgset/gset"
	"github.com/lindqvist-io/rotgset/ident"
	"github.com/lindqvist-io/rotgset/idgen"
	"github.com/lindqvist-io/rotgset/rot"
)

func bogusHandle() rot.Handle {
	return rot.Handle{Newest: ident.FromUint64(999)}
}

func newTestReplica(t *testing.T, name string) *Replica {
	t.Helper()
	r, err := New(name, 3, idgen.NewMonotonic(name), zerolog.Nop())
	if err != nil {
		t.Fatalf("New(%s): %v", name, err)
	}
	return r
}

func containsString(vs [][]byte, want string) bool {
	for _, v := range vs {
		if string(v) == want {
			return true
		}
	}
	return false
}

func TestAddRemoveValue(t *testing.T) {
	r := newTestReplica(t, "a")
	if err := r.Add([]byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := r.Add([]byte("y")); err != nil {
		t.Fatal(err)
	}
	if got := r.Value(); !containsString(got, "x") || !containsString(got, "y") {
		t.Fatalf("expected x and y, got %v", got)
	}
	if err := r.Remove([]byte("x")); err != nil {
		t.Fatal(err)
	}
	if got := r.Value(); containsString(got, "x") {
		t.Fatalf("x should have been removed, got %v", got)
	}
}

func TestMergeFromConvergesTwoReplicas(t *testing.T) {
	a := newTestReplica(t, "replica-a")
	b := newTestReplica(t, "replica-b")

	if err := a.Add([]byte("from-a")); err != nil {
		t.Fatal(err)
	}
	if err := b.Add([]byte("from-b")); err != nil {
		t.Fatal(err)
	}

	if err := a.MergeFrom(b); err != nil {
		t.Fatal(err)
	}
	if err := b.MergeFrom(a); err != nil {
		t.Fatal(err)
	}

	av, bv := a.Value(), b.Value()
	if len(av) != len(bv) {
		t.Fatalf("replicas did not converge: %v vs %v", av, bv)
	}
	for i := range av {
		if string(av[i]) != string(bv[i]) {
			t.Fatalf("replicas did not converge: %v vs %v", av, bv)
		}
	}
}

func TestGCReplayUnknownHandleIsNonFatal(t *testing.T) {
	a := newTestReplica(t, "a")
	err := a.GC(bogusHandle())
	if err == nil {
		t.Fatal("expected an error for an unknown handle")
	}
	if !errors.Is(err, gset.ErrUnknownHandle) {
		t.Fatalf("expected ErrUnknownHandle, got %v", err)
	}
}
