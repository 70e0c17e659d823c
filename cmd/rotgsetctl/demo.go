package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lindqvist-io/rotgset/idgen"
	"github.com/lindqvist-io/rotgset/reconcile"
	"github.com/lindqvist-io/rotgset/replica"
)

// runMergeDemo builds two replicas with divergent histories (both add
// elements the other never observes; b also removes "apple", which it
// never observed, so that remove tombstones nothing), merges them both
// ways, and prints the converged value.
func runMergeDemo(bucketSize uint32, log zerolog.Logger) error {
	a, err := replica.New("a", bucketSize, idgen.NewMonotonic("a"), log)
	if err != nil {
		return err
	}
	b, err := replica.New("b", bucketSize, idgen.NewMonotonic("b"), log)
	if err != nil {
		return err
	}

	if err := a.Add([]byte("apple")); err != nil {
		return err
	}
	if err := a.Add([]byte("banana")); err != nil {
		return err
	}
	if err := b.Add([]byte("cherry")); err != nil {
		return err
	}
	if err := b.Remove([]byte("apple")); err != nil {
		return err
	}

	if err := a.MergeFrom(b); err != nil {
		return err
	}
	if err := b.MergeFrom(a); err != nil {
		return err
	}

	fmt.Println("replica a:")
	printValue(a)
	fmt.Println("replica b:")
	printValue(b)
	return nil
}

// runGCDemo adds and removes enough elements on one replica to seal a
// tombstone bucket, reconciles against a peer that observed the same
// history, and garbage collects every bucket both sides agree on.
func runGCDemo(bucketSize uint32, log zerolog.Logger) error {
	a, err := replica.New("a", bucketSize, idgen.NewMonotonic("a"), log)
	if err != nil {
		return err
	}
	b, err := replica.New("b", bucketSize, idgen.NewMonotonic("b"), log)
	if err != nil {
		return err
	}

	for i := uint32(0); i < bucketSize; i++ {
		elem := []byte(fmt.Sprintf("elem-%d", i))
		if err := a.Add(elem); err != nil {
			return err
		}
	}
	for i := uint32(0); i < bucketSize; i++ {
		elem := []byte(fmt.Sprintf("elem-%d", i))
		if err := a.Remove(elem); err != nil {
			return err
		}
	}
	if err := b.MergeFrom(a); err != nil {
		return err
	}

	safe := reconcile.Intersect(a.GCable(), b.GCable())
	fmt.Printf("handles safe to GC on both replicas: %d\n", len(safe))
	for _, h := range safe {
		if err := a.GC(h); err != nil {
			return err
		}
		if err := b.GC(h); err != nil {
			return err
		}
	}

	fmt.Println("replica a value after gc:", a.Value())
	fmt.Println("replica b value after gc:", b.Value())
	return nil
}
