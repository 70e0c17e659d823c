package idgen

import "testing"

func TestFreshIDMonotonic(t *testing.T) {
	c := NewMonotonic("replica-a")
	prev := c.FreshID()
	for i := 0; i < 1000; i++ {
		next := c.FreshID()
		if !next.Greater(prev) {
			t.Fatalf("FreshID not strictly increasing: %v then %v", prev, next)
		}
		prev = next
	}
}

func TestFreshIDDistinctReplicasDoNotCollide(t *testing.T) {
	a := NewMonotonic("replica-a")
	b := NewMonotonic("replica-b")
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		for _, s := range []string{a.FreshID().String(), b.FreshID().String()} {
			if _, ok := seen[s]; ok {
				t.Fatalf("collision on id %s", s)
			}
			seen[s] = struct{}{}
		}
	}
}

func TestNowMicrosSaltedDistinctFromFreshID(t *testing.T) {
	c := NewMonotonic("replica-a")
	tomb := c.NowMicros()
	add := c.FreshID()
	if tomb.Equal(add) {
		t.Fatal("tombstone and add id namespaces collided")
	}
}
