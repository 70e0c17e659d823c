// Package replica wraps a gset.GSet with the mutex discipline a single
// process actually needs to own one: a lock serializing writers, a
// Clock minting ids, and structured logging for every accepted or
// rejected operation. One mutex guards the whole replica instance;
// there is no finer-grained locking to get wrong.
package replica

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lindqvist-io/rotgset/gset"
	"github.com/lindqvist-io/rotgset/idgen"
	"github.com/lindqvist-io/rotgset/rot"
)

// Replica is a single-owner, concurrency-safe handle to a GSet.
type Replica struct {
	mu    sync.RWMutex
	name  string
	clock idgen.Clock
	log   zerolog.Logger
	state gset.GSet
}

// New constructs a Replica with a fresh, empty GSet using the given
// tombstone-bucket capacity.
func New(name string, bucketSize uint32, clock idgen.Clock, log zerolog.Logger) (*Replica, error) {
	state, err := gset.New(bucketSize)
	if err != nil {
		return nil, fmt.Errorf("replica %s: %w", name, err)
	}
	return &Replica{
		name:  name,
		clock: clock,
		log:   log.With().Str("replica", name).Logger(),
		state: state,
	}, nil
}

// Name returns the replica's name.
func (r *Replica) Name() string { return r.name }

// Add inserts elem, stamped with a fresh id from the replica's clock.
func (r *Replica) Add(elem []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.clock.FreshID()
	next, err := r.state.Add(id, elem)
	if err != nil {
		r.log.Warn().Err(err).Str("id", id.String()).Msg("add rejected")
		return err
	}
	r.state = next
	r.log.Debug().Str("id", id.String()).Bytes("elem", elem).Msg("add")
	return nil
}

// Remove tombstones every add-record this replica currently observes
// for elem.
func (r *Replica) Remove(elem []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tombID := r.clock.NowMicros()
	next, err := r.state.Remove(tombID, elem)
	if err != nil {
		r.log.Warn().Err(err).Str("tomb_id", tombID.String()).Msg("remove rejected")
		return err
	}
	r.state = next
	r.log.Debug().Str("tomb_id", tombID.String()).Bytes("elem", elem).Msg("remove")
	return nil
}

// Value returns the effective set of payloads.
func (r *Replica) Value() [][]byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Value()
}

// GCable returns the tombstone-bucket handles this replica can reclaim.
func (r *Replica) GCable() []rot.Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.GCable()
}

// GC applies one garbage-collection step for handle. An
// gset.ErrUnknownHandle is expected and non-fatal when replaying a
// peer's GC trail; the replica's state still advances (the attempt is
// recorded) even when this returns an error.
func (r *Replica) GC(handle rot.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, err := r.state.GC(handle)
	r.state = next
	if err != nil {
		r.log.Debug().Err(err).Str("newest", handle.Newest.String()).Msg("gc replay")
		return err
	}
	r.log.Info().Str("newest", handle.Newest.String()).Msg("gc")
	return nil
}

// MergeFrom folds peer's current state into r.
func (r *Replica) MergeFrom(peer *Replica) error {
	peer.mu.RLock()
	peerState := peer.state
	peerName := peer.name
	peer.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	merged, err := gset.Merge(r.state, peerState)
	if err != nil {
		r.log.Warn().Err(err).Str("peer", peerName).Msg("merge failed")
		return err
	}
	r.state = merged
	r.log.Debug().Str("peer", peerName).Msg("merge")
	return nil
}
