package gset

import (
	"errors"
	"fmt"

	"github.com/lindqvist-io/rotgset/errkind"
	"github.com/lindqvist-io/rotgset/ident"
	"github.com/lindqvist-io/rotgset/rot"
)

// ErrNonMonotonicId is returned by Add/Remove when the supplied id is not
// strictly greater than the last one this GSet value accepted on the
// same namespace.
var ErrNonMonotonicId = errors.New("gset: id is not greater than the last id accepted for this operation")

// ErrUnknownHandle is returned by GC when handle matches no sealed
// bucket in removes. Not fatal: callers should treat it as a replay of
// a GC step a peer has already performed.
var ErrUnknownHandle = errors.New("gset: handle matches no sealed bucket")

// KindOf reports the errkind.Kind carried by err, if any.
func KindOf(err error) (errkind.Kind, bool) {
	switch {
	case errors.Is(err, ErrNonMonotonicId):
		return errkind.NonMonotonicId, true
	case errors.Is(err, ErrUnknownHandle):
		return errkind.UnknownHandle, true
	}
	return 0, false
}

func nonMonotonic(id ident.ID) error {
	return fmt.Errorf("%w: %s", ErrNonMonotonicId, id)
}

func unknownHandle(h rot.Handle) error {
	return fmt.Errorf("%w: newest=%s digest=%s", ErrUnknownHandle, h.Newest, h.Digest)
}
