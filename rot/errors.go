package rot

import (
	"errors"
	"fmt"

	"github.com/lindqvist-io/rotgset/errkind"
)

// ErrCapacityViolation is returned by New when size < 2.
var ErrCapacityViolation = errors.New("rot: size must be >= 2")

// KindOf reports the errkind.Kind carried by err, if any.
func KindOf(err error) (errkind.Kind, bool) {
	if errors.Is(err, ErrCapacityViolation) {
		return errkind.CapacityViolation, true
	}
	return 0, false
}

func capacityViolation(size uint32) error {
	return fmt.Errorf("%w: got %d", ErrCapacityViolation, size)
}
