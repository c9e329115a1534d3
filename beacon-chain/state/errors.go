package state

import "github.com/pkg/errors"

// ErrNilState is returned by any operation given a nil BeaconState.
var ErrNilState = errors.New("nil state")

// ErrNilValidator is returned when a validator lookup misses.
var ErrNilValidator = errors.New("nil validator")

// BadStateModeError reports that a caller used an API only valid in the
// state's other storage mode. The mode split is a contract, not a hint.
type BadStateModeError struct {
	Expected StorageMode
	Actual   StorageMode
}

func (e *BadStateModeError) Error() string {
	return "bad state mode: expected " + e.Expected.String() + ", got " + e.Actual.String()
}

// NewBadStateModeError constructs a BadStateModeError.
func NewBadStateModeError(expected, actual StorageMode) error {
	return &BadStateModeError{Expected: expected, Actual: actual}
}
