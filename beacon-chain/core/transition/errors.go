package transition

import (
	"github.com/pkg/errors"
)

// Sentinel error kinds the driver and its callers can distinguish with
// errors.Is, one per class of rejection the state transition function can
// produce.
var (
	// ErrNilState is returned whenever a nil *state.BeaconState is handed
	// to an exported entry point.
	ErrNilState = errors.New("nil beacon state")
	// ErrNilBlock is returned whenever a nil signed block is handed to an
	// exported entry point.
	ErrNilBlock = errors.New("nil signed block")
	// ErrSlotRegression is returned when the requested target slot is
	// behind the state's current slot (equality is a zero-slot no-op, not
	// an error).
	ErrSlotRegression = errors.New("target slot is behind state slot")
	// ErrInvalidBlockSignature is returned when a block's proposer
	// signature fails verification.
	ErrInvalidBlockSignature = errors.New("invalid block signature")
	// ErrInvalidStateRoot is returned when the computed post-state root
	// does not match the block's declared state root.
	ErrInvalidStateRoot = errors.New("invalid post-state root")
	// ErrInvalidSignatureBatch is returned when the block-wide batched
	// signature verification fails.
	ErrInvalidSignatureBatch = errors.New("invalid aggregate signature batch")
	// ErrUnknownFork is returned when a state or block carries a fork
	// version this module has no processing path for.
	ErrUnknownFork = errors.New("unknown fork version")
)
