package blocks

import "fmt"

// OperationLimitExceededError reports that a block body carried more of one
// operation kind (proposer slashings, attestations, ...) than the per-slot
// spec limit allows.
type OperationLimitExceededError struct {
	Kind  string
	Limit uint64
	Got   uint64
}

func (e *OperationLimitExceededError) Error() string {
	return fmt.Sprintf("too many %s: got %d, limit %d", e.Kind, e.Got, e.Limit)
}

// NewOperationLimitExceededError constructs an OperationLimitExceededError.
func NewOperationLimitExceededError(kind string, limit, got uint64) error {
	return &OperationLimitExceededError{Kind: kind, Limit: limit, Got: got}
}
