package state

// StorageMode tags which of the two representations a CachedBeaconState is
// currently in.
type StorageMode uint8

const (
	// ModeTransient favors bulk mutation: epoch processing rewrites most of
	// `balances` every epoch, and mutation is only efficient when nothing
	// else aliases the backing slices.
	ModeTransient StorageMode = iota
	// ModePersistent favors cheap cloning and HashTreeRoot: callers holding
	// a persistent-mode state must treat it as read-only.
	ModePersistent
)

// String implements fmt.Stringer.
func (m StorageMode) String() string {
	switch m {
	case ModeTransient:
		return "transient"
	case ModePersistent:
		return "persistent"
	default:
		return "unknown"
	}
}
