// Package stateutils holds small helpers shared by the beacon-chain/state
// package: reference counting for the persistent-mode structural-sharing
// contract, and the pubkey<->index map builder.
package stateutils

import "sync"

// Reference is a simple refcount used to decide whether a field can be
// mutated in place (refcount == 1, this clone is the sole owner) or must be
// copied first (refcount > 1, shared with at least one sibling clone).
type Reference struct {
	mu    sync.Mutex
	count uint32
}

// NewRef returns a Reference initialized to refs.
func NewRef(refs uint32) *Reference {
	return &Reference{count: refs}
}

// Refs returns the current reference count.
func (r *Reference) Refs() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// AddRef increments the reference count, called whenever a clone starts
// sharing this field's backing storage.
func (r *Reference) AddRef() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

// MinusRef decrements the reference count, called when a clone detaches
// (copies the field) or is discarded.
func (r *Reference) MinusRef() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count > 0 {
		r.count--
	}
}
