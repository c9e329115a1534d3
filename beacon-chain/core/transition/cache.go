package transition

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
)

var log = logrus.WithField("prefix", "transition")

// skipSlotCacheSize bounds the number of parent-root entries SkipSlotCache
// keeps, evicting the oldest insertion once exceeded. Skipped slots are
// replayed from genesis in the worst case, so this is purely an
// optimization: disabling the cache must not change any observable root.
const skipSlotCacheSize = 8

// skipSlotCache memoizes the furthest state reached so far for a given
// parent block root, so repeated ProcessSlots calls targeting the same
// root (a common pattern for fork-choice re-evaluation) don't replay every
// skipped slot from scratch each time. The entry count stays tiny (bounded
// by live fork-choice heads), so a mutex-guarded map suffices.
type skipSlotCache struct {
	mu      sync.Mutex
	entries map[[32]byte]*state.BeaconState
	order   [][32]byte
}

// NewSkipSlotCache returns an empty cache, for tests that want isolation
// from the process-wide DefaultSkipSlotCache.
func NewSkipSlotCache() *skipSlotCache {
	return &skipSlotCache{entries: make(map[[32]byte]*state.BeaconState)}
}

// DefaultSkipSlotCache is the process-wide cache ProcessSlotsUsingSkipSlotCache
// consults when no WithSkipSlotCache option is given.
var DefaultSkipSlotCache = NewSkipSlotCache()

// get returns a clone of the cached state for parentRoot, if any, and
// whether it was found. Handing out a clone (O(1), copy-on-write) keeps
// callers from mutating the memoized entry in place.
func (c *skipSlotCache) get(parentRoot [32]byte) (*state.BeaconState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.entries[parentRoot]
	if !ok {
		return nil, false
	}
	return st.Copy(), true
}

// put caches st under parentRoot only if it advances further than the slot
// already memoized there (if any), evicting the oldest entry first when at
// capacity.
func (c *skipSlotCache) put(parentRoot [32]byte, st *state.BeaconState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[parentRoot]; ok {
		if existing.Slot() >= st.Slot() {
			return
		}
	} else {
		if len(c.order) >= skipSlotCacheSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
			log.WithField("root", oldest).Warn("Evicting skip slot cache entry")
		}
		c.order = append(c.order, parentRoot)
	}
	// Snapshot the state as a read-only clone: the caller is usually still
	// mid-transition and will keep mutating st, which detaches st from the
	// snapshot on its next write.
	cp := st.Copy()
	cp.SetCachesPersistent()
	c.entries[parentRoot] = cp
}
