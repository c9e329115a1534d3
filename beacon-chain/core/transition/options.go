package transition

// Option configures a single ExecuteStateTransition/ProcessSlots call's
// collaborators, defaulting to the process-wide sink/cache when unset.
type Option func(*options)

type options struct {
	metricsSink MetricsSink
	cache       *skipSlotCache

	// The three independent verification toggles of the state transition:
	// each defaults to true and is skipped, not weakened, when false.
	verifyProposer   bool
	verifySignatures bool
	verifyStateRoot  bool
}

func resolveOptions(opts []Option) *options {
	o := &options{
		verifyProposer:   true,
		verifySignatures: true,
		verifyStateRoot:  true,
	}
	for _, apply := range opts {
		apply(o)
	}
	return o
}

func (o *options) metrics() MetricsSink {
	if o.metricsSink == nil {
		return DefaultMetrics
	}
	return o.metricsSink
}

func (o *options) skipSlotCache() *skipSlotCache {
	if o.cache == nil {
		return DefaultSkipSlotCache
	}
	return o.cache
}

// WithMetrics routes a call's observability through sink instead of
// DefaultMetrics.
func WithMetrics(sink MetricsSink) Option {
	return func(o *options) { o.metricsSink = sink }
}

// WithSkipSlotCache routes ProcessSlotsUsingSkipSlotCache through cache
// instead of DefaultSkipSlotCache. Intended for tests that need isolation
// from the process-wide cache.
func WithSkipSlotCache(cache *skipSlotCache) Option {
	return func(o *options) { o.cache = cache }
}

// WithVerifyProposer toggles the proposer envelope signature check
// (default true). A fork-choice driver that already verified the envelope
// on gossip can skip re-verifying it here.
func WithVerifyProposer(v bool) Option {
	return func(o *options) { o.verifyProposer = v }
}

// WithVerifySignatures toggles all in-block BLS verification: randao
// reveal, attestations, attester slashings, voluntary exits, and the sync
// aggregate (default true). When false the block is applied without any of
// those pairing checks; callers wanting the deferred sets instead of
// silence should use ExecuteStateTransitionNoVerifyAnySig.
func WithVerifySignatures(v bool) Option {
	return func(o *options) { o.verifySignatures = v }
}

// WithVerifyStateRoot toggles the final post-state-root-vs-block check
// (default true). CalculateStateRoot is the intended way to obtain a root
// without the check; this option exists for drivers replaying blocks whose
// roots were already validated.
func WithVerifyStateRoot(v bool) Option {
	return func(o *options) { o.verifyStateRoot = v }
}
