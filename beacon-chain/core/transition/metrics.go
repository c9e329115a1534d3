package transition

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink is the observability seam ProcessBlock/ProcessSlots/
// ExecuteStateTransition report through. The zero value of noopMetrics
// satisfies it branch-free, so a caller that never configures a sink pays
// nothing; PrometheusMetrics is the real collaborator for a running node.
type MetricsSink interface {
	// ObserveBlockProcessed records the wall-clock time taken by one
	// ProcessBlock call.
	ObserveBlockProcessed(d time.Duration)
	// ObserveEpochTransition records the wall-clock time taken by one
	// ProcessEpoch call.
	ObserveEpochTransition(d time.Duration)
	// ObserveElapsedTime records, for a just-processed block, how long
	// after the start of its slot it arrived. Callers supply delay
	// themselves; this module never reads a clock (see DESIGN.md).
	ObserveElapsedTime(delay time.Duration)
	// SetValidatorStatusCount reports the number of validators currently
	// in status (e.g. "active_ongoing", "exited_slashed").
	SetValidatorStatusCount(status string, count int)
}

// noopMetrics is the default MetricsSink: every method is a no-op.
type noopMetrics struct{}

func (noopMetrics) ObserveBlockProcessed(time.Duration)       {}
func (noopMetrics) ObserveEpochTransition(time.Duration)      {}
func (noopMetrics) ObserveElapsedTime(time.Duration)          {}
func (noopMetrics) SetValidatorStatusCount(string, int)       {}

// DefaultMetrics is the no-op sink used when Options.Metrics is unset.
var DefaultMetrics MetricsSink = noopMetrics{}

// PrometheusMetrics is a MetricsSink backed by client_golang collectors,
// exposing the `stfn_*` block/epoch transition series.
type PrometheusMetrics struct {
	processBlock     prometheus.Histogram
	epochTransition  prometheus.Histogram
	elapsedTime      prometheus.Histogram
	validatorStatus  *prometheus.GaugeVec
}

// NewPrometheusMetrics registers and returns a PrometheusMetrics sink on
// reg. Passing prometheus.DefaultRegisterer matches most callers' needs.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		processBlock: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "stfn_process_block_seconds",
			Help: "Time taken by one ProcessBlock call.",
		}),
		epochTransition: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "stfn_epoch_transition_seconds",
			Help: "Time taken by one ProcessEpoch call.",
		}),
		elapsedTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "stfn_elapsed_time_till_processed_seconds",
			Help: "Time between a block's slot start and it being processed.",
		}),
		validatorStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "register_validator_statuses",
			Help: "Number of validators in each status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.processBlock, m.epochTransition, m.elapsedTime, m.validatorStatus)
	return m
}

func (m *PrometheusMetrics) ObserveBlockProcessed(d time.Duration) {
	m.processBlock.Observe(d.Seconds())
}

func (m *PrometheusMetrics) ObserveEpochTransition(d time.Duration) {
	m.epochTransition.Observe(d.Seconds())
}

func (m *PrometheusMetrics) ObserveElapsedTime(delay time.Duration) {
	m.elapsedTime.Observe(delay.Seconds())
}

func (m *PrometheusMetrics) SetValidatorStatusCount(status string, count int) {
	m.validatorStatus.WithLabelValues(status).Set(float64(count))
}
