package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reliablemail"

// Metrics holds the Prometheus collectors for queue and worker activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg prometheus.Registerer

	jobsEnqueued prometheus.Counter
	jobsResolved *prometheus.CounterVec
	storeRetries *prometheus.CounterVec
	workerErrors *prometheus.CounterVec
	sendDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		reg: reg,
		jobsEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_enqueued_total",
			Help:      "The total number of jobs appended to the pending list.",
		}),
		jobsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_resolved_total",
			Help:      "The total number of reservations resolved by workers.",
		}, []string{"outcome"}), // outcome: completed, discarded
		storeRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_retries_total",
			Help:      "The total number of store calls retried after a connectivity error.",
		}, []string{"op"}),
		workerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_fatal_errors_total",
			Help:      "The total number of errors that stopped a worker loop.",
		}, []string{"stage"}),
		sendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "send_duration_seconds",
			Help:      "Duration of delivery attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"backend", "result"}),
	}
}

// JobEnqueued counts one appended job
func (m *Metrics) JobEnqueued() {
	if m == nil {
		return
	}
	m.jobsEnqueued.Inc()
}

// JobResolved counts one resolved reservation
func (m *Metrics) JobResolved(outcome string) {
	if m == nil {
		return
	}
	m.jobsResolved.WithLabelValues(outcome).Inc()
}

// StoreRetried counts one retried store call
func (m *Metrics) StoreRetried(op string) {
	if m == nil {
		return
	}
	m.storeRetries.WithLabelValues(op).Inc()
}

// WorkerFailed counts one fatal worker error at the given loop stage
func (m *Metrics) WorkerFailed(stage string) {
	if m == nil {
		return
	}
	m.workerErrors.WithLabelValues(stage).Inc()
}

// ObserveSend records the duration of one delivery attempt
func (m *Metrics) ObserveSend(backend, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.sendDuration.WithLabelValues(backend, result).Observe(d.Seconds())
}

// StatsFunc returns the current list lengths: pending, processing, discarded
type StatsFunc func(ctx context.Context) (pending, processing, discarded int64, err error)

// RegisterQueueLength exposes the list lengths as a gauge collected on scrape.
// Each scrape calls fn with the given timeout; failures are reported as -1.
func (m *Metrics) RegisterQueueLength(fn StatsFunc, timeout time.Duration) error {
	if m == nil || fn == nil {
		return nil
	}
	return m.reg.Register(&queueLengthCollector{fn: fn, timeout: timeout})
}

var queueLengthDesc = prometheus.NewDesc(
	prometheus.BuildFQName(namespace, "", "queue_length"),
	"Current number of items in each queue list.",
	[]string{"list"}, nil,
)

type queueLengthCollector struct {
	fn      StatsFunc
	timeout time.Duration
}

func (c *queueLengthCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- queueLengthDesc
}

func (c *queueLengthCollector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	pending, processing, discarded, err := c.fn(ctx)
	if err != nil {
		pending, processing, discarded = -1, -1, -1
	}
	ch <- prometheus.MustNewConstMetric(queueLengthDesc, prometheus.GaugeValue, float64(pending), "pending")
	ch <- prometheus.MustNewConstMetric(queueLengthDesc, prometheus.GaugeValue, float64(processing), "processing")
	ch <- prometheus.MustNewConstMetric(queueLengthDesc, prometheus.GaugeValue, float64(discarded), "discarded")
}
