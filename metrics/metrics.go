package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leaderboard"

// Outcome labels for submissions and publishes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

type Metrics struct {
	registry       *prometheus.Registry
	submissions    *prometheus.CounterVec
	rows           *prometheus.CounterVec
	submitDuration prometheus.Histogram
	exports        *prometheus.CounterVec
	publishes      *prometheus.CounterVec
	hubBroadcasts  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Result batches received, by outcome.",
		}, []string{"outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "standings_written_total",
			Help:      "Standings written by accepted batches, split into created and updated.",
		}, []string{"kind"}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_seconds",
			Help:      "Time spent ingesting one batch including persistence.",
			Buckets:   prometheus.DefBuckets,
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Exports produced, by format.",
		}, []string{"format"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publishes_total",
			Help:      "Exports uploaded to object storage, by outcome.",
		}, []string{"outcome"}),
		hubBroadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_updates_total",
			Help:      "Live update messages delivered to websocket subscribers.",
		}),
	}

	reg.MustRegister(
		m.submissions, m.rows, m.submitDuration, m.exports, m.publishes, m.hubBroadcasts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) RecordSubmission(outcome string, created, updated int, took time.Duration) {
	m.submissions.WithLabelValues(outcome).Inc()
	m.submitDuration.Observe(took.Seconds())
	if outcome == OutcomeOK {
		m.rows.WithLabelValues("created").Add(float64(created))
		m.rows.WithLabelValues("updated").Add(float64(updated))
	}
}

func (m *Metrics) RecordExport(format string) {
	m.exports.WithLabelValues(format).Inc()
}

func (m *Metrics) RecordPublish(outcome string) {
	m.publishes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordLiveUpdates(delivered int) {
	m.hubBroadcasts.Add(float64(delivered))
}
