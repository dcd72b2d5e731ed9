// Package metrics exposes ingest and dispatch counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives pipeline events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	// IngestOutcome counts one finished ingest by its outcome reason.
	IngestOutcome(reason string)
	// TransferResult counts one dispatched submission by its final status.
	TransferResult(status string)
	// DispatchPass records a completed dispatch pass.
	DispatchPass(duration time.Duration, finishedAt time.Time)
}

// Nop discards everything.
type Nop struct{}

func (Nop) IngestOutcome(string)                  {}
func (Nop) TransferResult(string)                 {}
func (Nop) DispatchPass(time.Duration, time.Time) {}

// Prometheus implements Recorder on a private registry.
type Prometheus struct {
	registry     *prometheus.Registry
	ingests      *prometheus.CounterVec
	transfers    *prometheus.CounterVec
	passDuration prometheus.Histogram
	lastPass     prometheus.Gauge
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus registers the seqsubmit collectors plus the Go runtime and
// process collectors on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		ingests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seqsubmit",
			Subsystem: "ingest",
			Name:      "outcomes_total",
			Help:      "Finished ingest requests by outcome reason.",
		}, []string{"reason"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seqsubmit",
			Subsystem: "dispatch",
			Name:      "transfers_total",
			Help:      "Dispatched submissions by resulting status.",
		}, []string{"status"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "seqsubmit",
			Subsystem: "dispatch",
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a dispatch pass.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 10),
		}),
		lastPass: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seqsubmit",
			Subsystem: "dispatch",
			Name:      "last_pass_timestamp_seconds",
			Help:      "Unix time the last dispatch pass finished.",
		}),
	}

	p.registry.MustRegister(
		p.ingests,
		p.transfers,
		p.passDuration,
		p.lastPass,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) IngestOutcome(reason string) {
	p.ingests.WithLabelValues(reason).Inc()
}

func (p *Prometheus) TransferResult(status string) {
	p.transfers.WithLabelValues(status).Inc()
}

func (p *Prometheus) DispatchPass(duration time.Duration, finishedAt time.Time) {
	p.passDuration.Observe(duration.Seconds())
	p.lastPass.Set(float64(finishedAt.Unix()))
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
