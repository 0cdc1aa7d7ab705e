// Package metrics exposes chat outcome counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resumechat"

// Recorder counts answers by route and retrieval passes by tier on its own registry.
type Recorder struct {
	registry *prometheus.Registry
	answers  *prometheus.CounterVec
	tiers    *prometheus.CounterVec
}

// NewRecorder creates a recorder with Go runtime and process collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Chat answers by terminal route.",
		}, []string{"route"}),
		tiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_tier_total",
			Help:      "Retrieval passes by the tier that produced the result.",
		}, []string{"tier"}),
	}
	r.registry.MustRegister(
		r.answers,
		r.tiers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) RecordAnswer(route string) { r.answers.WithLabelValues(route).Inc() }

func (r *Recorder) RecordTier(tier string) { r.tiers.WithLabelValues(tier).Inc() }

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
