package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the sync pipeline. It satisfies
// the ingestion and read-path recorder interfaces.
type Metrics struct {
	registry *prometheus.Registry

	WebhooksTotal         *prometheus.CounterVec
	MeetingsWrittenTotal  *prometheus.CounterVec
	DuplicateAPIKeysTotal prometheus.Counter
	ReadFallbacksTotal    *prometheus.CounterVec
	RegistrationsTotal    *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		WebhooksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhooks_total",
				Help:      "Inbound webhook events by outcome",
			},
			[]string{"outcome"},
		),
		MeetingsWrittenTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meetings_written_total",
				Help:      "Meeting upserts by result",
			},
			[]string{"result"},
		),
		DuplicateAPIKeysTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicate_api_key_resolutions_total",
				Help:      "Resolutions where an api key matched more than one account",
			},
		),
		ReadFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "read_fallbacks_total",
				Help:      "Meeting reads served from the placeholder set, by reason",
			},
			[]string{"reason"},
		),
		RegistrationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Registration forwarding attempts by result",
			},
			[]string{"result"},
		),
	}
}

// Outcome counts one webhook outcome
func (m *Metrics) Outcome(outcome string) {
	m.WebhooksTotal.WithLabelValues(outcome).Inc()
}

// MeetingsWritten counts per-record upsert results
func (m *Metrics) MeetingsWritten(succeeded, failed int) {
	m.MeetingsWrittenTotal.WithLabelValues("succeeded").Add(float64(succeeded))
	m.MeetingsWrittenTotal.WithLabelValues("failed").Add(float64(failed))
}

// DuplicateAPIKey counts a uniqueness violation seen by the resolver
func (m *Metrics) DuplicateAPIKey() {
	m.DuplicateAPIKeysTotal.Inc()
}

// Fallback counts a placeholder read
func (m *Metrics) Fallback(reason string) {
	m.ReadFallbacksTotal.WithLabelValues(reason).Inc()
}

// Registration counts a forwarding result ("completed" or "failed")
func (m *Metrics) Registration(result string) {
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
