// Package metrics defines the Prometheus collectors of the incident search UI.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. It implements search.Observer.
type Metrics struct {
	queries        *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	languageSwitch *prometheus.CounterVec
	pageRenders    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "incident_search_queries_total",
				Help: "Total number of incident search query cycles by outcome",
			},
			[]string{"outcome"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "incident_search_query_duration_seconds",
				Help:    "Wall-clock duration of incident search query cycles",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		languageSwitch: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "incident_search_language_switches_total",
				Help: "Total number of explicit language switches",
			},
			[]string{"lang"},
		),
		pageRenders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "incident_search_page_renders_total",
				Help: "Total number of search page renders by triggering action",
			},
			[]string{"action"},
		),
	}
	reg.MustRegister(m.queries, m.queryDuration, m.languageSwitch, m.pageRenders)
	return m
}

// ObserveQuery records one finished query cycle.
func (m *Metrics) ObserveQuery(outcome string, elapsed time.Duration) {
	m.queries.WithLabelValues(outcome).Inc()
	m.queryDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// LanguageSwitched records an explicit language change.
func (m *Metrics) LanguageSwitched(lang string) {
	m.languageSwitch.WithLabelValues(lang).Inc()
}

// PageRendered records a search page render.
func (m *Metrics) PageRendered(action string) {
	m.pageRenders.WithLabelValues(action).Inc()
}
