// Package metrics defines the dashboard's Prometheus metrics. HTTP request
// metrics live in the api middleware; these cover the domain operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK              = "ok"
	OutcomeValidationError = "validation_error"
	OutcomeTransportError  = "transport_error"
	OutcomeCanceled        = "canceled"
	OutcomeSuperseded      = "superseded"
	OutcomeRejected        = "rejected"
)

var (
	// FetchTotal counts incident fetches through the proxy by outcome.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertboard_fetch_total",
			Help: "Incident fetches by outcome.",
		},
		[]string{"outcome"},
	)

	// ProxyUpstreamTotal counts forwarded requests by route and upstream status.
	ProxyUpstreamTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertboard_proxy_upstream_total",
			Help: "Requests forwarded to the alerting backend by route and status.",
		},
		[]string{"route", "status"},
	)

	ProxyUpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alertboard_proxy_upstream_duration_seconds",
			Help:    "Alerting backend round-trip time for forwarded requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// RefreshTotal counts dashboard refreshes by what happened to their result.
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertboard_refresh_total",
			Help: "Dashboard refreshes by outcome.",
		},
		[]string{"outcome"},
	)

	// AnnotationSavesTotal counts annotation writes by outcome.
	AnnotationSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertboard_annotation_saves_total",
			Help: "Annotation writes by outcome.",
		},
		[]string{"outcome"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alertboard_sessions_active",
			Help: "Dashboard view sessions currently held in memory.",
		},
	)
)
