package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Authorization metrics
	AuthzDecisions    *prometheus.CounterVec
	PredicateLatency  *prometheus.HistogramVec
	VerificationGates *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitDecisions *prometheus.CounterVec

	// Lookup metrics
	LookupOperations *prometheus.CounterVec
	LookupLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics on reg. A nil reg
// registers on the default prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		AuthzDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Authorization decisions by role, resource, action and outcome",
		}, []string{"role", "resource", "action", "outcome"}),
		PredicateLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "predicate_duration_seconds",
			Help:      "Time spent evaluating ownership predicates",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"resource", "action"}),
		VerificationGates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "verification_gate_total",
			Help:      "Verification gate outcomes on protected routes",
		}, []string{"outcome"}),

		RateLimitDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "decisions_total",
			Help:      "Rate limiter decisions by scope and outcome",
		}, []string{"scope", "outcome"}),

		LookupOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "operations_total",
			Help:      "Total number of ownership lookups",
		}, []string{"operation", "status"}),
		LookupLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "operation_duration_seconds",
			Help:      "Duration of ownership lookups",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		}, []string{"operation"}),
	}
}

// NewNop returns metrics registered on a private registry, for tests and tools.
func NewNop() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}
