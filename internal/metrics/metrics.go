// Package metrics exposes Prometheus collectors for RPC traffic and balance
// computations.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitwiser/internal/ledger"
)

const namespace = "splitwiser"

// Balance computation scopes.
const (
	ScopeGroup = "group"
	ScopePair  = "pair"
)

// Metrics holds the collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec

	balanceComputations *prometheus.CounterVec
	ledgerWarnings      *prometheus.CounterVec
}

// New registers all collectors, including Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		balanceComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_computations_total",
			Help:      "Ledger balance computations by scope and outcome.",
		}, []string{"scope", "outcome"}),
		ledgerWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_warnings_total",
			Help:      "Non-fatal ledger integrity warnings by kind.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.balanceComputations,
		m.ledgerWarnings,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRPC records one finished RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// ObserveBalance records a balance computation. Outcome is "ok", "rejected"
// for ledger integrity errors, or "error" for anything else.
func (m *Metrics) ObserveBalance(scope string, warnings []ledger.Warning, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	var integrity *ledger.IntegrityError
	switch {
	case errors.As(err, &integrity):
		outcome = "rejected"
	case err != nil:
		outcome = "error"
	}
	m.balanceComputations.WithLabelValues(scope, outcome).Inc()
	for _, w := range warnings {
		m.ledgerWarnings.WithLabelValues(string(w.Kind)).Inc()
	}
}
