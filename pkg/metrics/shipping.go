package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Quote outcomes.
const (
	QuoteOutcomeOK       = "ok"
	QuoteOutcomeDegraded = "degraded"
	QuoteOutcomeInvalid  = "invalid"
)

// Reconcile actions.
const (
	ReconcileActionDetected = "detected"
	ReconcileActionFixed    = "fixed"
	ReconcileActionConflict = "conflict"
	ReconcileActionSkipped  = "skipped"
)

// ShippingMetrics counts fee calculations and reconciliation outcomes.
type ShippingMetrics struct {
	quotes      *prometheus.CounterVec
	rateSources *prometheus.CounterVec
	reconcile   *prometheus.CounterVec
}

// NewShippingMetrics registers the shipping collectors. A nil registerer
// yields a no-op recorder.
func NewShippingMetrics(reg prometheus.Registerer) *ShippingMetrics {
	if reg == nil {
		return &ShippingMetrics{}
	}
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "quote_total",
		Help:      "Shipping fee calculations by outcome.",
	}, []string{"outcome"})
	rateSources := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "vendor_rate_source_total",
		Help:      "Vendor groups priced, by where the base rate came from.",
	}, []string{"source"})
	reconcile := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "reconcile_discrepancy_total",
		Help:      "Order shipping discrepancies by reconciliation action.",
	}, []string{"action"})
	reg.MustRegister(quotes, rateSources, reconcile)
	return &ShippingMetrics{quotes: quotes, rateSources: rateSources, reconcile: reconcile}
}

func (m *ShippingMetrics) IncQuote(outcome string) {
	if m == nil || m.quotes == nil {
		return
	}
	m.quotes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *ShippingMetrics) IncRateSource(source string) {
	if m == nil || m.rateSources == nil {
		return
	}
	m.rateSources.WithLabelValues(normalizeLabel(source)).Inc()
}

func (m *ShippingMetrics) IncReconcile(action string) {
	if m == nil || m.reconcile == nil {
		return
	}
	m.reconcile.WithLabelValues(normalizeLabel(action)).Inc()
}
