package claims

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks claim intake and review counters.
type Metrics struct {
	Filed    prometheus.Counter
	Approved prometheus.Counter
	Rejected prometheus.Counter
}

// NewMetrics creates and registers the claim metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Filed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brokerage_claims_filed_total",
			Help: "Total number of claims filed.",
		}),
		Approved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brokerage_claims_approved_total",
			Help: "Total number of claims approved.",
		}),
		Rejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brokerage_claims_rejected_total",
			Help: "Total number of claims rejected.",
		}),
	}
}
