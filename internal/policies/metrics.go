package policies

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks policy lifecycle counters.
type Metrics struct {
	Issued    prometheus.Counter
	Cancelled prometheus.Counter
}

// NewMetrics creates and registers the policy metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Issued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brokerage_policies_issued_total",
			Help: "Total number of policies issued.",
		}),
		Cancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brokerage_policies_cancelled_total",
			Help: "Total number of policies cancelled.",
		}),
	}
}
