package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for one processing run.
type Metrics struct {
	// Entry metrics
	EntriesProcessed *prometheus.CounterVec
	EntriesRejected  *prometheus.CounterVec
	EntriesDiscarded prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter
	AccountsLocked  prometheus.Counter
}

// New creates and registers all metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EntriesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payengine_entries_processed_total",
				Help: "Total number of entries applied to an account",
			},
			[]string{"kind"},
		),
		EntriesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payengine_entries_rejected_total",
				Help: "Total number of entries dropped by a business rule",
			},
			[]string{"kind", "reason"},
		),
		EntriesDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "payengine_entries_discarded_total",
			Help: "Total number of input records that failed to parse",
		}),
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "payengine_accounts_created_total",
			Help: "Total number of accounts created on first reference",
		}),
		AccountsLocked: factory.NewCounter(prometheus.CounterOpts{
			Name: "payengine_accounts_locked_total",
			Help: "Total number of accounts locked by a chargeback",
		}),
	}
}
