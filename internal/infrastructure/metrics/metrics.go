package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the domain-level Prometheus metrics. The HTTP layer keeps its
// own request metrics in the middleware package.
type Metrics struct {
	// Split metrics
	SplitsCompleted prometheus.Counter
	SplitErrors     *prometheus.CounterVec
	SplitDuration   prometheus.Histogram
	SplitShares     prometheus.Histogram

	// Ledger metrics
	EntriesRecorded prometheus.Counter
	EntriesArchived prometheus.Counter
	EntriesCreated  prometheus.Counter

	// Vault metrics
	VaultsCreated     prometheus.Counter
	CurrenciesCreated prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SplitsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "partyvault_splits_completed_total",
			Help: "Total number of completed holdings splits",
		}),
		SplitErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partyvault_split_errors_total",
				Help: "Total number of failed splits by reason",
			},
			[]string{"reason"},
		),
		SplitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "partyvault_split_duration_seconds",
			Help:    "Duration of split operations",
			Buckets: prometheus.DefBuckets,
		}),
		SplitShares: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "partyvault_split_shares",
			Help:    "Number of shares per split",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 20},
		}),

		EntriesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "partyvault_entries_recorded_total",
			Help: "Total number of holdings entries recorded by members",
		}),
		EntriesArchived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "partyvault_entries_archived_total",
			Help: "Total number of entries archived by splits",
		}),
		EntriesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "partyvault_entries_created_total",
			Help: "Total number of retained entries created by splits",
		}),

		VaultsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "partyvault_vaults_created_total",
			Help: "Total number of vaults created",
		}),
		CurrenciesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "partyvault_currencies_created_total",
			Help: "Total number of currencies created",
		}),
	}
}
