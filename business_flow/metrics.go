package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Eligibility checks partitioned by outcome: eligible, not_eligible, cancelled, error
	eligibilityChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_eligibility_checks_total",
			Help: "Total number of eligibility checks by outcome",
		},
		[]string{"outcome"},
	)

	eligibilityCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roster_eligibility_check_duration_seconds",
			Help:    "Eligibility check latency in seconds, including configured delay",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Phones moved between partitions, by destination side
	partitionMovesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_partition_moves_total",
			Help: "Total number of phone numbers moved between call list sides",
		},
		[]string{"to"},
	)

	rosterCustomers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roster_customers",
			Help: "Number of eligible customers currently loaded",
		},
	)

	rosterCalled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roster_called_phone_numbers",
			Help: "Number of phone numbers in the called partition",
		},
	)

	lookupExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roster_lookup_exports_total",
			Help: "Total number of lookup history exports",
		},
	)
)
