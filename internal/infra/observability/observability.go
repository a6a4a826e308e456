// Package observability exposes Prometheus metrics for the allocation engine.
// Counters track allocation throughput and failures; gauges mirror the
// current shortage picture so dashboards and alerts see the same severity
// classification the engine allocates by.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Allocation Metrics ─────────────────────────────────────────────────────

var (
	// AllocationsTotal counts committed allocations.
	AllocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reliefd_allocations_total",
		Help: "Total committed donation allocations.",
	})

	// AllocatedUnitsTotal counts units moved from donations into camp inventory.
	AllocatedUnitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reliefd_allocated_units_total",
		Help: "Total quantity allocated across all donations.",
	})

	// AllocationFailuresTotal counts failed allocation attempts by reason.
	AllocationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reliefd_allocation_failures_total",
		Help: "Failed allocation attempts by failure reason.",
	}, []string{"reason"})

	// AutoAllocateRunsTotal counts AutoAllocate batch runs.
	AutoAllocateRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reliefd_auto_allocate_runs_total",
		Help: "Total AutoAllocate batch runs.",
	})

	// ConflictRetriesTotal counts single internal retries after commit conflicts.
	ConflictRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reliefd_allocation_conflict_retries_total",
		Help: "Allocation commits retried after a concurrent-modification conflict.",
	})
)

// ─── Shortage Metrics ───────────────────────────────────────────────────────

var (
	// ShortagesGauge is the number of under-supplied inventory rows, by severity.
	ShortagesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reliefd_shortages",
		Help: "Current shortage count by severity.",
	}, []string{"severity"})
)

// RecordShortages sets the per-severity shortage gauges from one snapshot.
func RecordShortages(counts map[string]int) {
	for _, severity := range []string{"Normal", "High", "Critical"} {
		ShortagesGauge.WithLabelValues(severity).Set(float64(counts[severity]))
	}
}
