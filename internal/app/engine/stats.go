package engine

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/relief-network/reliefd/internal/domain"
	"github.com/relief-network/reliefd/internal/infra/observability"
)

// ─── Statistics Aggregator ──────────────────────────────────────────────────
// Pure read-side folding over the same entities the engine allocates from.
// Severity counts here use the same classification constants as allocation
// priority, so the dashboard's "critical" always means the engine's
// "critical".
//
// All aggregators are fail-open: a failing underlying read yields
// zero-valued aggregates plus a logged error, never a crash. Dashboards must
// degrade gracefully.

// Stats folds shortage, donation, and camp data into summary counters.
type Stats struct {
	store  domain.Store
	calc   *Calculator
	logger *zap.Logger
}

// NewStats creates a statistics aggregator sharing the engine's calculator.
func NewStats(store domain.Store, calc *Calculator, logger *zap.Logger) *Stats {
	return &Stats{store: store, calc: calc, logger: logger}
}

// ResourceStatistics is the shortage summary for the dashboard.
type ResourceStatistics struct {
	TotalTypes        int                   `json:"total_resource_types"`
	TotalShortages    int                   `json:"total_shortages"`
	CriticalShortages int                   `json:"critical_shortages"`
	ByType            map[string]int        `json:"shortages_by_type"`
	TopShortages      []domain.ShortageView `json:"top_shortages"`
}

// ResourceStatistics folds the current shortage picture into counters and
// the top five shortages by amount.
func (s *Stats) ResourceStatistics(ctx context.Context) ResourceStatistics {
	stats := ResourceStatistics{ByType: make(map[string]int)}

	types, err := s.store.ResourceTypes(ctx)
	if err != nil {
		s.logger.Error("resource statistics degraded: types read failed", zap.Error(err))
		return stats
	}
	stats.TotalTypes = len(types)

	shortages, err := s.calc.ComputeShortages(ctx)
	if err != nil {
		s.logger.Error("resource statistics degraded: shortage read failed", zap.Error(err))
		return stats
	}
	stats.TotalShortages = len(shortages)

	severityCounts := make(map[string]int)
	for _, v := range shortages {
		stats.ByType[v.TypeName]++
		severityCounts[string(v.Severity)]++
		if v.Severity != domain.SeverityNormal {
			stats.CriticalShortages++
		}
	}
	observability.RecordShortages(severityCounts)

	domain.SortByNeed(shortages)
	if len(shortages) > 5 {
		shortages = shortages[:5]
	}
	stats.TopShortages = shortages
	return stats
}

// TypeSummary is a count and quantity pair for one resource type.
type TypeSummary struct {
	Count    int   `json:"count"`
	Quantity int64 `json:"quantity"`
}

// DonorSummary is one donor's aggregate contribution.
type DonorSummary struct {
	Donor    string `json:"donor_name"`
	Count    int    `json:"count"`
	Quantity int64  `json:"total_quantity"`
}

// DonationStatistics is the donation summary for the dashboard.
type DonationStatistics struct {
	TotalDonations int                    `json:"total_donations"`
	TotalQuantity  int64                  `json:"total_donated_quantity"`
	ByStatus       map[string]int         `json:"donations_by_status"`
	ByType         map[string]TypeSummary `json:"donations_by_type"`
	TopDonors      []DonorSummary         `json:"top_donors"`
}

// DonationStatistics folds the donation ledger into counters: totals, splits
// by status and type, and the top five donors by total quantity. Donors with
// equal totals rank by first appearance in the ledger.
func (s *Stats) DonationStatistics(ctx context.Context) DonationStatistics {
	stats := DonationStatistics{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]TypeSummary),
	}

	donations, err := s.store.Donations(ctx)
	if err != nil {
		s.logger.Error("donation statistics degraded: ledger read failed", zap.Error(err))
		return stats
	}

	stats.TotalDonations = len(donations)
	donorIndex := make(map[string]int)
	var donors []DonorSummary

	for _, d := range donations {
		stats.TotalQuantity += d.Quantity
		stats.ByStatus[string(d.Status)]++

		t := stats.ByType[d.TypeName]
		t.Count++
		t.Quantity += d.Quantity
		stats.ByType[d.TypeName] = t

		i, seen := donorIndex[d.Donor]
		if !seen {
			i = len(donors)
			donorIndex[d.Donor] = i
			donors = append(donors, DonorSummary{Donor: d.Donor})
		}
		donors[i].Count++
		donors[i].Quantity += d.Quantity
	}

	// Stable: ties keep first-appearance order.
	sort.SliceStable(donors, func(i, j int) bool {
		return donors[i].Quantity > donors[j].Quantity
	})
	if len(donors) > 5 {
		donors = donors[:5]
	}
	stats.TopDonors = donors
	return stats
}

// Dashboard returns the whole-system counters, zero-valued on store failure.
func (s *Stats) Dashboard(ctx context.Context) domain.DashboardSummary {
	summary, err := s.store.Dashboard(ctx)
	if err != nil {
		s.logger.Error("dashboard statistics degraded", zap.Error(err))
		return domain.DashboardSummary{}
	}
	return summary
}
