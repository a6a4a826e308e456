package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relief-network/reliefd/internal/domain"
	"github.com/relief-network/reliefd/internal/infra/locks"
	"github.com/relief-network/reliefd/internal/infra/observability"
)

// ─── Allocation Engine ──────────────────────────────────────────────────────

// Engine converts donor supply into camp relief while enforcing the
// conservation invariants: a donation's allocations never exceed its donated
// quantity, and every committed allocation increments the target camp's
// inventory in the same transaction.
type Engine struct {
	store  domain.Store
	calc   *Calculator
	locks  *locks.Manager
	logger *zap.Logger
	newID  func() string // injectable for deterministic tests
}

// New creates an allocation engine over the given store.
func New(store domain.Store, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		calc:   NewCalculator(store, logger),
		locks:  locks.NewManager(),
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Calculator returns the engine's shortage calculator.
func (e *Engine) Calculator() *Calculator { return e.calc }

// AllocateDonationToCamp allocates quantity units of a donation to one camp.
// Manual single allocations are the engine running with one candidate.
func (e *Engine) AllocateDonationToCamp(ctx context.Context, donationID, campID, quantity int64) (domain.Result, error) {
	return e.allocate(ctx, donationID, campID, quantity, "")
}

// allocate is the atomic primitive shared by manual calls and AutoAllocate.
// The remaining-quantity check runs fresh under the donation lock; the
// commit retries once on a conflict.
func (e *Engine) allocate(ctx context.Context, donationID, campID, quantity int64, batchID string) (domain.Result, error) {
	if quantity <= 0 {
		observability.AllocationFailuresTotal.WithLabelValues("invalid_quantity").Inc()
		return domain.Resultf(false, "Allocation quantity must be positive"),
			fmt.Errorf("%w: quantity %d", domain.ErrInvalidQuantity, quantity)
	}

	// Donation lock first, resource lock second — always this order.
	unlockDonation := e.locks.Lock(locks.DonationKey(donationID))
	defer unlockDonation()

	donation, err := e.store.Donation(ctx, donationID)
	if err != nil {
		if errors.Is(err, domain.ErrDonationNotFound) {
			observability.AllocationFailuresTotal.WithLabelValues("not_found").Inc()
			return domain.Resultf(false, "Donation not found"), err
		}
		observability.AllocationFailuresTotal.WithLabelValues("store").Inc()
		return domain.Resultf(false, "Donation ledger unavailable"),
			fmt.Errorf("read donation %d: %w: %v", donationID, domain.ErrStoreUnavailable, err)
	}

	remaining := donation.Remaining()
	if quantity > remaining {
		// No partial allocation is ever performed; the caller must
		// re-request with a smaller amount.
		observability.AllocationFailuresTotal.WithLabelValues("invalid_quantity").Inc()
		return domain.Resultf(false, "Allocation quantity exceeds remaining donation amount (%d)", remaining),
			fmt.Errorf("%w: %d exceeds remaining %d", domain.ErrInvalidQuantity, quantity, remaining)
	}

	unlockResource := e.locks.Lock(locks.ResourceKey(campID, donation.ResourceTypeID))
	defer unlockResource()

	alloc := domain.Allocation{
		Ref:        e.newID(),
		DonationID: donationID,
		CampID:     campID,
		Quantity:   quantity,
		BatchID:    batchID,
	}
	markAllocated := remaining-quantity <= 0

	committed, err := e.store.CommitAllocation(ctx, alloc, markAllocated)
	if errors.Is(err, domain.ErrConflict) {
		observability.ConflictRetriesTotal.Inc()
		committed, err = e.store.CommitAllocation(ctx, alloc, markAllocated)
	}
	if err != nil {
		reason := "store"
		if errors.Is(err, domain.ErrConflict) {
			reason = "conflict"
		} else if errors.Is(err, domain.ErrResourceNotFound) {
			reason = "not_found"
		}
		observability.AllocationFailuresTotal.WithLabelValues(reason).Inc()
		return domain.Resultf(false, "Failed to allocate donation"), err
	}

	observability.AllocationsTotal.Inc()
	observability.AllocatedUnitsTotal.Add(float64(quantity))
	e.logger.Info("donation allocated",
		zap.Int64("donation_id", donationID),
		zap.Int64("camp_id", campID),
		zap.Int64("quantity", quantity),
		zap.String("ref", committed.Ref),
		zap.String("batch_id", batchID),
	)
	return domain.Resultf(true, "Successfully allocated %d units to camp", quantity), nil
}

// ─── AutoAllocate ───────────────────────────────────────────────────────────

// shortageCandidate is one camp's outstanding need for a resource type,
// with the batch's own committed allocations already applied.
type shortageCandidate struct {
	campID int64
	need   int64
}

// AutoAllocate matches every pending donation against the camps with the
// greatest need for its resource type. Donations are processed
// first-registered-first-served and never re-sorted; within one donation,
// candidate camps are ordered by outstanding need descending, camp ID
// ascending. The walk is a greedy single-pass heuristic, not a solver — the
// exact processing order is part of the contract.
//
// Per-item failures are logged and skipped; the batch itself always
// succeeds, and zero allocations is a valid outcome. Re-running against an
// unchanged state allocates nothing further.
func (e *Engine) AutoAllocate(ctx context.Context) (domain.Result, error) {
	batchID := e.newID()
	observability.AutoAllocateRunsTotal.Inc()

	donations, err := e.store.Donations(ctx)
	if err != nil {
		return domain.Resultf(false, "Donation ledger unavailable"),
			fmt.Errorf("auto-allocate snapshot: %w: %v", domain.ErrStoreUnavailable, err)
	}
	resources, err := e.store.Resources(ctx)
	if err != nil {
		return domain.Resultf(false, "Inventory store unavailable"),
			fmt.Errorf("auto-allocate snapshot: %w: %v", domain.ErrStoreUnavailable, err)
	}

	// Availability deltas committed by this run, keyed by (camp, type).
	// Each donation sees the shortages left behind by its predecessors
	// without a full store re-scan.
	deltas := make(map[string]int64)
	made := 0

	for _, donation := range donations {
		if donation.Status != domain.StatusPending || donation.Remaining() <= 0 {
			continue
		}
		remaining := donation.Remaining()

		var candidates []shortageCandidate
		for _, r := range resources {
			if r.ResourceTypeID != donation.ResourceTypeID {
				continue
			}
			available := r.Available + deltas[locks.ResourceKey(r.CampID, r.ResourceTypeID)]
			if r.Needed > available {
				candidates = append(candidates, shortageCandidate{campID: r.CampID, need: r.Needed - available})
			}
		}
		// Most under-supplied camp first; camp ID breaks ties so identical
		// snapshots always produce identical allocation sequences.
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].need != candidates[j].need {
				return candidates[i].need > candidates[j].need
			}
			return candidates[i].campID < candidates[j].campID
		})

		for _, cand := range candidates {
			if remaining <= 0 {
				break
			}
			amount := min(remaining, cand.need)
			if amount <= 0 {
				continue
			}

			if _, err := e.allocate(ctx, donation.ID, cand.campID, amount, batchID); err != nil {
				e.logger.Warn("auto-allocate step failed, skipping",
					zap.Int64("donation_id", donation.ID),
					zap.Int64("camp_id", cand.campID),
					zap.Int64("quantity", amount),
					zap.Error(err),
				)
				continue
			}
			remaining -= amount
			deltas[locks.ResourceKey(cand.campID, donation.ResourceTypeID)] += amount
			made++
		}
	}

	e.logger.Info("auto-allocation completed",
		zap.String("batch_id", batchID),
		zap.Int("allocations_made", made),
	)
	result := domain.Resultf(true, "Auto-allocation completed. %d allocations made.", made)
	result.AllocationsMade = made
	return result, nil
}

// ─── Pending Donations ──────────────────────────────────────────────────────

// PendingDonations returns donations still awaiting allocation, in insertion
// order.
func (e *Engine) PendingDonations(ctx context.Context) ([]domain.Donation, error) {
	donations, err := e.store.Donations(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending donations: %w: %v", domain.ErrStoreUnavailable, err)
	}

	var pending []domain.Donation
	for _, d := range donations {
		if d.Status == domain.StatusPending && d.Remaining() > 0 {
			pending = append(pending, d)
		}
	}
	return pending, nil
}

// AllocationCandidate is a pending donation ranked by how much outstanding
// need it could cover.
type AllocationCandidate struct {
	domain.Donation
	PotentialImpact int64 `json:"potential_impact"`
	AffectedCamps   int   `json:"affected_camps"`
}

// DonationsNeedingAllocation returns pending donations whose resource type
// has open shortages, ranked by potential impact (the units the donation
// could actually place), descending.
func (e *Engine) DonationsNeedingAllocation(ctx context.Context) ([]AllocationCandidate, error) {
	pending, err := e.PendingDonations(ctx)
	if err != nil {
		return nil, err
	}
	shortages, err := e.calc.ComputeShortages(ctx)
	if err != nil {
		return nil, err
	}

	totalNeed := make(map[int64]int64)
	campCount := make(map[int64]int)
	for _, s := range shortages {
		totalNeed[s.ResourceTypeID] += s.Amount
		campCount[s.ResourceTypeID]++
	}

	var candidates []AllocationCandidate
	for _, d := range pending {
		need, ok := totalNeed[d.ResourceTypeID]
		if !ok {
			continue
		}
		candidates = append(candidates, AllocationCandidate{
			Donation:        d,
			PotentialImpact: min(d.Remaining(), need),
			AffectedCamps:   campCount[d.ResourceTypeID],
		})
	}
	// Stable: equal-impact donations keep their insertion order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].PotentialImpact > candidates[j].PotentialImpact
	})
	return candidates, nil
}
