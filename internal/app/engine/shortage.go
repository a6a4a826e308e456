// Package engine implements the resource shortage and allocation core:
// shortage computation and severity classification, the atomic
// donation-to-camp allocation primitive, the greedy AutoAllocate batch
// matcher, and the read-side statistics aggregator.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/relief-network/reliefd/internal/domain"
)

// ─── Shortage Calculator ────────────────────────────────────────────────────

// Calculator derives shortage and severity views from inventory snapshots.
// Read-only; it never mutates the store.
type Calculator struct {
	inventory domain.InventoryStore
	logger    *zap.Logger
}

// NewCalculator creates a shortage calculator.
func NewCalculator(inventory domain.InventoryStore, logger *zap.Logger) *Calculator {
	return &Calculator{inventory: inventory, logger: logger}
}

// ComputeShortages returns a ShortageView for every inventory row whose
// needed quantity exceeds its available quantity. Ordering is unspecified;
// callers sort as needed.
func (c *Calculator) ComputeShortages(ctx context.Context) ([]domain.ShortageView, error) {
	resources, err := c.inventory.Resources(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute shortages: %w: %v", domain.ErrStoreUnavailable, err)
	}

	var views []domain.ShortageView
	for _, r := range resources {
		if r.Needed > r.Available {
			views = append(views, domain.NewShortageView(r))
		}
	}
	return views, nil
}

// CriticalShortages returns only the shortages classified High or Critical.
func (c *Calculator) CriticalShortages(ctx context.Context) ([]domain.ShortageView, error) {
	views, err := c.ComputeShortages(ctx)
	if err != nil {
		return nil, err
	}

	var urgent []domain.ShortageView
	for _, v := range views {
		if v.Severity != domain.SeverityNormal {
			urgent = append(urgent, v)
		}
	}
	return urgent, nil
}

// TopShortages returns the n largest shortages, descending by shortage
// amount with ties broken by camp ID ascending.
func (c *Calculator) TopShortages(ctx context.Context, n int) ([]domain.ShortageView, error) {
	views, err := c.ComputeShortages(ctx)
	if err != nil {
		return nil, err
	}

	domain.SortByNeed(views)
	if n >= 0 && len(views) > n {
		views = views[:n]
	}
	return views, nil
}
