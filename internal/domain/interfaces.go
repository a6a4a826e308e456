package domain

import "context"

// ─── Store Interfaces ───────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the application layer depends on them.
// The engine never touches SQL — it sees only these collaborators.

// InventoryStore holds Resource rows (camp × resource type inventory) with
// camp and type metadata already joined.
type InventoryStore interface {
	// Resources returns all inventory rows.
	Resources(ctx context.Context) ([]Resource, error)

	// ResourceTypes returns the reference list of resource types.
	ResourceTypes(ctx context.Context) ([]ResourceType, error)

	// UpdateResourceQuantities overwrites both quantities of one row.
	// Fails with ErrResourceNotFound when no such row exists.
	UpdateResourceQuantities(ctx context.Context, resourceID, available, needed int64) error
}

// DonationLedger holds Donation and Allocation records. Donations come back
// with their allocated sum derived from the allocation rows, never cached.
type DonationLedger interface {
	// Donations returns all donations in insertion order.
	Donations(ctx context.Context) ([]Donation, error)

	// Donation returns one donation by ID, or ErrDonationNotFound.
	Donation(ctx context.Context, id int64) (Donation, error)

	// Allocations returns all allocation rows, newest first.
	Allocations(ctx context.Context) ([]Allocation, error)
}

// AllocationCommitter applies one allocation atomically: the Allocation
// insert, the donation status flip (when markAllocated), and the inventory
// increment for the target (camp, resource type) row either all commit or
// none do. Conflicting concurrent commits surface as ErrConflict.
type AllocationCommitter interface {
	CommitAllocation(ctx context.Context, alloc Allocation, markAllocated bool) (Allocation, error)
}

// Reporter serves the cheap whole-system counters the dashboard shows.
type Reporter interface {
	Dashboard(ctx context.Context) (DashboardSummary, error)
}

// Store is the full collaborator surface the engine is wired with. The
// sqlite implementation backs all of it with one database so the commit
// really is one transaction.
type Store interface {
	InventoryStore
	DonationLedger
	AllocationCommitter
	Reporter
}
