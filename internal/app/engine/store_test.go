package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/relief-network/reliefd/internal/domain"
)

// fakeStore is an in-memory domain.Store for engine tests. It applies the
// same three-write commit the sqlite store does, under one mutex.
type fakeStore struct {
	mu          sync.Mutex
	types       []domain.ResourceType
	resources   []domain.Resource
	donations   []domain.Donation
	allocations []domain.Allocation
	nextAllocID int64

	readErr    error   // when set, every read fails with it
	commitErrs []error // queued one-shot errors for CommitAllocation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		types: []domain.ResourceType{
			{ID: 1, Name: "Water", Unit: "liters"},
			{ID: 2, Name: "Food", Unit: "meals"},
		},
	}
}

func (f *fakeStore) typeName(typeID int64) string {
	for _, t := range f.types {
		if t.ID == typeID {
			return t.Name
		}
	}
	return ""
}

func (f *fakeStore) addResource(campID, typeID, available, needed int64) {
	f.resources = append(f.resources, domain.Resource{
		ID:             int64(len(f.resources) + 1),
		CampID:         campID,
		CampName:       fmt.Sprintf("Camp %d", campID),
		ResourceTypeID: typeID,
		TypeName:       f.typeName(typeID),
		Available:      available,
		Needed:         needed,
	})
}

func (f *fakeStore) addDonation(donor string, typeID, quantity int64) int64 {
	id := int64(len(f.donations) + 1)
	f.donations = append(f.donations, domain.Donation{
		ID:             id,
		Donor:          donor,
		ResourceTypeID: typeID,
		TypeName:       f.typeName(typeID),
		Quantity:       quantity,
		Status:         domain.StatusPending,
		DonatedAt:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	return id
}

func (f *fakeStore) allocatedSum(donationID int64) int64 {
	var sum int64
	for _, a := range f.allocations {
		if a.DonationID == donationID {
			sum += a.Quantity
		}
	}
	return sum
}

func (f *fakeStore) Resources(ctx context.Context) ([]domain.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]domain.Resource, len(f.resources))
	copy(out, f.resources)
	return out, nil
}

func (f *fakeStore) ResourceTypes(ctx context.Context) ([]domain.ResourceType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.types, nil
}

func (f *fakeStore) UpdateResourceQuantities(ctx context.Context, resourceID, available, needed int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.resources {
		if f.resources[i].ID == resourceID {
			f.resources[i].Available = available
			f.resources[i].Needed = needed
			return nil
		}
	}
	return domain.ErrResourceNotFound
}

func (f *fakeStore) Donations(ctx context.Context) ([]domain.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]domain.Donation, len(f.donations))
	for i, d := range f.donations {
		d.Allocated = f.allocatedSum(d.ID)
		out[i] = d
	}
	return out, nil
}

func (f *fakeStore) Donation(ctx context.Context, id int64) (domain.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return domain.Donation{}, f.readErr
	}
	for _, d := range f.donations {
		if d.ID == id {
			d.Allocated = f.allocatedSum(id)
			return d, nil
		}
	}
	return domain.Donation{}, domain.ErrDonationNotFound
}

func (f *fakeStore) Allocations(ctx context.Context) ([]domain.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]domain.Allocation, len(f.allocations))
	copy(out, f.allocations)
	return out, nil
}

func (f *fakeStore) CommitAllocation(ctx context.Context, alloc domain.Allocation, markAllocated bool) (domain.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.commitErrs) > 0 {
		err := f.commitErrs[0]
		f.commitErrs = f.commitErrs[1:]
		if err != nil {
			return domain.Allocation{}, err
		}
	}

	var donation *domain.Donation
	for i := range f.donations {
		if f.donations[i].ID == alloc.DonationID {
			donation = &f.donations[i]
		}
	}
	if donation == nil {
		return domain.Allocation{}, domain.ErrDonationNotFound
	}

	var resource *domain.Resource
	for i := range f.resources {
		if f.resources[i].CampID == alloc.CampID && f.resources[i].ResourceTypeID == donation.ResourceTypeID {
			resource = &f.resources[i]
		}
	}
	if resource == nil {
		return domain.Allocation{}, domain.ErrResourceNotFound
	}

	f.nextAllocID++
	alloc.ID = f.nextAllocID
	alloc.AllocatedAt = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f.allocations = append(f.allocations, alloc)
	if markAllocated {
		donation.Status = domain.StatusAllocated
	}
	resource.Available += alloc.Quantity
	return alloc, nil
}

func (f *fakeStore) Dashboard(ctx context.Context) (domain.DashboardSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return domain.DashboardSummary{}, f.readErr
	}
	var shortages int64
	for _, r := range f.resources {
		if r.Needed > r.Available {
			shortages++
		}
	}
	return domain.DashboardSummary{ShortageCount: shortages}, nil
}

// newTestEngine wires an engine with sequential IDs so allocation sequences
// compare byte-for-byte across runs.
func newTestEngine(store *fakeStore) *Engine {
	e := New(store, zap.NewNop())
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return e
}
