package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/relief-network/reliefd/internal/app/engine"
	"github.com/relief-network/reliefd/internal/domain"
)

// memStore is a minimal in-memory domain.Store for handler tests.
type memStore struct {
	resources   []domain.Resource
	donations   []domain.Donation
	allocations []domain.Allocation
}

func (m *memStore) Resources(ctx context.Context) ([]domain.Resource, error) {
	return m.resources, nil
}

func (m *memStore) ResourceTypes(ctx context.Context) ([]domain.ResourceType, error) {
	return []domain.ResourceType{{ID: 1, Name: "Water", Unit: "liters"}}, nil
}

func (m *memStore) UpdateResourceQuantities(ctx context.Context, resourceID, available, needed int64) error {
	return domain.ErrResourceNotFound
}

func (m *memStore) Donations(ctx context.Context) ([]domain.Donation, error) {
	out := make([]domain.Donation, len(m.donations))
	for i, d := range m.donations {
		for _, a := range m.allocations {
			if a.DonationID == d.ID {
				d.Allocated += a.Quantity
			}
		}
		out[i] = d
	}
	return out, nil
}

func (m *memStore) Donation(ctx context.Context, id int64) (domain.Donation, error) {
	donations, _ := m.Donations(ctx)
	for _, d := range donations {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.Donation{}, domain.ErrDonationNotFound
}

func (m *memStore) Allocations(ctx context.Context) ([]domain.Allocation, error) {
	return m.allocations, nil
}

func (m *memStore) CommitAllocation(ctx context.Context, alloc domain.Allocation, markAllocated bool) (domain.Allocation, error) {
	var donation *domain.Donation
	for i := range m.donations {
		if m.donations[i].ID == alloc.DonationID {
			donation = &m.donations[i]
		}
	}
	if donation == nil {
		return domain.Allocation{}, domain.ErrDonationNotFound
	}
	for i := range m.resources {
		r := &m.resources[i]
		if r.CampID == alloc.CampID && r.ResourceTypeID == donation.ResourceTypeID {
			alloc.ID = int64(len(m.allocations) + 1)
			alloc.AllocatedAt = time.Now().UTC()
			m.allocations = append(m.allocations, alloc)
			if markAllocated {
				donation.Status = domain.StatusAllocated
			}
			r.Available += alloc.Quantity
			return alloc, nil
		}
	}
	return domain.Allocation{}, domain.ErrResourceNotFound
}

func (m *memStore) Dashboard(ctx context.Context) (domain.DashboardSummary, error) {
	return domain.DashboardSummary{ActiveCamps: int64(len(m.resources))}, nil
}

func newTestServer(store *memStore) *Server {
	logger := zap.NewNop()
	eng := engine.New(store, logger)
	stats := engine.NewStats(store, eng.Calculator(), logger)
	return NewServer(eng, stats, logger)
}

func seededStore() *memStore {
	return &memStore{
		resources: []domain.Resource{
			{ID: 1, CampID: 1, CampName: "Camp A", ResourceTypeID: 1, TypeName: "Water", Available: 20, Needed: 100},
			{ID: 2, CampID: 2, CampName: "Camp B", ResourceTypeID: 1, TypeName: "Water", Available: 80, Needed: 100},
		},
		donations: []domain.Donation{
			{ID: 1, Donor: "Red Cross", ResourceTypeID: 1, TypeName: "Water", Quantity: 50, Status: domain.StatusPending},
		},
	}
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(seededStore()).Handler()
	rec := doRequest(t, handler, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestShortagesEndpoint(t *testing.T) {
	handler := newTestServer(seededStore()).Handler()
	rec := doRequest(t, handler, "GET", "/api/shortages", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Shortages []domain.ShortageView `json:"shortages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Shortages) != 2 {
		t.Errorf("shortages = %d, want 2", len(resp.Shortages))
	}
}

func TestTopShortagesQueryValidation(t *testing.T) {
	handler := newTestServer(seededStore()).Handler()

	rec := doRequest(t, handler, "GET", "/api/shortages/top?n=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Shortages []domain.ShortageView `json:"shortages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Shortages) != 1 || resp.Shortages[0].CampID != 1 {
		t.Errorf("top-1 = %+v, want Camp A's 80-unit shortage", resp.Shortages)
	}

	rec = doRequest(t, handler, "GET", "/api/shortages/top?n=bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAllocateEndpoint(t *testing.T) {
	store := seededStore()
	handler := newTestServer(store).Handler()

	rec := doRequest(t, handler, "POST", "/api/allocations",
		`{"donation_id":1,"camp_id":1,"quantity":50}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result domain.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Errorf("result = %+v, want success", result)
	}
	if store.resources[0].Available != 70 {
		t.Errorf("inventory = %d, want 70", store.resources[0].Available)
	}
}

func TestAllocateEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"unknown donation", `{"donation_id":9,"camp_id":1,"quantity":5}`, http.StatusNotFound},
		{"zero quantity", `{"donation_id":1,"camp_id":1,"quantity":0}`, http.StatusUnprocessableEntity},
		{"exceeds remaining", `{"donation_id":1,"camp_id":1,"quantity":51}`, http.StatusUnprocessableEntity},
		{"bad body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestServer(seededStore()).Handler()
			rec := doRequest(t, handler, "POST", "/api/allocations", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestAutoAllocateEndpoint(t *testing.T) {
	store := seededStore()
	handler := newTestServer(store).Handler()

	rec := doRequest(t, handler, "POST", "/api/allocations/auto", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result domain.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.AllocationsMade != 1 {
		t.Errorf("AllocationsMade = %d, want 1", result.AllocationsMade)
	}
	// The 50 units go to Camp A, whose 80-unit shortage dominates.
	if store.resources[0].Available != 70 {
		t.Errorf("Camp A inventory = %d, want 70", store.resources[0].Available)
	}
}

func TestStatsEndpoints(t *testing.T) {
	handler := newTestServer(seededStore()).Handler()

	rec := doRequest(t, handler, "GET", "/api/stats/resources", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rs engine.ResourceStatistics
	if err := json.Unmarshal(rec.Body.Bytes(), &rs); err != nil {
		t.Fatal(err)
	}
	if rs.TotalShortages != 2 {
		t.Errorf("TotalShortages = %d, want 2", rs.TotalShortages)
	}

	rec = doRequest(t, handler, "GET", "/api/stats/donations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var ds engine.DonationStatistics
	if err := json.Unmarshal(rec.Body.Bytes(), &ds); err != nil {
		t.Fatal(err)
	}
	if ds.TotalDonations != 1 {
		t.Errorf("TotalDonations = %d, want 1", ds.TotalDonations)
	}

	rec = doRequest(t, handler, "GET", "/api/stats/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMetricsEndpointOptIn(t *testing.T) {
	srv := newTestServer(seededStore())

	rec := doRequest(t, srv.Handler(), "GET", "/metrics", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("metrics without opt-in: status = %d, want 404", rec.Code)
	}

	srv.EnableMetrics()
	rec = doRequest(t, srv.Handler(), "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("metrics with opt-in: status = %d, want 200", rec.Code)
	}
}
