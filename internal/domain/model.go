// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import (
	"fmt"
	"time"
)

// ─── Reference Data ─────────────────────────────────────────────────────────

// ResourceType is immutable reference data describing a kind of relief
// resource (water, food, medicine, ...) and its unit of measure.
type ResourceType struct {
	ID   int64  `json:"resource_type_id"`
	Name string `json:"type_name"`
	Unit string `json:"unit"`
}

// Disaster is a declared disaster event. Camps belong to exactly one disaster.
type Disaster struct {
	ID       int64  `json:"disaster_id"`
	Name     string `json:"disaster_name"`
	Type     string `json:"disaster_type"`
	Location string `json:"location"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
}

// Camp is a physical relief site associated with one disaster.
type Camp struct {
	ID        int64  `json:"camp_id"`
	Name      string `json:"camp_name"`
	DisasterID int64 `json:"disaster_id"`
	Location  string `json:"location"`
	Capacity  int64  `json:"capacity"`
	Occupancy int64  `json:"current_occupancy"`
	Status    string `json:"status"`
}

// ─── Inventory ──────────────────────────────────────────────────────────────

// Resource is one (camp, resource type) inventory row: how much of a type a
// camp holds versus how much it needs. Quantities are never negative.
// Joined display metadata rides along so shortage views and statistics do not
// need a second lookup.
type Resource struct {
	ID             int64  `json:"resource_id"`
	CampID         int64  `json:"camp_id"`
	CampName       string `json:"camp_name"`
	DisasterName   string `json:"disaster_name"`
	ResourceTypeID int64  `json:"resource_type_id"`
	TypeName       string `json:"type_name"`
	Unit           string `json:"unit"`
	Available      int64  `json:"quantity_available"`
	Needed         int64  `json:"quantity_needed"`
}

// Shortfall returns how many units the camp is short, zero when supplied.
func (r Resource) Shortfall() int64 {
	if r.Needed > r.Available {
		return r.Needed - r.Available
	}
	return 0
}

// ─── Donations & Allocations ────────────────────────────────────────────────

// DonationStatus is the lifecycle state of a donation.
type DonationStatus string

const (
	StatusPending     DonationStatus = "Pending"
	StatusReceived    DonationStatus = "Received"
	StatusAllocated   DonationStatus = "Allocated"
	StatusDistributed DonationStatus = "Distributed"
)

// Valid reports whether s is one of the known donation statuses.
func (s DonationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReceived, StatusAllocated, StatusDistributed:
		return true
	}
	return false
}

// Donation is a donor-supplied quantity of one resource type awaiting
// allocation to camps. Quantity is immutable once recorded. Allocated is the
// sum of committed allocations, derived by the ledger at read time — it is
// never stored, which keeps the ledger and inventory from drifting apart.
type Donation struct {
	ID             int64          `json:"donation_id"`
	Donor          string         `json:"donor_name"`
	DonorContact   string         `json:"donor_contact"`
	ResourceTypeID int64          `json:"resource_type_id"`
	TypeName       string         `json:"type_name"`
	Unit           string         `json:"unit"`
	Quantity       int64          `json:"quantity_donated"`
	Allocated      int64          `json:"allocated_quantity"`
	Status         DonationStatus `json:"status"`
	Notes          string         `json:"notes,omitempty"`
	DonatedAt      time.Time      `json:"donation_date"`
}

// Remaining returns the donation's unallocated quantity.
func (d Donation) Remaining() int64 { return d.Quantity - d.Allocated }

// Allocation is a committed transfer of part of a donation to one camp's
// inventory. Immutable once created; corrections are a business process
// outside this system.
type Allocation struct {
	ID          int64     `json:"allocation_id"`
	Ref         string    `json:"ref"`                // uuid, external reconciliation handle
	DonationID  int64     `json:"donation_id"`
	CampID      int64     `json:"camp_id"`
	Quantity    int64     `json:"quantity_allocated"`
	BatchID     string    `json:"batch_id,omitempty"` // uuid of the AutoAllocate run, empty for manual calls
	AllocatedAt time.Time `json:"allocation_date"`
}

// ─── Dashboard ──────────────────────────────────────────────────────────────

// DashboardSummary holds the whole-system counters the dashboard renders.
type DashboardSummary struct {
	ActiveDisasters int64 `json:"active_disasters"`
	ActiveCamps     int64 `json:"active_camps"`
	TotalOccupancy  int64 `json:"total_occupancy"`
	ShortageCount   int64 `json:"shortage_count"`
}

// ─── Results ────────────────────────────────────────────────────────────────

// Result is the outcome envelope returned to the calling layer for mutating
// operations, mirroring what dashboards render directly.
type Result struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	AllocationsMade int    `json:"allocations_made,omitempty"`
}

// Resultf builds a Result with a formatted message.
func Resultf(ok bool, format string, args ...any) Result {
	return Result{Success: ok, Message: fmt.Sprintf(format, args...)}
}
