package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relief-network/reliefd/internal/domain"
)

// ─── Donation Ledger ────────────────────────────────────────────────────────

const donationColumns = `
	d.donation_id, d.donor_name, d.donor_contact,
	d.resource_type_id, rt.type_name, rt.unit,
	d.quantity_donated,
	COALESCE((SELECT SUM(a.quantity_allocated)
	          FROM donation_allocations a
	          WHERE a.donation_id = d.donation_id), 0),
	d.status, d.notes, d.donation_date`

// Donations returns all donations in insertion order, each with its
// allocated sum derived fresh from the allocation rows.
func (db *DB) Donations(ctx context.Context) ([]domain.Donation, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT `+donationColumns+`
		FROM donations d
		JOIN resource_types rt ON d.resource_type_id = rt.resource_type_id
		ORDER BY d.donation_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query donations: %w", err)
	}
	defer rows.Close()

	var result []domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// Donation returns one donation by ID.
func (db *DB) Donation(ctx context.Context, id int64) (domain.Donation, error) {
	row := db.db.QueryRowContext(ctx, `
		SELECT `+donationColumns+`
		FROM donations d
		JOIN resource_types rt ON d.resource_type_id = rt.resource_type_id
		WHERE d.donation_id = ?
	`, id)

	d, err := scanDonation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Donation{}, domain.ErrDonationNotFound
	}
	return d, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDonation(s scanner) (domain.Donation, error) {
	var d domain.Donation
	var status, donatedAt string
	err := s.Scan(&d.ID, &d.Donor, &d.DonorContact,
		&d.ResourceTypeID, &d.TypeName, &d.Unit,
		&d.Quantity, &d.Allocated, &status, &d.Notes, &donatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Donation{}, err
		}
		return domain.Donation{}, fmt.Errorf("scan donation: %w", err)
	}
	d.Status = domain.DonationStatus(status)
	d.DonatedAt, _ = time.Parse("2006-01-02 15:04:05", donatedAt)
	return d, nil
}

// Allocations returns all allocation rows, newest first.
func (db *DB) Allocations(ctx context.Context) ([]domain.Allocation, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT allocation_id, ref, donation_id, camp_id, quantity_allocated, batch_id, allocation_date
		FROM donation_allocations
		ORDER BY allocation_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query allocations: %w", err)
	}
	defer rows.Close()

	var result []domain.Allocation
	for rows.Next() {
		var a domain.Allocation
		var allocatedAt string
		if err := rows.Scan(&a.ID, &a.Ref, &a.DonationID, &a.CampID,
			&a.Quantity, &a.BatchID, &allocatedAt); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		a.AllocatedAt, _ = time.Parse("2006-01-02 15:04:05", allocatedAt)
		result = append(result, a)
	}
	return result, rows.Err()
}

// ─── Atomic Allocation Commit ───────────────────────────────────────────────

// CommitAllocation applies one allocation in a single transaction:
// the allocation insert, the donation status flip (when markAllocated),
// and the inventory increment for the donation's resource type at the target
// camp. Either all three commit or none do. Lock contention surfaces as
// domain.ErrConflict so the engine can retry once.
func (db *DB) CommitAllocation(ctx context.Context, alloc domain.Allocation, markAllocated bool) (domain.Allocation, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Allocation{}, db.commitErr("begin", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO donation_allocations (ref, donation_id, camp_id, quantity_allocated, batch_id)
		VALUES (?, ?, ?, ?, ?)
	`, alloc.Ref, alloc.DonationID, alloc.CampID, alloc.Quantity, alloc.BatchID)
	if err != nil {
		return domain.Allocation{}, db.commitErr("insert allocation", err)
	}
	alloc.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Allocation{}, db.commitErr("allocation id", err)
	}

	if markAllocated {
		if _, err := tx.ExecContext(ctx, `
			UPDATE donations SET status = ? WHERE donation_id = ?
		`, string(domain.StatusAllocated), alloc.DonationID); err != nil {
			return domain.Allocation{}, db.commitErr("update donation status", err)
		}
	}

	// The donation converts to usable camp inventory.
	inv, err := tx.ExecContext(ctx, `
		UPDATE resources
		SET quantity_available = quantity_available + ?
		WHERE camp_id = ? AND resource_type_id = (
			SELECT resource_type_id FROM donations WHERE donation_id = ?
		)
	`, alloc.Quantity, alloc.CampID, alloc.DonationID)
	if err != nil {
		return domain.Allocation{}, db.commitErr("increment inventory", err)
	}
	n, err := inv.RowsAffected()
	if err != nil {
		return domain.Allocation{}, db.commitErr("increment inventory", err)
	}
	if n == 0 {
		return domain.Allocation{}, domain.ErrResourceNotFound
	}

	if err := tx.Commit(); err != nil {
		return domain.Allocation{}, db.commitErr("commit", err)
	}

	alloc.AllocatedAt = time.Now().UTC()
	db.logger.Info("allocation committed",
		zap.Int64("allocation_id", alloc.ID),
		zap.Int64("donation_id", alloc.DonationID),
		zap.Int64("camp_id", alloc.CampID),
		zap.Int64("quantity", alloc.Quantity),
		zap.Bool("donation_exhausted", markAllocated),
	)
	return alloc, nil
}

func (db *DB) commitErr(step string, err error) error {
	if isBusy(err) {
		return fmt.Errorf("%s: %w", step, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w: %v", step, domain.ErrStoreUnavailable, err)
}
