package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/relief-network/reliefd/internal/domain"
)

// ─── Inventory Store ────────────────────────────────────────────────────────

// Resources returns all inventory rows with camp and type metadata joined.
func (db *DB) Resources(ctx context.Context) ([]domain.Resource, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT r.resource_id, r.camp_id, c.camp_name, d.disaster_name,
		       r.resource_type_id, rt.type_name, rt.unit,
		       r.quantity_available, r.quantity_needed
		FROM resources r
		JOIN resource_types rt ON r.resource_type_id = rt.resource_type_id
		JOIN relief_camps c    ON r.camp_id = c.camp_id
		JOIN disasters d       ON c.disaster_id = d.disaster_id
		ORDER BY r.resource_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	var result []domain.Resource
	for rows.Next() {
		var r domain.Resource
		if err := rows.Scan(&r.ID, &r.CampID, &r.CampName, &r.DisasterName,
			&r.ResourceTypeID, &r.TypeName, &r.Unit, &r.Available, &r.Needed); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ResourceTypes returns the reference list of resource types.
func (db *DB) ResourceTypes(ctx context.Context) ([]domain.ResourceType, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT resource_type_id, type_name, unit
		FROM resource_types ORDER BY type_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query resource types: %w", err)
	}
	defer rows.Close()

	var result []domain.ResourceType
	for rows.Next() {
		var rt domain.ResourceType
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Unit); err != nil {
			return nil, fmt.Errorf("scan resource type: %w", err)
		}
		result = append(result, rt)
	}
	return result, rows.Err()
}

// UpdateResourceQuantities overwrites both quantities of one inventory row.
func (db *DB) UpdateResourceQuantities(ctx context.Context, resourceID, available, needed int64) error {
	if available < 0 || needed < 0 {
		return fmt.Errorf("%w: quantities cannot be negative", domain.ErrInvalidQuantity)
	}
	res, err := db.db.ExecContext(ctx, `
		UPDATE resources
		SET quantity_available = ?, quantity_needed = ?
		WHERE resource_id = ?
	`, available, needed, resourceID)
	if err != nil {
		return fmt.Errorf("update resource %d: %w", resourceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrResourceNotFound
	}
	db.logger.Debug("resource quantities updated",
		zap.Int64("resource_id", resourceID),
		zap.Int64("available", available),
		zap.Int64("needed", needed),
	)
	return nil
}

// ─── CRUD used by the seeding CLI and the web layer ─────────────────────────

// AddDisaster inserts a disaster and returns its ID.
func (db *DB) AddDisaster(ctx context.Context, d domain.Disaster) (int64, error) {
	status := d.Status
	if status == "" {
		status = "Active"
	}
	res, err := db.db.ExecContext(ctx, `
		INSERT INTO disasters (disaster_name, disaster_type, location, severity, status)
		VALUES (?, ?, ?, ?, ?)
	`, d.Name, d.Type, d.Location, d.Severity, status)
	if err != nil {
		return 0, fmt.Errorf("insert disaster: %w", err)
	}
	return res.LastInsertId()
}

// AddCamp inserts a relief camp and returns its ID.
func (db *DB) AddCamp(ctx context.Context, c domain.Camp) (int64, error) {
	status := c.Status
	if status == "" {
		status = "Active"
	}
	res, err := db.db.ExecContext(ctx, `
		INSERT INTO relief_camps (camp_name, disaster_id, location, capacity, current_occupancy, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.Name, c.DisasterID, c.Location, c.Capacity, c.Occupancy, status)
	if err != nil {
		return 0, fmt.Errorf("insert camp: %w", err)
	}
	return res.LastInsertId()
}

// AddResource inserts one (camp, resource type) inventory row.
func (db *DB) AddResource(ctx context.Context, campID, resourceTypeID, available, needed int64) (int64, error) {
	if available < 0 || needed < 0 {
		return 0, fmt.Errorf("%w: quantities cannot be negative", domain.ErrInvalidQuantity)
	}
	res, err := db.db.ExecContext(ctx, `
		INSERT INTO resources (camp_id, resource_type_id, quantity_available, quantity_needed)
		VALUES (?, ?, ?, ?)
	`, campID, resourceTypeID, available, needed)
	if err != nil {
		return 0, fmt.Errorf("insert resource: %w", err)
	}
	return res.LastInsertId()
}

// AddDonation records a donation and returns its ID.
func (db *DB) AddDonation(ctx context.Context, d domain.Donation) (int64, error) {
	if d.Quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidQuantity)
	}
	status := d.Status
	if status == "" {
		status = domain.StatusPending
	}
	res, err := db.db.ExecContext(ctx, `
		INSERT INTO donations (donor_name, donor_contact, resource_type_id, quantity_donated, status, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.Donor, d.DonorContact, d.ResourceTypeID, d.Quantity, string(status), d.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert donation: %w", err)
	}
	return res.LastInsertId()
}

// ─── Dashboard Counts ───────────────────────────────────────────────────────

// Dashboard returns the summary counters in one pass.
func (db *DB) Dashboard(ctx context.Context) (domain.DashboardSummary, error) {
	var c domain.DashboardSummary
	err := db.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM disasters WHERE status = 'Active'),
			(SELECT COUNT(*) FROM relief_camps WHERE status = 'Active'),
			(SELECT COALESCE(SUM(current_occupancy), 0) FROM relief_camps WHERE status = 'Active'),
			(SELECT COUNT(*) FROM resources WHERE quantity_needed > quantity_available)
	`).Scan(&c.ActiveDisasters, &c.ActiveCamps, &c.TotalOccupancy, &c.ShortageCount)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.DashboardSummary{}, fmt.Errorf("query dashboard counts: %w", err)
	}
	return c, nil
}
