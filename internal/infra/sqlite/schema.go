package sqlite

// Migrations returns the schema migration statements for the relief store.
func Migrations() []string {
	return []string{
		// Declared disasters
		`CREATE TABLE IF NOT EXISTS disasters (
			disaster_id   INTEGER PRIMARY KEY AUTOINCREMENT,
			disaster_name TEXT NOT NULL,
			disaster_type TEXT NOT NULL,
			location      TEXT NOT NULL,
			severity      TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'Active',
			start_date    TEXT NOT NULL DEFAULT (date('now')),
			description   TEXT DEFAULT ''
		)`,

		// Relief camps, one disaster each
		`CREATE TABLE IF NOT EXISTS relief_camps (
			camp_id           INTEGER PRIMARY KEY AUTOINCREMENT,
			camp_name         TEXT NOT NULL,
			disaster_id       INTEGER NOT NULL REFERENCES disasters(disaster_id),
			location          TEXT NOT NULL,
			capacity          INTEGER NOT NULL DEFAULT 0,
			current_occupancy INTEGER NOT NULL DEFAULT 0,
			status            TEXT NOT NULL DEFAULT 'Active',
			created_at        TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_camps_disaster ON relief_camps(disaster_id)`,

		// Resource type reference data
		`CREATE TABLE IF NOT EXISTS resource_types (
			resource_type_id INTEGER PRIMARY KEY AUTOINCREMENT,
			type_name        TEXT NOT NULL UNIQUE,
			unit             TEXT NOT NULL
		)`,

		// Per-camp inventory, one row per camp/type pair.
		// Quantities are kept non-negative by CHECK, matching the engine's
		// own invariant.
		`CREATE TABLE IF NOT EXISTS resources (
			resource_id        INTEGER PRIMARY KEY AUTOINCREMENT,
			camp_id            INTEGER NOT NULL REFERENCES relief_camps(camp_id),
			resource_type_id   INTEGER NOT NULL REFERENCES resource_types(resource_type_id),
			quantity_available INTEGER NOT NULL DEFAULT 0 CHECK (quantity_available >= 0),
			quantity_needed    INTEGER NOT NULL DEFAULT 0 CHECK (quantity_needed >= 0),
			UNIQUE(camp_id, resource_type_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resources_type ON resources(resource_type_id)`,

		// Donations. quantity_donated is immutable once recorded; the
		// allocated sum is always derived from donation_allocations.
		`CREATE TABLE IF NOT EXISTS donations (
			donation_id      INTEGER PRIMARY KEY AUTOINCREMENT,
			donor_name       TEXT NOT NULL,
			donor_contact    TEXT DEFAULT '',
			resource_type_id INTEGER NOT NULL REFERENCES resource_types(resource_type_id),
			quantity_donated INTEGER NOT NULL CHECK (quantity_donated > 0),
			status           TEXT NOT NULL DEFAULT 'Pending',
			notes            TEXT DEFAULT '',
			donation_date    TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_donations_status ON donations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_donations_type ON donations(resource_type_id)`,

		// Committed allocations, immutable once created
		`CREATE TABLE IF NOT EXISTS donation_allocations (
			allocation_id      INTEGER PRIMARY KEY AUTOINCREMENT,
			ref                TEXT NOT NULL UNIQUE,
			donation_id        INTEGER NOT NULL REFERENCES donations(donation_id),
			camp_id            INTEGER NOT NULL REFERENCES relief_camps(camp_id),
			quantity_allocated INTEGER NOT NULL CHECK (quantity_allocated > 0),
			batch_id           TEXT DEFAULT '',
			allocation_date    TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_allocations_donation ON donation_allocations(donation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_allocations_camp ON donation_allocations(camp_id)`,

		// Seed reference data
		`INSERT OR IGNORE INTO resource_types (type_name, unit) VALUES
			('Water', 'liters'),
			('Food', 'meals'),
			('Medicine', 'kits'),
			('Blankets', 'pieces'),
			('Tents', 'units'),
			('Clothing', 'sets')`,
	}
}
