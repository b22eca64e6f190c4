package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Cyndi121404/Henhacks2026/config"
)

const createCrossingLogs = `
CREATE TABLE IF NOT EXISTS CROSSING_LOGS (
    event_id           STRING        NOT NULL DEFAULT uuid_string(),
    timestamp          TIMESTAMP_NTZ NOT NULL DEFAULT current_timestamp(),
    pedestrian_type    STRING,
    duration_seconds   FLOAT,
    was_light_extended BOOLEAN,
    persons_count      INT,
    confidence_pct     FLOAT,
    notes              TEXT
)`

const createJaywalkingViolations = `
CREATE TABLE IF NOT EXISTS JAYWALKING_VIOLATIONS (
    violation_id   STRING        NOT NULL DEFAULT uuid_string(),
    timestamp      TIMESTAMP_NTZ NOT NULL DEFAULT current_timestamp(),
    severity       STRING,
    description    TEXT,
    image_data     TEXT,
    image_filename STRING,
    pedestrian_id  STRING,
    location       STRING DEFAULT 'Hen-Tersection Unit'
)`

const createAppSettings = `
CREATE TABLE IF NOT EXISTS APP_SETTINGS (
    setting_key   STRING        NOT NULL PRIMARY KEY,
    setting_value STRING,
    updated_at    TIMESTAMP_NTZ NOT NULL DEFAULT current_timestamp()
)`

// EnsureSchema selects the session context and creates the three log tables
// if they are absent. Safe to run on every startup; existing rows are never
// touched. Any failure aborts the sequence so the process never starts
// against a half-initialized schema.
func EnsureSchema(ctx context.Context, db *sql.DB, cfg config.WarehouseConfig) error {
	statements := []string{
		fmt.Sprintf("USE WAREHOUSE %s", cfg.Warehouse),
		fmt.Sprintf("USE DATABASE %s", cfg.Database),
		fmt.Sprintf("USE SCHEMA %s", cfg.Schema),
		createCrossingLogs,
		createJaywalkingViolations,
		createAppSettings,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema init: %w", err)
		}
	}
	return nil
}
