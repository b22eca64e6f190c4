package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

const getSettingSQL = `
SELECT setting_value
FROM APP_SETTINGS
WHERE setting_key = ?
LIMIT 1`

// Snowflake MERGE gives the insert-or-update in one statement; last writer
// wins, updated_at refreshed on every write.
const putSettingSQL = `
MERGE INTO APP_SETTINGS t
USING (SELECT ? AS setting_key, ? AS setting_value) s
ON t.setting_key = s.setting_key
WHEN MATCHED THEN UPDATE SET setting_value = s.setting_value, updated_at = current_timestamp()
WHEN NOT MATCHED THEN INSERT (setting_key, setting_value, updated_at)
    VALUES (s.setting_key, s.setting_value, current_timestamp())`

// SettingsStore reads and writes the named JSON configuration blobs in
// APP_SETTINGS.
type SettingsStore struct {
	wh     Warehouse
	logger *logrus.Logger
}

func NewSettingsStore(wh Warehouse, logger *logrus.Logger) *SettingsStore {
	return &SettingsStore{wh: wh, logger: logger}
}

// Get returns the stored document for key, or an empty JSON object when the
// key is absent or holds nothing. An unknown key is never an error.
func (s *SettingsStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	db, err := s.wh.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var value sql.NullString
	err = db.QueryRowContext(ctx, getSettingSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return json.RawMessage("{}"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("query setting %q: %w", key, err)
	}
	if !value.Valid || value.String == "" || !json.Valid([]byte(value.String)) {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(value.String), nil
}

// Put upserts the document under key. No versioning, no concurrency check.
func (s *SettingsStore) Put(ctx context.Context, key string, value json.RawMessage) error {
	db, err := s.wh.Acquire(ctx)
	if err != nil {
		return err
	}

	if len(value) == 0 {
		value = json.RawMessage("{}")
	}
	if _, err := db.ExecContext(ctx, putSettingSQL, key, string(value)); err != nil {
		return fmt.Errorf("upsert setting %q: %w", key, err)
	}

	s.logger.WithField("key", key).Info("settings saved")
	return nil
}
