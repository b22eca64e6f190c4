package models

import "encoding/json"

// SettingRecord is one named JSON configuration blob in APP_SETTINGS.
// Exactly one row exists per key; writes are last-writer-wins upserts.
type SettingRecord struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt string          `json:"updated_at"`
}

func (SettingRecord) TableName() string { return "APP_SETTINGS" }
