package models

import "encoding/json"

// ViolationEvent is one detected jaywalking violation. ImageDataURL is only
// ever populated on ingest; the stored base64 payload never travels through
// listing responses.
type ViolationEvent struct {
	ViolationID   string         `json:"violation_id"`
	Timestamp     string         `json:"timestamp"`
	Severity      string         `json:"severity"`
	Description   string         `json:"description"`
	ImageDataURL  string         `json:"image_dataurl,omitempty"`
	ImageFilename string         `json:"image_filename,omitempty"`
	PedestrianID  StringOrNumber `json:"pedestrian_id"`
	Location      string         `json:"location"`
}

func (ViolationEvent) TableName() string { return "JAYWALKING_VIOLATIONS" }

// StringOrNumber accepts either a JSON string or a number and normalizes it
// to a string. Browser clients send pedestrian ids both ways.
type StringOrNumber string

func (s *StringOrNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = StringOrNumber(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = StringOrNumber(n.String())
	return nil
}
