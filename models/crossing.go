package models

// CrossingEvent is one observed pedestrian crossing, as submitted by the
// browser client and as read back from CROSSING_LOGS. PersonsCount and
// ConfidencePct are pointers because an absent field and an explicit zero
// mean different things on ingest.
type CrossingEvent struct {
	EventID          string   `json:"event_id"`
	Timestamp        string   `json:"timestamp"`
	PedestrianType   string   `json:"pedestrian_type"`
	DurationSeconds  float64  `json:"duration_seconds"`
	WasLightExtended bool     `json:"was_light_extended"`
	PersonsCount     *int     `json:"persons_count,omitempty"`
	ConfidencePct    *float64 `json:"confidence_pct"`
	Notes            string   `json:"notes"`
}

func (CrossingEvent) TableName() string { return "CROSSING_LOGS" }
