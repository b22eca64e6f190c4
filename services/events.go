package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/Cyndi121404/Henhacks2026/models"
)

// timestampLayout is the wire format for every timestamp this service reads
// or writes: YYYY-MM-DD HH:MM:SS in UTC.
const timestampLayout = "2006-01-02 15:04:05"

const defaultLocation = "Hen-Tersection Unit"

var (
	eventsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crosswalk_events_stored_total",
		Help: "Events successfully inserted into the warehouse, by table.",
	}, []string{"table"})
	eventsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crosswalk_events_failed_total",
		Help: "Events that failed to insert into the warehouse, by table.",
	}, []string{"table"})
)

const insertCrossingSQL = `
INSERT INTO CROSSING_LOGS
    (event_id, timestamp, pedestrian_type, duration_seconds,
     was_light_extended, persons_count, confidence_pct, notes)
VALUES (?, ?::TIMESTAMP_NTZ, ?, ?, ?, ?, ?, ?)`

const insertViolationSQL = `
INSERT INTO JAYWALKING_VIOLATIONS
    (violation_id, timestamp, severity, description,
     image_data, image_filename, pedestrian_id, location)
VALUES (?, ?::TIMESTAMP_NTZ, ?, ?, ?, ?, ?, ?)`

// EventWriter appends crossing and violation events to their log tables,
// assigning ids and UTC timestamps when the caller did not. Each write is a
// single INSERT; on success the event is also published to the live channel.
type EventWriter struct {
	wh     Warehouse
	cache  *CacheService
	logger *logrus.Logger
	now    func() time.Time
}

func NewEventWriter(wh Warehouse, cache *CacheService, logger *logrus.Logger) *EventWriter {
	return &EventWriter{wh: wh, cache: cache, logger: logger, now: time.Now}
}

// WriteCrossing inserts one row into CROSSING_LOGS and returns the event id.
// Defaults: pedestrian_type "normal", persons_count 1, everything else its
// zero value.
func (w *EventWriter) WriteCrossing(ctx context.Context, ev models.CrossingEvent) (string, error) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.Timestamp == "" {
		ev.Timestamp = w.now().UTC().Format(timestampLayout)
	}
	if ev.PedestrianType == "" {
		ev.PedestrianType = "normal"
	}
	if ev.PersonsCount == nil {
		one := 1
		ev.PersonsCount = &one
	}

	db, err := w.wh.Acquire(ctx)
	if err != nil {
		eventsFailed.WithLabelValues(models.CrossingEvent{}.TableName()).Inc()
		return "", err
	}

	_, err = db.ExecContext(ctx, insertCrossingSQL,
		ev.EventID, ev.Timestamp, ev.PedestrianType, ev.DurationSeconds,
		ev.WasLightExtended, *ev.PersonsCount, ev.ConfidencePct, ev.Notes,
	)
	if err != nil {
		eventsFailed.WithLabelValues(models.CrossingEvent{}.TableName()).Inc()
		return "", fmt.Errorf("insert crossing: %w", err)
	}

	eventsStored.WithLabelValues(models.CrossingEvent{}.TableName()).Inc()
	w.logger.WithFields(logrus.Fields{
		"event_id":        ev.EventID,
		"pedestrian_type": ev.PedestrianType,
		"timestamp":       ev.Timestamp,
	}).Info("crossing logged")

	if err := w.cache.Publish(ctx, LiveChannel, map[string]interface{}{"type": "crossing", "data": ev}); err != nil {
		w.logger.WithError(err).Warn("live publish failed")
	}

	return ev.EventID, nil
}

// WriteViolation inserts one row into JAYWALKING_VIOLATIONS and returns the
// violation id. A data-URI image is split from its header and stored as raw
// base64 under a derived filename; without an image both image columns stay
// NULL. Defaults: severity "WARNING", location "Hen-Tersection Unit".
func (w *EventWriter) WriteViolation(ctx context.Context, ev models.ViolationEvent) (string, error) {
	if ev.ViolationID == "" {
		ev.ViolationID = uuid.NewString()
	}
	if ev.Timestamp == "" {
		ev.Timestamp = w.now().UTC().Format(timestampLayout)
	}
	if ev.Severity == "" {
		ev.Severity = "WARNING"
	}
	if ev.Location == "" {
		ev.Location = defaultLocation
	}

	var imageData, imageFilename sql.NullString
	if payload, ext, ok := SplitDataURL(ev.ImageDataURL); ok {
		imageData = sql.NullString{String: payload, Valid: true}
		ev.ImageFilename = fmt.Sprintf("jaywalk-violation-%d.%s", w.now().UnixMilli(), ext)
		imageFilename = sql.NullString{String: ev.ImageFilename, Valid: true}
	}

	db, err := w.wh.Acquire(ctx)
	if err != nil {
		eventsFailed.WithLabelValues(models.ViolationEvent{}.TableName()).Inc()
		return "", err
	}

	_, err = db.ExecContext(ctx, insertViolationSQL,
		ev.ViolationID, ev.Timestamp, ev.Severity, ev.Description,
		imageData, imageFilename, string(ev.PedestrianID), ev.Location,
	)
	if err != nil {
		eventsFailed.WithLabelValues(models.ViolationEvent{}.TableName()).Inc()
		return "", fmt.Errorf("insert violation: %w", err)
	}

	eventsStored.WithLabelValues(models.ViolationEvent{}.TableName()).Inc()
	w.logger.WithFields(logrus.Fields{
		"violation_id": ev.ViolationID,
		"severity":     ev.Severity,
		"has_image":    imageData.Valid,
		"filename":     ev.ImageFilename,
	}).Info("jaywalking violation logged")

	ev.ImageDataURL = ""
	if err := w.cache.Publish(ctx, LiveChannel, map[string]interface{}{"type": "violation", "data": ev}); err != nil {
		w.logger.WithError(err).Warn("live publish failed")
	}

	return ev.ViolationID, nil
}
