package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Cyndi121404/Henhacks2026/models"
)

// ErrNotFound signals that a requested violation or its stored image does
// not exist.
var ErrNotFound = errors.New("not found")

const recentViolationsSQL = `
SELECT
    violation_id,
    TO_CHAR(timestamp, 'YYYY-MM-DD HH24:MI:SS') AS timestamp,
    severity,
    description,
    image_filename,
    pedestrian_id,
    location
FROM JAYWALKING_VIOLATIONS
ORDER BY timestamp DESC
LIMIT ?`

const recentCrossingsSQL = `
SELECT
    event_id,
    TO_CHAR(timestamp, 'YYYY-MM-DD HH24:MI:SS') AS timestamp,
    pedestrian_type,
    duration_seconds,
    was_light_extended,
    persons_count,
    confidence_pct,
    notes
FROM CROSSING_LOGS
ORDER BY timestamp DESC
LIMIT ?`

const violationImageSQL = `
SELECT image_data, image_filename
FROM JAYWALKING_VIOLATIONS
WHERE violation_id = ?
LIMIT 1`

// QueryService reads recent rows back from the log tables. Listings are
// metadata only and ordered newest first; the image lookup decodes the
// stored base64 payload to raw bytes.
type QueryService struct {
	wh     Warehouse
	logger *logrus.Logger
}

func NewQueryService(wh Warehouse, logger *logrus.Logger) *QueryService {
	return &QueryService{wh: wh, logger: logger}
}

func (s *QueryService) RecentViolations(ctx context.Context, limit int) ([]models.ViolationEvent, error) {
	db, err := s.wh.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, recentViolationsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	out := make([]models.ViolationEvent, 0, limit)
	for rows.Next() {
		var v models.ViolationEvent
		var severity, description, imageFilename, pedestrianID, location sql.NullString
		if err := rows.Scan(
			&v.ViolationID, &v.Timestamp, &severity, &description,
			&imageFilename, &pedestrianID, &location,
		); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		v.Severity = severity.String
		v.Description = description.String
		v.ImageFilename = imageFilename.String
		v.PedestrianID = models.StringOrNumber(pedestrianID.String)
		v.Location = location.String
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *QueryService) RecentCrossings(ctx context.Context, limit int) ([]models.CrossingEvent, error) {
	db, err := s.wh.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, recentCrossingsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query crossings: %w", err)
	}
	defer rows.Close()

	out := make([]models.CrossingEvent, 0, limit)
	for rows.Next() {
		var ev models.CrossingEvent
		var pedestrianType, notes sql.NullString
		var duration, confidence sql.NullFloat64
		var extended sql.NullBool
		var persons sql.NullInt64
		if err := rows.Scan(
			&ev.EventID, &ev.Timestamp, &pedestrianType, &duration,
			&extended, &persons, &confidence, &notes,
		); err != nil {
			return nil, fmt.Errorf("scan crossing: %w", err)
		}
		ev.PedestrianType = pedestrianType.String
		ev.DurationSeconds = duration.Float64
		ev.WasLightExtended = extended.Bool
		ev.Notes = notes.String
		if persons.Valid {
			count := int(persons.Int64)
			ev.PersonsCount = &count
		}
		if confidence.Valid {
			pct := confidence.Float64
			ev.ConfidencePct = &pct
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ViolationImage returns the decoded image bytes and stored filename for one
// violation, or ErrNotFound when the row or its image is absent.
func (s *QueryService) ViolationImage(ctx context.Context, violationID string) ([]byte, string, error) {
	db, err := s.wh.Acquire(ctx)
	if err != nil {
		return nil, "", err
	}

	var imageData, imageFilename sql.NullString
	err = db.QueryRowContext(ctx, violationImageSQL, violationID).Scan(&imageData, &imageFilename)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("query violation image: %w", err)
	}
	if !imageData.Valid || imageData.String == "" {
		return nil, "", ErrNotFound
	}

	raw, err := base64.StdEncoding.DecodeString(imageData.String)
	if err != nil {
		return nil, "", fmt.Errorf("decode stored image: %w", err)
	}

	filename := imageFilename.String
	if filename == "" {
		filename = "violation.png"
	}
	return raw, filename, nil
}
