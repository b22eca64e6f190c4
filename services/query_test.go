package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuery(t *testing.T) (*QueryService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewQueryService(stubWarehouse{db: db}, discardLogger()), mock
}

var violationColumns = []string{
	"violation_id", "timestamp", "severity", "description",
	"image_filename", "pedestrian_id", "location",
}

var crossingColumns = []string{
	"event_id", "timestamp", "pedestrian_type", "duration_seconds",
	"was_light_extended", "persons_count", "confidence_pct", "notes",
}

func TestRecentViolations(t *testing.T) {
	query, mock := newTestQuery(t)

	rows := sqlmock.NewRows(violationColumns).
		AddRow("v-2", "2026-02-14 12:31:00", "CRITICAL", "ran red light", "jaywalk-violation-1.png", "PED-7", "Hen-Tersection Unit").
		AddRow("v-1", "2026-02-14 12:30:00", "WARNING", "", nil, nil, "Hen-Tersection Unit")
	mock.ExpectQuery("FROM JAYWALKING_VIOLATIONS").WithArgs(2).WillReturnRows(rows)

	out, err := query.RecentViolations(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "v-2", out[0].ViolationID)
	assert.Equal(t, "2026-02-14 12:31:00", out[0].Timestamp)
	assert.Equal(t, "CRITICAL", out[0].Severity)
	assert.Equal(t, "jaywalk-violation-1.png", out[0].ImageFilename)
	assert.Empty(t, out[0].ImageDataURL, "listings must never carry image payloads")

	assert.Equal(t, "v-1", out[1].ViolationID)
	assert.Empty(t, out[1].ImageFilename)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentViolationsEmpty(t *testing.T) {
	query, mock := newTestQuery(t)

	mock.ExpectQuery("FROM JAYWALKING_VIOLATIONS").WithArgs(50).
		WillReturnRows(sqlmock.NewRows(violationColumns))

	out, err := query.RecentViolations(context.Background(), 50)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestRecentCrossings(t *testing.T) {
	query, mock := newTestQuery(t)

	rows := sqlmock.NewRows(crossingColumns).
		AddRow("e-2", "2026-02-14 12:31:00", "wheelchair", 12.5, true, 1, 92.5, "").
		AddRow("e-1", "2026-02-14 12:30:00", "normal", 4.2, false, 3, nil, "rush hour")
	mock.ExpectQuery("FROM CROSSING_LOGS").WithArgs(2).WillReturnRows(rows)

	out, err := query.RecentCrossings(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "e-2", out[0].EventID)
	assert.Equal(t, "wheelchair", out[0].PedestrianType)
	assert.True(t, out[0].WasLightExtended)
	require.NotNil(t, out[0].ConfidencePct)
	assert.Equal(t, 92.5, *out[0].ConfidencePct)

	require.NotNil(t, out[1].PersonsCount)
	assert.Equal(t, 3, *out[1].PersonsCount)
	assert.Nil(t, out[1].ConfidencePct)
	assert.Equal(t, "rush hour", out[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViolationImage(t *testing.T) {
	query, mock := newTestQuery(t)

	original := []byte("fake-png-bytes")
	stored := base64.StdEncoding.EncodeToString(original)
	mock.ExpectQuery("SELECT image_data, image_filename").WithArgs("v-1").
		WillReturnRows(sqlmock.NewRows([]string{"image_data", "image_filename"}).
			AddRow(stored, "jaywalk-violation-1.png"))

	raw, filename, err := query.ViolationImage(context.Background(), "v-1")
	require.NoError(t, err)
	assert.Equal(t, original, raw, "stored base64 must decode back to the original bytes")
	assert.Equal(t, "jaywalk-violation-1.png", filename)
}

func TestViolationImageMissingRow(t *testing.T) {
	query, mock := newTestQuery(t)

	mock.ExpectQuery("SELECT image_data, image_filename").WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, _, err := query.ViolationImage(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestViolationImageRowWithoutImage(t *testing.T) {
	query, mock := newTestQuery(t)

	mock.ExpectQuery("SELECT image_data, image_filename").WithArgs("v-1").
		WillReturnRows(sqlmock.NewRows([]string{"image_data", "image_filename"}).
			AddRow(nil, nil))

	_, _, err := query.ViolationImage(context.Background(), "v-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestViolationImageCorruptPayload(t *testing.T) {
	query, mock := newTestQuery(t)

	mock.ExpectQuery("SELECT image_data, image_filename").WithArgs("v-1").
		WillReturnRows(sqlmock.NewRows([]string{"image_data", "image_filename"}).
			AddRow("not base64 at all!!!", "x.png"))

	_, _, err := query.ViolationImage(context.Background(), "v-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
