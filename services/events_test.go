package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyndi121404/Henhacks2026/config"
	"github.com/Cyndi121404/Henhacks2026/models"
)

var testClock = time.Date(2026, 2, 14, 12, 30, 45, 0, time.UTC)

type stubWarehouse struct {
	db  *sql.DB
	err error
}

func (s stubWarehouse) Acquire(ctx context.Context) (*sql.DB, error) {
	return s.db, s.err
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestWriter(t *testing.T) (*EventWriter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := discardLogger()
	writer := NewEventWriter(stubWarehouse{db: db}, NewCacheService(config.RedisConfig{}, logger), logger)
	writer.now = func() time.Time { return testClock }
	return writer, mock
}

func TestWriteCrossingAppliesDefaults(t *testing.T) {
	writer, mock := newTestWriter(t)

	mock.ExpectExec("INSERT INTO CROSSING_LOGS").
		WithArgs(sqlmock.AnyArg(), "2026-02-14 12:30:45", "normal", float64(0), false, 1, nil, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := writer.WriteCrossing(context.Background(), models.CrossingEvent{})
	require.NoError(t, err)

	_, err = uuid.Parse(id)
	assert.NoError(t, err, "generated event id should be a valid uuid")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteCrossingKeepsCallerFields(t *testing.T) {
	writer, mock := newTestWriter(t)

	persons := 2
	confidence := 87.5
	mock.ExpectExec("INSERT INTO CROSSING_LOGS").
		WithArgs("fixed-id", "2025-12-31 23:59:59", "wheelchair", 12.5, true, 2, &confidence, "slow crossing").
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := writer.WriteCrossing(context.Background(), models.CrossingEvent{
		EventID:          "fixed-id",
		Timestamp:        "2025-12-31 23:59:59",
		PedestrianType:   "wheelchair",
		DurationSeconds:  12.5,
		WasLightExtended: true,
		PersonsCount:     &persons,
		ConfidencePct:    &confidence,
		Notes:            "slow crossing",
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteCrossingInsertFailure(t *testing.T) {
	writer, mock := newTestWriter(t)

	mock.ExpectExec("INSERT INTO CROSSING_LOGS").
		WillReturnError(fmt.Errorf("warehouse suspended"))

	_, err := writer.WriteCrossing(context.Background(), models.CrossingEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert crossing")
}

func TestWriteCrossingConnectionFailure(t *testing.T) {
	logger := discardLogger()
	writer := NewEventWriter(
		stubWarehouse{err: fmt.Errorf("no account format accepted")},
		NewCacheService(config.RedisConfig{}, logger), logger,
	)

	_, err := writer.WriteCrossing(context.Background(), models.CrossingEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no account format accepted")
}

func TestWriteViolationWithPNGImage(t *testing.T) {
	writer, mock := newTestWriter(t)

	wantFilename := fmt.Sprintf("jaywalk-violation-%d.png", testClock.UnixMilli())
	mock.ExpectExec("INSERT INTO JAYWALKING_VIOLATIONS").
		WithArgs(sqlmock.AnyArg(), "2026-02-14 12:30:45", "CRITICAL", "ran red light",
			"iVBORw==", wantFilename, "PED-7", "Hen-Tersection Unit").
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := writer.WriteViolation(context.Background(), models.ViolationEvent{
		Severity:     "CRITICAL",
		Description:  "ran red light",
		ImageDataURL: "data:image/png;base64,iVBORw==",
		PedestrianID: "PED-7",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(id)
	assert.NoError(t, err, "generated violation id should be a valid uuid")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteViolationWithJPEGImage(t *testing.T) {
	writer, mock := newTestWriter(t)

	wantFilename := fmt.Sprintf("jaywalk-violation-%d.jpg", testClock.UnixMilli())
	mock.ExpectExec("INSERT INTO JAYWALKING_VIOLATIONS").
		WithArgs(sqlmock.AnyArg(), "2026-02-14 12:30:45", "WARNING", "",
			"/9j/4AAQ", wantFilename, "", "Hen-Tersection Unit").
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := writer.WriteViolation(context.Background(), models.ViolationEvent{
		ImageDataURL: "data:image/jpeg;base64,/9j/4AAQ",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteViolationWithoutImage(t *testing.T) {
	writer, mock := newTestWriter(t)

	mock.ExpectExec("INSERT INTO JAYWALKING_VIOLATIONS").
		WithArgs(sqlmock.AnyArg(), "2026-02-14 12:30:45", "WARNING", "",
			nil, nil, "", "Hen-Tersection Unit").
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := writer.WriteViolation(context.Background(), models.ViolationEvent{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "image columns must stay NULL without an image")
}

func TestWriteViolationIgnoresBogusDataURL(t *testing.T) {
	writer, mock := newTestWriter(t)

	mock.ExpectExec("INSERT INTO JAYWALKING_VIOLATIONS").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "WARNING", "",
			nil, nil, "", "Hen-Tersection Unit").
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := writer.WriteViolation(context.Background(), models.ViolationEvent{
		ImageDataURL: "screenshot.png",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
