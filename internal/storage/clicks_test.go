package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/storage"
)

const clickFieldCount = 18

var clickRowColumns = []string{
	"id", "link_id", "ip_address", "country", "region", "city", "timezone", "user_agent", "referrer",
	"device_type", "browser", "os", "source", "utm_source", "utm_medium", "utm_campaign",
	"created_at", "hour_of_day", "day_of_week",
}

func newTestRecord(t *testing.T, linkID uuid.UUID) domain.ClickRecord {
	t.Helper()

	return domain.ClickRecord{
		LinkID:     linkID,
		IPAddress:  "203.0.113.7",
		Country:    domain.UnknownGeo,
		Region:     domain.UnknownGeo,
		City:       domain.UnknownGeo,
		Timezone:   domain.UnknownGeo,
		UserAgent:  "Mozilla/5.0",
		DeviceType: domain.DeviceMobile,
		Browser:    "Safari 17.0",
		OS:         "iPhone OS 17_0",
		Source:     domain.SourceQR,
		CreatedAt:  time.Date(2026, 10, 14, 8, 0, 0, 0, time.Local),
		HourOfDay:  8,
		DayOfWeek:  2,
	}
}

func TestClickLedger_Append(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := storage.NewClickLedger(db)
	rec := newTestRecord(t, uuid.New())

	mock.ExpectQuery(`INSERT INTO click_records .* VALUES \(\$1, \$2, .*\$18\) RETURNING id`).
		WithArgs(anyArgs(clickFieldCount)...).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := ledger.Append(context.Background(), &rec)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, int64(42), rec.ID)
	expectationsMet(t, mock)
}

func TestClickLedger_AppendStoreDown(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := storage.NewClickLedger(db)
	rec := newTestRecord(t, uuid.New())

	mock.ExpectQuery("INSERT INTO click_records").
		WithArgs(anyArgs(clickFieldCount)...).
		WillReturnError(sql.ErrConnDone)

	_, err := ledger.Append(context.Background(), &rec)
	require.ErrorIs(t, err, domain.ErrPersistence)
	require.ErrorIs(t, err, sql.ErrConnDone)
	expectationsMet(t, mock)
}

func TestClickLedger_AppendBatchChunks(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := storage.NewClickLedger(db)
	linkID := uuid.New()

	records := make([]domain.ClickRecord, 120)
	for i := range records {
		records[i] = newTestRecord(t, linkID)
	}

	mock.ExpectExec("INSERT INTO click_records").
		WithArgs(anyArgs(50 * clickFieldCount)...).
		WillReturnResult(sqlmock.NewResult(0, 50))
	mock.ExpectExec("INSERT INTO click_records").
		WithArgs(anyArgs(50 * clickFieldCount)...).
		WillReturnResult(sqlmock.NewResult(0, 50))
	mock.ExpectExec("INSERT INTO click_records").
		WithArgs(anyArgs(20 * clickFieldCount)...).
		WillReturnResult(sqlmock.NewResult(0, 20))

	inserted, err := ledger.AppendBatch(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 120, inserted)
	expectationsMet(t, mock)
}

func TestClickLedger_AppendBatchPartialFailure(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := storage.NewClickLedger(db)
	linkID := uuid.New()

	records := make([]domain.ClickRecord, 70)
	for i := range records {
		records[i] = newTestRecord(t, linkID)
	}

	mock.ExpectExec("INSERT INTO click_records").
		WithArgs(anyArgs(50 * clickFieldCount)...).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectExec("INSERT INTO click_records").
		WithArgs(anyArgs(20 * clickFieldCount)...).
		WillReturnResult(sqlmock.NewResult(0, 20))

	inserted, err := ledger.AppendBatch(context.Background(), records)
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 20, inserted)
	expectationsMet(t, mock)
}

func TestClickLedger_AppendBatchEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := storage.NewClickLedger(db)

	inserted, err := ledger.AppendBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	expectationsMet(t, mock)
}

func TestClickLedger_Get(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := storage.NewClickLedger(db)
	linkID := uuid.New()
	at := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM click_records WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(clickRowColumns).AddRow(
			int64(7), linkID.String(), "203.0.113.7", "Unknown", "Unknown", "Unknown", "Unknown",
			"Mozilla/5.0", "https://t.co/x", "desktop", "Chrome 120", "Windows 10", "twitter",
			"tw", nil, nil, at, 8, 2,
		))

	rec, err := ledger.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, linkID, rec.LinkID)
	assert.Equal(t, domain.SourceTwitter, rec.Source)
	require.NotNil(t, rec.UTMSource)
	assert.Equal(t, "tw", *rec.UTMSource)
	assert.Nil(t, rec.UTMMedium)
	assert.Equal(t, 8, rec.HourOfDay)
	assert.Equal(t, 2, rec.DayOfWeek)
	expectationsMet(t, mock)
}

func TestClickLedger_GetMissing(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := storage.NewClickLedger(db)

	mock.ExpectQuery("FROM click_records WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(clickRowColumns))

	_, err := ledger.Get(context.Background(), 99)
	require.ErrorIs(t, err, domain.ErrNotFound)
	expectationsMet(t, mock)
}
