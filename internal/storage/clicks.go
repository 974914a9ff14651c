package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

const (
	// columnsPerRow is the number of columns inserted per click record.
	columnsPerRow = 18

	// insertBatchSize is the maximum number of rows per INSERT statement.
	insertBatchSize = 50
)

const clickInsertPrefix = `INSERT INTO click_records (link_id, ip_address, country, region, city, timezone,
	user_agent, referrer, device_type, browser, os, source, utm_source, utm_medium, utm_campaign,
	created_at, hour_of_day, day_of_week) VALUES `

const clickColumns = `id, link_id, ip_address, country, region, city, timezone, user_agent, referrer,
	device_type, browser, os, source, utm_source, utm_medium, utm_campaign,
	created_at, hour_of_day, day_of_week`

// ClickLedger is the append-only store of click records.
type ClickLedger struct {
	db *sqlx.DB
}

// NewClickLedger creates a ClickLedger.
func NewClickLedger(db *sqlx.DB) *ClickLedger {
	return &ClickLedger{db: db}
}

// Append writes one record and returns its ID. The caller has already
// resolved the link; existence is not checked again here.
func (l *ClickLedger) Append(ctx context.Context, rec *domain.ClickRecord) (int64, error) {
	var sb strings.Builder
	sb.WriteString(clickInsertPrefix)
	writeValueTuple(&sb, 0)
	sb.WriteString(" RETURNING id")

	var id int64
	if err := l.db.QueryRowxContext(ctx, sb.String(), clickArgs(rec)...).Scan(&id); err != nil {
		return 0, domain.PersistenceError("failed to append click", err)
	}

	rec.ID = id
	return id, nil
}

// AppendBatch writes records in chunks of insertBatchSize rows. A failed
// chunk does not stop later chunks; it returns how many rows were written
// and the joined chunk errors.
func (l *ClickLedger) AppendBatch(ctx context.Context, records []domain.ClickRecord) (int, error) {
	var (
		inserted int
		errs     []error
	)

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))

		if err := l.batchInsert(ctx, records[start:end]); err != nil {
			errs = append(errs, err)
			continue
		}
		inserted += end - start
	}

	if len(errs) > 0 {
		return inserted, domain.PersistenceError("failed to append click batch", errors.Join(errs...))
	}
	return inserted, nil
}

// batchInsert builds and executes a single INSERT with one value tuple per record.
func (l *ClickLedger) batchInsert(ctx context.Context, records []domain.ClickRecord) error {
	if len(records) == 0 {
		return nil
	}

	args := make([]any, 0, len(records)*columnsPerRow)
	var sb strings.Builder
	sb.WriteString(clickInsertPrefix)

	for i := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeValueTuple(&sb, i)
		args = append(args, clickArgs(&records[i])...)
	}

	if _, err := l.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("exec batch insert: %w", err)
	}
	return nil
}

// Get returns a stored record whether or not its link is still active.
func (l *ClickLedger) Get(ctx context.Context, id int64) (*domain.ClickRecord, error) {
	rec := &domain.ClickRecord{}
	err := l.db.GetContext(ctx, rec, `SELECT `+clickColumns+` FROM click_records WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.PersistenceError("failed to get click", err)
	}
	return rec, nil
}

func clickArgs(rec *domain.ClickRecord) []any {
	return []any{
		rec.LinkID, rec.IPAddress, rec.Country, rec.Region, rec.City, rec.Timezone,
		rec.UserAgent, rec.Referrer, rec.DeviceType, rec.Browser, rec.OS, rec.Source,
		rec.UTMSource, rec.UTMMedium, rec.UTMCampaign,
		rec.CreatedAt, rec.HourOfDay, rec.DayOfWeek,
	}
}

// writeValueTuple writes the ($n, ...) placeholder tuple for row rowIndex.
func writeValueTuple(sb *strings.Builder, rowIndex int) {
	base := rowIndex * columnsPerRow
	sb.WriteByte('(')
	for col := 1; col <= columnsPerRow; col++ {
		if col > 1 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "$%d", base+col)
	}
	sb.WriteByte(')')
}
