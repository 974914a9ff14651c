package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

// countryLimit caps the country breakdown.
const countryLimit = 10

// ErrEmptyScope is returned when a Scope names neither a link nor a campaign.
var ErrEmptyScope = errors.New("scope requires a link or a campaign")

// breakdownColumns whitelists the columns a breakdown may group by.
var breakdownColumns = map[domain.BreakdownField]string{
	domain.BreakdownDevice:  "c.device_type",
	domain.BreakdownSource:  "c.source",
	domain.BreakdownCountry: "c.country",
	domain.BreakdownHour:    "c.hour_of_day",
	domain.BreakdownWeekday: "c.day_of_week",
}

// Analytics answers read-only aggregate queries over the click ledger.
// Every method is a pure read.
type Analytics struct {
	db *sqlx.DB
}

// NewAnalytics creates an Analytics reader.
func NewAnalytics(db *sqlx.DB) *Analytics {
	return &Analytics{db: db}
}

// Totals returns total, unique-by-IP and QR click counts for scope.
func (a *Analytics) Totals(ctx context.Context, scope domain.Scope) (domain.ClickTotals, error) {
	var totals domain.ClickTotals

	where, arg, err := scopeFilter(scope)
	if err != nil {
		return totals, err
	}

	query := `
		SELECT COUNT(c.id) AS total_clicks,
			COUNT(DISTINCT c.ip_address) AS unique_clicks,
			COUNT(c.id) FILTER (WHERE c.source = 'qr') AS qr_clicks
		FROM click_records c
		JOIN links l ON l.id = c.link_id
		WHERE ` + where

	if err := a.db.GetContext(ctx, &totals, query, arg); err != nil {
		return totals, domain.PersistenceError("failed to count clicks", err)
	}
	return totals, nil
}

// DailyCounts returns per-day click counts since the given time, oldest
// first. Days without clicks are omitted.
func (a *Analytics) DailyCounts(ctx context.Context, scope domain.Scope, since time.Time) ([]domain.DailyCount, error) {
	where, arg, err := scopeFilter(scope)
	if err != nil {
		return nil, err
	}

	days := []domain.DailyCount{}
	query := `
		SELECT to_char(date_trunc('day', c.created_at), 'YYYY-MM-DD') AS day,
			COUNT(*) AS clicks,
			COUNT(*) FILTER (WHERE c.source = 'qr') AS qr_clicks
		FROM click_records c
		JOIN links l ON l.id = c.link_id
		WHERE ` + where + ` AND c.created_at >= $2
		GROUP BY day
		ORDER BY day`

	if err := a.db.SelectContext(ctx, &days, query, arg, since); err != nil {
		return nil, domain.PersistenceError("failed to count daily clicks", err)
	}
	return days, nil
}

// Breakdown groups the clicks in scope by field. Hour and weekday rows are
// ordered by key; the others by count descending, then key. The country
// breakdown leaves out unknown locations and keeps the top ten.
func (a *Analytics) Breakdown(ctx context.Context, field domain.BreakdownField, scope domain.Scope) ([]domain.BucketCount, error) {
	column, ok := breakdownColumns[field]
	if !ok {
		return nil, &domain.ValidationError{Field: "breakdown", Message: fmt.Sprintf("unknown field %q", field)}
	}

	where, arg, err := scopeFilter(scope)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + column + `::text AS bucket, COUNT(*) AS count
		FROM click_records c
		JOIN links l ON l.id = c.link_id
		WHERE ` + where

	if field == domain.BreakdownCountry {
		query += ` AND c.country <> '` + domain.UnknownGeo + `'`
	}
	query += ` GROUP BY ` + column

	switch field {
	case domain.BreakdownHour, domain.BreakdownWeekday:
		query += ` ORDER BY ` + column
	case domain.BreakdownCountry:
		query += fmt.Sprintf(` ORDER BY count DESC, bucket LIMIT %d`, countryLimit)
	default:
		query += ` ORDER BY count DESC, bucket`
	}

	buckets := []domain.BucketCount{}
	if err := a.db.SelectContext(ctx, &buckets, query, arg); err != nil {
		return nil, domain.PersistenceError(fmt.Sprintf("failed to break down clicks by %s", field), err)
	}
	return buckets, nil
}

// scopeFilter returns the WHERE fragment for scope and its $1 argument.
// Campaign scopes only cover active links.
func scopeFilter(scope domain.Scope) (string, any, error) {
	switch {
	case scope.LinkID != nil:
		return "c.link_id = $1", *scope.LinkID, nil
	case scope.Campaign != "":
		return "l.campaign_name = $1 AND l.is_active = true", scope.Campaign, nil
	default:
		return "", nil, ErrEmptyScope
	}
}
