package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

const linkColumns = `l.id, l.short_code, l.original_url, l.custom_name, l.campaign_name,
	l.created_at, l.is_active, l.created_by`

// summarySelect aggregates click counters per link. The LEFT JOIN keeps
// links that have never been clicked.
const summarySelect = `
	SELECT ` + linkColumns + `,
		COUNT(c.id) AS total_clicks,
		COUNT(DISTINCT c.ip_address) AS unique_clicks,
		COUNT(c.id) FILTER (WHERE c.source = 'qr') AS qr_clicks
	FROM links l
	LEFT JOIN click_records c ON c.link_id = l.id
`

// LinkStore is the single writer of the links table.
type LinkStore struct {
	db *sqlx.DB
}

// NewLinkStore creates a LinkStore.
func NewLinkStore(db *sqlx.DB) *LinkStore {
	return &LinkStore{db: db}
}

// Create inserts link as active and fills in its ID and CreatedAt.
// A taken short code yields domain.ErrDuplicateSlug and nothing is written.
func (s *LinkStore) Create(ctx context.Context, link *domain.Link) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.IsActive = true

	query := `
		INSERT INTO links (id, short_code, original_url, custom_name, campaign_name, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := s.db.QueryRowxContext(ctx, query,
		link.ID, link.ShortCode, link.OriginalURL, link.CustomName, link.CampaignName,
		link.IsActive, link.CreatedBy,
	).Scan(&link.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSlug
		}
		return domain.PersistenceError("failed to create link", err)
	}

	return nil
}

// CodeExists reports whether any link, active or not, uses code.
func (s *LinkStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM links WHERE short_code = $1)`, code)
	if err != nil {
		return false, domain.PersistenceError("failed to check short code", err)
	}
	return exists, nil
}

// Resolve returns the active link for code.
func (s *LinkStore) Resolve(ctx context.Context, code string) (*domain.Link, error) {
	link := &domain.Link{}
	query := `SELECT ` + linkColumns + ` FROM links l WHERE l.short_code = $1 AND l.is_active = true`

	err := s.db.GetContext(ctx, link, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.PersistenceError("failed to resolve link", err)
	}

	return link, nil
}

// Deactivate soft-deletes the active link for code. Its clicks are kept.
func (s *LinkStore) Deactivate(ctx context.Context, code string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE links SET is_active = false WHERE short_code = $1 AND is_active = true`, code)
	if err != nil {
		return domain.PersistenceError("failed to deactivate link", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.PersistenceError("failed to deactivate link", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ListActive returns every active link with its click counters, newest first.
func (s *LinkStore) ListActive(ctx context.Context) ([]domain.LinkSummary, error) {
	links := []domain.LinkSummary{}
	query := summarySelect + `
		WHERE l.is_active = true
		GROUP BY l.id
		ORDER BY l.created_at DESC
	`

	if err := s.db.SelectContext(ctx, &links, query); err != nil {
		return nil, domain.PersistenceError("failed to list links", err)
	}

	return links, nil
}

// ListCampaign returns the active links of a campaign, most clicked first.
func (s *LinkStore) ListCampaign(ctx context.Context, campaign string) ([]domain.LinkSummary, error) {
	links := []domain.LinkSummary{}
	query := summarySelect + `
		WHERE l.is_active = true AND l.campaign_name = $1
		GROUP BY l.id
		ORDER BY total_clicks DESC, l.created_at DESC
	`

	if err := s.db.SelectContext(ctx, &links, query, campaign); err != nil {
		return nil, domain.PersistenceError("failed to list campaign links", err)
	}

	return links, nil
}
