// Package domain holds the link-tracker entities and the error taxonomy
// shared by storage, services and HTTP handlers.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provenance tags recorded in Link.CreatedBy.
const (
	CreatedByAPI     = "api"
	CreatedByBulkAPI = "bulk_api"
)

// Link maps a short code to its destination.
// ShortCode is unique across all links, active or not.
type Link struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	ShortCode    string    `db:"short_code"    json:"short_code"`
	OriginalURL  string    `db:"original_url"  json:"original_url"`
	CustomName   *string   `db:"custom_name"   json:"custom_name"`
	CampaignName *string   `db:"campaign_name" json:"campaign_name"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	IsActive     bool      `db:"is_active"     json:"is_active"`
	CreatedBy    string    `db:"created_by"    json:"created_by"`
}

// LinkSummary is a link with its click counters.
type LinkSummary struct {
	Link
	TotalClicks  int64 `db:"total_clicks"  json:"click_count"`
	UniqueClicks int64 `db:"unique_clicks" json:"unique_clicks"`
	QRClicks     int64 `db:"qr_clicks"     json:"qr_clicks"`
}
