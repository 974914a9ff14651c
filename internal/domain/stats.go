package domain

import "github.com/google/uuid"

// ClickTotals are the headline counters for a link or campaign.
type ClickTotals struct {
	TotalClicks  int64 `db:"total_clicks"  json:"total_clicks"`
	UniqueClicks int64 `db:"unique_clicks" json:"unique_clicks"`
	QRClicks     int64 `db:"qr_clicks"     json:"qr_clicks"`
}

// DailyCount is one day of a time series. Date is YYYY-MM-DD.
type DailyCount struct {
	Date     string `db:"day"       json:"date"`
	Clicks   int64  `db:"clicks"    json:"clicks"`
	QRClicks int64  `db:"qr_clicks" json:"qr_clicks"`
}

// BucketCount is one row of a breakdown.
type BucketCount struct {
	Key   string `db:"bucket" json:"key"`
	Count int64  `db:"count"  json:"count"`
}

// BreakdownField names a dimension clicks can be grouped by.
type BreakdownField string

// Breakdown dimensions.
const (
	BreakdownDevice  BreakdownField = "device"
	BreakdownSource  BreakdownField = "source"
	BreakdownCountry BreakdownField = "country"
	BreakdownHour    BreakdownField = "hour"
	BreakdownWeekday BreakdownField = "weekday"
)

// Scope selects the clicks an aggregate covers: one link, or every link in
// a campaign. Exactly one of LinkID and Campaign is set.
type Scope struct {
	LinkID   *uuid.UUID
	Campaign string
}

// LinkScope scopes to a single link.
func LinkScope(id uuid.UUID) Scope {
	return Scope{LinkID: &id}
}

// CampaignScope scopes to a campaign.
func CampaignScope(name string) Scope {
	return Scope{Campaign: name}
}
