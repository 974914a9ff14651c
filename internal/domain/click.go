package domain

import (
	"time"

	"github.com/google/uuid"
)

// Source tags.
const (
	SourceQR        = "qr"
	SourceDirect    = "direct"
	SourceTwitter   = "twitter"
	SourceFacebook  = "facebook"
	SourceGoogle    = "google"
	SourceYouTube   = "youtube"
	SourceInstagram = "instagram"
	SourceLinkedIn  = "linkedin"
	SourceTikTok    = "tiktok"
	SourceReferrer  = "referrer"
)

// Device types.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// UnknownGeo fills geo fields when no location is known.
const UnknownGeo = "Unknown"

// ClickRecord is one attributed redirect. Records are append-only.
type ClickRecord struct {
	ID          int64     `db:"id"           json:"id"`
	LinkID      uuid.UUID `db:"link_id"      json:"link_id"`
	IPAddress   string    `db:"ip_address"   json:"ip_address"`
	Country     string    `db:"country"      json:"country"`
	Region      string    `db:"region"       json:"region"`
	City        string    `db:"city"         json:"city"`
	Timezone    string    `db:"timezone"     json:"timezone"`
	UserAgent   string    `db:"user_agent"   json:"user_agent"`
	Referrer    string    `db:"referrer"     json:"referrer"`
	DeviceType  string    `db:"device_type"  json:"device_type"`
	Browser     string    `db:"browser"      json:"browser"`
	OS          string    `db:"os"           json:"os"`
	Source      string    `db:"source"       json:"source"`
	UTMSource   *string   `db:"utm_source"   json:"utm_source"`
	UTMMedium   *string   `db:"utm_medium"   json:"utm_medium"`
	UTMCampaign *string   `db:"utm_campaign" json:"utm_campaign"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	// HourOfDay is 0..23 and DayOfWeek is 0..6 with Monday = 0, both on
	// the server's local clock at CreatedAt.
	HourOfDay int `db:"hour_of_day" json:"hour_of_day"`
	DayOfWeek int `db:"day_of_week" json:"day_of_week"`
}
