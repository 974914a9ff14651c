// Package analytics assembles per-link and per-campaign reports from the
// click ledger aggregates.
package analytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

// DefaultWindow is the span of the daily series.
const DefaultWindow = 30 * 24 * time.Hour

const (
	hoursPerDay = 24
	daysPerWeek = 7
)

// Links is the link lookup the reporter needs.
type Links interface {
	Resolve(ctx context.Context, code string) (*domain.Link, error)
	ListCampaign(ctx context.Context, campaign string) ([]domain.LinkSummary, error)
}

// Aggregates is the read side of the click ledger.
type Aggregates interface {
	Totals(ctx context.Context, scope domain.Scope) (domain.ClickTotals, error)
	DailyCounts(ctx context.Context, scope domain.Scope, since time.Time) ([]domain.DailyCount, error)
	Breakdown(ctx context.Context, field domain.BreakdownField, scope domain.Scope) ([]domain.BucketCount, error)
}

// URLBuilder renders the public URLs of a short code.
type URLBuilder interface {
	ShortURL(code string) string
	QRURL(code string) string
}

// Reporter builds reports. It never writes.
type Reporter struct {
	links  Links
	agg    Aggregates
	urls   URLBuilder
	window time.Duration
	now    func() time.Time
}

// NewReporter creates a Reporter whose daily series cover DefaultWindow.
func NewReporter(links Links, agg Aggregates, urls URLBuilder) *Reporter {
	return &Reporter{
		links:  links,
		agg:    agg,
		urls:   urls,
		window: DefaultWindow,
		now:    time.Now,
	}
}

// LinkReport is the full breakdown for one link.
type LinkReport struct {
	ShortCode    string    `json:"short_code"`
	OriginalURL  string    `json:"original_url"`
	ShortURL     string    `json:"short_url"`
	QRURL        string    `json:"qr_url"`
	CustomName   *string   `json:"custom_name"`
	CampaignName *string   `json:"campaign_name"`
	CreatedAt    time.Time `json:"created_at"`

	domain.ClickTotals
	// QRRate is the percentage of clicks that came from QR scans.
	QRRate float64 `json:"qr_rate"`

	Daily     []domain.DailyCount  `json:"daily"`
	Devices   []domain.BucketCount `json:"devices"`
	Sources   []domain.BucketCount `json:"sources"`
	Countries []domain.BucketCount `json:"countries"`
	// Hourly is indexed by hour of day, Weekly by weekday with Monday = 0.
	Hourly [hoursPerDay]int64 `json:"hourly"`
	Weekly [daysPerWeek]int64 `json:"weekly"`
}

// LinkReport reports on the active link for code.
func (r *Reporter) LinkReport(ctx context.Context, code string) (*LinkReport, error) {
	link, err := r.links.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	scope := domain.LinkScope(link.ID)
	report := &LinkReport{
		ShortCode:    link.ShortCode,
		OriginalURL:  link.OriginalURL,
		ShortURL:     r.urls.ShortURL(link.ShortCode),
		QRURL:        r.urls.QRURL(link.ShortCode),
		CustomName:   link.CustomName,
		CampaignName: link.CampaignName,
		CreatedAt:    link.CreatedAt,
	}

	if report.ClickTotals, err = r.agg.Totals(ctx, scope); err != nil {
		return nil, err
	}
	report.QRRate = percent(report.QRClicks, report.TotalClicks)

	if report.Daily, err = r.agg.DailyCounts(ctx, scope, r.since()); err != nil {
		return nil, err
	}
	if report.Devices, err = r.agg.Breakdown(ctx, domain.BreakdownDevice, scope); err != nil {
		return nil, err
	}
	if report.Sources, err = r.agg.Breakdown(ctx, domain.BreakdownSource, scope); err != nil {
		return nil, err
	}
	if report.Countries, err = r.agg.Breakdown(ctx, domain.BreakdownCountry, scope); err != nil {
		return nil, err
	}

	hours, err := r.agg.Breakdown(ctx, domain.BreakdownHour, scope)
	if err != nil {
		return nil, err
	}
	fillDense(report.Hourly[:], hours)

	weekdays, err := r.agg.Breakdown(ctx, domain.BreakdownWeekday, scope)
	if err != nil {
		return nil, err
	}
	fillDense(report.Weekly[:], weekdays)

	return report, nil
}

// CampaignSummary holds the campaign headline numbers.
type CampaignSummary struct {
	TotalURLs      int    `json:"total_urls"`
	TotalClicks    int64  `json:"total_clicks"`
	UniqueVisitors int64  `json:"unique_visitors"`
	QRClicks       int64  `json:"qr_clicks"`
	ConversionRate string `json:"conversion_rate"`
}

// CampaignLink is one link row of a campaign report.
type CampaignLink struct {
	ShortCode      string  `json:"short_code"`
	OriginalURL    string  `json:"original_url"`
	CustomName     *string `json:"custom_name"`
	ShortURL       string  `json:"short_url"`
	Clicks         int64   `json:"clicks"`
	UniqueVisitors int64   `json:"unique_visitors"`
	QRClicks       int64   `json:"qr_clicks"`
}

// CampaignReport rolls up every active link in a campaign.
type CampaignReport struct {
	CampaignName     string               `json:"campaign_name"`
	Summary          CampaignSummary      `json:"summary"`
	URLs             []CampaignLink       `json:"urls"`
	DailyPerformance []domain.DailyCount  `json:"daily_performance"`
	DeviceBreakdown  []domain.BucketCount `json:"device_breakdown"`
}

// CampaignReport reports on a campaign. A campaign with no active links
// yields domain.ErrNotFound.
func (r *Reporter) CampaignReport(ctx context.Context, name string) (*CampaignReport, error) {
	rows, err := r.links.ListCampaign(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}

	scope := domain.CampaignScope(name)
	totals, err := r.agg.Totals(ctx, scope)
	if err != nil {
		return nil, err
	}

	report := &CampaignReport{
		CampaignName: name,
		Summary: CampaignSummary{
			TotalURLs:      len(rows),
			TotalClicks:    totals.TotalClicks,
			UniqueVisitors: totals.UniqueClicks,
			QRClicks:       totals.QRClicks,
			ConversionRate: fmt.Sprintf("%.1f%%", percent(totals.QRClicks, totals.TotalClicks)),
		},
		URLs: make([]CampaignLink, 0, len(rows)),
	}

	for i := range rows {
		report.URLs = append(report.URLs, CampaignLink{
			ShortCode:      rows[i].ShortCode,
			OriginalURL:    rows[i].OriginalURL,
			CustomName:     rows[i].CustomName,
			ShortURL:       r.urls.ShortURL(rows[i].ShortCode),
			Clicks:         rows[i].TotalClicks,
			UniqueVisitors: rows[i].UniqueClicks,
			QRClicks:       rows[i].QRClicks,
		})
	}

	if report.DailyPerformance, err = r.agg.DailyCounts(ctx, scope, r.since()); err != nil {
		return nil, err
	}
	if report.DeviceBreakdown, err = r.agg.Breakdown(ctx, domain.BreakdownDevice, scope); err != nil {
		return nil, err
	}

	return report, nil
}

func (r *Reporter) since() time.Time {
	return r.now().Add(-r.window)
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// fillDense spreads numeric buckets into dst by index. Keys outside dst are dropped.
func fillDense(dst []int64, buckets []domain.BucketCount) {
	for _, b := range buckets {
		idx, err := strconv.Atoi(b.Key)
		if err != nil || idx < 0 || idx >= len(dst) {
			continue
		}
		dst[idx] = b.Count
	}
}
