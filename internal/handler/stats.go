package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/analytics"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

// LinkLister lists active links with their counters.
type LinkLister interface {
	ListActive(ctx context.Context) ([]domain.LinkSummary, error)
}

// Reporter builds the analytics reports.
type Reporter interface {
	LinkReport(ctx context.Context, code string) (*analytics.LinkReport, error)
	CampaignReport(ctx context.Context, name string) (*analytics.CampaignReport, error)
}

// URLBuilder renders public URLs for a short code.
type URLBuilder interface {
	ShortURL(code string) string
	QRURL(code string) string
}

// StatsHandler serves the read-only analytics endpoints.
type StatsHandler struct {
	links    LinkLister
	reporter Reporter
	urls     URLBuilder
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(links LinkLister, reporter Reporter, urls URLBuilder) *StatsHandler {
	return &StatsHandler{links: links, reporter: reporter, urls: urls}
}

type linkListItem struct {
	domain.LinkSummary
	ShortURL    string `json:"short_url"`
	QRURL       string `json:"qr_url"`
	OtherClicks int64  `json:"other_clicks"`
	StatsURL    string `json:"stats_url"`
}

// ListLinks handles GET /api/links.
func (h *StatsHandler) ListLinks(c *gin.Context) {
	rows, err := h.links.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]linkListItem, 0, len(rows))
	for i := range rows {
		code := rows[i].ShortCode
		items = append(items, linkListItem{
			LinkSummary: rows[i],
			ShortURL:    h.urls.ShortURL(code),
			QRURL:       h.urls.QRURL(code),
			OtherClicks: rows[i].TotalClicks - rows[i].QRClicks,
			StatsURL:    "/api/stats/" + code,
		})
	}

	c.JSON(http.StatusOK, gin.H{"urls": items, "count": len(items)})
}

// LinkStats handles GET /api/stats/:short_code.
func (h *StatsHandler) LinkStats(c *gin.Context) {
	report, err := h.reporter.LinkReport(c.Request.Context(), c.Param("short_code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// CampaignStats handles GET /api/analytics/campaign/:campaign_name.
func (h *StatsHandler) CampaignStats(c *gin.Context) {
	report, err := h.reporter.CampaignReport(c.Request.Context(), c.Param("campaign_name"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
