package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/handler"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes.
type Handlers struct {
	Redirect *handler.RedirectHandler
	Links    *handler.LinkHandler
	Stats    *handler.StatsHandler
	Clicks   *handler.ClickHandler
}

// RateLimit configures the per-IP limiter on the write endpoints.
type RateLimit struct {
	MaxRequests int
	Window      time.Duration
	// Done stops the limiter's sweeper.
	Done <-chan struct{}
}

// SetupRoutes configures all service routes.
// Health and metrics routes are registered by the server builder.
func SetupRoutes(router *gin.Engine, h Handlers, limit RateLimit) {
	v1 := router.Group("/api")

	write := v1.Group("")
	write.Use(middleware.RateLimiter(limit.MaxRequests, limit.Window, limit.Done))
	write.POST("/shorten", h.Links.Shorten)
	write.POST("/bulk-generate", h.Links.BulkGenerate)
	write.DELETE("/links/:short_code", h.Links.Deactivate)

	v1.GET("/links", h.Stats.ListLinks)
	v1.GET("/stats/:short_code", h.Stats.LinkStats)
	v1.GET("/analytics/campaign/:campaign_name", h.Stats.CampaignStats)
	v1.GET("/clicks/:id", h.Clicks.GetClick)

	// Registered last: the catch-all must not shadow static routes.
	router.GET("/:short_code", middleware.BotFilter(), h.Redirect.HandleRedirect)
}
