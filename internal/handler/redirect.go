package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/middleware"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/redirect"
)

// sourceQueryParam carries the QR hint on printed links.
const sourceQueryParam = "source"

// Redirector runs the redirect pipeline.
type Redirector interface {
	Handle(ctx context.Context, req redirect.Request) (*redirect.Outcome, error)
}

// RedirectHandler serves short-link visits.
type RedirectHandler struct {
	pipeline Redirector
}

// NewRedirectHandler creates a RedirectHandler.
func NewRedirectHandler(pipeline Redirector) *RedirectHandler {
	return &RedirectHandler{pipeline: pipeline}
}

// HandleRedirect resolves the short code and answers 302 to its
// destination. Unknown, inactive and reserved codes answer 404.
func (h *RedirectHandler) HandleRedirect(c *gin.Context) {
	outcome, err := h.pipeline.Handle(c.Request.Context(), redirect.Request{
		ShortCode:  c.Param("short_code"),
		SourceHint: c.Query(sourceQueryParam),
		UserAgent:  c.Request.UserAgent(),
		Referrer:   c.Request.Referer(),
		IPAddress:  c.ClientIP(),
		IsBot:      middleware.IsBot(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, outcome.Location)
}
