package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/links"
)

// LinkService creates and deactivates links.
type LinkService interface {
	Create(ctx context.Context, req links.CreateRequest, createdBy string) (*links.Created, error)
	BulkCreate(ctx context.Context, items []links.BulkItem) (*links.BulkResult, error)
	Deactivate(ctx context.Context, code string) error
}

// LinkHandler serves the link write endpoints.
type LinkHandler struct {
	service LinkService
}

// NewLinkHandler creates a LinkHandler.
func NewLinkHandler(service LinkService) *LinkHandler {
	return &LinkHandler{service: service}
}

type bulkRequest struct {
	Items []links.BulkItem `json:"items"`
}

// Shorten handles POST /api/shorten.
func (h *LinkHandler) Shorten(c *gin.Context) {
	var req links.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.service.Create(c.Request.Context(), req, domain.CreatedByAPI)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, created)
}

// BulkGenerate handles POST /api/bulk-generate. Per-link failures are
// reported in the body; only a malformed request is a 400.
func (h *LinkHandler) BulkGenerate(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.service.BulkCreate(c.Request.Context(), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Deactivate handles DELETE /api/links/:short_code.
func (h *LinkHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("short_code")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
