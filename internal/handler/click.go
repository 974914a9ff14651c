package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

// ClickReader reads single records from the click ledger.
type ClickReader interface {
	Get(ctx context.Context, id int64) (*domain.ClickRecord, error)
}

// ClickHandler serves raw click records.
type ClickHandler struct {
	clicks ClickReader
}

// NewClickHandler creates a ClickHandler.
func NewClickHandler(clicks ClickReader) *ClickHandler {
	return &ClickHandler{clicks: clicks}
}

// GetClick handles GET /api/clicks/:id. Records of deactivated links are
// still returned.
func (h *ClickHandler) GetClick(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid click id"})
		return
	}

	rec, err := h.clicks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}
