// Package handler adapts HTTP requests to the link, redirect and
// analytics services.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

const (
	msgNotFound      = "not found"
	msgInternalError = "internal server error"
)

// respondError writes the JSON error body for err. Server-side failures are
// logged with the request logger and reported without detail.
func respondError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, domain.ErrDuplicateSlug):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	default:
		infralogger.FromContext(c.Request.Context()).Error("Request failed",
			infralogger.String("path", c.FullPath()),
			infralogger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
	}
}
