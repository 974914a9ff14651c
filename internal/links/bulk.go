package links

import (
	"context"
	"errors"
	"fmt"
	"time"

	infralogger "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

// BulkItem asks for Quantity links to the same destination. When Quantity
// is above one, the custom slug and name get _1.._n suffixes.
type BulkItem struct {
	CreateRequest
	Quantity int `json:"quantity"`
}

// GeneratedURL is one link produced by a bulk item.
type GeneratedURL struct {
	ShortCode string    `json:"short_code"`
	ShortURL  string    `json:"short_url"`
	QRURL     string    `json:"qr_url"`
	CreatedAt time.Time `json:"created_at"`
}

// BulkItemResult groups the links produced by one item.
type BulkItemResult struct {
	OriginalURL   string         `json:"original_url"`
	CustomSlug    *string        `json:"custom_slug"`
	CustomName    *string        `json:"custom_name"`
	CampaignName  *string        `json:"campaign_name"`
	GeneratedURLs []GeneratedURL `json:"generated_urls"`
}

// BulkError reports one link that could not be created.
type BulkError struct {
	OriginalURL string `json:"original_url"`
	Error       string `json:"error"`
}

// BulkResult is the outcome of a bulk request. Counts are per link.
type BulkResult struct {
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	Results      []BulkItemResult `json:"results"`
	Errors       []BulkError      `json:"errors"`
}

// BulkCreate creates the links for every item. Each link succeeds or fails
// on its own; only an empty or oversized request fails as a whole.
func (s *Service) BulkCreate(ctx context.Context, items []BulkItem) (*BulkResult, error) {
	if len(items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Message: "must not be empty"}
	}
	if s.maxItems > 0 && len(items) > s.maxItems {
		return nil, &domain.ValidationError{
			Field:   "items",
			Message: fmt.Sprintf("must contain at most %d entries", s.maxItems),
		}
	}

	result := &BulkResult{
		Results: []BulkItemResult{},
		Errors:  []BulkError{},
	}

	for i := range items {
		s.bulkItem(ctx, items[i], result)
	}

	s.log.Info("Bulk generation finished",
		infralogger.Int("items", len(items)),
		infralogger.Int("success_count", result.SuccessCount),
		infralogger.Int("error_count", result.ErrorCount),
	)

	return result, nil
}

func (s *Service) bulkItem(ctx context.Context, item BulkItem, result *BulkResult) {
	quantity := item.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 || (s.maxQuantity > 0 && quantity > s.maxQuantity) {
		result.fail(item.OriginalURL, fmt.Sprintf("quantity must be between 1 and %d", s.maxQuantity))
		return
	}

	req := item.normalized()
	itemResult := BulkItemResult{
		OriginalURL:   req.OriginalURL,
		CustomSlug:    req.CustomSlug,
		CustomName:    req.CustomName,
		CampaignName:  req.CampaignName,
		GeneratedURLs: []GeneratedURL{},
	}

	for n := 1; n <= quantity; n++ {
		if err := s.limiter.Wait(ctx); err != nil {
			result.fail(req.OriginalURL, "request cancelled")
			continue
		}

		linkReq := expand(req, n, quantity)
		created, err := s.Create(ctx, linkReq, domain.CreatedByBulkAPI)
		if err != nil {
			result.fail(req.OriginalURL, s.bulkErrorMessage(linkReq, err))
			continue
		}

		itemResult.GeneratedURLs = append(itemResult.GeneratedURLs, GeneratedURL{
			ShortCode: created.ShortCode,
			ShortURL:  created.ShortURL,
			QRURL:     created.QRURL,
			CreatedAt: created.CreatedAt,
		})
		result.SuccessCount++
	}

	if len(itemResult.GeneratedURLs) > 0 {
		result.Results = append(result.Results, itemResult)
	}
}

func (r *BulkResult) fail(originalURL, message string) {
	r.Errors = append(r.Errors, BulkError{OriginalURL: originalURL, Error: message})
	r.ErrorCount++
}

// expand returns the n-th of quantity requests for an item.
func expand(req CreateRequest, n, quantity int) CreateRequest {
	if quantity <= 1 {
		return req
	}
	req.CustomSlug = suffixed(req.CustomSlug, n)
	req.CustomName = suffixed(req.CustomName, n)
	return req
}

func suffixed(s *string, n int) *string {
	if s == nil {
		return nil
	}
	v := fmt.Sprintf("%s_%d", *s, n)
	return &v
}

// bulkErrorMessage is the client-facing text for a failed link. Datastore
// detail stays in the logs.
func (s *Service) bulkErrorMessage(req CreateRequest, err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, domain.ErrDuplicateSlug) && req.CustomSlug != nil:
		return fmt.Sprintf("custom slug '%s' already exists", *req.CustomSlug)
	default:
		s.log.Error("Bulk link creation failed",
			infralogger.String("original_url", req.OriginalURL),
			infralogger.Error(err),
		)
		return "failed to create link"
	}
}
