// Package links creates short links, one at a time or in bulk.
package links

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	infralogger "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/metrics"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/shortcode"
)

// maxCreateAttempts bounds generate-and-insert retries when a concurrent
// creator takes the same generated code first.
const maxCreateAttempts = 5

// QRSourceQuery is appended to a short URL for the QR variant.
const QRSourceQuery = "?source=qr"

// Store is the link persistence the service writes through.
type Store interface {
	Create(ctx context.Context, link *domain.Link) error
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Deactivator soft-deletes links.
type Deactivator interface {
	Deactivate(ctx context.Context, code string) error
}

// Config holds the service settings.
type Config struct {
	// BaseURL prefixes every short URL, e.g. "https://go.example.com".
	BaseURL string
	// MaxItems caps the items in one bulk request.
	MaxItems int
	// MaxQuantity caps the links generated from one bulk item.
	MaxQuantity int
	// InsertsPerSecond paces bulk inserts. Zero disables pacing.
	InsertsPerSecond float64
}

// Service creates and deactivates links.
type Service struct {
	store       Store
	deactivator Deactivator
	generator   *shortcode.Generator
	baseURL     string
	maxItems    int
	maxQuantity int
	limiter     *rate.Limiter
	metrics     *metrics.Metrics
	log         infralogger.Logger
}

// NewService creates a Service.
func NewService(
	store Store,
	deactivator Deactivator,
	generator *shortcode.Generator,
	cfg Config,
	m *metrics.Metrics,
	log infralogger.Logger,
) *Service {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.InsertsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.InsertsPerSecond), max(1, int(cfg.InsertsPerSecond)))
	}

	return &Service{
		store:       store,
		deactivator: deactivator,
		generator:   generator,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxItems:    cfg.MaxItems,
		maxQuantity: cfg.MaxQuantity,
		limiter:     limiter,
		metrics:     m,
		log:         log,
	}
}

// CreateRequest is the input for one link. Empty optional strings are
// treated as absent.
type CreateRequest struct {
	OriginalURL  string  `json:"original_url"`
	CustomSlug   *string `json:"custom_slug"`
	CustomName   *string `json:"custom_name"`
	CampaignName *string `json:"campaign_name"`
}

// Created describes a newly created link.
type Created struct {
	ShortCode    string    `json:"short_code"`
	OriginalURL  string    `json:"original_url"`
	ShortURL     string    `json:"short_url"`
	QRURL        string    `json:"qr_url"`
	CustomName   *string   `json:"custom_name"`
	CampaignName *string   `json:"campaign_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Create validates req and stores a new link. A taken custom slug fails
// with domain.ErrDuplicateSlug and nothing is written.
func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy string) (*Created, error) {
	req = req.normalized()

	if err := ValidateURL(req.OriginalURL); err != nil {
		return nil, err
	}

	link := &domain.Link{
		OriginalURL:  req.OriginalURL,
		CustomName:   req.CustomName,
		CampaignName: req.CampaignName,
		CreatedBy:    createdBy,
	}

	var err error
	if req.CustomSlug != nil {
		err = s.createWithSlug(ctx, link, *req.CustomSlug)
	} else {
		err = s.createGenerated(ctx, link)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.LinkCreated(createdBy)
	s.log.Info("Link created",
		infralogger.String("short_code", link.ShortCode),
		infralogger.String("created_by", createdBy),
	)

	return s.created(link), nil
}

func (s *Service) createWithSlug(ctx context.Context, link *domain.Link, slug string) error {
	if !shortcode.Valid(slug) {
		return &domain.ValidationError{
			Field:   "custom_slug",
			Message: fmt.Sprintf("must be 1-%d letters, digits, '_' or '-'", shortcode.MaxSlugLength),
		}
	}
	if shortcode.IsReserved(slug) {
		return &domain.ValidationError{Field: "custom_slug", Message: "is reserved"}
	}

	exists, err := s.store.CodeExists(ctx, slug)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateSlug
	}

	link.ShortCode = slug
	return s.store.Create(ctx, link)
}

// createGenerated draws a code and inserts it. The unique constraint is the
// final arbiter, so losing an insert race means drawing again.
func (s *Service) createGenerated(ctx context.Context, link *domain.Link) error {
	for attempt := 1; ; attempt++ {
		code, err := s.generator.Generate(ctx)
		if err != nil {
			return err
		}

		link.ShortCode = code
		err = s.store.Create(ctx, link)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateSlug) {
			return err
		}
		if attempt == maxCreateAttempts {
			return domain.PersistenceError("failed to allocate short code", err)
		}

		s.log.Debug("Generated short code taken concurrently, retrying",
			infralogger.String("short_code", code),
			infralogger.Int("attempt", attempt),
		)
	}
}

// Deactivate soft-deletes the link for code.
func (s *Service) Deactivate(ctx context.Context, code string) error {
	if err := s.deactivator.Deactivate(ctx, code); err != nil {
		return err
	}
	s.log.Info("Link deactivated", infralogger.String("short_code", code))
	return nil
}

// ShortURL returns the public URL for code.
func (s *Service) ShortURL(code string) string {
	return s.baseURL + "/" + code
}

// QRURL returns the URL printed into QR codes for code.
func (s *Service) QRURL(code string) string {
	return s.ShortURL(code) + QRSourceQuery
}

func (s *Service) created(link *domain.Link) *Created {
	return &Created{
		ShortCode:    link.ShortCode,
		OriginalURL:  link.OriginalURL,
		ShortURL:     s.ShortURL(link.ShortCode),
		QRURL:        s.QRURL(link.ShortCode),
		CustomName:   link.CustomName,
		CampaignName: link.CampaignName,
		CreatedAt:    link.CreatedAt,
	}
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	if raw == "" {
		return &domain.ValidationError{Field: "original_url", Message: "is required"}
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return &domain.ValidationError{Field: "original_url", Message: "must start with http:// or https://"}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return &domain.ValidationError{Field: "original_url", Message: "is not a valid URL"}
	}
	return nil
}

func (r CreateRequest) normalized() CreateRequest {
	r.OriginalURL = strings.TrimSpace(r.OriginalURL)
	r.CustomSlug = trimmedOrNil(r.CustomSlug)
	r.CustomName = trimmedOrNil(r.CustomName)
	r.CampaignName = trimmedOrNil(r.CampaignName)
	return r
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
