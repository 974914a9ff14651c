// Package redirect runs a short-link visit from lookup to redirect,
// recording the click on the way without letting recording failures
// block the redirect.
package redirect

import (
	"context"
	"errors"
	"time"

	infralogger "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/attribution"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/metrics"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/shortcode"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/storage"
)

// LinkResolver looks up active links.
type LinkResolver interface {
	Resolve(ctx context.Context, code string) (*domain.Link, error)
}

// Recorder persists a click. Implementations may buffer.
type Recorder interface {
	Record(ctx context.Context, rec domain.ClickRecord) error
}

// Request is everything the pipeline needs from an incoming visit.
type Request struct {
	ShortCode  string
	SourceHint string
	UserAgent  string
	Referrer   string
	IPAddress  string
	IsBot      bool
}

// Outcome is a successful pipeline run.
type Outcome struct {
	Location string
	Link     *domain.Link
	// Recorded is false when the click was skipped or its persist failed.
	Recorded bool
}

// Options configures a Pipeline.
type Options struct {
	// SkipBots leaves bot visits out of the ledger. They are still redirected.
	SkipBots bool
	// Now overrides the clock. Nil uses time.Now.
	Now func() time.Time
}

// Pipeline executes Lookup, Classify, Persist and Redirect.
type Pipeline struct {
	links      LinkResolver
	attributor *attribution.Attributor
	recorder   Recorder
	metrics    *metrics.Metrics
	log        infralogger.Logger
	now        func() time.Time
	skipBots   bool
}

// NewPipeline creates a Pipeline.
func NewPipeline(
	links LinkResolver,
	attributor *attribution.Attributor,
	recorder Recorder,
	m *metrics.Metrics,
	log infralogger.Logger,
	opts Options,
) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		links:      links,
		attributor: attributor,
		recorder:   recorder,
		metrics:    m,
		log:        log,
		now:        now,
		skipBots:   opts.SkipBots,
	}
}

// Handle runs the pipeline. Reserved and unknown codes return
// domain.ErrNotFound. Once the link resolves, Handle always returns an
// Outcome; a failed persist is logged and swallowed.
func (p *Pipeline) Handle(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()

	if shortcode.IsReserved(req.ShortCode) {
		p.metrics.Redirect(metrics.OutcomeReserved, time.Since(start))
		return nil, domain.ErrNotFound
	}

	link, err := p.links.Resolve(ctx, req.ShortCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.metrics.Redirect(metrics.OutcomeNotFound, time.Since(start))
			return nil, domain.ErrNotFound
		}
		p.metrics.Redirect(metrics.OutcomeError, time.Since(start))
		return nil, err
	}

	outcome := &Outcome{Location: link.OriginalURL, Link: link}

	if req.IsBot && p.skipBots {
		p.metrics.Redirect(metrics.OutcomeRedirected, time.Since(start))
		return outcome, nil
	}

	rec := p.classify(ctx, link, req)
	outcome.Recorded = p.persist(ctx, req.ShortCode, rec)

	p.metrics.Redirect(metrics.OutcomeRedirected, time.Since(start))
	return outcome, nil
}

func (p *Pipeline) classify(ctx context.Context, link *domain.Link, req Request) domain.ClickRecord {
	at := p.now()
	attr := p.attributor.Attribute(ctx, attribution.Signals{
		SourceHint: req.SourceHint,
		Referrer:   req.Referrer,
		UserAgent:  req.UserAgent,
		IPAddress:  req.IPAddress,
	}, at)

	return domain.ClickRecord{
		LinkID:      link.ID,
		IPAddress:   req.IPAddress,
		Country:     attr.Location.Country,
		Region:      attr.Location.Region,
		City:        attr.Location.City,
		Timezone:    attr.Location.Timezone,
		UserAgent:   req.UserAgent,
		Referrer:    req.Referrer,
		DeviceType:  attr.Device.DeviceType,
		Browser:     attr.Device.Browser,
		OS:          attr.Device.OS,
		Source:      attr.Source,
		UTMSource:   attr.UTM.Source,
		UTMMedium:   attr.UTM.Medium,
		UTMCampaign: attr.UTM.Campaign,
		CreatedAt:   at,
		HourOfDay:   attr.HourOfDay,
		DayOfWeek:   attr.DayOfWeek,
	}
}

// persist records the click. It never fails the visit.
func (p *Pipeline) persist(ctx context.Context, code string, rec domain.ClickRecord) bool {
	err := p.recorder.Record(ctx, rec)
	if err == nil {
		return true
	}

	reason := metrics.ReasonPersistence
	switch {
	case errors.Is(err, storage.ErrBufferFull):
		reason = metrics.ReasonBufferFull
	case errors.Is(err, storage.ErrRecorderStopped):
		reason = metrics.ReasonStopped
	}
	p.metrics.ClickRecordFailed(reason, 1)

	p.log.Warn("Click not recorded",
		infralogger.String("short_code", code),
		infralogger.String("link_id", rec.LinkID.String()),
		infralogger.String("reason", reason),
		infralogger.Error(err),
	)
	return false
}
