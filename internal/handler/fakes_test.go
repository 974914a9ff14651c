package handler_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/analytics"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

// memLinks is a links table with a unique short code.
type memLinks struct {
	mu    sync.Mutex
	links map[string]*domain.Link
	err   error
}

func newMemLinks() *memLinks {
	return &memLinks{links: map[string]*domain.Link{}}
}

func (m *memLinks) Create(_ context.Context, link *domain.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, taken := m.links[link.ShortCode]; taken {
		return domain.ErrDuplicateSlug
	}
	link.ID = uuid.New()
	link.IsActive = true
	link.CreatedAt = time.Now()
	copied := *link
	m.links[link.ShortCode] = &copied
	return nil
}

func (m *memLinks) CodeExists(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.links[code]
	return ok, nil
}

func (m *memLinks) Resolve(_ context.Context, code string) (*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	link, ok := m.links[code]
	if !ok || !link.IsActive {
		return nil, domain.ErrNotFound
	}
	copied := *link
	return &copied, nil
}

func (m *memLinks) Deactivate(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[code]
	if !ok || !link.IsActive {
		return domain.ErrNotFound
	}
	link.IsActive = false
	return nil
}

func (m *memLinks) ListActive(_ context.Context) ([]domain.LinkSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.LinkSummary, 0, len(m.links))
	for _, link := range m.links {
		if link.IsActive {
			out = append(out, domain.LinkSummary{Link: *link})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShortCode < out[j].ShortCode })
	return out, nil
}

// memRecorder keeps recorded clicks in order.
type memRecorder struct {
	mu      sync.Mutex
	records []domain.ClickRecord
	err     error
}

func (r *memRecorder) Record(_ context.Context, rec domain.ClickRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	rec.ID = int64(len(r.records) + 1)
	r.records = append(r.records, rec)
	return nil
}

// Get serves the recorded clicks back the way the ledger does.
func (r *memRecorder) Get(_ context.Context, id int64) (*domain.ClickRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if id < 1 || id > int64(len(r.records)) {
		return nil, domain.ErrNotFound
	}
	rec := r.records[id-1]
	return &rec, nil
}

func (r *memRecorder) all() []domain.ClickRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ClickRecord(nil), r.records...)
}

type stubReporter struct {
	link     *analytics.LinkReport
	campaign *analytics.CampaignReport
	err      error
	gotName  string
}

func (s *stubReporter) LinkReport(_ context.Context, _ string) (*analytics.LinkReport, error) {
	return s.link, s.err
}

func (s *stubReporter) CampaignReport(_ context.Context, name string) (*analytics.CampaignReport, error) {
	s.gotName = name
	return s.campaign, s.err
}
