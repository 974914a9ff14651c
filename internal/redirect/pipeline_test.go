package redirect_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/attribution"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/metrics"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/redirect"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/storage"
)

type fakeLinks struct {
	mu    sync.Mutex
	links map[string]*domain.Link
	calls int
	err   error
}

func (f *fakeLinks) Resolve(_ context.Context, code string) (*domain.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	link, ok := f.links[code]
	if !ok || !link.IsActive {
		return nil, domain.ErrNotFound
	}
	copied := *link
	return &copied, nil
}

func (f *fakeLinks) add(code, target string) *domain.Link {
	link := &domain.Link{ID: uuid.New(), ShortCode: code, OriginalURL: target, IsActive: true, CreatedBy: domain.CreatedByAPI}
	f.links[code] = link
	return link
}

// memLedger is an append-only ledger keyed by click ID.
type memLedger struct {
	mu      sync.Mutex
	records map[int64]domain.ClickRecord
	nextID  int64
}

func newMemLedger() *memLedger {
	return &memLedger{records: map[int64]domain.ClickRecord{}}
}

func (l *memLedger) Record(_ context.Context, rec domain.ClickRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	rec.ID = l.nextID
	l.records[rec.ID] = rec
	return nil
}

func (l *memLedger) all() []domain.ClickRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.ClickRecord, 0, len(l.records))
	for id := int64(1); id <= l.nextID; id++ {
		out = append(out, l.records[id])
	}
	return out
}

type failingRecorder struct{ err error }

func (f failingRecorder) Record(context.Context, domain.ClickRecord) error { return f.err }

var fixedNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.Local)

func newPipeline(t *testing.T, links redirect.LinkResolver, rec redirect.Recorder, m *metrics.Metrics, opts redirect.Options) *redirect.Pipeline {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return redirect.NewPipeline(links, attribution.NewAttributor(nil, 0), rec, m, infralogger.NewNop(), opts)
}

func TestHandle_DirectVisitWithoutHeaders(t *testing.T) {
	links := &fakeLinks{links: map[string]*domain.Link{}}
	link := links.add("aB3dE9", "https://example.com")
	ledger := newMemLedger()
	p := newPipeline(t, links, ledger, nil, redirect.Options{})

	out, err := p.Handle(context.Background(), redirect.Request{ShortCode: "aB3dE9"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", out.Location)
	assert.True(t, out.Recorded)

	records := ledger.all()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, link.ID, rec.LinkID)
	assert.Equal(t, domain.SourceDirect, rec.Source)
	assert.Equal(t, domain.DeviceUnknown, rec.DeviceType)
	assert.Equal(t, domain.DeviceUnknown, rec.Browser)
	assert.Equal(t, domain.UnknownGeo, rec.Country)
	assert.Nil(t, rec.UTMSource)
	assert.Equal(t, fixedNow, rec.CreatedAt)
	assert.Equal(t, 9, rec.HourOfDay)
	assert.Equal(t, 2, rec.DayOfWeek)
}

func TestHandle_SourceClassification(t *testing.T) {
	tests := []struct {
		name     string
		hint     string
		referrer string
		want     string
	}{
		{name: "t.co referrer", referrer: "https://t.co/abc", want: domain.SourceTwitter},
		{name: "qr hint wins over facebook", hint: "qr", referrer: "https://facebook.com/x", want: domain.SourceQR},
		{name: "mixed case embedded t.co", referrer: "HTTPS://REDIRECT.EXAMPLE/?u=T.CO/x", want: domain.SourceTwitter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := &fakeLinks{links: map[string]*domain.Link{}}
			links.add("code01", "https://example.com/landing")
			ledger := newMemLedger()
			p := newPipeline(t, links, ledger, nil, redirect.Options{})

			_, err := p.Handle(context.Background(), redirect.Request{
				ShortCode:  "code01",
				SourceHint: tt.hint,
				Referrer:   tt.referrer,
			})
			require.NoError(t, err)

			records := ledger.all()
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].Source)
			assert.Equal(t, tt.referrer, records[0].Referrer)
		})
	}
}

func TestHandle_PersistFailureStillRedirects(t *testing.T) {
	failures := []error{
		domain.PersistenceError("failed to append click", errors.New("connection refused")),
		storage.ErrBufferFull,
		storage.ErrRecorderStopped,
	}

	for _, failure := range failures {
		t.Run(failure.Error(), func(t *testing.T) {
			links := &fakeLinks{links: map[string]*domain.Link{}}
			links.add("code01", "https://example.com/target")
			reg := prometheus.NewRegistry()
			m := metrics.New(reg)
			p := newPipeline(t, links, failingRecorder{err: failure}, m, redirect.Options{})

			out, err := p.Handle(context.Background(), redirect.Request{ShortCode: "code01", UserAgent: "Mozilla/5.0"})
			require.NoError(t, err)
			assert.Equal(t, "https://example.com/target", out.Location)
			assert.False(t, out.Recorded)
			assert.Equal(t, float64(1), testutil.ToFloat64(m.RedirectsTotal.WithLabelValues(metrics.OutcomeRedirected)))
		})
	}
}

func TestHandle_FullBufferStillRedirects(t *testing.T) {
	links := &fakeLinks{links: map[string]*domain.Link{}}
	links.add("code01", "https://example.com/target")
	// An unbuffered channel rejects every non-blocking send.
	rec := storage.NewBufferedRecorder(nil, storage.NewBuffer(0), infralogger.NewNop(), time.Hour, 10)
	m := metrics.New(prometheus.NewRegistry())
	p := newPipeline(t, links, rec, m, redirect.Options{})

	out, err := p.Handle(context.Background(), redirect.Request{ShortCode: "code01"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/target", out.Location)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ClickRecordFailures.WithLabelValues(metrics.ReasonBufferFull)))
}

func TestHandle_ReservedNeverResolves(t *testing.T) {
	links := &fakeLinks{links: map[string]*domain.Link{}}
	links.add("admin", "https://example.com/should-not-happen")
	ledger := newMemLedger()
	p := newPipeline(t, links, ledger, nil, redirect.Options{})

	for _, code := range []string{"admin", "api", "docs", "health", "favicon.ico", "bulk", "analytics"} {
		_, err := p.Handle(context.Background(), redirect.Request{ShortCode: code})
		require.ErrorIs(t, err, domain.ErrNotFound, code)
	}

	assert.Zero(t, links.calls, "reserved codes must not reach the link store")
	assert.Empty(t, ledger.all())
}

func TestHandle_UnknownCode(t *testing.T) {
	links := &fakeLinks{links: map[string]*domain.Link{}}
	ledger := newMemLedger()
	p := newPipeline(t, links, ledger, nil, redirect.Options{})

	_, err := p.Handle(context.Background(), redirect.Request{ShortCode: "nope00"})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, ledger.all())
}

func TestHandle_InactiveLinkKeepsHistory(t *testing.T) {
	links := &fakeLinks{links: map[string]*domain.Link{}}
	link := links.add("old001", "https://example.com/old")
	ledger := newMemLedger()
	p := newPipeline(t, links, ledger, nil, redirect.Options{})

	_, err := p.Handle(context.Background(), redirect.Request{ShortCode: "old001", Referrer: "https://www.google.com/"})
	require.NoError(t, err)

	link.IsActive = false

	_, err = p.Handle(context.Background(), redirect.Request{ShortCode: "old001"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	records := ledger.all()
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, domain.SourceGoogle, records[0].Source)
}

func TestHandle_LookupFailure(t *testing.T) {
	boom := domain.PersistenceError("failed to resolve link", errors.New("connection refused"))
	links := &fakeLinks{links: map[string]*domain.Link{}, err: boom}
	p := newPipeline(t, links, newMemLedger(), nil, redirect.Options{})

	_, err := p.Handle(context.Background(), redirect.Request{ShortCode: "code01"})
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestHandle_Bots(t *testing.T) {
	for _, skip := range []bool{false, true} {
		links := &fakeLinks{links: map[string]*domain.Link{}}
		links.add("code01", "https://example.com")
		ledger := newMemLedger()
		p := newPipeline(t, links, ledger, nil, redirect.Options{SkipBots: skip})

		out, err := p.Handle(context.Background(), redirect.Request{ShortCode: "code01", IsBot: true, UserAgent: "Googlebot/2.1"})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", out.Location)

		if skip {
			assert.Empty(t, ledger.all(), "bot click recorded with SkipBots")
			assert.False(t, out.Recorded)
		} else {
			assert.Len(t, ledger.all(), 1)
		}
	}
}
