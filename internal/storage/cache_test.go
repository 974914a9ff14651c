package storage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/storage"
)

type fakeLinkSource struct {
	links       map[string]*domain.Link
	resolves    int
	deactivated []string
}

func (f *fakeLinkSource) Resolve(_ context.Context, code string) (*domain.Link, error) {
	f.resolves++
	link, ok := f.links[code]
	if !ok || !link.IsActive {
		return nil, domain.ErrNotFound
	}
	copied := *link
	return &copied, nil
}

func (f *fakeLinkSource) Deactivate(_ context.Context, code string) error {
	link, ok := f.links[code]
	if !ok || !link.IsActive {
		return domain.ErrNotFound
	}
	link.IsActive = false
	f.deactivated = append(f.deactivated, code)
	return nil
}

func newCacheFixture(t *testing.T) (*storage.CachedLinks, *fakeLinkSource, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	source := &fakeLinkSource{links: map[string]*domain.Link{
		"abc123": {
			ID:          uuid.New(),
			ShortCode:   "abc123",
			OriginalURL: "https://example.com/landing",
			CreatedAt:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			IsActive:    true,
			CreatedBy:   domain.CreatedByAPI,
		},
	}}

	return storage.NewCachedLinks(source, client, time.Minute, infralogger.NewNop()), source, mr
}

func TestCachedLinks_ReadThrough(t *testing.T) {
	cache, source, mr := newCacheFixture(t)
	ctx := context.Background()

	first, err := cache.Resolve(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, mr.Exists("link:abc123"))
	assert.Equal(t, time.Minute, mr.TTL("link:abc123"))

	second, err := cache.Resolve(ctx, "abc123")
	require.NoError(t, err)

	assert.Equal(t, 1, source.resolves, "second resolve should be served from redis")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OriginalURL, second.OriginalURL)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
}

func TestCachedLinks_MissesAreNotCached(t *testing.T) {
	cache, source, mr := newCacheFixture(t)
	ctx := context.Background()

	for range 2 {
		_, err := cache.Resolve(ctx, "nope00")
		require.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, 2, source.resolves)
	assert.False(t, mr.Exists("link:nope00"))
}

func TestCachedLinks_DeactivateReplacesEntry(t *testing.T) {
	cache, source, mr := newCacheFixture(t)
	ctx := context.Background()

	_, err := cache.Resolve(ctx, "abc123")
	require.NoError(t, err)

	require.NoError(t, cache.Deactivate(ctx, "abc123"))
	cached, err := mr.Get("link:abc123")
	require.NoError(t, err)
	assert.NotContains(t, cached, "https://example.com/landing")
	assert.Equal(t, time.Minute, mr.TTL("link:abc123"))

	_, err = cache.Resolve(ctx, "abc123")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, source.resolves, "deactivated code should be answered from redis")
}

// gatedLinkSource pauses Resolve after reading the row, so a deactivation can
// land between the read and the cache fill.
type gatedLinkSource struct {
	mu      sync.Mutex
	link    domain.Link
	read    chan struct{}
	release chan struct{}
	gated   bool
}

func (g *gatedLinkSource) Resolve(_ context.Context, _ string) (*domain.Link, error) {
	g.mu.Lock()
	snapshot := g.link
	gated := g.gated
	g.gated = false
	g.mu.Unlock()

	if gated {
		close(g.read)
		<-g.release
	}
	if !snapshot.IsActive {
		return nil, domain.ErrNotFound
	}
	return &snapshot, nil
}

func (g *gatedLinkSource) Deactivate(_ context.Context, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.link.IsActive = false
	return nil
}

func TestCachedLinks_ResolveRacingDeactivateCannotRevive(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	source := &gatedLinkSource{
		link:    domain.Link{ID: uuid.New(), ShortCode: "race01", OriginalURL: "https://example.com", IsActive: true},
		read:    make(chan struct{}),
		release: make(chan struct{}),
		gated:   true,
	}
	cache := storage.NewCachedLinks(source, client, time.Minute, infralogger.NewNop())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := cache.Resolve(ctx, "race01")
		done <- err
	}()

	<-source.read
	require.NoError(t, cache.Deactivate(ctx, "race01"))
	close(source.release)
	require.NoError(t, <-done, "the in-flight resolve read the link while it was active")

	_, err := cache.Resolve(ctx, "race01")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCachedLinks_RedisDownFallsThrough(t *testing.T) {
	cache, source, mr := newCacheFixture(t)
	mr.Close()

	link, err := cache.Resolve(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/landing", link.OriginalURL)
	assert.Equal(t, 1, source.resolves)
}

func TestCachedLinks_CorruptEntryIsReplaced(t *testing.T) {
	cache, source, mr := newCacheFixture(t)
	require.NoError(t, mr.Set("link:abc123", "{not json"))

	link, err := cache.Resolve(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", link.ShortCode)
	assert.Equal(t, 1, source.resolves)

	cached, err := mr.Get("link:abc123")
	require.NoError(t, err)
	assert.Contains(t, cached, "https://example.com/landing")
}
