package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	infralogger "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

const linkCachePrefix = "link:"

// deactivatedMarker is cached for a deactivated code. A fill never
// overwrites it, so a resolve racing a deactivation cannot revive the link.
const deactivatedMarker = "deactivated"

type linkSource interface {
	Resolve(ctx context.Context, code string) (*domain.Link, error)
	Deactivate(ctx context.Context, code string) error
}

// CachedLinks is a read-through Redis cache in front of the link store.
// Only active links are cached, and Redis failures fall through to the store.
// Deactivation leaves a marker for one TTL instead of deleting the entry.
type CachedLinks struct {
	next   linkSource
	client *redis.Client
	ttl    time.Duration
	log    infralogger.Logger
}

// NewCachedLinks wraps next with a cache whose entries live for ttl.
func NewCachedLinks(next linkSource, client *redis.Client, ttl time.Duration, log infralogger.Logger) *CachedLinks {
	return &CachedLinks{next: next, client: client, ttl: ttl, log: log}
}

// Resolve returns the active link for code.
func (c *CachedLinks) Resolve(ctx context.Context, code string) (*domain.Link, error) {
	key := linkCachePrefix + code

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(raw) == deactivatedMarker {
			return nil, domain.ErrNotFound
		}
		var link domain.Link
		if jsonErr := json.Unmarshal(raw, &link); jsonErr == nil {
			return &link, nil
		}
		c.log.Warn("Discarding unreadable cached link", infralogger.String("short_code", code))
		c.evictUnreadable(ctx, code, raw)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Link cache read failed", infralogger.String("short_code", code), infralogger.Error(err))
	}

	link, err := c.next.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(link); jsonErr == nil {
		if setErr := c.client.SetNX(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.log.Warn("Link cache write failed", infralogger.String("short_code", code), infralogger.Error(setErr))
		}
	}

	return link, nil
}

// Deactivate deactivates the link and marks it deactivated in the cache.
func (c *CachedLinks) Deactivate(ctx context.Context, code string) error {
	if err := c.next.Deactivate(ctx, code); err != nil {
		return err
	}

	if err := c.client.Set(ctx, linkCachePrefix+code, deactivatedMarker, c.ttl).Err(); err != nil {
		c.log.Warn("Link cache evict failed", infralogger.String("short_code", code), infralogger.Error(err))
	}
	return nil
}

// evictUnreadable deletes the entry for code only while it still holds raw,
// so a marker written in between survives.
func (c *CachedLinks) evictUnreadable(ctx context.Context, code string, raw []byte) {
	key := linkCachePrefix + code
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil || string(current) != string(raw) {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)
	if err != nil && !errors.Is(err, redis.Nil) && !errors.Is(err, redis.TxFailedErr) {
		c.log.Warn("Link cache evict failed", infralogger.String("short_code", code), infralogger.Error(err))
	}
}
