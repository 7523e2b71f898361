// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"cityhall/internal/cms"
	"cityhall/internal/models"
)

const (
	entriesKeyPrefix = "cms:entries:"
	entryKeyPrefix   = "cms:entry:"

	// DefaultEntryTTL is the revalidation window for CMS responses.
	DefaultEntryTTL = 60 * time.Second
)

// EntryCache memoizes a cms.Client in Valkey. Cache errors are logged and
// the request falls through to the wrapped client; upstream errors are
// never cached.
type EntryCache struct {
	next   cms.Client
	client *redis.Client
	ttl    time.Duration
}

// NewEntryCache wraps next. A zero ttl uses DefaultEntryTTL.
func NewEntryCache(next cms.Client, client *redis.Client, ttl time.Duration) *EntryCache {
	if ttl == 0 {
		ttl = DefaultEntryTTL
	}
	return &EntryCache{next: next, client: client, ttl: ttl}
}

// GetEntries implements cms.Client.
func (c *EntryCache) GetEntries(ctx context.Context, q cms.Query) ([]models.Entry, error) {
	key := entriesKeyPrefix + q.Key()

	var entries []models.Entry
	if c.get(ctx, key, &entries) {
		return entries, nil
	}

	entries, err := c.next.GetEntries(ctx, q)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, entries)
	return entries, nil
}

// GetEntry implements cms.Client. Missing entries are not cached.
func (c *EntryCache) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	key := entryKeyPrefix + id

	var e models.Entry
	if c.get(ctx, key, &e) {
		return &e, nil
	}

	found, err := c.next.GetEntry(ctx, id)
	if err != nil || found == nil {
		return found, err
	}
	c.set(ctx, key, found)
	return found, nil
}

// Invalidate removes every memoized CMS response. Returns the number of
// keys deleted.
func (c *EntryCache) Invalidate(ctx context.Context) (int, error) {
	var deleted int
	for _, prefix := range []string{entriesKeyPrefix, entryKeyPrefix} {
		var cursor uint64
		for {
			keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 100).Result()
			if err != nil {
				return deleted, err
			}
			if len(keys) > 0 {
				if err := c.client.Del(ctx, keys...).Err(); err != nil {
					return deleted, err
				}
				deleted += len(keys)
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	slog.Info("cms cache invalidated", "deleted", deleted)
	return deleted, nil
}

func (c *EntryCache) get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		slog.Warn("cms cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Warn("cms cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("cms cache hit", "key", key)
	return true
}

func (c *EntryCache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cms cache encode error", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("cms cache set error", "key", key, "error", err)
	}
}
