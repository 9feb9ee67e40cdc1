// Package cache implements the cache-aside coordination layer for read paths.
//
// The coordinator wraps a TTL store (github.com/patrickmn/go-cache) with
// single-flight semantics (golang.org/x/sync/singleflight) so that concurrent
// misses for the same key share one backing fetch instead of stampeding the
// store. Every cached payload carries a content hash used as an ETag for
// conditional reads.
//
// The cache is never a source of truth: failed fetches are not cached and
// invalidation simply drops entries, leaving the backing store authoritative.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"orderflow/internal/metrics"
	"orderflow/internal/pkg/errs"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Entry is a cached payload together with its content hash.
type Entry struct {
	Value any
	ETag  string
}

// FetchFunc loads the value for a key from the backing store on cache miss.
type FetchFunc func(ctx context.Context) (any, error)

// Coordinator is the shared cache-aside layer. Safe for concurrent use.
type Coordinator struct {
	store  *gocache.Cache
	group  singleflight.Group
	logger *slog.Logger
}

// NewCoordinator creates a coordinator with the given default TTL and
// expired-entry cleanup interval.
func NewCoordinator(defaultTTL, cleanupInterval time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:  gocache.New(defaultTTL, cleanupInterval),
		logger: logger.With("component", "cache_coordinator"),
	}
}

// GetOrFetch returns the cached entry for key, populating it via fetch on a
// miss. Concurrent callers for the same key while a fetch is in flight share
// the single in-progress result. A failed fetch is never cached and the
// error propagates to every waiting caller.
func (c *Coordinator) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (Entry, error) {
	if key == "" {
		return Entry{}, errs.NewValueIsRequiredError("key")
	}

	if cached, ok := c.store.Get(key); ok {
		metrics.CacheHitsTotal.Inc()
		return cached.(Entry), nil
	}

	metrics.CacheMissesTotal.Inc()

	result, err, _ := c.group.Do(key, func() (any, error) {
		// A racing caller may have populated the key while this call
		// was queued behind the flight group.
		if cached, ok := c.store.Get(key); ok {
			return cached.(Entry), nil
		}

		value, fetchErr := fetch(ctx)
		if fetchErr != nil {
			return Entry{}, fetchErr
		}

		return c.put(key, value, ttl)
	})
	if err != nil {
		return Entry{}, err
	}

	return result.(Entry), nil
}

// Set stores a value under key, replacing any previous entry and
// recomputing the ETag.
func (c *Coordinator) Set(key string, value any, ttl time.Duration) (Entry, error) {
	if key == "" {
		return Entry{}, errs.NewValueIsRequiredError("key")
	}

	return c.put(key, value, ttl)
}

// Invalidate removes the exact key plus every entry namespaced under it
// (keys with the "<keyOrPrefix>:" prefix). Invalidating an absent key is a
// no-op; calling twice in a row is safe.
func (c *Coordinator) Invalidate(keyOrPrefix string) {
	if keyOrPrefix == "" {
		return
	}

	metrics.CacheInvalidationsTotal.Inc()
	c.store.Delete(keyOrPrefix)

	prefix := keyOrPrefix + ":"
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}
}

// Flush drops every cached entry. The cache is self-healing, so this is
// always safe.
func (c *Coordinator) Flush() {
	c.store.Flush()
}

func (c *Coordinator) put(key string, value any, ttl time.Duration) (Entry, error) {
	etag, err := ComputeETag(value)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Value: value, ETag: etag}
	c.store.Set(key, entry, ttl)
	return entry, nil
}

// ComputeETag returns the hex SHA-256 of the JSON serialization of value.
// Equal payloads always hash equal, so a client-supplied ETag match means
// the payload has not changed since it was served.
func ComputeETag(value any) (string, error) {
	serialized, err := json.Marshal(value)
	if err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause("value", err)
	}

	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:]), nil
}
