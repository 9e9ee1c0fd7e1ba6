package services

import (
	"context"
	"fmt"
	"time"

	"matchfeed_server/metrics"

	"github.com/Yiling-J/theine-go"
	"go.uber.org/zap"
)

const (
	defaultURLCacheSize = 10000
	defaultURLCacheTTL  = 55 * time.Minute
)

// URLSigner issues time-limited access URLs for storage keys
type URLSigner interface {
	Sign(ctx context.Context, key string) (url string, validity time.Duration, err error)
}

type cachedURL struct {
	URL       string
	ExpiresAt time.Time
}

// SignedURLCache is a read-through, size-bounded, TTL-bounded cache in front
// of a URLSigner. It is safe for concurrent use. Failed signings are not
// cached; instead the last URL issued for the key, even an expired one, is
// served when the signer fails.
type SignedURLCache struct {
	signer URLSigner
	store  *theine.Cache[string, cachedURL]
	// lastKnown has no TTL and is only read after a signing failure
	lastKnown *theine.Cache[string, string]
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

type SignedURLCacheOpt func(c *SignedURLCache)

// WithCacheTTL sets how long a signed URL is served from the cache
func WithCacheTTL(ttl time.Duration) SignedURLCacheOpt {
	return func(c *SignedURLCache) { c.ttl = ttl }
}

// WithClock replaces time.Now, used by tests to step past expiry
func WithClock(now func() time.Time) SignedURLCacheOpt {
	return func(c *SignedURLCache) { c.now = now }
}

// WithCacheLogger sets the logger for signing failures
func WithCacheLogger(logger *zap.Logger) SignedURLCacheOpt {
	return func(c *SignedURLCache) { c.logger = logger }
}

// NewSignedURLCache builds a cache holding at most maxEntries URLs
func NewSignedURLCache(signer URLSigner, maxEntries int64, opts ...SignedURLCacheOpt) (*SignedURLCache, error) {
	if maxEntries <= 0 {
		maxEntries = defaultURLCacheSize
	}
	c := &SignedURLCache{
		signer: signer,
		ttl:    defaultURLCacheTTL,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	store, err := theine.NewBuilder[string, cachedURL](maxEntries).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build url cache: %w", err)
	}
	lastKnown, err := theine.NewBuilder[string, string](maxEntries).Build()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to build last-known url cache: %w", err)
	}
	c.store = store
	c.lastKnown = lastKnown
	return c, nil
}

// Get returns a valid URL for key, signing it upstream on a miss
func (c *SignedURLCache) Get(ctx context.Context, key string) (string, error) {
	if entry, ok := c.store.Get(key); ok && c.now().Before(entry.ExpiresAt) {
		metrics.URLCacheHits.Inc()
		return entry.URL, nil
	}
	metrics.URLCacheMisses.Inc()

	url, validity, err := c.signer.Sign(ctx, key)
	if err != nil {
		metrics.URLSignFailures.Inc()
		if stale, ok := c.lastKnown.Get(key); ok {
			c.logger.Warn("⚠️ Signing failed, serving last known url", zap.String("key", key), zap.Error(err))
			return stale, nil
		}
		c.logger.Warn("❌ Failed to sign storage key", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to sign %q: %w", key, err)
	}

	c.Set(key, url, validity)
	return url, nil
}

// Set stores a URL whose upstream validity is validity. The entry lives for
// the cache TTL, shortened when needed so it always expires before the URL.
func (c *SignedURLCache) Set(key, url string, validity time.Duration) {
	ttl := c.ttl
	if validity > 0 && ttl >= validity {
		ttl = validity - validity/12
	}
	c.lastKnown.Set(key, url, 1)
	if ttl <= 0 {
		return
	}
	c.store.SetWithTTL(key, cachedURL{URL: url, ExpiresAt: c.now().Add(ttl)}, 1, ttl)
}

// Close releases the cache's background resources
func (c *SignedURLCache) Close() {
	c.store.Close()
	c.lastKnown.Close()
}
