// Package catalog fetches model catalogs from the upstream provider and
// serves repeat requests from a short-lived in-process cache, shielding the
// rate-limited upstream listing endpoints.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/0xGingi/SuperKagi-sub001/internal/config"
	"github.com/0xGingi/SuperKagi-sub001/internal/domain"
)

// Scope selects the upstream tier. It changes both the auth transport and
// the response shape.
type Scope string

const (
	// ScopeSubscription lists subscription-tier models; the key travels in
	// an x-api-key header and a server-configured fallback key is used when
	// the caller supplies none.
	ScopeSubscription Scope = "subscription"
	// ScopePaid lists pay-as-you-go models; the caller's own key is
	// mandatory and travels as a bearer token.
	ScopePaid Scope = "paid"
)

// Result is what a catalog request returns: the normalized entry list plus
// the upstream payload verbatim.
type Result struct {
	Entries []Entry `json:"entries"`
	Raw     any     `json:"raw"`
}

type cacheEntry struct {
	result    Result
	fetchedAt time.Time
}

// Client caches upstream responses per (scope, credential, detail) key.
// Entries are advisory: losing the cache only costs an extra upstream
// fetch. There is no eviction beyond TTL expiry on read; the key space is
// bounded by active users. Concurrent misses on the same key may each fetch
// upstream, which is safe because the fetch is idempotent.
type Client struct {
	httpClient  *http.Client
	now         func() time.Time
	ttl         time.Duration
	urls        map[Scope]string
	fallbackKey string
	logger      *slog.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func NewClient(cfg config.CatalogConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
		ttl:        cfg.CacheTTL,
		urls: map[Scope]string{
			ScopeSubscription: cfg.SubscriptionURL,
			ScopePaid:         cfg.PaidURL,
		},
		fallbackKey: cfg.SubscriptionKey,
		logger:      logger,
		cache:       make(map[string]cacheEntry),
	}
}

// WithClock replaces the clock, for tests.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Models returns the catalog for the scope, serving from cache while the
// entry is fresh. apiKey is the caller-supplied upstream credential and may
// be empty for the subscription scope.
func (c *Client) Models(ctx context.Context, scope Scope, apiKey string, detailed bool) (Result, error) {
	switch scope {
	case ScopeSubscription:
		if apiKey == "" {
			apiKey = c.fallbackKey
		}
	case ScopePaid:
		if apiKey == "" {
			return Result{}, fmt.Errorf("paid catalog requires an API key: %w", domain.ErrMissingCredential)
		}
	default:
		return Result{}, fmt.Errorf("unknown catalog scope %q: %w", scope, domain.ErrInvalidInput)
	}

	key := cacheKey(scope, apiKey, detailed)
	if result, ok := c.cached(key); ok {
		return result, nil
	}

	result, err := c.fetch(ctx, scope, apiKey, detailed)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	c.cache[key] = cacheEntry{result: result, fetchedAt: c.now()}
	c.mu.Unlock()

	return result, nil
}

func (c *Client) cached(key string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || c.now().Sub(entry.fetchedAt) >= c.ttl {
		return Result{}, false
	}
	return entry.result, true
}

func (c *Client) fetch(ctx context.Context, scope Scope, apiKey string, detailed bool) (Result, error) {
	url := c.urls[scope]
	if detailed {
		url += "?detailed=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, err
	}
	switch scope {
	case ScopeSubscription:
		if apiKey != "" {
			req.Header.Set("x-api-key", apiKey)
		}
	case ScopePaid:
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("catalog fetch failed",
			slog.String("scope", string(scope)),
			slog.Bool("detailed", detailed),
			slog.Any("error", err))
		return Result{}, fmt.Errorf("catalog fetch: %w", domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("catalog fetch: %w", domain.ErrUpstreamUnavailable)
	}

	// Transient upstream errors are never cached, so the next request
	// retries upstream.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &domain.UpstreamStatusError{StatusCode: resp.StatusCode, Body: body}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		payload = string(body)
	}

	return Result{Entries: Extract(payload), Raw: payload}, nil
}

func cacheKey(scope Scope, apiKey string, detailed bool) string {
	credential := apiKey
	if credential == "" {
		credential = "none"
	}
	detail := "basic"
	if detailed {
		detail = "detailed"
	}
	return string(scope) + "::" + credential + "::" + detail
}
