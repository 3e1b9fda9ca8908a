package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"footysync/ingestion/internal/cache"
	"footysync/ingestion/internal/metrics"
	"footysync/ingestion/internal/ratelimit"
)

const (
	maxAttempts = 3
	retryDelay  = 2 * time.Second
)

// fetcher implements the shared request pipeline: cache lookup, local rate
// limit check, HTTP GET with bounded retries, usage recording, write-through.
// The cache is consulted before the limiter so a hit never consumes quota.
type fetcher struct {
	source     string
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	cache      cache.Cache
	limiter    *ratelimit.Limiter

	// cacheable, when set, vetoes the write-through for 200 bodies that
	// carry a provider error envelope. Without the veto such a body would
	// be served for the full TTL even after the provider recovers.
	cacheable func(body []byte) bool
}

// getJSON fetches endpoint with params and returns the raw response body.
// A nil body with a nil error means the provider failed in a recoverable
// way (5xx, remote 429) and the caller should treat the result as empty.
func (f *fetcher) getJSON(ctx context.Context, endpoint string, params map[string]string, ttl time.Duration) ([]byte, error) {
	key := cache.Key(f.source, endpoint, params)

	if body, ok := f.cache.Get(ctx, key); ok {
		metrics.RecordCacheHit(f.source)
		log.Debug().Str("source", f.source).Str("endpoint", endpoint).Msg("Cache hit")
		return body, nil
	}
	metrics.RecordCacheMiss(f.source)

	if err := f.limiter.Allow(ctx); err != nil {
		var rle *ratelimit.RateLimitError
		if errors.As(err, &rle) {
			metrics.RecordRateLimited(f.source)
			log.Warn().
				Str("source", f.source).
				Str("endpoint", endpoint).
				Int("limit", rle.Limit).
				Msg("Local rate limit reached, skipping request")
		}
		return nil, err
	}

	start := time.Now()
	resp, err := f.do(ctx, endpoint, params)
	if err != nil {
		metrics.RecordAPICall(f.source, endpoint, "transport_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	// The request reached the provider, so it counts against our quota
	// regardless of status.
	if err := f.limiter.Record(ctx); err != nil {
		log.Warn().Err(err).Str("source", f.source).Msg("Failed to record rate limit usage")
	}

	duration := time.Since(start).Seconds()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			metrics.RecordAPICall(f.source, endpoint, "read_error", duration)
			return nil, fmt.Errorf("failed to read response from %s: %w", endpoint, err)
		}
		metrics.RecordAPICall(f.source, endpoint, "success", duration)

		if f.cacheable == nil || f.cacheable(body) {
			if err := f.cache.Set(ctx, key, body, ttl); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
			}
		}
		return body, nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.RecordAPICall(f.source, endpoint, "auth_error", duration)
		return nil, &AuthError{Source: f.source}

	case resp.StatusCode == http.StatusTooManyRequests:
		// The provider's view of our quota disagrees with ours. Surfaced
		// as an empty result so the batch continues with remaining work.
		metrics.RecordAPICall(f.source, endpoint, "rate_limited", duration)
		log.Warn().
			Str("source", f.source).
			Str("endpoint", endpoint).
			Msg("Provider returned 429, local counter may be out of sync")
		return nil, nil

	default:
		metrics.RecordAPICall(f.source, endpoint, "error", duration)
		log.Error().
			Str("source", f.source).
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("Provider request failed")
		return nil, nil
	}
}

// usage reads the limiter's view of the current window
func (f *fetcher) usage(ctx context.Context) (Usage, error) {
	used, err := f.limiter.Used(ctx)
	if err != nil {
		return Usage{}, err
	}

	u := Usage{Used: used, Limit: f.limiter.Limit()}
	if u.Remaining = u.Limit - u.Used; u.Remaining < 0 {
		u.Remaining = 0
	}
	if u.Limit > 0 {
		u.Percent = float64(u.Used) / float64(u.Limit) * 100
	}
	return u, nil
}

// do performs the GET with a fixed number of attempts. Only transport-level
// failures are retried; any HTTP response is returned to the caller as-is.
func (f *fetcher) do(ctx context.Context, endpoint string, params map[string]string) (*http.Response, error) {
	u, err := url.Parse(f.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		for k, v := range f.headers {
			req.Header.Set(k, v)
		}

		resp, err := f.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt < maxAttempts {
			log.Debug().
				Err(err).
				Str("source", f.source).
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Msg("Request failed, retrying")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, lastErr
}
