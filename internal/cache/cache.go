package cache

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Cache stores raw response payloads with a per-entry TTL. A cache hit must
// never consume rate-limit quota, so clients consult the cache before the
// limiter.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Close() error
}

// Key builds a deterministic cache key from source, endpoint and query
// parameters. Parameters are sorted so key generation is order-independent.
func Key(source, endpoint string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(source)
	b.WriteByte(':')
	b.WriteString(endpoint)

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b.WriteByte(':')
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(params[k])
		}
	}

	return b.String()
}
