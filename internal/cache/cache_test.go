package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_ParameterOrderIndependent(t *testing.T) {
	a := Key("FootballAPI", "/fixtures", map[string]string{"league": "39", "season": "2025"})
	b := Key("FootballAPI", "/fixtures", map[string]string{"season": "2025", "league": "39"})
	assert.Equal(t, a, b, "Parameter order should not change the key")
}

func TestKey_DistinguishesSourceEndpointAndParams(t *testing.T) {
	base := Key("FootballAPI", "/fixtures", map[string]string{"league": "39"})

	assert.NotEqual(t, base, Key("FootballDataOrg", "/fixtures", map[string]string{"league": "39"}))
	assert.NotEqual(t, base, Key("FootballAPI", "/standings", map[string]string{"league": "39"}))
	assert.NotEqual(t, base, Key("FootballAPI", "/fixtures", map[string]string{"league": "140"}))
	assert.NotEqual(t, base, Key("FootballAPI", "/fixtures", nil))
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok, "Missing key should be a miss")

	require.NoError(t, c.Set(ctx, "k", []byte("payload"), time.Minute))

	payload, ok := c.Get(ctx, "k")
	require.True(t, ok, "Stored key should be a hit")
	assert.Equal(t, []byte("payload"), payload)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.September, 1, 8, 0, 0, 0, time.UTC)

	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("payload"), time.Hour))

	_, ok := c.Get(ctx, "k")
	assert.True(t, ok, "Entry should be live before the TTL")

	now = now.Add(time.Hour + time.Second)

	_, ok = c.Get(ctx, "k")
	assert.False(t, ok, "Entry should expire after the TTL")
}
