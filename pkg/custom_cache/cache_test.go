package custom_cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trsst/client/pkg/custom_cache"
)

func TestCacheSetAndGet(t *testing.T) {
	testCases := []struct {
		backend string
	}{
		{backend: ""},
		{backend: custom_cache.BackendRistretto},
		{backend: custom_cache.BackendBigcache},
	}
	for _, tc := range testCases {
		t.Run(tc.backend, func(t *testing.T) {
			c, err := custom_cache.New(tc.backend, "", time.Minute)
			require.NoError(t, err)
			ctx := context.Background()

			_, err = c.Get(ctx, "missing")
			assert.Error(t, err)

			require.NoError(t, c.Set(ctx, "key", "urn:feed:a\nurn:feed:b"))

			value, err := c.Get(ctx, "key")
			require.NoError(t, err)
			assert.Equal(t, "urn:feed:a\nurn:feed:b", value)
		})
	}
}

func TestNewRejectsInvalidBackends(t *testing.T) {
	_, err := custom_cache.New("memcached", "", time.Minute)
	assert.Error(t, err)

	_, err = custom_cache.New(custom_cache.BackendRedis, "", time.Minute)
	assert.Error(t, err)
}
