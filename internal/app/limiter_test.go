package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	limiter, err := NewLimiter(&Config{})
	require.NoError(t, err)
	defer limiter.Close()

	assert.False(t, limiter.Enabled())
	for i := 0; i < 1000; i++ {
		require.True(t, limiter.Allow(context.Background(), "10.0.0.1"))
	}
}

func TestLimiterRejectsBadRedisURL(t *testing.T) {
	config := &Config{}
	config.RateLimit.Enabled = true
	config.RateLimit.RedisURL = "not-a-url"

	_, err := NewLimiter(config)
	assert.ErrorContains(t, err, "redis URL")
}

func TestLimiterKey(t *testing.T) {
	limiter := &Limiter{keyTemplate: defaultLimitKeyTemplate}
	at := time.Unix(600, 0)

	assert.Equal(t, "ratelimit:10.0.0.1:10", limiter.key("10.0.0.1", at))
	assert.Equal(t, "ratelimit:10.0.0.1:10", limiter.key("10.0.0.1", at.Add(59*time.Second)))
	assert.Equal(t, "ratelimit:10.0.0.1:11", limiter.key("10.0.0.1", at.Add(60*time.Second)))
}
