package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"
)

// Limiter caps requests per client in fixed one-minute windows counted in
// redis. A disabled limiter allows everything.
type Limiter struct {
	enabled     bool
	redis       *redis.Client
	keyTemplate string
	perMinute   int
	now         func() time.Time
}

func NewLimiter(config *Config) (*Limiter, error) {
	if !config.RateLimit.Enabled {
		return &Limiter{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.RateLimit.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = time.Second
	opt.WriteTimeout = time.Second

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Limiter{
		enabled:     true,
		redis:       client,
		keyTemplate: config.RateLimit.KeyTemplate,
		perMinute:   config.RateLimit.RequestsPerMinute,
		now:         time.Now,
	}, nil
}

func (l *Limiter) Enabled() bool {
	return l.enabled
}

func (l *Limiter) Close() error {
	if l.redis != nil {
		return l.redis.Close()
	}
	return nil
}

func (l *Limiter) key(client string, at time.Time) string {
	return strings.NewReplacer(
		"{client}", client,
		"{window}", strconv.FormatInt(at.Unix()/60, 10),
	).Replace(l.keyTemplate)
}

// Allow counts a request from client and reports whether it fits the window.
// Redis failures let the request through.
func (l *Limiter) Allow(ctx context.Context, client string) bool {
	if !l.enabled {
		return true
	}

	key := l.key(client, l.now())

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 61*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error.Printf("Rate limiter redis error for %s: %v", key, err)
		return true
	}

	return incr.Val() <= int64(l.perMinute)
}
