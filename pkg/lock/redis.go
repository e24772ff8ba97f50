package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-booking/pkg/circuitbreaker"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisConfig struct {
	Prefix string
	// TTL bounds how long a crashed holder can keep a key.
	TTL time.Duration
	// Wait bounds how long Acquire polls for a busy key.
	Wait time.Duration
	// Retry is the polling interval.
	Retry time.Duration
}

// RedisLocker takes locks with SET NX PX and a random token. When Redis is
// unreachable or the breaker is open it degrades to the fallback Locker.
type RedisLocker struct {
	client   redis.UniversalClient
	cfg      RedisConfig
	breaker  *circuitbreaker.CircuitBreaker
	fallback Locker
	observe  func(outcome string)
}

func NewRedisLocker(client redis.UniversalClient, cfg RedisConfig, breaker *circuitbreaker.CircuitBreaker, fallback Locker) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.Wait <= 0 {
		cfg.Wait = 2 * time.Second
	}
	if cfg.Retry <= 0 {
		cfg.Retry = 25 * time.Millisecond
	}
	return &RedisLocker{
		client:   client,
		cfg:      cfg,
		breaker:  breaker,
		fallback: fallback,
		observe:  func(string) {},
	}
}

// OnOutcome registers a hook called with "acquired", "busy" or "fallback".
func (l *RedisLocker) OnOutcome(fn func(outcome string)) {
	l.observe = fn
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	key = l.cfg.Prefix + key
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Wait)
	defer cancel()

	for {
		var acquired bool
		err := l.breaker.Execute(func() error {
			ok, err := l.client.SetNX(ctx, key, token, l.cfg.TTL).Result()
			acquired = ok
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				// Our own wait budget ran out; that says nothing about Redis health.
				return nil
			}
			return err
		})
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("redis lock unavailable, using local lock")
			l.observe("fallback")
			return l.fallback.Acquire(ctx, key)
		}
		if acquired {
			l.observe("acquired")
			return l.release(key, token), nil
		}

		select {
		case <-ctx.Done():
			l.observe("busy")
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		case <-time.After(l.cfg.Retry):
		}
	}
}

func (l *RedisLocker) release(key, token string) Release {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("failed to release redis lock")
		}
	}
}

// NewRedisClient parses url and verifies the connection. A positive poolSize
// overrides the pool size given in the URL.
func NewRedisClient(ctx context.Context, url string, poolSize int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
