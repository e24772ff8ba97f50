package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-booking/pkg/circuitbreaker"
)

// unreachable returns a client whose dials are refused.
func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisLockerFallsBackToLocal(t *testing.T) {
	client := unreachable()
	defer client.Close()

	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{Name: "test", MaxFailures: 1, Timeout: time.Hour})
	local := NewLocalLocker(20 * time.Millisecond)
	l := NewRedisLocker(client, RedisConfig{Wait: 500 * time.Millisecond}, breaker, local)

	var outcomes []string
	l.OnOutcome(func(o string) { outcomes = append(outcomes, o) })

	release, err := l.Acquire(context.Background(), "booking:slot:a:1")
	require.NoError(t, err)
	assert.True(t, breaker.Open())

	// the fallback lock still excludes a second holder
	_, err = l.Acquire(context.Background(), "booking:slot:a:1")
	assert.ErrorIs(t, err, ErrNotAcquired)

	release()
	again, err := l.Acquire(context.Background(), "booking:slot:a:1")
	require.NoError(t, err)
	again()

	assert.Equal(t, []string{"fallback", "fallback", "fallback"}, outcomes)
}
