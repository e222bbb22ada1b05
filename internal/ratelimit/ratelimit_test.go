package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNilLockerRunsUnguarded(t *testing.T) {
	var l *Locker
	called := false
	err := l.WithLock(context.Background(), "k", time.Minute, func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	_, err = l.Acquire(context.Background(), "k", time.Minute)
	assert.True(t, errors.Is(err, ErrLockNotConfigured))

	var lease *Lease
	assert.NoError(t, lease.Release(context.Background()))
}

func TestSendLimiterFailsOpenWithoutRedis(t *testing.T) {
	l := NewInvoiceSendLimiter(nil, zap.NewNop())
	ok, wait := l.Allow(context.Background(), "42")
	assert.True(t, ok)
	assert.Zero(t, wait)
}

func TestLimitTTL(t *testing.T) {
	assert.Equal(t, time.Second, Limit{}.ttl())
	assert.Equal(t, 20*time.Second, Limit{Rate: 1, Burst: 10}.ttl())
	assert.Equal(t, 3600*time.Second, invoiceSendLimit.ttl())
}

func TestLimitRetryAfter(t *testing.T) {
	limit := Limit{Rate: 2, Burst: 1}
	assert.Equal(t, 500*time.Millisecond, limit.retryAfter(0))
	assert.Equal(t, 250*time.Millisecond, limit.retryAfter(500))
	assert.Zero(t, limit.retryAfter(1000))
}

func TestTakeRequiresClient(t *testing.T) {
	var bucket *TokenBucket
	_, err := bucket.Take(context.Background(), "k", invoiceSendLimit)
	assert.ErrorIs(t, err, ErrBucketNotConfigured)
	assert.Error(t, Limit{Rate: 1}.validate())
	assert.Error(t, Limit{Burst: 1}.validate())
}
