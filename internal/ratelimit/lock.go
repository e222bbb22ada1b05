package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var (
	ErrLockNotConfigured = errors.New("lock_not_configured")
	ErrLockHeld          = errors.New("lock_held")
)

// Deletes the key only while it still holds our token, so an expired lease
// cannot release a lock re-acquired by another replica.
const releaseIfOwner = `
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
  return 0
end
return redis.call("DEL", KEYS[1])
`

// Locker hands out single-holder redis leases.
type Locker struct {
	client  *redis.Client
	release *redis.Script
}

// NewLocker returns nil without redis; a nil Locker runs WithLock unguarded.
func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client, release: redis.NewScript(releaseIfOwner)}
}

// Lease is a held lock. It expires on its own after the TTL.
type Lease struct {
	locker *Locker
	key    string
	token  string
}

// Acquire takes key for ttl or returns ErrLockHeld.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	switch {
	case l == nil || l.client == nil:
		return nil, ErrLockNotConfigured
	case key == "":
		return nil, errors.New("lock key is empty")
	case ttl <= 0:
		return nil, errors.New("lock ttl must be positive")
	}

	lease := &Lease{locker: l, key: key, token: uuid.NewString()}
	acquired, err := l.client.SetNX(ctx, key, lease.token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrLockHeld
	}
	return lease, nil
}

func (ls *Lease) Release(ctx context.Context) error {
	if ls == nil {
		return nil
	}
	return ls.locker.release.Run(ctx, ls.locker.client, []string{ls.key}, ls.token).Err()
}

// WithLock runs fn while holding key. A nil Locker runs fn unguarded.
func (l *Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l == nil {
		return fn(ctx)
	}
	lease, err := l.Acquire(ctx, key, ttl)
	if err != nil {
		return err
	}
	defer func() { _ = lease.Release(context.WithoutCancel(ctx)) }()
	return fn(ctx)
}
