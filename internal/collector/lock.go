package collector

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReleaseFunc gives back a lock obtained from a Locker.
type ReleaseFunc func(ctx context.Context) error

// Locker serialises collection cycles. TryLock never blocks: it reports
// acquired=false when another cycle holds the lock.
type Locker interface {
	TryLock(ctx context.Context) (release ReleaseFunc, acquired bool, err error)
}

// LocalLocker serialises cycles within one process.
type LocalLocker struct {
	mu   sync.Mutex
	held bool
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) TryLock(ctx context.Context) (ReleaseFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return nil, false, nil
	}
	l.held = true

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			l.held = false
			l.mu.Unlock()
		})
		return nil
	}, true, nil
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serialises cycles across replicas sharing one Redis. The lock
// expires after ttl so a crashed holder cannot block collection forever.
type RedisLocker struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

func NewRedisLocker(client redis.UniversalClient, key string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, key: key, ttl: ttl}
}

func (l *RedisLocker) TryLock(ctx context.Context) (ReleaseFunc, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
	}, true, nil
}
