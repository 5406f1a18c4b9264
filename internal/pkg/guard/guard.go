// internal/pkg/guard/guard.go
package guard

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another turn for the same phone holds the lock.
var ErrLocked = errors.New("turn in progress for this phone")

const (
	dedupePrefix = "tusafishe:sms:seen:"
	lockPrefix   = "tusafishe:sms:lock:"
)

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Guard drops webhook redeliveries and optionally serialises turns per phone.
type Guard interface {
	// FirstDelivery reports whether messageID has not been seen before.
	// An empty id is always a first delivery.
	FirstDelivery(ctx context.Context, messageID string) (bool, error)
	// Lock acquires the per-phone turn lock. The returned func releases it.
	Lock(ctx context.Context, phone string) (func(), error)
}

// RedisGuard implements Guard on Redis.
type RedisGuard struct {
	client      redis.UniversalClient
	dedupeTTL   time.Duration
	lockTTL     time.Duration
	lockEnabled bool
}

func NewRedisGuard(client redis.UniversalClient, dedupeTTL, lockTTL time.Duration, lockEnabled bool) *RedisGuard {
	return &RedisGuard{
		client:      client,
		dedupeTTL:   dedupeTTL,
		lockTTL:     lockTTL,
		lockEnabled: lockEnabled,
	}
}

func (g *RedisGuard) FirstDelivery(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return true, nil
	}
	return g.client.SetNX(ctx, dedupePrefix+messageID, 1, g.dedupeTTL).Result()
}

func (g *RedisGuard) Lock(ctx context.Context, phone string) (func(), error) {
	if !g.lockEnabled {
		return func() {}, nil
	}

	key := lockPrefix + phone
	token := ulid.Make().String()

	ok, err := g.client.SetNX(ctx, key, token, g.lockTTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		// Detached from the request so a cancelled turn still releases.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		releaseScript.Run(ctx, g.client, []string{key}, token)
	}, nil
}

// Noop is used when Redis is not configured.
type Noop struct{}

func (Noop) FirstDelivery(context.Context, string) (bool, error) { return true, nil }

func (Noop) Lock(context.Context, string) (func(), error) { return func() {}, nil }
