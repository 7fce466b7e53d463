package caching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultDedupeTTL   = 48 * time.Hour
	DefaultTurnLockTTL = 30 * time.Second

	lockAttempts = 10
	lockBackoff  = 150 * time.Millisecond
)

var ErrTurnBusy = errors.New("caching: turn lock is held by another delivery")

// CacheService keeps the short-lived coordination state of the bot: which inbound
// message ids were already handled and which phone is mid-turn.
type CacheService interface {
	// MarkMessageSeen records id and reports whether it was new.
	MarkMessageSeen(ctx context.Context, messageID string) (bool, error)
	// ForgetMessage drops the record of id so a redelivery is handled again.
	ForgetMessage(ctx context.Context, messageID string) error
	// AcquireTurnLock serializes turns for one sender. It waits a little for a running
	// turn to finish, then gives up with ErrTurnBusy. The returned func releases the lock.
	AcquireTurnLock(ctx context.Context, phone string) (func(), error)
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client      *redis.Client
	lockTTL     time.Duration
	dedupeTTL   time.Duration
	lockBackoff time.Duration
}

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisCacheService(addr, password string, db int, lockTTL time.Duration) CacheService {
	// Parse Redis URL to extract host:port if protocol is included
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return NewCacheService(client, lockTTL)
}

func NewCacheService(client *redis.Client, lockTTL time.Duration) CacheService {
	if lockTTL <= 0 {
		lockTTL = DefaultTurnLockTTL
	}
	return &redisCacheService{client: client, lockTTL: lockTTL, dedupeTTL: DefaultDedupeTTL, lockBackoff: lockBackoff}
}

func messageKey(messageID string) string {
	return fmt.Sprintf("pointeuse:wamid:%s", messageID)
}

func turnKey(phone string) string {
	return fmt.Sprintf("pointeuse:turn:%s", phone)
}

func (r *redisCacheService) MarkMessageSeen(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return true, nil
	}
	return r.client.SetNX(ctx, messageKey(messageID), 1, r.dedupeTTL).Result()
}

func (r *redisCacheService) ForgetMessage(ctx context.Context, messageID string) error {
	if messageID == "" {
		return nil
	}
	return r.client.Del(ctx, messageKey(messageID)).Err()
}

func (r *redisCacheService) AcquireTurnLock(ctx context.Context, phone string) (func(), error) {
	key := turnKey(phone)
	token := uuid.NewString()

	for attempt := 0; attempt < lockAttempts; attempt++ {
		ok, err := r.client.SetNX(ctx, key, token, r.lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// fresh context: the turn's context may already be cancelled
				if err := releaseScript.Run(context.Background(), r.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
					log.Printf("WARN: release turn lock %s: %v", key, err)
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.lockBackoff):
		}
	}
	return nil, ErrTurnBusy
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
