package lock

import (
	"context"
	"sync"
	"time"

	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/cellbank/internal/config"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/common/uuid"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/middleware/redis"
	"github.com/scienceol/cellbank/pkg/repo"
)

const keyPrefix = "cellbank:lock:"

var releaseScript = r.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type localImpl struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewLocal serialises holders of the same key within this process.
func NewLocal() repo.Locker {
	return &localImpl{locks: make(map[string]chan struct{})}
}

func (l *localImpl) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	return ch
}

func (l *localImpl) Lock(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, code.LockAcquireErr.WithErr(ctx.Err())
	}
	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}

type redisImpl struct {
	local  repo.Locker
	client *r.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewRedis adds a redis lease on top of the local lock so several
// processes sharing the same files do not interleave writes.
func NewRedis(client *r.Client, ttl, wait time.Duration) repo.Locker {
	return &redisImpl{
		local:  NewLocal(),
		client: client,
		ttl:    ttl,
		wait:   wait,
	}
}

func (l *redisImpl) Lock(ctx context.Context, key string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	unlockLocal, err := l.local.Lock(waitCtx, key)
	if err != nil {
		return nil, err
	}

	redisKey := keyPrefix + key
	token := uuid.NewV4().String()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(waitCtx, redisKey, token, l.ttl).Result()
		if err != nil {
			unlockLocal()
			logger.Errorf(ctx, "acquire lock %s err: %+v", redisKey, err)
			return nil, code.LockAcquireErr.WithErr(err)
		}
		if ok {
			break
		}
		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			unlockLocal()
			return nil, code.LockAcquireErr.WithMsgf("lock %s busy", key)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			defer unlockLocal()
			relCtx, relCancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
			defer relCancel()
			if err := releaseScript.Run(relCtx, l.client, []string{redisKey}, token).Err(); err != nil {
				logger.Warnf(ctx, "release lock %s err: %+v", redisKey, err)
			}
		})
	}, nil
}

// NewLocker uses the redis lease when a redis client is configured.
func NewLocker() repo.Locker {
	if client := redis.GetClient(); client != nil {
		conf := config.Global().Inventory
		return NewRedis(client, conf.LockTTL, conf.LockWait)
	}
	return NewLocal()
}
