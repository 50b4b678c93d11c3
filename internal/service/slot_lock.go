package service

import (
	"context"
	"errors"
	"sync"
	"time"

	pkgerrors "github.com/resitasrav/BookLab-System/pkg/errors"
)

// SlotLocker 串行化同一设备同一天的“检查冲突 + 写入”临界区
type SlotLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

func slotLockKey(deviceID, date string) string {
	return "slot:" + deviceID + ":" + date
}

// ────────────────────── 进程内锁 ──────────────────────

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

type localSlotLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

// NewLocalSlotLocker 进程内按 key 加锁，未配置 Redis 时使用
func NewLocalSlotLocker() SlotLocker {
	return &localSlotLocker{locks: make(map[string]*keyedLock)}
}

func (l *localSlotLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			kl.mu.Unlock()
			l.mu.Lock()
			kl.refs--
			if kl.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		})
	}, nil
}

// ────────────────────── Redis 锁 ──────────────────────

// DistributedLocker 由 pkg/redis.Client 实现
type DistributedLocker interface {
	AcquireLock(ctx context.Context, key string, ttl, wait time.Duration) (func(), error)
}

type redisSlotLocker struct {
	client DistributedLocker
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisSlotLocker 多实例部署时使用的分布式时段锁
func NewRedisSlotLocker(client DistributedLocker, ttl, wait time.Duration) SlotLocker {
	return &redisSlotLocker{client: client, ttl: ttl, wait: wait}
}

func (l *redisSlotLocker) Lock(ctx context.Context, key string) (func(), error) {
	release, err := l.client.AcquireLock(ctx, key, l.ttl, l.wait)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}
	return release, nil
}
