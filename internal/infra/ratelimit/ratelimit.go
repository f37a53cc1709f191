// Package ratelimit – token bucket на ключ (обычно IP клиента) с LRU-вытеснением.
// Используется и HTTP-, и gRPC-транспортом.
package ratelimit

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter
	last    time.Time
}

type Limiter struct {
	mu       sync.Mutex
	visitors *lru.Cache[string, *visitor]
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

// New создаёт лимитер; неактивные ключи вычищаются раз в ttl, пока жив ctx.
func New(ctx context.Context, rps, burst, cacheSize int, ttl time.Duration) *Limiter {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	visitors, _ := lru.New[string, *visitor](cacheSize) // ошибка только при size <= 0

	l := &Limiter{
		visitors: visitors,
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
	go l.cleanup(ctx)
	return l
}

// Allow списывает токен у ключа key.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	v, ok := l.visitors.Get(key)
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors.Add(key, v)
	}
	v.last = l.now()
	l.mu.Unlock()

	return v.limiter.Allow()
}

// Len – число отслеживаемых ключей.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visitors.Len()
}

func (l *Limiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(l.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

func (l *Limiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range l.visitors.Keys() {
		if v, ok := l.visitors.Peek(key); ok && l.now().Sub(v.last) > l.ttl {
			l.visitors.Remove(key)
		}
	}
}
