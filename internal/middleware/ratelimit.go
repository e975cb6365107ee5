package middleware

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitedMessage = "Too many requests. Please try again later."

// Counter counts hits for a key within the current window.
type Counter interface {
	Hit(ctx context.Context, key string) (int, error)
}

type RateLimiter struct {
	counter Counter
	limit   int
}

func NewRateLimiter(counter Counter, limit int) *RateLimiter {
	return &RateLimiter{counter: counter, limit: limit}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, err := rl.counter.Hit(r.Context(), clientIP(r))
		if err != nil {
			// Fail open when the counter is unreachable
			log.Printf("Rate limiter unavailable: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > rl.limit {
			writeError(w, http.StatusTooManyRequests, rateLimitedMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the peer address recorded by PeerAddr, so a spoofed
// X-Forwarded-For rewritten by RealIP cannot rotate the limiter key.
func clientIP(r *http.Request) string {
	addr := GetPeerAddr(r.Context())
	if addr == "" {
		addr = r.RemoteAddr
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

type visitor struct {
	count       int
	windowStart time.Time
}

// MemoryCounter is a per-process fixed-window counter, used when Redis is not configured.
type MemoryCounter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryCounter(window time.Duration) *MemoryCounter {
	mc := &MemoryCounter{
		visitors: make(map[string]*visitor),
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-mc.stop:
				return
			case <-ticker.C:
				mc.evictExpired()
			}
		}
	}()

	return mc
}

// Close stops the cleanup goroutine.
func (mc *MemoryCounter) Close() {
	mc.stopOnce.Do(func() { close(mc.stop) })
}

func (mc *MemoryCounter) evictExpired() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	for ip, v := range mc.visitors {
		if now.Sub(v.windowStart) >= mc.window {
			delete(mc.visitors, ip)
		}
	}
}

func (mc *MemoryCounter) Hit(_ context.Context, key string) (int, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	v, exists := mc.visitors[key]
	if !exists || now.Sub(v.windowStart) >= mc.window {
		mc.visitors[key] = &visitor{count: 1, windowStart: now}
		return 1, nil
	}

	v.count++
	return v.count, nil
}

// RedisCounter is a fixed-window counter shared by every instance.
type RedisCounter struct {
	client *redis.Client
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisCounter(client *redis.Client, window time.Duration) *RedisCounter {
	if window < time.Millisecond {
		window = time.Millisecond
	}
	return &RedisCounter{client: client, window: window, prefix: "ratelimit:generate", now: time.Now}
}

func (rc *RedisCounter) Hit(ctx context.Context, key string) (int, error) {
	bucket := rc.now().UnixMilli() / rc.window.Milliseconds()
	redisKey := fmt.Sprintf("%s:%s:%d", rc.prefix, key, bucket)

	pipe := rc.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rc.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	return int(incr.Val()), nil
}
