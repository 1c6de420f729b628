package middlewares

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"littlelemon/configs"
	"littlelemon/pkg/resp"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string, rate configs.Rate) (allowed bool, retryAfter time.Duration, err error)
}

type window struct {
	start time.Time
	count int
}

// MemoryLimiter keeps windows in process memory.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*window), now: time.Now}
}

const sweepThreshold = 10000

func (l *MemoryLimiter) Allow(_ context.Context, key string, rate configs.Rate) (bool, time.Duration, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.windows) > sweepThreshold {
		l.sweep(now, rate.Period)
	}

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= rate.Period {
		w = &window{start: now}
		l.windows[key] = w
	}
	if w.count >= rate.Limit {
		return false, w.start.Add(rate.Period).Sub(now), nil
	}
	w.count++
	return true, 0, nil
}

func (l *MemoryLimiter) sweep(now time.Time, period time.Duration) {
	for k, w := range l.windows {
		if now.Sub(w.start) >= period {
			delete(l.windows, k)
		}
	}
}

// RedisLimiter shares windows between instances with INCR + EXPIRE.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client redis.Cmdable) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "littlelemon:throttle", now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, rate configs.Rate) (bool, time.Duration, error) {
	now := l.now()
	start := now.Truncate(rate.Period)
	k := fmt.Sprintf("%s:%s:%d", l.prefix, key, start.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, rate.Period)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, err
	}
	if incr.Val() > int64(rate.Limit) {
		return false, start.Add(rate.Period).Sub(now), nil
	}
	return true, 0, nil
}

// ThrottleMiddleware applies the anonymous rate per client IP and the user
// rate per user id. Limiter errors let the request through.
func ThrottleMiddleware(l Limiter, anon, user configs.Rate, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, rate := "anon:"+c.ClientIP(), anon
		if uid := utils.CurrentUserID(c); uid != 0 {
			key, rate = "user:"+strconv.FormatUint(uint64(uid), 10), user
		}

		ok, retry, err := l.Allow(c.Request.Context(), key, rate)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("throttle check failed")
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			resp.TooManyRequests(c, "Request was throttled")
			return
		}
		c.Next()
	}
}
