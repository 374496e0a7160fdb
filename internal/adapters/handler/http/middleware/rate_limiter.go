package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/metrics"
)

const (
	ScopeAuth = "auth"
	ScopeUser = "user"
)

// RateKey names the bucket a request is counted in.
type RateKey func(c *gin.Context) string

// ByClientIP counts anonymous traffic such as login attempts per address.
func ByClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ByUser counts per signed-in user, so one account cannot starve others behind the same NAT.
// It must run after AuthMiddleware; without a user it falls back to the client address.
func ByUser(c *gin.Context) string {
	if id, ok := GetUserID(c); ok && id != "" {
		return "user:" + id
	}
	return ByClientIP(c)
}

type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	scope  string
	keyOf  RateKey
}

func NewRateLimiter(rdb *redis.Client, scope string, limit int, window time.Duration, keyOf RateKey) *RateLimiter {
	if keyOf == nil {
		keyOf = ByClientIP
	}
	return &RateLimiter{rdb: rdb, limit: limit, window: window, scope: scope, keyOf: keyOf}
}

func (l *RateLimiter) key(c *gin.Context) string {
	return "rate_limit:" + l.scope + ":" + l.keyOf(c)
}

// hit counts one request in a fixed window. The window starts with the first request of the bucket.
func (l *RateLimiter) hit(c *gin.Context) (int64, time.Duration, error) {
	ctx := c.Request.Context()
	key := l.key(c)

	pipe := l.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		// A bucket without expiry would never reset, so drop it if the expiry cannot be set.
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			l.rdb.Del(ctx, key)
			return 0, 0, err
		}
		remaining = l.window
	}
	return incr.Val(), remaining, nil
}

// Handler fails open: when Redis is unreachable the request is served unthrottled.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	rejected := metrics.New().RateLimitedTotal.WithLabelValues(l.scope)

	return func(c *gin.Context) {
		count, ttl, err := l.hit(c)
		if err != nil {
			log.Warnf("[RATE] %s limiter skipped, redis error: %v", l.scope, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(l.limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > int64(l.limit) {
			rejected.Inc()
			log.Debugf("[RATE] %s bucket %s over limit (%d/%d)", l.scope, l.keyOf(c), count, l.limit)
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests, slow down",
				"retry_in_s": int(ttl.Seconds()),
			})
			return
		}

		c.Next()
	}
}
