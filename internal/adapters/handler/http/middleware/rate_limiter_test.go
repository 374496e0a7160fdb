package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/config"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/metrics"
)

func rateLimitRedis(t *testing.T) *redis.Client {
	t.Helper()
	_ = godotenv.Load("../../../../../.env")

	cfg := config.Defaults().Redis
	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		cfg.Port = port
	}
	cfg.Pass = os.Getenv("REDIS_PASSWORD")
	cfg.DB = 3

	rdb, err := cache.NewRedisClient(cfg)
	if err != nil {
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	return rdb
}

// asUser stands in for AuthMiddleware by putting a user id in the context.
func asUser(c *gin.Context) {
	if id := c.GetHeader("X-Test-User"); id != "" {
		c.Set(ContextUserIDKey, id)
	}
	c.Next()
}

func rateLimitedRouter(l *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(asUser, l.Handler())
	router.GET("/tracker/today", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func hitAs(router *gin.Engine, user, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/tracker/today", nil)
	req.Header.Set("X-Forwarded-For", ip)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(user string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.RemoteAddr = "10.0.0.7:5555"
		if user != "" {
			c.Set(ContextUserIDKey, user)
		}
		return c
	}

	t.Run("Success: Signed-in requests count per user", func(t *testing.T) {
		assert.Equal(t, "user:u-1", ByUser(newCtx("u-1")))
	})

	t.Run("Success: Anonymous requests fall back to the address", func(t *testing.T) {
		assert.Equal(t, "ip:10.0.0.7", ByUser(newCtx("")))
		assert.Equal(t, "ip:10.0.0.7", ByClientIP(newCtx("u-1")))
	})

	t.Run("Success: Scopes keep separate buckets", func(t *testing.T) {
		c := newCtx("u-1")
		auth := NewRateLimiter(nil, ScopeAuth, 1, time.Minute, nil)
		user := NewRateLimiter(nil, ScopeUser, 1, time.Minute, ByUser)
		assert.Equal(t, "rate_limit:auth:ip:10.0.0.7", auth.key(c))
		assert.Equal(t, "rate_limit:user:user:u-1", user.key(c))
	})
}

func TestRateLimiter_Integration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := rateLimitRedis(t)
	ctx := context.Background()

	t.Run("Success: Headers count down within the window", func(t *testing.T) {
		rdb.FlushDB(ctx)
		router := rateLimitedRouter(NewRateLimiter(rdb, ScopeUser, 3, time.Minute, ByUser))

		for i := 1; i <= 3; i++ {
			w := hitAs(router, "u-headers", "192.168.1.10")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, strconv.Itoa(3-i), w.Header().Get("X-RateLimit-Remaining"))
		}

		ttl, err := rdb.TTL(ctx, "rate_limit:user:user:u-headers").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 50*time.Second)
	})

	t.Run("Success: Users behind one address have their own budget", func(t *testing.T) {
		rdb.FlushDB(ctx)
		router := rateLimitedRouter(NewRateLimiter(rdb, ScopeUser, 2, time.Minute, ByUser))
		rejected := metrics.New().RateLimitedTotal.WithLabelValues(ScopeUser)
		before := testutil.ToFloat64(rejected)

		assert.Equal(t, http.StatusOK, hitAs(router, "alice", "203.0.113.5").Code)
		assert.Equal(t, http.StatusOK, hitAs(router, "alice", "203.0.113.5").Code)

		w := hitAs(router, "alice", "203.0.113.5")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "too many requests")
		assert.NotEmpty(t, w.Header().Get("Retry-After"))

		assert.Equal(t, http.StatusOK, hitAs(router, "bob", "203.0.113.5").Code, "bob shares the address but not the bucket")
		assert.Equal(t, before+1, testutil.ToFloat64(rejected))
	})

	t.Run("Success: Auth scope throttles per address", func(t *testing.T) {
		rdb.FlushDB(ctx)
		router := rateLimitedRouter(NewRateLimiter(rdb, ScopeAuth, 1, time.Minute, ByClientIP))
		rejected := metrics.New().RateLimitedTotal.WithLabelValues(ScopeAuth)
		before := testutil.ToFloat64(rejected)

		assert.Equal(t, http.StatusOK, hitAs(router, "", "198.51.100.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, hitAs(router, "", "198.51.100.1").Code)
		assert.Equal(t, http.StatusOK, hitAs(router, "", "198.51.100.2").Code)
		assert.Equal(t, before+1, testutil.ToFloat64(rejected))
	})
}

func TestRateLimiter_FailOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)

	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer down.Close()

	router := rateLimitedRouter(NewRateLimiter(down, ScopeUser, 1, time.Minute, ByUser))

	for i := 0; i < 3; i++ {
		w := hitAs(router, "u-open", "192.0.2.1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}
