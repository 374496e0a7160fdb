package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/comitanigiacomo/kanso-growth-tracker/docs"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/services"
)

type RouterDependencies struct {
	AuthHandler     *AuthHandler
	TrackerHandler  *TrackerHandler
	AnalysisHandler *AnalysisHandler
	TokenService    *services.TokenService
	// DB is nil when the memory store is configured.
	DB         *sqlx.DB
	Redis      *redis.Client
	// RateLimit counts per user on protected routes, AuthRateLimit per address on /auth.
	// Limiting is off without Redis or with a zero limit.
	RateLimit     int
	AuthRateLimit int
	RateWindow    time.Duration
	StartTime     time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "not configured"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				dbStatus = "unreachable"
			}
		}

		redisStatus := "not configured"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := http.StatusOK
		status := "ok"
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
			status = "degraded"
		}

		c.JSON(statusCode, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	public := apiV1.Group("")
	if deps.Redis != nil && deps.AuthRateLimit > 0 {
		public.Use(middleware.NewRateLimiter(deps.Redis, middleware.ScopeAuth, deps.AuthRateLimit, deps.RateWindow, middleware.ByClientIP).Handler())
	}

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	if deps.Redis != nil && deps.RateLimit > 0 {
		protected.Use(middleware.NewRateLimiter(deps.Redis, middleware.ScopeUser, deps.RateLimit, deps.RateWindow, middleware.ByUser).Handler())
	}

	deps.AuthHandler.RegisterRoutes(public, protected)
	deps.TrackerHandler.RegisterRoutes(protected)
	deps.AnalysisHandler.RegisterRoutes(protected)

	return router
}
