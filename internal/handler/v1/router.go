package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Handler       *Handler
	Authenticator middleware.Authenticator
	Store         Pinger
	Metrics       *metrics.Collector
	// MetricsHandler serves /metrics. Nil disables the endpoint.
	MetricsHandler http.Handler
	CORS           config.CORSConfig
	RateLimit      config.RateLimitConfig
	Log            *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(cfg.Log),
		middleware.Tracing(),
		middleware.Logger(cfg.Log),
		middleware.Metrics(cfg.Metrics),
		middleware.CORS(cfg.CORS),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := cfg.Store.Ping(ctx); err != nil {
			cfg.Log.Warn("readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1", middleware.RateLimit(cfg.RateLimit, cfg.Metrics))
	cfg.Handler.Register(api,
		middleware.Authenticate(cfg.Authenticator),
		middleware.AuthRateLimit(cfg.RateLimit, cfg.Metrics),
	)
	return r
}
