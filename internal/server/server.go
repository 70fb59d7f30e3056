// Package server assembles the gin engine for the registry service.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/docregistry/docregistry/handlers"
	"github.com/docregistry/docregistry/internal/config"
	"github.com/docregistry/docregistry/internal/document/handler"
	"github.com/docregistry/docregistry/internal/document/service"
	"github.com/docregistry/docregistry/pkg/logger"
	"github.com/docregistry/docregistry/pkg/metrics"
	"github.com/docregistry/docregistry/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries what the router needs. Store may be nil when the database
// could not be opened; /ready then reports not ready.
type Deps struct {
	Config  *config.Config
	Service service.Service
	Store   Pinger
	Redis   *redis.Client
}

// New builds the engine: middleware, health checks, metrics, API docs, the document
// routes and the optional static fallback.
func New(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	r.Use(middleware.CORS(), gin.Logger(), gin.Recovery(), middleware.Metrics())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && d.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(d.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint: 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		deps := map[string]bool{}
		deps["database"] = d.Store != nil && d.Store.Ping(ctx) == nil
		ready := deps["database"]

		if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
			deps["redis"] = d.Redis != nil && d.Redis.Ping(ctx).Err() == nil
			ready = ready && deps["redis"]
		}

		uptime := time.Since(startTime).Round(time.Second).String()
		if !ready {
			logger.Warnf("readiness check failed: %v", deps)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterSwagger(r)
	handler.RegisterDocumentRoutes(r, d.Service)

	if dir := cfg.Server.StaticDir; dir != "" {
		files := http.FileServer(http.Dir(dir))
		r.NoRoute(func(c *gin.Context) {
			m := c.Request.Method
			if (m == http.MethodGet || m == http.MethodHead) && !strings.HasPrefix(c.Request.URL.Path, "/api/") {
				files.ServeHTTP(c.Writer, c.Request)
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "not found", "details": "no such route"})
		})
	}
	return r
}
