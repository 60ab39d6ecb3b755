package http

import (
	"context"
	"net/http"
	"slices"

	"github.com/dkeye/CallRelay/internal/adapters/observer"
	"github.com/dkeye/CallRelay/internal/adapters/stream"
	"github.com/dkeye/CallRelay/internal/app/orch"
	"github.com/dkeye/CallRelay/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	PathHealth  = "/health"
	PathUI      = "/ui"
	PathStream  = "/call-stream"
	PathAPIRoot = "/api"
)

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(UpgradeGate(PathUI, PathStream))
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	observers := observer.NewController(o.Hub, observer.Options{
		SendBuffer:   cfg.SendBuffer,
		PingPeriod:   cfg.PingPeriod,
		WriteTimeout: cfg.WriteTimeout,
	})
	sources := stream.NewController(o, stream.Options{
		ReadLimit:    cfg.ReadLimit,
		WriteTimeout: cfg.WriteTimeout,
	})

	r.GET(PathHealth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET(PathUI, func(c *gin.Context) {
		observers.HandleObserver(ctx, c)
	})
	r.GET(PathStream, func(c *gin.Context) {
		sources.HandleStream(ctx, c)
	})

	api := r.Group(PathAPIRoot)
	h := &apiHandlers{orch: o}
	api.GET("/calls", h.listCalls)
	api.GET("/calls/:id", h.getCall)
	limiter := NewRateLimiter(cfg.AnalyzeRateLimit, cfg.AnalyzeRateWindow)
	api.POST("/analyze", limiter.Middleware(), h.analyze)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}

// UpgradeGate tears down websocket upgrades aimed at any path not in
// allowed. The connection is taken over and closed without a response.
func UpgradeGate(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !websocket.IsWebSocketUpgrade(c.Request) || slices.Contains(allowed, c.Request.URL.Path) {
			c.Next()
			return
		}
		log.Warn().Str("module", "adapters.http").Str("path", c.Request.URL.Path).Msg("upgrade on unknown path")
		conn, _, err := c.Writer.Hijack()
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		_ = conn.Close()
		c.Abort()
	}
}
