package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"booking-users/internal/core/config"
	"booking-users/internal/core/server"
	mdw "booking-users/internal/transport/http/middleware"
	resp "booking-users/internal/transport/http/response"
)

type Options struct {
	Server server.Options
	Limits config.Limits
	Ping   func(context.Context) error // /health 探活，nil 时只报告进程存活
}

// newEngine 公共部分：恢复 + CORS + 请求 id / 日志 / 指标 + 保护性中间件 + /health /metrics
func newEngine(l *zap.Logger, o Options) *gin.Engine {
	r := server.NewRouter(l, o.Server)
	r.Use(mdw.RequestID(), mdw.AccessLog(l), mdw.Metrics())
	r.Use(protective(o.Limits)...)

	r.GET("/health", health(o.Ping))
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}

func protective(lim config.Limits) []gin.HandlerFunc {
	var hs []gin.HandlerFunc
	if lim.RateRPS > 0 {
		hs = append(hs, mdw.RateLimit(rate.Limit(lim.RateRPS), max(1, lim.RateBurst)))
	}
	if lim.PerIPRPS > 0 {
		hs = append(hs, mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), max(1, lim.PerIPBurst)))
	}
	if lim.MaxConcurrent > 0 {
		hs = append(hs, mdw.ConcurrencyLimit(lim.MaxConcurrent))
	}
	if lim.MaxBodyBytes > 0 {
		hs = append(hs, mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.RequestTimeoutSec > 0 {
		hs = append(hs, mdw.Timeout(time.Duration(lim.RequestTimeoutSec)*time.Second))
	}
	return hs
}

func health(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				resp.Abort(c, resp.CodeUnavailable, "unhealthy")
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"status": "ok"}))
	}
}
