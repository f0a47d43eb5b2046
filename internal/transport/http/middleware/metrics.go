package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	exportTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "user_exports_total", Help: "Count of user exports by format and result"},
		[]string{"format", "result"},
	)
	exportBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_export_bytes",
			Help:    "Size of rendered user exports",
			Buckets: prometheus.ExponentialBuckets(1<<10, 4, 8),
		}, []string{"format"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, exportTotal, exportBytes) }

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		// 未命中路由时不用原始 URL，避免 label 膨胀
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpReqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// ObserveExport 记录一次导出结果
func ObserveExport(format string, size int, err error) {
	if err != nil {
		exportTotal.WithLabelValues(format, "error").Inc()
		return
	}
	exportTotal.WithLabelValues(format, "ok").Inc()
	exportBytes.WithLabelValues(format).Observe(float64(size))
}

func MetricsHandler() gin.HandlerFunc { return gin.WrapH(promhttp.Handler()) }
