package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomrent",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roomrent",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "roomrent",
			Name:      "http_requests_inflight",
			Help:      "In-flight HTTP requests",
		},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, httpInflight) }

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 抓取端点自身不计数
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		httpInflight.Inc()
		start := time.Now()
		c.Next()
		httpInflight.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 404 等未命中路由，避免标签基数爆炸
		}
		httpReqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
