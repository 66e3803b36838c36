package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WsConnections = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "comms_ws_connections",
		Help: "Current number of active websocket connections per hub",
	}, []string{"hub"})
	ChatMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comms_chat_messages_total",
		Help: "Total number of chat messages persisted and broadcast",
	})
	SignalRelaysTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comms_signal_relays_total",
		Help: "Total number of WebRTC payloads relayed, by kind",
	}, []string{"kind"})
	FloodDropsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comms_flood_drops_total",
		Help: "Total number of actions denied by the flood guard",
	}, []string{"action"})
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(WsConnections, ChatMessagesTotal, SignalRelaysTotal, FloodDropsTotal, HttpRequestsTotal, HttpRequestDuration)
}

// GinMiddleware records basic request metrics for Prometheus scraping.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": path, "status": status}
		HttpRequestsTotal.With(labels).Inc()
		HttpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}
