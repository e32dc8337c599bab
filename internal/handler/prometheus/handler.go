package prometheus

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/salon-api/pkg/metrics"
)

// Handler records HTTP metrics and exposes the registry they live in.
type Handler struct {
	gatherer prometheus.Gatherer
	metrics  *metrics.Metrics
}

func New(gatherer prometheus.Gatherer, m *metrics.Metrics) *Handler {
	return &Handler{gatherer: gatherer, metrics: m}
}

// Middleware labels by route template so path parameters do not explode
// cardinality. Unmatched routes are recorded as "unmatched".
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		code := strconv.Itoa(status)

		h.metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, code).Observe(time.Since(start).Seconds())
		h.metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, code).Inc()

		switch {
		case status >= 500:
			h.metrics.HTTPErrors.WithLabelValues(c.Request.Method, path, "server").Inc()
		case status >= 400:
			h.metrics.HTTPErrors.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}
