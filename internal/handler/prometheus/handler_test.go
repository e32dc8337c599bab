package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/salon-api/pkg/metrics"
)

func TestMiddlewareAndExposition(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg, "salon")
	h := New(reg, m)

	engine := gin.New()
	engine.Use(h.Middleware())
	engine.GET("/offers/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	engine.GET("/metrics", h.Handler())

	for i := 0; i < 2; i++ {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/offers/abc", nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/offers/:id", "404")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPErrors.WithLabelValues("GET", "/offers/:id", "client")))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `salon_http_requests_total{method="GET",path="/offers/:id",status="404"} 2`)
}
