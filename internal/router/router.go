package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/salon-api/internal/config"
	"github.com/jwalitptl/salon-api/internal/handler"
	"github.com/jwalitptl/salon-api/internal/handler/health"
	"github.com/jwalitptl/salon-api/internal/handler/prometheus"
	"github.com/jwalitptl/salon-api/internal/middleware"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/httputil"
	"github.com/jwalitptl/salon-api/pkg/validator"
)

type RouterConfig struct {
	RateLimit   config.RateLimitConfig
	CORSConfig  middleware.CORSConfig
	MaxBodySize int64
}

type Router struct {
	engine    *gin.Engine
	principal middleware.PrincipalResolver
	healthH   *health.Handler
	metricsH  *prometheus.Handler
	resources []handler.Routes
}

func NewRouter(
	principal middleware.PrincipalResolver,
	healthH *health.Handler,
	metricsH *prometheus.Handler,
	resources []handler.Routes,
	config RouterConfig,
) (*Router, error) {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validator.RegisterWithGin(model.ValidationRules()); err != nil {
		return nil, err
	}

	engine := gin.New()
	r := &Router{
		engine:    engine,
		principal: principal,
		healthH:   healthH,
		metricsH:  metricsH,
		resources: resources,
	}

	// Request ID first so every later middleware can log it.
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		metricsH.Middleware(),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(config.RateLimit.RequestsPerSecond),
			Burst: config.RateLimit.Burst,
		})
		engine.Use(limiter.RateLimit())
	}

	maxBody := config.MaxBodySize
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodySize
	}
	engine.Use(middleware.SizeLimit(maxBody))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httputil.ErrorResponse{Error: "route not found"})
	})

	return r, nil
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// Everything except health checks may carry a bearer token.
	routes := api.Group("")
	routes.Use(middleware.Principal(r.principal))
	for _, h := range r.resources {
		h.RegisterRoutes(routes)
	}
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	r.healthH.RegisterRoutes(rg)
	rg.GET("/health/metrics", r.metricsH.Handler())
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
