package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/handler/health"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/handler/prometheus"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/middleware"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/metrics"
)

// Handler is implemented by every API handler group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        float64
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
}

type Router struct {
	engine   *gin.Engine
	config   RouterConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
	health   *health.Handler
	prom     *prometheus.Handler
	handlers []Handler
}

func NewRouter(
	config RouterConfig,
	log *logger.Logger,
	m *metrics.Metrics,
	healthH *health.Handler,
	promH *prometheus.Handler,
	handlers ...Handler,
) *Router {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = middleware.DefaultTimeoutConfig().Duration
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = middleware.DefaultSizeLimitConfig().MaxBodySize
	}

	return &Router{
		engine:   gin.New(),
		config:   config,
		logger:   log,
		metrics:  m,
		health:   healthH,
		prom:     promH,
		handlers: handlers,
	}
}

// Setup installs middleware and routes and returns the engine.
func (r *Router) Setup() *gin.Engine {
	r.engine.Use(
		middleware.RequestID(),
		middleware.Recovery(r.logger),
		middleware.Logger(r.logger),
		middleware.Metrics(r.metrics),
		middleware.CORS(r.config.CORSConfig),
	)

	r.health.RegisterRoutes(&r.engine.RouterGroup)
	r.engine.GET("/metrics", r.prom.Handler())

	api := r.engine.Group("/api/v1")
	api.Use(
		middleware.ErrorHandler(r.logger),
		middleware.Timeout(middleware.TimeoutConfig{Duration: r.config.RequestTimeout}),
		middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: r.config.MaxBodyBytes}),
	)
	if r.config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(r.config.RateLimit),
			Burst: r.config.RateBurst,
		})
		api.Use(limiter.RateLimit())
	}

	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
	return r.engine
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
