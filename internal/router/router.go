package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ricardo-ochoa/implaeden-backend/internal/handler"
	"github.com/ricardo-ochoa/implaeden-backend/internal/middleware"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/metrics"
)

// Handler is anything that mounts its endpoints on a route group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	h            *handler.Handler
	authH        Handler
	treatmentH   Handler
	paymentH     Handler
	eventH       Handler
	appointmentH Handler
}

type Config struct {
	CORS              middleware.CORSConfig
	RateLimitEnabled  bool
	RequestsPerSecond float64
	RateBurst         int
	Metrics           *metrics.Metrics
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	h *handler.Handler,
	authH Handler,
	treatmentH Handler,
	paymentH Handler,
	eventH Handler,
	appointmentH Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(config.CORS),
	)
	if config.Metrics != nil {
		engine.Use(metricsMiddleware(config.Metrics))
	}
	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(config.RequestsPerSecond, config.RateBurst)
		engine.Use(limiter.Middleware())
	}

	return &Router{
		engine:       engine,
		auth:         auth,
		h:            h,
		authH:        authH,
		treatmentH:   treatmentH,
		paymentH:     paymentH,
		eventH:       eventH,
		appointmentH: appointmentH,
	}
}

func (r *Router) Setup() {
	r.engine.GET("/health", r.h.HealthCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	r.authH.RegisterRoutes(api.Group("/auth"))

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	patients := protected.Group("/patients/:patientId")
	r.treatmentH.RegisterRoutes(patients.Group("/treatments"))
	r.paymentH.RegisterRoutes(patients.Group("/payments"))
	r.eventH.RegisterRoutes(patients.Group("/events"))
	r.appointmentH.RegisterRoutes(patients.Group("/appointments"))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
