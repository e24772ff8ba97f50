package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	appointmentHandler "github.com/jwalitptl/clinic-booking/internal/handler/appointment"
	authHandler "github.com/jwalitptl/clinic-booking/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/clinic-booking/internal/handler/doctor"
	"github.com/jwalitptl/clinic-booking/internal/handler/health"
	patientHandler "github.com/jwalitptl/clinic-booking/internal/handler/patient"
	prescriptionHandler "github.com/jwalitptl/clinic-booking/internal/handler/prescription"
	"github.com/jwalitptl/clinic-booking/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-booking/internal/middleware"
	bookingValidator "github.com/jwalitptl/clinic-booking/pkg/validator"
)

type RouterConfig struct {
	// Global limits the whole API; zero disables it.
	GlobalRate  rate.Limit
	GlobalBurst int
	// AuthRate limits login and signup per client IP; zero disables it.
	AuthRate    rate.Limit
	AuthBurst   int
	CORSConfig  middleware.CORSConfig
	MetricsPath string

	// MaxBodyBytes caps request bodies; zero means 1MB.
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

type Handlers struct {
	Auth         *authHandler.Handler
	Doctor       *doctorHandler.Handler
	Patient      *patientHandler.Handler
	Appointment  *appointmentHandler.Handler
	Prescription *prescriptionHandler.Handler
	Health       *health.Handler
	// Prometheus is optional; without it /metrics is not served.
	Prometheus *prometheus.Handler
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	config   RouterConfig
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config RouterConfig) *Router {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := bookingValidator.Register(v); err != nil {
			log.Fatal().Err(err).Msg("failed to register validators")
		}
	}

	engine := gin.New()
	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		config:   config,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.SecurityHeaders(),
		middleware.CORS(config.CORSConfig),
	)
	if handlers.Prometheus != nil {
		engine.Use(middleware.Metrics(handlers.Prometheus.Metrics()))
	}
	if config.GlobalRate > 0 {
		engine.Use(middleware.Global(middleware.RateLimiterConfig{Rate: config.GlobalRate, Burst: config.GlobalBurst}))
	}

	return r
}

func (r *Router) Setup() {
	if r.handlers.Prometheus != nil {
		path := r.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, r.handlers.Prometheus.Handler())
	}

	api := r.engine.Group("/api/v1")
	api.Use(
		middleware.Version("1.0"),
		middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: r.config.MaxBodyBytes}),
		middleware.Timeout(middleware.TimeoutConfig{Duration: r.config.RequestTimeout}),
	)

	r.handlers.Health.RegisterRoutes(api)

	var authLimit []gin.HandlerFunc
	if r.config.AuthRate > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: r.config.AuthRate, Burst: r.config.AuthBurst})
		authLimit = append(authLimit, limiter.PerClient())
	}

	r.handlers.Auth.RegisterRoutes(api, authLimit...)
	r.handlers.Patient.RegisterRoutes(api, r.auth, authLimit...)
	r.handlers.Doctor.RegisterRoutes(api, r.auth)
	r.handlers.Appointment.RegisterRoutes(api, r.auth)
	r.handlers.Prescription.RegisterRoutes(api, r.auth)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
