package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-booking/internal/config"
	appointmentHandler "github.com/jwalitptl/clinic-booking/internal/handler/appointment"
	authHandler "github.com/jwalitptl/clinic-booking/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/clinic-booking/internal/handler/doctor"
	"github.com/jwalitptl/clinic-booking/internal/handler/health"
	patientHandler "github.com/jwalitptl/clinic-booking/internal/handler/patient"
	prescriptionHandler "github.com/jwalitptl/clinic-booking/internal/handler/prescription"
	"github.com/jwalitptl/clinic-booking/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-booking/internal/middleware"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	"github.com/jwalitptl/clinic-booking/internal/repository/cache"
	"github.com/jwalitptl/clinic-booking/internal/repository/memory"
	"github.com/jwalitptl/clinic-booking/internal/repository/mongodb"
	"github.com/jwalitptl/clinic-booking/internal/repository/postgres"
	"github.com/jwalitptl/clinic-booking/internal/router"
	appointmentService "github.com/jwalitptl/clinic-booking/internal/service/appointment"
	authService "github.com/jwalitptl/clinic-booking/internal/service/auth"
	"github.com/jwalitptl/clinic-booking/internal/service/availability"
	doctorService "github.com/jwalitptl/clinic-booking/internal/service/doctor"
	"github.com/jwalitptl/clinic-booking/internal/service/filter"
	patientService "github.com/jwalitptl/clinic-booking/internal/service/patient"
	prescriptionService "github.com/jwalitptl/clinic-booking/internal/service/prescription"
	"github.com/jwalitptl/clinic-booking/pkg/auth"
	"github.com/jwalitptl/clinic-booking/pkg/circuitbreaker"
	"github.com/jwalitptl/clinic-booking/pkg/lock"
	"github.com/jwalitptl/clinic-booking/pkg/logger"
	"github.com/jwalitptl/clinic-booking/pkg/metrics"
	"github.com/jwalitptl/clinic-booking/pkg/security"
)

// storage groups the repositories of the selected driver.
type storage struct {
	tx            repository.TxManager
	admins        repository.AdminRepository
	doctors       repository.DoctorRepository
	patients      repository.PatientRepository
	appointments  repository.AppointmentRepository
	prescriptions repository.PrescriptionRepository
	checks        map[string]health.Check
	close         func()
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	gin.SetMode(cfg.Server.Mode)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scheduling timezone")
	}

	ctx := context.Background()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open storage")
	}
	defer store.close()

	var prom *prometheus.Handler
	var m *metrics.Metrics
	if cfg.Monitoring.PrometheusEnabled {
		prom = prometheus.New("clinic_booking")
		m = prom.Metrics()
	}

	locker, closeLocker, err := newLocker(ctx, cfg, m, store.checks)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up slot locking")
	}
	defer closeLocker()

	jwtSvc, err := auth.NewJWTService(auth.Config{Secret: cfg.JWT.Secret, TTL: cfg.JWT.TTL})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token service")
	}
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)

	doctors := cache.NewDoctorRepository(store.doctors, cfg.Cache.DoctorTTL)

	// Initialize services
	engine := availability.NewEngine(doctors, store.appointments, loc)
	resolver := filter.NewResolver(doctors, store.appointments)
	authSvc := authService.NewService(store.admins, doctors, store.patients, jwtSvc, hasher, m)
	appointmentSvc := appointmentService.NewService(store.tx, doctors, store.appointments, engine, locker,
		appointmentService.WithMetrics(m))
	doctorSvc := doctorService.NewService(store.tx, doctors, store.patients, store.appointments, hasher)
	patientSvc := patientService.NewService(store.tx, store.patients, doctors, hasher)
	prescriptionSvc := prescriptionService.NewService(store.prescriptions, store.appointments, appointmentSvc)

	if err := authSvc.BootstrapAdmin(ctx, store.tx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin")
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		router.Handlers{
			Auth:         authHandler.NewHandler(authSvc),
			Doctor:       doctorHandler.NewHandler(doctorSvc, resolver, engine),
			Patient:      patientHandler.NewHandler(patientSvc, resolver, loc),
			Appointment:  appointmentHandler.NewHandler(appointmentSvc, loc),
			Prescription: prescriptionHandler.NewHandler(prescriptionSvc),
			Health:       health.NewHandler(store.checks),
			Prometheus:   prom,
		},
		routerConfig(cfg),
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("driver", cfg.Database.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.Database.Driver == config.DriverMemory {
		s := memory.NewStore()
		log.Warn().Msg("using in-memory storage; data is lost on exit")
		return &storage{
			tx:            s,
			admins:        s.Admins(),
			doctors:       s.Doctors(),
			patients:      s.Patients(),
			appointments:  s.Appointments(),
			prescriptions: s.Prescriptions(),
			checks:        map[string]health.Check{},
			close:         func() {},
		}, nil
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	mongoClient, err := mongodb.NewClient(ctx, cfg.Mongo)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := mongodb.EnsureIndexes(ctx, mongoClient, cfg.Mongo.Database); err != nil {
		db.Close()
		_ = mongodb.Disconnect(mongoClient)
		return nil, err
	}

	return &storage{
		tx:            postgres.NewTxManager(db),
		admins:        postgres.NewAdminRepository(db),
		doctors:       postgres.NewDoctorRepository(db),
		patients:      postgres.NewPatientRepository(db),
		appointments:  postgres.NewAppointmentRepository(db),
		prescriptions: mongodb.NewPrescriptionRepository(mongoClient, cfg.Mongo.Database),
		checks: map[string]health.Check{
			"postgres": db.PingContext,
			"mongo":    func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
		},
		close: func() {
			if err := mongodb.Disconnect(mongoClient); err != nil {
				log.Error().Err(err).Msg("failed to disconnect from mongo")
			}
			db.Close()
		},
	}, nil
}

// newLocker returns the Redis-backed slot lock when Redis is configured and an
// in-process lock otherwise. The Redis lock falls back to the local one while
// its circuit breaker is open.
func newLocker(ctx context.Context, cfg *config.Config, m *metrics.Metrics, checks map[string]health.Check) (lock.Locker, func(), error) {
	local := lock.NewLocalLocker(cfg.Redis.LockWait)
	if cfg.Redis.URL == "" {
		return local, func() {}, nil
	}

	client, err := lock.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.PoolSize)
	if err != nil {
		return nil, nil, err
	}
	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "redis-lock",
		MaxFailures: cfg.Redis.BreakerFailures,
		Timeout:     cfg.Redis.BreakerTimeout,
	})
	locker := lock.NewRedisLocker(client, lock.RedisConfig{
		TTL:  cfg.Redis.LockTTL,
		Wait: cfg.Redis.LockWait,
	}, breaker, local)
	locker.OnOutcome(m.Lock)

	return locker, func() { client.Close() }, nil
}

func routerConfig(cfg *config.Config) router.RouterConfig {
	rc := router.RouterConfig{
		CORSConfig: middleware.CORSConfig{
			AllowOrigins: cfg.Security.AllowedOrigins,
			AllowMethods: cfg.Security.AllowedMethods,
			AllowHeaders: cfg.Security.AllowedHeaders,
			MaxAge:       int((12 * time.Hour).Seconds()),
		},
		MetricsPath:    cfg.Monitoring.MetricsPath,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if cfg.RateLimit.Enabled {
		rc.GlobalRate = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		rc.GlobalBurst = cfg.RateLimit.Burst
		rc.AuthRate = rate.Every(time.Minute / time.Duration(max(cfg.RateLimit.AuthPerMinute, 1)))
		rc.AuthBurst = max(cfg.RateLimit.AuthPerMinute, 1)
	}
	return rc
}
