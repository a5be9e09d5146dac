package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ricardo-ochoa/implaeden-backend/internal/config"
	"github.com/ricardo-ochoa/implaeden-backend/internal/email"
	"github.com/ricardo-ochoa/implaeden-backend/internal/handler"
	appointmentHandler "github.com/ricardo-ochoa/implaeden-backend/internal/handler/appointment"
	authHandler "github.com/ricardo-ochoa/implaeden-backend/internal/handler/auth"
	eventHandler "github.com/ricardo-ochoa/implaeden-backend/internal/handler/event"
	paymentHandler "github.com/ricardo-ochoa/implaeden-backend/internal/handler/payment"
	treatmentHandler "github.com/ricardo-ochoa/implaeden-backend/internal/handler/treatment"
	"github.com/ricardo-ochoa/implaeden-backend/internal/middleware"
	"github.com/ricardo-ochoa/implaeden-backend/internal/repository/postgres"
	"github.com/ricardo-ochoa/implaeden-backend/internal/router"
	appointmentService "github.com/ricardo-ochoa/implaeden-backend/internal/service/appointment"
	authService "github.com/ricardo-ochoa/implaeden-backend/internal/service/auth"
	eventService "github.com/ricardo-ochoa/implaeden-backend/internal/service/event"
	"github.com/ricardo-ochoa/implaeden-backend/internal/service/grouping"
	paymentService "github.com/ricardo-ochoa/implaeden-backend/internal/service/payment"
	treatmentService "github.com/ricardo-ochoa/implaeden-backend/internal/service/treatment"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/auth"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/metrics"
)

func main() {
	// A missing .env is fine; containers pass real environment variables.
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("implaeden")

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go postgres.MonitorConnections(monitorCtx, db, m.DatabaseConnections, 15*time.Second)

	treatmentRepo := postgres.NewTreatmentRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	userRepo := postgres.NewUserRepository(db)

	groups := grouping.NewResolver(treatmentRepo)
	eventSvc := eventService.NewService(eventRepo, groups)
	recorder := eventService.NewRecorder(eventSvc, m.EventAppendsTotal, m.EventAppendFailures)

	mailer := email.NewSMTPSender(cfg.SMTP)

	treatmentSvc := treatmentService.NewService(treatmentRepo, catalogRepo, recorder)
	paymentSvc := paymentService.NewService(paymentRepo, catalogRepo, recorder, mailer)
	appointmentSvc := appointmentService.NewService(appointmentRepo, catalogRepo)

	jwtSvc := auth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour,
		time.Duration(cfg.JWT.RefreshExpiryHours)*time.Hour,
	)
	authSvc := authService.NewService(userRepo, jwtSvc)

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		handler.NewHandler(),
		authHandler.NewHandler(authSvc),
		treatmentHandler.NewHandler(treatmentSvc),
		paymentHandler.NewHandler(paymentSvc),
		eventHandler.NewHandler(eventSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		router.Config{
			CORS:              middleware.DefaultCORSConfig(),
			RateLimitEnabled:  cfg.RateLimit.Enabled,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			RateBurst:         cfg.RateLimit.Burst,
			Metrics:           m,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
