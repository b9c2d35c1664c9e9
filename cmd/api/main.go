package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jeevanrakshak/donor-api/internal/config"
	"github.com/jeevanrakshak/donor-api/internal/email"
	"github.com/jeevanrakshak/donor-api/internal/handler"
	authHandler "github.com/jeevanrakshak/donor-api/internal/handler/auth"
	bankHandler "github.com/jeevanrakshak/donor-api/internal/handler/bank"
	donationHandler "github.com/jeevanrakshak/donor-api/internal/handler/donation"
	donorHandler "github.com/jeevanrakshak/donor-api/internal/handler/donor"
	requestHandler "github.com/jeevanrakshak/donor-api/internal/handler/request"
	"github.com/jeevanrakshak/donor-api/internal/middleware"
	"github.com/jeevanrakshak/donor-api/internal/repository/postgres"
	"github.com/jeevanrakshak/donor-api/internal/router"
	auditService "github.com/jeevanrakshak/donor-api/internal/service/audit"
	authService "github.com/jeevanrakshak/donor-api/internal/service/auth"
	bankService "github.com/jeevanrakshak/donor-api/internal/service/bank"
	donorService "github.com/jeevanrakshak/donor-api/internal/service/donor"
	eventService "github.com/jeevanrakshak/donor-api/internal/service/event"
	lifecycleService "github.com/jeevanrakshak/donor-api/internal/service/lifecycle"
	requestService "github.com/jeevanrakshak/donor-api/internal/service/request"
	"github.com/jeevanrakshak/donor-api/pkg/auth"
	"github.com/jeevanrakshak/donor-api/pkg/logger"
	"github.com/jeevanrakshak/donor-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := validator.RegisterCustomValidations(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validations")
	}

	// Repositories
	base := postgres.NewBaseRepository(db)
	requestRepo := postgres.NewRequestRepository(base)
	donationRepo := postgres.NewDonationRepository(base)
	donorRepo := postgres.NewDonorRepository(base)
	bankRepo := postgres.NewBankRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)
	auditRepo := postgres.NewAuditRepository(base)

	// Services
	emailSvc := email.NewService(cfg.Email)
	jwtSvc := auth.NewJWTService(cfg.JWT)
	eventSvc := eventService.NewService(outboxRepo)
	auditSvc := auditService.NewService(auditRepo, appLogger)
	authSvc := authService.NewService(donorRepo, jwtSvc, emailSvc, appLogger)
	requestSvc := requestService.NewService(&base, requestRepo, eventSvc)
	lifecycleSvc := lifecycleService.NewService(&base, requestRepo, donationRepo, donorRepo, emailSvc, auditSvc, appLogger)
	donorSvc := donorService.NewService(donorRepo, requestRepo, donationRepo)
	bankSvc := bankService.NewService(bankRepo)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc)
	requestH := requestHandler.NewHandler(requestSvc, lifecycleSvc, donorSvc)
	donationH := donationHandler.NewHandler(lifecycleSvc, donorSvc, donationRepo)
	donorH := donorHandler.NewHandler(donorSvc, requestSvc)
	bankH := bankHandler.NewHandler(bankSvc, cfg.Admin.Emails)

	var limit rate.Limit
	if cfg.RateLimit.Enabled {
		limit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	}

	r := router.NewRouter(
		authMiddleware,
		authH,
		requestH,
		donationH,
		donorH,
		bankH,
		h,
		router.RouterConfig{
			RateLimit:     limit,
			RateBurst:     cfg.RateLimit.Burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "donor_api",
		},
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("API server started")

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
