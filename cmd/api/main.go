package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventticketing/config"
	_ "eventticketing/docs"
	"eventticketing/internal/adapters/auth"
	"eventticketing/internal/adapters/email"
	"eventticketing/internal/clock"
	deliveryhttp "eventticketing/internal/delivery/http"
	"eventticketing/internal/delivery/http/controllers"
	"eventticketing/internal/delivery/http/middleware"
	"eventticketing/internal/repository/postgres"
	"eventticketing/internal/services"
	"eventticketing/migrations"
)

const shutdownTimeout = 10 * time.Second

// @title Event Ticketing API
// @version 1.0
// @description Event registration and ticketing backend.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey AdminKey
// @in header
// @name X-API-Key
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open db", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(startupCtx); err != nil {
		logger.Error("db ping", "err", err)
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, db); err != nil {
		logger.Error("apply migrations", "err", err)
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddr,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	clk := clock.NewSystem()

	eventRepo := postgres.NewEventRepository(db)
	regRepo := postgres.NewRegistrationRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)

	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer())
	eventSvc := services.NewEventService(eventRepo, clk)
	ticketSvc := services.NewTicketService(ticketRepo, regRepo, eventRepo, clk)
	regSvc := services.NewRegistrationService(eventRepo, regRepo, ticketSvc, emailSvc, clk)

	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)
	adminKeyVerifier := auth.NewBcryptAPIKeyVerifier(cfg.AdminAPIKeyHash)

	mux := deliveryhttp.NewRouter(
		controllers.NewEventController(logger, eventSvc),
		controllers.NewRegistrationController(logger, regSvc),
		controllers.NewTicketController(logger, ticketSvc),
		controllers.NewAdminController(logger, ticketSvc),
		tokenVerifier,
		adminKeyVerifier,
	)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, mux))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", "port", cfg.Port, "env", cfg.Environment)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "err", err)
	}
	logger.Info("server stopped")
}
