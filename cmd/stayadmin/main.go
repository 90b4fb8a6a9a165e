package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	apartmentsvc "stayadmin/internal/app/services/apartment"
	auditsvc "stayadmin/internal/app/services/audit"
	authsvc "stayadmin/internal/app/services/auth"
	bookingsvc "stayadmin/internal/app/services/booking"
	guestsvc "stayadmin/internal/app/services/guest"
	pricingsvc "stayadmin/internal/app/services/pricing"
	usersvc "stayadmin/internal/app/services/user"
	domainbooking "stayadmin/internal/domain/booking"
	domainpricing "stayadmin/internal/domain/pricing"
	"stayadmin/internal/infra/broker/kafka"
	"stayadmin/internal/infra/config"
	"stayadmin/internal/infra/db/postgres"
	ginserver "stayadmin/internal/infra/http/gin"
	"stayadmin/internal/infra/mail"
	"stayadmin/internal/infra/obs"
	"stayadmin/internal/infra/security"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	if obs.IsDev(env) {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn(".env load failed", "error", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	if err := postgres.Migrate(db); err != nil {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Warn("kafka producer unavailable, audit events stay local", "error", err)
		} else {
			defer producer.Close()
		}
	}

	bookingRepo := postgres.NewBookingRepository(db)
	guestRepo := postgres.NewGuestRepository(db)
	apartmentRepo := postgres.NewApartmentRepository(db)
	pricingRepo := postgres.NewPricingRepository(db)
	userRepo := postgres.NewUserRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	uowFactory := postgres.Factory{DB: db}

	recorder := &auditsvc.Recorder{Topic: cfg.AuditEventTopic, Logger: logger}
	if producer != nil {
		recorder.Producer = producer
	}

	hasher := security.BcryptHasher{}
	tokens := security.TokenIssuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}

	var mailer bookingsvc.ConfirmationMailer
	if cfg.MailConfigured() {
		mailer = &mail.Mailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
			BCC:      cfg.MailBCC,
		}
	} else {
		logger.Warn("mail not configured, confirmation emails disabled")
	}

	calculator := domainpricing.Calculator{ClampSubtotal: cfg.PricingClampSubtotal}

	authService := &authsvc.Service{Users: userRepo, Passwords: hasher, Tokens: tokens, Logger: logger}
	userService := &usersvc.Service{UoW: uowFactory, Users: userRepo, Passwords: hasher, Audit: recorder, Logger: logger}
	guestService := &guestsvc.Service{UoW: uowFactory, Guests: guestRepo, Audit: recorder, Logger: logger}
	apartmentService := &apartmentsvc.Service{UoW: uowFactory, Apartments: apartmentRepo, Bookings: bookingRepo, Audit: recorder, Logger: logger}
	pricingService := &pricingsvc.Service{UoW: uowFactory, Rules: pricingRepo, Calculator: calculator, Audit: recorder, Logger: logger}
	bookingService := &bookingsvc.Service{
		UoW:        uowFactory,
		Bookings:   bookingRepo,
		Apartments: apartmentRepo,
		Rules:      pricingRepo,
		Calculator: calculator,
		Policy:     domainbooking.PolicyFromMode(cfg.BookingTransitionMode),
		Audit:      recorder,
		Mailer:     mailer,
		Logger:     logger,
	}

	handlers := ginserver.Handlers{
		Auth:      ginserver.AuthHandler{Service: authService, Logger: logger},
		Booking:   ginserver.BookingHandler{Service: bookingService, Bookings: bookingRepo, Logger: logger},
		Guest:     ginserver.GuestHandler{Service: guestService, Logger: logger},
		Apartment: ginserver.ApartmentHandler{Service: apartmentService, BookingService: bookingService, Logger: logger},
		Pricing:   ginserver.PricingHandler{Service: pricingService, Logger: logger},
		User:      ginserver.UserHandler{Service: userService, Logger: logger},
		Dashboard: ginserver.DashboardHandler{
			Queries: postgres.NewDashboardQueries(db),
			Audit:   auditRepo,
			Logger:  logger,
		},
		Report:         ginserver.ReportHandler{Queries: postgres.NewReportQueries(db), Logger: logger},
		Audit:          ginserver.AuditHandler{Audit: auditRepo, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Tokens: tokens, Logger: logger}.Handle,
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	}, handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
