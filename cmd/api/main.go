package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/config"
	"github.com/skillswap/skillswap-api/internal/domain/exchange"
	"github.com/skillswap/skillswap-api/internal/domain/ledger"
	"github.com/skillswap/skillswap-api/internal/domain/notification"
	"github.com/skillswap/skillswap-api/internal/domain/review"
	"github.com/skillswap/skillswap-api/internal/domain/topup"
	"github.com/skillswap/skillswap-api/internal/domain/user"
	"github.com/skillswap/skillswap-api/internal/middleware"
	"github.com/skillswap/skillswap-api/internal/pkg/database"
	"github.com/skillswap/skillswap-api/internal/pkg/jwt"
	"github.com/skillswap/skillswap-api/internal/pkg/logger"
	"github.com/skillswap/skillswap-api/internal/pkg/payment"
	"github.com/skillswap/skillswap-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	})

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	registry := payment.NewRegistry()
	if cfg.StripeSecretKey != "" {
		registry.Register(payment.NewStripeProvider(payment.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
		}))
	}
	registry.Register(payment.NewBkashProvider())
	log.Info().Strs("providers", registry.List()).Msg("Payment providers registered")

	// Repositories
	userRepo := user.NewRepository(db)
	ledgerRepo := ledger.NewRepository(db)
	exchangeRepo := exchange.NewRepository(db)
	topupRepo := topup.NewRepository(db)
	reviewRepo := review.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// Services
	notificationService := notification.NewService(notificationRepo, redisClient)
	ledgerService := ledger.NewService(ledgerRepo)
	exchangeService := exchange.NewService(exchangeRepo, userRepo, ledgerService, notificationService, cfg.CreditRate, cfg.Currency)
	topupService := topup.NewService(
		topupRepo,
		ledgerService,
		registry,
		notificationService,
		topup.Limits{
			MinCredits: int64(cfg.MinTopUpCredits),
			MaxCredits: int64(cfg.MaxTopUpCredits),
		},
		cfg.CreditRate,
		cfg.Currency,
		cfg.FrontendURL+"/topups/success",
		cfg.FrontendURL+"/topups/cancel",
	)
	reviewService := review.NewService(reviewRepo, exchangeRepo, userRepo)

	// Handlers
	ledgerHandler := ledger.NewHandler(ledgerService)
	exchangeHandler := exchange.NewHandler(exchangeService)
	topupHandler := topup.NewHandler(topupService, registry)
	reviewHandler := review.NewHandler(reviewService)
	notificationHandler := notification.NewHandler(notificationService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "UNHEALTHY", "Database unreachable")
			return
		}
		response.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Webhooks authenticate via provider signatures, not JWT
		r.Mount("/webhooks", topup.WebhookRoutes(topupHandler))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(jwtService))

			r.Mount("/credits", ledger.Routes(ledgerHandler))
			r.Mount("/exchanges", exchange.Routes(exchangeHandler))
			r.Mount("/topups", topup.Routes(topupHandler))
			r.Mount("/reviews", review.Routes(reviewHandler))
			r.Mount("/notifications", notification.Routes(notificationHandler))
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
