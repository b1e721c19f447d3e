package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/covergen/covergen-api/internal/config"
	"github.com/covergen/covergen-api/internal/domain/cover"
	"github.com/covergen/covergen-api/internal/domain/credit"
	"github.com/covergen/covergen-api/internal/domain/events"
	"github.com/covergen/covergen-api/internal/domain/paper"
	"github.com/covergen/covergen-api/internal/domain/payment"
	"github.com/covergen/covergen-api/internal/domain/user"
	"github.com/covergen/covergen-api/internal/middleware"
	"github.com/covergen/covergen-api/internal/pkg/arxiv"
	"github.com/covergen/covergen-api/internal/pkg/database"
	"github.com/covergen/covergen-api/internal/pkg/imaging"
	"github.com/covergen/covergen-api/internal/pkg/jwt"
	"github.com/covergen/covergen-api/internal/pkg/logger"
	pkgresponse "github.com/covergen/covergen-api/internal/pkg/response"
	"github.com/covergen/covergen-api/internal/pkg/storage"
	"github.com/covergen/covergen-api/internal/pkg/stripecheckout"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting CoverGen API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTTTL)

	var store storage.Storage
	if cfg.R2AccountID != "" {
		r2, err := storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create R2 storage")
		}
		store = r2
	} else {
		local, err := storage.NewLocalStorage("./uploads", "/uploads")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local storage")
		}
		store = local
		log.Warn().Msg("R2 not configured, storing covers on local disk")
	}

	// ---------- WebSocket hub ----------
	hub := events.NewHub(redis)
	go hub.Run()
	defer hub.Close()

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	creditRepo := credit.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	// ---------- Services ----------
	creditService := credit.NewService(creditRepo, userRepo)

	checkoutClient := stripecheckout.NewClient(cfg.StripeSecretKey)
	paymentService := payment.NewService(paymentRepo, creditService, checkoutClient, cfg.FrontendURL)

	processor := imaging.NewProcessor(imaging.DefaultConfig())
	coverService := cover.NewService(creditService, processor, store)

	arxivClient := arxiv.NewClient(cfg.ArxivAPIURL, time.Duration(cfg.ArxivTimeoutSecond)*time.Second)
	summarizer := paper.NewOpenAISummarizer(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	paperCache := paper.NewCache(redis)
	paperService := paper.NewService(creditService, arxivClient, summarizer, paperCache)

	notifier := events.NewPublisher(hub, userRepo)

	// ---------- Handlers ----------
	creditHandler := credit.NewHandler(creditService)
	paymentHandler := payment.NewHandler(paymentService, notifier)
	coverHandler := cover.NewHandler(coverService, notifier)
	paperHandler := paper.NewHandler(paperService, notifier)
	eventsHandler := events.NewHandler(hub, originChecker(cfg.AllowedOrigins))

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (before Compress). Browsers cannot set headers on
	// websocket dials, so the token arrives as a query parameter.
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(eventsHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Route("/credits", func(r chi.Router) {
			r.Use(authMiddleware)
			creditHandler.Routes(r)
		})

		r.Route("/payments", func(r chi.Router) {
			paymentHandler.Routes(r, authMiddleware)
		})

		r.Route("/covers", func(r chi.Router) {
			r.Use(authMiddleware)
			coverHandler.Routes(r)
		})

		r.Route("/papers", func(r chi.Router) {
			r.Use(authMiddleware)
			paperHandler.Routes(r)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
