package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-hackathon-backend/config"
	_ "go-hackathon-backend/docs" // Important for Swagger
	v1 "go-hackathon-backend/internal/delivery/http/v1"
	"go-hackathon-backend/internal/repository/postgres"
	"go-hackathon-backend/internal/usecase"
	"go-hackathon-backend/pkg/auth"
	"go-hackathon-backend/pkg/database"
	"go-hackathon-backend/pkg/email"
	"go-hackathon-backend/pkg/logger"
	"go-hackathon-backend/pkg/redis"
	"go-hackathon-backend/pkg/rolecast"
)

// @title           Hackathon Backend API
// @version         1.0
// @description     Backend for hackathon application management using Clean Architecture.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting hackathon backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (rate limiting; in-memory fallback when absent)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	applicantRepo := postgres.NewApplicantRepository(dbPool)
	reviewRepo := postgres.NewReviewRepository(dbPool)

	// 6. Setup collaborator services
	emailService := email.NewService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - lifecycle emails will fail")
	}
	roleClient := rolecast.NewClient(cfg)

	// 7. Setup UseCases
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	applicantUC := usecase.NewApplicantUsecase(applicantRepo, reviewRepo, emailService, roleClient, cfg)
	reviewUC := usecase.NewReviewUsecase(applicantRepo, reviewRepo, cfg, rng)

	// 8. Setup Auth Provider (JWKS)
	jwksURL := cfg.AuthProviderURL + "/auth/v1/.well-known/jwks.json"
	jwksProvider := auth.NewProvider(jwksURL)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ApplicantUC:  applicantUC,
		ReviewUC:     reviewUC,
		JWKSProvider: jwksProvider,
		Config:       cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
