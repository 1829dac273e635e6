package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/alexmoretti/habitgrid/internal/adapters/cache"
	adapterHTTP "github.com/alexmoretti/habitgrid/internal/adapters/handler/http"
	"github.com/alexmoretti/habitgrid/internal/adapters/repository"
	"github.com/alexmoretti/habitgrid/internal/core/domain"
	"github.com/alexmoretti/habitgrid/internal/core/services"
	"github.com/alexmoretti/habitgrid/internal/core/workers"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	_ = godotenv.Load()

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")

	serverPort := envOr("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is required")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	var habitRepo domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	userRepo := repository.NewPostgresUserRepository(db)

	redisClient, err := cache.NewRedisClient(
		envOr("REDIS_HOST", "localhost"),
		envOr("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)
	if err != nil {
		log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
		redisClient = nil
	} else {
		habitRepo = repository.NewCachedHabitRepository(habitRepo, redisClient)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	streakWorker := workers.NewStreakWorker(habitRepo)
	streakWorker.Start(ctx)

	tokenHours, err := strconv.Atoi(envOr("TOKEN_DURATION_HOURS", "72"))
	if err != nil {
		log.Fatalf("Critical: invalid TOKEN_DURATION_HOURS: %v", err)
	}

	tokenService := services.NewTokenService(jwtSecret, "habitgrid", time.Duration(tokenHours)*time.Hour, userRepo)
	authService := services.NewAuthService(userRepo)
	habitService := services.NewHabitService(habitRepo, streakWorker)
	analyticsService := services.NewAnalyticsService(habitRepo)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authService, tokenService),
		HabitHandler:     adapterHTTP.NewHabitHandler(habitService, analyticsService),
		AnalyticsHandler: adapterHTTP.NewAnalyticsHandler(analyticsService),
		TokenService:     tokenService,
		DB:               db,
		Redis:            redisClient,
		StartTime:        startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("habitgrid API running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
