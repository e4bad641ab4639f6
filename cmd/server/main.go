package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/yukikurage/projecttime-api/internal/auth"
	"github.com/yukikurage/projecttime-api/internal/config"
	"github.com/yukikurage/projecttime-api/internal/database"
	"github.com/yukikurage/projecttime-api/internal/events"
	"github.com/yukikurage/projecttime-api/internal/logger"
	"github.com/yukikurage/projecttime-api/internal/router"
	"github.com/yukikurage/projecttime-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logCfg.Output = cfg.LogOutput
	logCfg.FilePath = cfg.LogFile
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		fatal("Failed to connect to database", err)
	}

	// Run migrations
	if err := database.Migrate(database.GetDB()); err != nil {
		fatal("Failed to run migrations", err)
	}

	// Task events go to NATS when a broker is configured
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		nats, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			fatal("Failed to connect to NATS", err)
		}
		publisher = nats
	}
	defer publisher.Close()

	// Initialize AI service
	var generator services.TaskGenerator
	if cfg.OpenAIAPIKey != "" {
		generator = services.NewAIService(cfg.OpenAIAPIKey)
	}

	if cfg.JWTSecret == "default-secret-key-change-me" {
		slog.Warn("JWT_SECRET is not set, using the development default")
	}

	engine, err := router.New(router.Deps{
		DB:        database.GetDB(),
		Tokens:    auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL),
		Publisher: publisher,
		Generator: generator,
	})
	if err != nil {
		fatal("Failed to build router", err)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
