package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/talenthub-api/internal/config"
	"github.com/talenthub-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/talenthub-api/internal/infrastructure/jwt"
	s3infra "github.com/talenthub-api/internal/infrastructure/s3"
	"github.com/talenthub-api/internal/realtime"
	transporthttp "github.com/talenthub-api/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	logger, err := newLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Every API route past the health check needs verified claims, so a
	// missing verification key is fatal rather than a degraded mode.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		logger.Fatal("load JWT verification key", zap.Error(err))
	}

	// S3 attachment store.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// In-process presence registry and event dispatcher. Sessions live and die
	// with this process; the durable stores are the replay path.
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry, logger)

	deps := &transporthttp.Deps{
		MessageRepo:      dynamo.NewMessageRepo(dynamoClient, cfg.DynamoTables.Messages),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		ProfileRepo:      dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Profiles),
		S3Store:          s3Store,
		Registry:         registry,
		Dispatcher:       dispatcher,
		JWTProvider:      jwtProvider,
		Logger:           logger,
	}

	router := transporthttp.NewRouter(cfg, deps)

	// WriteTimeout stays unset: upgraded WebSocket connections outlive any
	// sane request deadline.
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.AppPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
