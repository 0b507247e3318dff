package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/freelance/adapters/blobs"
	"github.com/layer-3/freelance/adapters/events"
	"github.com/layer-3/freelance/adapters/nonce"
	"github.com/layer-3/freelance/adapters/signature"
	"github.com/layer-3/freelance/adapters/store"
	"github.com/layer-3/freelance/adapters/tokenizer"
	"github.com/layer-3/freelance/adapters/users"
	"github.com/layer-3/freelance/config"
	"github.com/layer-3/freelance/internal/database"
	"github.com/layer-3/freelance/internal/logging"
	"github.com/layer-3/freelance/ports"
	"github.com/layer-3/freelance/service"
	httptransport "github.com/layer-3/freelance/transport/http"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Relational storage for accounts and portfolio images
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	userStore := users.NewGormStore(db)
	blobStore := blobs.NewGormStore(db)
	if err := userStore.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate", zap.Error(err))
	}
	if err := blobStore.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate", zap.Error(err))
	}

	tokens, err := tokenizer.NewJWTTokenizer(tokenizer.Config{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	if err != nil {
		logger.Fatal("Failed to create tokenizer", zap.Error(err))
	}

	// Redis shares nonces, revocations and events between instances.
	// Without it everything stays in process.
	var (
		nonces      ports.NonceRegistry
		revocations ports.RevocationStore
		publisher   message.Publisher
	)
	wmLogger := watermill.NewStdLogger(false, false)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to parse Redis URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to reach Redis", zap.Error(err))
		}

		nonces = nonce.NewRedisRegistry(redisClient, cfg.NonceLife)
		revocations = store.NewRedisStore(redisClient)
		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			wmLogger,
		)
		if err != nil {
			logger.Fatal("Failed to create Redis publisher", zap.Error(err))
		}
	} else {
		registry := nonce.NewMemoryRegistry(cfg.NonceLife)
		go registry.Run(ctx, time.Minute)

		nonces = registry
		revocations = store.NewMemoryStore()
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		logger.Warn("REDIS_URL not set, nonces and revocations are local to this instance")
	}
	defer publisher.Close()

	var opts []service.Option
	if cfg.RotateRefreshTokens {
		opts = append(opts, service.WithRefreshRotation())
	}

	authService, err := service.NewAuthService(service.Dependencies{
		Nonces:      nonces,
		Verifier:    signature.NewEthVerifier(),
		Tokens:      tokens,
		Users:       userStore,
		Blobs:       blobStore,
		Revocations: revocations,
		Events:      events.NewWatermillPublisher(publisher),
		Logger:      logger,
	}, opts...)
	if err != nil {
		logger.Fatal("Failed to create auth service", zap.Error(err))
	}

	sameSite, err := httptransport.ParseSameSite(cfg.CookieSameSite)
	if err != nil {
		logger.Fatal("Invalid cookie settings", zap.Error(err))
	}

	handlers := httptransport.NewAuthHandlers(
		authService,
		service.NewProfileService(userStore, blobStore),
		httptransport.NewSessionTransport(cfg.CookieName, sameSite, cfg.RefreshTTL),
		logger,
		cfg.MaxUploadBytes,
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httptransport.SetupRouter(handlers, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logger.Info("Listening", zap.String("addr", srv.Addr), zap.Bool("rotate_refresh_tokens", cfg.RotateRefreshTokens))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down cleanly", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
