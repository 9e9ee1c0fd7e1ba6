package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matchfeed_server/config"
	"matchfeed_server/routes"
	"matchfeed_server/services"
	"matchfeed_server/socket"
	"matchfeed_server/utils"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger settings come from config, so this one uses the fallback logger
		utils.Logger().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := utils.InitLogger(cfg.Env, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		utils.SyncLogger()
		os.Exit(1)
	}
	utils.SyncLogger()
}

// run wires the server and blocks until shutdown. Every resource it opens is
// released before it returns.
func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	// Initialize AWS clients
	logger.Info("Initializing AWS clients...", zap.String("region", cfg.AWSRegion))
	awsCfg, err := services.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		return err
	}
	s3Service := services.NewS3Service(awsCfg, cfg.S3Bucket, cfg.URLValidity, logger)

	// Initialize stores
	var (
		profiles services.ProfileStore
		requests services.AccessStore
	)
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("Using in-memory store, data is not persisted")
		memory := services.NewMemoryStore()
		profiles, requests = memory, memory
	default:
		dynamoService := services.NewDynamoService(awsCfg, logger)
		profiles = &services.DynamoProfileStore{
			Dynamo:      dynamoService,
			Table:       cfg.ProfilesTable,
			StatusIndex: cfg.StatusIndex,
		}
		requests = &services.DynamoAccessStore{
			Dynamo:          dynamoService,
			PhotoTable:      cfg.PhotoRequestsTable,
			ConnectionTable: cfg.ConnectionRequestsTable,
		}
	}

	urlCache, err := services.NewSignedURLCache(s3Service, cfg.URLCacheSize,
		services.WithCacheTTL(cfg.URLCacheTTL),
		services.WithCacheLogger(logger))
	if err != nil {
		return err
	}
	defer urlCache.Close()

	verifier := &services.TokenVerifier{Secret: []byte(cfg.JWTSecret)}
	socketServer := socket.NewServer(verifier, logger)
	go func() {
		if err := socketServer.Serve(); err != nil {
			logger.Error("Socket server stopped", zap.Error(err))
		}
	}()
	defer socketServer.Close()

	// Initialize Services
	feedService := &services.FeedService{
		Profiles:   profiles,
		Delegates:  &services.DelegateAuthorizer{Profiles: profiles},
		Selector:   &services.CandidateSelector{Store: profiles, FetchSize: services.DefaultFetchSize, Logger: logger},
		Randomizer: &services.Randomizer{},
		Access:     &services.AccessResolver{Store: requests},
		Disclosure: &services.DisclosureEngine{URLs: urlCache, Logger: logger},
		Logger:     logger,
	}
	requestService := &services.AccessRequestService{
		Store:    requests,
		Profiles: profiles,
		Notifier: socketServer,
		Logger:   logger,
	}
	photoService := &services.PhotoService{Profiles: profiles, Objects: s3Service, Logger: logger}

	deps := routes.Dependencies{
		Feed:           feedService,
		Requests:       requestService,
		Photos:         photoService,
		Verifier:       verifier,
		Socket:         socketServer.Handler(),
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	}
	if cfg.RedisURL != "" {
		limiter, err := services.NewRedisRateLimiter(cfg.RedisURL, cfg.FeedRateLimit, cfg.FeedRateWindow)
		if err != nil {
			return err
		}
		defer limiter.Close()
		deps.Limiter = limiter
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	return serve(server, quit, logger)
}

// serve runs server until a signal arrives or it fails to listen, then shuts
// it down. Listen failures are returned rather than exiting so that callers'
// deferred closers still run.
func serve(server *http.Server, quit <-chan os.Signal, logger *zap.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case runErr = <-serverErr:
		logger.Error("Server failed", zap.Error(runErr))
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	return runErr
}
