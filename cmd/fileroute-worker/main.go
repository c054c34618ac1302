package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openflowlabs/fileroute/internal/config"
	"github.com/openflowlabs/fileroute/internal/eval/bean"
	"github.com/openflowlabs/fileroute/internal/eval/datefmt"
	"github.com/openflowlabs/fileroute/internal/eval/template"
	"github.com/openflowlabs/fileroute/internal/filelang"
	"github.com/openflowlabs/fileroute/internal/router"
	"github.com/openflowlabs/fileroute/internal/worker"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting file route worker",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("worker_id", cfg.WorkerID),
	)

	// Log configuration (without sensitive data)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// Initialize the file expression language and its engines
	lang := filelang.New(template.NewEngine(), newBeanRegistry(), datefmt.NewEngine())
	logger.Info("file expression language initialized")

	// Load default routing rules (optional; events may carry their own)
	var defaultRules *router.RouteConfig
	if cfg.RulesPath != "" {
		defaultRules, err = router.LoadRules(cfg.RulesPath)
		if err != nil {
			logger.Fatal("failed to load routing rules", zap.Error(err))
		}
		logger.Info("routing rules loaded",
			zap.String("path", cfg.RulesPath),
			zap.Int("rules", len(defaultRules.Rules)),
		)
	} else {
		logger.Warn("no rules path configured (events must carry their own config)")
	}

	// Initialize router
	routerInstance := router.New(lang, logger)
	logger.Info("router initialized")

	// Initialize worker
	w := worker.NewWorker(cfg, redisClient, routerInstance, defaultRules, logger)

	// Start worker
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	// Start health server
	healthServer := worker.NewHealthServer(cfg.HealthPort, cfg.WorkerID, redisClient, defaultRules != nil, logger)
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("file route worker running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping worker")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop health server
	if err := healthServer.Stop(); err != nil {
		logger.Error("failed to stop health server", zap.Error(err))
	}

	// Stop worker
	if err := w.Stop(); err != nil {
		logger.Error("failed to stop worker", zap.Error(err))
	}

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis connection", zap.Error(err))
	}

	select {
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, forcing exit")
	default:
		logger.Info("worker stopped gracefully")
	}
}

// initLogger initializes the logger
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// newBeanRegistry creates the bean registry with the builtin beans that
// rule files may reference.
func newBeanRegistry() *bean.Registry {
	registry := bean.NewRegistry()

	// bean:uuid - a fresh identifier per evaluation
	registry.Register("uuid", bean.Func(func(*filelang.Context) (string, error) {
		return uuid.NewString(), nil
	}))

	// bean:modified - last modified timestamp as unix seconds
	registry.Register("modified", bean.Func(func(fc *filelang.Context) (string, error) {
		return fmt.Sprintf("%d", fc.LastModified.Unix()), nil
	}))

	return registry
}
