package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"word-counter/internal/server"
	"word-counter/internal/service"
	"word-counter/internal/storage"
	"word-counter/internal/wordcount"
)

// appConfig is everything main reads from the environment.
type appConfig struct {
	Addr           string
	Storage        storage.Config
	MaxUploadBytes int64
	RateLimit      int
	SortResults    bool
	TrustProxy     bool
	Version        string
	Commit         string
}

func main() {
	// Route logs of packages using logrus directly (storage) through the
	// same formatter and level as the server logger.
	base := server.DefaultLogger.Logrus()
	logrus.SetFormatter(base.Formatter)
	logrus.SetLevel(base.GetLevel())
	logrus.SetOutput(base.Out)

	if err := server.ValidateAllConfiguration(); err != nil {
		server.Error("config_invalid", map[string]interface{}{"service": "backend"}, err)
		os.Exit(1)
	}
	server.WarnOnOptionalMissingConfig()

	cfg, err := loadConfig()
	if err != nil {
		server.Error("config_invalid", map[string]interface{}{"service": "backend"}, err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		server.Error("server_error", map[string]interface{}{"service": "backend"}, err)
		os.Exit(1)
	}
}

func run(cfg appConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	opened, err := storage.Open(ctx, cfg.Storage)
	cancel()
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = opened.Close() }()

	formatter := wordcount.DefaultFormatter
	formatter.SortKeys = cfg.SortResults
	svc := service.New(opened.Store, service.Options{Formatter: formatter})

	pinger, _ := opened.Store.(storage.Pinger)
	srv := server.New(server.Config{
		Addr:           cfg.Addr,
		Service:        svc,
		Pinger:         pinger,
		Breaker:        opened.Breaker,
		Backend:        opened.Backend,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RateLimit:      cfg.RateLimit,
		TrustProxy:     cfg.TrustProxy,
		Version:        cfg.Version,
		Commit:         cfg.Commit,
	})

	// Start the HTTP server in a background goroutine.
	// This allows us to listen for OS signals while the server runs.
	errCh := make(chan error, 1)
	go func() {
		server.Info("starting", map[string]interface{}{
			"service": "backend",
			"addr":    cfg.Addr,
			"storage": opened.Backend,
			"version": cfg.Version,
			"commit":  cfg.Commit,
		})
		errCh <- srv.Start()
	}()

	// Graceful shutdown on SIGINT (Ctrl+C) or SIGTERM (container stop).
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		server.Info("shutting_down", map[string]interface{}{"service": "backend", "signal": sig.String()})
		// Give the server 5 seconds to finish in-flight requests.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		server.Info("shutdown_complete", map[string]interface{}{"service": "backend"})
		return nil
	case err := <-errCh:
		return err
	}
}

// loadConfig reads the WC_* environment. Values have already been checked
// by server.ValidateAllConfiguration; parse errors are still reported.
func loadConfig() (appConfig, error) {
	var (
		cfg appConfig
		err error
	)

	cfg.Addr = getenvDefault("WC_ADDR", ":8080")
	cfg.Version = getenvDefault("WC_VERSION", "dev")
	cfg.Commit = getenvDefault("WC_COMMIT", "unknown")

	redisDB, err := getenvInt("WC_REDIS_DB", 0)
	if err != nil {
		return cfg, err
	}
	cacheSize, err := getenvInt("WC_CACHE_SIZE", 0)
	if err != nil {
		return cfg, err
	}
	breakerFailures, err := getenvInt("WC_BREAKER_FAILURES", 5)
	if err != nil {
		return cfg, err
	}
	breakerTimeout, err := time.ParseDuration(getenvDefault("WC_BREAKER_TIMEOUT", "30s"))
	if err != nil {
		return cfg, fmt.Errorf("WC_BREAKER_TIMEOUT: %w", err)
	}

	cfg.Storage = storage.Config{
		Backend: getenvDefault("WC_STORAGE", storage.BackendDisk),
		BaseURL: getenvDefault("WC_BASE_URL", "http://localhost:8080"),
		DataDir: getenvDefault("WC_DATA_DIR", "data"),
		Minio: storage.MinioConfig{
			Endpoint:  os.Getenv("WC_S3_ENDPOINT"),
			AccessKey: os.Getenv("WC_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("WC_S3_SECRET_KEY"),
			Bucket:    getenvDefault("WC_BUCKET", "wordcounter"),
		},
		Redis: storage.RedisConfig{
			Addr:     os.Getenv("WC_REDIS_ADDR"),
			Password: os.Getenv("WC_REDIS_PASSWORD"),
			DB:       redisDB,
			Prefix:   os.Getenv("WC_REDIS_PREFIX"),
		},
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		CacheSize:       cacheSize,
		BreakerFailures: uint32(breakerFailures),
		BreakerTimeout:  breakerTimeout,
	}

	maxUpload, err := getenvInt("WC_MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return cfg, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if cfg.RateLimit, err = getenvInt("WC_RATE_LIMIT", 0); err != nil {
		return cfg, err
	}

	if raw := os.Getenv("WC_SORT_RESULTS"); raw != "" {
		if cfg.SortResults, err = strconv.ParseBool(raw); err != nil {
			return cfg, fmt.Errorf("WC_SORT_RESULTS: %w", err)
		}
	}

	if raw := os.Getenv("WC_TRUST_PROXY"); raw != "" {
		if cfg.TrustProxy, err = strconv.ParseBool(raw); err != nil {
			return cfg, fmt.Errorf("WC_TRUST_PROXY: %w", err)
		}
	}

	return cfg, nil
}

// getenvDefault reads an environment variable and returns a default value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// getenvInt parses a non-negative integer variable, returning def if unset.
func getenvInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return n, nil
}
