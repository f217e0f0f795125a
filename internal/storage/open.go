package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Backend names accepted by Config.Backend.
const (
	BackendMemory   = "memory"
	BackendDisk     = "disk"
	BackendMinio    = "minio"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Backends lists every supported backend name.
var Backends = []string{BackendMemory, BackendDisk, BackendMinio, BackendRedis, BackendPostgres}

// Config selects and configures a backend plus its decorators.
type Config struct {
	Backend string
	BaseURL string

	DataDir     string // disk
	Minio       MinioConfig
	Redis       RedisConfig
	DatabaseURL string // postgres

	CacheSize       int           // 0 disables the LRU cache
	BreakerFailures uint32        // remote backends only; 0 disables the breaker
	BreakerTimeout  time.Duration // cool-down before a half-open probe
}

// Opened is the result of Open: the Store to use, plus anything that must
// be closed at shutdown.
type Opened struct {
	Store   Store
	Backend string
	Breaker *CircuitBreaker // nil when not guarded
	closers []io.Closer
}

// Close releases backend connections.
func (o *Opened) Close() error {
	var first error
	for _, c := range o.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open builds the configured backend. Remote backends (minio, redis,
// postgres) are wrapped in a circuit breaker when BreakerFailures > 0;
// any backend is wrapped in an LRU cache when CacheSize > 0.
func Open(ctx context.Context, cfg Config) (*Opened, error) {
	linker := Linker{BaseURL: cfg.BaseURL}
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendDisk
	}

	out := &Opened{Backend: backend}
	remote := false

	switch backend {
	case BackendMemory:
		out.Store = NewMemory(linker)

	case BackendDisk:
		d, err := NewDisk(cfg.DataDir, linker)
		if err != nil {
			return nil, err
		}
		out.Store = d

	case BackendMinio:
		m, err := NewMinio(ctx, cfg.Minio, linker)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		out.Store = m
		remote = true

	case BackendRedis:
		r, err := NewRedis(ctx, cfg.Redis, linker)
		if err != nil {
			return nil, err
		}
		out.Store = r
		out.closers = append(out.closers, r)
		remote = true

	case BackendPostgres:
		db, err := OpenDB(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		logrus.Info("running_migrations")
		if err := RunMigrations(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		logrus.Info("migrations_complete")
		out.Store = NewPostgres(db, linker)
		out.closers = append(out.closers, db)
		remote = true

	default:
		return nil, fmt.Errorf("unknown storage backend %q (want one of %s)",
			cfg.Backend, strings.Join(Backends, ", "))
	}

	if remote && cfg.BreakerFailures > 0 {
		out.Breaker = NewCircuitBreaker(cfg.BreakerFailures, cfg.BreakerTimeout)
		out.Store = NewGuarded(out.Store, out.Breaker)
	}

	if cfg.CacheSize > 0 {
		c, err := NewCached(out.Store, cfg.CacheSize)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out.Store = c
	}

	logrus.WithFields(logrus.Fields{
		"backend": backend,
		"cache":   cfg.CacheSize,
		"breaker": out.Breaker != nil,
	}).Info("storage_ready")

	return out, nil
}
