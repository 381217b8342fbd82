// Package config loads server configuration from the environment and
// builds the wired service, limiter, and stores both servers share.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/help-center/pkg/helpcenter"
	"github.com/tendant/help-center/pkg/helpcenter/ratelimit"
	memoryrepo "github.com/tendant/help-center/pkg/helpcenter/repo/memory"
	postgresrepo "github.com/tendant/help-center/pkg/helpcenter/repo/postgres"
	memorystorage "github.com/tendant/help-center/pkg/helpcenter/storage/memory"
	s3storage "github.com/tendant/help-center/pkg/helpcenter/storage/s3"
)

// ServerConfig holds everything both servers read from the environment.
// An empty DATABASE_URL selects the in-memory repository and blob store,
// which is the development default.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabaseURL string `env:"DATABASE_URL"`

	S3 S3Config

	RedisURL string `env:"REDIS_URL"`

	// EditorKey authenticates every private editor request. Required in
	// production.
	EditorKey string `env:"EDITOR_KEY"`

	// AllowedOrigins is a comma-separated CORS allowlist for the public
	// GraphQL server.
	AllowedOrigins string `env:"ALLOWED_ORIGINS" env-default:"*"`

	RateLimit RateLimitConfig
}

// S3Config configures the media blob bucket. An empty bucket selects the
// in-memory blob store.
type S3Config struct {
	Bucket          string `env:"AWS_S3_BUCKET"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	Endpoint        string `env:"AWS_S3_ENDPOINT"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	PublicBaseURL   string `env:"MEDIA_PUBLIC_BASE_URL"`
	CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

// RateLimitConfig overrides per-class quotas. Zero disables the class.
type RateLimitConfig struct {
	WindowSeconds int `env:"RATE_LIMIT_WINDOW_SECONDS" env-default:"60"`
	PublicRead    int `env:"RATE_LIMIT_PUBLIC_READ" env-default:"120"`
	PublicWrite   int `env:"RATE_LIMIT_PUBLIC_WRITE" env-default:"10"`
	PrivateRead   int `env:"RATE_LIMIT_PRIVATE_READ" env-default:"300"`
	PrivateWrite  int `env:"RATE_LIMIT_PRIVATE_WRITE" env-default:"60"`
	PrivateUpload int `env:"RATE_LIMIT_PRIVATE_UPLOAD" env-default:"20"`
}

// Load reads configuration from the environment and validates it
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings production must not run without
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.Environment == "production" {
		if c.EditorKey == "" {
			return errors.New("EDITOR_KEY is required in production")
		}
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required in production")
		}
	}
	return nil
}

// Origins splits the CORS allowlist
func (c *ServerConfig) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// BuildService wires repository and blob store into a Service
func (c *ServerConfig) BuildService(logger *slog.Logger) (helpcenter.Service, error) {
	repo, err := c.BuildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	store, err := c.BuildBlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}
	return helpcenter.New(
		helpcenter.WithRepository(repo),
		helpcenter.WithBlobStore(store),
		helpcenter.WithLogger(logger),
	)
}

// BuildRepository selects postgres when DATABASE_URL is set, memory otherwise
func (c *ServerConfig) BuildRepository() (helpcenter.Repository, error) {
	if c.DatabaseURL == "" {
		return memoryrepo.New(), nil
	}
	pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return postgresrepo.NewWithPool(pool), nil
}

// BuildBlobStore selects S3 when a bucket is configured, memory otherwise
func (c *ServerConfig) BuildBlobStore() (helpcenter.BlobStore, error) {
	if c.S3.Bucket == "" {
		return memorystorage.New(), nil
	}
	return s3storage.New(s3storage.Config{
		Region:                 c.S3.Region,
		Bucket:                 c.S3.Bucket,
		AccessKeyID:            c.S3.AccessKeyID,
		SecretAccessKey:        c.S3.SecretAccessKey,
		Endpoint:               c.S3.Endpoint,
		UsePathStyle:           c.S3.UsePathStyle,
		PublicBaseURL:          c.S3.PublicBaseURL,
		CreateBucketIfNotExist: c.S3.CreateBucket,
	})
}

// BuildLimiter connects the Redis counter store when REDIS_URL is set.
// Without Redis the limiter still runs but every class is unlimited, which
// is only acceptable outside production.
func (c *ServerConfig) BuildLimiter(ctx context.Context, logger *slog.Logger) (*ratelimit.Limiter, error) {
	policy := c.policy()

	if c.RedisURL == "" {
		if c.Environment == "production" {
			return nil, errors.New("REDIS_URL is required in production")
		}
		logger.Warn("no REDIS_URL configured, rate limiting disabled")
		return ratelimit.New(noopStore{}, ratelimit.Policy{}, ratelimit.WithLogger(logger)), nil
	}

	store, err := ratelimit.NewRedisStoreFromURL(ctx, c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect rate limit store: %w", err)
	}
	return ratelimit.New(store, policy, ratelimit.WithLogger(logger)), nil
}

func (c *ServerConfig) policy() ratelimit.Policy {
	window := time.Duration(c.RateLimit.WindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}
	policy := ratelimit.Policy{}
	for class, limit := range map[ratelimit.Class]int{
		ratelimit.PublicRead:    c.RateLimit.PublicRead,
		ratelimit.PublicWrite:   c.RateLimit.PublicWrite,
		ratelimit.PrivateRead:   c.RateLimit.PrivateRead,
		ratelimit.PrivateWrite:  c.RateLimit.PrivateWrite,
		ratelimit.PrivateUpload: c.RateLimit.PrivateUpload,
	} {
		if limit > 0 {
			policy[class] = ratelimit.Quota{Limit: limit, Window: window}
		}
	}
	return policy
}

type noopStore struct{}

func (noopStore) IncrementAndGet(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 0, nil
}

// PingPostgres verifies database connectivity at startup
func PingPostgres(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
