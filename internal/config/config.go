// Package config loads the flock server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL string // FLOCK_DATABASE_URL (required)
	GRPCAddr    string // FLOCK_GRPC_ADDR (default ":9090")
	HTTPAddr    string // FLOCK_HTTP_ADDR (default ":8080")
	NATSURL     string // FLOCK_NATS_URL (optional, empty = no events)
	AuthToken   string // FLOCK_AUTH_TOKEN (optional, empty = auth disabled)

	LogLevel  string // FLOCK_LOG_LEVEL (default "info")
	LogFormat string // FLOCK_LOG_FORMAT (default "text"; "json" for structured)

	// Listing defaults
	DefaultPerPage int // FLOCK_DEFAULT_PER_PAGE (default 10)
	MaxPerPage     int // FLOCK_MAX_PER_PAGE (default 100)

	// Backup settings
	SyncInterval   time.Duration // FLOCK_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // FLOCK_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // FLOCK_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // FLOCK_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // FLOCK_SYNC_S3_KEY (default "flock/backup.jsonl")
	SyncFile       string        // FLOCK_SYNC_FILE (local JSONL backup path, optional)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("FLOCK_DATABASE_URL"),
		GRPCAddr:       envOrDefault("FLOCK_GRPC_ADDR", ":9090"),
		HTTPAddr:       envOrDefault("FLOCK_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("FLOCK_NATS_URL"),
		AuthToken:      os.Getenv("FLOCK_AUTH_TOKEN"),
		LogLevel:       envOrDefault("FLOCK_LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("FLOCK_LOG_FORMAT", "text"),
		SyncS3Bucket:   os.Getenv("FLOCK_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("FLOCK_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("FLOCK_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("FLOCK_SYNC_S3_KEY", "flock/backup.jsonl"),
		SyncFile:       os.Getenv("FLOCK_SYNC_FILE"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("FLOCK_DATABASE_URL is required")
	}

	var err error
	if c.DefaultPerPage, err = envInt("FLOCK_DEFAULT_PER_PAGE", 10); err != nil {
		return nil, err
	}
	if c.MaxPerPage, err = envInt("FLOCK_MAX_PER_PAGE", 100); err != nil {
		return nil, err
	}
	if c.DefaultPerPage > c.MaxPerPage {
		return nil, fmt.Errorf("FLOCK_DEFAULT_PER_PAGE (%d) exceeds FLOCK_MAX_PER_PAGE (%d)", c.DefaultPerPage, c.MaxPerPage)
	}

	d, err := time.ParseDuration(envOrDefault("FLOCK_SYNC_INTERVAL", "3m"))
	if err != nil {
		return nil, fmt.Errorf("FLOCK_SYNC_INTERVAL: %w", err)
	}
	c.SyncInterval = d

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
