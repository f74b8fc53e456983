// Package config centralizes how callsift reads environment variables and
// exposes them as strongly typed Go values.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents runtime configuration for the daemon, the one-shot
// scanner, and the analysis worker.
type Config struct {
	// Watched folders. TranscriptsDir is required for watch/scan;
	// EmailDir is optional and gets its own watcher.
	TranscriptsDir string
	EmailDir       string

	// Watcher behavior.
	StabilityWindow time.Duration
	RescanInterval  time.Duration
	MaxDepth        int

	// Extraction behavior.
	ExtractTimeout time.Duration
	InlineMinBytes int64

	// Postgres store. When empty the daemon runs against the in-memory
	// store and records do not survive a restart.
	DatabaseURL string

	// Redis-backed analysis queue. When RedisAddr is empty analysis jobs
	// run on an in-process worker pool instead.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int

	// Optional MinIO archive of ingested artifacts. Disabled when
	// S3Endpoint is empty.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	S3Region    string
	RawBucket   string
	TextBucket  string
}

const (
	defaultStability      = 5 * time.Second
	defaultRescanInterval = 5 * time.Minute
	defaultMaxDepth       = 2
	defaultExtractTimeout = 2 * time.Minute
	defaultInlineMinBytes = 8 << 10 // inline images below this are signature noise
	defaultConcurrency    = 4
	defaultRawBucket      = "callsift-raw"
	defaultTextBucket     = "callsift-text"
	defaultS3Region       = "us-east-1"
)

// Load reads configuration from environment variables falling back to
// defaults. It follows the (value, error) convention so callers can handle
// failures rather than panicking.
func Load() (*Config, error) {
	cfg := &Config{
		TranscriptsDir:  readEnv("CALLSIFT_TRANSCRIPTS_DIR", ""),
		EmailDir:        readEnv("CALLSIFT_EMAIL_DIR", ""),
		StabilityWindow: parseDuration("CALLSIFT_STABILITY_WINDOW", defaultStability),
		RescanInterval:  parseDuration("CALLSIFT_RESCAN_INTERVAL", defaultRescanInterval),
		MaxDepth:        parseInt("CALLSIFT_MAX_DEPTH", defaultMaxDepth),
		ExtractTimeout:  parseDuration("CALLSIFT_EXTRACT_TIMEOUT", defaultExtractTimeout),
		InlineMinBytes:  parseInt64("CALLSIFT_INLINE_MIN_BYTES", defaultInlineMinBytes),
		DatabaseURL:     readEnv("CALLSIFT_DATABASE_URL", ""),
		RedisAddr:       readEnv("CALLSIFT_REDIS_ADDR", ""),
		RedisPassword:   readEnv("CALLSIFT_REDIS_PASSWORD", ""),
		RedisDB:         parseInt("CALLSIFT_REDIS_DB", 0),
		Concurrency:     parseInt("CALLSIFT_CONCURRENCY", defaultConcurrency),
		S3Endpoint:      readEnv("CALLSIFT_S3_ENDPOINT", ""),
		S3AccessKey:     readEnv("CALLSIFT_S3_ACCESS_KEY", ""),
		S3SecretKey:     readEnv("CALLSIFT_S3_SECRET_KEY", ""),
		S3UseSSL:        parseBool("CALLSIFT_S3_USE_SSL", false),
		S3Region:        readEnv("CALLSIFT_S3_REGION", defaultS3Region),
		RawBucket:       readEnv("CALLSIFT_RAW_BUCKET", defaultRawBucket),
		TextBucket:      readEnv("CALLSIFT_TEXT_BUCKET", defaultTextBucket),
	}
	if cfg.StabilityWindow <= 0 {
		cfg.StabilityWindow = defaultStability
	}
	if cfg.RescanInterval <= 0 {
		cfg.RescanInterval = defaultRescanInterval
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = defaultExtractTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg, nil
}

// ArchiveEnabled reports whether a MinIO endpoint was configured.
func (c *Config) ArchiveEnabled() bool {
	return strings.TrimSpace(c.S3Endpoint) != ""
}

// QueueEnabled reports whether the Redis-backed analysis queue is in use.
func (c *Config) QueueEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
