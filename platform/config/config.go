// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetScoringCron() string
	GetForecastCron() string
	GetEngineRunInterval() time.Duration
}

// EngineConfig provides settings for the scoring and forecasting runs.
type EngineConfig interface {
	GetScoringEnabled() bool
	GetIndustryPriorsFile() string
}

// StorageConfig provides settings for the forecast archive bucket.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketForecastArchive() string
	IsMinIOEnabled() bool
}

// KafkaConfig provides settings for publishing engine events.
type KafkaConfig interface {
	GetKafkaBrokers() []string
	GetKafkaEventsTopic() string
	IsKafkaEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                        string
	HTTPAddr                   string
	DatabaseURL                string
	JWTAccessSecret            string
	CORSAllowAll               bool
	CORSOrigins                []string
	CORSAllowCreds             bool
	RedisURL                   string
	RedisTLSInsecure           bool
	AsynqQueueName             string
	AsynqConcurrency           int
	ScoringCron                string
	ForecastCron               string
	EngineRunInterval          time.Duration
	ScoringEnabled             bool
	IndustryPriorsFile         string
	MinIOEndpoint              string
	MinIOAccessKey             string
	MinIOSecretKey             string
	MinIOUseSSL                bool
	MinioBucketForecastArchive string
	KafkaBrokers               []string
	KafkaEventsTopic           string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                 { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool           { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string           { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int            { return c.AsynqConcurrency }
func (c *Config) GetScoringCron() string              { return c.ScoringCron }
func (c *Config) GetForecastCron() string             { return c.ForecastCron }
func (c *Config) GetEngineRunInterval() time.Duration { return c.EngineRunInterval }

// EngineConfig implementation
func (c *Config) GetScoringEnabled() bool       { return c.ScoringEnabled }
func (c *Config) GetIndustryPriorsFile() string { return c.IndustryPriorsFile }

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketForecastArchive() string {
	return c.MinioBucketForecastArchive
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// KafkaConfig implementation
func (c *Config) GetKafkaBrokers() []string   { return c.KafkaBrokers }
func (c *Config) GetKafkaEventsTopic() string { return c.KafkaEventsTopic }
func (c *Config) IsKafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaEventsTopic != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                        getEnv("APP_ENV", "development"),
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		JWTAccessSecret:            getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:               corsAllowAll,
		CORSOrigins:                corsOrigins,
		CORSAllowCreds:             strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:                   getEnv("REDIS_URL", ""),
		RedisTLSInsecure:           strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:             getEnv("ASYNQ_QUEUE", "lead-engine"),
		AsynqConcurrency:           mustInt(getEnv("ASYNQ_CONCURRENCY", "2")),
		ScoringCron:                getEnv("SCORING_CRON", "@every 5m"),
		ForecastCron:               getEnv("FORECAST_CRON", "@every 15m"),
		EngineRunInterval:          mustDuration(getEnv("ENGINE_RUN_INTERVAL", "5m")),
		ScoringEnabled:             !strings.EqualFold(getEnv("SCORING_ENABLED", "true"), "false"),
		IndustryPriorsFile:         getEnv("INDUSTRY_PRIORS_FILE", ""),
		MinIOEndpoint:              getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:             getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:             getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:                strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketForecastArchive: getEnv("MINIO_BUCKET_FORECAST_ARCHIVE", "forecast-archive"),
		KafkaBrokers:               splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaEventsTopic:           getEnv("KAFKA_TOPIC_ENGINE_EVENTS", "lead-engine.events"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if !cfg.CORSAllowAll && len(cfg.CORSOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ORIGINS must list at least one origin when CORS_ALLOW_ALL is false")
	}
	if cfg.EngineRunInterval <= 0 {
		return nil, fmt.Errorf("ENGINE_RUN_INTERVAL must be a positive duration")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
