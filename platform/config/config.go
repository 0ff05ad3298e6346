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

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides Redis connection settings shared by the guard store,
// the workload cache and asynq.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetWorkloadRefreshSpec() string
	GetSessionSweepSpec() string
}

// AdminConfig provides settings for admin bearer token validation.
type AdminConfig interface {
	GetAdminJWTSecret() string
	GetAdminJWTIssuer() string
}

// ConversationConfig provides settings for the chat conversation flow.
type ConversationConfig interface {
	GetSessionIdleTimeout() time.Duration
	GetMessageQuota() int
	GetMessageQuotaWindow() time.Duration
	GetPublicRatePerSecond() float64
	GetPublicRateBurst() int
	GetPhoneRegion() string
}

// ExpertsConfig provides settings for expert matching.
type ExpertsConfig interface {
	GetWorkloadCacheTTL() time.Duration
	GetExpertMatchLimit() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	RedisURL            string
	RedisTLSInsecure    bool
	AsynqQueueName      string
	AsynqConcurrency    int
	WorkloadRefreshSpec string
	SessionSweepSpec    string
	AdminJWTSecret      string
	AdminJWTIssuer      string
	SessionIdleTimeout  time.Duration
	MessageQuota        int
	MessageQuotaWindow  time.Duration
	PublicRatePerSecond float64
	PublicRateBurst     int
	PhoneRegion         string
	WorkloadCacheTTL    time.Duration
	ExpertMatchLimit    int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string      { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int       { return c.AsynqConcurrency }
func (c *Config) GetWorkloadRefreshSpec() string { return c.WorkloadRefreshSpec }
func (c *Config) GetSessionSweepSpec() string    { return c.SessionSweepSpec }

// AdminConfig implementation
func (c *Config) GetAdminJWTSecret() string { return c.AdminJWTSecret }
func (c *Config) GetAdminJWTIssuer() string { return c.AdminJWTIssuer }

// ConversationConfig implementation
func (c *Config) GetSessionIdleTimeout() time.Duration { return c.SessionIdleTimeout }
func (c *Config) GetMessageQuota() int                 { return c.MessageQuota }
func (c *Config) GetMessageQuotaWindow() time.Duration { return c.MessageQuotaWindow }
func (c *Config) GetPublicRatePerSecond() float64      { return c.PublicRatePerSecond }
func (c *Config) GetPublicRateBurst() int              { return c.PublicRateBurst }
func (c *Config) GetPhoneRegion() string               { return c.PhoneRegion }

// ExpertsConfig implementation
func (c *Config) GetWorkloadCacheTTL() time.Duration { return c.WorkloadCacheTTL }
func (c *Config) GetExpertMatchLimit() int           { return c.ExpertMatchLimit }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:    mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		WorkloadRefreshSpec: getEnv("WORKLOAD_REFRESH_SPEC", "@every 5m"),
		SessionSweepSpec:    getEnv("SESSION_SWEEP_SPEC", "@every 15m"),
		AdminJWTSecret:      getEnv("ADMIN_JWT_SECRET", ""),
		AdminJWTIssuer:      getEnv("ADMIN_JWT_ISSUER", "leadchat"),
		SessionIdleTimeout:  mustDuration(getEnv("SESSION_IDLE_TIMEOUT", "24h")),
		MessageQuota:        mustInt(getEnv("MESSAGE_QUOTA", "120")),
		MessageQuotaWindow:  mustDuration(getEnv("MESSAGE_QUOTA_WINDOW", "1h")),
		PublicRatePerSecond: mustFloat(getEnv("PUBLIC_RATE_PER_SECOND", "2")),
		PublicRateBurst:     mustInt(getEnv("PUBLIC_RATE_BURST", "10")),
		PhoneRegion:         strings.ToUpper(getEnv("PHONE_REGION", "US")),
		WorkloadCacheTTL:    mustDuration(getEnv("WORKLOAD_CACHE_TTL", "10m")),
		ExpertMatchLimit:    mustInt(getEnv("EXPERT_MATCH_LIMIT", "5")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AdminJWTSecret == "" {
		return nil, fmt.Errorf("ADMIN_JWT_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.SessionIdleTimeout <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be a positive duration")
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

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
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
