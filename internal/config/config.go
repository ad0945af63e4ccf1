package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevJWTSecret and DevAdminSignupKey are the documented development-only
// fallbacks. Load refuses to start a production profile without explicit
// overrides for both.
const (
	DevJWTSecret      = "eventuraa_jwt_secret_dev_environment_only"
	DevAdminSignupKey = "eventuraa_admin_secret_key"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Auth           AuthConfig
	AdminBootstrap AdminBootstrapConfig
	CORS           CORSConfig
	RateLimit      RateLimitConfig
	Logging        LoggingConfig
	Tracing        TracingConfig
	Environment    string

	// Warnings collects insecure-default notices produced during Load so the
	// caller can log them loudly once the logger exists.
	Warnings []string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdle        int
	QueryTimeout   time.Duration
}

type AuthConfig struct {
	JWTSecret      string
	JWTExpiry      time.Duration
	JWTIssuer      string
	AdminSignupKey string
}

type AdminBootstrapConfig struct {
	Name     string
	Email    string
	Password string
}

type CORSConfig struct {
	// AllowAllOrigins reflects any origin back in development.
	AllowAllOrigins bool
	AllowedOrigins  []string
}

type RateLimitConfig struct {
	// Requests per minute per client for general API traffic. Zero disables.
	PublicPerMinute int
	// Signup/signin attempts per client per 15 minutes. Zero disables.
	LoginPer15Minutes int
	// Forwarding headers are only honored from peers inside these CIDRs.
	TrustedProxyCIDRs []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TracingConfig struct {
	Enabled      bool
	Exporter     string
	ServiceName  string
	OTLPEndpoint string
	SampleRate   float64
}

func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			MaxIdle:        getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			QueryTimeout:   time.Duration(getEnvInt("DATABASE_QUERY_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			JWTExpiry:      time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 720)) * time.Hour,
			JWTIssuer:      getEnv("JWT_ISSUER", "eventuraa"),
			AdminSignupKey: getEnv("ADMIN_SECRET_KEY", ""),
		},
		AdminBootstrap: AdminBootstrapConfig{
			Name:     getEnv("ADMIN_NAME", ""),
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute:   getEnvInt("RATE_LIMIT_PUBLIC", 60),
			LoginPer15Minutes: getEnvInt("RATE_LIMIT_LOGIN", 10),
			TrustedProxyCIDRs: splitList(getEnv("TRUSTED_PROXY_CIDRS", "")),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", false),
			Exporter:     getEnv("TRACING_EXPORTER", "stdout"),
			ServiceName:  getEnv("TRACING_SERVICE_NAME", "eventuraa-server"),
			OTLPEndpoint: getEnv("TRACING_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	cfg.CORS = CORSConfig{
		AllowAllOrigins: cfg.Environment != "production",
		AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.Auth.JWTSecret == "" {
		if cfg.Environment == "production" {
			return Config{}, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.Auth.JWTSecret = DevJWTSecret
		cfg.Warnings = append(cfg.Warnings,
			"JWT_SECRET not set; using the insecure development fallback. Tokens signed with this secret are forgeable.")
	}

	if cfg.Auth.AdminSignupKey == "" {
		if cfg.Environment == "production" {
			return Config{}, fmt.Errorf("ADMIN_SECRET_KEY is required in production")
		}
		cfg.Auth.AdminSignupKey = DevAdminSignupKey
		cfg.Warnings = append(cfg.Warnings,
			"ADMIN_SECRET_KEY not set; using the insecure development fallback. Anyone knowing it can self-register an admin.")
	}

	return cfg, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
