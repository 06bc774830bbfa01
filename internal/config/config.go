package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Session   SessionConfig
	Lockout   LockoutConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type SessionConfig struct {
	Secret     string
	Expiry     time.Duration // hard session lifetime
	RefreshAge time.Duration // sliding refresh interval
}

type LockoutConfig struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	BackoffBase     time.Duration
	BackoffCap      time.Duration
	CleanupInterval time.Duration
}

type RateLimitConfig struct {
	CommentWindow      time.Duration
	CommentMaxRequests int
	LoginWindow        time.Duration
	LoginMaxRequests   int
	LoginBurstWindow   time.Duration // coarse transport-level cap in front of the login limiter
	LoginBurstMax      int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "inkwell"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
		},
		Session: SessionConfig{
			Secret:     sessionSecret,
			Expiry:     getEnvAsDuration("SESSION_EXPIRY", 24*time.Hour),
			RefreshAge: getEnvAsDuration("SESSION_REFRESH_AGE", 1*time.Hour),
		},
		Lockout: LockoutConfig{
			MaxAttempts:     getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
			LockoutDuration: getEnvAsDuration("LOGIN_LOCKOUT_DURATION", 15*time.Minute),
			BackoffBase:     getEnvAsDuration("LOGIN_BACKOFF_BASE", 1*time.Second),
			BackoffCap:      getEnvAsDuration("LOGIN_BACKOFF_CAP", 10*time.Second),
			CleanupInterval: getEnvAsDuration("LOCKOUT_CLEANUP_INTERVAL", 1*time.Hour),
		},
		RateLimit: RateLimitConfig{
			CommentWindow:      getEnvAsDuration("COMMENT_RATE_WINDOW", 1*time.Minute),
			CommentMaxRequests: getEnvAsInt("COMMENT_RATE_MAX", 5),
			LoginWindow:        getEnvAsDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
			LoginMaxRequests:   getEnvAsInt("LOGIN_RATE_MAX", 10),
			LoginBurstWindow:   getEnvAsDuration("LOGIN_BURST_WINDOW", 1*time.Minute),
			LoginBurstMax:      getEnvAsInt("LOGIN_BURST_MAX", 30),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateSessionSecret(sessionSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateSessionSecret enforces minimum strength for the signing secret
func validateSessionSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32 // 256 bits
	}

	if len(secret) < minLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
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

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
