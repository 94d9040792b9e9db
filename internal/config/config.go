package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Session   SessionConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
	Issuer       string
}

type SessionConfig struct {
	DefaultLifetime    time.Duration
	RememberMeLifetime time.Duration
}

type AuthConfig struct {
	MaxFailedLogins    int
	LockDuration       time.Duration
	BcryptCost         int
	ResetTokenLifetime time.Duration
}

type RateLimitConfig struct {
	Window time.Duration
	Max    int
	Store  string // "memory" or "redis"
}

func Load() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "watchtower"),
			Password: getEnv("DB_PASSWORD", "watchtower"),
			DBName:   getEnv("DB_NAME", "watchtower"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", ""),
			AccessExpiry: getDurationEnv("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:       getEnv("JWT_ISSUER", "watchtower"),
		},
		Session: SessionConfig{
			DefaultLifetime:    getDurationEnv("SESSION_DEFAULT_LIFETIME", 24*time.Hour),
			RememberMeLifetime: getDurationEnv("SESSION_REMEMBER_ME_LIFETIME", 30*24*time.Hour),
		},
		Auth: AuthConfig{
			MaxFailedLogins:    getIntEnv("AUTH_MAX_FAILED_LOGINS", 5),
			LockDuration:       getDurationEnv("AUTH_LOCK_DURATION", 15*time.Minute),
			BcryptCost:         getIntEnv("AUTH_BCRYPT_COST", 12),
			ResetTokenLifetime: getDurationEnv("AUTH_RESET_TOKEN_LIFETIME", time.Hour),
		},
		RateLimit: RateLimitConfig{
			Window: getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			Max:    getIntEnv("RATE_LIMIT_MAX", 100),
			Store:  getEnv("RATE_LIMIT_STORE", "memory"),
		},
	}

	// No silent fallback secret: a production process without an explicit
	// signing secret must refuse to start.
	if cfg.JWT.Secret == "" {
		if cfg.Server.Environment == "production" {
			return nil, ErrMissingJWTSecret
		}
		cfg.JWT.Secret = "dev-only-insecure-secret"
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
