package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	AWS      AWSConfig
	Email    EmailConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/trhy?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings. Redis only backs the public-form
// rate limiter, so an empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AdminConfig holds the administrative credential and session token settings.
// Password is compared verbatim against the presented bearer credential;
// PasswordHash, when set, takes precedence and is verified with bcrypt.
type AdminConfig struct {
	Password         string
	PasswordHash     string
	JWTSecret        string
	TokenExpireHours int
}

// AWSConfig holds AWS credentials and the presentations bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	PresentationsBucket  string
	PresignExpireMinutes int
}

// EmailConfig holds Resend settings. An empty APIKey disables sending entirely;
// emails are skipped, never queued.
type EmailConfig struct {
	APIKey      string
	FromAddress string
	FromName    string
}

// AppConfig holds the public base URL used to build upload links in emails,
// the calendar cutoff for video uploads, and the intake rate limit.
type AppConfig struct {
	BaseURL            string
	UploadDeadline     time.Time
	RateLimitPerMinute int
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (DATABASE_URL env), it is used as-is.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// From returns the RFC 5322 sender, e.g. "Dětské trhy <onboarding@resend.dev>".
func (c EmailConfig) From() string {
	if c.FromName == "" {
		return c.FromAddress
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromAddress)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	deadline, err := time.Parse(time.RFC3339, getEnv("UPLOAD_DEADLINE", "2026-02-28T23:59:59+01:00"))
	if err != nil {
		return nil, fmt.Errorf("parse UPLOAD_DEADLINE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "trhy"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Admin: AdminConfig{
			Password:         getEnv("ADMIN_PASSWORD", ""),
			PasswordHash:     getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:        getEnv("ADMIN_JWT_SECRET", "change-me-in-production"),
			TokenExpireHours: getEnvInt("ADMIN_TOKEN_EXPIRE_HOURS", 12),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			PresentationsBucket:  getEnv("AWS_S3_PRESENTATIONS_BUCKET", "trhy-presentations"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Email: EmailConfig{
			APIKey:      getEnv("RESEND_API_KEY", ""),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "onboarding@resend.dev"),
			FromName:    getEnv("EMAIL_FROM_NAME", "Dětské trhy"),
		},
		App: AppConfig{
			BaseURL:            strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
			UploadDeadline:     deadline,
			RateLimitPerMinute: getEnvInt("REGISTRATION_RATE_LIMIT_PER_MINUTE", 10),
		},
	}
	if cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
