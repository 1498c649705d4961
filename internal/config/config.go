package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds the Redis connection used for rate limiting.
// An empty Addr disables rate limiting.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds JWT signing and password hashing settings.
type AuthConfig struct {
	JWTSecret     string
	JWTIssuer     string
	TokenTTL      time.Duration
	BcryptCost    int
	LoginLimit    int
	LoginWindow   time.Duration
	BootstrapUser string
	BootstrapPass string
}

// SESConfig holds AWS SES settings for customer notifications.
// An empty Region disables email delivery.
type SESConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	FromEmail string
}

// WebhookConfig holds the shared secret for payment provider callbacks.
type WebhookConfig struct {
	PaymentSecret string
}

// JobsConfig controls the background scheduler.
type JobsConfig struct {
	ExpirySchedule    string
	SubscriptionGrace time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost      string
	Port         string
	LogLevel     string
	Timezone     string
	AllowlistTTL time.Duration
	PresignTTL   time.Duration
	Database     DatabaseConfig
	MinIO        MinIOConfig
	Redis        RedisConfig
	Auth         AuthConfig
	SES          SESConfig
	Webhook      WebhookConfig
	Jobs         JobsConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		AppHost:      getEnv("APP_HOST", "localhost:8080"),
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Timezone:     getEnv("APP_TIMEZONE", "UTC"),
		AllowlistTTL: getEnvDuration("IP_ALLOWLIST_TTL", 30*time.Second),
		PresignTTL:   getEnvDuration("PRESIGN_TTL", 15*time.Minute),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			JWTIssuer:     getEnv("JWT_ISSUER", "mailroom"),
			TokenTTL:      getEnvDuration("JWT_TTL", 12*time.Hour),
			BcryptCost:    getEnvInt("BCRYPT_COST", 12),
			LoginLimit:    getEnvInt("LOGIN_RATE_LIMIT", 10),
			LoginWindow:   getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),
			BootstrapUser: getEnv("ADMIN_EMAIL", ""),
			BootstrapPass: getEnv("ADMIN_PASSWORD", ""),
		},
		SES: SESConfig{
			Region:    getEnv("SES_REGION", ""),
			AccessKey: getEnv("SES_ACCESS_KEY", ""),
			SecretKey: getEnv("SES_SECRET_KEY", ""),
			FromEmail: getEnv("SES_FROM_EMAIL", ""),
		},
		Webhook: WebhookConfig{
			PaymentSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		},
		Jobs: JobsConfig{
			ExpirySchedule:    getEnv("JOB_SUBSCRIPTION_EXPIRY_CRON", "@hourly"),
			SubscriptionGrace: getEnvDuration("SUBSCRIPTION_GRACE", 72*time.Hour),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
