package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort string

	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnMaxLife  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NATSURL         string
	NATSConnTimeout time.Duration

	OTelCollectorURL string

	ExportRateLimit  int
	ExportRateWindow time.Duration

	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		AppEnv:   getEnvString("APP_ENV", "development"),
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		HTTPPort: getEnvString("HTTP_PORT", "8080"),

		DatabaseURL:    getEnvString("DATABASE_URL", ""),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLife:  getEnvDuration("DB_CONN_MAX_LIFE", 30*time.Minute),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		NATSURL:         getEnvString("NATS_URL", ""),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		OTelCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),

		ExportRateLimit:  getEnvInt("EXPORT_RATE_LIMIT", 10),
		ExportRateWindow: getEnvDuration("EXPORT_RATE_WINDOW", time.Minute),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
