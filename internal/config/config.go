package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is built once at startup and injected into every component that needs it.
type Config struct {
	Env  string
	Port int

	DBDriver          string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBLogLevel        string

	CORSAllowedOrigins []string

	DefaultWorkYear int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	NATSURL         string
	NATSConnTimeout time.Duration

	OTELCollectorURL string

	GeminiAPIKey string
	GeminiModel  string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Env:  getEnvString("APP_ENV", "production"),
		Port: getEnvInt("PORT", 8000),

		DBDriver:          strings.ToLower(getEnvString("DB_DRIVER", DriverPostgres)),
		DatabaseURL:       getEnvString("DATABASE_URL", "host=localhost user=postgres password=password dbname=job_trends port=5432 sslmode=disable"),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 15),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		DBLogLevel:        strings.ToLower(getEnvString("DB_LOG_LEVEL", "warn")),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:5174",
			"http://127.0.0.1:5173",
			"http://127.0.0.1:5174",
		}),

		DefaultWorkYear: getEnvInt("DEFAULT_WORK_YEAR", time.Now().Year()),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),

		NATSURL:         getEnvString("NATS_URL", ""),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		OTELCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),

		GeminiAPIKey: getEnvString("GEMINI_API_KEY", ""),
		GeminiModel:  getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late, at first query.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config error: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is empty")
	}
	if c.DBMaxOpenConns <= 0 {
		return fmt.Errorf("config error: DB_MAX_OPEN_CONNS must be positive")
	}
	if c.DBMaxIdleConns < 0 {
		return fmt.Errorf("config error: DB_MAX_IDLE_CONNS must be non-negative")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT %d out of range", c.Port)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// AllowAllOrigins reports whether CORS should run in wildcard mode.
func (c *Config) AllowAllOrigins() bool {
	if len(c.CORSAllowedOrigins) == 0 {
		return true
	}
	for _, o := range c.CORSAllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
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

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
