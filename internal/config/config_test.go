package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("PORT", "8000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.DBConnMaxLifetime)
	assert.Equal(t, time.Now().Year(), cfg.DefaultWorkYear)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file:jobs.db")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("DEFAULT_WORK_YEAR", "2023")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "file:jobs.db", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.DBMaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2023, cfg.DefaultWorkYear)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.AllowAllOrigins())
}

func TestLoad_InvalidNumberFallsBackToDefault(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_MAX_IDLE_CONNS", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.DBMaxIdleConns)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:           8000,
			DBDriver:       DriverPostgres,
			DatabaseURL:    "postgres://localhost/job_trends",
			DBMaxOpenConns: 10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mysql" }, wantErr: "unsupported DB_DRIVER"},
		{name: "empty dsn", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "DATABASE_URL"},
		{name: "zero pool", mutate: func(c *Config) { c.DBMaxOpenConns = 0 }, wantErr: "DB_MAX_OPEN_CONNS"},
		{name: "negative idle", mutate: func(c *Config) { c.DBMaxIdleConns = -1 }, wantErr: "DB_MAX_IDLE_CONNS"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAllowAllOrigins(t *testing.T) {
	assert.True(t, (&Config{}).AllowAllOrigins())
	assert.True(t, (&Config{CORSAllowedOrigins: []string{"http://x", "*"}}).AllowAllOrigins())
	assert.False(t, (&Config{CORSAllowedOrigins: []string{"http://x"}}).AllowAllOrigins())
}
