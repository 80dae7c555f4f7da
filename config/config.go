package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Log      LogConfig
	Upstream UpstreamConfig
	Refresh  RefreshConfig
	Forecast ForecastConfig
	Loader   LoaderConfig
}

type ServerConfig struct {
	Port         string
	AllowOrigins string
	Environment  string
}

type DatabaseConfig struct {
	DSN string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
	MaxAge int
}

// UpstreamConfig points the dashboard at a remote price backend. An empty
// BaseURL serves the dashboard from the local store.
type UpstreamConfig struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
	PageSize  int
	MaxPages  int
}

type RefreshConfig struct {
	BoardURL string
	Schedule string
	Enabled  bool
}

type ForecastConfig struct {
	// Path overrides the embedded forecast tables when set.
	Path string
}

type LoaderConfig struct {
	Debounce time.Duration
}

// LoadEnv reads .env when present. A missing file is not an error.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvString("PORT", "8081"),
			AllowOrigins: getEnvString("ALLOW_ORIGINS", "http://localhost:8000"),
			Environment:  getEnvString("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			DSN: getEnvString("DB_DSN", "root:@tcp(127.0.0.1:3306)/agrimarket?charset=utf8mb4&parseTime=True&loc=Local"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnvString("JWT_SECRET", "default-secret"),
			TokenTTL:      getEnvDuration("JWT_TTL", 24*time.Hour),
			AdminUsername: getEnvString("ADMIN_USERNAME", ""),
			AdminPassword: getEnvString("ADMIN_PASSWORD", ""),
		},
		Log: LogConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
			Output: getEnvString("LOG_OUTPUT", "stdout"),
			MaxAge: getEnvInt("LOG_MAX_AGE_DAYS", 0),
		},
		Upstream: UpstreamConfig{
			BaseURL:   strings.TrimRight(getEnvString("UPSTREAM_URL", ""), "/"),
			Token:     getEnvString("UPSTREAM_TOKEN", ""),
			Timeout:   getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),
			RateLimit: getEnvFloat("UPSTREAM_RPS", 5),
			Burst:     getEnvInt("UPSTREAM_BURST", 5),
			PageSize:  getEnvInt("UPSTREAM_PAGE_SIZE", 100),
			MaxPages:  getEnvInt("UPSTREAM_MAX_PAGES", 50),
		},
		Refresh: RefreshConfig{
			BoardURL: getEnvString("MARKET_BOARD_URL", ""),
			Schedule: getEnvString("REFRESH_CRON", "30 6 * * *"),
			Enabled:  getEnvBool("REFRESH_ENABLED", true),
		},
		Forecast: ForecastConfig{
			Path: getEnvString("FORECAST_PATH", ""),
		},
		Loader: LoaderConfig{
			Debounce: getEnvDuration("FILTER_DEBOUNCE", 500*time.Millisecond),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %q", c.Server.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.Upstream.RateLimit <= 0 || c.Upstream.Burst < 1 {
		return fmt.Errorf("upstream rate limit must be positive")
	}
	if c.Upstream.PageSize < 1 || c.Upstream.MaxPages < 1 {
		return fmt.Errorf("upstream paging must be positive")
	}
	if (c.Auth.AdminUsername == "") != (c.Auth.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if c.Loader.Debounce <= 0 {
		return fmt.Errorf("FILTER_DEBOUNCE must be positive")
	}
	if c.Refresh.Enabled {
		if _, err := cron.ParseStandard(c.Refresh.Schedule); err != nil {
			return fmt.Errorf("REFRESH_CRON: %w", err)
		}
	}
	return nil
}

// RemoteUpstream reports whether the dashboard reads from another backend.
func (c *Config) RemoteUpstream() bool {
	return c.Upstream.BaseURL != ""
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
