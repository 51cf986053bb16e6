package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/angelmondragon/shopdash/pkg/env"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	API       APIConfig
	Session   SessionConfig
	Redis     RedisConfig
	Dashboard DashboardConfig
	Callback  CallbackConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Session.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the client cannot run with.
func (c *Config) Validate() error {
	if err := c.API.validate(); err != nil {
		return err
	}
	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendMemory, SessionBackendSQLite:
	case SessionBackendRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis session backend", EnvRedisURL, EnvRedisAddr)
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Dashboard.TopCustomers <= 0 {
		return fmt.Errorf("%s must be positive", EnvTopCustomers)
	}
	if c.Dashboard.RangeDays <= 0 {
		return fmt.Errorf("%s must be positive", EnvRangeDays)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPDASH_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"SHOPDASH_LOG_LEVEL" default:"warn"`
	LogWarnStack bool   `envconfig:"SHOPDASH_LOG_WARN_STACK" default:"false"`
	Profile      string `envconfig:"SHOPDASH_PROFILE" default:"default"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL  string        `envconfig:"SHOPDASH_API_URL" default:"http://localhost:5000/api"`
	Timeout  time.Duration `envconfig:"SHOPDASH_HTTP_TIMEOUT" default:"15s"`
	PageSize int           `envconfig:"SHOPDASH_PAGE_SIZE" default:"20"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(a.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url, got %q", EnvAPIURL, a.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host", EnvAPIURL)
	}
	if a.PageSize <= 0 {
		return fmt.Errorf("%s must be positive", EnvPageSize)
	}
	return nil
}

type SessionConfig struct {
	Backend    string `envconfig:"SHOPDASH_SESSION_BACKEND" default:"file"`
	Path       string `envconfig:"SHOPDASH_SESSION_PATH"`
	SQLitePath string `envconfig:"SHOPDASH_SQLITE_PATH"`
}

func (s *SessionConfig) applyDefaults() {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.Path == "" {
		s.Path = filepath.Join(env.ConfigDir(), "session.json")
	}
	if s.SQLitePath == "" {
		s.SQLitePath = filepath.Join(env.ConfigDir(), "session.db")
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPDASH_REDIS_URL"`
	Address      string        `envconfig:"SHOPDASH_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPDASH_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPDASH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPDASH_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"SHOPDASH_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"SHOPDASH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPDASH_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"SHOPDASH_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type DashboardConfig struct {
	TopCustomers int `envconfig:"SHOPDASH_TOP_CUSTOMERS" default:"5"`
	RangeDays    int `envconfig:"SHOPDASH_DASHBOARD_RANGE_DAYS" default:"30"`
}

type CallbackConfig struct {
	Addr string `envconfig:"SHOPDASH_CALLBACK_ADDR" default:"127.0.0.1:5173"`
	Path string `envconfig:"SHOPDASH_CALLBACK_PATH" default:"/settings"`
}
