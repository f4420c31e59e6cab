package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port" env:"FITTRACK_PORT"`
	Environment string `toml:"environment"`
	// logging
	LogLevel      string `toml:"log_level" env:"FITTRACK_LOG_LEVEL"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	SentryDSN     string `toml:"-" env:"SENTRY_DSN"`
	// workouts
	Timezone         string   `toml:"timezone"`
	TemplateBackend  string   `toml:"template_backend"`
	OverrideBackend  string   `toml:"override_backend"`
	StreakCap        int      `toml:"streak_cap"`
	MCPEnabled       bool     `toml:"mcp_enabled"`
	APITokenHash     string   `toml:"-" env:"FITTRACK_API_TOKEN_HASH"`
	WriteRateLimit   int      `toml:"write_rate_limit_per_min"`
	AllowedOrigins   []string `toml:"allowed_origins"`
	TemplateCacheMB  int      `toml:"template_cache_size_mb"`
	TemplateCacheTTL int      `toml:"template_cache_ttl_sec"`
	// postgres
	PostgresHost   string `toml:"postgres_host" env:"FITTRACK_POSTGRES_HOST"`
	PostgresPort   string `toml:"postgres_port" env:"FITTRACK_POSTGRES_PORT"`
	PostgresDBName string `toml:"postgres_db_name"`
	// redis
	RedisHost     string `toml:"redis_host" env:"FITTRACK_REDIS_HOST"`
	RedisPort     string `toml:"redis_port" env:"FITTRACK_REDIS_PORT"`
	RedisPassword string `toml:"-" env:"FITTRACK_REDIS_PASS"`
	// telemetry
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	HoneycombEnabled      bool   `toml:"honeycomb_enabled" env:"HONEYCOMB_ENABLED"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env %s missing", env)
	}
	return cfg, nil
}

// Load reads the env section of the TOML file at path, then applies environment variable overrides.
// Priority: ENV > TOML > defaults.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.TemplateBackend == "" {
		c.TemplateBackend = BackendMemory
	}
	if c.OverrideBackend == "" {
		c.OverrideBackend = BackendMemory
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.TemplateCacheTTL == 0 {
		c.TemplateCacheTTL = 60
	}
}

func (c *Config) Validate() error {
	switch c.TemplateBackend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("%w: template_backend %q", ErrInvalidConfig, c.TemplateBackend)
	}

	switch c.OverrideBackend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("%w: override_backend %q", ErrInvalidConfig, c.OverrideBackend)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	}

	if c.StreakCap < 0 {
		return fmt.Errorf("%w: streak_cap %d", ErrInvalidConfig, c.StreakCap)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone %q: %s", ErrInvalidConfig, c.Timezone, err)
	}

	return nil
}

// Location is the zone "today" is evaluated in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) TemplateCacheTTLDuration() time.Duration {
	return time.Duration(c.TemplateCacheTTL) * time.Second
}
