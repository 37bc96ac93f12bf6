package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML file.
const ConfigFileEnv = "CONFIG_FILE"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is layered: Default() values, then the YAML file, then environment
// variables. The envconfig tags carry no defaults so that unset variables
// leave earlier layers untouched.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
	Cache    CacheConfig    `yaml:"cache"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Proxy    ProxyConfig    `yaml:"proxy"`
	Admin    AdminConfig    `yaml:"admin"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"API_HOST"`
	Port            int           `yaml:"port" envconfig:"API_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"API_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"API_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"API_SHUTDOWN_TIMEOUT"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LogConfig struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins" envconfig:"BACKEND_CORS_ORIGINS"`
}

type CacheConfig struct {
	Enabled       bool          `yaml:"enabled" envconfig:"CACHE_ENABLED"`
	TTLSeconds    int           `yaml:"ttl_seconds" envconfig:"CACHE_TTL_SECONDS"`
	MaxSize       int           `yaml:"max_size" envconfig:"CACHE_MAX_SIZE"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"CACHE_SWEEP_INTERVAL"`
}

// TTL returns the entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type UpstreamConfig struct {
	Timeout   time.Duration `yaml:"timeout" envconfig:"UPSTREAM_TIMEOUT"`
	RateLimit float64       `yaml:"rate_limit" envconfig:"UPSTREAM_RATE_LIMIT"`
	Burst     int           `yaml:"burst" envconfig:"UPSTREAM_BURST"`
}

type ProxyConfig struct {
	Type             string `yaml:"type" envconfig:"PROXY_TYPE"`
	URL              string `yaml:"url" envconfig:"PROXY_URL"`
	HTTP             string `yaml:"http" envconfig:"PROXY_HTTP"`
	HTTPS            string `yaml:"https" envconfig:"PROXY_HTTPS"`
	WebshareUsername string `yaml:"webshare_username" envconfig:"WEBSHARE_USERNAME"`
	WebsharePassword string `yaml:"webshare_password" envconfig:"WEBSHARE_PASSWORD"`
}

type AdminConfig struct {
	// JWTSecret enables bearer authentication on DELETE /service/cache when set.
	JWTSecret string `yaml:"jwt_secret" envconfig:"ADMIN_JWT_SECRET"`
}

type TracingConfig struct {
	Enabled        bool   `yaml:"enabled" envconfig:"TRACING_ENABLED"`
	JaegerEndpoint string `yaml:"jaeger_endpoint" envconfig:"JAEGER_ENDPOINT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 3600,
			MaxSize:    1000,
		},
		Upstream: UpstreamConfig{
			Timeout: 15 * time.Second,
			Burst:   1,
		},
		Tracing: TracingConfig{
			JaegerEndpoint: "http://localhost:14268/api/traces",
		},
	}
}

// Load builds the configuration from defaults, the file named by CONFIG_FILE
// and the environment, then validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: API_PORT must be between 1 and 65535, got %d", ErrInvalidConfig, c.Server.Port)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}

	if c.Cache.Enabled {
		if c.Cache.TTLSeconds <= 0 {
			return fmt.Errorf("%w: CACHE_TTL_SECONDS must be positive when the cache is enabled", ErrInvalidConfig)
		}
		if c.Cache.MaxSize <= 0 {
			return fmt.Errorf("%w: CACHE_MAX_SIZE must be positive when the cache is enabled", ErrInvalidConfig)
		}
	}
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("%w: CACHE_SWEEP_INTERVAL must not be negative", ErrInvalidConfig)
	}

	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("%w: UPSTREAM_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.Upstream.RateLimit < 0 {
		return fmt.Errorf("%w: UPSTREAM_RATE_LIMIT must not be negative", ErrInvalidConfig)
	}

	switch c.Proxy.Type {
	case "":
	case "generic":
		if c.Proxy.URL == "" && c.Proxy.HTTP == "" && c.Proxy.HTTPS == "" {
			return fmt.Errorf("%w: generic proxy requires PROXY_URL, PROXY_HTTP or PROXY_HTTPS", ErrInvalidConfig)
		}
	case "webshare":
		if c.Proxy.WebshareUsername == "" || c.Proxy.WebsharePassword == "" {
			return fmt.Errorf("%w: webshare proxy requires WEBSHARE_USERNAME and WEBSHARE_PASSWORD", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown PROXY_TYPE %q", ErrInvalidConfig, c.Proxy.Type)
	}

	if c.Tracing.Enabled && c.Tracing.JaegerEndpoint == "" {
		return fmt.Errorf("%w: JAEGER_ENDPOINT is required when tracing is enabled", ErrInvalidConfig)
	}
	return nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: unknown LOG_LEVEL %q", ErrInvalidConfig, level)
	}
}
