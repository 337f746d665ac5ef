// Package config loads the server configuration from a YAML file and
// MYITEMLIB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MYITEMLIB_API_PORT.
const EnvPrefix = "MYITEMLIB"

// Database modes.
const (
	ModeSQLite   = "sqlite"
	ModePostgres = "postgres"
)

// Defaults for the DoS protection settings.
const (
	DefaultMaxRequests    = 100
	DefaultWindowMS       = 60000
	DefaultMaxRequestSize = 1048576
)

// Config is populated once at startup and treated as read-only afterwards.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	DoS      DoSConfig      `mapstructure:"dos_protection"`
	Database DatabaseConfig `mapstructure:"database"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Presence PresenceConfig `mapstructure:"presence"`
	Log      LogConfig      `mapstructure:"log"`
}

type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Key     string `mapstructure:"key"`
}

// Addr returns the host:port the server listens on.
func (a APIConfig) Addr() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

type DoSConfig struct {
	Enabled              bool  `mapstructure:"enabled"`
	MaxRequestsPerMinute int   `mapstructure:"max_requests_per_minute"`
	RequestTimeWindowMS  int64 `mapstructure:"request_time_window_ms"`
	MaxRequestSizeBytes  int64 `mapstructure:"max_request_size_bytes"`
}

// Window returns the rate limiting window.
func (d DoSConfig) Window() time.Duration {
	return time.Duration(d.RequestTimeWindowMS) * time.Millisecond
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"`
	Path         string        `mapstructure:"path"`
	DSN          string        `mapstructure:"dsn"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

type CORSConfig struct {
	AllowOrigin      string `mapstructure:"allow_origin"`
	AllowMethods     string `mapstructure:"allow_methods"`
	AllowHeaders     string `mapstructure:"allow_headers"`
	AllowCredentials bool   `mapstructure:"allow_credentials"`
	MaxAge           int    `mapstructure:"max_age"`
}

type SecurityConfig struct {
	ContentTypeOptions      string `mapstructure:"content_type_options"`
	StrictTransportSecurity string `mapstructure:"strict_transport_security"`
}

// StatsConfig selects where gateway decisions are counted. An empty
// RedisAddr keeps the counters in memory.
type StatsConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	Prefix        string `mapstructure:"prefix"`
}

type PresenceConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 1558)
	v.SetDefault("api.key", "")

	v.SetDefault("dos_protection.enabled", true)
	v.SetDefault("dos_protection.max_requests_per_minute", DefaultMaxRequests)
	v.SetDefault("dos_protection.request_time_window_ms", DefaultWindowMS)
	v.SetDefault("dos_protection.max_request_size_bytes", DefaultMaxRequestSize)

	v.SetDefault("database.mode", ModeSQLite)
	v.SetDefault("database.path", "myitemlibrary.sqlite3")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.query_timeout", "5s")

	v.SetDefault("cors.allow_origin", "*")
	v.SetDefault("cors.allow_methods", "GET,POST,PUT,DELETE,OPTIONS")
	v.SetDefault("cors.allow_headers", "*")
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 1800)

	v.SetDefault("security.content_type_options", "nosniff")
	v.SetDefault("security.strict_transport_security", "max-age=31536000; includeSubDomains")

	v.SetDefault("stats.redis_addr", "")
	v.SetDefault("stats.redis_password", "")
	v.SetDefault("stats.redis_db", 0)
	v.SetDefault("stats.prefix", "myitemlibrary:ratelimit")

	v.SetDefault("presence.enabled", true)

	v.SetDefault("log.file", "")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads path (skipped when empty), applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// normalize replaces non-positive DoS values with their defaults.
func (c *Config) normalize() {
	if c.DoS.MaxRequestsPerMinute <= 0 {
		slog.Warn("invalid max_requests_per_minute, using default", "value", c.DoS.MaxRequestsPerMinute, "default", DefaultMaxRequests)
		c.DoS.MaxRequestsPerMinute = DefaultMaxRequests
	}
	if c.DoS.RequestTimeWindowMS <= 0 {
		slog.Warn("invalid request_time_window_ms, using default", "value", c.DoS.RequestTimeWindowMS, "default", DefaultWindowMS)
		c.DoS.RequestTimeWindowMS = DefaultWindowMS
	}
	if c.DoS.MaxRequestSizeBytes <= 0 {
		slog.Warn("invalid max_request_size_bytes, using default", "value", c.DoS.MaxRequestSizeBytes, "default", DefaultMaxRequestSize)
		c.DoS.MaxRequestSizeBytes = DefaultMaxRequestSize
	}
	c.Database.Mode = strings.ToLower(strings.TrimSpace(c.Database.Mode))
}

// Validate reports the first setting that would prevent the server from
// starting.
func (c *Config) Validate() error {
	if c.API.Enabled && c.API.Key == "" {
		return errors.New("api.key is required when the API is enabled")
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}

	switch c.Database.Mode {
	case ModeSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required in sqlite mode")
		}
	case ModePostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required in postgres mode")
		}
	default:
		return fmt.Errorf("unknown database.mode %q", c.Database.Mode)
	}
	return nil
}
