package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Assets    AssetsConfig    `yaml:"assets"`
	Fallback  FallbackConfig  `yaml:"fallback"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	// RateLimitRPM caps /v1 requests per client per minute. 0 disables it.
	RateLimitRPM     int           `yaml:"rate_limit_rpm"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// Enabled reports whether assets should be read from PostgreSQL.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Addresses []string      `yaml:"addresses"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"pool_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

type TelemetryConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsPort int    `yaml:"metrics_port"`
}

// AssetsConfig points at the YAML manifest used when no database is configured.
type AssetsConfig struct {
	ManifestPath string `yaml:"manifest_path"`
}

// FallbackConfig configures the generic resizer used without Cloudinary credentials.
type FallbackConfig struct {
	BaseURL string `yaml:"base_url"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      10 * time.Second,
			WriteTimeout:     10 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 15 * time.Second,
			RateLimitRPM:     600,
		},
		Database: DatabaseConfig{
			Port:            5432,
			Name:            "media",
			User:            "media",
			MaxOpenConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			DB:       0,
			PoolSize: 20,
			CacheTTL: 5 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			MetricsPort: 9090,
		},
		Assets: AssetsConfig{
			ManifestPath: "configs/assets.yaml",
		},
		Fallback: FallbackConfig{
			BaseURL: "/img",
		},
	}
}
