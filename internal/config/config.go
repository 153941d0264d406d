package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/booking-api/internal/repository/guarded"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/ratelimit"
	"github.com/jwalitptl/booking-api/pkg/validator"
)

// EnvPrefix prefixes every environment override, e.g. BOOKING_DATABASE_HOST.
const EnvPrefix = "BOOKING"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       auth.Config     `mapstructure:"jwt"`
	Authz     AuthzConfig     `mapstructure:"authz"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode" validate:"omitempty,oneof=debug release test"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host" validate:"required"`
	Port         int    `mapstructure:"port" validate:"min=1"`
	User         string `mapstructure:"user" validate:"required"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name" validate:"required"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	PoolSize int    `mapstructure:"pool_size"`
}

type AuthzConfig struct {
	// ProtectedRoutes are the routes behind the verification gate, written as
	// "METHOD /route/:param" or "/route" for every method.
	ProtectedRoutes []string `mapstructure:"protected_routes"`
	PrivilegedRole  string   `mapstructure:"privileged_role" validate:"omitempty,oneof=admin doctor patient"`
	// ActorHeader carries the id a caller claims to act as; it must match the token.
	ActorHeader string         `mapstructure:"actor_header"`
	Lookups     guarded.Config `mapstructure:"lookups"`
}

type RateLimitConfig struct {
	// Backend is "memory" (single instance only) or "redis".
	Backend           string           `mapstructure:"backend" validate:"oneof=memory redis"`
	Reviews           ratelimit.Config `mapstructure:"reviews"`
	RequestsPerSecond float64          `mapstructure:"requests_per_second"`
	Burst             int              `mapstructure:"burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("jwt.expiry_hours", 24)
	v.SetDefault("authz.protected_routes", []string{
		"POST /api/v1/doctors",
		"DELETE /api/v1/doctors/:id",
		"POST /api/v1/doctors/:id/documents",
		"PUT /api/v1/doctors/:id/approve",
		"DELETE /api/v1/hospitals/:id",
		"/api/v1/admin/admins",
		"PUT /api/v1/admin/admins/:id/approve",
		"DELETE /api/v1/admin/admins/:id",
	})
	v.SetDefault("authz.privileged_role", "admin")
	v.SetDefault("authz.actor_header", "X-User-ID")
	v.SetDefault("authz.lookups.hospital_cache_ttl", time.Minute)
	v.SetDefault("authz.lookups.breaker_timeout", 10*time.Second)
	v.SetDefault("authz.lookups.breaker_failures", 5)
	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.reviews.limit", 5)
	v.SetDefault("rate_limit.reviews.window", time.Hour)
	v.SetDefault("rate_limit.requests_per_second", 100)
	v.SetDefault("rate_limit.burst", 200)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads config.yml from path (or the usual locations when path is
// empty), overlays BOOKING_* environment variables and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	cfg.Authz.PrivilegedRole = strings.ToLower(cfg.Authz.PrivilegedRole)

	if err := validator.New().Validate(&cfg); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Backend == "redis" && cfg.Redis.URL == "" {
		return nil, fmt.Errorf("rate_limit.backend redis requires redis.url")
	}

	return &cfg, nil
}
