package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Auth      AuthConfig      `yaml:"auth"`
	Booking   BookingConfig   `yaml:"booking"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
	Worker    WorkerConfig    `yaml:"worker"`
}

type HTTPConfig struct {
	Address         string `yaml:"address" env:"HTTP_ADDRESS, overwrite"`
	ShutdownSeconds int    `yaml:"shutdown_seconds" env:"HTTP_SHUTDOWN_SECONDS, overwrite"`
	DocsEnabled     bool   `yaml:"docs_enabled" env:"HTTP_DOCS_ENABLED, overwrite"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DATABASE_HOST, overwrite"`
	Port     int    `yaml:"port" env:"DATABASE_PORT, overwrite"`
	User     string `yaml:"user" env:"DATABASE_USER, overwrite"`
	Password string `yaml:"password" env:"DATABASE_PASSWORD, overwrite"`
	Name     string `yaml:"name" env:"DATABASE_NAME, overwrite"`
	SSLMode  string `yaml:"ssl_mode" env:"DATABASE_SSL_MODE, overwrite"`
	MaxConns int32  `yaml:"max_conns" env:"DATABASE_MAX_CONNS, overwrite"`
	Migrate  bool   `yaml:"migrate" env:"DATABASE_MIGRATE, overwrite"`
}

func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	if d.MaxConns > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", d.MaxConns)
	}
	return dsn
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER, overwrite"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR, overwrite"`
	Password string `yaml:"password" env:"REDIS_PASSWORD, overwrite"`
	DB       int    `yaml:"db" env:"REDIS_DB, overwrite"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" env:"KAFKA_BROKERS, overwrite"`
	BookingEventsTopic string   `yaml:"booking_events_topic" env:"KAFKA_BOOKING_EVENTS_TOPIC, overwrite"`
	GroupID            string   `yaml:"group_id" env:"KAFKA_GROUP_ID, overwrite"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret" env:"JWT_SECRET, overwrite"`
	AccessTTLMinute int    `yaml:"access_ttl_minutes" env:"ACCESS_TOKEN_TTL_MIN, overwrite"`
	BcryptCost      int    `yaml:"bcrypt_cost" env:"BCRYPT_COST, overwrite"`
	// Admin* seed an administrator at startup when AdminUsername is set.
	AdminUsername string `yaml:"admin_username" env:"ADMIN_USERNAME, overwrite"`
	AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL, overwrite"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD, overwrite"`
}

func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTTLMinute) * time.Minute
}

const (
	PastStartAllow  = "allow"
	PastStartReject = "reject"
)

type BookingConfig struct {
	// PastStartPolicy decides whether a booking may start in the past as long as it ends in the future.
	PastStartPolicy string `yaml:"past_start_policy" env:"BOOKING_PAST_START_POLICY, overwrite"`
}

type RateLimitConfig struct {
	Enabled               bool   `yaml:"enabled" env:"RATE_LIMIT_ENABLED, overwrite"`
	Prefix                string `yaml:"prefix" env:"RATE_LIMIT_PREFIX, overwrite"`
	BookingPerMinute      int    `yaml:"booking_per_minute" env:"RATE_LIMIT_BOOKING_PER_MINUTE, overwrite"`
	RegistrationPerMinute int    `yaml:"registration_per_minute" env:"RATE_LIMIT_REGISTRATION_PER_MINUTE, overwrite"`
	Burst                 int    `yaml:"burst" env:"RATE_LIMIT_BURST, overwrite"`
}

type CacheConfig struct {
	RoomsTTLSeconds int `yaml:"rooms_ttl_seconds" env:"CACHE_ROOMS_TTL_SECONDS, overwrite"`
}

func (c CacheConfig) RoomsTTL() time.Duration {
	return time.Duration(c.RoomsTTLSeconds) * time.Second
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL, overwrite"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY, overwrite"`
}

type WorkerConfig struct {
	MaxRetries int `yaml:"max_retries" env:"WORKER_MAX_RETRIES, overwrite"`
}

// LoadConfig reads the YAML file at path, applies environment overrides and defaults.
// A missing file is not an error: the environment alone may configure the service.
func LoadConfig(path string) (*Config, error) {
	return load(path, envconfig.OsLookuper())
}

func load(path string, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.ShutdownSeconds <= 0 {
		c.HTTP.ShutdownSeconds = 5
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageDriverPostgres
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Kafka.BookingEventsTopic == "" {
		c.Kafka.BookingEventsTopic = "booking_events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "roombooking-audit"
	}
	if c.Auth.AccessTTLMinute <= 0 {
		c.Auth.AccessTTLMinute = 60
	}
	if c.Auth.BcryptCost <= 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Booking.PastStartPolicy == "" {
		c.Booking.PastStartPolicy = PastStartAllow
	}
	if c.RateLimit.Prefix == "" {
		c.RateLimit.Prefix = "rl"
	}
	if c.RateLimit.BookingPerMinute <= 0 {
		c.RateLimit.BookingPerMinute = 30
	}
	if c.RateLimit.RegistrationPerMinute <= 0 {
		c.RateLimit.RegistrationPerMinute = 5
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 5
	}
	if c.Cache.RoomsTTLSeconds <= 0 {
		c.Cache.RoomsTTLSeconds = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Worker.MaxRetries <= 0 {
		c.Worker.MaxRetries = 3
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Booking.PastStartPolicy {
	case PastStartAllow, PastStartReject:
	default:
		return fmt.Errorf("unknown booking past_start_policy %q", c.Booking.PastStartPolicy)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	return nil
}
