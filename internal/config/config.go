package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// InsecureSessionSecret is the built-in secret; it is only accepted in development.
const InsecureSessionSecret = "rozgar-dev-secret"

type Config struct {
	Addr            string         `yaml:"addr"`
	APITimeout      time.Duration  `yaml:"timeout"`
	DatabasePath    string         `yaml:"database_path"`
	LogLevel        string         `yaml:"log_level"`
	SessionSecret   string         `yaml:"session_secret"`
	SessionDuration time.Duration  `yaml:"session_duration"`
	Tick            time.Duration  `yaml:"tick"`
	SeedPath        string         `yaml:"seed_path"`
	Offer           OfferConfig    `yaml:"offer"`
	Tracking        TrackingConfig `yaml:"tracking"`
	Store           StoreConfig    `yaml:"store"`
	Events          EventsConfig   `yaml:"events"`
	Outbox          OutboxConfig   `yaml:"outbox"`
}

type OfferConfig struct {
	// Countdown is the number of ticks an offer rings before it is declined.
	Countdown int           `yaml:"countdown"`
	Delay     time.Duration `yaml:"delay"`
}

type TrackingConfig struct {
	DeclineWindow int `yaml:"decline_window"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
}

type EventsConfig struct {
	AMQPURL string `yaml:"amqp_url"`
	Queue   string `yaml:"queue"`
}

type OutboxConfig struct {
	Workers     int `yaml:"workers"`
	MaxAttempts int `yaml:"max_attempts"`
}

// LoadConfig reads defaults from the environment (a .env file in the working
// directory is loaded first when present), overlays the YAML file at path and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Addr:            getEnv("ROZGAR_ADDR", ":8080"),
		APITimeout:      getDuration("ROZGAR_TIMEOUT", 15*time.Second),
		DatabasePath:    getEnv("ROZGAR_DATABASE_PATH", "rozgar.db"),
		LogLevel:        getEnv("ROZGAR_LOG_LEVEL", "info"),
		SessionSecret:   getEnv("ROZGAR_SESSION_SECRET", InsecureSessionSecret),
		SessionDuration: getDuration("ROZGAR_SESSION_DURATION", 30*24*time.Hour),
		Tick:            time.Second,
		SeedPath:        getEnv("ROZGAR_SEED_PATH", ""),
		Store: StoreConfig{
			Driver:        getEnv("ROZGAR_STORE_DRIVER", "sqlite"),
			RedisAddr:     getEnv("ROZGAR_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("ROZGAR_REDIS_PASSWORD", ""),
			RedisDB:       getInt("ROZGAR_REDIS_DB", 0),
			RedisPrefix:   getEnv("ROZGAR_REDIS_PREFIX", "rozgar:"),
		},
		Events: EventsConfig{
			AMQPURL: getEnv("ROZGAR_AMQP_URL", ""),
			Queue:   getEnv("ROZGAR_AMQP_QUEUE", "rozgar.events"),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills unset values with defaults and rejects unusable settings.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("config: database_path is required")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.SessionDuration <= 0 {
		c.SessionDuration = 30 * 24 * time.Hour
	}
	if c.SessionSecret == "" {
		return errors.New("config: session_secret is required")
	}
	if c.SessionSecret == InsecureSessionSecret && !IsDevelopment() {
		return errors.New("config: the default session_secret is only allowed when ROZGAR_ENV=development")
	}
	switch strings.ToLower(c.LogLevel) {
	case "":
		c.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if c.Tick <= 0 {
		c.Tick = time.Second
	}
	if c.Offer.Countdown <= 0 {
		c.Offer.Countdown = 20
	}
	if c.Offer.Delay <= 0 {
		c.Offer.Delay = 5 * time.Second
	}
	if c.Tracking.DeclineWindow <= 0 {
		c.Tracking.DeclineWindow = 240
	}
	switch c.Store.Driver {
	case "":
		c.Store.Driver = "sqlite"
	case "sqlite":
	case "redis":
		if c.Store.RedisAddr == "" {
			return errors.New("config: store.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.Events.Queue == "" {
		c.Events.Queue = "rozgar.events"
	}
	if c.Outbox.Workers <= 0 {
		c.Outbox.Workers = 2
	}
	if c.Outbox.MaxAttempts <= 0 {
		c.Outbox.MaxAttempts = 5
	}
	return nil
}

// IsDevelopment reports whether ROZGAR_ENV is unset or "development".
func IsDevelopment() bool {
	env := strings.ToLower(os.Getenv("ROZGAR_ENV"))
	return env == "" || env == "development" || env == "dev"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
